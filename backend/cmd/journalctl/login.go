package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"unit-one/backend/internal/client"
)

func newLoginCommand(opts *rootOptions) *cobra.Command {
	var login, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "登录并输出 Access Token（可写入 JOURNAL_TOKEN）",
		RunE: func(cmd *cobra.Command, args []string) error {
			if login == "" || password == "" {
				return fmt.Errorf("--login 与 --password 不能为空")
			}
			c := client.New(opts.apiURL(), "")
			tok, err := c.Login(cmd.Context(), login, password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok.AccessToken)
			return nil
		},
	}
	cmd.Flags().StringVar(&login, "login", "", "登录名")
	cmd.Flags().StringVar(&password, "password", "", "密码")
	return cmd
}
