package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newShowCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "显示月度表格",
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openSession(cmd.Context(), opts, sessionOptions{})
			if err != nil {
				return err
			}
			defer ws.logger.Sync()

			s := ws.session
			fmt.Fprint(cmd.OutOrStdout(), renderGrid(s.Grid(), s.Today(), defaultTheme))
			return nil
		},
	}
}
