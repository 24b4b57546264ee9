package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"unit-one/backend/pkg/spreadsheet"
)

type exportOptions struct {
	output  string
	format  string
	charset string
	remote  bool
}

func newExportCommand(opts *rootOptions) *cobra.Command {
	eo := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "导出月度表格为 xlsx / csv",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := spreadsheet.ParseFormat(eo.format)
			if err != nil {
				return err
			}

			ws, err := openSession(cmd.Context(), opts, sessionOptions{})
			if err != nil {
				return err
			}
			defer ws.logger.Sync()

			output := eo.output
			if output == "" {
				output = fmt.Sprintf("journal_%s_%s.%s", ws.session.Grid().Kind(), ws.session.Month(), format)
			}

			// --remote 下载服务端生成的文件，否则在本地由会话表格生成
			if eo.remote {
				file, err := ws.client.Export(cmd.Context(), opts.establishmentID(), ws.session.Grid().Kind(), ws.session.Month(), string(format))
				if err != nil {
					return err
				}
				if err := os.WriteFile(output, file.Content, 0o644); err != nil {
					return err
				}
			} else {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				if err := spreadsheet.Write(f, ws.session.Sheet().Table(), format, eo.charset); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&eo.output, "output", "o", "", "输出文件（默认 journal_<type>_<month>.<format>）")
	cmd.Flags().StringVar(&eo.format, "format", "xlsx", "格式: xlsx | csv")
	cmd.Flags().StringVar(&eo.charset, "charset", spreadsheet.CharsetUTF8, "CSV 字符集: utf-8 | windows-1251")
	cmd.Flags().BoolVar(&eo.remote, "remote", false, "下载服务端生成的文件")
	return cmd
}
