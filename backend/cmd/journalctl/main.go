// journalctl 终端里的月度 HACCP 日志表格
//
// 通过 HTTP API 读取名册与日志，按与网页端相同的规则展示、写入与导出。
// 连接参数可由 flag 或环境变量 JOURNAL_API_URL、JOURNAL_TOKEN 提供
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"unit-one/backend/config"
	"unit-one/backend/internal/client"
	"unit-one/backend/internal/haccp"
	applogger "unit-one/backend/pkg/logger"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "错误:", err)
		os.Exit(1)
	}
}

// rootOptions 全局参数
type rootOptions struct {
	v *viper.Viper
}

func (o *rootOptions) apiURL() string          { return o.v.GetString("api_url") }
func (o *rootOptions) token() string           { return o.v.GetString("token") }
func (o *rootOptions) establishmentID() string { return o.v.GetString("establishment") }
func (o *rootOptions) logLevel() string        { return o.v.GetString("log_level") }

func (o *rootOptions) kind() (haccp.Kind, error) {
	k := haccp.Kind(strings.ToLower(o.v.GetString("type")))
	if !k.Valid() {
		return "", fmt.Errorf("未知日志类型 %q（temperature | health）", k)
	}
	return k, nil
}

func (o *rootOptions) location() (*time.Location, error) {
	loc, err := time.LoadLocation(o.v.GetString("timezone"))
	if err != nil {
		return nil, fmt.Errorf("时区无效: %w", err)
	}
	return loc, nil
}

// month 未指定时为日志时区下的当前月份
func (o *rootOptions) month(loc *time.Location) (haccp.Month, error) {
	s := o.v.GetString("month")
	if s == "" {
		return haccp.MonthOf(haccp.Today(haccp.SystemClock, loc)), nil
	}
	return haccp.ParseMonth(s)
}

func (o *rootOptions) newLogger() (*zap.Logger, error) {
	return applogger.NewLogger(&config.LogConfig{Level: o.logLevel(), Format: "console"}, "journalctl")
}

func (o *rootOptions) newClient(logger *zap.Logger, loc *time.Location) (*client.Client, error) {
	if o.apiURL() == "" {
		return nil, fmt.Errorf("未指定 API 地址（--api 或 JOURNAL_API_URL）")
	}
	return client.New(o.apiURL(), o.token(), client.WithLogger(logger), client.WithLocation(loc)), nil
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{v: viper.New()}

	cmd := &cobra.Command{
		Use:           "journalctl",
		Short:         "HACCP 月度日志（温度 / 健康）",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.String("api", "http://localhost:8080", "API 地址")
	pf.String("token", "", "Access Token")
	pf.StringP("establishment", "e", "", "门店 ID")
	pf.StringP("type", "t", string(haccp.KindTemperature), "日志类型: temperature | health")
	pf.StringP("month", "m", "", "月份 YYYY-MM（默认当前月）")
	pf.String("timezone", "Europe/Moscow", "日志时区，决定 \"今天\"")
	pf.String("log-level", "warn", "日志级别")

	v := opts.v
	v.SetEnvPrefix("JOURNAL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.BindPFlag("api_url", pf.Lookup("api"))
	v.BindPFlag("token", pf.Lookup("token"))
	v.BindPFlag("establishment", pf.Lookup("establishment"))
	v.BindPFlag("type", pf.Lookup("type"))
	v.BindPFlag("month", pf.Lookup("month"))
	v.BindPFlag("timezone", pf.Lookup("timezone"))
	v.BindPFlag("log_level", pf.Lookup("log-level"))

	cmd.AddCommand(newLoginCommand(opts))
	cmd.AddCommand(newShowCommand(opts))
	cmd.AddCommand(newMarkCommand(opts))
	cmd.AddCommand(newExportCommand(opts))
	return cmd
}
