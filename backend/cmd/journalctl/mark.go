package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"unit-one/backend/internal/haccp"
)

type markOptions struct {
	shift       string
	clear       bool
	maxAttempts int
	backoff     time.Duration
}

// newMarkCommand 按网页端的交互规则修改单元格：
// 健康日志空单元格首次点击写入 "зд"，其余状态通过选择器写入；温度日志通过输入框写入
func newMarkCommand(opts *rootOptions) *cobra.Command {
	mo := &markOptions{}

	cmd := &cobra.Command{
		Use:   "mark <entity-id> <day> [value]",
		Short: "写入单元格",
		Long: `按网页端的点击规则写入单元格。

健康日志中空单元格的第一次点击总是写入 зд，选择器只对已有记录的单元格打开。
因此对空单元格指定其他状态码或 --clear 时会依次发出两次写入：
先写 зд，再写目标状态。两次写入属于同一单元格，按顺序执行，
服务端在两次请求之间短暂保存 зд。`,
		Example: `  journalctl mark -t temperature eq-1 10 "4,5" --shift evening
  journalctl mark -t health emp-1 10          # 空单元格写入 зд
  journalctl mark -t health emp-1 10 б/л
  journalctl mark -t health emp-1 10 --clear`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("日期无效: %q", args[1])
			}
			var value string
			if len(args) == 3 {
				value = args[2]
			}

			ws, err := openSession(cmd.Context(), opts, sessionOptions{
				withActor:   true,
				maxAttempts: mo.maxAttempts,
				backoff:     mo.backoff,
			})
			if err != nil {
				return err
			}
			defer ws.logger.Sync()

			shift, err := parseShift(mo.shift)
			if err != nil {
				return err
			}
			key := haccp.Key{EntityID: args[0], Day: day, Shift: shift}

			if err := mark(cmd.Context(), ws.session, key, value, mo.clear); err != nil {
				return err
			}

			// 等待写入结束，失败不回滚，只报告
			ws.session.Wait()
			st, ok := ws.session.WriteStatus(key)
			if ok && st.State == haccp.WriteFailed {
				return fmt.Errorf("写入失败（尝试 %d 次）: %w", st.Attempts, st.Err)
			}

			disp := ws.session.Display(key)
			fmt.Fprintf(cmd.OutOrStdout(), "%s 第 %d 天: %q\n", key.EntityID, key.Day, disp.Value)
			return nil
		},
	}
	cmd.Flags().StringVar(&mo.shift, "shift", "morning", "温度日志班次: morning | evening（或 0 | 1）")
	cmd.Flags().BoolVar(&mo.clear, "clear", false, "清除健康状态")
	cmd.Flags().IntVar(&mo.maxAttempts, "attempts", 3, "写入失败时的最大尝试次数")
	cmd.Flags().DurationVar(&mo.backoff, "backoff", 500*time.Millisecond, "重试退避基数")
	return cmd
}

func parseShift(s string) (haccp.Shift, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "morning", "утро":
		return haccp.ShiftMorning, nil
	case "1", "evening", "вечер":
		return haccp.ShiftEvening, nil
	}
	return 0, fmt.Errorf("班次无效: %q", s)
}

// mark 把一次命令行修改翻译为控制器动作序列
func mark(ctx context.Context, s *haccp.Session, key haccp.Key, value string, clear bool) error {
	action, err := s.Activate(ctx, key)
	if err != nil {
		return err
	}

	switch action.Kind {
	case haccp.ActionNone:
		return fmt.Errorf("单元格不可编辑（不在表格内或为未来日期）")

	case haccp.ActionOpenInput:
		if strings.TrimSpace(value) == "" {
			s.Cancel()
			return fmt.Errorf("温度读数不能为空")
		}
		_, err := s.Submit(ctx, value)
		return err

	case haccp.ActionWrite:
		// 空的健康单元格：已写入 зд；需要其他状态时再次打开选择器，发出第二次写入
		// 控制器不提供跳过 зд 的入口，命令行与网页端保持同一条路径
		if !clear && (value == "" || value == string(haccp.CodeHealthy)) {
			return nil
		}
		if action, err = s.Activate(ctx, key); err != nil {
			return err
		}
		if action.Kind != haccp.ActionOpenPicker {
			return fmt.Errorf("无法打开状态选择器")
		}
		fallthrough

	case haccp.ActionOpenPicker:
		if clear {
			_, err := s.Clear(ctx)
			return err
		}
		if value == "" {
			s.Cancel()
			return fmt.Errorf("请指定状态码: зд | отст | отп | в | б/л，或使用 --clear")
		}
		if !haccp.ValidHealthCode(value) {
			s.Cancel()
			return fmt.Errorf("未知状态码: %q", value)
		}
		_, err := s.Choose(ctx, haccp.HealthCode(value))
		return err
	}
	return nil
}
