package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"unit-one/backend/internal/haccp"
)

// theme 终端表格的配色
type theme struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Label    lipgloss.Style
	Cell     lipgloss.Style
	Future   lipgloss.Style
	Implicit lipgloss.Style
	Tones    map[haccp.Status]lipgloss.Style
}

var defaultTheme = theme{
	Title:    lipgloss.NewStyle().Bold(true),
	Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2196F3")),
	Label:    lipgloss.NewStyle(),
	Cell:     lipgloss.NewStyle(),
	Future:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280")),
	Implicit: lipgloss.NewStyle().Faint(true),
	Tones: map[haccp.Status]lipgloss.Style{
		haccp.StatusOK:       lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A")),
		haccp.StatusWarning:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107")),
		haccp.StatusCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935")).Bold(true),
	},
}

// futureMark 未来日期单元格的占位
const futureMark = "·"

// gridRow 表格中的一行：温度日志每台设备两行
type gridRow struct {
	label string
	keyOf func(day int) haccp.Key
}

func rowsOf(g *haccp.Grid) []gridRow {
	var rows []gridRow
	for _, e := range g.Entities() {
		id := e.ID
		if g.Kind() == haccp.KindHealth {
			rows = append(rows, gridRow{
				label: e.Label(),
				keyOf: func(day int) haccp.Key { return haccp.Key{EntityID: id, Day: day} },
			})
			continue
		}
		for _, shift := range haccp.Shifts {
			shift := shift
			rows = append(rows, gridRow{
				label: fmt.Sprintf("%s (%s)", e.Label(), shift.Label()),
				keyOf: func(day int) haccp.Key { return haccp.Key{EntityID: id, Day: day, Shift: shift} },
			})
		}
	}
	return rows
}

// renderGrid 把表格渲染为带颜色的文本
// 未来日期显示为 "·"，健康日志中隐式的休息日以淡色显示
func renderGrid(g *haccp.Grid, today time.Time, th theme) string {
	month := g.Month()
	days := month.Days()
	rows := rowsOf(g)

	labelWidth := lipgloss.Width(haccp.SignatureLabel)
	for _, r := range rows {
		if w := lipgloss.Width(r.label); w > labelWidth {
			labelWidth = w
		}
	}

	// 列宽取该列最长的值
	cellWidth := 2
	cells := make([][]haccp.Display, len(rows))
	for i, r := range rows {
		cells[i] = make([]haccp.Display, days+1)
		for d := 1; d <= days; d++ {
			disp := g.Display(r.keyOf(d), today)
			cells[i][d] = disp
			if w := lipgloss.Width(disp.Value); w > cellWidth {
				cellWidth = w
			}
		}
	}

	pad := func(s string, width int) string {
		if gap := width - lipgloss.Width(s); gap > 0 {
			return s + strings.Repeat(" ", gap)
		}
		return s
	}

	var sb strings.Builder
	sb.WriteString(th.Title.Render(haccp.Title(g.Kind(), month)))
	sb.WriteString("\n")

	// 表头
	sb.WriteString(th.Header.Render(pad("", labelWidth)))
	for d := 1; d <= days; d++ {
		sb.WriteString(" ")
		sb.WriteString(th.Header.Render(pad(strconv.Itoa(d), cellWidth)))
	}
	sb.WriteString("\n")

	for i, r := range rows {
		sb.WriteString(th.Label.Render(pad(r.label, labelWidth)))
		for d := 1; d <= days; d++ {
			sb.WriteString(" ")
			sb.WriteString(renderCell(cells[i][d], cellWidth, th, pad))
		}
		sb.WriteString("\n")
	}

	if g.Kind() == haccp.KindHealth {
		sb.WriteString(th.Label.Render(pad(haccp.SignatureLabel, labelWidth)))
		sheet := haccp.ToSheet(g, today)
		signature := sheet.Rows[len(sheet.Rows)-1]
		for d := 1; d <= days; d++ {
			sb.WriteString(" ")
			sb.WriteString(th.Cell.Render(pad(initial(signature[d]), cellWidth)))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderCell(disp haccp.Display, width int, th theme, pad func(string, int) string) string {
	switch {
	case disp.State == haccp.CellFuture:
		return th.Future.Render(pad(futureMark, width))
	case disp.Implicit:
		return th.Implicit.Render(pad(disp.Value, width))
	}
	if style, ok := th.Tones[disp.Status]; ok {
		return style.Render(pad(disp.Value, width))
	}
	return th.Cell.Render(pad(disp.Value, width))
}

// initial 签名行只显示姓氏首字母，保持列宽
func initial(surname string) string {
	for _, r := range surname {
		return string(r) + "."
	}
	return ""
}
