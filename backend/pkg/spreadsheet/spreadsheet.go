package spreadsheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Format 导出文件格式
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// 支持的 CSV 字符集
const (
	CharsetUTF8        = "utf-8"
	CharsetWindows1251 = "windows-1251"
)

// 单元格着色，与业务层的状态值一致
const (
	ToneOK       = "ok"
	ToneWarning  = "warning"
	ToneCritical = "critical"
)

// ParseFormat 解析格式参数，空值默认为 xlsx
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("不支持的导出格式: %q", s)
}

// ContentType HTTP 响应的 Content-Type
func (f Format) ContentType(charset string) string {
	if f == FormatCSV {
		if charset == CharsetWindows1251 {
			return "text/csv; charset=windows-1251"
		}
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Table 待写出的表格；Tones 与 Rows 形状一致，空串表示不着色
type Table struct {
	Title string
	Name  string
	Rows  [][]string
	Tones [][]string
}

// Write 按格式写出表格
func Write(w io.Writer, t Table, format Format, charset string) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, t)
	case FormatCSV:
		return WriteCSV(w, t, charset)
	}
	return fmt.Errorf("不支持的导出格式: %q", format)
}

// ── xlsx ──

var toneFills = map[string]string{
	ToneOK:       "#C6EFCE",
	ToneWarning:  "#FFEB9C",
	ToneCritical: "#FFC7CE",
}

// WriteXLSX 写出 Excel 文件：第 1 行标题（合并），第 2 行起为表格
func WriteXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := t.Name
	if sheetName == "" {
		sheetName = "Журнал"
	}
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("创建工作表失败: %w", err)
	}
	f.SetActiveSheet(idx)
	if sheetName != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}

	width := 0
	for _, row := range t.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		width = 1
	}
	last := colName(width)

	f.SetColWidth(sheetName, "A", "A", 30)
	if width > 1 {
		f.SetColWidth(sheetName, "B", last, 7)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 10},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	toneStyles := make(map[string]int, len(toneFills))
	for tone, color := range toneFills {
		id, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		})
		if err != nil {
			return err
		}
		toneStyles[tone] = id
	}

	// 标题行
	f.SetCellValue(sheetName, "A1", t.Title)
	if width > 1 {
		f.MergeCell(sheetName, "A1", last+"1")
	}
	f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	for r, row := range t.Rows {
		excelRow := r + 2
		for c, value := range row {
			f.SetCellValue(sheetName, cell(c+1, excelRow), value)
		}
		if r == 0 {
			f.SetCellStyle(sheetName, cell(1, excelRow), cell(len(row), excelRow), headerStyle)
			continue
		}
		if r < len(t.Tones) {
			for c, tone := range t.Tones[r] {
				if id, ok := toneStyles[tone]; ok {
					f.SetCellStyle(sheetName, cell(c+1, excelRow), cell(c+1, excelRow), id)
				}
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("写入 Excel 失败: %w", err)
	}
	return nil
}

func colName(n int) string {
	name, _ := excelize.ColumnNumberToName(n)
	return name
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// ── csv ──

const utf8BOM = "\uFEFF"

// WriteCSV 写出 CSV：首行标题，其后为表格
// utf-8 输出带 BOM，windows-1251 中无法编码的字符替换为问号
func WriteCSV(w io.Writer, t Table, charset string) error {
	var out io.Writer = w
	var closer io.Closer

	switch strings.ToLower(charset) {
	case "", CharsetUTF8:
		if _, err := io.WriteString(w, utf8BOM); err != nil {
			return err
		}
	case CharsetWindows1251:
		enc := encoding.ReplaceUnsupported(charmap.Windows1251.NewEncoder())
		tw := transform.NewWriter(w, enc)
		out, closer = tw, tw
	default:
		return fmt.Errorf("不支持的字符集: %q", charset)
	}

	cw := csv.NewWriter(out)
	cw.Comma = ';'
	if t.Title != "" {
		if err := cw.Write([]string{t.Title}); err != nil {
			return err
		}
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("写入 CSV 失败: %w", err)
	}
	if closer != nil {
		return closer.Close()
	}
	return nil
}
