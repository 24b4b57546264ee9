package haccp

import (
	"fmt"
	"strconv"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"unit-one/backend/pkg/spreadsheet"
)

// 导出表格中的固定文本
const (
	SignatureLabel  = "Подпись проверяющего"
	MissingReading  = "-"
	equipmentHeader = "Оборудование"
	employeeHeader  = "Сотрудник"
)

// Sheet 导出用的二维表格，Tones 与 Rows 形状一致
type Sheet struct {
	Title string
	Name  string // 工作表名
	Rows  [][]string
	Tones [][]Status
}

// Width 列数
func (s Sheet) Width() int {
	if len(s.Rows) == 0 {
		return 0
	}
	return len(s.Rows[0])
}

// Table 转为写出层的表格；StatusNone 不着色
func (s Sheet) Table() spreadsheet.Table {
	tones := make([][]string, len(s.Tones))
	for i, row := range s.Tones {
		tones[i] = make([]string, len(row))
		for j, st := range row {
			if st != StatusNone {
				tones[i][j] = string(st)
			}
		}
	}
	return spreadsheet.Table{Title: s.Title, Name: s.Name, Rows: s.Rows, Tones: tones}
}

// Title 日志标题
func Title(kind Kind, month Month) string {
	switch kind {
	case KindTemperature:
		return fmt.Sprintf("Журнал учета температурного режима холодильного оборудования, %s", month)
	case KindHealth:
		return fmt.Sprintf("Гигиенический журнал (сотрудники), %s", month)
	}
	return month.String()
}

// ToSheet 把表格序列化为导出用的二维表格
//
// 温度日志每台设备两行（早班、晚班），无记录为 "-"；
// 健康日志每名员工一行，状态码大写，今天及以前无记录为 "В"，未来为空，
// 末尾追加检查人签名行
func ToSheet(grid *Grid, today time.Time) Sheet {
	month := grid.Month()
	days := month.Days()

	sheet := Sheet{
		Title: Title(grid.Kind(), month),
		Name:  month.String(),
	}

	header := make([]string, 0, days+1)
	if grid.Kind() == KindTemperature {
		header = append(header, equipmentHeader)
	} else {
		header = append(header, employeeHeader)
	}
	for d := 1; d <= days; d++ {
		header = append(header, strconv.Itoa(d))
	}
	sheet.append(header, nil)

	switch grid.Kind() {
	case KindTemperature:
		for _, e := range grid.Entities() {
			for _, shift := range Shifts {
				row, tones := newRow(fmt.Sprintf("%s (%s)", e.Label(), shift.Label()), days)
				for d := 1; d <= days; d++ {
					row[d] = MissingReading
					if c, ok := grid.Cell(Key{EntityID: e.ID, Day: d, Shift: shift}); ok && c.Value != "" {
						row[d] = c.Value
						tones[d] = ClassifyTemperature(c.Value, e.Type)
					}
				}
				sheet.append(row, tones)
			}
		}
	case KindHealth:
		upper := cases.Upper(language.Russian)
		for _, e := range grid.Entities() {
			row, tones := newRow(e.Label(), days)
			for d := 1; d <= days; d++ {
				disp := grid.Display(Key{EntityID: e.ID, Day: d}, today)
				if disp.State == CellFuture {
					continue
				}
				row[d] = upper.String(disp.Value)
				tones[d] = disp.Status
			}
			sheet.append(row, tones)
		}

		row, tones := newRow(SignatureLabel, days)
		for d := 1; d <= days; d++ {
			row[d] = signatureOf(grid, d)
		}
		sheet.append(row, tones)
	}
	return sheet
}

// signatureOf 当天按名册顺序第一个非空的 recordedBy
// 多名检查人同日记录时只保留第一个
func signatureOf(grid *Grid, day int) string {
	for _, e := range grid.Entities() {
		if c, ok := grid.Cell(Key{EntityID: e.ID, Day: day}); ok && c.RecordedBy != "" {
			return c.RecordedBy
		}
	}
	return ""
}

func newRow(label string, days int) ([]string, []Status) {
	row := make([]string, days+1)
	tones := make([]Status, days+1)
	row[0] = label
	for i := range tones {
		tones[i] = StatusNone
	}
	return row, tones
}

func (s *Sheet) append(row []string, tones []Status) {
	if tones == nil {
		tones = make([]Status, len(row))
		for i := range tones {
			tones[i] = StatusNone
		}
	}
	s.Rows = append(s.Rows, row)
	s.Tones = append(s.Tones, tones)
}
