package haccp

import (
	"strings"
	"time"
)

// Entity 日志行对象：设备或员工（表格内只读）
type Entity struct {
	ID      string
	Name    string
	Surname string // 仅员工
	Type    string // 仅设备：холодильное | морозильное
	Zone    string // 仅设备
}

// Label 行标题：员工为 "姓 名"，设备为名称
func (e Entity) Label() string {
	if e.Surname == "" {
		return e.Name
	}
	return strings.TrimSpace(e.Surname + " " + e.Name)
}

// Entry 一条已存储的日志记录
type Entry struct {
	EntityID   string
	Date       time.Time // 日历日期
	Shift      Shift     // 健康日志恒为 0
	Value      string
	RecordedBy string
}

// Key 单元格坐标；健康日志的 Shift 恒为 0
type Key struct {
	EntityID string
	Day      int
	Shift    Shift
}

// Cell 单元格内容
type Cell struct {
	Value      string
	RecordedBy string
}

// Grid 一个月的日志表格状态
// Grid 不可变：ApplyEdit 返回新实例，旧实例可以继续被读取
type Grid struct {
	kind     Kind
	month    Month
	entities []Entity
	index    map[string]int // entity id → 行序
	cells    map[Key]Cell
}

// Hydrate 由名册与当月日志构建表格
// 不在当月、不在名册中、班次非法的记录被忽略；同一单元格出现多条时后者覆盖前者
func Hydrate(kind Kind, month Month, entities []Entity, entries []Entry) *Grid {
	g := &Grid{
		kind:     kind,
		month:    month,
		entities: append([]Entity(nil), entities...),
		index:    make(map[string]int, len(entities)),
		cells:    make(map[Key]Cell, len(entries)),
	}
	for i, e := range g.entities {
		g.index[e.ID] = i
	}

	for _, en := range entries {
		if _, ok := g.index[en.EntityID]; !ok {
			continue
		}
		if !month.Contains(en.Date) {
			continue
		}
		key := Key{EntityID: en.EntityID, Day: en.Date.Day()}
		if kind == KindTemperature {
			if !en.Shift.Valid() {
				continue
			}
			key.Shift = en.Shift
		}
		g.cells[key] = Cell{Value: en.Value, RecordedBy: en.RecordedBy}
	}
	return g
}

// ApplyEdit 返回只替换了目标单元格的新表格
// 不校验日期边界（由 Controller 负责），也不发起任何网络请求
func (g *Grid) ApplyEdit(key Key, value, recordedBy string) *Grid {
	if g.kind == KindHealth {
		key.Shift = 0
	}
	cells := make(map[Key]Cell, len(g.cells)+1)
	for k, c := range g.cells {
		cells[k] = c
	}
	cells[key] = Cell{Value: value, RecordedBy: recordedBy}

	return &Grid{
		kind:     g.kind,
		month:    g.month,
		entities: g.entities,
		index:    g.index,
		cells:    cells,
	}
}

// Kind 日志类型
func (g *Grid) Kind() Kind { return g.kind }

// Month 表格月份
func (g *Grid) Month() Month { return g.month }

// Entities 名册（按原顺序）
func (g *Grid) Entities() []Entity { return g.entities }

// Entity 按 ID 查找名册对象
func (g *Grid) Entity(id string) (Entity, bool) {
	i, ok := g.index[id]
	if !ok {
		return Entity{}, false
	}
	return g.entities[i], true
}

// Cell 读取单元格；未记录时 ok=false
func (g *Grid) Cell(key Key) (Cell, bool) {
	if g.kind == KindHealth {
		key.Shift = 0
	}
	c, ok := g.cells[key]
	return c, ok
}

// Cells 全部已记录单元格的副本
func (g *Grid) Cells() map[Key]Cell {
	out := make(map[Key]Cell, len(g.cells))
	for k, c := range g.cells {
		out[k] = c
	}
	return out
}

// Date 单元格对应的日历日期
func (g *Grid) Date(key Key) time.Time {
	return g.month.Date(key.Day)
}

// Contains 坐标是否落在表格内（名册内、日期在当月、班次合法）
func (g *Grid) Contains(key Key) bool {
	if _, ok := g.index[key.EntityID]; !ok {
		return false
	}
	if key.Day < 1 || key.Day > g.month.Days() {
		return false
	}
	if g.kind == KindTemperature && !key.Shift.Valid() {
		return false
	}
	return true
}

// ── 展示 ──

// CellState 单元格交互状态
type CellState int

const (
	CellFuture CellState = iota // 未来日期：不可交互
	CellEmpty                   // 今天及以前，未记录
	CellFilled                  // 今天及以前，已记录
)

// Display 单元格的展示结果
type Display struct {
	State    CellState
	Value    string // 展示值；未来日期恒为空
	Status   Status // 着色
	Implicit bool   // 展示值来自默认规则而非存储
	Editable bool
}

// StateOf 单元格交互状态；今天按 today（日历日期）判断
func (g *Grid) StateOf(key Key, today time.Time) CellState {
	if IsFuture(g.Date(key), today) {
		return CellFuture
	}
	if c, ok := g.Cell(key); ok && c.Value != "" {
		return CellFilled
	}
	return CellEmpty
}

// Display 计算单元格的展示值与着色
// 健康日志：今天及以前且无存储值的单元格统一显示为休息日 "в"，实时视图与导出一致
func (g *Grid) Display(key Key, today time.Time) Display {
	state := g.StateOf(key, today)
	if state == CellFuture {
		return Display{State: CellFuture, Status: StatusNone}
	}

	cell, _ := g.Cell(key)
	d := Display{State: state, Value: cell.Value, Status: StatusNone, Editable: true}

	switch g.kind {
	case KindTemperature:
		entity, _ := g.Entity(key.EntityID)
		d.Status = ClassifyTemperature(cell.Value, entity.Type)
	case KindHealth:
		if state == CellEmpty {
			d.Value = string(CodeDayOff)
			d.Implicit = true
		}
		d.Status = ClassifyHealth(d.Value).Tone
	}
	return d
}
