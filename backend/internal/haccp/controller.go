package haccp

import (
	"sync"
	"time"
)

// ActionKind 单元格激活后的动作
type ActionKind int

const (
	ActionNone       ActionKind = iota // 无动作（未来日期、越界、无打开的浮层）
	ActionWrite                        // 直接写入 Value
	ActionOpenPicker                   // 打开健康状态选择器
	ActionOpenInput                    // 打开温度输入框
)

func (k ActionKind) String() string {
	switch k {
	case ActionWrite:
		return "write"
	case ActionOpenPicker:
		return "open-picker"
	case ActionOpenInput:
		return "open-input"
	default:
		return "none"
	}
}

// Action 控制器输出
type Action struct {
	Kind    ActionKind
	Key     Key
	Value   string       // 仅 ActionWrite
	Options []HealthCode // 仅 ActionOpenPicker：五个状态码，清除操作单独提供
	Current string       // 浮层打开时单元格的当前值
}

// Overlay 当前打开的浮层
type Overlay struct {
	Kind ActionKind // ActionOpenPicker | ActionOpenInput
	Key  Key
}

// Controller 单元格交互状态机
// 同一时刻最多一个浮层；打开新浮层会关闭旧浮层，Cancel 关闭且不写入
type Controller struct {
	clock Clock
	loc   *time.Location

	mu   sync.Mutex
	open *Overlay
}

// NewController 创建控制器；clock 为 nil 时使用系统时钟
func NewController(clock Clock, loc *time.Location) *Controller {
	if clock == nil {
		clock = SystemClock
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Controller{clock: clock, loc: loc}
}

// Today 控制器时区下的今天
func (c *Controller) Today() time.Time {
	return Today(c.clock, c.loc)
}

// Activate 点击单元格
func (c *Controller) Activate(grid *Grid, key Key) Action {
	if grid == nil || !grid.Contains(key) {
		return Action{Kind: ActionNone, Key: key}
	}
	if grid.Kind() == KindHealth {
		key.Shift = 0
	}

	state := grid.StateOf(key, c.Today())
	if state == CellFuture {
		return Action{Kind: ActionNone, Key: key}
	}
	cell, _ := grid.Cell(key)

	switch grid.Kind() {
	case KindHealth:
		if state == CellEmpty {
			c.close()
			return Action{Kind: ActionWrite, Key: key, Value: string(CodeHealthy)}
		}
		c.setOpen(ActionOpenPicker, key)
		return Action{
			Kind:    ActionOpenPicker,
			Key:     key,
			Options: append([]HealthCode(nil), HealthCodes...),
			Current: cell.Value,
		}
	case KindTemperature:
		c.setOpen(ActionOpenInput, key)
		return Action{Kind: ActionOpenInput, Key: key, Current: cell.Value}
	}
	return Action{Kind: ActionNone, Key: key}
}

// Choose 在选择器中选中状态码
func (c *Controller) Choose(code HealthCode) Action {
	if code == CodeEmpty {
		return c.Clear()
	}
	if !ValidHealthCode(string(code)) {
		return Action{Kind: ActionNone}
	}
	ov, ok := c.take(ActionOpenPicker)
	if !ok {
		return Action{Kind: ActionNone}
	}
	return Action{Kind: ActionWrite, Key: ov.Key, Value: string(code)}
}

// Clear 选择器中的清除操作：写入空状态码
func (c *Controller) Clear() Action {
	ov, ok := c.take(ActionOpenPicker)
	if !ok {
		return Action{Kind: ActionNone}
	}
	return Action{Kind: ActionWrite, Key: ov.Key, Value: string(CodeEmpty)}
}

// Submit 提交温度输入；去空白后为空则不写入，输入框保持打开
func (c *Controller) Submit(text string) Action {
	value := NormalizeTemperature(text)
	if value == "" {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.open == nil || c.open.Kind != ActionOpenInput {
			return Action{Kind: ActionNone}
		}
		return Action{Kind: ActionNone, Key: c.open.Key}
	}
	ov, ok := c.take(ActionOpenInput)
	if !ok {
		return Action{Kind: ActionNone}
	}
	return Action{Kind: ActionWrite, Key: ov.Key, Value: value}
}

// Cancel 关闭浮层，不写入
func (c *Controller) Cancel() {
	c.close()
}

// Open 当前打开的浮层；没有时返回 nil
func (c *Controller) Open() *Overlay {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open == nil {
		return nil
	}
	ov := *c.open
	return &ov
}

func (c *Controller) setOpen(kind ActionKind, key Key) {
	c.mu.Lock()
	c.open = &Overlay{Kind: kind, Key: key}
	c.mu.Unlock()
}

func (c *Controller) close() {
	c.mu.Lock()
	c.open = nil
	c.mu.Unlock()
}

// take 取出并关闭指定类型的浮层
func (c *Controller) take(kind ActionKind) (Overlay, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open == nil || c.open.Kind != kind {
		return Overlay{}, false
	}
	ov := *c.open
	c.open = nil
	return ov, true
}
