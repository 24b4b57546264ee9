package haccp

import (
	"fmt"
	"time"
)

// Shift 温度日志班次
type Shift int

const (
	ShiftMorning Shift = 0
	ShiftEvening Shift = 1
)

// Shifts 每天的两个固定班次
var Shifts = []Shift{ShiftMorning, ShiftEvening}

// Valid 是否为合法班次
func (s Shift) Valid() bool {
	return s == ShiftMorning || s == ShiftEvening
}

// Label 班次在表格中的显示名
func (s Shift) Label() string {
	if s == ShiftEvening {
		return "вечер"
	}
	return "утро"
}

// Month 日历月
type Month struct {
	Year  int
	Month time.Month
}

// NewMonth 校验并构造月份
func NewMonth(year, month int) (Month, error) {
	if year < 1970 || year > 9999 {
		return Month{}, fmt.Errorf("年份超出范围: %d", year)
	}
	if month < 1 || month > 12 {
		return Month{}, fmt.Errorf("月份超出范围: %d", month)
	}
	return Month{Year: year, Month: time.Month(month)}, nil
}

// ParseMonth 解析 "2006-01" 格式
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("月份格式无效 %q: %w", s, err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// MonthOf 日期所在月份
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Days 当月天数
func (m Month) Days() int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Date 当月第 day 天的日历日期（UTC 零点表示）
func (m Month) Date(day int) time.Time {
	return time.Date(m.Year, m.Month, day, 0, 0, 0, 0, time.UTC)
}

// Start 当月第一天
func (m Month) Start() time.Time { return m.Date(1) }

// End 下月第一天（不含）
func (m Month) End() time.Time { return m.Date(1).AddDate(0, 1, 0) }

// Next 下一个月
func (m Month) Next() Month { return MonthOf(m.End()) }

// Prev 上一个月
func (m Month) Prev() Month { return MonthOf(m.Start().AddDate(0, -1, 0)) }

// Contains 日历日期是否落在当月
func (m Month) Contains(date time.Time) bool {
	return date.Year() == m.Year && date.Month() == m.Month
}

// ── 时钟 ──

// Clock 当前时间来源，测试中可替换
type Clock interface {
	Now() time.Time
}

// ClockFunc 函数适配为 Clock
type ClockFunc func() time.Time

// Now 实现 Clock
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock 系统时钟
var SystemClock Clock = ClockFunc(time.Now)

// FixedClock 固定时间的时钟
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// CivilDate 把时刻换算为 loc 时区下的日历日期（UTC 零点表示）
// 所有 "今天" 与日志日期的比较都在这一粒度上进行
func CivilDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today 时钟在 loc 时区下的今天
func Today(clock Clock, loc *time.Location) time.Time {
	return CivilDate(clock.Now(), loc)
}

// IsFuture 日历日期 day 是否严格晚于 today
func IsFuture(day, today time.Time) bool {
	return day.After(today)
}

// LocalMidnight 日历日期在 loc 时区的零点时刻，写入请求的 date 字段使用
func LocalMidnight(date time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
}
