package haccp

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// Kind 日志类型
type Kind string

const (
	KindTemperature Kind = "temperature" // 冷链设备温度日志
	KindHealth      Kind = "health"      // 员工健康日志
)

// Valid 是否为已知日志类型
func (k Kind) Valid() bool {
	return k == KindTemperature || k == KindHealth
}

// Status 单元格语义状态，用于着色
type Status string

const (
	StatusOK       Status = "ok"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
	StatusNone     Status = "none"
)

// ── 温度分类 ──

// 设备制冷类别
const (
	RefrigeratorType = "холодильное"
	FreezerType      = "морозильное"
)

// 温度阈值（℃）
const (
	freezerMax      = -15.0
	fridgeOKMin     = 2.0
	fridgeOKMax     = 6.0
	fridgeWarnMin   = 0.0
	fridgeWarnUpper = 8.0
)

// IsFreezer 设备类别是否为冷冻（Unicode 大小写折叠后比较）
// cases.Caser 有内部状态，不能跨 goroutine 共享，每次调用新建
func IsFreezer(equipmentType string) bool {
	fold := cases.Fold()
	return fold.String(strings.TrimSpace(equipmentType)) == fold.String(FreezerType)
}

// NormalizeTemperature 去除首尾空白并把逗号小数点替换为点号
func NormalizeTemperature(raw string) string {
	return strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
}

// ParseTemperature 解析温度读数；无法解析或非有限值时 ok=false
func ParseTemperature(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(NormalizeTemperature(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ClassifyTemperature 根据设备类别判定温度读数状态
//
//   - 冷冻设备：≤ -15 为 ok，否则 critical
//   - 冷藏设备：[2, 6] 为 ok；[0, 2) 或 (6, 8) 为 warning；其余 critical
//   - 无法解析的读数一律为 none，不返回错误
func ClassifyTemperature(raw, equipmentType string) Status {
	v, ok := ParseTemperature(raw)
	if !ok {
		return StatusNone
	}

	if IsFreezer(equipmentType) {
		if v <= freezerMax {
			return StatusOK
		}
		return StatusCritical
	}

	switch {
	case v >= fridgeOKMin && v <= fridgeOKMax:
		return StatusOK
	case v >= fridgeWarnMin && v < fridgeOKMin:
		return StatusWarning
	case v > fridgeOKMax && v < fridgeWarnUpper:
		return StatusWarning
	default:
		return StatusCritical
	}
}

// ── 健康状态 ──

// HealthCode 健康日志状态码（封闭集合）
type HealthCode string

const (
	CodeHealthy   HealthCode = "зд"   // 健康
	CodeSuspended HealthCode = "отст" // 停职
	CodeVacation  HealthCode = "отп"  // 休假
	CodeDayOff    HealthCode = "в"    // 休息日
	CodeSickLeave HealthCode = "б/л"  // 病假
	CodeEmpty     HealthCode = ""     // 已清除
)

// HealthCodes 状态选择器中展示的五个状态码（顺序固定）
var HealthCodes = []HealthCode{CodeHealthy, CodeSuspended, CodeVacation, CodeDayOff, CodeSickLeave}

// HealthStatus 状态码对应的展示信息
type HealthStatus struct {
	Code  HealthCode
	Key   string // healthy | suspended | vacation | day-off | sick-leave，空码为 ""
	Label string
	Tone  Status // 导出着色使用
}

var healthStatuses = map[HealthCode]HealthStatus{
	CodeHealthy:   {Code: CodeHealthy, Key: "healthy", Label: "Здоров", Tone: StatusOK},
	CodeSuspended: {Code: CodeSuspended, Key: "suspended", Label: "Отстранён", Tone: StatusCritical},
	CodeVacation:  {Code: CodeVacation, Key: "vacation", Label: "Отпуск", Tone: StatusNone},
	CodeDayOff:    {Code: CodeDayOff, Key: "day-off", Label: "Выходной", Tone: StatusNone},
	CodeSickLeave: {Code: CodeSickLeave, Key: "sick-leave", Label: "Больничный", Tone: StatusWarning},
}

// ValidHealthCode 是否属于封闭集合（含空码）
func ValidHealthCode(code string) bool {
	if code == string(CodeEmpty) {
		return true
	}
	_, ok := healthStatuses[HealthCode(code)]
	return ok
}

// ClassifyHealth 状态码到展示状态的恒等映射；未知或空码返回中性状态
func ClassifyHealth(code string) HealthStatus {
	if st, ok := healthStatuses[HealthCode(strings.TrimSpace(code))]; ok {
		return st
	}
	return HealthStatus{Code: CodeEmpty, Tone: StatusNone}
}
