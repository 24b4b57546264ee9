package dto

// ── HACCP 日志模块 DTO ──
// 日志接口沿用前端约定的 camelCase 字段名

// 名册类型
const (
	RosterEquipment = "equipment"
	RosterEmployees = "employees"
)

// RosterQuery 名册查询参数
type RosterQuery struct {
	Kind string `form:"kind" binding:"required,oneof=equipment employees"`
}

// RosterItem 名册条目（设备或员工）
type RosterItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Surname  string `json:"surname,omitempty"`
	Position string `json:"position,omitempty"`
	Type     string `json:"type,omitempty"`
	Zone     string `json:"zone,omitempty"`
}

// MonthlyLogsQuery 月度日志查询参数
type MonthlyLogsQuery struct {
	EstablishmentID string `form:"establishmentId" binding:"required,max=36"`
	Year            int    `form:"year"            binding:"required,min=1970,max=9999"`
	Month           int    `form:"month"           binding:"required,min=1,max=12"`
	Type            string `form:"type"            binding:"required,oneof=temperature health"`
}

// ExportQuery 导出参数
type ExportQuery struct {
	MonthlyLogsQuery
	Format string `form:"format" binding:"omitempty,oneof=xlsx csv"`
}

// LogEntryResponse 单条日志
// 温度日志带 equipmentId / shift / value，健康日志带 employeeId / comment
type LogEntryResponse struct {
	EquipmentID      string  `json:"equipmentId,omitempty"`
	EmployeeID       string  `json:"employeeId,omitempty"`
	Date             string  `json:"date"` // YYYY-MM-DD
	Shift            *int    `json:"shift,omitempty"`
	Value            *string `json:"value,omitempty"`
	Comment          *string `json:"comment,omitempty"`
	InspectorSurname string  `json:"inspectorSurname"`
}

// CreateLogRequest 写入单个单元格
// equipmentId 与 employeeId 二选一；date 接受 YYYY-MM-DD 或带时区的 RFC 3339 时间，
// 后者取其自身时区下的日期
type CreateLogRequest struct {
	EstablishmentID string  `json:"establishmentId" binding:"required,max=36"`
	EquipmentID     string  `json:"equipmentId"     binding:"omitempty,max=36"`
	EmployeeID      string  `json:"employeeId"      binding:"omitempty,max=36"`
	Value           *string `json:"value"           binding:"omitempty,max=20"`
	Comment         *string `json:"comment"         binding:"omitempty,max=10"`
	Shift           *int    `json:"shift"           binding:"omitempty,oneof=0 1"`
	Date            string  `json:"date"            binding:"required"`
}
