package model

import (
	"time"

	"gorm.io/gorm"
)

// TemperatureLog 温度日志表：对应 temperature_logs
// 每台设备每天两条（早班 0 / 晚班 1），重复写入覆盖原值
type TemperatureLog struct {
	TemperatureLogID string    `gorm:"size:36;primaryKey"                                json:"temperature_log_id"`
	EstablishmentID  string    `gorm:"size:36;not null;index"                            json:"establishment_id"`
	EquipmentID      string    `gorm:"size:36;not null;uniqueIndex:uidx_temperature_cell" json:"equipment_id"`
	LogDate          time.Time `gorm:"type:date;not null;uniqueIndex:uidx_temperature_cell;index" json:"log_date"`
	Shift            int       `gorm:"type:smallint;not null;uniqueIndex:uidx_temperature_cell" json:"shift"`
	Value            string    `gorm:"size:20;not null"                                  json:"value"` // 已归一化为点号小数
	InspectorSurname string    `gorm:"size:100;not null"                                 json:"inspector_surname"`
	CreatedBy        string    `gorm:"size:36"                                           json:"created_by,omitempty"`
	BaseModel
}

// TableName 指定表名
func (TemperatureLog) TableName() string { return "temperature_logs" }

// BeforeCreate 生成主键
func (l *TemperatureLog) BeforeCreate(_ *gorm.DB) error {
	ensureID(&l.TemperatureLogID)
	return nil
}

// HealthLog 员工健康日志表：对应 health_logs
// 每名员工每天一条状态码，空码表示已清除
type HealthLog struct {
	HealthLogID      string    `gorm:"size:36;primaryKey"                             json:"health_log_id"`
	EstablishmentID  string    `gorm:"size:36;not null;index"                         json:"establishment_id"`
	EmployeeID       string    `gorm:"size:36;not null;uniqueIndex:uidx_health_cell"  json:"employee_id"`
	LogDate          time.Time `gorm:"type:date;not null;uniqueIndex:uidx_health_cell;index" json:"log_date"`
	Comment          string    `gorm:"size:10;not null;default:''"                    json:"comment"` // зд | отст | отп | в | б/л | ""
	InspectorSurname string    `gorm:"size:100;not null"                              json:"inspector_surname"`
	CreatedBy        string    `gorm:"size:36"                                        json:"created_by,omitempty"`
	BaseModel
}

// TableName 指定表名
func (HealthLog) TableName() string { return "health_logs" }

// BeforeCreate 生成主键
func (l *HealthLog) BeforeCreate(_ *gorm.DB) error {
	ensureID(&l.HealthLogID)
	return nil
}
