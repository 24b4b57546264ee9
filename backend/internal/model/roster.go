package model

import "gorm.io/gorm"

// Equipment 冷链设备表：对应 equipment
type Equipment struct {
	EquipmentID     string `gorm:"size:36;primaryKey"          json:"equipment_id"`
	EstablishmentID string `gorm:"size:36;not null;index"      json:"establishment_id"`
	Name            string `gorm:"size:200;not null"           json:"name"`
	Type            string `gorm:"size:50;not null"            json:"type"` // холодильное | морозильное
	Zone            string `gorm:"size:100"                    json:"zone,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (Equipment) TableName() string { return "equipment" }

// BeforeCreate 生成主键
func (e *Equipment) BeforeCreate(_ *gorm.DB) error {
	ensureID(&e.EquipmentID)
	return nil
}

// Employee 员工表：对应 employees
type Employee struct {
	EmployeeID      string `gorm:"size:36;primaryKey"          json:"employee_id"`
	EstablishmentID string `gorm:"size:36;not null;index"      json:"establishment_id"`
	Name            string `gorm:"size:100;not null"           json:"name"`
	Surname         string `gorm:"size:100;not null"           json:"surname"`
	Position        string `gorm:"size:100"                    json:"position,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (Employee) TableName() string { return "employees" }

// BeforeCreate 生成主键
func (e *Employee) BeforeCreate(_ *gorm.DB) error {
	ensureID(&e.EmployeeID)
	return nil
}
