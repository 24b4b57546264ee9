package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// SoftDeleteModel 支持软删除的审计字段
type SoftDeleteModel struct {
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// ensureID 主键为空时生成 UUID
// postgres 迁移中主键带 gen_random_uuid() 默认值，mysql / sqlite 依赖这里
func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// All 返回需要建表的全部模型（AutoMigrate 使用，顺序即依赖顺序）
func All() []interface{} {
	return []interface{}{
		&Establishment{},
		&User{},
		&Equipment{},
		&Employee{},
		&TemperatureLog{},
		&HealthLog{},
	}
}
