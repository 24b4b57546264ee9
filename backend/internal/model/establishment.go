package model

import "gorm.io/gorm"

// Establishment 门店表：对应 establishments
type Establishment struct {
	EstablishmentID string  `gorm:"size:36;primaryKey"  json:"establishment_id"`
	PartnerID       *string `gorm:"size:36;index"       json:"partner_id,omitempty"` // 所属加盟商 user_id
	Name            string  `gorm:"size:200;not null"   json:"name"`
	Address         string  `gorm:"size:300"            json:"address,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (Establishment) TableName() string { return "establishments" }

// BeforeCreate 生成主键
func (e *Establishment) BeforeCreate(_ *gorm.DB) error {
	ensureID(&e.EstablishmentID)
	return nil
}
