package model

import "gorm.io/gorm"

// 用户角色
const (
	RoleAdmin   = "admin"   // 平台管理员：可访问全部门店
	RolePartner = "partner" // 加盟商：可访问名下门店
	RoleManager = "manager" // 门店经理：仅可访问所属门店
)

// User 用户表：对应 users
type User struct {
	UserID          string  `gorm:"size:36;primaryKey"                      json:"user_id"`
	Login           string  `gorm:"size:100;not null;uniqueIndex"           json:"login"`
	PasswordHash    string  `gorm:"size:255;not null"                       json:"-"`
	Name            string  `gorm:"size:100;not null"                       json:"name"`
	Surname         string  `gorm:"size:100;not null"                       json:"surname"` // 写日志时作为检查人签名
	Role            string  `gorm:"size:20;not null;default:'manager'"      json:"role"`
	EstablishmentID *string `gorm:"size:36;index"                           json:"establishment_id,omitempty"` // 仅 manager
	SoftDeleteModel

	// 关联
	Establishment *Establishment `gorm:"foreignKey:EstablishmentID;references:EstablishmentID" json:"establishment,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// BeforeCreate 生成主键
func (u *User) BeforeCreate(_ *gorm.DB) error {
	ensureID(&u.UserID)
	return nil
}
