package repository

import (
	"context"

	"gorm.io/gorm"

	"unit-one/backend/internal/model"
)

// RosterRepository 设备与员工名册数据访问接口
// 名册的增删改在其他系统完成，这里只读，Create 供初始化数据与测试使用
type RosterRepository interface {
	ListEquipment(ctx context.Context, establishmentID string) ([]model.Equipment, error)
	ListEmployees(ctx context.Context, establishmentID string) ([]model.Employee, error)
	GetEquipment(ctx context.Context, id string) (*model.Equipment, error)
	GetEmployee(ctx context.Context, id string) (*model.Employee, error)
	CreateEquipment(ctx context.Context, eq *model.Equipment) error
	CreateEmployee(ctx context.Context, emp *model.Employee) error
}

type rosterRepo struct {
	db *gorm.DB
}

// NewRosterRepo 创建 RosterRepository 实例
func NewRosterRepo(db *gorm.DB) RosterRepository {
	return &rosterRepo{db: db}
}

func (r *rosterRepo) ListEquipment(ctx context.Context, establishmentID string) ([]model.Equipment, error) {
	var items []model.Equipment
	err := r.db.WithContext(ctx).
		Where("establishment_id = ?", establishmentID).
		Order("zone ASC, name ASC").
		Find(&items).Error
	return items, err
}

func (r *rosterRepo) ListEmployees(ctx context.Context, establishmentID string) ([]model.Employee, error) {
	var items []model.Employee
	err := r.db.WithContext(ctx).
		Where("establishment_id = ?", establishmentID).
		Order("surname ASC, name ASC").
		Find(&items).Error
	return items, err
}

func (r *rosterRepo) GetEquipment(ctx context.Context, id string) (*model.Equipment, error) {
	var eq model.Equipment
	if err := r.db.WithContext(ctx).Where("equipment_id = ?", id).First(&eq).Error; err != nil {
		return nil, err
	}
	return &eq, nil
}

func (r *rosterRepo) GetEmployee(ctx context.Context, id string) (*model.Employee, error) {
	var emp model.Employee
	if err := r.db.WithContext(ctx).Where("employee_id = ?", id).First(&emp).Error; err != nil {
		return nil, err
	}
	return &emp, nil
}

func (r *rosterRepo) CreateEquipment(ctx context.Context, eq *model.Equipment) error {
	return r.db.WithContext(ctx).Create(eq).Error
}

func (r *rosterRepo) CreateEmployee(ctx context.Context, emp *model.Employee) error {
	return r.db.WithContext(ctx).Create(emp).Error
}
