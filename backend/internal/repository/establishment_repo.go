package repository

import (
	"context"

	"gorm.io/gorm"

	"unit-one/backend/internal/model"
)

// EstablishmentRepository 门店数据访问接口
type EstablishmentRepository interface {
	Create(ctx context.Context, est *model.Establishment) error
	GetByID(ctx context.Context, id string) (*model.Establishment, error)
}

type establishmentRepo struct {
	db *gorm.DB
}

// NewEstablishmentRepo 创建 EstablishmentRepository 实例
func NewEstablishmentRepo(db *gorm.DB) EstablishmentRepository {
	return &establishmentRepo{db: db}
}

func (r *establishmentRepo) Create(ctx context.Context, est *model.Establishment) error {
	return r.db.WithContext(ctx).Create(est).Error
}

func (r *establishmentRepo) GetByID(ctx context.Context, id string) (*model.Establishment, error) {
	var est model.Establishment
	if err := r.db.WithContext(ctx).Where("establishment_id = ?", id).First(&est).Error; err != nil {
		return nil, err
	}
	return &est, nil
}
