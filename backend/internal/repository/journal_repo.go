package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"unit-one/backend/internal/model"
)

// JournalRepository 温度 / 健康日志数据访问接口
//
// 每个单元格（设备+日期+班次 / 员工+日期）只保留一条记录，
// Upsert 在唯一键冲突时覆盖取值与检查人，不保留历史
type JournalRepository interface {
	UpsertTemperature(ctx context.Context, log *model.TemperatureLog) error
	UpsertHealth(ctx context.Context, log *model.HealthLog) error
	// ListTemperature 查询 [from, to) 日期范围内的温度日志
	ListTemperature(ctx context.Context, establishmentID string, from, to time.Time) ([]model.TemperatureLog, error)
	// ListHealth 查询 [from, to) 日期范围内的健康日志
	ListHealth(ctx context.Context, establishmentID string, from, to time.Time) ([]model.HealthLog, error)
}

type journalRepo struct {
	db *gorm.DB
}

// NewJournalRepo 创建 JournalRepository 实例
func NewJournalRepo(db *gorm.DB) JournalRepository {
	return &journalRepo{db: db}
}

func (r *journalRepo) UpsertTemperature(ctx context.Context, log *model.TemperatureLog) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "equipment_id"}, {Name: "log_date"}, {Name: "shift"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "inspector_surname", "created_by", "updated_at"}),
		}).
		Create(log).Error
}

func (r *journalRepo) UpsertHealth(ctx context.Context, log *model.HealthLog) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "employee_id"}, {Name: "log_date"}},
			DoUpdates: clause.AssignmentColumns([]string{"comment", "inspector_surname", "created_by", "updated_at"}),
		}).
		Create(log).Error
}

func (r *journalRepo) ListTemperature(ctx context.Context, establishmentID string, from, to time.Time) ([]model.TemperatureLog, error) {
	var logs []model.TemperatureLog
	err := r.db.WithContext(ctx).
		Where("establishment_id = ? AND log_date >= ? AND log_date < ?", establishmentID, from, to).
		Order("log_date ASC, shift ASC").
		Find(&logs).Error
	return logs, err
}

func (r *journalRepo) ListHealth(ctx context.Context, establishmentID string, from, to time.Time) ([]model.HealthLog, error) {
	var logs []model.HealthLog
	err := r.db.WithContext(ctx).
		Where("establishment_id = ? AND log_date >= ? AND log_date < ?", establishmentID, from, to).
		Order("log_date ASC").
		Find(&logs).Error
	return logs, err
}
