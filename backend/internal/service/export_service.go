package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"unit-one/backend/config"
	"unit-one/backend/internal/dto"
	"unit-one/backend/internal/haccp"
	"unit-one/backend/internal/repository"
	"unit-one/backend/pkg/spreadsheet"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成导出文件失败")
	ErrExportFormat       = errors.New("不支持的导出格式")
)

// ExportFile 导出结果
type ExportFile struct {
	Content     *bytes.Buffer
	Filename    string
	ContentType string
}

// ExportService 导出业务接口
//
// 表格与前端导出一致：表头为日期列，温度日志每台设备两行（早/晚），
// 健康日志每名员工一行并附检查人签名行；xlsx 按状态着色，csv 按配置字符集编码
type ExportService interface {
	ExportJournal(ctx context.Context, caller Caller, q *dto.ExportQuery) (*ExportFile, error)
}

type exportService struct {
	repo   *repository.Repository
	cfg    *config.JournalConfig
	clock  haccp.Clock
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, cfg *config.JournalConfig, clock haccp.Clock, logger *zap.Logger) ExportService {
	if clock == nil {
		clock = haccp.SystemClock
	}
	return &exportService{repo: repo, cfg: cfg, clock: clock, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportJournal 导出月度日志
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportJournal(ctx context.Context, caller Caller, q *dto.ExportQuery) (*ExportFile, error) {
	format, err := spreadsheet.ParseFormat(q.Format)
	if err != nil {
		return nil, ErrExportFormat
	}
	if _, err := authorizeEstablishment(ctx, s.repo, s.logger, caller, q.EstablishmentID); err != nil {
		return nil, err
	}
	month, err := haccp.NewMonth(q.Year, q.Month)
	if err != nil {
		return nil, ErrJournalDate
	}
	kind := haccp.Kind(q.Type)

	// 1. 名册
	entities, err := s.entities(ctx, q.EstablishmentID, kind)
	if err != nil {
		s.logger.Error("查询名册失败", zap.Error(err))
		return nil, err
	}

	// 2. 当月日志
	entries, err := loadEntries(ctx, s.repo, q.EstablishmentID, kind, month)
	if err != nil {
		s.logger.Error("查询月度日志失败", zap.Error(err))
		return nil, err
	}

	// 3. 构建表格
	grid := haccp.Hydrate(kind, month, entities, entries)
	sheet := haccp.ToSheet(grid, haccp.Today(s.clock, s.cfg.Location()))

	// 4. 写出文件
	buf := new(bytes.Buffer)
	if err := spreadsheet.Write(buf, sheet.Table(), format, s.cfg.ExportCharset); err != nil {
		s.logger.Error("写出导出文件失败", zap.String("format", string(format)), zap.Error(err))
		return nil, ErrExportGenerateFail
	}

	return &ExportFile{
		Content:     buf,
		Filename:    fmt.Sprintf("journal_%s_%s.%s", kind, month, format),
		ContentType: format.ContentType(s.cfg.ExportCharset),
	}, nil
}

func (s *exportService) entities(ctx context.Context, establishmentID string, kind haccp.Kind) ([]haccp.Entity, error) {
	var entities []haccp.Entity
	if kind == haccp.KindTemperature {
		list, err := s.repo.Roster.ListEquipment(ctx, establishmentID)
		if err != nil {
			return nil, err
		}
		for _, eq := range list {
			entities = append(entities, haccp.Entity{ID: eq.EquipmentID, Name: eq.Name, Type: eq.Type, Zone: eq.Zone})
		}
		return entities, nil
	}

	list, err := s.repo.Roster.ListEmployees(ctx, establishmentID)
	if err != nil {
		return nil, err
	}
	for _, emp := range list {
		entities = append(entities, haccp.Entity{ID: emp.EmployeeID, Name: emp.Name, Surname: emp.Surname})
	}
	return entities, nil
}
