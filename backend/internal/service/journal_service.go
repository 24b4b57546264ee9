package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"unit-one/backend/config"
	"unit-one/backend/internal/dto"
	"unit-one/backend/internal/haccp"
	"unit-one/backend/internal/model"
	"unit-one/backend/internal/repository"
	pkgerrors "unit-one/backend/pkg/errors"
)

// ── 日志模块业务错误 ──

var (
	ErrJournalTarget         = errors.New("必须且只能指定 equipmentId 或 employeeId")
	ErrJournalValue          = errors.New("日志取值无效")
	ErrJournalFutureDate     = errors.New("不能记录未来日期")
	ErrJournalEntityNotFound = errors.New("设备或员工不存在")
	ErrJournalDate           = errors.New("日期格式无效")
	ErrJournalShift          = errors.New("温度日志必须指定班次 0 或 1")
	ErrEstablishmentNotFound = errors.New("门店不存在")
)

// Caller 当前请求的用户身份（来自 JWT）
type Caller struct {
	UserID          string
	Role            string
	EstablishmentID string
}

// JournalService HACCP 日志业务接口
type JournalService interface {
	// Roster 门店的设备或员工名册
	Roster(ctx context.Context, caller Caller, establishmentID, kind string) ([]dto.RosterItem, error)
	// MonthlyLogs 门店某月的温度或健康日志
	MonthlyLogs(ctx context.Context, caller Caller, q *dto.MonthlyLogsQuery) ([]dto.LogEntryResponse, error)
	// Record 写入单个单元格，重复写入覆盖原值
	Record(ctx context.Context, caller Caller, req *dto.CreateLogRequest) (*dto.LogEntryResponse, error)
}

type journalService struct {
	repo   *repository.Repository
	cfg    *config.JournalConfig
	clock  haccp.Clock
	logger *zap.Logger
}

// NewJournalService 创建 JournalService 实例；clock 为 nil 时使用系统时钟
func NewJournalService(repo *repository.Repository, cfg *config.JournalConfig, clock haccp.Clock, logger *zap.Logger) JournalService {
	if clock == nil {
		clock = haccp.SystemClock
	}
	return &journalService{repo: repo, cfg: cfg, clock: clock, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// 门店访问控制
// ═══════════════════════════════════════════════════════════

// authorizeEstablishment 校验调用者能否访问门店
//   - admin：全部门店
//   - partner：partner_id 为自己的门店
//   - manager：token 中绑定的门店
func authorizeEstablishment(ctx context.Context, repo *repository.Repository, logger *zap.Logger, caller Caller, establishmentID string) (*model.Establishment, error) {
	est, err := repo.Establishment.GetByID(ctx, establishmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEstablishmentNotFound
		}
		logger.Error("查询门店失败", zap.Error(err))
		return nil, err
	}

	switch caller.Role {
	case model.RoleAdmin:
		return est, nil
	case model.RolePartner:
		if est.PartnerID != nil && *est.PartnerID == caller.UserID {
			return est, nil
		}
	case model.RoleManager:
		if caller.EstablishmentID == est.EstablishmentID {
			return est, nil
		}
	}
	return nil, pkgerrors.ErrForbiddenEstablishment
}

// ═══════════════════════════════════════════════════════════
// Roster
// ═══════════════════════════════════════════════════════════

func (s *journalService) Roster(ctx context.Context, caller Caller, establishmentID, kind string) ([]dto.RosterItem, error) {
	if _, err := authorizeEstablishment(ctx, s.repo, s.logger, caller, establishmentID); err != nil {
		return nil, err
	}

	items := []dto.RosterItem{}
	switch kind {
	case dto.RosterEquipment:
		list, err := s.repo.Roster.ListEquipment(ctx, establishmentID)
		if err != nil {
			s.logger.Error("查询设备名册失败", zap.Error(err))
			return nil, err
		}
		for _, eq := range list {
			items = append(items, dto.RosterItem{ID: eq.EquipmentID, Name: eq.Name, Type: eq.Type, Zone: eq.Zone})
		}
	case dto.RosterEmployees:
		list, err := s.repo.Roster.ListEmployees(ctx, establishmentID)
		if err != nil {
			s.logger.Error("查询员工名册失败", zap.Error(err))
			return nil, err
		}
		for _, emp := range list {
			items = append(items, dto.RosterItem{ID: emp.EmployeeID, Name: emp.Name, Surname: emp.Surname, Position: emp.Position})
		}
	}
	return items, nil
}

// ═══════════════════════════════════════════════════════════
// MonthlyLogs
// ═══════════════════════════════════════════════════════════

func (s *journalService) MonthlyLogs(ctx context.Context, caller Caller, q *dto.MonthlyLogsQuery) ([]dto.LogEntryResponse, error) {
	if _, err := authorizeEstablishment(ctx, s.repo, s.logger, caller, q.EstablishmentID); err != nil {
		return nil, err
	}
	month, err := haccp.NewMonth(q.Year, q.Month)
	if err != nil {
		return nil, ErrJournalDate
	}

	entries, err := loadEntries(ctx, s.repo, q.EstablishmentID, haccp.Kind(q.Type), month)
	if err != nil {
		s.logger.Error("查询月度日志失败", zap.String("type", q.Type), zap.Error(err))
		return nil, err
	}

	result := make([]dto.LogEntryResponse, 0, len(entries))
	for _, e := range entries {
		result = append(result, toLogEntryResponse(haccp.Kind(q.Type), e))
	}
	return result, nil
}

// loadEntries 读取门店某月的日志并转换为表格记录
func loadEntries(ctx context.Context, repo *repository.Repository, establishmentID string, kind haccp.Kind, month haccp.Month) ([]haccp.Entry, error) {
	var entries []haccp.Entry
	switch kind {
	case haccp.KindTemperature:
		logs, err := repo.Journal.ListTemperature(ctx, establishmentID, month.Start(), month.End())
		if err != nil {
			return nil, err
		}
		for _, l := range logs {
			entries = append(entries, haccp.Entry{
				EntityID:   l.EquipmentID,
				Date:       civil(l.LogDate),
				Shift:      haccp.Shift(l.Shift),
				Value:      l.Value,
				RecordedBy: l.InspectorSurname,
			})
		}
	case haccp.KindHealth:
		logs, err := repo.Journal.ListHealth(ctx, establishmentID, month.Start(), month.End())
		if err != nil {
			return nil, err
		}
		for _, l := range logs {
			entries = append(entries, haccp.Entry{
				EntityID:   l.EmployeeID,
				Date:       civil(l.LogDate),
				Value:      l.Comment,
				RecordedBy: l.InspectorSurname,
			})
		}
	}
	return entries, nil
}

// civil 数据库 date 列读出的时间只取年月日
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func toLogEntryResponse(kind haccp.Kind, e haccp.Entry) dto.LogEntryResponse {
	resp := dto.LogEntryResponse{
		Date:             e.Date.Format(time.DateOnly),
		InspectorSurname: e.RecordedBy,
	}
	value := e.Value
	if kind == haccp.KindTemperature {
		shift := int(e.Shift)
		resp.EquipmentID = e.EntityID
		resp.Shift = &shift
		resp.Value = &value
	} else {
		resp.EmployeeID = e.EntityID
		resp.Comment = &value
	}
	return resp
}

// ═══════════════════════════════════════════════════════════
// Record
// ═══════════════════════════════════════════════════════════

func (s *journalService) Record(ctx context.Context, caller Caller, req *dto.CreateLogRequest) (*dto.LogEntryResponse, error) {
	// 1. 目标与取值校验
	hasEquipment, hasEmployee := req.EquipmentID != "", req.EmployeeID != ""
	if hasEquipment == hasEmployee {
		return nil, ErrJournalTarget
	}
	date, err := ParseLogDate(req.Date)
	if err != nil {
		return nil, ErrJournalDate
	}
	if haccp.IsFuture(date, haccp.Today(s.clock, s.cfg.Location())) {
		return nil, ErrJournalFutureDate
	}

	// 2. 门店访问控制
	if _, err := authorizeEstablishment(ctx, s.repo, s.logger, caller, req.EstablishmentID); err != nil {
		return nil, err
	}

	// 3. 检查人签名取当前用户姓氏
	user, err := s.repo.User.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	if hasEquipment {
		return s.recordTemperature(ctx, user, req, date)
	}
	return s.recordHealth(ctx, user, req, date)
}

func (s *journalService) recordTemperature(ctx context.Context, user *model.User, req *dto.CreateLogRequest, date time.Time) (*dto.LogEntryResponse, error) {
	if req.Value == nil {
		return nil, ErrJournalValue
	}
	value := haccp.NormalizeTemperature(*req.Value)
	if value == "" {
		return nil, ErrJournalValue
	}
	if req.Shift == nil || !haccp.Shift(*req.Shift).Valid() {
		return nil, ErrJournalShift
	}

	eq, err := s.repo.Roster.GetEquipment(ctx, req.EquipmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJournalEntityNotFound
		}
		s.logger.Error("查询设备失败", zap.Error(err))
		return nil, err
	}
	if eq.EstablishmentID != req.EstablishmentID {
		return nil, ErrJournalEntityNotFound
	}

	log := &model.TemperatureLog{
		EstablishmentID:  req.EstablishmentID,
		EquipmentID:      eq.EquipmentID,
		LogDate:          date,
		Shift:            *req.Shift,
		Value:            value,
		InspectorSurname: user.Surname,
		CreatedBy:        user.UserID,
	}
	if err := s.repo.Journal.UpsertTemperature(ctx, log); err != nil {
		s.logger.Error("写入温度日志失败", zap.String("equipment_id", eq.EquipmentID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("温度日志已记录",
		zap.String("equipment_id", eq.EquipmentID),
		zap.String("date", date.Format(time.DateOnly)),
		zap.Int("shift", *req.Shift),
		zap.String("status", string(haccp.ClassifyTemperature(value, eq.Type))),
	)

	resp := toLogEntryResponse(haccp.KindTemperature, haccp.Entry{
		EntityID: eq.EquipmentID, Date: date, Shift: haccp.Shift(*req.Shift), Value: value, RecordedBy: user.Surname,
	})
	return &resp, nil
}

func (s *journalService) recordHealth(ctx context.Context, user *model.User, req *dto.CreateLogRequest, date time.Time) (*dto.LogEntryResponse, error) {
	if req.Comment == nil || !haccp.ValidHealthCode(strings.TrimSpace(*req.Comment)) {
		return nil, ErrJournalValue
	}
	comment := strings.TrimSpace(*req.Comment)

	emp, err := s.repo.Roster.GetEmployee(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJournalEntityNotFound
		}
		s.logger.Error("查询员工失败", zap.Error(err))
		return nil, err
	}
	if emp.EstablishmentID != req.EstablishmentID {
		return nil, ErrJournalEntityNotFound
	}

	log := &model.HealthLog{
		EstablishmentID:  req.EstablishmentID,
		EmployeeID:       emp.EmployeeID,
		LogDate:          date,
		Comment:          comment,
		InspectorSurname: user.Surname,
		CreatedBy:        user.UserID,
	}
	if err := s.repo.Journal.UpsertHealth(ctx, log); err != nil {
		s.logger.Error("写入健康日志失败", zap.String("employee_id", emp.EmployeeID), zap.Error(err))
		return nil, err
	}

	resp := toLogEntryResponse(haccp.KindHealth, haccp.Entry{
		EntityID: emp.EmployeeID, Date: date, Value: comment, RecordedBy: user.Surname,
	})
	return &resp, nil
}

// ParseLogDate 解析写入请求的日期
// YYYY-MM-DD 直接取日期；RFC 3339 时间取其自身时区下的年月日（客户端发送的是日志时区的零点）
func ParseLogDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return civil(t), nil
}
