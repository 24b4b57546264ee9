package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"unit-one/backend/config"
	"unit-one/backend/internal/haccp"
	"unit-one/backend/internal/model"
	"unit-one/backend/internal/repository"
)

var errMockDB = errors.New("mock: 数据库不可用")

// ── Mock EstablishmentRepository ──

type mockEstablishmentRepo struct {
	establishments map[string]*model.Establishment
}

func newMockEstablishmentRepo() *mockEstablishmentRepo {
	return &mockEstablishmentRepo{establishments: make(map[string]*model.Establishment)}
}

func (m *mockEstablishmentRepo) Create(_ context.Context, est *model.Establishment) error {
	m.establishments[est.EstablishmentID] = est
	return nil
}

func (m *mockEstablishmentRepo) GetByID(_ context.Context, id string) (*model.Establishment, error) {
	if est, ok := m.establishments[id]; ok {
		return est, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User // key: user_id 或 "login:" + login
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.Login
	}
	m.users[user.UserID] = user
	m.users["login:"+user.Login] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByLogin(_ context.Context, login string) (*model.User, error) {
	if u, ok := m.users["login:"+login]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	m.users["login:"+user.Login] = user
	return nil
}

// ── Mock RosterRepository ──

type mockRosterRepo struct {
	equipment []model.Equipment
	employees []model.Employee
	err       error
}

func newMockRosterRepo() *mockRosterRepo {
	return &mockRosterRepo{}
}

func (m *mockRosterRepo) ListEquipment(_ context.Context, establishmentID string) ([]model.Equipment, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []model.Equipment
	for _, eq := range m.equipment {
		if eq.EstablishmentID == establishmentID {
			result = append(result, eq)
		}
	}
	return result, nil
}

func (m *mockRosterRepo) ListEmployees(_ context.Context, establishmentID string) ([]model.Employee, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []model.Employee
	for _, emp := range m.employees {
		if emp.EstablishmentID == establishmentID {
			result = append(result, emp)
		}
	}
	return result, nil
}

func (m *mockRosterRepo) GetEquipment(_ context.Context, id string) (*model.Equipment, error) {
	for i := range m.equipment {
		if m.equipment[i].EquipmentID == id {
			eq := m.equipment[i]
			return &eq, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRosterRepo) GetEmployee(_ context.Context, id string) (*model.Employee, error) {
	for i := range m.employees {
		if m.employees[i].EmployeeID == id {
			emp := m.employees[i]
			return &emp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRosterRepo) CreateEquipment(_ context.Context, eq *model.Equipment) error {
	m.equipment = append(m.equipment, *eq)
	return nil
}

func (m *mockRosterRepo) CreateEmployee(_ context.Context, emp *model.Employee) error {
	m.employees = append(m.employees, *emp)
	return nil
}

// ── Mock JournalRepository ──

type temperatureCell struct {
	equipmentID string
	date        string
	shift       int
}

type healthCell struct {
	employeeID string
	date       string
}

type mockJournalRepo struct {
	temperature map[temperatureCell]model.TemperatureLog
	health      map[healthCell]model.HealthLog
	upserts     int
	err         error
}

func newMockJournalRepo() *mockJournalRepo {
	return &mockJournalRepo{
		temperature: make(map[temperatureCell]model.TemperatureLog),
		health:      make(map[healthCell]model.HealthLog),
	}
}

func (m *mockJournalRepo) UpsertTemperature(_ context.Context, log *model.TemperatureLog) error {
	if m.err != nil {
		return m.err
	}
	m.upserts++
	m.temperature[temperatureCell{log.EquipmentID, log.LogDate.Format(time.DateOnly), log.Shift}] = *log
	return nil
}

func (m *mockJournalRepo) UpsertHealth(_ context.Context, log *model.HealthLog) error {
	if m.err != nil {
		return m.err
	}
	m.upserts++
	m.health[healthCell{log.EmployeeID, log.LogDate.Format(time.DateOnly)}] = *log
	return nil
}

func (m *mockJournalRepo) ListTemperature(_ context.Context, establishmentID string, from, to time.Time) ([]model.TemperatureLog, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []model.TemperatureLog
	for _, l := range m.temperature {
		if l.EstablishmentID == establishmentID && !l.LogDate.Before(from) && l.LogDate.Before(to) {
			result = append(result, l)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].LogDate.Equal(result[j].LogDate) {
			return result[i].LogDate.Before(result[j].LogDate)
		}
		if result[i].Shift != result[j].Shift {
			return result[i].Shift < result[j].Shift
		}
		return result[i].EquipmentID < result[j].EquipmentID
	})
	return result, nil
}

func (m *mockJournalRepo) ListHealth(_ context.Context, establishmentID string, from, to time.Time) ([]model.HealthLog, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []model.HealthLog
	for _, l := range m.health {
		if l.EstablishmentID == establishmentID && !l.LogDate.Before(from) && l.LogDate.Before(to) {
			result = append(result, l)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].LogDate.Equal(result[j].LogDate) {
			return result[i].LogDate.Before(result[j].LogDate)
		}
		return result[i].EmployeeID < result[j].EmployeeID
	})
	return result, nil
}

// ═══════════════════════════════════════════════════════════
// 测试夹具
// ═══════════════════════════════════════════════════════════

type fixture struct {
	repo      *repository.Repository
	users     *mockUserRepo
	roster    *mockRosterRepo
	journal   *mockJournalRepo
	cfg       *config.JournalConfig
	clock     haccp.Clock
	admin     Caller
	partner   Caller
	manager   Caller
	stranger  Caller // 其他门店的经理
	otherPart Caller // 其他加盟商
}

// 今天固定为 2026-03-10
var fixtureNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// newFixture 两家门店：est-1 属于 partner-1，est-2 属于 partner-2
func newFixture() *fixture {
	ests := newMockEstablishmentRepo()
	ests.establishments["est-1"] = &model.Establishment{EstablishmentID: "est-1", PartnerID: strPtr("partner-1"), Name: "Кафе на Невском"}
	ests.establishments["est-2"] = &model.Establishment{EstablishmentID: "est-2", PartnerID: strPtr("partner-2"), Name: "Столовая №2"}

	users := newMockUserRepo()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	for _, u := range []*model.User{
		{UserID: "admin-1", Login: "admin", Name: "Мария", Surname: "Админова", Role: model.RoleAdmin},
		{UserID: "partner-1", Login: "partner", Name: "Олег", Surname: "Партнёров", Role: model.RolePartner},
		{UserID: "manager-1", Login: "manager", Name: "Елена", Surname: "Смирнова", Role: model.RoleManager,
			EstablishmentID: strPtr("est-1"), Establishment: ests.establishments["est-1"]},
		{UserID: "manager-2", Login: "manager2", Name: "Игорь", Surname: "Кузнецов", Role: model.RoleManager,
			EstablishmentID: strPtr("est-2")},
	} {
		u.PasswordHash = string(hash)
		_ = users.Create(context.Background(), u)
	}

	roster := newMockRosterRepo()
	roster.equipment = []model.Equipment{
		{EquipmentID: "eq-1", EstablishmentID: "est-1", Name: "Холодильник 1", Type: "холодильное", Zone: "Кухня"},
		{EquipmentID: "eq-2", EstablishmentID: "est-1", Name: "Морозильник", Type: "морозильное", Zone: "Склад"},
		{EquipmentID: "eq-9", EstablishmentID: "est-2", Name: "Витрина", Type: "холодильное"},
	}
	roster.employees = []model.Employee{
		{EmployeeID: "emp-1", EstablishmentID: "est-1", Name: "Анна", Surname: "Иванова", Position: "Повар"},
		{EmployeeID: "emp-2", EstablishmentID: "est-1", Name: "Пётр", Surname: "Петров"},
		{EmployeeID: "emp-9", EstablishmentID: "est-2", Name: "Ольга", Surname: "Сидорова"},
	}

	journal := newMockJournalRepo()

	return &fixture{
		repo: &repository.Repository{
			Establishment: ests,
			User:          users,
			Roster:        roster,
			Journal:       journal,
		},
		users:   users,
		roster:  roster,
		journal: journal,
		cfg: &config.JournalConfig{
			Timezone:          "UTC",
			WriteMaxAttempts:  3,
			WriteRetryBackoff: time.Millisecond,
			ExportCharset:     "utf-8",
		},
		clock:     haccp.FixedClock(fixtureNow),
		admin:     Caller{UserID: "admin-1", Role: model.RoleAdmin},
		partner:   Caller{UserID: "partner-1", Role: model.RolePartner},
		manager:   Caller{UserID: "manager-1", Role: model.RoleManager, EstablishmentID: "est-1"},
		stranger:  Caller{UserID: "manager-2", Role: model.RoleManager, EstablishmentID: "est-2"},
		otherPart: Caller{UserID: "partner-2", Role: model.RolePartner},
	}
}

func (f *fixture) journalService() JournalService {
	return NewJournalService(f.repo, f.cfg, f.clock, zap.NewNop())
}

func (f *fixture) exportService() ExportService {
	return NewExportService(f.repo, f.cfg, f.clock, zap.NewNop())
}
