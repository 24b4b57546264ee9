package haccp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrSuperseded = errors.New("加载结果已过期，被更新的加载取代")
	ErrNoActor    = errors.New("未设置当前操作人")
)

// Source 表格数据来源：名册与当月日志
type Source interface {
	Roster(ctx context.Context, establishmentID string, kind Kind) ([]Entity, error)
	MonthlyLogs(ctx context.Context, establishmentID string, kind Kind, month Month) ([]Entry, error)
}

// SessionConfig 会话配置
type SessionConfig struct {
	EstablishmentID string
	Kind            Kind
	Source          Source
	Writer          Writer
	Actor           Actor
	Clock           Clock
	Location        *time.Location // 计算 "今天" 的时区
	MaxAttempts     int
	Backoff         time.Duration
	Logger          *zap.Logger
}

// Session 一个门店一种日志的月度表格会话
// 负责月份切换、纪元管理，并把控制器动作转成乐观更新与写入
type Session struct {
	cfg    SessionConfig
	logger *zap.Logger
	ctrl   *Controller
	bridge *Bridge
	epoch  atomic.Uint64

	mu      sync.Mutex
	month   Month
	grid    *Grid
	loadErr error
	overlay view // 浮层打开时所在的表格
}

// view 某一纪元下的表格快照；写入的日期只由快照决定
type view struct {
	grid  *Grid
	epoch uint64
}

// NewSession 创建会话，初始为当前月份的空表格
func NewSession(cfg SessionConfig) (*Session, error) {
	if !cfg.Kind.Valid() {
		return nil, fmt.Errorf("未知日志类型: %q", cfg.Kind)
	}
	if cfg.Source == nil || cfg.Writer == nil {
		return nil, errors.New("source 与 writer 不能为空")
	}
	if cfg.EstablishmentID == "" {
		return nil, errors.New("门店 ID 不能为空")
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(
		zap.String("establishment_id", cfg.EstablishmentID),
		zap.String("kind", string(cfg.Kind)),
	)

	s := &Session{
		cfg:    cfg,
		logger: logger,
		ctrl:   NewController(cfg.Clock, cfg.Location),
	}
	s.bridge = NewBridge(BridgeConfig{
		Writer:      cfg.Writer,
		MaxAttempts: cfg.MaxAttempts,
		Backoff:     cfg.Backoff,
		Today:       s.Today,
		Epoch:       s.epoch.Load,
		Logger:      logger,
	})
	s.month = MonthOf(s.Today())
	s.grid = Hydrate(cfg.Kind, s.month, nil, nil)
	return s, nil
}

// Today 会话时区下的今天
func (s *Session) Today() time.Time {
	return Today(s.cfg.Clock, s.cfg.Location)
}

// Epoch 当前纪元
func (s *Session) Epoch() uint64 {
	return s.epoch.Load()
}

// ── 加载与月份切换 ──

// Load 加载指定月份：并发获取名册与当月日志，整体替换表格
// 获取失败时表格保持为空，错误写入日志并通过 LoadErr 保留；不会自动重试
func (s *Session) Load(ctx context.Context, month Month) error {
	s.ctrl.Cancel()

	s.mu.Lock()
	epoch := s.epoch.Add(1)
	s.month = month
	s.grid = Hydrate(s.cfg.Kind, month, nil, nil)
	s.loadErr = nil
	s.mu.Unlock()

	var (
		entities []Entity
		entries  []Entry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entities, err = s.cfg.Source.Roster(gctx, s.cfg.EstablishmentID, s.cfg.Kind)
		if err != nil {
			return fmt.Errorf("获取名册: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		entries, err = s.cfg.Source.MonthlyLogs(gctx, s.cfg.EstablishmentID, s.cfg.Kind, month)
		if err != nil {
			return fmt.Errorf("获取当月日志: %w", err)
		}
		return nil
	})
	err := g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch.Load() != epoch {
		s.logger.Debug("丢弃过期的加载结果", zap.String("month", month.String()), zap.Uint64("epoch", epoch))
		return ErrSuperseded
	}
	if err != nil {
		s.loadErr = err
		s.logger.Error("加载月度日志失败", zap.String("month", month.String()), zap.Error(err))
		return err
	}
	s.grid = Hydrate(s.cfg.Kind, month, entities, entries)
	return nil
}

// Next 切换到下一个月
func (s *Session) Next(ctx context.Context) error {
	return s.Load(ctx, s.Month().Next())
}

// Prev 切换到上一个月
func (s *Session) Prev(ctx context.Context) error {
	return s.Load(ctx, s.Month().Prev())
}

// Month 当前月份
func (s *Session) Month() Month {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.month
}

// Grid 当前表格（不可变值）
func (s *Session) Grid() *Grid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid
}

// LoadErr 最近一次加载的错误
func (s *Session) LoadErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// ── 交互 ──

// Activate 点击单元格；产生写入动作时立即乐观更新并提交
func (s *Session) Activate(ctx context.Context, key Key) (Action, error) {
	v := s.view()
	action := s.ctrl.Activate(v.grid, key)
	if action.Kind == ActionOpenPicker || action.Kind == ActionOpenInput {
		s.mu.Lock()
		s.overlay = v
		s.mu.Unlock()
	}
	return action, s.commit(ctx, v, action)
}

// Choose 在选择器中选择状态码
func (s *Session) Choose(ctx context.Context, code HealthCode) (Action, error) {
	action := s.ctrl.Choose(code)
	return action, s.commit(ctx, s.overlayView(), action)
}

// Clear 在选择器中清除状态
func (s *Session) Clear(ctx context.Context) (Action, error) {
	action := s.ctrl.Clear()
	return action, s.commit(ctx, s.overlayView(), action)
}

// Submit 提交温度输入
func (s *Session) Submit(ctx context.Context, text string) (Action, error) {
	action := s.ctrl.Submit(text)
	return action, s.commit(ctx, s.overlayView(), action)
}

// Cancel 关闭当前浮层
func (s *Session) Cancel() {
	s.ctrl.Cancel()
}

// Overlay 当前打开的浮层
func (s *Session) Overlay() *Overlay {
	return s.ctrl.Open()
}

func (s *Session) view() view {
	s.mu.Lock()
	defer s.mu.Unlock()
	return view{grid: s.grid, epoch: s.epoch.Load()}
}

func (s *Session) overlayView() view {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlay
}

// commit 提交控制器产生的写入
// 动作基于快照 v 产生；快照之后发生过加载（纪元变化）则拒绝写入
func (s *Session) commit(ctx context.Context, v view, action Action) error {
	if action.Kind != ActionWrite {
		return nil
	}
	if s.cfg.Actor.Surname == "" {
		return ErrNoActor
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if v.grid == nil || s.epoch.Load() != v.epoch {
		s.logger.Debug("表格已切换，丢弃写入",
			zap.String("entity_id", action.Key.EntityID),
			zap.Int("day", action.Key.Day),
			zap.Uint64("epoch", v.epoch),
		)
		return ErrSuperseded
	}

	w := Write{
		EstablishmentID: s.cfg.EstablishmentID,
		Kind:            s.cfg.Kind,
		Key:             action.Key,
		Date:            v.grid.Date(action.Key),
		Value:           action.Value,
		Actor:           s.cfg.Actor,
	}
	if err := s.bridge.Persist(ctx, v.epoch, w); err != nil {
		return err
	}
	s.grid = s.grid.ApplyEdit(action.Key, action.Value, s.cfg.Actor.Surname)
	return nil
}

// ── 展示与导出 ──

// Display 单元格展示结果
func (s *Session) Display(key Key) Display {
	return s.Grid().Display(key, s.Today())
}

// Sheet 当前表格的导出形式
func (s *Session) Sheet() Sheet {
	return ToSheet(s.Grid(), s.Today())
}

// ── 写入状态 ──

// WriteStatus 当前月份某单元格的写入状态
func (s *Session) WriteStatus(key Key) (WriteStatus, bool) {
	return s.bridge.Status(s.ref(key))
}

// Retry 重试某单元格最近一次失败的写入
func (s *Session) Retry(ctx context.Context, key Key) error {
	return s.bridge.Retry(ctx, s.epoch.Load(), s.ref(key))
}

// Wait 等待所有写入结束
func (s *Session) Wait() {
	s.bridge.Wait()
}

func (s *Session) ref(key Key) CellRef {
	g := s.Grid()
	return Write{Kind: s.cfg.Kind, Key: key, Date: g.Date(key)}.Ref()
}
