package haccp

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrFutureDate     = errors.New("不能记录未来日期")
	ErrNothingToRetry = errors.New("该单元格没有失败的写入")
	ErrInvalidWrite   = errors.New("写入参数无效")
)

// Actor 当前操作人，写入时其姓氏作为 recordedBy
type Actor struct {
	UserID  string
	Surname string
}

// Write 单个单元格的一次写入
type Write struct {
	EstablishmentID string
	Kind            Kind
	Key             Key
	Date            time.Time // 日历日期
	Value           string
	Actor           Actor
}

// Ref 写入目标在跨月范围内的唯一标识
func (w Write) Ref() CellRef {
	ref := CellRef{Kind: w.Kind, EntityID: w.Key.EntityID, Date: w.Date}
	if w.Kind == KindTemperature {
		ref.Shift = w.Key.Shift
	}
	return ref
}

// CellRef 单元格标识（含完整日期，不依赖表格月份）
type CellRef struct {
	Kind     Kind
	EntityID string
	Date     time.Time
	Shift    Shift
}

// Writer 日志写入端，通常由 HTTP 客户端实现
type Writer interface {
	WriteEntry(ctx context.Context, w Write) error
}

// WriteState 单元格写入状态
type WriteState string

const (
	WritePending   WriteState = "pending"
	WriteConfirmed WriteState = "confirmed"
	WriteFailed    WriteState = "failed"
)

// WriteStatus 单元格最近一次写入的状态
type WriteStatus struct {
	State    WriteState
	Value    string
	Attempts int
	Err      error
}

// BridgeConfig 写入桥配置
type BridgeConfig struct {
	Writer      Writer
	MaxAttempts int           // 每次写入的最大尝试次数，<1 视为 1
	Backoff     time.Duration // 第 n 次重试前等待 n*Backoff
	Today       func() time.Time
	Epoch       func() uint64 // 当前纪元；为 nil 时不做过期判断
	Logger      *zap.Logger
}

type job struct {
	epoch uint64
	write Write
}

type cellQueue struct {
	running bool
	next    *job // 排队中的写入；被更新的写入覆盖
	last    *job // 最近一次执行的写入，Retry 使用
	status  WriteStatus
}

// Bridge 逐单元格写入队列
// 同一单元格的写入按发起顺序串行执行，排队中的旧写入被新写入取代；
// 失败不回滚表格，只记录状态与日志
type Bridge struct {
	cfg    BridgeConfig
	logger *zap.Logger

	mu     sync.Mutex
	queues map[CellRef]*cellQueue
	wg     sync.WaitGroup
}

// NewBridge 创建写入桥
func NewBridge(cfg BridgeConfig) *Bridge {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Today == nil {
		cfg.Today = func() time.Time { return Today(SystemClock, time.UTC) }
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{
		cfg:    cfg,
		logger: logger,
		queues: make(map[CellRef]*cellQueue),
	}
}

// Persist 提交一次写入并立即返回
// 未来日期与非法写入同步拒绝，不会发出请求
func (b *Bridge) Persist(ctx context.Context, epoch uint64, w Write) error {
	if w.Key.EntityID == "" || w.EstablishmentID == "" || !w.Kind.Valid() {
		return ErrInvalidWrite
	}
	if w.Kind == KindTemperature && (!w.Key.Shift.Valid() || NormalizeTemperature(w.Value) == "") {
		return ErrInvalidWrite
	}
	if w.Kind == KindHealth && !ValidHealthCode(w.Value) {
		return ErrInvalidWrite
	}
	if IsFuture(w.Date, b.cfg.Today()) {
		return ErrFutureDate
	}

	b.enqueue(ctx, &job{epoch: epoch, write: w})
	return nil
}

// Retry 重新发起某单元格最近一次失败的写入
func (b *Bridge) Retry(ctx context.Context, epoch uint64, ref CellRef) error {
	b.mu.Lock()
	q, ok := b.queues[ref]
	if !ok || q.status.State != WriteFailed || q.last == nil {
		b.mu.Unlock()
		return ErrNothingToRetry
	}
	j := &job{epoch: epoch, write: q.last.write}
	b.mu.Unlock()

	b.enqueue(ctx, j)
	return nil
}

// Status 单元格写入状态；没有写入记录时 ok=false
func (b *Bridge) Status(ref CellRef) (WriteStatus, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	q, ok := b.queues[ref]
	if !ok {
		return WriteStatus{}, false
	}
	return q.status, true
}

// Failed 所有失败单元格
func (b *Bridge) Failed() []CellRef {
	b.mu.Lock()
	defer b.mu.Unlock()
	var refs []CellRef
	for ref, q := range b.queues {
		if q.status.State == WriteFailed {
			refs = append(refs, ref)
		}
	}
	return refs
}

// Wait 等待所有写入结束
func (b *Bridge) Wait() {
	b.wg.Wait()
}

func (b *Bridge) enqueue(ctx context.Context, j *job) {
	ref := j.write.Ref()

	b.mu.Lock()
	defer b.mu.Unlock()

	q, ok := b.queues[ref]
	if !ok {
		q = &cellQueue{}
		b.queues[ref] = q
	}
	q.status = WriteStatus{State: WritePending, Value: j.write.Value}

	if q.running {
		if q.next != nil {
			b.logger.Debug("排队写入被覆盖",
				zap.String("entity_id", ref.EntityID),
				zap.String("dropped_value", q.next.write.Value),
			)
		}
		q.next = j
		return
	}

	q.running = true
	b.wg.Add(1)
	go b.drain(ctx, ref, q, j)
}

// drain 串行执行某单元格的写入，直到队列为空
func (b *Bridge) drain(ctx context.Context, ref CellRef, q *cellQueue, j *job) {
	defer b.wg.Done()

	for j != nil {
		attempts, err := b.run(ctx, j)

		b.mu.Lock()
		q.last = j
		if q.next == nil {
			b.finish(ref, q, j, attempts, err)
		}
		j = q.next
		q.next = nil
		if j == nil {
			q.running = false
		}
		b.mu.Unlock()
	}
}

// finish 记录写入结果，调用方持有锁
func (b *Bridge) finish(ref CellRef, q *cellQueue, j *job, attempts int, err error) {
	if b.stale(j.epoch) {
		b.logger.Debug("过期纪元的写入结果已丢弃",
			zap.String("entity_id", ref.EntityID),
			zap.Uint64("epoch", j.epoch),
		)
		if err == nil {
			delete(b.queues, ref)
			return
		}
	}

	if err != nil {
		q.status = WriteStatus{State: WriteFailed, Value: j.write.Value, Attempts: attempts, Err: err}
		b.logger.Error("写入日志失败",
			zap.String("kind", string(ref.Kind)),
			zap.String("entity_id", ref.EntityID),
			zap.Time("date", ref.Date),
			zap.Int("shift", int(ref.Shift)),
			zap.Int("attempts", attempts),
			zap.Error(err),
		)
		return
	}
	q.status = WriteStatus{State: WriteConfirmed, Value: j.write.Value, Attempts: attempts}
}

// run 执行一次写入，失败时按退避重试
func (b *Bridge) run(ctx context.Context, j *job) (int, error) {
	var err error
	for attempt := 1; attempt <= b.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			wait := time.Duration(attempt-1) * b.cfg.Backoff
			select {
			case <-ctx.Done():
				return attempt - 1, ctx.Err()
			case <-time.After(wait):
			}
		}
		if err = b.cfg.Writer.WriteEntry(ctx, j.write); err == nil {
			return attempt, nil
		}
		if ctx.Err() != nil {
			return attempt, err
		}
		b.logger.Warn("写入日志失败，准备重试",
			zap.String("entity_id", j.write.Key.EntityID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
	return b.cfg.MaxAttempts, err
}

func (b *Bridge) stale(epoch uint64) bool {
	return b.cfg.Epoch != nil && epoch != b.cfg.Epoch()
}
