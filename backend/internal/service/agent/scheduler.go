/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-14 14:31:10
 * @FilePath: \guerrilla-go-app\backend\internal\service\agent\scheduler.go
 * @LastEditTime: 2025-10-14 14:31:10
 */
package agent

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"guerrilla-go-app/backend/internal/infra/metrics"
	"guerrilla-go-app/backend/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultCycleInterval 是两次营销周期之间的默认休眠时长。
	DefaultCycleInterval = 600 * time.Second
	// DefaultErrorBackoff 是调度循环出错后的默认退避时长。
	DefaultErrorBackoff = 60 * time.Second
)

// Options 描述调度器的可配置项，零值字段回退到默认值。
type Options struct {
	CycleInterval time.Duration
	ErrorBackoff  time.Duration
	// Rand 允许注入随机源，测试里用固定种子复现生成结果。
	Rand *rand.Rand
	// Producers 允许替换生成器列表，默认使用 DefaultProducers。
	Producers []Producer
}

// Scheduler 是营销周期的单写者调度循环。
// 状态只有 Idle 和 Running 两种：Start 进入 Running，Stop 发出信号后
// 循环在当前 tick 结束或休眠被打断时退出，回到 Idle。
type Scheduler struct {
	logs      *repository.ActionLogRepository
	producers []Producer
	interval  time.Duration
	backoff   time.Duration
	rng       *rand.Rand
	logger    *zap.SugaredLogger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	done    chan struct{}

	// runCycleFn 默认指向 runCycle，测试通过替换它注入周期级故障。
	runCycleFn func(ctx context.Context, cycleID string)

	cycleCount atomic.Int64
}

// NewScheduler 构造调度器。
func NewScheduler(logs *repository.ActionLogRepository, logger *zap.SugaredLogger, opts Options) *Scheduler {
	if opts.CycleInterval <= 0 {
		opts.CycleInterval = DefaultCycleInterval
	}
	if opts.ErrorBackoff <= 0 {
		opts.ErrorBackoff = DefaultErrorBackoff
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if len(opts.Producers) == 0 {
		opts.Producers = DefaultProducers()
	}

	s := &Scheduler{
		logs:      logs,
		producers: opts.Producers,
		interval:  opts.CycleInterval,
		backoff:   opts.ErrorBackoff,
		rng:       opts.Rand,
		logger:    logger.With("component", "agent.scheduler"),
	}
	s.runCycleFn = s.runCycle
	return s
}

// Start 启动后台循环，重复调用只会生效一次。
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})

	go s.loop(ctx, s.stopCh, s.done)
	s.logger.Infow("scheduler started", "interval", s.interval.String())
}

// Stop 通知循环退出。正在执行的 tick 会跑完，正在休眠则立即被打断。
// 可以从任意 goroutine 调用，重复与并发调用都是安全的。
func (s *Scheduler) Stop() {
	s.mu.Lock()
	stopCh := s.stopCh
	done := s.done
	// 关闭动作在锁内完成并立刻置空 stopCh，并发 Stop 不会二次 close。
	if stopCh != nil {
		close(stopCh)
		s.stopCh = nil
	}
	s.mu.Unlock()

	if done == nil {
		return
	}
	<-done

	if stopCh != nil {
		s.logger.Infow("scheduler stopped", "cycles", s.cycleCount.Load())
	}
}

// Running 返回调度器当前是否处于 Running 状态。
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// CycleCount 返回已完成的周期数。
func (s *Scheduler) CycleCount() int64 {
	return s.cycleCount.Load()
}

// RunCycleOnce 同步执行一个完整周期，供测试与集成验证使用。
func (s *Scheduler) RunCycleOnce(ctx context.Context) {
	s.runCycle(ctx, uuid.NewString())
}

// loop 是调度主循环：执行周期、观察结果、休眠，直到收到停止信号。
func (s *Scheduler) loop(ctx context.Context, stopCh <-chan struct{}, done chan<- struct{}) {
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		close(done)
	}()

	for {
		wait := s.interval

		if err := s.safeRunCycle(ctx); err != nil {
			// 循环自身的意外错误不致命，退避后重试以保持存活。
			s.logger.Errorw("cycle loop error", "error", err, "backoff", s.backoff.String())
			metrics.ObserveCycle("error")
			wait = s.backoff
		} else {
			metrics.ObserveCycle("ok")
		}

		timer := time.NewTimer(wait)
		select {
		case <-stopCh:
			timer.Stop()
			return
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		// 休眠结束后再确认一次停止信号，避免多跑一个周期。
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}
	}
}

// safeRunCycle 兜底捕获周期级 panic，转换为循环错误处理。
func (s *Scheduler) safeRunCycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &loopPanicError{value: r}
		}
	}()

	s.runCycleFn(ctx, uuid.NewString())
	return ctx.Err()
}

// runCycle 按固定顺序执行全部生成器，单个失败不会中断其余动作。
func (s *Scheduler) runCycle(ctx context.Context, cycleID string) {
	number := s.cycleCount.Load() + 1
	s.logger.Infow("cycle started", "cycle_id", cycleID, "number", number)

	for _, producer := range s.producers {
		s.runProducer(ctx, cycleID, producer)
	}

	s.cycleCount.Add(1)
	s.logger.Infow("cycle completed", "cycle_id", cycleID, "number", number)
}

// runProducer 执行单个生成器并落库，错误与 panic 都被隔离在本次调用内。
func (s *Scheduler) runProducer(ctx context.Context, cycleID string, producer Producer) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorw("producer panic", "cycle_id", cycleID, "producer", producer.Name, "panic", r)
			metrics.ObserveProducerRun(producer.Name, "panic")
		}
	}()

	record, err := producer.Fabricate(s.rng)
	if err != nil {
		s.logger.Errorw("producer failed", "cycle_id", cycleID, "producer", producer.Name, "error", err)
		metrics.ObserveProducerRun(producer.Name, "error")
		return
	}

	start := time.Now()
	id, err := s.logs.Append(ctx, &record)
	if err != nil {
		s.logger.Errorw("append action failed", "cycle_id", cycleID, "producer", producer.Name, "error", err)
		metrics.ObserveProducerRun(producer.Name, "error")
		return
	}

	metrics.ObserveActionAppend(record.ActionType, time.Since(start))
	metrics.ObserveProducerRun(producer.Name, "ok")
	s.logger.Infow("action logged",
		"cycle_id", cycleID,
		"producer", producer.Name,
		"action_id", id,
		"type", record.ActionType,
		"platform", record.Platform,
	)
}

// loopPanicError 把周期级 panic 包装成 error，走统一的退避路径。
type loopPanicError struct {
	value any
}

func (e *loopPanicError) Error() string {
	return fmt.Sprintf("cycle panic: %v", e.value)
}
