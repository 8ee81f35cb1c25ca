package agent

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"guerrilla-go-app/backend/internal/domain/action"
	"guerrilla-go-app/backend/internal/repository"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestLogRepository(t *testing.T) *repository.ActionLogRepository {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&action.Record{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	return repository.NewActionLogRepository(db)
}

func TestRunCycleOnceAppendsSevenRecords(t *testing.T) {
	repo := newTestLogRepository(t)
	scheduler := NewScheduler(repo, zap.NewNop().Sugar(), Options{
		Rand: rand.New(rand.NewSource(1)),
	})

	scheduler.RunCycleOnce(context.Background())

	count, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 7 {
		t.Fatalf("expected 7 records after one cycle, got %d", count)
	}
	if scheduler.CycleCount() != 1 {
		t.Fatalf("expected cycle count 1, got %d", scheduler.CycleCount())
	}
}

func TestFailingProducerDoesNotAbortCycle(t *testing.T) {
	repo := newTestLogRepository(t)

	producers := DefaultProducers()
	// 第四个生成器换成必然失败的实现，其余六个应照常落库。
	producers[3] = Producer{
		Name: "broken",
		Fabricate: func(rng *rand.Rand) (action.Record, error) {
			return action.Record{}, errors.New("synthetic failure")
		},
	}

	scheduler := NewScheduler(repo, zap.NewNop().Sugar(), Options{
		Rand:      rand.New(rand.NewSource(1)),
		Producers: producers,
	})

	scheduler.RunCycleOnce(context.Background())

	count, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 6 {
		t.Fatalf("expected 6 records with one failing producer, got %d", count)
	}
}

func TestPanickingProducerIsIsolated(t *testing.T) {
	repo := newTestLogRepository(t)

	producers := DefaultProducers()
	producers[0] = Producer{
		Name: "panicky",
		Fabricate: func(rng *rand.Rand) (action.Record, error) {
			panic("boom")
		},
	}

	scheduler := NewScheduler(repo, zap.NewNop().Sugar(), Options{
		Rand:      rand.New(rand.NewSource(1)),
		Producers: producers,
	})

	scheduler.RunCycleOnce(context.Background())

	count, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 6 {
		t.Fatalf("expected 6 records with one panicking producer, got %d", count)
	}
}

func TestStopDuringSleepExitsPromptly(t *testing.T) {
	repo := newTestLogRepository(t)
	scheduler := NewScheduler(repo, zap.NewNop().Sugar(), Options{
		// 休眠远长于测试时长，Stop 必须打断休眠而不是等完整个间隔。
		CycleInterval: 10 * time.Minute,
		Rand:          rand.New(rand.NewSource(1)),
	})

	scheduler.Start(context.Background())

	deadline := time.Now().Add(5 * time.Second)
	for scheduler.CycleCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("first cycle never completed")
		}
		time.Sleep(10 * time.Millisecond)
	}

	stopStart := time.Now()
	scheduler.Stop()
	if elapsed := time.Since(stopStart); elapsed > 2*time.Second {
		t.Fatalf("stop took %v, sleep was not interrupted", elapsed)
	}

	if scheduler.Running() {
		t.Fatalf("expected scheduler idle after stop")
	}
	if scheduler.CycleCount() != 1 {
		t.Fatalf("expected exactly one cycle, got %d", scheduler.CycleCount())
	}

	count, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 7 {
		t.Fatalf("expected 7 records from single cycle, got %d", count)
	}
}

func TestStartIsIdempotent(t *testing.T) {
	repo := newTestLogRepository(t)
	scheduler := NewScheduler(repo, zap.NewNop().Sugar(), Options{
		CycleInterval: 10 * time.Minute,
		Rand:          rand.New(rand.NewSource(1)),
	})

	scheduler.Start(context.Background())
	scheduler.Start(context.Background())

	deadline := time.Now().Add(5 * time.Second)
	for scheduler.CycleCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("first cycle never completed")
		}
		time.Sleep(10 * time.Millisecond)
	}
	scheduler.Stop()

	count, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 7 {
		t.Fatalf("expected a single loop to have run one cycle, got %d records", count)
	}

	// 停止后可以安全地重复调用。
	scheduler.Stop()
}

func TestConcurrentStopIsSafe(t *testing.T) {
	repo := newTestLogRepository(t)
	scheduler := NewScheduler(repo, zap.NewNop().Sugar(), Options{
		CycleInterval: 10 * time.Minute,
		Rand:          rand.New(rand.NewSource(1)),
	})

	// 多轮启动后并发停止，任何一轮重复 close 都会直接 panic。
	for round := 0; round < 50; round++ {
		scheduler.Start(context.Background())

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				scheduler.Stop()
			}()
		}
		wg.Wait()

		if scheduler.Running() {
			t.Fatalf("round %d: scheduler still running after stop", round)
		}
	}
}

func TestCycleFailureBacksOffAndRetries(t *testing.T) {
	repo := newTestLogRepository(t)
	scheduler := NewScheduler(repo, zap.NewNop().Sugar(), Options{
		CycleInterval: 10 * time.Minute,
		ErrorBackoff:  20 * time.Millisecond,
		Rand:          rand.New(rand.NewSource(1)),
	})

	// 第一次周期抛出 panic，循环应退避后重试而不是终止。
	var attempts atomic.Int64
	realRunCycle := scheduler.runCycleFn
	scheduler.runCycleFn = func(ctx context.Context, cycleID string) {
		if attempts.Add(1) == 1 {
			panic("synthetic cycle failure")
		}
		realRunCycle(ctx, cycleID)
	}

	scheduler.Start(context.Background())

	deadline := time.Now().Add(5 * time.Second)
	for scheduler.CycleCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("loop did not recover from cycle failure")
		}
		time.Sleep(10 * time.Millisecond)
	}
	scheduler.Stop()

	if got := attempts.Load(); got < 2 {
		t.Fatalf("expected at least 2 cycle attempts, got %d", got)
	}
	if scheduler.CycleCount() != 1 {
		t.Fatalf("expected one completed cycle after retry, got %d", scheduler.CycleCount())
	}

	count, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 7 {
		t.Fatalf("expected 7 records from the retried cycle, got %d", count)
	}
}
