package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	domainLock "mortgage-underwriting/internal/domain/lock"
	"mortgage-underwriting/internal/infrastructure/logging"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisLocker_RunsAndReleases(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	l := NewRedisLocker(rdb, 5*time.Second, logging.Discard())
	ran := false
	err := l.WithLoanLock(context.Background(), "L1", func(ctx context.Context) error {
		ran = true
		if !mr.Exists(lockKey("L1")) {
			t.Fatal("lock key not held during callback")
		}
		return nil
	})
	if err != nil || !ran {
		t.Fatalf("WithLoanLock: err=%v ran=%v", err, ran)
	}
	if mr.Exists(lockKey("L1")) {
		t.Fatal("lock key not released")
	}
}

func TestRedisLocker_Busy(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	// someone else holds the loan
	if err := mr.Set(lockKey("L1"), "other-token"); err != nil {
		t.Fatal(err)
	}
	mr.SetTTL(lockKey("L1"), time.Minute)

	l := NewRedisLocker(rdb, 5*time.Second, logging.Discard())
	err := l.WithLoanLock(context.Background(), "L1", func(context.Context) error {
		t.Fatal("callback must not run while the lock is held elsewhere")
		return nil
	})
	if !errors.Is(err, domainLock.ErrNotObtained) {
		t.Fatalf("want ErrNotObtained, got %v", err)
	}
}

func TestRedisLocker_PropagatesCallbackError(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	boom := errors.New("boom")
	l := NewRedisLocker(rdb, 5*time.Second, logging.Discard())
	if err := l.WithLoanLock(context.Background(), "L1", func(context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
	if mr.Exists(lockKey("L1")) {
		t.Fatal("lock must be released after a failing callback")
	}
}

func TestLocalLocker_SerializesSameLoan(t *testing.T) {
	l := NewLocalLocker()
	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.WithLoanLock(context.Background(), "L1", func(context.Context) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
		}()
	}
	wg.Wait()
	if maxInside != 1 {
		t.Fatalf("max concurrent holders = %d", maxInside)
	}
	if len(l.locks) != 0 {
		t.Fatalf("lock entries leaked: %d", len(l.locks))
	}
}

func TestLocalLocker_DifferentLoansDoNotBlock(t *testing.T) {
	l := NewLocalLocker()
	done := make(chan struct{})
	go func() {
		_ = l.WithLoanLock(context.Background(), "A", func(context.Context) error {
			<-done
			return nil
		})
	}()
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := l.WithLoanLock(ctx, "B", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("B blocked by A: %v", err)
	}
	close(done)
}

func TestLocalLocker_ContextCancelled(t *testing.T) {
	l := NewLocalLocker()
	hold := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = l.WithLoanLock(context.Background(), "A", func(context.Context) error {
			close(started)
			<-hold
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.WithLoanLock(ctx, "A", func(context.Context) error { return nil }); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("want DeadlineExceeded, got %v", err)
	}
	close(hold)
}
