package lock

import (
	"context"
	"sync"

	domainLock "mortgage-underwriting/internal/domain/lock"
)

var _ domainLock.Locker = (*LocalLocker)(nil)

// LocalLocker is an in-process keyed mutex for single-instance runs without Redis.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker { return &LocalLocker{locks: map[string]*entry{}} }

func (l *LocalLocker) WithLoanLock(ctx context.Context, loanID string, fn func(ctx context.Context) error) error {
	e := l.acquire(loanID)
	defer l.release(loanID, e)

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-e.ch }()
	return fn(ctx)
}

func (l *LocalLocker) acquire(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	return e
}

func (l *LocalLocker) release(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}
