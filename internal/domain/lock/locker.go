package lock

import (
	"context"
	"errors"
)

var ErrNotObtained = errors.New("loan is busy, try again")

// Locker serializes work on a single loan across request handlers and workers.
type Locker interface {
	WithLoanLock(ctx context.Context, loanID string, fn func(ctx context.Context) error) error
}
