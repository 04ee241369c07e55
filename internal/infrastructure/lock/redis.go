package lock

import (
	"context"
	"errors"
	"time"

	domainLock "mortgage-underwriting/internal/domain/lock"
	"mortgage-underwriting/internal/infrastructure/logging"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var _ domainLock.Locker = (*RedisLocker)(nil)

// RedisLocker serializes loan work across service instances.
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	opts   *redislock.Options
	log    logrus.FieldLogger
}

func NewRedisLocker(rdb *redis.Client, ttl time.Duration, log logrus.FieldLogger) *RedisLocker {
	return &RedisLocker{
		client: redislock.New(rdb),
		ttl:    ttl,
		// wait up to ~1s for a concurrent request on the same loan
		opts: &redislock.Options{RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), 20)},
		log:  log,
	}
}

func lockKey(loanID string) string { return "lock:loan:" + loanID }

func (l *RedisLocker) WithLoanLock(ctx context.Context, loanID string, fn func(ctx context.Context) error) error {
	lk, err := l.client.Obtain(ctx, lockKey(loanID), l.ttl, l.opts)
	if errors.Is(err, redislock.ErrNotObtained) {
		return domainLock.ErrNotObtained
	}
	if err != nil {
		logging.LogError(l.log, "lock", "WithLoanLock", "Error obtaining lock for loan", loanID, err)
		return err
	}
	defer func() {
		// context.Background: release even when the request was cancelled
		if err := lk.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			logging.LogError(l.log, "lock", "WithLoanLock", "Error releasing lock for loan", loanID, err)
		}
	}()
	return fn(ctx)
}
