package objectstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/countdown/internal/common"
	"github.com/dmitrijs2005/countdown/internal/logging"
)

// RetryPolicy bounds the retries of read operations.
type RetryPolicy struct {
	// MaxAttempts counts the first call; values below 1 mean a single attempt.
	MaxAttempts int
	Backoff     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Backoff: 500 * time.Millisecond}
}

func (p RetryPolicy) backoff() retry.Backoff {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	wait := p.Backoff
	if wait <= 0 {
		wait = time.Nanosecond
	}
	return retry.WithMaxRetries(uint64(attempts-1), retry.NewConstant(wait))
}

// RetryingStore retries Fetch and List on transient failures.
// A missing key is an answer, not a failure, and is never retried. Writes
// pass straight through: a retried write could clobber a concurrent one.
type RetryingStore struct {
	next   Store
	policy RetryPolicy
	logger logging.Logger
}

func NewRetryingStore(next Store, policy RetryPolicy, logger logging.Logger) *RetryingStore {
	return &RetryingStore{
		next:   next,
		policy: policy,
		logger: logger.With("module", "objectstore_retry"),
	}
}

func (s *RetryingStore) Fetch(ctx context.Context, key string) (*Object, error) {
	var obj *Object
	err := s.do(ctx, "fetch", key, func(ctx context.Context) error {
		o, err := s.next.Fetch(ctx, key)
		if err != nil {
			return err
		}
		obj = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

func (s *RetryingStore) Write(ctx context.Context, key string, data []byte, opts WriteOptions) (*WriteResult, error) {
	return s.next.Write(ctx, key, data, opts)
}

func (s *RetryingStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.do(ctx, "list", prefix, func(ctx context.Context) error {
		k, err := s.next.List(ctx, prefix)
		if err != nil {
			return err
		}
		keys = k
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *RetryingStore) do(ctx context.Context, op, key string, fn func(ctx context.Context) error) error {
	attempt := 0
	err := retry.Do(ctx, s.policy.backoff(), func(ctx context.Context) error {
		attempt++
		err := fn(ctx)
		if err == nil || !retryable(err) {
			return err
		}
		s.logger.Warn(ctx, "store read failed", "op", op, "key", key, "attempt", attempt, "error", err)
		return retry.RetryableError(err)
	})
	if err == nil || !retryable(err) {
		return err
	}
	if errors.Is(err, common.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s %s: %w", common.ErrStoreUnavailable, op, key, err)
}

func retryable(err error) bool {
	switch {
	case errors.Is(err, common.ErrNotFound),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}
