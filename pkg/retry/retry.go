// Package retry provides the bounded retry policy used for connector calls
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy describes how many times an operation is attempted and how long to
// wait between attempts. Group metadata and participant updates against the
// connector are not fully reliable, so every such call site goes through a
// Policy instead of an ad-hoc sleep loop.
type Policy struct {
	MaxAttempts uint64
	Delay       time.Duration
}

// Default is the policy applied to connector metadata lookups: three
// attempts with a fixed two second delay.
var Default = Policy{MaxAttempts: 3, Delay: 2 * time.Second}

// Do runs op until it succeeds, the attempt budget is exhausted, or ctx is
// cancelled. The last error is returned on exhaustion.
func (p Policy) Do(ctx context.Context, op func() error) error {
	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Delay), p.MaxAttempts-1),
		ctx,
	)
	return backoff.Retry(op, b)
}

// DoValue is Do for operations returning a value.
func DoValue[T any](ctx context.Context, p Policy, op func() (T, error)) (T, error) {
	var out T
	err := p.Do(ctx, func() error {
		var err error
		out, err = op()
		return err
	})
	return out, err
}
