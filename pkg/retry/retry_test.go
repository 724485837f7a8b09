package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func fast() Policy {
	return Policy{MaxAttempts: 3, Delay: time.Millisecond}
}

func TestPolicy_Do_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := fast().Do(context.Background(), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestPolicy_Do_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := fast().Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errBoom
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestPolicy_Do_ExhaustsBudget(t *testing.T) {
	calls := 0
	err := fast().Do(context.Background(), func() error {
		calls++
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 3, calls)
}

func TestPolicy_Do_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Policy{MaxAttempts: 10, Delay: 50 * time.Millisecond}.Do(ctx, func() error {
		calls++
		cancel()
		return errBoom
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoValue(t *testing.T) {
	calls := 0
	got, err := DoValue(context.Background(), fast(), func() (string, error) {
		calls++
		if calls < 2 {
			return "", errBoom
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)

	_, err = DoValue(context.Background(), fast(), func() (string, error) {
		return "", errBoom
	})
	assert.ErrorIs(t, err, errBoom)
}
