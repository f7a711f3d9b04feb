package common

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/studio-ledger/internal/service"
)

func fastRetry(attempts int) service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		Multiplier:   2,
	}
}

func TestWithRetry(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name      string
		failures  []error
		wantErr   error
		wantCalls int
	}{
		{
			name:      "succeeds first time",
			wantCalls: 1,
		},
		{
			name:      "succeeds after transient failures",
			failures:  []error{errBoom, ErrRateLimit},
			wantCalls: 3,
		},
		{
			name:      "exhausts attempts",
			failures:  []error{errBoom, errBoom, errBoom, errBoom},
			wantErr:   ErrMaxRetries,
			wantCalls: 3,
		},
		{
			name:      "not found is not retried",
			failures:  []error{fmt.Errorf("sheet: %w", ErrNotFound)},
			wantErr:   ErrNotFound,
			wantCalls: 1,
		},
		{
			name:      "permanent is not retried",
			failures:  []error{Permanent(errBoom)},
			wantErr:   errBoom,
			wantCalls: 1,
		},
		{
			name:      "cancellation is not retried",
			failures:  []error{context.Canceled},
			wantErr:   context.Canceled,
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := WithRetry(context.Background(), func() error {
				calls++
				if calls <= len(tt.failures) {
					return tt.failures[calls-1]
				}
				return nil
			}, fastRetry(3))

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestWithRetry_KeepsLastError(t *testing.T) {
	errBoom := errors.New("boom")

	err := WithRetry(context.Background(), func() error { return errBoom }, fastRetry(2))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMaxRetries)
	assert.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "after 2 attempts")
}

func TestWithRetry_ContextCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	opts := service.RetryOptions{MaxAttempts: 5, InitialDelay: time.Hour, MaxDelay: time.Hour}

	calls := 0
	err := WithRetry(ctx, func() error {
		calls++
		cancel()
		return errors.New("transient")
	}, opts)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestPermanent(t *testing.T) {
	assert.NoError(t, Permanent(nil))

	errBoom := errors.New("boom")
	err := Permanent(errBoom)
	assert.ErrorIs(t, err, errBoom)
	assert.False(t, IsRetryable(err))
	assert.Equal(t, "boom", err.Error())
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "rate limit", err: fmt.Errorf("write: %w", ErrRateLimit), want: true},
		{name: "deadline", err: context.DeadlineExceeded, want: true},
		{name: "cancelled", err: context.Canceled, want: false},
		{name: "marked retryable", err: &RetryableError{Err: errors.New("503"), Retryable: true}, want: true},
		{name: "permanent", err: Permanent(errors.New("403")), want: false},
		{name: "not found", err: fmt.Errorf("register: %w", ErrNotFound), want: false},
		{name: "wrapped cancel", err: fmt.Errorf("read: %w", context.Canceled), want: false},
		{name: "plain error", err: errors.New("dial tcp: timeout"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestUserError(t *testing.T) {
	err := NewUserError("Could not read config", ErrMissingConfig)
	assert.Equal(t, "Could not read config: missing configuration", err.Error())
	assert.ErrorIs(t, err, ErrMissingConfig)

	var ue *UserError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "Could not read config", ue.UserMessage)

	assert.Equal(t, "plain", NewUserError("plain", nil).Error())
}

func TestRetry_ReturnsValue(t *testing.T) {
	calls := 0
	got, err := Retry(context.Background(), func() ([]string, error) {
		calls++
		if calls == 1 {
			return nil, &RetryableError{Err: errors.New("503"), Retryable: true}
		}
		return []string{"row"}, nil
	}, fastRetry(3))

	require.NoError(t, err)
	assert.Equal(t, []string{"row"}, got)
	assert.Equal(t, 2, calls)

	got, err = Retry(context.Background(), func() ([]string, error) {
		return []string{"partial"}, Permanent(errors.New("denied"))
	}, fastRetry(3))
	require.Error(t, err)
	assert.Nil(t, got)
}
