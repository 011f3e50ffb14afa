package s3store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/S-Muro0526/wasabi/internal/testutil"
)

func TestRetryer_IsErrorRetryable(t *testing.T) {
	r := NewRetryer(3, time.Millisecond, time.Second)

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"slow down", testutil.NewAPIError("SlowDown", "reduce rate"), true},
		{"service unavailable", testutil.NewAPIError("ServiceUnavailable", ""), true},
		{"internal error", testutil.NewAPIError("InternalError", ""), true},
		{"access denied", testutil.NewAPIError("AccessDenied", ""), false},
		{"no such key", testutil.NewAPIError("NoSuchKey", ""), false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.IsErrorRetryable(tt.err))
		})
	}
}

func TestRetryer_RetryDelay(t *testing.T) {
	r := NewRetryer(5, 100*time.Millisecond, 300*time.Millisecond)

	for attempt := 1; attempt <= 5; attempt++ {
		delay, err := r.RetryDelay(attempt, nil)
		assert.NoError(t, err)
		assert.GreaterOrEqual(t, delay, time.Duration(0))
		assert.LessOrEqual(t, delay, 300*time.Millisecond)
	}

	first, _ := r.RetryDelay(1, nil)
	assert.InDelta(t, float64(100*time.Millisecond), float64(first), float64(25*time.Millisecond))
}

func TestNewRetryer_Defaults(t *testing.T) {
	r := NewRetryer(0, 0, 0)

	assert.Equal(t, 3, r.MaxAttempts())
	assert.Equal(t, 200*time.Millisecond, r.baseDelay)
	assert.Equal(t, 5*time.Second, r.maxDelay)
}
