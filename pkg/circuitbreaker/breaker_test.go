package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/typeform-survey/survey-client/pkg/metrics"
)

var errBackend = errors.New("backend unavailable")

func TestExecute_OpensAfterConsecutiveFailures(t *testing.T) {
	cfg := DefaultConfig("test-opens")
	cfg.FailureThreshold = 2
	cb := NewCircuitBreaker(cfg)
	gauge := metrics.CircuitBreakerState.WithLabelValues(cfg.Name)
	assert.Zero(t, testutil.ToFloat64(gauge))

	for i := 0; i < 2; i++ {
		_, err := Execute(cb, func() (int, error) { return 0, errBackend })
		assert.ErrorIs(t, err, errBackend)
	}

	require.True(t, IsCircuitOpen(cb))
	assert.Equal(t, float64(2), testutil.ToFloat64(gauge))

	called := false
	_, err := Execute(cb, func() (int, error) {
		called = true
		return 1, nil
	})
	assert.False(t, called)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Contains(t, err.Error(), "test-opens")
}

func TestExecute_HalfOpenRecovers(t *testing.T) {
	cfg := DefaultConfig("test-recovers")
	cfg.FailureThreshold = 1
	cfg.Timeout = 10 * time.Millisecond
	cb := NewCircuitBreaker(cfg)
	gauge := metrics.CircuitBreakerState.WithLabelValues(cfg.Name)

	_, err := Execute(cb, func() (string, error) { return "", errBackend })
	require.Error(t, err)
	require.True(t, IsCircuitOpen(cb))

	assert.Eventually(t, func() bool { return cb.State() == gobreaker.StateHalfOpen }, time.Second, 5*time.Millisecond)
	assert.Equal(t, float64(1), testutil.ToFloat64(gauge))

	got, err := Execute(cb, func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
	assert.Zero(t, testutil.ToFloat64(gauge))
}

func TestFormatError_PassesThroughOrdinaryErrors(t *testing.T) {
	assert.Same(t, errBackend, FormatError("x", errBackend))
	assert.ErrorIs(t, FormatError("x", gobreaker.ErrTooManyRequests), gobreaker.ErrTooManyRequests)
}
