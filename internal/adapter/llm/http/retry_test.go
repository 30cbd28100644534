package http_test

import (
	"context"
	"errors"
	"testing"
	"time"

	llmhttp "github.com/banderson/issueops/internal/adapter/llm/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func retryableErr(provider string) *llmhttp.Error {
	return &llmhttp.Error{
		Type:       llmhttp.ErrTypeRateLimit,
		Message:    "rate limited",
		StatusCode: 429,
		Retryable:  true,
		Provider:   provider,
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	config := llmhttp.DefaultRetryConfig()

	assert.Equal(t, 5, config.MaxRetries)
	assert.Equal(t, 2*time.Second, config.InitialBackoff)
	assert.Equal(t, 32*time.Second, config.MaxBackoff)
	assert.Equal(t, 2.0, config.Multiplier)
}

func TestExponentialBackoff(t *testing.T) {
	config := llmhttp.RetryConfig{
		MaxRetries:     5,
		InitialBackoff: 2 * time.Second,
		MaxBackoff:     32 * time.Second,
		Multiplier:     2.0,
	}

	tests := []struct {
		name    string
		attempt int
		minWait time.Duration
		maxWait time.Duration
	}{
		{"attempt 0", 0, 1500 * time.Millisecond, 2500 * time.Millisecond}, // 2s ± 25%
		{"attempt 1", 1, 3 * time.Second, 5 * time.Second},                 // 4s ± 25%
		{"attempt 2", 2, 6 * time.Second, 10 * time.Second},                // 8s ± 25%
		{"attempt 4", 4, 24 * time.Second, 32 * time.Second},               // 32s (capped)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Run multiple times to verify jitter stays in range
			for i := 0; i < 10; i++ {
				backoff := llmhttp.ExponentialBackoff(tt.attempt, config)
				assert.GreaterOrEqual(t, backoff, tt.minWait, "backoff too short")
				assert.LessOrEqual(t, backoff, tt.maxWait, "backoff too long")
			}
		})
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "rate limit error should retry",
			err:  retryableErr("anthropic"),
			want: true,
		},
		{
			name: "service unavailable should retry",
			err:  &llmhttp.Error{Type: llmhttp.ErrTypeServiceUnavailable, Retryable: true, Provider: "bedrock"},
			want: true,
		},
		{
			name: "authentication error should not retry",
			err:  &llmhttp.Error{Type: llmhttp.ErrTypeAuthentication, Provider: "anthropic"},
			want: false,
		},
		{
			name: "not found should not retry",
			err:  &llmhttp.Error{Type: llmhttp.ErrTypeNotFound, StatusCode: 404, Provider: "github"},
			want: false,
		},
		{
			name: "non-HTTP error should not retry",
			err:  errors.New("generic error"),
			want: false,
		},
		{
			name: "nil error should not retry",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, llmhttp.ShouldRetry(tt.err))
		})
	}
}

func TestRetryWithBackoff_Success(t *testing.T) {
	attempts := 0
	operation := func(ctx context.Context) error {
		attempts++
		return nil
	}

	err := llmhttp.RetryWithBackoff(context.Background(), operation, fastConfig())
	require.NoError(t, err)
	assert.Equal(t, 1, attempts, "should succeed on first attempt")
}

func TestRetryWithBackoff_RetryableError(t *testing.T) {
	attempts := 0
	operation := func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return retryableErr("test")
		}
		return nil
	}

	err := llmhttp.RetryWithBackoff(context.Background(), operation, fastConfig())
	require.NoError(t, err)
	assert.Equal(t, 3, attempts, "should retry twice then succeed")
}

func TestRetryWithBackoff_NonRetryableError(t *testing.T) {
	attempts := 0
	operation := func(ctx context.Context) error {
		attempts++
		return &llmhttp.Error{Type: llmhttp.ErrTypeAuthentication, Message: "invalid API key", Provider: "test"}
	}

	err := llmhttp.RetryWithBackoff(context.Background(), operation, fastConfig())
	require.Error(t, err)
	assert.Equal(t, 1, attempts, "should not retry non-retryable error")
	assert.Contains(t, err.Error(), "invalid API key")
}

func TestRetryWithBackoff_MaxRetriesExceeded(t *testing.T) {
	attempts := 0
	operation := func(ctx context.Context) error {
		attempts++
		return retryableErr("test")
	}

	config := fastConfig()
	config.MaxRetries = 3

	err := llmhttp.RetryWithBackoff(context.Background(), operation, config)
	require.Error(t, err)
	assert.Equal(t, 4, attempts, "should try once + 3 retries")
}

func TestRetryWithBackoff_ContextCanceled(t *testing.T) {
	operation := func(ctx context.Context) error {
		return retryableErr("test")
	}

	config := llmhttp.RetryConfig{
		MaxRetries:     5,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
		Multiplier:     2.0,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 75*time.Millisecond)
	defer cancel()

	err := llmhttp.RetryWithBackoff(ctx, operation, config)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRetryWithBackoff_GenericError(t *testing.T) {
	attempts := 0
	operation := func(ctx context.Context) error {
		attempts++
		return errors.New("generic error")
	}

	err := llmhttp.RetryWithBackoff(context.Background(), operation, fastConfig())
	require.Error(t, err)
	assert.Equal(t, 1, attempts, "should not retry generic errors")
}

func fastConfig() llmhttp.RetryConfig {
	return llmhttp.RetryConfig{
		MaxRetries:     5,
		InitialBackoff: 10 * time.Millisecond,
		MaxBackoff:     100 * time.Millisecond,
		Multiplier:     2.0,
	}
}
