package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func fastPolicy(maxRetries int) RetryPolicy {
	return RetryPolicy{
		MaxRetries:   maxRetries,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestRetryWithPolicyRetryable(t *testing.T) {
	calls := 0
	result, err := RetryWithPolicy(context.Background(), fastPolicy(3),
		func(ctx context.Context) (string, error) {
			calls++
			if calls < 3 {
				return "", fmt.Errorf("503 service unavailable")
			}
			return "ok", nil
		},
		ClassifyLLMError, nil)

	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if result != "ok" {
		t.Errorf("Expected ok, got %q", result)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestRetryWithPolicyNonRetryable(t *testing.T) {
	calls := 0
	_, err := RetryWithPolicy(context.Background(), fastPolicy(3),
		func(ctx context.Context) (string, error) {
			calls++
			return "", fmt.Errorf("401 unauthorized")
		},
		ClassifyLLMError, nil)

	if err == nil {
		t.Fatal("Expected error")
	}
	if calls != 1 {
		t.Errorf("Non-retryable error should not be retried, got %d calls", calls)
	}
}

func TestRetryWithPolicyExhausted(t *testing.T) {
	calls := 0
	_, err := RetryWithPolicy(context.Background(), fastPolicy(2),
		func(ctx context.Context) (string, error) {
			calls++
			return "", fmt.Errorf("rate limit exceeded")
		},
		ClassifyLLMError, nil)

	if !IsRetryExhausted(err) {
		t.Fatalf("Expected RetryExhaustedError, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected initial call plus 2 retries, got %d calls", calls)
	}
}

func TestClassifyLLMError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want RetryClass
	}{
		{"Rate limit", errors.New("429 too many requests"), RetryClassRetryable},
		{"Server error", errors.New("internal server error"), RetryClassRetryable},
		{"Network", errors.New("connection refused"), RetryClassRetryable},
		{"Deadline", errors.New("context deadline exceeded"), RetryClassMaybe},
		{"Auth", errors.New("invalid api key"), RetryClassNonRetryable},
		{"Bad request", errors.New("400 bad request"), RetryClassNonRetryable},
		{"Unknown", errors.New("something odd"), RetryClassNonRetryable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyLLMError(tt.err); got != tt.want {
				t.Errorf("ClassifyLLMError(%q) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassifyToolError(t *testing.T) {
	if got := ClassifyToolError(errors.New("database is locked"), true); got != RetryClassRetryable {
		t.Errorf("Expected retryable for lock contention, got %v", got)
	}
	if got := ClassifyToolError(errors.New("database is locked"), false); got != RetryClassNonRetryable {
		t.Errorf("Non-retryable tool should never retry, got %v", got)
	}
	if got := ClassifyToolError(errors.New("constraint violation"), true); got != RetryClassNonRetryable {
		t.Errorf("Deterministic failure should not retry, got %v", got)
	}
}

func TestRetryToolCallNonRetryableTool(t *testing.T) {
	calls := 0
	reg := ToolRegistry{
		"flaky": {
			Name:       "flaky",
			SchemaJSON: `{"type":"object"}`,
			Retryable:  false,
			Fn: func(ctx context.Context, args map[string]any) (string, error) {
				calls++
				return "", fmt.Errorf("503 service unavailable")
			},
		},
	}

	_, err := RetryToolCall(context.Background(), fastPolicy(3),
		ToolCall{Name: "flaky", Args: map[string]any{}}, reg, nil)
	if err == nil {
		t.Fatal("Expected error")
	}
	if calls != 1 {
		t.Errorf("Non-retryable tool should run exactly once, got %d calls", calls)
	}
}

func TestExtractRetryAfter(t *testing.T) {
	wrapped := WrapLLMError(errors.New("429 too many requests"), 429, "7")
	if got := ExtractRetryAfter(wrapped); got != 7*time.Second {
		t.Errorf("Expected 7s from Retry-After header, got %v", got)
	}

	if got := ExtractRetryAfter(errors.New("please retry after 3 seconds")); got != 3*time.Second {
		t.Errorf("Expected 3s parsed from message, got %v", got)
	}

	if got := ExtractRetryAfter(errors.New("no hint here")); got != 0 {
		t.Errorf("Expected 0 with no hint, got %v", got)
	}
}
