package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/ravindradesineni/Movie-recommendation/pkg/errors"
)

func TestRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "op", RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond}, func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetryExhausted(t *testing.T) {
	sentinel := errors.New("down")
	calls := 0
	err := Retry(context.Background(), "op", RetryConfig{MaxAttempts: 2, InitialDelay: time.Millisecond}, func() error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("expected wrapped sentinel, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestRetryStopsOnPermanent(t *testing.T) {
	sentinel := errors.New("missing table")
	calls := 0
	err := Retry(context.Background(), "op", RetryConfig{MaxAttempts: 5, InitialDelay: time.Millisecond}, func() error {
		calls++
		return Permanent(sentinel)
	})
	if err != sentinel {
		t.Errorf("expected the unwrapped error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	if Permanent(nil) != nil {
		t.Error("expected Permanent(nil) to be nil")
	}
}

func TestRetryHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, "op", RetryConfig{MaxAttempts: 3, InitialDelay: time.Hour}, func() error {
		return errors.New("fail")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCircuitBreakerTransitions(t *testing.T) {
	now := time.Unix(0, 0)
	var transitions []State
	cb := NewCircuitBreaker("test", CircuitBreakerConfig{
		FailureThreshold: 2,
		ResetTimeout:     time.Second,
		OnStateChange:    func(from, to State) { transitions = append(transitions, to) },
	})
	cb.now = func() time.Time { return now }

	fail := func() error { return errors.New("boom") }
	ok := func() error { return nil }

	cb.Execute(fail)
	if cb.GetState() != StateClosed {
		t.Fatalf("expected closed after 1 failure, got %s", cb.GetState())
	}
	cb.Execute(fail)
	if cb.GetState() != StateOpen {
		t.Fatalf("expected open after 2 failures, got %s", cb.GetState())
	}

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	if !errors.Is(err, ErrCircuitOpen) || called {
		t.Fatalf("expected ErrCircuitOpen without calling fn, got %v (called=%v)", err, called)
	}

	now = now.Add(time.Second)
	if err := cb.Execute(fail); err == nil {
		t.Fatal("expected probe failure to be returned")
	}
	if cb.GetState() != StateOpen {
		t.Fatalf("expected re-open after failed probe, got %s", cb.GetState())
	}

	now = now.Add(time.Second)
	if err := cb.Execute(ok); err != nil {
		t.Fatalf("expected probe to pass, got %v", err)
	}
	if cb.GetState() != StateClosed {
		t.Fatalf("expected closed after successful probe, got %s", cb.GetState())
	}

	want := []State{StateOpen, StateHalfOpen, StateOpen, StateHalfOpen, StateClosed}
	if len(transitions) != len(want) {
		t.Fatalf("expected transitions %v, got %v", want, transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d: expected %s, got %s", i, want[i], transitions[i])
		}
	}
}

func TestWithTimeout(t *testing.T) {
	err := WithTimeout(context.Background(), 10*time.Millisecond, "slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
	if !errors.Is(err, apperrors.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
	if got := apperrors.HTTPStatusCode(err); got != 503 {
		t.Errorf("expected status 503, got %d", got)
	}

	parent, cancel := context.WithCancel(context.Background())
	cancel()
	err = WithTimeout(parent, time.Second, "dataset load", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if err == nil || errors.Is(err, apperrors.ErrUnavailable) {
		t.Errorf("expected plain cancellation error, got %v", err)
	}

	err = WithTimeout(context.Background(), 0, "direct", func(ctx context.Context) error { return nil })
	if err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}
