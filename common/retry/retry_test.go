package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/3madMostafa/Alta-Video-Assistant/common/retry"
)

func TestDo_SuccessOnFirstAttempt(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), retry.Config{MaxAttempts: 3, BaseDelay: time.Millisecond}, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestDo_RetriesOnFailure(t *testing.T) {
	calls := 0
	sentinel := errors.New("transient")
	err := retry.Do(context.Background(), retry.Config{MaxAttempts: 3, BaseDelay: time.Millisecond}, func() error {
		calls++
		if calls < 3 {
			return sentinel
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected nil after eventual success, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDo_GivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	sentinel := errors.New("still failing")
	err := retry.Do(context.Background(), retry.Config{MaxAttempts: 3, BaseDelay: time.Millisecond}, func() error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDo_StopClassFailsImmediately(t *testing.T) {
	fatal := errors.New("unauthorized")
	calls := 0
	cfg := retry.Config{
		MaxAttempts: 5,
		BaseDelay:   time.Millisecond,
		Classify: func(err error) retry.Class {
			if errors.Is(err, fatal) {
				return retry.Stop
			}
			return retry.Linear
		},
	}
	err := retry.Do(context.Background(), cfg, func() error {
		calls++
		return fatal
	})
	if !errors.Is(err, fatal) {
		t.Fatalf("expected fatal error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call for Stop class, got %d", calls)
	}
}

func TestDo_MixedClasses(t *testing.T) {
	rateLimited := errors.New("rate limited")
	serverErr := errors.New("server error")
	calls := 0
	cfg := retry.Config{
		MaxAttempts: 4,
		BaseDelay:   time.Millisecond,
		Classify: func(err error) retry.Class {
			if errors.Is(err, rateLimited) {
				return retry.Exponential
			}
			return retry.Linear
		},
	}
	err := retry.Do(context.Background(), cfg, func() error {
		calls++
		switch calls {
		case 1:
			return rateLimited
		case 2:
			return serverErr
		default:
			return nil
		}
	})
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := retry.Do(ctx, retry.Config{MaxAttempts: 3, BaseDelay: time.Millisecond}, func() error {
		calls++
		return errors.New("whatever")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no calls on pre-cancelled context, got %d", calls)
	}
}
