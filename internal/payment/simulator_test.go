package payment

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestPaymentSucceedsAfterDuration(t *testing.T) {
	var succeeded atomic.Bool
	var gotPlan atomic.Value
	s := NewSimulator(20*time.Millisecond, func(_ context.Context, plan Plan, until time.Time) {
		succeeded.Store(true)
		gotPlan.Store(plan)
		if until.Before(time.Now().AddDate(0, 0, 27)) {
			t.Errorf("monthly subscription end too early: %v", until)
		}
	})

	if err := s.Start(context.Background(), PlanMonthly); err != nil {
		t.Fatalf("start: %v", err)
	}
	if status, _ := s.Status(); status != StatusInProgress {
		t.Fatalf("status = %s, want in-progress", status)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if status, _ := s.Status(); status == StatusSucceeded {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("payment never succeeded")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !succeeded.Load() {
		t.Fatal("success callback not invoked")
	}
	if gotPlan.Load() != PlanMonthly {
		t.Fatalf("plan = %v, want monthly", gotPlan.Load())
	}
}

func TestCancelMovesToFailed(t *testing.T) {
	s := NewSimulator(time.Minute, func(context.Context, Plan, time.Time) {
		t.Error("success callback must not fire after cancel")
	})

	if err := s.Start(context.Background(), PlanAnnual); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.Cancel(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if status, plan := s.Status(); status != StatusFailed || plan != PlanAnnual {
		t.Fatalf("status = %s plan = %s, want failed/annual", status, plan)
	}
	// Give the run goroutine a beat to prove the callback never fires.
	time.Sleep(30 * time.Millisecond)
}

func TestOnlyOnePaymentAtATime(t *testing.T) {
	s := NewSimulator(time.Minute, nil)
	if err := s.Start(context.Background(), PlanMonthly); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.Start(context.Background(), PlanMonthly); err != ErrPaymentInProgress {
		t.Fatalf("second start err = %v, want ErrPaymentInProgress", err)
	}
	s.Cancel()
}

func TestUnknownPlanRejected(t *testing.T) {
	s := NewSimulator(time.Minute, nil)
	if err := s.Start(context.Background(), Plan("weekly")); err != ErrUnknownPlan {
		t.Fatalf("err = %v, want ErrUnknownPlan", err)
	}
	if status, _ := s.Status(); status != StatusIdle {
		t.Fatalf("status = %s, want idle", status)
	}
}

func TestCancelledAttemptDoesNotClobberNext(t *testing.T) {
	s := NewSimulator(time.Hour, func(context.Context, Plan, time.Time) {
		t.Error("success callback must not fire")
	})

	// Churn through cancelled attempts; their goroutines wake after the next
	// attempt has already started.
	for i := 0; i < 5; i++ {
		if err := s.Start(context.Background(), PlanMonthly); err != nil {
			t.Fatalf("start %d: %v", i, err)
		}
		if err := s.Cancel(); err != nil {
			t.Fatalf("cancel %d: %v", i, err)
		}
		if err := s.Reset(); err != nil {
			t.Fatalf("reset %d: %v", i, err)
		}
	}

	if err := s.Start(context.Background(), PlanAnnual); err != nil {
		t.Fatalf("final start: %v", err)
	}
	// Give every stale goroutine time to run its cancellation branch.
	time.Sleep(50 * time.Millisecond)
	if status, plan := s.Status(); status != StatusInProgress || plan != PlanAnnual {
		t.Fatalf("status = %s plan = %s, want in-progress/annual", status, plan)
	}
	if err := s.Cancel(); err != nil {
		t.Fatalf("cancel of live attempt: %v", err)
	}
}

func TestResetAfterFailure(t *testing.T) {
	s := NewSimulator(time.Minute, nil)
	s.Start(context.Background(), PlanMonthly)
	if err := s.Reset(); err != ErrPaymentInProgress {
		t.Fatalf("reset while running err = %v, want ErrPaymentInProgress", err)
	}
	s.Cancel()
	if err := s.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if status, _ := s.Status(); status != StatusIdle {
		t.Fatalf("status = %s, want idle", status)
	}
}
