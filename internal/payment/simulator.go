// Package payment implements the simulated subscription checkout. No real
// money moves; a timer stands in for the payment provider round trip.
package payment

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

type Status string

const (
	StatusIdle       Status = "idle"
	StatusInProgress Status = "in-progress"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

type Plan string

const (
	PlanMonthly Plan = "monthly"
	PlanAnnual  Plan = "annual"
)

var (
	ErrPaymentInProgress = errors.New("payment already in progress")
	ErrNoPaymentRunning  = errors.New("no payment in progress")
	ErrUnknownPlan       = errors.New("unknown plan")
)

// Term returns the subscription length the plan buys.
func (p Plan) Term() (years, months int, err error) {
	switch p {
	case PlanMonthly:
		return 0, 1, nil
	case PlanAnnual:
		return 1, 0, nil
	default:
		return 0, 0, ErrUnknownPlan
	}
}

// Simulator runs at most one payment at a time. Start moves idle to
// in-progress; after the configured duration the payment succeeds and the
// callback fires. Cancel aborts an in-progress payment, leaving it failed.
type Simulator struct {
	duration  time.Duration
	onSuccess func(ctx context.Context, plan Plan, until time.Time)

	mu     sync.Mutex
	status Status
	plan   Plan
	cancel context.CancelFunc
	// gen identifies the current attempt; a goroutine left over from a
	// cancelled attempt must never touch a newer attempt's state.
	gen uint64
}

func NewSimulator(duration time.Duration, onSuccess func(ctx context.Context, plan Plan, until time.Time)) *Simulator {
	return &Simulator{
		duration:  duration,
		onSuccess: onSuccess,
		status:    StatusIdle,
	}
}

// Start begins a simulated payment for the given plan. Only one payment may
// run at a time.
func (s *Simulator) Start(ctx context.Context, plan Plan) error {
	years, months, err := plan.Term()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusInProgress {
		return ErrPaymentInProgress
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.status = StatusInProgress
	s.plan = plan
	s.cancel = cancel
	s.gen++

	go s.run(runCtx, s.gen, plan, years, months)
	return nil
}

func (s *Simulator) run(ctx context.Context, gen uint64, plan Plan, years, months int) {
	timer := time.NewTimer(s.duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		s.mu.Lock()
		if s.gen == gen {
			s.status = StatusFailed
			s.cancel = nil
		}
		s.mu.Unlock()
		slog.Info("Payment cancelled", "plan", plan)
	case <-timer.C:
		until := time.Now().AddDate(years, months, 0)
		s.mu.Lock()
		if s.gen != gen {
			// Stale attempt; a newer one owns the state now.
			s.mu.Unlock()
			return
		}
		s.status = StatusSucceeded
		s.cancel = nil
		s.mu.Unlock()
		if s.onSuccess != nil {
			s.onSuccess(ctx, plan, until)
		}
		slog.Info("Payment succeeded", "plan", plan, "subscription_until", until)
	}
}

// Cancel aborts the in-progress payment.
func (s *Simulator) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusInProgress || s.cancel == nil {
		return ErrNoPaymentRunning
	}
	s.cancel()
	// Mark failed here so a Status call immediately after Cancel never
	// observes in-progress; bumping gen disowns the run goroutine.
	s.status = StatusFailed
	s.cancel = nil
	s.gen++
	return nil
}

// Status reports the current state and the plan it applies to.
func (s *Simulator) Status() (Status, Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.plan
}

// Reset returns a finished simulator to idle so another attempt can start
// fresh. In-progress payments must be cancelled first.
func (s *Simulator) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusInProgress {
		return ErrPaymentInProgress
	}
	s.status = StatusIdle
	s.plan = ""
	s.gen++
	return nil
}
