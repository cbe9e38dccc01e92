package autoclicker

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// SharedTarget serializes emit+commit pairs so a press is always followed by
// its commit before any other emission reaches the target.
type SharedTarget struct {
	mu     sync.Mutex
	target Target
}

func NewSharedTarget(target Target) *SharedTarget {
	return &SharedTarget{target: target}
}

// Apply emits one button transition and commits it. Both steps are attempted;
// the first error is returned.
func (s *SharedTarget) Apply(code uint16, pressed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	emitErr := s.target.EmitButton(code, pressed)
	commitErr := s.target.Commit()
	if emitErr != nil {
		return fmt.Errorf("emit button %d pressed=%t: %w", code, pressed, emitErr)
	}
	if commitErr != nil {
		return fmt.Errorf("commit button %d pressed=%t: %w", code, pressed, commitErr)
	}
	return nil
}

type sleepFunc func(ctx context.Context, d time.Duration) bool

// Emitter drives click cycles on a target while the toggle state is enabled.
type Emitter struct {
	cfg    Config
	state  *ToggleState
	target *SharedTarget
	logger Logger
	sleep  sleepFunc

	clicks  uint64
	running bool
}

func NewEmitter(cfg Config, state *ToggleState, target *SharedTarget, logger Logger) (*Emitter, error) {
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("interval must be > 0")
	}
	if cfg.Hold < 0 {
		return nil, fmt.Errorf("hold duration must be >= 0")
	}
	if state == nil {
		return nil, fmt.Errorf("toggle state is nil")
	}
	if target == nil {
		return nil, fmt.Errorf("target is nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	return &Emitter{
		cfg:    cfg,
		state:  state,
		target: target,
		logger: logger,
		sleep:  sleepWithContext,
	}, nil
}

// Run blocks until ctx is cancelled. Cancellation is only observed while
// sleeping, so no compensating release is sent if it lands mid-click.
func (e *Emitter) Run(ctx context.Context) {
	for {
		if !e.step(ctx) {
			return
		}
	}
}

func (e *Emitter) step(ctx context.Context) bool {
	if !e.state.Enabled() {
		if e.running {
			e.logger.Debug("Click run finished", "clicks", e.clicks)
			e.running = false
			e.clicks = 0
		}
		return e.sleep(ctx, IdleQuantum)
	}
	e.running = true
	return e.clickOnce(ctx)
}

func (e *Emitter) clickOnce(ctx context.Context) bool {
	if err := e.target.Apply(e.cfg.ButtonCode, true); err != nil {
		e.logger.Warn("Press failed", "err", err)
	}
	if !e.sleep(ctx, e.cfg.Hold) {
		return false
	}
	if err := e.target.Apply(e.cfg.ButtonCode, false); err != nil {
		e.logger.Warn("Release failed", "err", err)
	}
	e.clicks++
	return e.sleep(ctx, RestDuration(e.cfg.Interval, e.cfg.Hold))
}

// RestDuration is the pause after a release: interval minus hold, floored
// at zero.
func RestDuration(interval, hold time.Duration) time.Duration {
	if rest := interval - hold; rest > 0 {
		return rest
	}
	return 0
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
