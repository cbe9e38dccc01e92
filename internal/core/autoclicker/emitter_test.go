package autoclicker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(entry string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
}

func (j *journal) snapshot() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]string, len(j.entries))
	copy(out, j.entries)
	return out
}

type recordingTarget struct {
	log       *journal
	emitErr   error
	commitErr error
}

func (r *recordingTarget) EmitButton(code uint16, pressed bool) error {
	if pressed {
		r.log.add(fmt.Sprintf("press %#x", code))
	} else {
		r.log.add(fmt.Sprintf("release %#x", code))
	}
	return r.emitErr
}

func (r *recordingTarget) Commit() error {
	r.log.add("commit")
	return r.commitErr
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

type countingLogger struct {
	noopLogger
	mu    sync.Mutex
	warns int
}

func (c *countingLogger) Warn(string, ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warns++
}

// scriptedSleeper records every sleep and stops the loop after limit sleeps.
// onSleep, if set, runs before the sleep at the given index is recorded.
type scriptedSleeper struct {
	log     *journal
	limit   int
	calls   int
	onSleep func(index int)
}

func (s *scriptedSleeper) sleep(_ context.Context, d time.Duration) bool {
	if s.onSleep != nil {
		s.onSleep(s.calls)
	}
	s.calls++
	s.log.add(fmt.Sprintf("sleep %s", d))
	return s.calls < s.limit
}

func newTestEmitter(t *testing.T, cfg Config, state *ToggleState, target Target, sleeper *scriptedSleeper) *Emitter {
	t.Helper()
	emitter, err := NewEmitter(cfg, state, NewSharedTarget(target), noopLogger{})
	if err != nil {
		t.Fatalf("NewEmitter() error = %v", err)
	}
	emitter.sleep = sleeper.sleep
	return emitter
}

func enabledState() *ToggleState {
	state := &ToggleState{}
	state.Toggle()
	return state
}

func assertEntries(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d entries %q, want %d entries %q", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d = %q, want %q (all: %q)", i, got[i], want[i], got)
		}
	}
}

func TestEnabledCycleEmitsPressCommitHoldReleaseCommitRest(t *testing.T) {
	log := &journal{}
	sleeper := &scriptedSleeper{log: log, limit: 2}
	cfg := Config{ButtonCode: LeftButtonCode, Interval: 100 * time.Millisecond, Hold: 10 * time.Millisecond}

	newTestEmitter(t, cfg, enabledState(), &recordingTarget{log: log}, sleeper).Run(context.Background())

	assertEntries(t, log.snapshot(), []string{
		"press 0x110",
		"commit",
		"sleep 10ms",
		"release 0x110",
		"commit",
		"sleep 90ms",
	})
}

func TestHoldIsIndependentOfInterval(t *testing.T) {
	for _, interval := range []time.Duration{5 * time.Millisecond, 100 * time.Millisecond, time.Second} {
		log := &journal{}
		sleeper := &scriptedSleeper{log: log, limit: 1}
		cfg := Config{ButtonCode: RightButtonCode, Interval: interval, Hold: DefaultHold}

		newTestEmitter(t, cfg, enabledState(), &recordingTarget{log: log}, sleeper).Run(context.Background())

		entries := log.snapshot()
		if entries[len(entries)-1] != "sleep 10ms" {
			t.Fatalf("interval %s: hold sleep = %q, want sleep 10ms", interval, entries[len(entries)-1])
		}
	}
}

func TestShortIntervalRunsCyclesBackToBack(t *testing.T) {
	log := &journal{}
	sleeper := &scriptedSleeper{log: log, limit: 4}
	cfg := Config{ButtonCode: LeftButtonCode, Interval: 5 * time.Millisecond, Hold: 10 * time.Millisecond}

	newTestEmitter(t, cfg, enabledState(), &recordingTarget{log: log}, sleeper).Run(context.Background())

	assertEntries(t, log.snapshot(), []string{
		"press 0x110", "commit", "sleep 10ms", "release 0x110", "commit", "sleep 0s",
		"press 0x110", "commit", "sleep 10ms", "release 0x110", "commit", "sleep 0s",
	})
}

func TestRestDuration(t *testing.T) {
	tests := []struct {
		interval time.Duration
		hold     time.Duration
		want     time.Duration
	}{
		{interval: 100 * time.Millisecond, hold: 10 * time.Millisecond, want: 90 * time.Millisecond},
		{interval: 10 * time.Millisecond, hold: 10 * time.Millisecond, want: 0},
		{interval: 5 * time.Millisecond, hold: 10 * time.Millisecond, want: 0},
		{interval: 50 * time.Millisecond, hold: 0, want: 50 * time.Millisecond},
	}
	for _, tc := range tests {
		if got := RestDuration(tc.interval, tc.hold); got != tc.want {
			t.Fatalf("RestDuration(%s, %s) = %s, want %s", tc.interval, tc.hold, got, tc.want)
		}
	}
}

func TestDisabledLoopOnlyIdles(t *testing.T) {
	log := &journal{}
	sleeper := &scriptedSleeper{log: log, limit: 5}
	cfg := Config{ButtonCode: LeftButtonCode, Interval: DefaultInterval, Hold: DefaultHold}

	newTestEmitter(t, cfg, &ToggleState{}, &recordingTarget{log: log}, sleeper).Run(context.Background())

	for _, entry := range log.snapshot() {
		if entry != "sleep 50ms" {
			t.Fatalf("unexpected entry while disabled: %q", entry)
		}
	}
}

func TestToggleOffMidCycleCompletesRelease(t *testing.T) {
	log := &journal{}
	state := enabledState()
	sleeper := &scriptedSleeper{log: log, limit: 3}
	sleeper.onSleep = func(index int) {
		if index == 0 {
			state.Toggle()
		}
	}
	cfg := Config{ButtonCode: MiddleButtonCode, Interval: DefaultInterval, Hold: DefaultHold}

	newTestEmitter(t, cfg, state, &recordingTarget{log: log}, sleeper).Run(context.Background())

	assertEntries(t, log.snapshot(), []string{
		"press 0x112", "commit", "sleep 10ms", "release 0x112", "commit", "sleep 90ms",
		"sleep 50ms",
	})
}

func TestClicksOnlyBetweenTogglePresses(t *testing.T) {
	log := &journal{}
	state := &ToggleState{}
	sleeper := &scriptedSleeper{log: log, limit: 8}
	sleeper.onSleep = func(index int) {
		switch index {
		case 1, 5:
			state.Toggle()
		}
	}
	cfg := Config{ButtonCode: LeftButtonCode, Interval: DefaultInterval, Hold: DefaultHold}

	newTestEmitter(t, cfg, state, &recordingTarget{log: log}, sleeper).Run(context.Background())

	assertEntries(t, log.snapshot(), []string{
		"sleep 50ms",
		"sleep 50ms",
		"press 0x110", "commit", "sleep 10ms", "release 0x110", "commit", "sleep 90ms",
		"press 0x110", "commit", "sleep 10ms", "release 0x110", "commit", "sleep 90ms",
		"sleep 50ms",
		"sleep 50ms",
	})
}

func TestEmissionFailuresAreSwallowed(t *testing.T) {
	log := &journal{}
	target := &recordingTarget{log: log, emitErr: errors.New("device gone"), commitErr: errors.New("device gone")}
	sleeper := &scriptedSleeper{log: log, limit: 4}
	logger := &countingLogger{}
	cfg := Config{ButtonCode: LeftButtonCode, Interval: DefaultInterval, Hold: DefaultHold}

	emitter, err := NewEmitter(cfg, enabledState(), NewSharedTarget(target), logger)
	if err != nil {
		t.Fatalf("NewEmitter() error = %v", err)
	}
	emitter.sleep = sleeper.sleep
	emitter.Run(context.Background())

	if sleeper.calls != 4 {
		t.Fatalf("loop stopped after %d sleeps, want 4", sleeper.calls)
	}
	if logger.warns != 4 {
		t.Fatalf("logged %d warnings, want 4", logger.warns)
	}
	presses := 0
	for _, entry := range log.snapshot() {
		if entry == "press 0x110" {
			presses++
		}
	}
	if presses != 2 {
		t.Fatalf("presses = %d, want 2", presses)
	}
}

func TestSharedTargetCommitsEvenWhenEmitFails(t *testing.T) {
	log := &journal{}
	shared := NewSharedTarget(&recordingTarget{log: log, emitErr: errors.New("boom")})

	if err := shared.Apply(LeftButtonCode, true); err == nil {
		t.Fatalf("expected Apply() error")
	}
	assertEntries(t, log.snapshot(), []string{"press 0x110", "commit"})
}

func TestSharedTargetSerializesConcurrentEmitters(t *testing.T) {
	log := &journal{}
	shared := NewSharedTarget(&recordingTarget{log: log})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(pressed bool) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = shared.Apply(LeftButtonCode, pressed)
			}
		}(i%2 == 0)
	}
	wg.Wait()

	entries := log.snapshot()
	if len(entries) != 8*50*2 {
		t.Fatalf("got %d entries, want %d", len(entries), 8*50*2)
	}
	for i := 0; i < len(entries); i += 2 {
		if entries[i] == "commit" || entries[i+1] != "commit" {
			t.Fatalf("emission at %d not followed by its commit: %q, %q", i, entries[i], entries[i+1])
		}
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	cfg := Config{ButtonCode: LeftButtonCode, Interval: DefaultInterval, Hold: DefaultHold}
	emitter, err := NewEmitter(cfg, &ToggleState{}, NewSharedTarget(&recordingTarget{log: &journal{}}), noopLogger{})
	if err != nil {
		t.Fatalf("NewEmitter() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		emitter.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("Run did not return after cancel")
	}
}

func TestEnabledCycleTakesAtLeastInterval(t *testing.T) {
	log := &journal{}
	cfg := Config{ButtonCode: LeftButtonCode, Interval: 100 * time.Millisecond, Hold: 10 * time.Millisecond}
	emitter, err := NewEmitter(cfg, enabledState(), NewSharedTarget(&recordingTarget{log: log}), noopLogger{})
	if err != nil {
		t.Fatalf("NewEmitter() error = %v", err)
	}

	start := time.Now()
	if !emitter.clickOnce(context.Background()) {
		t.Fatalf("clickOnce() returned false")
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Fatalf("click cycle took %s, want >= 100ms", elapsed)
	}
	assertEntries(t, log.snapshot(), []string{"press 0x110", "commit", "release 0x110", "commit"})
}

func TestNewEmitterRejectsInvalidConfig(t *testing.T) {
	shared := NewSharedTarget(&recordingTarget{log: &journal{}})
	if _, err := NewEmitter(Config{Interval: 0, Hold: DefaultHold}, &ToggleState{}, shared, noopLogger{}); err == nil {
		t.Fatalf("expected error for zero interval")
	}
	if _, err := NewEmitter(Config{Interval: DefaultInterval, Hold: -time.Millisecond}, &ToggleState{}, shared, noopLogger{}); err == nil {
		t.Fatalf("expected error for negative hold")
	}
}
