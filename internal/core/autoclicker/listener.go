package autoclicker

import (
	"fmt"
	"sync/atomic"
)

type ListenerState int32

const (
	ListenerIdle ListenerState = iota
	ListenerGrabbing
	ListenerListening
	ListenerStopped
)

func (s ListenerState) String() string {
	switch s {
	case ListenerIdle:
		return "idle"
	case ListenerGrabbing:
		return "grabbing"
	case ListenerListening:
		return "listening"
	case ListenerStopped:
		return "stopped"
	default:
		return fmt.Sprintf("ListenerState(%d)", int32(s))
	}
}

// Listener owns a grabbed Source and flips a ToggleState on each press edge
// of the toggle key.
type Listener struct {
	source     Source
	toggleCode uint16
	state      *ToggleState
	logger     Logger

	phase atomic.Int32
}

func NewListener(source Source, toggleCode uint16, state *ToggleState, logger Logger) (*Listener, error) {
	if source == nil {
		return nil, fmt.Errorf("source is nil")
	}
	if state == nil {
		return nil, fmt.Errorf("toggle state is nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	return &Listener{
		source:     source,
		toggleCode: toggleCode,
		state:      state,
		logger:     logger,
	}, nil
}

func (l *Listener) State() ListenerState {
	return ListenerState(l.phase.Load())
}

// Run grabs the source and processes events until the grab or a read fails.
// It has no other exit path; the returned error wraps ErrGrab or ErrRead and
// is left to the caller to report.
func (l *Listener) Run() error {
	defer l.phase.Store(int32(ListenerStopped))

	l.phase.Store(int32(ListenerGrabbing))
	if err := l.source.Grab(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrGrab, l.source.Name(), err)
	}
	l.logger.Info("Grabbed input device", "device", l.source.Name())

	l.phase.Store(int32(ListenerListening))
	for {
		events, err := l.source.ReadEvents()
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrRead, l.source.Name(), err)
		}
		for _, event := range events {
			l.handleEvent(event)
		}
	}
}

func (l *Listener) handleEvent(event Event) {
	if event.Type != EventTypeKey || event.Code != l.toggleCode {
		return
	}
	if event.Value != KeyPressed {
		return
	}
	enabled := l.state.Toggle()
	l.logger.Info("Autoclicker toggled", "state", stateLabel(enabled))
}
