package autoclicker

import (
	"errors"
	"time"
)

const (
	EventTypeSyn uint16 = 0x00
	EventTypeKey uint16 = 0x01

	SynReportCode uint16 = 0

	KeyReleased int32 = 0
	KeyPressed  int32 = 1
	KeyRepeated int32 = 2

	LeftButtonCode   uint16 = 0x110
	RightButtonCode  uint16 = 0x111
	MiddleButtonCode uint16 = 0x112
)

const (
	DefaultInterval = 100 * time.Millisecond
	DefaultHold     = 10 * time.Millisecond
	IdleQuantum     = 50 * time.Millisecond
)

var (
	ErrGrab = errors.New("exclusive grab failed")
	ErrRead = errors.New("input read failed")
)

type Event struct {
	Type  uint16
	Code  uint16
	Value int32
}

// Target receives synthetic button state. Emitted state is only guaranteed
// to reach the receiving system after Commit.
type Target interface {
	EmitButton(code uint16, pressed bool) error
	Commit() error
}

// Source is an input device the listener can take exclusively and read from.
type Source interface {
	Name() string
	Grab() error
	ReadEvents() ([]Event, error)
}

type Config struct {
	ButtonCode uint16
	Interval   time.Duration
	Hold       time.Duration
}

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
