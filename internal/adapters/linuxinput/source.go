//go:build linux

package linuxinput

import (
	"github.com/YanamiRei/wayclicker/internal/core/autoclicker"

	evdev "github.com/holoplot/go-evdev"
)

const readBatchSize = 64

// EvdevSource adapts an opened input device to autoclicker.Source. Reads
// block until the kernel delivers events.
type EvdevSource struct {
	dev  *evdev.InputDevice
	name string
}

func newEvdevSource(dev *evdev.InputDevice, name string) *EvdevSource {
	return &EvdevSource{dev: dev, name: name}
}

func (s *EvdevSource) Name() string {
	return s.name
}

func (s *EvdevSource) Path() string {
	return s.dev.Path()
}

func (s *EvdevSource) Grab() error {
	return s.dev.Grab()
}

func (s *EvdevSource) ReadEvents() ([]autoclicker.Event, error) {
	raw, err := s.dev.ReadSlice(readBatchSize)
	if err != nil {
		return nil, err
	}
	return convertEvents(raw), nil
}

func convertEvents(raw []evdev.InputEvent) []autoclicker.Event {
	events := make([]autoclicker.Event, 0, len(raw))
	for _, event := range raw {
		events = append(events, autoclicker.Event{
			Type:  uint16(event.Type),
			Code:  uint16(event.Code),
			Value: event.Value,
		})
	}
	return events
}
