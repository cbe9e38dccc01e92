package autoclicker

import "sync/atomic"

// ToggleState is the on/off flag shared between the key listener and the
// emission loop. The zero value is disabled.
type ToggleState struct {
	enabled atomic.Bool
}

func (s *ToggleState) Enabled() bool {
	return s.enabled.Load()
}

// Toggle inverts the flag and returns the new value.
func (s *ToggleState) Toggle() bool {
	for {
		old := s.enabled.Load()
		if s.enabled.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

func stateLabel(enabled bool) string {
	if enabled {
		return "ON"
	}
	return "OFF"
}
