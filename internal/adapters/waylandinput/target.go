//go:build linux

package waylandinput

import (
	"context"
	"fmt"
	"time"

	"github.com/bnema/wayland-virtual-input-go/virtual_pointer"
)

type pointer interface {
	Button(t time.Time, button uint32, state virtual_pointer.ButtonState) error
	Frame() error
}

// Target backs autoclicker.Target with a wlr virtual pointer. Each request is
// written to the compositor socket as it is made, so Frame is the flush.
type Target struct {
	manager *virtual_pointer.VirtualPointerManager
	ptr     pointer
	now     func() time.Time
}

// NewTarget checks the compositor for the virtual pointer global and creates
// a pointer. displayName may be empty to use WAYLAND_DISPLAY.
func NewTarget(ctx context.Context, displayName string) (*Target, error) {
	globals, err := ListGlobals(displayName)
	if err != nil {
		return nil, err
	}
	if err := RequireGlobal(globals, VirtualPointerGlobal); err != nil {
		return nil, err
	}

	manager, err := virtual_pointer.NewVirtualPointerManager(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create virtual pointer manager: %w", err)
	}
	ptr, err := manager.CreatePointer()
	if err != nil {
		_ = manager.Close()
		return nil, fmt.Errorf("failed to create virtual pointer: %w", err)
	}
	return &Target{manager: manager, ptr: ptr, now: time.Now}, nil
}

func (t *Target) EmitButton(code uint16, pressed bool) error {
	var state virtual_pointer.ButtonState
	if pressed {
		state = virtual_pointer.ButtonStatePressed
	} else {
		state = virtual_pointer.ButtonStateReleased
	}
	if err := t.ptr.Button(t.now(), uint32(code), state); err != nil {
		return fmt.Errorf("virtual pointer button: %w", err)
	}
	return nil
}

func (t *Target) Commit() error {
	if err := t.ptr.Frame(); err != nil {
		return fmt.Errorf("virtual pointer frame: %w", err)
	}
	return nil
}
