//go:build linux

package waylandinput

import (
	"errors"
	"fmt"

	"github.com/rajveermalviya/go-wayland/wayland/client"
)

// VirtualPointerGlobal is the registry interface a compositor must advertise
// for the wayland backend to work.
const VirtualPointerGlobal = "zwlr_virtual_pointer_manager_v1"

var ErrMissingGlobal = errors.New("compositor does not advertise required global")

// ListGlobals connects to the compositor, performs one registry round-trip and
// returns the advertised interface names.
func ListGlobals(displayName string) ([]string, error) {
	display, err := client.Connect(displayName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Wayland display: %w", err)
	}
	defer display.Context().Close()

	registry, err := display.GetRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to get Wayland registry: %w", err)
	}

	var globals []string
	registry.SetGlobalHandler(func(e client.RegistryGlobalEvent) {
		globals = append(globals, e.Interface)
	})

	if err := roundTrip(display); err != nil {
		return nil, err
	}
	return globals, nil
}

func roundTrip(display *client.Display) error {
	callback, err := display.Sync()
	if err != nil {
		return fmt.Errorf("failed to sync with compositor: %w", err)
	}

	done := false
	callback.SetDoneHandler(func(client.CallbackDoneEvent) {
		done = true
	})
	for !done {
		if err := display.Context().Dispatch(); err != nil {
			return fmt.Errorf("failed to sync with compositor: %w", err)
		}
	}
	return nil
}

// RequireGlobal returns ErrMissingGlobal naming want when it is absent.
func RequireGlobal(globals []string, want string) error {
	for _, name := range globals {
		if name == want {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrMissingGlobal, want)
}
