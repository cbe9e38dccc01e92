//go:build linux

package linuxinput

import (
	"fmt"

	evdev "github.com/holoplot/go-evdev"
)

type eventWriter interface {
	WriteOne(event *evdev.InputEvent) error
}

// UinputTarget backs autoclicker.Target with a kernel virtual input device.
type UinputTarget struct {
	dev eventWriter
}

// NewUinputTarget creates the virtual mouse. It needs write access to
// /dev/uinput.
func NewUinputTarget() (*UinputTarget, error) {
	id := evdev.InputID{
		BusType: uint16(evdev.BUS_VIRTUAL),
		Vendor:  0x1,
		Product: 0x1,
		Version: 1,
	}
	capabilities := map[evdev.EvType][]evdev.EvCode{
		evdev.EV_KEY: {evdev.BTN_LEFT, evdev.BTN_RIGHT, evdev.BTN_MIDDLE},
	}

	dev, err := evdev.CreateDevice(VirtualDeviceName, id, capabilities)
	if err != nil {
		return nil, fmt.Errorf("failed to create virtual device: %w", err)
	}
	return &UinputTarget{dev: dev}, nil
}

func (u *UinputTarget) EmitButton(code uint16, pressed bool) error {
	var value int32
	if pressed {
		value = 1
	}
	return u.dev.WriteOne(&evdev.InputEvent{
		Type:  evdev.EV_KEY,
		Code:  evdev.EvCode(code),
		Value: value,
	})
}

func (u *UinputTarget) Commit() error {
	return u.dev.WriteOne(&evdev.InputEvent{
		Type:  evdev.EV_SYN,
		Code:  evdev.SYN_REPORT,
		Value: 0,
	})
}
