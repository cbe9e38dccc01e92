//go:build linux

package linuxinput

import (
	"errors"
	"fmt"
	"os"
	"time"

	evdev "github.com/holoplot/go-evdev"
	"golang.org/x/sys/unix"
)

const defaultCaptureTimeout = 10 * time.Second

// CaptureNextKeyCode waits for the next key press on the given device, or on
// every physical key-capable device when devicePath is empty. It is used to
// find the name of a key before passing it as the toggle key.
func CaptureNextKeyCode(devicePath string, timeout time.Duration) (uint16, error) {
	if timeout <= 0 {
		timeout = defaultCaptureTimeout
	}

	devices, err := openCaptureDevices(devicePath)
	if err != nil {
		return 0, err
	}
	defer closeInputDevices(devices)

	codeCh := make(chan uint16, 1)
	for _, dev := range devices {
		go captureDeviceLoop(dev, codeCh)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case code := <-codeCh:
		return code, nil
	case <-timer.C:
		return 0, fmt.Errorf("timed out waiting for a key press")
	}
}

// captureDeviceLoop returns once a press is seen or the device is closed.
func captureDeviceLoop(dev *evdev.InputDevice, codeCh chan<- uint16) {
	for {
		event, err := dev.ReadOne()
		if err != nil {
			if isDeviceClosedError(err) {
				return
			}
			time.Sleep(25 * time.Millisecond)
			continue
		}
		if event == nil || event.Type != evdev.EV_KEY || event.Value != 1 {
			continue
		}
		select {
		case codeCh <- uint16(event.Code):
		default:
		}
		return
	}
}

func openCaptureDevices(devicePath string) ([]*evdev.InputDevice, error) {
	if devicePath != "" {
		src, _, err := OpenSource(devicePath)
		if err != nil {
			return nil, err
		}
		return []*evdev.InputDevice{src.dev}, nil
	}

	infos, err := ListInputDevices()
	if err != nil {
		return nil, err
	}

	devices := make([]*evdev.InputDevice, 0, len(infos))
	for _, info := range infos {
		if info.IsVirtual || !info.HasKeys {
			continue
		}
		dev, err := openInputDevice(info.Path)
		if err != nil {
			continue
		}
		devices = append(devices, dev)
	}

	if len(devices) == 0 {
		return nil, fmt.Errorf("no readable input devices with key events found")
	}
	return devices, nil
}

func closeInputDevices(devices []*evdev.InputDevice) {
	for _, dev := range devices {
		_ = dev.Close()
	}
}

func isDeviceClosedError(err error) bool {
	return errors.Is(err, unix.EBADF) || errors.Is(err, unix.ENODEV) || errors.Is(err, os.ErrClosed)
}
