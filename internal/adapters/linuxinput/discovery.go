//go:build linux

package linuxinput

import (
	"fmt"
	"os"
	"sort"
	"strings"

	evdev "github.com/holoplot/go-evdev"
)

// VirtualDeviceName is the name of the uinput device this program creates.
const VirtualDeviceName = "Wayclicker Virtual Mouse"

type DeviceInfo struct {
	Path       string
	Name       string
	HasKeys    bool
	IsVirtual  bool
	IsKeyboard bool
}

// KeyboardPolicy decides which enumerated device is used as the toggle source.
type KeyboardPolicy struct {
	Tokens  []string
	Exclude []string
}

func DefaultKeyboardPolicy() KeyboardPolicy {
	return KeyboardPolicy{
		Tokens:  []string{"keyboard", "kbd"},
		Exclude: []string{VirtualDeviceName},
	}
}

func (p KeyboardPolicy) Match(info DeviceInfo) bool {
	if !info.HasKeys {
		return false
	}
	lower := strings.ToLower(info.Name)
	for _, name := range p.Exclude {
		if name != "" && strings.Contains(lower, strings.ToLower(name)) {
			return false
		}
	}
	for _, token := range p.Tokens {
		if strings.Contains(lower, strings.ToLower(token)) {
			return true
		}
	}
	return false
}

// Select returns the first device in order that matches the policy.
func (p KeyboardPolicy) Select(devices []DeviceInfo) (DeviceInfo, bool) {
	for _, info := range devices {
		if p.Match(info) {
			return info, true
		}
	}
	return DeviceInfo{}, false
}

func ListInputDevices() ([]DeviceInfo, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, err
	}

	sort.Slice(paths, func(i, j int) bool {
		return paths[i].Path < paths[j].Path
	})

	policy := DefaultKeyboardPolicy()
	devices := make([]DeviceInfo, 0, len(paths))
	for _, path := range paths {
		dev, err := openInputDevice(path.Path)
		if err != nil {
			continue
		}
		info := describeDevice(dev, path.Name)
		_ = dev.Close()

		info.IsKeyboard = policy.Match(info)
		devices = append(devices, info)
	}

	return devices, nil
}

// Discover opens the first device accepted by policy. The bool result is
// false when no device qualifies.
func Discover(policy KeyboardPolicy) (*EvdevSource, DeviceInfo, bool, error) {
	devices, err := ListInputDevices()
	if err != nil {
		return nil, DeviceInfo{}, false, err
	}

	var opened *evdev.InputDevice
	info, ok := selectOpenable(policy, devices, func(candidate DeviceInfo) bool {
		dev, err := openInputDevice(candidate.Path)
		if err != nil {
			return false
		}
		opened = dev
		return true
	})
	if !ok {
		return nil, DeviceInfo{}, false, nil
	}
	return newEvdevSource(opened, info.Name), info, true, nil
}

// selectOpenable asks policy for a pick and drops picks that fail to open
// until one opens or nothing qualifies.
func selectOpenable(policy KeyboardPolicy, devices []DeviceInfo, open func(DeviceInfo) bool) (DeviceInfo, bool) {
	remaining := append([]DeviceInfo(nil), devices...)
	for {
		pick, ok := policy.Select(remaining)
		if !ok {
			return DeviceInfo{}, false
		}
		if open(pick) {
			return pick, true
		}
		remaining = withoutPath(remaining, pick.Path)
	}
}

func withoutPath(devices []DeviceInfo, path string) []DeviceInfo {
	out := devices[:0]
	for _, info := range devices {
		if info.Path != path {
			out = append(out, info)
		}
	}
	return out
}

// OpenSource opens an explicitly configured device path, bypassing the
// keyboard heuristic.
func OpenSource(devicePath string) (*EvdevSource, DeviceInfo, error) {
	dev, err := openInputDevice(devicePath)
	if err != nil {
		return nil, DeviceInfo{}, err
	}
	info := describeDevice(dev, devicePath)
	if !info.HasKeys {
		_ = dev.Close()
		return nil, DeviceInfo{}, fmt.Errorf("%s does not expose key events", devicePath)
	}
	return newEvdevSource(dev, info.Name), info, nil
}

func openInputDevice(path string) (*evdev.InputDevice, error) {
	return evdev.OpenWithFlags(path, os.O_RDONLY)
}

func describeDevice(dev *evdev.InputDevice, fallbackName string) DeviceInfo {
	name := fallbackName
	if actualName, err := dev.Name(); err == nil && actualName != "" {
		name = actualName
	}
	return DeviceInfo{
		Path:      dev.Path(),
		Name:      name,
		HasKeys:   len(dev.CapableEvents(evdev.EV_KEY)) > 0,
		IsVirtual: deviceIsVirtual(dev, name),
	}
}

func deviceIsVirtual(device *evdev.InputDevice, name string) bool {
	id, err := device.InputID()
	if err == nil && id.BusType == uint16(evdev.BUS_VIRTUAL) {
		return true
	}
	lower := strings.ToLower(name)
	for _, token := range []string{"virtual", "uinput", "ydotool", "wayclicker"} {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}
