package linuxinput

import (
	"fmt"
	"strconv"
	"strings"

	evdev "github.com/holoplot/go-evdev"
)

const (
	CodeBTNLeft   uint16 = uint16(evdev.BTN_LEFT)
	CodeBTNRight  uint16 = uint16(evdev.BTN_RIGHT)
	CodeBTNMiddle uint16 = uint16(evdev.BTN_MIDDLE)
)

var keyAliases = map[string]string{
	"ESCAPE":  "KEY_ESC",
	"SHIFT":   "KEY_LEFTSHIFT",
	"CTRL":    "KEY_LEFTCTRL",
	"CONTROL": "KEY_LEFTCTRL",
	"ALT":     "KEY_LEFTALT",
	"SUPER":   "KEY_LEFTMETA",
	"RETURN":  "KEY_ENTER",
}

var mouseButtons = map[string]uint16{
	"left":   CodeBTNLeft,
	"right":  CodeBTNRight,
	"middle": CodeBTNMiddle,
}

// ParseKey resolves a key or button name such as F6, x, KEY_F8, BTN_SIDE or
// a numeric code.
func ParseKey(value string) (uint16, error) {
	raw := strings.ToUpper(strings.TrimSpace(value))
	if raw == "" {
		return 0, fmt.Errorf("toggle key is empty")
	}
	if alias, ok := keyAliases[raw]; ok {
		raw = alias
	}
	if code, ok := evdev.KEYFromString[raw]; ok {
		return uint16(code), nil
	}
	if !strings.HasPrefix(raw, "KEY_") && !strings.HasPrefix(raw, "BTN_") {
		if code, ok := evdev.KEYFromString["KEY_"+raw]; ok {
			return uint16(code), nil
		}
	}

	parsed, err := strconv.ParseInt(raw, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid toggle key %q: use names like F6, X, KEY_F8, BTN_SIDE or a numeric code", value)
	}
	if parsed < 0 || parsed > 0xFFFF {
		return 0, fmt.Errorf("toggle key code out of range: %d", parsed)
	}
	return uint16(parsed), nil
}

func ParseButton(value string) (uint16, error) {
	if code, ok := mouseButtons[strings.ToLower(strings.TrimSpace(value))]; ok {
		return code, nil
	}
	return 0, fmt.Errorf("invalid mouse button %q: use 'left', 'right', or 'middle'", value)
}

func FormatCodeName(code uint16) string {
	name := evdev.CodeName(evdev.EV_KEY, evdev.EvCode(code))
	if name != "" {
		return name
	}
	return strconv.Itoa(int(code))
}
