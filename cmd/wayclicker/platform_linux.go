//go:build linux

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/YanamiRei/wayclicker/internal/adapters/linuxinput"
	"github.com/YanamiRei/wayclicker/internal/adapters/waylandinput"
	"github.com/YanamiRei/wayclicker/internal/adapters/x11input"
	"github.com/YanamiRei/wayclicker/internal/core/autoclicker"

	"golang.org/x/sys/unix"
)

const uinputPath = "/dev/uinput"

func parseToggleKey(value string) (uint16, error) {
	return linuxinput.ParseKey(value)
}

func parseButton(value string) (uint16, error) {
	return linuxinput.ParseButton(value)
}

func parseBackendChoice(value string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(value))
	if backend == "" {
		backend = "auto"
	}
	switch backend {
	case "auto", "uinput", "wayland", "x11":
		return backend, nil
	default:
		return "", fmt.Errorf("invalid --backend %q (expected auto|uinput|wayland|x11)", value)
	}
}

func formatCodeName(code uint16) string {
	return linuxinput.FormatCodeName(code)
}

func listInputDevices(out io.Writer) error {
	devices, err := linuxinput.ListInputDevices()
	if err != nil {
		return err
	}
	for _, dev := range devices {
		virtualTag := "physical"
		if dev.IsVirtual {
			virtualTag = "virtual"
		}
		keyboardTag := "other"
		if dev.IsKeyboard {
			keyboardTag = "keyboard"
		}
		fmt.Fprintf(out, "%s: %s [%s, %s]\n", dev.Path, dev.Name, virtualTag, keyboardTag)
	}
	return nil
}

func identifyKey(devicePath string, out io.Writer) error {
	fmt.Fprintln(out, "Press the key you want to use as the toggle key...")
	code, err := linuxinput.CaptureNextKeyCode(devicePath, 0)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s (code %d)\n", formatCodeName(code), code)
	return nil
}

func permissionDeniedHint() string {
	return "Permission denied opening input devices. Run as root or add udev rules for /dev/input and /dev/uinput."
}

func uinputWritable() bool {
	return unix.Access(uinputPath, unix.W_OK) == nil
}

// resolveBackend picks a concrete backend for "auto": uinput when the device
// node is writable, otherwise whatever display server the session exposes.
func resolveBackend(configured string, getenv func(string) string, canUseUinput func() bool) string {
	if configured != "auto" {
		return configured
	}
	if canUseUinput() {
		return "uinput"
	}
	if strings.TrimSpace(getenv("WAYLAND_DISPLAY")) != "" {
		return "wayland"
	}
	if strings.TrimSpace(getenv("DISPLAY")) != "" {
		return "x11"
	}
	return "uinput"
}

func openTarget(ctx context.Context, backend string) (autoclicker.Target, error) {
	switch backend {
	case "wayland":
		return waylandinput.NewTarget(ctx, "")
	case "x11":
		return x11input.NewTarget()
	default:
		return linuxinput.NewUinputTarget()
	}
}

// openToggleSource returns nil without error when no keyboard qualifies;
// clicking then stays disabled for the run.
func openToggleSource(devicePath string, logger *slog.Logger) (autoclicker.Source, error) {
	if devicePath != "" {
		src, info, err := linuxinput.OpenSource(devicePath)
		if err != nil {
			return nil, err
		}
		logger.Info("Using input device", "path", info.Path, "name", info.Name)
		return src, nil
	}

	src, info, ok, err := linuxinput.Discover(linuxinput.DefaultKeyboardPolicy())
	if err != nil {
		logger.Warn("Failed to enumerate input devices; toggle disabled", "err", err)
		return nil, nil
	}
	if !ok {
		logger.Warn("No physical keyboard device found; toggle disabled. Use --device to pick one")
		return nil, nil
	}
	logger.Info("Found input device", "path", info.Path, "name", info.Name)
	return src, nil
}

// runListener blocks for the listener's lifetime. A failure only disables
// the toggle; clicking keeps its last state.
func runListener(listener *autoclicker.Listener, logger *slog.Logger) {
	if err := listener.Run(); err != nil {
		logger.Error("Key listener stopped; toggle disabled for this run", "err", err)
	}
}

func runClicker(ctx context.Context, cfg config, logger *slog.Logger) error {
	backend := resolveBackend(cfg.backend, os.Getenv, uinputWritable)
	target, err := openTarget(ctx, backend)
	if err != nil {
		return err
	}

	state := &autoclicker.ToggleState{}
	emitter, err := autoclicker.NewEmitter(
		autoclicker.Config{
			ButtonCode: cfg.buttonCode,
			Interval:   cfg.interval,
			Hold:       cfg.hold,
		},
		state,
		autoclicker.NewSharedTarget(target),
		logger,
	)
	if err != nil {
		return err
	}

	source, err := openToggleSource(cfg.devicePath, logger)
	if err != nil {
		return err
	}
	if source != nil {
		listener, err := autoclicker.NewListener(source, cfg.toggleCode, state, logger)
		if err != nil {
			return err
		}
		go runListener(listener, logger)
	}

	logger.Info("Backend", "name", backend)
	logger.Info("Toggle", "name", formatCodeName(cfg.toggleCode), "code", cfg.toggleCode)
	logger.Info("Button", "name", formatCodeName(cfg.buttonCode), "code", cfg.buttonCode)
	logger.Info("Timing", "interval", cfg.interval, "hold", cfg.hold)
	logger.Info("Initial state disabled (press toggle to enable/disable). Press Ctrl+C to stop")

	emitter.Run(ctx)
	return nil
}
