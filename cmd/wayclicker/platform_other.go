//go:build !linux

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

func parseToggleKey(string) (uint16, error) {
	return 0, fmt.Errorf("unsupported platform")
}

func parseButton(string) (uint16, error) {
	return 0, fmt.Errorf("unsupported platform")
}

func parseBackendChoice(value string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(value))
	if backend == "" || backend == "auto" {
		return "auto", nil
	}
	return "", fmt.Errorf("invalid --backend %q (unsupported platform)", value)
}

func listInputDevices(io.Writer) error {
	return fmt.Errorf("input device listing is not supported on this platform")
}

func identifyKey(string, io.Writer) error {
	return fmt.Errorf("key identification is not supported on this platform")
}

func permissionDeniedHint() string {
	return "Permission denied opening input backend."
}

func runClicker(context.Context, config, *slog.Logger) error {
	return fmt.Errorf("wayclicker only runs on Linux")
}
