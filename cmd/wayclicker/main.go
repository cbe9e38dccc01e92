package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/YanamiRei/wayclicker/internal/core/autoclicker"
)

type config struct {
	interval    time.Duration
	hold        time.Duration
	toggleCode  uint16
	buttonCode  uint16
	toggleRaw   string
	buttonRaw   string
	backend     string
	devicePath  string
	configPath  string
	listDevices bool
	identifyKey bool
	logLevel    slog.Level
	logFormat   string
}

func newSlogLogger(level slog.Level, format string, out io.Writer) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text", "console":
		return slog.New(slog.NewTextHandler(out, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(out, opts)), nil
	default:
		return nil, fmt.Errorf("invalid --log-format %q (expected text|json)", format)
	}
}

func parseLogLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warning", "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid --log-level %q (expected debug|info|warning|error)", value)
	}
}

func parseConfig(args []string, stderr io.Writer) (config, error) {
	var cfg config
	flags := flag.NewFlagSet("wayclicker", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var (
		intervalMS  int
		holdMS      int
		logLevelRaw string
	)

	defaultIntervalMS := int(autoclicker.DefaultInterval / time.Millisecond)
	defaultHoldMS := int(autoclicker.DefaultHold / time.Millisecond)

	flags.IntVar(&intervalMS, "interval", defaultIntervalMS, "Interval between clicks in milliseconds.")
	flags.IntVar(&intervalMS, "i", defaultIntervalMS, "Shorthand for --interval.")
	flags.StringVar(&cfg.toggleRaw, "toggle-key", "F6", "Key that toggles clicking on/off. Example: F6, X, KEY_F8, BTN_SIDE.")
	flags.StringVar(&cfg.toggleRaw, "t", "F6", "Shorthand for --toggle-key.")
	flags.StringVar(&cfg.buttonRaw, "button", "left", "Mouse button to click: left, right or middle.")
	flags.StringVar(&cfg.buttonRaw, "b", "left", "Shorthand for --button.")
	flags.IntVar(&holdMS, "hold-ms", defaultHoldMS, "How long each synthetic click stays down in ms.")
	flags.StringVar(&cfg.backend, "backend", "auto", "Click backend: auto|uinput|wayland|x11.")
	flags.StringVar(&cfg.devicePath, "device", "", "Keyboard event device to listen on, e.g. /dev/input/event4. Auto-detected if omitted.")
	flags.StringVar(&cfg.configPath, "config", "", "TOML config file. Defaults to $XDG_CONFIG_HOME/wayclicker/config.toml when present.")
	flags.BoolVar(&cfg.listDevices, "list-devices", false, "Print available input devices and exit.")
	flags.BoolVar(&cfg.identifyKey, "identify-key", false, "Wait for the next key press, print its name and exit.")
	flags.StringVar(&logLevelRaw, "log-level", "info", "Log verbosity: debug, info, warning, error.")
	flags.StringVar(&cfg.logFormat, "log-format", "text", "Log format: text or json.")

	if err := flags.Parse(args); err != nil {
		return cfg, err
	}
	if flags.NArg() > 0 {
		return cfg, fmt.Errorf("unexpected arguments: %s", strings.Join(flags.Args(), " "))
	}

	explicit := make(map[string]bool)
	flags.Visit(func(f *flag.Flag) {
		explicit[f.Name] = true
	})

	file, err := loadFileConfig(cfg.configPath)
	if err != nil {
		return cfg, err
	}
	if file != nil {
		file.apply(explicit, &intervalMS, &holdMS, &logLevelRaw, &cfg)
	}

	if intervalMS <= 0 {
		return cfg, fmt.Errorf("--interval must be > 0")
	}
	if holdMS < 0 {
		return cfg, fmt.Errorf("--hold-ms must be >= 0")
	}
	cfg.interval = time.Duration(intervalMS) * time.Millisecond
	cfg.hold = time.Duration(holdMS) * time.Millisecond

	toggleCode, err := parseToggleKey(cfg.toggleRaw)
	if err != nil {
		return cfg, err
	}
	buttonCode, err := parseButton(cfg.buttonRaw)
	if err != nil {
		return cfg, err
	}
	backend, err := parseBackendChoice(cfg.backend)
	if err != nil {
		return cfg, err
	}
	level, err := parseLogLevel(logLevelRaw)
	if err != nil {
		return cfg, err
	}
	if _, err := newSlogLogger(level, cfg.logFormat, io.Discard); err != nil {
		return cfg, err
	}

	cfg.toggleCode = toggleCode
	cfg.buttonCode = buttonCode
	cfg.backend = backend
	cfg.logLevel = level
	return cfg, nil
}

func isPermissionError(err error) bool {
	return errors.Is(err, os.ErrPermission) || errors.Is(err, syscall.EPERM) || errors.Is(err, syscall.EACCES)
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := parseConfig(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	if cfg.listDevices {
		if err := listInputDevices(stdout); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return 0
	}

	if cfg.identifyKey {
		if err := identifyKey(cfg.devicePath, stdout); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return 0
	}

	logger, err := newSlogLogger(cfg.logLevel, cfg.logFormat, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := runClicker(ctx, cfg, logger); err != nil {
		if isPermissionError(err) {
			fmt.Fprintln(stderr, permissionDeniedHint())
		}
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
