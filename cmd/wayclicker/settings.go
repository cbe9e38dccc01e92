package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

type fileConfig struct {
	IntervalMS int    `toml:"interval_ms"`
	ToggleKey  string `toml:"toggle_key"`
	Button     string `toml:"button"`
	HoldMS     int    `toml:"hold_ms"`
	Backend    string `toml:"backend"`
	Device     string `toml:"device"`
	LogLevel   string `toml:"log_level"`
	LogFormat  string `toml:"log_format"`

	meta toml.MetaData
}

func defaultConfigPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil || configDir == "" {
		return ""
	}
	return filepath.Join(configDir, "wayclicker", "config.toml")
}

// loadFileConfig reads path, or the default location when path is empty. A
// missing default file is not an error; a missing explicit file is.
func loadFileConfig(path string) (*fileConfig, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
		if path == "" {
			return nil, nil
		}
	}

	var cfg fileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("unknown keys in config %s: %s", path, strings.Join(keys, ", "))
	}
	cfg.meta = meta
	return &cfg, nil
}

// apply copies values defined in the file into targets whose flags were not
// given explicitly on the command line.
func (f *fileConfig) apply(explicit map[string]bool, intervalMS, holdMS *int, logLevel *string, cfg *config) {
	use := func(key string, flagNames ...string) bool {
		if !f.meta.IsDefined(key) {
			return false
		}
		for _, name := range flagNames {
			if explicit[name] {
				return false
			}
		}
		return true
	}

	if use("interval_ms", "interval", "i") {
		*intervalMS = f.IntervalMS
	}
	if use("toggle_key", "toggle-key", "t") {
		cfg.toggleRaw = f.ToggleKey
	}
	if use("button", "button", "b") {
		cfg.buttonRaw = f.Button
	}
	if use("hold_ms", "hold-ms") {
		*holdMS = f.HoldMS
	}
	if use("backend", "backend") {
		cfg.backend = f.Backend
	}
	if use("device", "device") {
		cfg.devicePath = f.Device
	}
	if use("log_level", "log-level") {
		*logLevel = f.LogLevel
	}
	if use("log_format", "log-format") {
		cfg.logFormat = f.LogFormat
	}
}
