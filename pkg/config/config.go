package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/miketth/vrboard/pkg/hid"
	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"go.uber.org/zap"
)

const appName = "vrboard"

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	// AltModifier is added to the held mask when a key is pressed with the middle button.
	AltModifier   string `toml:"alt_modifier"`
	DefaultKeymap string `toml:"default_keymap"`
	Clock12h      bool   `toml:"clock_12h"`

	LayoutPath   string `toml:"layout_path"`
	WordlistPath string `toml:"wordlist_path"`
	EvdevXMLPath string `toml:"evdev_xml_path"`

	Store     string `toml:"store"`
	StorePath string `toml:"store_path"`

	SocketPath string `toml:"socket_path"`
	Session    string `toml:"session"`

	FeedbackSample string `toml:"feedback_sample"`
	FrameRate      int    `toml:"frame_rate"`
}

func Default() *Config {
	return &Config{
		AltModifier:  "meta",
		EvdevXMLPath: "/usr/share/X11/xkb/rules/evdev.xml",
		Store:        "sqlite",
		Session:      "auto",
		FrameRate:    60,
	}
}

// Path returns the config file location, creating its directory.
func Path() (string, error) {
	path, err := xdg.ConfigFile(filepath.Join(appName, "config.toml"))
	if err != nil {
		return "", fmt.Errorf("get config path: %w", err)
	}
	return path, nil
}

// Load reads the file at path over the defaults. A missing file yields the defaults.
func Load(path string, log *zap.SugaredLogger) (*Config, error) {
	cfg := Default()

	md, err := toml.DecodeFile(path, cfg)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Infow("no config file, using defaults", "path", path)
	case err != nil:
		return nil, fmt.Errorf("decode config: %w", err)
	default:
		for _, key := range md.Undecoded() {
			log.Warnw("unknown config key", "key", key.String())
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FillPaths sets the store and socket paths left empty to their XDG locations.
func (c *Config) FillPaths() error {
	if c.StorePath == "" && c.Store != "memory" {
		name := "keymaps.db"
		if c.Store == "json" {
			name = "keymaps.json"
		}
		path, err := xdg.DataFile(filepath.Join(appName, name))
		if err != nil {
			return fmt.Errorf("get store path: %w", err)
		}
		c.StorePath = path
	}

	if c.SocketPath == "" {
		c.SocketPath = filepath.Join(xdg.RuntimeDir, appName+".sock")
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Store {
	case "memory", "json", "sqlite":
	default:
		return fmt.Errorf("store %q is not one of memory, json, sqlite: %w", c.Store, ErrInvalidConfig)
	}

	switch c.Session {
	case "auto", "wayland", "x11":
	default:
		return fmt.Errorf("session %q is not one of auto, wayland, x11: %w", c.Session, ErrInvalidConfig)
	}

	if c.FrameRate <= 0 {
		return fmt.Errorf("frame_rate must be positive, got %d: %w", c.FrameRate, ErrInvalidConfig)
	}

	if name := strings.ToLower(c.AltModifier); name != "none" && name != "" && hid.ParseAltModifier(name) == 0 {
		return fmt.Errorf("unknown alt_modifier %q: %w", c.AltModifier, ErrInvalidConfig)
	}

	return nil
}

func (c *Config) AltModifierMask() hid.KeyModifier {
	return hid.ParseAltModifier(c.AltModifier)
}

// Wayland reports whether the session is a Wayland one.
func (c *Config) Wayland() bool {
	switch c.Session {
	case "wayland":
		return true
	case "x11":
		return false
	}
	return os.Getenv("WAYLAND_DISPLAY") != ""
}

// SessionName keys the keymap store; "auto" resolves to the detected session.
func (c *Config) SessionName() string {
	if c.Wayland() {
		return "wayland"
	}
	return "x11"
}
