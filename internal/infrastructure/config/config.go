package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"pagepilot/internal/application/port/output"
	"pagepilot/internal/domain/entity"

	"gopkg.in/yaml.v3"
)

const (
	EngineRod        = "rod"
	EnginePlaywright = "playwright"
)

type Config struct {
	Engine     string           `yaml:"engine"`
	Headless   bool             `yaml:"headless"`
	Viewport   entity.Viewport  `yaml:"viewport"`
	Timeouts   TimeoutsConfig   `yaml:"timeouts"`
	Browser    BrowserConfig    `yaml:"browser"`
	Screenshot ScreenshotConfig `yaml:"screenshot"`
	Log        LogConfig        `yaml:"log"`
	Server     ServerConfig     `yaml:"server"`
}

type TimeoutsConfig struct {
	NavigationMS  int `yaml:"navigation_ms"`
	NetworkIdleMS int `yaml:"network_idle_ms"`
}

type BrowserConfig struct {
	// Bin is an explicit Chromium executable for the rod engine.
	Bin          string `yaml:"bin"`
	NoSandbox    bool   `yaml:"no_sandbox"`
	SlowMotionMS int    `yaml:"slow_motion_ms"`
	Trace        bool   `yaml:"trace"`
}

type ScreenshotConfig struct {
	MaxWidth int `yaml:"max_width"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

func Default() *Config {
	return &Config{
		Engine:   EngineRod,
		Headless: false,
		Viewport: entity.Viewport{Width: 1280, Height: 800},
		Timeouts: TimeoutsConfig{
			NavigationMS:  30000,
			NetworkIdleMS: 5000,
		},
		Log:    LogConfig{Level: "info"},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Load reads the YAML file at path over the defaults and then applies
// PAGEPILOT_* overrides from env. An empty path skips the file.
func Load(path string, env output.ConfigPort) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if env != nil {
		cfg.applyEnv(env)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(env output.ConfigPort) {
	c.Engine = env.GetWithDefault("PAGEPILOT_ENGINE", c.Engine)
	c.Headless = env.GetBool("PAGEPILOT_HEADLESS", c.Headless)
	c.Viewport.Width = env.GetInt("PAGEPILOT_VIEWPORT_WIDTH", c.Viewport.Width)
	c.Viewport.Height = env.GetInt("PAGEPILOT_VIEWPORT_HEIGHT", c.Viewport.Height)
	c.Timeouts.NavigationMS = env.GetInt("PAGEPILOT_NAV_TIMEOUT_MS", c.Timeouts.NavigationMS)
	c.Timeouts.NetworkIdleMS = env.GetInt("PAGEPILOT_NETWORK_IDLE_TIMEOUT_MS", c.Timeouts.NetworkIdleMS)
	c.Browser.Bin = env.GetWithDefault("PAGEPILOT_BROWSER_BIN", c.Browser.Bin)
	c.Browser.NoSandbox = env.GetBool("PAGEPILOT_NO_SANDBOX", c.Browser.NoSandbox)
	c.Screenshot.MaxWidth = env.GetInt("PAGEPILOT_SCREENSHOT_MAX_WIDTH", c.Screenshot.MaxWidth)
	c.Log.Level = env.GetWithDefault("PAGEPILOT_LOG_LEVEL", c.Log.Level)
	c.Log.Dir = env.GetWithDefault("PAGEPILOT_LOG_DIR", c.Log.Dir)
	c.Server.Addr = env.GetWithDefault("PAGEPILOT_ADDR", c.Server.Addr)
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Engine {
	case EngineRod, EnginePlaywright:
	default:
		errs = append(errs, fmt.Errorf("unknown engine %q (want %s or %s)", c.Engine, EngineRod, EnginePlaywright))
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		errs = append(errs, fmt.Errorf("viewport must be positive, got %dx%d", c.Viewport.Width, c.Viewport.Height))
	}
	if c.Timeouts.NavigationMS <= 0 {
		errs = append(errs, errors.New("timeouts.navigation_ms must be positive"))
	}
	if c.Timeouts.NetworkIdleMS <= 0 {
		errs = append(errs, errors.New("timeouts.network_idle_ms must be positive"))
	}
	if c.Screenshot.MaxWidth < 0 {
		errs = append(errs, errors.New("screenshot.max_width must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) NavigationTimeout() time.Duration {
	return time.Duration(c.Timeouts.NavigationMS) * time.Millisecond
}

func (c *Config) NetworkIdleTimeout() time.Duration {
	return time.Duration(c.Timeouts.NetworkIdleMS) * time.Millisecond
}

func (c *Config) SlowMotion() time.Duration {
	return time.Duration(c.Browser.SlowMotionMS) * time.Millisecond
}
