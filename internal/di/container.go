package di

import (
	"fmt"
	"io"

	"pagepilot/internal/adapter/httpapi"
	"pagepilot/internal/adapter/tool"
	"pagepilot/internal/application/port/input"
	"pagepilot/internal/application/port/output"
	"pagepilot/internal/application/service"
	"pagepilot/internal/infrastructure/browser/playwright"
	"pagepilot/internal/infrastructure/browser/rod"
	"pagepilot/internal/infrastructure/config"
	"pagepilot/internal/infrastructure/env"
	"pagepilot/internal/infrastructure/logger"
	"pagepilot/internal/infrastructure/userinteraction"
	"pagepilot/internal/usecase/script"
)

type Container struct {
	Config   *config.Config
	Logger   output.LoggerPort
	Driver   output.Driver
	Browser  output.BrowserPort
	Tools    output.ToolRegistry
	Reporter output.ReporterPort
	Runner   input.ScriptRunner
}

type Options struct {
	ConfigPath string
	// Engine overrides the configured engine when set.
	Engine string
	// RunName names the run log file.
	RunName string
	// Out receives the colored run report. Defaults to stdout.
	Out io.Writer
}

func NewContainer(opts Options) (*Container, error) {
	cfg, err := config.Load(opts.ConfigPath, env.NewEnvService())
	if err != nil {
		return nil, err
	}
	if opts.Engine != "" {
		cfg.Engine = opts.Engine
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	log, err := logger.NewLoggerAdapter(logger.Options{
		Level: cfg.Log.Level,
		Dir:   cfg.Log.Dir,
		Name:  opts.RunName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	driver := NewDriver(cfg, log)

	browser := service.NewBrowserService(driver, log, service.BrowserConfig{
		Headless:           cfg.Headless,
		Viewport:           cfg.Viewport,
		NavigationTimeout:  cfg.NavigationTimeout(),
		NetworkIdleTimeout: cfg.NetworkIdleTimeout(),
		ScreenshotMaxWidth: cfg.Screenshot.MaxWidth,
	})

	tools := service.NewToolRegistry()
	for _, t := range tool.All(browser, log) {
		tools.Register(t)
	}

	reporter := userinteraction.NewConsoleReporter(opts.Out)

	return &Container{
		Config:   cfg,
		Logger:   log,
		Driver:   driver,
		Browser:  browser,
		Tools:    tools,
		Reporter: reporter,
		Runner:   script.New(browser, tools, reporter, log),
	}, nil
}

// NewDriver picks the automation engine named by cfg.Engine.
func NewDriver(cfg *config.Config, log output.LoggerPort) output.Driver {
	if cfg.Engine == config.EnginePlaywright {
		return playwright.NewDriver(log)
	}
	return rod.NewDriver(rod.Config{
		Bin:        cfg.Browser.Bin,
		NoSandbox:  cfg.Browser.NoSandbox,
		SlowMotion: cfg.SlowMotion(),
		Trace:      cfg.Browser.Trace,
	}, log)
}

func (c *Container) NewServer(addr string) *httpapi.Server {
	if addr == "" {
		addr = c.Config.Server.Addr
	}
	return httpapi.NewServer(httpapi.Config{Addr: addr, AccessLog: true}, c.Browser, c.Tools, c.Logger)
}

// Close releases the browser and flushes the logger.
func (c *Container) Close() {
	if c.Browser != nil {
		c.Browser.Cleanup()
	}
	if c.Logger != nil {
		c.Logger.Close()
	}
}
