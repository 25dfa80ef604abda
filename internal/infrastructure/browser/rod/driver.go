package rod

import (
	"context"
	"fmt"
	"os"
	"time"

	"pagepilot/internal/application/port/output"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/rod/lib/utils"
)

var _ output.Driver = (*Driver)(nil)

type Config struct {
	// Bin is an explicit browser executable. Empty means search the usual locations.
	Bin        string
	NoSandbox  bool
	SlowMotion time.Duration
	Trace      bool
}

func DefaultConfig() Config {
	return Config{
		NoSandbox: false,
	}
}

// Driver launches local Chromium processes through rod's launcher. It never
// downloads a browser on Launch; that only happens in Install.
type Driver struct {
	cfg    Config
	logger output.LoggerPort

	installed string
}

func NewDriver(cfg Config, logger output.LoggerPort) *Driver {
	return &Driver{
		cfg:    cfg,
		logger: logger.WithField("component", "rod"),
	}
}

func (d *Driver) Name() string {
	return "rod"
}

func (d *Driver) resolveBin() (string, error) {
	if d.installed != "" {
		return d.installed, nil
	}
	if d.cfg.Bin != "" {
		if _, err := os.Stat(d.cfg.Bin); err != nil {
			return "", fmt.Errorf("%w: %s: %v", output.ErrExecutableMissing, d.cfg.Bin, err)
		}
		return d.cfg.Bin, nil
	}
	if path, has := launcher.LookPath(); has {
		return path, nil
	}
	return "", fmt.Errorf("%w: no chromium found in the usual locations", output.ErrExecutableMissing)
}

func (d *Driver) Launch(ctx context.Context, opts output.LaunchOptions) (output.BrowserHandle, error) {
	bin, err := d.resolveBin()
	if err != nil {
		return nil, err
	}

	// The process must outlive ctx, which may belong to a single request.
	l := launcher.New().
		Bin(bin).
		Headless(opts.Headless).
		NoSandbox(d.cfg.NoSandbox).
		Delete("use-mock-keychain")

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().
		ControlURL(url).
		Trace(d.cfg.Trace).
		SlowMotion(d.cfg.SlowMotion)

	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	d.logger.Debug("Browser launched", "bin", bin, "headless", opts.Headless)
	return &browserHandle{browser: browser, launcher: l}, nil
}

// Install downloads rod's pinned Chromium revision and uses it for
// subsequent launches.
func (d *Driver) Install(ctx context.Context) error {
	b := launcher.NewBrowser()
	b.Context = ctx
	b.Logger = utils.LoggerQuiet

	d.logger.Info("Downloading Chromium", "dir", b.Dir())
	path, err := b.Get()
	if err != nil {
		return fmt.Errorf("download chromium: %w", err)
	}

	d.installed = path
	return nil
}

type browserHandle struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
}

func (b *browserHandle) NewPage(ctx context.Context) (output.PageHandle, error) {
	page, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	// Detach from the caller's context so the page outlives the request that opened it.
	return &pageHandle{page: page.Context(context.Background())}, nil
}

// Close shuts the browser down and always kills the launched process.
func (b *browserHandle) Close() error {
	err := b.browser.Close()
	b.launcher.Kill()
	b.launcher.Cleanup()
	return err
}
