package playwright

import (
	"context"
	"fmt"
	"io"
	"strings"

	"pagepilot/internal/application/port/output"

	"github.com/playwright-community/playwright-go"
)

var _ output.Driver = (*Driver)(nil)

// Messages playwright-go reports when either the node driver or the browser
// build has not been downloaded yet.
var missingMarkers = []string{
	"Executable doesn't exist",
	"please install the driver",
}

// Driver runs Chromium through playwright-go. Each Launch starts its own
// playwright driver process, which is stopped again when the browser handle
// is closed.
type Driver struct {
	logger output.LoggerPort
	stdout io.Writer
}

func NewDriver(logger output.LoggerPort) *Driver {
	return &Driver{
		logger: logger.WithField("component", "playwright"),
		stdout: io.Discard,
	}
}

func (d *Driver) Name() string {
	return "playwright"
}

func (d *Driver) runOptions() *playwright.RunOptions {
	return &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
		Stdout:   d.stdout,
		Stderr:   d.stdout,
	}
}

func (d *Driver) Launch(ctx context.Context, opts output.LaunchOptions) (output.BrowserHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pw, err := playwright.Run(d.runOptions())
	if err != nil {
		return nil, classify("failed to start playwright", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		if stopErr := pw.Stop(); stopErr != nil {
			d.logger.Debug("Error stopping playwright after failed launch", "error", stopErr)
		}
		return nil, classify("failed to launch browser", err)
	}

	d.logger.Debug("Browser launched", "headless", opts.Headless, "version", browser.Version())
	return &browserHandle{pw: pw, browser: browser}, nil
}

// Install downloads the playwright driver and its Chromium build.
func (d *Driver) Install(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.logger.Info("Installing playwright chromium")
	if err := playwright.Install(d.runOptions()); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}
	return nil
}

func classify(msg string, err error) error {
	for _, m := range missingMarkers {
		if strings.Contains(err.Error(), m) {
			return fmt.Errorf("%s: %w: %w", msg, output.ErrExecutableMissing, err)
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}

type browserHandle struct {
	pw      *playwright.Playwright
	browser playwright.Browser
}

func (b *browserHandle) NewPage(ctx context.Context) (output.PageHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, err := b.browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	return &pageHandle{page: page}, nil
}

// Close closes the browser and stops the driver process, returning the first
// error seen.
func (b *browserHandle) Close() error {
	var firstErr error
	if err := b.browser.Close(); err != nil {
		firstErr = err
	}
	if err := b.pw.Stop(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
