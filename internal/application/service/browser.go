package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pagepilot/internal/application/port/output"
	"pagepilot/internal/domain/entity"
)

var _ output.BrowserPort = (*BrowserService)(nil)

const installHint = "install Chromium manually or point PAGEPILOT_BROWSER_BIN at an existing binary"

const screenshotQuality = 80

type BrowserConfig struct {
	Headless           bool
	Viewport           entity.Viewport
	NavigationTimeout  time.Duration
	NetworkIdleTimeout time.Duration
	// ScreenshotMaxWidth downscales wider screenshots. Zero keeps the original size.
	ScreenshotMaxWidth int
}

// Timing holds the fixed waits used between interaction stages.
type Timing struct {
	SelectorTimeout  time.Duration
	ClickTimeout     time.Duration
	ClickDelay       time.Duration
	KeyDelay         time.Duration
	Stabilize        time.Duration
	FocusSettle      time.Duration
	Autocomplete     time.Duration
	ResultSettle     time.Duration
	NavigationSettle time.Duration
	LoadSettle       time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		SelectorTimeout:  10 * time.Second,
		ClickTimeout:     10 * time.Second,
		ClickDelay:       100 * time.Millisecond,
		KeyDelay:         100 * time.Millisecond,
		Stabilize:        500 * time.Millisecond,
		FocusSettle:      200 * time.Millisecond,
		Autocomplete:     time.Second,
		ResultSettle:     2 * time.Second,
		NavigationSettle: 2 * time.Second,
		LoadSettle:       time.Second,
	}
}

type Option func(*BrowserService)

func WithTiming(t Timing) Option {
	return func(s *BrowserService) {
		s.timing = t
	}
}

func WithContentFilter(f ContentFilter) Option {
	return func(s *BrowserService) {
		s.filter = f
	}
}

// BrowserService is a facade over one browser and one page of an automation
// driver. It is not safe for concurrent use.
type BrowserService struct {
	driver output.Driver
	logger output.LoggerPort
	cfg    BrowserConfig
	timing Timing
	filter ContentFilter

	browser output.BrowserHandle
	page    output.PageHandle
}

func NewBrowserService(driver output.Driver, logger output.LoggerPort, cfg BrowserConfig, opts ...Option) *BrowserService {
	s := &BrowserService{
		driver: driver,
		logger: logger.WithField("component", "browser"),
		cfg:    cfg,
		timing: DefaultTiming(),
		filter: DefaultContentFilter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *BrowserService) Initialize(ctx context.Context) error {
	if s.browser != nil {
		return nil
	}

	s.logger.Info("Initializing browser", "engine", s.driver.Name(), "headless", s.cfg.Headless)

	err := s.open(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, output.ErrExecutableMissing) {
		return fmt.Errorf("launch browser: %w", err)
	}

	s.logger.Warn("Chromium not found, attempting to install", "engine", s.driver.Name(), "error", err)
	if err := s.driver.Install(ctx); err != nil {
		s.logger.Error("Failed to install Chromium", "error", err)
		return fmt.Errorf("%w: %v; %s", output.ErrInitFailed, err, installHint)
	}
	if err := s.open(ctx); err != nil {
		s.logger.Error("Failed to launch browser after install", "error", err)
		return fmt.Errorf("%w: %v; %s", output.ErrInitFailed, err, installHint)
	}
	return nil
}

func (s *BrowserService) open(ctx context.Context) error {
	browser, err := s.driver.Launch(ctx, output.LaunchOptions{Headless: s.cfg.Headless})
	if err != nil {
		return err
	}

	page, err := browser.NewPage(ctx)
	if err != nil {
		_ = browser.Close()
		return fmt.Errorf("open page: %w", err)
	}

	if err := page.SetViewport(ctx, s.cfg.Viewport); err != nil {
		_ = page.Close()
		_ = browser.Close()
		return fmt.Errorf("set viewport: %w", err)
	}

	s.browser = browser
	s.page = page
	return nil
}

func (s *BrowserService) IsInitialized() bool {
	return s.browser != nil
}

// Cleanup closes the page and then the browser. Close errors are logged and
// both handles are always released, so Initialize can run again afterwards.
func (s *BrowserService) Cleanup() {
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			s.logger.Error("Error closing page", "error", err)
		}
		s.page = nil
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			s.logger.Error("Error closing browser", "error", err)
		}
		s.browser = nil
	}
}

func (s *BrowserService) requirePage() (output.PageHandle, error) {
	if s.page == nil {
		return nil, output.ErrNotInitialized
	}
	return s.page, nil
}

func (s *BrowserService) Navigate(ctx context.Context, url string) error {
	page, err := s.requirePage()
	if err != nil {
		return err
	}

	s.logger.Info("Navigating", "url", url)
	err = page.Goto(ctx, url, output.WaitUntilNetworkIdle, s.cfg.NavigationTimeout)
	if err == nil {
		return nil
	}

	s.logger.Warn("Navigation failed, retrying with domcontentloaded", "url", url, "error", err)
	if err := page.Goto(ctx, url, output.WaitUntilDOMContentLoaded, s.cfg.NavigationTimeout); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}

	return sleep(ctx, s.timing.NavigationSettle)
}

func (s *BrowserService) ClickBySelector(ctx context.Context, selector string) error {
	page, err := s.requirePage()
	if err != nil {
		return err
	}

	s.logger.Info("Clicking element by selector", "selector", selector)
	if err := s.click(ctx, page, selector); err != nil {
		s.logger.Error("Click by selector failed", "selector", selector, "error", err)
		return fmt.Errorf("%w: failed to click element with selector: %s: %w", output.ErrInteraction, selector, err)
	}

	s.logger.Info("Successfully clicked element", "selector", selector)
	return nil
}

func (s *BrowserService) click(ctx context.Context, page output.PageHandle, selector string) error {
	el, err := page.WaitForSelector(ctx, selector, s.timing.SelectorTimeout)
	if err != nil {
		return fmt.Errorf("wait for selector: %w", err)
	}
	if el == nil {
		return errors.New("element not found after waiting")
	}

	visible, err := el.IsVisible(ctx)
	if err != nil {
		return fmt.Errorf("check visibility: %w", err)
	}
	if !visible {
		return errors.New("element is not visible")
	}

	box, err := el.BoundingBox(ctx)
	if err != nil {
		return fmt.Errorf("bounding box: %w", err)
	}
	if box == nil {
		return errors.New("element has no bounding box")
	}

	if err := sleep(ctx, s.timing.Stabilize); err != nil {
		return err
	}

	err = el.Click(ctx, output.ClickOptions{
		Timeout: s.timing.ClickTimeout,
		Delay:   s.timing.ClickDelay,
	})
	if err == nil {
		return nil
	}

	s.logger.Warn("Direct click failed, trying scripted click", "selector", selector, "error", err)
	if err := sleep(ctx, s.timing.Stabilize); err != nil {
		return err
	}

	if _, err := page.Evaluate(ctx, scriptedClickJS, selector); err != nil {
		return fmt.Errorf("scripted click: %w", err)
	}

	return sleep(ctx, s.timing.ResultSettle)
}

func (s *BrowserService) TypeBySelector(ctx context.Context, selector, text string) error {
	page, err := s.requirePage()
	if err != nil {
		return err
	}

	s.logger.Info("Typing text by selector", "selector", selector, "text", text)
	if err := s.typeText(ctx, page, selector, text); err != nil {
		s.logger.Error("Type by selector failed", "selector", selector, "error", err)
		return fmt.Errorf("%w: failed to type text into element with selector: %s: %w", output.ErrInteraction, selector, err)
	}

	s.logger.Info("Successfully typed text", "selector", selector)
	return nil
}

func (s *BrowserService) typeText(ctx context.Context, page output.PageHandle, selector, text string) error {
	el, err := page.WaitForSelector(ctx, selector, s.timing.SelectorTimeout)
	if err != nil {
		return fmt.Errorf("wait for selector: %w", err)
	}
	if el == nil {
		return errors.New("element not found after waiting")
	}

	visible, err := el.IsVisible(ctx)
	if err != nil {
		return fmt.Errorf("check visibility: %w", err)
	}
	editable, err := el.IsEditable(ctx)
	if err != nil {
		return fmt.Errorf("check editability: %w", err)
	}
	if !visible {
		return errors.New("element is not visible")
	}
	if !editable {
		return errors.New("element is not editable")
	}

	if err := el.Focus(ctx); err != nil {
		return fmt.Errorf("focus: %w", err)
	}
	if err := sleep(ctx, s.timing.FocusSettle); err != nil {
		return err
	}

	err = s.typeNative(ctx, el, text)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.logger.Warn("Direct type failed, trying scripted input", "selector", selector, "error", err)
	if _, err := page.Evaluate(ctx, scriptedTypeJS, map[string]interface{}{"selector": selector, "value": text}); err != nil {
		return fmt.Errorf("scripted input: %w", err)
	}

	return sleep(ctx, s.timing.ResultSettle)
}

func (s *BrowserService) typeNative(ctx context.Context, el output.ElementHandle, text string) error {
	if err := el.Fill(ctx, ""); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	if err := el.Type(ctx, text, s.timing.KeyDelay); err != nil {
		return fmt.Errorf("type: %w", err)
	}
	if err := sleep(ctx, s.timing.Autocomplete); err != nil {
		return err
	}
	if err := el.Press(ctx, "Enter"); err != nil {
		return fmt.Errorf("press enter: %w", err)
	}
	return sleep(ctx, s.timing.ResultSettle)
}

func (s *BrowserService) CurrentURL(ctx context.Context) (string, error) {
	page, err := s.requirePage()
	if err != nil {
		return "", err
	}
	return page.URL(), nil
}

// TakeScreenshot captures the full page as a base64-encoded JPEG.
func (s *BrowserService) TakeScreenshot(ctx context.Context) (string, error) {
	page, err := s.requirePage()
	if err != nil {
		return "", err
	}

	s.logger.Info("Taking screenshot")
	data, err := page.Screenshot(ctx, output.ScreenshotOptions{
		Format:   output.ImageFormatJPEG,
		Quality:  screenshotQuality,
		FullPage: true,
	})
	if err != nil {
		s.logger.Error("Screenshot failed", "error", err)
		return "", fmt.Errorf("%w: %w", output.ErrScreenshot, err)
	}

	if s.cfg.ScreenshotMaxWidth > 0 {
		data, err = downscaleJPEG(data, s.cfg.ScreenshotMaxWidth, screenshotQuality)
		if err != nil {
			s.logger.Error("Screenshot resize failed", "error", err)
			return "", fmt.Errorf("%w: %w", output.ErrScreenshot, err)
		}
	}

	return base64.StdEncoding.EncodeToString(data), nil
}

// WaitForLoadState waits for network idle, tolerating a timeout, and then
// gives dynamic content a fixed extra moment to settle.
func (s *BrowserService) WaitForLoadState(ctx context.Context) error {
	page, err := s.requirePage()
	if err != nil {
		return err
	}

	if err := page.WaitForLoadState(ctx, output.WaitUntilNetworkIdle, s.cfg.NetworkIdleTimeout); err != nil {
		s.logger.Info("Network idle timeout reached, continuing anyway", "error", err)
	}

	return sleep(ctx, s.timing.LoadSettle)
}

// EvaluateAccessibility lists clickable elements. Evaluation failures yield
// an empty list instead of an error.
func (s *BrowserService) EvaluateAccessibility(ctx context.Context) ([]entity.PageElement, error) {
	page, err := s.requirePage()
	if err != nil {
		return nil, err
	}

	raw, err := page.Evaluate(ctx, accessibilityJS, nil)
	if err != nil {
		s.logger.Error("Accessibility evaluation failed", "error", err)
		return []entity.PageElement{}, nil
	}

	var elements []entity.PageElement
	if err := json.Unmarshal(raw, &elements); err != nil {
		s.logger.Error("Accessibility evaluation failed", "error", err)
		return []entity.PageElement{}, nil
	}
	if elements == nil {
		elements = []entity.PageElement{}
	}
	return elements, nil
}

// Content returns the page body with scripts, styles and noisy attributes removed.
func (s *BrowserService) Content(ctx context.Context) (string, error) {
	page, err := s.requirePage()
	if err != nil {
		return "", err
	}

	raw, err := page.HTML(ctx)
	if err != nil {
		return "", fmt.Errorf("read page html: %w", err)
	}

	cleaned, err := s.filter.Clean(raw)
	if err != nil {
		s.logger.Warn("HTML cleanup failed, returning raw page", "error", err)
		return raw, nil
	}
	return cleaned, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
