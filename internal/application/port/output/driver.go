package output

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"pagepilot/internal/domain/entity"
)

// ErrExecutableMissing is wrapped by drivers when no browser binary is
// available to launch. Callers may react by installing one.
var ErrExecutableMissing = errors.New("browser executable doesn't exist")

type WaitUntil string

const (
	WaitUntilLoad             WaitUntil = "load"
	WaitUntilDOMContentLoaded WaitUntil = "domcontentloaded"
	WaitUntilNetworkIdle      WaitUntil = "networkidle"
)

type ImageFormat string

const (
	ImageFormatJPEG ImageFormat = "jpeg"
	ImageFormatPNG  ImageFormat = "png"
)

type LaunchOptions struct {
	Headless bool
}

type ClickOptions struct {
	Timeout time.Duration
	Delay   time.Duration
	Force   bool
}

type ScreenshotOptions struct {
	Format   ImageFormat
	Quality  int
	FullPage bool
}

type Box struct {
	X, Y, Width, Height float64
}

// Driver launches browsers for one automation engine.
type Driver interface {
	Name() string
	Launch(ctx context.Context, opts LaunchOptions) (BrowserHandle, error)
	Install(ctx context.Context) error
}

type BrowserHandle interface {
	NewPage(ctx context.Context) (PageHandle, error)
	Close() error
}

type PageHandle interface {
	SetViewport(ctx context.Context, vp entity.Viewport) error
	Goto(ctx context.Context, url string, until WaitUntil, timeout time.Duration) error
	WaitForLoadState(ctx context.Context, until WaitUntil, timeout time.Duration) error
	// WaitForSelector blocks until an element matching selector is visible.
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) (ElementHandle, error)
	// Evaluate runs a JS function expression with a single argument and
	// returns its result as JSON. A nil arg calls the function with none.
	Evaluate(ctx context.Context, script string, arg interface{}) (json.RawMessage, error)
	Screenshot(ctx context.Context, opts ScreenshotOptions) ([]byte, error)
	HTML(ctx context.Context) (string, error)
	URL() string
	Close() error
}

type ElementHandle interface {
	IsVisible(ctx context.Context) (bool, error)
	IsEditable(ctx context.Context) (bool, error)
	// BoundingBox returns nil when the element is not rendered.
	BoundingBox(ctx context.Context) (*Box, error)
	Click(ctx context.Context, opts ClickOptions) error
	Focus(ctx context.Context) error
	Fill(ctx context.Context, value string) error
	Type(ctx context.Context, text string, delay time.Duration) error
	Press(ctx context.Context, key string) error
}
