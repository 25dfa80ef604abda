package output

import (
	"context"
	"errors"

	"pagepilot/internal/domain/entity"
)

var (
	ErrNotInitialized = errors.New("browser not initialized")
	ErrInitFailed     = errors.New("failed to initialize browser")
	ErrInteraction    = errors.New("element interaction failed")
	ErrScreenshot     = errors.New("failed to take screenshot")
)

// BrowserPort is the stateful browser facade. It holds at most one browser
// and one page and is meant to be driven by a single caller at a time.
type BrowserPort interface {
	Initialize(ctx context.Context) error
	IsInitialized() bool

	Navigate(ctx context.Context, url string) error
	ClickBySelector(ctx context.Context, selector string) error
	TypeBySelector(ctx context.Context, selector, text string) error
	WaitForLoadState(ctx context.Context) error

	CurrentURL(ctx context.Context) (string, error)
	TakeScreenshot(ctx context.Context) (string, error)
	EvaluateAccessibility(ctx context.Context) ([]entity.PageElement, error)
	Content(ctx context.Context) (string, error)

	Cleanup()
}
