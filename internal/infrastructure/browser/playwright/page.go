package playwright

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pagepilot/internal/application/port/output"
	"pagepilot/internal/domain/entity"

	"github.com/playwright-community/playwright-go"
)

type pageHandle struct {
	page playwright.Page
}

// millis converts d to playwright's millisecond timeouts. Zero means no
// override, so the page default applies.
func millis(d time.Duration) *float64 {
	if d <= 0 {
		return nil
	}
	return playwright.Float(float64(d.Milliseconds()))
}

func (p *pageHandle) SetViewport(ctx context.Context, vp entity.Viewport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.page.SetViewportSize(vp.Width, vp.Height)
}

func (p *pageHandle) Goto(ctx context.Context, url string, until output.WaitUntil, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	waitUntil := playwright.WaitUntilState(until)
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: &waitUntil,
		Timeout:   millis(timeout),
	})
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

func (p *pageHandle) WaitForLoadState(ctx context.Context, until output.WaitUntil, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	state := playwright.LoadState(until)
	return p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   &state,
		Timeout: millis(timeout),
	})
}

func (p *pageHandle) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) (output.ElementHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	state := playwright.WaitForSelectorState("visible")
	el, err := p.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   &state,
		Timeout: millis(timeout),
	})
	if err != nil {
		return nil, fmt.Errorf("element not visible: %s: %w", selector, err)
	}
	if el == nil {
		return nil, fmt.Errorf("element not found: %s", selector)
	}
	return &elementHandle{el: el}, nil
}

func (p *pageHandle) Evaluate(ctx context.Context, script string, arg interface{}) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		res interface{}
		err error
	)
	if arg == nil {
		res, err = p.page.Evaluate(script)
	} else {
		res, err = p.page.Evaluate(script, arg)
	}
	if err != nil {
		return nil, fmt.Errorf("eval failed: %w", err)
	}

	return json.Marshal(res)
}

func (p *pageHandle) Screenshot(ctx context.Context, opts output.ScreenshotOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format := playwright.ScreenshotType(opts.Format)
	shot := playwright.PageScreenshotOptions{
		Type:     &format,
		FullPage: playwright.Bool(opts.FullPage),
	}
	if opts.Format == output.ImageFormatJPEG {
		shot.Quality = playwright.Int(opts.Quality)
	}

	data, err := p.page.Screenshot(shot)
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return data, nil
}

func (p *pageHandle) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.page.Content()
}

func (p *pageHandle) URL() string {
	return p.page.URL()
}

func (p *pageHandle) Close() error {
	return p.page.Close()
}

type elementHandle struct {
	el playwright.ElementHandle
}

func (e *elementHandle) IsVisible(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return e.el.IsVisible()
}

func (e *elementHandle) IsEditable(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return e.el.IsEditable()
}

func (e *elementHandle) BoundingBox(ctx context.Context) (*output.Box, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rect, err := e.el.BoundingBox()
	if err != nil {
		return nil, err
	}
	if rect == nil {
		return nil, nil
	}
	return &output.Box{X: rect.X, Y: rect.Y, Width: rect.Width, Height: rect.Height}, nil
}

func (e *elementHandle) Click(ctx context.Context, opts output.ClickOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.el.Click(playwright.ElementHandleClickOptions{
		Timeout: millis(opts.Timeout),
		Delay:   playwright.Float(float64(opts.Delay.Milliseconds())),
		Force:   playwright.Bool(opts.Force),
	})
}

func (e *elementHandle) Focus(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.el.Focus()
}

func (e *elementHandle) Fill(ctx context.Context, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.el.Fill(value)
}

func (e *elementHandle) Type(ctx context.Context, text string, delay time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.el.Type(text, playwright.ElementHandleTypeOptions{
		Delay: playwright.Float(float64(delay.Milliseconds())),
	})
}

func (e *elementHandle) Press(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.el.Press(key)
}
