package rod

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pagepilot/internal/application/port/output"
	"pagepilot/internal/domain/entity"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

// requestIdleWindow is how long the network must stay quiet to count as idle
// when no navigation is in flight.
const requestIdleWindow = 500 * time.Millisecond

const isEditableJS = `() => {
	if (this.disabled || this.readOnly) return false;
	if (this.isContentEditable) return true;
	return ['INPUT', 'TEXTAREA', 'SELECT'].includes(this.tagName);
}`

const clearValueJS = `() => {
	if (this.isContentEditable) { this.textContent = ''; }
	else { this.value = ''; }
	this.dispatchEvent(new Event('input', { bubbles: true }));
}`

var keys = map[string]input.Key{
	"Enter":  input.Enter,
	"Tab":    input.Tab,
	"Escape": input.Escape,
}

type pageHandle struct {
	page *rod.Page
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func (p *pageHandle) SetViewport(ctx context.Context, vp entity.Viewport) error {
	return p.page.Context(ctx).SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             vp.Width,
		Height:            vp.Height,
		DeviceScaleFactor: 1,
	})
}

func (p *pageHandle) Goto(ctx context.Context, url string, until output.WaitUntil, timeout time.Duration) error {
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()
	page := p.page.Context(ctx)

	var wait func()
	switch until {
	case output.WaitUntilNetworkIdle:
		wait = page.WaitNavigation(proto.PageLifecycleEventNameNetworkIdle)
	case output.WaitUntilDOMContentLoaded:
		wait = page.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
	}

	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}

	if wait == nil {
		if err := page.WaitLoad(); err != nil {
			return fmt.Errorf("wait load: %w", err)
		}
		return nil
	}

	// The wait functions return silently when ctx ends, so the timeout has to
	// be read back from ctx.
	wait()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("wait for %s: %w", until, err)
	}
	return nil
}

func (p *pageHandle) WaitForLoadState(ctx context.Context, until output.WaitUntil, timeout time.Duration) error {
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()
	page := p.page.Context(ctx)

	if until != output.WaitUntilNetworkIdle {
		return page.WaitLoad()
	}

	page.WaitRequestIdle(requestIdleWindow, nil, nil, nil)()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("wait for %s: %w", until, err)
	}
	return nil
}

func (p *pageHandle) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) (output.ElementHandle, error) {
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	el, err := p.page.Context(ctx).Element(selector)
	if err != nil {
		return nil, fmt.Errorf("element not found: %s: %w", selector, err)
	}
	if err := el.WaitVisible(); err != nil {
		return nil, fmt.Errorf("element not visible: %s: %w", selector, err)
	}

	return &elementHandle{el: el.Context(context.Background())}, nil
}

func (p *pageHandle) Evaluate(ctx context.Context, script string, arg interface{}) (json.RawMessage, error) {
	page := p.page.Context(ctx)

	var (
		res *proto.RuntimeRemoteObject
		err error
	)
	if arg == nil {
		res, err = page.Eval(script)
	} else {
		res, err = page.Eval(script, arg)
	}
	if err != nil {
		return nil, fmt.Errorf("eval failed: %w", err)
	}

	return res.Value.MarshalJSON()
}

func (p *pageHandle) Screenshot(ctx context.Context, opts output.ScreenshotOptions) ([]byte, error) {
	req := &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	}
	if opts.Format == output.ImageFormatJPEG {
		req.Format = proto.PageCaptureScreenshotFormatJpeg
		req.Quality = gson.Int(opts.Quality)
	}

	data, err := p.page.Context(ctx).Screenshot(opts.FullPage, req)
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return data, nil
}

func (p *pageHandle) HTML(ctx context.Context) (string, error) {
	return p.page.Context(ctx).HTML()
}

func (p *pageHandle) URL() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (p *pageHandle) Close() error {
	return p.page.Close()
}

type elementHandle struct {
	el *rod.Element
}

func (e *elementHandle) IsVisible(ctx context.Context) (bool, error) {
	return e.el.Context(ctx).Visible()
}

func (e *elementHandle) IsEditable(ctx context.Context) (bool, error) {
	res, err := e.el.Context(ctx).Eval(isEditableJS)
	if err != nil {
		return false, err
	}
	return res.Value.Bool(), nil
}

func (e *elementHandle) BoundingBox(ctx context.Context) (*output.Box, error) {
	shape, err := e.el.Context(ctx).Shape()
	if err != nil {
		return nil, err
	}
	box := shape.Box()
	if box == nil {
		return nil, nil
	}
	return &output.Box{X: box.X, Y: box.Y, Width: box.Width, Height: box.Height}, nil
}

// Click hovers the element, then presses and releases the left button with
// opts.Delay in between.
func (e *elementHandle) Click(ctx context.Context, opts output.ClickOptions) error {
	ctx, cancel := withTimeout(ctx, opts.Timeout)
	defer cancel()
	el := e.el.Context(ctx)

	if err := el.Hover(); err != nil {
		return fmt.Errorf("hover: %w", err)
	}
	if !opts.Force {
		if err := el.WaitEnabled(); err != nil {
			return fmt.Errorf("wait enabled: %w", err)
		}
	}

	mouse := el.Page().Context(ctx).Mouse
	if err := mouse.Down(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("mouse down: %w", err)
	}
	if opts.Delay > 0 {
		select {
		case <-ctx.Done():
			_ = mouse.Up(proto.InputMouseButtonLeft, 1)
			return ctx.Err()
		case <-time.After(opts.Delay):
		}
	}
	if err := mouse.Up(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("mouse up: %w", err)
	}
	return nil
}

func (e *elementHandle) Focus(ctx context.Context) error {
	return e.el.Context(ctx).Focus()
}

func (e *elementHandle) Fill(ctx context.Context, value string) error {
	el := e.el.Context(ctx)
	if _, err := el.Eval(clearValueJS); err != nil {
		return fmt.Errorf("clear failed: %w", err)
	}
	if value == "" {
		return nil
	}
	if err := el.Input(value); err != nil {
		return fmt.Errorf("input failed: %w", err)
	}
	return nil
}

// Type inserts text one character at a time so key handlers see each change.
func (e *elementHandle) Type(ctx context.Context, text string, delay time.Duration) error {
	el := e.el.Context(ctx)
	if err := el.Focus(); err != nil {
		return err
	}

	page := el.Page().Context(ctx)
	for _, r := range text {
		if err := page.InsertText(string(r)); err != nil {
			return fmt.Errorf("insert text: %w", err)
		}
		if delay <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil
}

func (e *elementHandle) Press(ctx context.Context, key string) error {
	k, ok := keys[key]
	if !ok {
		return fmt.Errorf("unsupported key %q", key)
	}
	return e.el.Context(ctx).Type(k)
}
