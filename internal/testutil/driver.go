// Package testutil holds in-memory fakes of the browser ports for tests.
package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"pagepilot/internal/application/port/output"
	"pagepilot/internal/domain/entity"
)

var (
	_ output.Driver        = (*FakeDriver)(nil)
	_ output.BrowserHandle = (*FakeBrowser)(nil)
	_ output.PageHandle    = (*FakePage)(nil)
	_ output.ElementHandle = (*FakeElement)(nil)
)

// FakeDriver hands out FakeBrowsers that all share Page.
type FakeDriver struct {
	mu sync.Mutex

	// LaunchErrs is consumed one entry per Launch call; nil entries succeed.
	LaunchErrs []error
	InstallErr error
	NewPageErr error

	Page     *FakePage
	Browsers []*FakeBrowser
	Calls    []string
}

func NewFakeDriver() *FakeDriver {
	return &FakeDriver{Page: NewFakePage()}
}

func (d *FakeDriver) Name() string {
	return "fake"
}

func (d *FakeDriver) Launch(ctx context.Context, opts output.LaunchOptions) (output.BrowserHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.Calls = append(d.Calls, "launch")
	if len(d.LaunchErrs) > 0 {
		err := d.LaunchErrs[0]
		d.LaunchErrs = d.LaunchErrs[1:]
		if err != nil {
			return nil, err
		}
	}

	b := &FakeBrowser{driver: d, Headless: opts.Headless}
	d.Browsers = append(d.Browsers, b)
	return b, nil
}

func (d *FakeDriver) Install(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.Calls = append(d.Calls, "install")
	return d.InstallErr
}

func (d *FakeDriver) CallLog() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.Calls...)
}

type FakeBrowser struct {
	driver *FakeDriver

	Headless bool
	CloseErr error
	Closed   bool
}

func (b *FakeBrowser) NewPage(ctx context.Context) (output.PageHandle, error) {
	b.driver.mu.Lock()
	defer b.driver.mu.Unlock()

	b.driver.Calls = append(b.driver.Calls, "new_page")
	if b.driver.NewPageErr != nil {
		return nil, b.driver.NewPageErr
	}
	b.driver.Page.Closed = false
	return b.driver.Page, nil
}

func (b *FakeBrowser) Close() error {
	b.Closed = true
	return b.CloseErr
}

type GotoCall struct {
	URL     string
	Until   output.WaitUntil
	Timeout time.Duration
}

type EvalCall struct {
	Script string
	Arg    interface{}
}

// FakePage serves elements by selector and records every call.
type FakePage struct {
	Elements    map[string]*FakeElement
	SelectorErr error

	GotoErrs  map[output.WaitUntil]error
	GotoCalls []GotoCall

	LoadStateErr   error
	LoadStateCalls []output.WaitUntil

	EvalResult json.RawMessage
	EvalErr    error
	EvalCalls  []EvalCall

	ScreenshotData  []byte
	ScreenshotErr   error
	ScreenshotCalls []output.ScreenshotOptions

	HTMLContent string
	HTMLErr     error

	Address     string
	Viewport    entity.Viewport
	ViewportErr error
	CloseErr    error
	Closed      bool
}

func NewFakePage() *FakePage {
	return &FakePage{
		Elements: make(map[string]*FakeElement),
		GotoErrs: make(map[output.WaitUntil]error),
	}
}

func (p *FakePage) SetViewport(ctx context.Context, vp entity.Viewport) error {
	if p.ViewportErr != nil {
		return p.ViewportErr
	}
	p.Viewport = vp
	return nil
}

func (p *FakePage) Goto(ctx context.Context, url string, until output.WaitUntil, timeout time.Duration) error {
	p.GotoCalls = append(p.GotoCalls, GotoCall{URL: url, Until: until, Timeout: timeout})
	if err := p.GotoErrs[until]; err != nil {
		return err
	}
	p.Address = url
	return nil
}

func (p *FakePage) WaitForLoadState(ctx context.Context, until output.WaitUntil, timeout time.Duration) error {
	p.LoadStateCalls = append(p.LoadStateCalls, until)
	return p.LoadStateErr
}

func (p *FakePage) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) (output.ElementHandle, error) {
	if p.SelectorErr != nil {
		return nil, p.SelectorErr
	}
	el, ok := p.Elements[selector]
	if !ok {
		return nil, errors.New("timeout waiting for selector " + selector)
	}
	return el, nil
}

func (p *FakePage) Evaluate(ctx context.Context, script string, arg interface{}) (json.RawMessage, error) {
	p.EvalCalls = append(p.EvalCalls, EvalCall{Script: script, Arg: arg})
	if p.EvalErr != nil {
		return nil, p.EvalErr
	}
	if p.EvalResult == nil {
		return json.RawMessage("null"), nil
	}
	return p.EvalResult, nil
}

func (p *FakePage) Screenshot(ctx context.Context, opts output.ScreenshotOptions) ([]byte, error) {
	p.ScreenshotCalls = append(p.ScreenshotCalls, opts)
	if p.ScreenshotErr != nil {
		return nil, p.ScreenshotErr
	}
	return p.ScreenshotData, nil
}

func (p *FakePage) HTML(ctx context.Context) (string, error) {
	return p.HTMLContent, p.HTMLErr
}

func (p *FakePage) URL() string {
	return p.Address
}

func (p *FakePage) Close() error {
	p.Closed = true
	return p.CloseErr
}

// FakeElement records interaction calls by name in Calls.
type FakeElement struct {
	Visible    bool
	VisibleErr error
	Editable   bool
	Box        *output.Box

	ClickErr error
	FocusErr error
	FillErr  error
	TypeErr  error
	PressErr error

	Calls     []string
	ClickOpts []output.ClickOptions
	Typed     string
	TypeDelay time.Duration
	Pressed   []string
}

// NewFakeElement returns a visible, editable element with a bounding box.
func NewFakeElement() *FakeElement {
	return &FakeElement{
		Visible:  true,
		Editable: true,
		Box:      &output.Box{Width: 100, Height: 20},
	}
}

func (e *FakeElement) IsVisible(ctx context.Context) (bool, error) {
	e.Calls = append(e.Calls, "is_visible")
	return e.Visible, e.VisibleErr
}

func (e *FakeElement) IsEditable(ctx context.Context) (bool, error) {
	e.Calls = append(e.Calls, "is_editable")
	return e.Editable, nil
}

func (e *FakeElement) BoundingBox(ctx context.Context) (*output.Box, error) {
	e.Calls = append(e.Calls, "bounding_box")
	return e.Box, nil
}

func (e *FakeElement) Click(ctx context.Context, opts output.ClickOptions) error {
	e.Calls = append(e.Calls, "click")
	e.ClickOpts = append(e.ClickOpts, opts)
	return e.ClickErr
}

func (e *FakeElement) Focus(ctx context.Context) error {
	e.Calls = append(e.Calls, "focus")
	return e.FocusErr
}

func (e *FakeElement) Fill(ctx context.Context, value string) error {
	e.Calls = append(e.Calls, "fill:"+value)
	return e.FillErr
}

func (e *FakeElement) Type(ctx context.Context, text string, delay time.Duration) error {
	e.Calls = append(e.Calls, "type")
	if e.TypeErr != nil {
		return e.TypeErr
	}
	e.Typed += text
	e.TypeDelay = delay
	return nil
}

func (e *FakeElement) Press(ctx context.Context, key string) error {
	e.Calls = append(e.Calls, "press:"+key)
	if e.PressErr != nil {
		return e.PressErr
	}
	e.Pressed = append(e.Pressed, key)
	return nil
}
