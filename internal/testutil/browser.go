package testutil

import (
	"context"
	"sync"

	"pagepilot/internal/application/port/output"
	"pagepilot/internal/domain/entity"
)

var _ output.BrowserPort = (*FakeBrowserPort)(nil)

// FakeBrowserPort is a scripted BrowserPort. Page operations fail with
// output.ErrNotInitialized until Initialize succeeds.
type FakeBrowserPort struct {
	mu sync.Mutex

	InitErr       error
	NavigateErr   error
	ClickErr      error
	TypeErr       error
	WaitErr       error
	ScreenshotErr error
	ContentErr    error

	Address    string
	Screenshot string
	Elements   []entity.PageElement
	HTML       string

	Initialized bool
	Cleanups    int
	Calls       []string
}

func (f *FakeBrowserPort) record(call string) {
	f.Calls = append(f.Calls, call)
}

func (f *FakeBrowserPort) CallLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Calls...)
}

func (f *FakeBrowserPort) Initialize(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("initialize")
	if f.InitErr != nil {
		return f.InitErr
	}
	f.Initialized = true
	return nil
}

func (f *FakeBrowserPort) IsInitialized() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Initialized
}

func (f *FakeBrowserPort) guard(call string) error {
	f.record(call)
	if !f.Initialized {
		return output.ErrNotInitialized
	}
	return nil
}

func (f *FakeBrowserPort) Navigate(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.guard("navigate:" + url); err != nil {
		return err
	}
	if f.NavigateErr != nil {
		return f.NavigateErr
	}
	f.Address = url
	return nil
}

func (f *FakeBrowserPort) ClickBySelector(ctx context.Context, selector string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.guard("click:" + selector); err != nil {
		return err
	}
	return f.ClickErr
}

func (f *FakeBrowserPort) TypeBySelector(ctx context.Context, selector, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.guard("type:" + selector + "=" + text); err != nil {
		return err
	}
	return f.TypeErr
}

func (f *FakeBrowserPort) WaitForLoadState(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.guard("wait_load"); err != nil {
		return err
	}
	return f.WaitErr
}

func (f *FakeBrowserPort) CurrentURL(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.guard("current_url"); err != nil {
		return "", err
	}
	return f.Address, nil
}

func (f *FakeBrowserPort) TakeScreenshot(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.guard("screenshot"); err != nil {
		return "", err
	}
	if f.ScreenshotErr != nil {
		return "", f.ScreenshotErr
	}
	return f.Screenshot, nil
}

func (f *FakeBrowserPort) EvaluateAccessibility(ctx context.Context) ([]entity.PageElement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.guard("accessibility"); err != nil {
		return nil, err
	}
	if f.Elements == nil {
		return []entity.PageElement{}, nil
	}
	return f.Elements, nil
}

func (f *FakeBrowserPort) Content(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.guard("content"); err != nil {
		return "", err
	}
	if f.ContentErr != nil {
		return "", f.ContentErr
	}
	return f.HTML, nil
}

func (f *FakeBrowserPort) Cleanup() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.record("cleanup")
	f.Cleanups++
	f.Initialized = false
}
