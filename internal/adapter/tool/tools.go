package tool

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"pagepilot/internal/application/port/output"
	"pagepilot/internal/domain/entity"
)

var (
	ErrInvalidArguments = errors.New("invalid tool arguments")
	ErrInvalidURL       = errors.New("invalid url")
)

var allowedSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"file":  true,
	"about": true,
}

// All returns every browser tool bound to browser.
func All(browser output.BrowserPort, logger output.LoggerPort) []output.ToolPort {
	return []output.ToolPort{
		NewNavigateTool(browser, logger),
		NewClickTool(browser, logger),
		NewTypeTool(browser, logger),
		NewScreenshotTool(browser, logger),
		NewAccessibilityTool(browser, logger),
		NewCurrentURLTool(browser, logger),
		NewWaitLoadTool(browser, logger),
		NewContentTool(browser, logger),
	}
}

func decode(args string, v interface{}) error {
	if strings.TrimSpace(args) == "" {
		args = "{}"
	}
	if err := json.Unmarshal([]byte(args), v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidArguments, field)
	}
	return nil
}

func noParameters() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
		"required":   []string{},
	}
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if !allowedSchemes[strings.ToLower(u.Scheme)] {
		return fmt.Errorf("%w: unsupported scheme %q in %s", ErrInvalidURL, u.Scheme, raw)
	}
	return nil
}

type NavigateTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewNavigateTool(browser output.BrowserPort, logger output.LoggerPort) *NavigateTool {
	return &NavigateTool{browser: browser, logger: logger}
}

func (t *NavigateTool) Name() entity.ToolName { return entity.ToolBrowserNavigate }
func (t *NavigateTool) Description() string {
	return "Navigates the page to a URL, waiting for the network to go idle"
}
func (t *NavigateTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"url": map[string]interface{}{
				"type":        "string",
				"description": "http(s), file or about URL to open",
			},
		},
		"required": []string{"url"},
	}
}

func (t *NavigateTool) Execute(ctx context.Context, args string) (string, error) {
	var input struct {
		URL string `json:"url"`
	}
	if err := decode(args, &input); err != nil {
		return "", err
	}
	if err := required("url", input.URL); err != nil {
		return "", err
	}
	if err := validateURL(input.URL); err != nil {
		return "", err
	}

	if err := t.browser.Navigate(ctx, input.URL); err != nil {
		return "", err
	}
	current, err := t.browser.CurrentURL(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Navigated to %s", current), nil
}

type ClickTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewClickTool(browser output.BrowserPort, logger output.LoggerPort) *ClickTool {
	return &ClickTool{browser: browser, logger: logger}
}

func (t *ClickTool) Name() entity.ToolName { return entity.ToolBrowserClick }
func (t *ClickTool) Description() string   { return "Clicks the element matching a CSS selector" }
func (t *ClickTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"selector": map[string]interface{}{
				"type":        "string",
				"description": "CSS selector",
			},
		},
		"required": []string{"selector"},
	}
}

func (t *ClickTool) Execute(ctx context.Context, args string) (string, error) {
	var input struct {
		Selector string `json:"selector"`
	}
	if err := decode(args, &input); err != nil {
		return "", err
	}
	if err := required("selector", input.Selector); err != nil {
		return "", err
	}

	if err := t.browser.ClickBySelector(ctx, input.Selector); err != nil {
		return "", err
	}
	return fmt.Sprintf("Clicked %s", input.Selector), nil
}

type TypeTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewTypeTool(browser output.BrowserPort, logger output.LoggerPort) *TypeTool {
	return &TypeTool{browser: browser, logger: logger}
}

func (t *TypeTool) Name() entity.ToolName { return entity.ToolBrowserType }
func (t *TypeTool) Description() string {
	return "Types text into an input matching a CSS selector and presses Enter"
}
func (t *TypeTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"selector": map[string]interface{}{
				"type":        "string",
				"description": "CSS selector for the input",
			},
			"text": map[string]interface{}{
				"type":        "string",
				"description": "Text to type",
			},
		},
		"required": []string{"selector", "text"},
	}
}

func (t *TypeTool) Execute(ctx context.Context, args string) (string, error) {
	var input struct {
		Selector string  `json:"selector"`
		Text     *string `json:"text"`
	}
	if err := decode(args, &input); err != nil {
		return "", err
	}
	if err := required("selector", input.Selector); err != nil {
		return "", err
	}
	// Empty text is allowed; it clears the field.
	if input.Text == nil {
		return "", fmt.Errorf("%w: text is required", ErrInvalidArguments)
	}

	if err := t.browser.TypeBySelector(ctx, input.Selector, *input.Text); err != nil {
		return "", err
	}
	return fmt.Sprintf("Typed into %s", input.Selector), nil
}

type ScreenshotTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewScreenshotTool(browser output.BrowserPort, logger output.LoggerPort) *ScreenshotTool {
	return &ScreenshotTool{browser: browser, logger: logger}
}

func (t *ScreenshotTool) Name() entity.ToolName { return entity.ToolBrowserScreenshot }
func (t *ScreenshotTool) Description() string {
	return "Captures the full page as JPEG. Returns base64 unless a path is given"
}
func (t *ScreenshotTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Optional file to write the JPEG to",
			},
		},
		"required": []string{},
	}
}

func (t *ScreenshotTool) Execute(ctx context.Context, args string) (string, error) {
	var input struct {
		Path string `json:"path"`
	}
	if err := decode(args, &input); err != nil {
		return "", err
	}

	shot, err := t.browser.TakeScreenshot(ctx)
	if err != nil {
		return "", err
	}
	if input.Path == "" {
		return shot, nil
	}

	data, err := base64.StdEncoding.DecodeString(shot)
	if err != nil {
		return "", fmt.Errorf("decode screenshot: %w", err)
	}
	if dir := filepath.Dir(input.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("create screenshot dir: %w", err)
		}
	}
	if err := os.WriteFile(input.Path, data, 0644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}

	t.logger.Info("Screenshot saved", "path", input.Path, "bytes", len(data))
	return fmt.Sprintf("Screenshot saved to %s (%d bytes)", input.Path, len(data)), nil
}

type AccessibilityTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewAccessibilityTool(browser output.BrowserPort, logger output.LoggerPort) *AccessibilityTool {
	return &AccessibilityTool{browser: browser, logger: logger}
}

func (t *AccessibilityTool) Name() entity.ToolName { return entity.ToolBrowserAccessibility }
func (t *AccessibilityTool) Description() string {
	return "Lists links and buttons on the page with text, visibility, href and role"
}
func (t *AccessibilityTool) Parameters() map[string]interface{} { return noParameters() }

func (t *AccessibilityTool) Execute(ctx context.Context, args string) (string, error) {
	elements, err := t.browser.EvaluateAccessibility(ctx)
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(elements, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

type CurrentURLTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewCurrentURLTool(browser output.BrowserPort, logger output.LoggerPort) *CurrentURLTool {
	return &CurrentURLTool{browser: browser, logger: logger}
}

func (t *CurrentURLTool) Name() entity.ToolName              { return entity.ToolBrowserCurrentURL }
func (t *CurrentURLTool) Description() string                { return "Returns the URL of the current page" }
func (t *CurrentURLTool) Parameters() map[string]interface{} { return noParameters() }

func (t *CurrentURLTool) Execute(ctx context.Context, args string) (string, error) {
	return t.browser.CurrentURL(ctx)
}

type WaitLoadTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewWaitLoadTool(browser output.BrowserPort, logger output.LoggerPort) *WaitLoadTool {
	return &WaitLoadTool{browser: browser, logger: logger}
}

func (t *WaitLoadTool) Name() entity.ToolName { return entity.ToolBrowserWaitLoad }
func (t *WaitLoadTool) Description() string {
	return "Waits for the network to go idle, then lets the page settle"
}
func (t *WaitLoadTool) Parameters() map[string]interface{} { return noParameters() }

func (t *WaitLoadTool) Execute(ctx context.Context, args string) (string, error) {
	if err := t.browser.WaitForLoadState(ctx); err != nil {
		return "", err
	}
	return "Page loaded", nil
}

type ContentTool struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func NewContentTool(browser output.BrowserPort, logger output.LoggerPort) *ContentTool {
	return &ContentTool{browser: browser, logger: logger}
}

func (t *ContentTool) Name() entity.ToolName { return entity.ToolBrowserContent }
func (t *ContentTool) Description() string {
	return "Returns the page body HTML without scripts, styles and noisy attributes"
}
func (t *ContentTool) Parameters() map[string]interface{} { return noParameters() }

func (t *ContentTool) Execute(ctx context.Context, args string) (string, error) {
	return t.browser.Content(ctx)
}
