package entity

type ToolName string

const (
	ToolBrowserNavigate      ToolName = "browser_navigate"
	ToolBrowserClick         ToolName = "browser_click"
	ToolBrowserType          ToolName = "browser_type"
	ToolBrowserScreenshot    ToolName = "browser_screenshot"
	ToolBrowserAccessibility ToolName = "browser_accessibility"
	ToolBrowserCurrentURL    ToolName = "browser_current_url"
	ToolBrowserWaitLoad      ToolName = "browser_wait_load"
	ToolBrowserContent       ToolName = "browser_content"
)

func (t ToolName) String() string {
	return string(t)
}

type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}
