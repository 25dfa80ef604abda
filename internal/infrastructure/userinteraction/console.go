package userinteraction

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"pagepilot/internal/application/port/output"
	"pagepilot/internal/domain/entity"

	"github.com/fatih/color"
)

var _ output.ReporterPort = (*ConsoleReporter)(nil)

type ConsoleReporter struct {
	out io.Writer
}

func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleReporter{out: out}
}

func (r *ConsoleReporter) ShowRunStart(ctx context.Context, script string, steps int) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Fprintf(r.out, "\n━━━ %s (%d steps) ━━━\n", script, steps)
}

func (r *ConsoleReporter) ShowStepStart(ctx context.Context, index, total int, tool entity.ToolName, arguments string) {
	icon, name := getToolDisplay(tool)

	yellow := color.New(color.FgYellow, color.Bold)
	yellow.Fprintf(r.out, "\n[%d/%d] %s %s\n", index, total, icon, name)

	summary := formatToolArguments(tool, arguments)
	if summary != "" {
		dim := color.New(color.Faint)
		dim.Fprintf(r.out, "   %s\n", summary)
	}
}

func (r *ConsoleReporter) ShowStepResult(ctx context.Context, tool entity.ToolName, result string, isError bool) {
	if isError {
		red := color.New(color.FgRed)
		red.Fprint(r.out, "❌ Error: ")

		dim := color.New(color.Faint)
		dim.Fprintln(r.out, truncate(result, 300))
		return
	}

	green := color.New(color.FgGreen)
	green.Fprintf(r.out, "✓ %s\n", formatToolResult(tool, result))
}

func (r *ConsoleReporter) ShowRunResult(ctx context.Context, result *entity.RunResult) {
	skipped := 0
	for _, s := range result.Steps {
		if s.Status == entity.StepStatusSkipped {
			skipped++
		}
	}

	line := fmt.Sprintf("%d steps, %d failed, %d skipped in %s (run %s)",
		len(result.Steps), result.Failed, skipped, result.Elapsed.Round(time.Millisecond), result.RunID)

	if result.Succeeded() {
		color.New(color.FgGreen, color.Bold).Fprintf(r.out, "\n✓ PASS %s\n", line)
		return
	}
	color.New(color.FgRed, color.Bold).Fprintf(r.out, "\n✗ FAIL %s\n", line)
}

func getToolDisplay(tool entity.ToolName) (string, string) {
	displays := map[entity.ToolName][2]string{
		entity.ToolBrowserNavigate:      {"🌐", "Navigate"},
		entity.ToolBrowserClick:         {"🖱️", "Click"},
		entity.ToolBrowserType:          {"✏️", "Type"},
		entity.ToolBrowserScreenshot:    {"📸", "Screenshot"},
		entity.ToolBrowserAccessibility: {"👁️", "Accessibility scan"},
		entity.ToolBrowserCurrentURL:    {"🔗", "Current URL"},
		entity.ToolBrowserWaitLoad:      {"⏳", "Wait for load"},
		entity.ToolBrowserContent:       {"📄", "Page content"},
	}

	if display, ok := displays[tool]; ok {
		return display[0], display[1]
	}
	return "🔧", tool.String()
}

func formatToolArguments(tool entity.ToolName, arguments string) string {
	var args map[string]interface{}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return ""
	}

	switch tool {
	case entity.ToolBrowserNavigate:
		if url, ok := args["url"].(string); ok {
			return fmt.Sprintf("URL: %s", url)
		}

	case entity.ToolBrowserClick:
		if selector, ok := args["selector"].(string); ok {
			return fmt.Sprintf("Selector: %s", truncate(selector, 60))
		}

	case entity.ToolBrowserType:
		if selector, ok := args["selector"].(string); ok {
			text, _ := args["text"].(string)
			return fmt.Sprintf("Field: %s → %s", truncate(selector, 40), truncate(text, 30))
		}

	case entity.ToolBrowserScreenshot:
		if path, ok := args["path"].(string); ok {
			return fmt.Sprintf("File: %s", path)
		}
	}

	return ""
}

func formatToolResult(tool entity.ToolName, result string) string {
	switch tool {
	case entity.ToolBrowserScreenshot:
		if strings.HasPrefix(result, "Screenshot saved") {
			return result
		}
		return fmt.Sprintf("Screenshot taken (%d base64 chars)", len(result))

	case entity.ToolBrowserAccessibility:
		var elements []json.RawMessage
		if err := json.Unmarshal([]byte(result), &elements); err == nil {
			return fmt.Sprintf("Found %d interactive elements", len(elements))
		}

	case entity.ToolBrowserContent:
		return fmt.Sprintf("Page content: %d bytes", len(result))
	}

	return truncate(result, 100)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
