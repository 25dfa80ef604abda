package di

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"pagepilot/internal/adapter/tool"
	"pagepilot/internal/application/service"
	"pagepilot/internal/domain/entity"
	"pagepilot/internal/infrastructure/config"
	"pagepilot/internal/infrastructure/logger"
	"pagepilot/internal/infrastructure/userinteraction"
	"pagepilot/internal/usecase/script"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioHTML = `<!DOCTYPE html>
<html>
<head><title>Integration Test</title></head>
<body>
	<h1>Welcome</h1>
	<input id="searchBox" type="text" />
	<button id="searchBtn">Search</button>
	<a href="/about">About</a>
	<div id="results"></div>
	<script>
		document.getElementById('searchBtn').addEventListener('click', function() {
			const query = document.getElementById('searchBox').value;
			document.getElementById('results').textContent = 'Results for: ' + query;
		});
	</script>
</body>
</html>`

// TestScenario runs a whole script against a real browser for each engine.
func TestScenario(t *testing.T) {
	if os.Getenv("PAGEPILOT_BROWSER_TESTS") != "1" {
		t.Skip("set PAGEPILOT_BROWSER_TESTS=1 to run browser tests")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, scenarioHTML)
	}))
	defer server.Close()

	for _, engine := range []string{config.EngineRod, config.EnginePlaywright} {
		t.Run(engine, func(t *testing.T) {
			cfg := config.Default()
			cfg.Engine = engine
			cfg.Headless = true
			cfg.Browser.NoSandbox = true
			log := logger.NewNop()

			timing := service.DefaultTiming()
			timing.Autocomplete = 0
			timing.ResultSettle = 0
			timing.NavigationSettle = 0
			browser := service.NewBrowserService(NewDriver(cfg, log), log, service.BrowserConfig{
				Headless:           true,
				Viewport:           cfg.Viewport,
				NavigationTimeout:  cfg.NavigationTimeout(),
				NetworkIdleTimeout: cfg.NetworkIdleTimeout(),
			}, service.WithTiming(timing))

			tools := service.NewToolRegistry()
			for _, tl := range tool.All(browser, log) {
				tools.Register(tl)
			}
			var report bytes.Buffer
			runner := script.New(browser, tools, userinteraction.NewConsoleReporter(&report), log)

			result, err := runner.Run(context.Background(), &entity.Script{
				Name: "search-" + engine,
				Steps: []entity.Step{
					{Tool: entity.ToolBrowserNavigate, Args: map[string]interface{}{"url": server.URL}},
					{Tool: entity.ToolBrowserType, Args: map[string]interface{}{"selector": "#searchBox", "text": "test query"}},
					{Tool: entity.ToolBrowserClick, Args: map[string]interface{}{"selector": "#searchBtn"}},
					{Tool: entity.ToolBrowserContent},
					{Tool: entity.ToolBrowserAccessibility},
					{Tool: entity.ToolBrowserScreenshot},
				},
			})
			require.NoError(t, err)
			require.True(t, result.Succeeded(), report.String())

			assert.Contains(t, result.Steps[3].Output, "Results for: test query")

			var elements []entity.PageElement
			require.NoError(t, json.Unmarshal([]byte(result.Steps[4].Output), &elements))
			tags := map[string]bool{}
			for _, el := range elements {
				tags[el.Tag] = true
			}
			assert.True(t, tags["A"])
			assert.True(t, tags["BUTTON"])

			assert.NotEmpty(t, result.Steps[5].Output)
			assert.False(t, browser.IsInitialized(), "runner must clean up")
		})
	}
}
