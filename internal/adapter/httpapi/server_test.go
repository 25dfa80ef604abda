package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"pagepilot/internal/adapter/tool"
	"pagepilot/internal/application/port/output"
	"pagepilot/internal/application/service"
	"pagepilot/internal/domain/entity"
	"pagepilot/internal/infrastructure/logger"
	"pagepilot/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, browser *testutil.FakeBrowserPort, accessLog bool) *httptest.Server {
	t.Helper()
	registry := service.NewToolRegistry()
	for _, tl := range tool.All(browser, logger.NewNop()) {
		registry.Register(tl)
	}
	s := NewServer(Config{AccessLog: accessLog}, browser, registry, logger.NewNop())
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, body string) (int, map[string]interface{}) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, &testutil.FakeBrowserPort{}, true)

	status, body := do(t, http.MethodGet, ts.URL+"/healthz", "")

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["initialized"])
}

func TestListTools(t *testing.T) {
	ts := newTestServer(t, &testutil.FakeBrowserPort{}, false)

	resp, err := http.Get(ts.URL + "/tools")
	require.NoError(t, err)
	defer resp.Body.Close()

	var defs []entity.ToolDefinition
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&defs))
	require.Len(t, defs, 8)
	assert.Equal(t, "browser_accessibility", defs[0].Name)
}

func TestSessionLifecycle(t *testing.T) {
	browser := &testutil.FakeBrowserPort{}
	ts := newTestServer(t, browser, false)

	status, body := do(t, http.MethodPost, ts.URL+"/tools/browser_current_url", "{}")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "browser not initialized", body["error"])

	status, _ = do(t, http.MethodPost, ts.URL+"/session", "")
	assert.Equal(t, http.StatusOK, status)

	status, body = do(t, http.MethodPost, ts.URL+"/tools/browser_navigate", `{"url":"https://example.com"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Navigated to https://example.com", body["result"])

	status, body = do(t, http.MethodDelete, ts.URL+"/session", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["initialized"])
	assert.Equal(t, 1, browser.Cleanups)
}

func TestExecuteTool_StatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   string
		setup  func(b *testutil.FakeBrowserPort)
		status int
	}{
		{name: "unknown tool", path: "/tools/browser_scroll", body: "{}", status: http.StatusNotFound},
		{name: "malformed json", path: "/tools/browser_click", body: "{", status: http.StatusBadRequest},
		{name: "missing field", path: "/tools/browser_click", body: "{}", status: http.StatusBadRequest},
		{name: "bad scheme", path: "/tools/browser_navigate", body: `{"url":"javascript:1"}`, status: http.StatusBadRequest},
		{
			name:   "browser failure",
			path:   "/tools/browser_click",
			body:   `{"selector":"#x"}`,
			setup:  func(b *testutil.FakeBrowserPort) { b.ClickErr = output.ErrInteraction },
			status: http.StatusBadGateway,
		},
		{name: "ok", path: "/tools/browser_wait_load", body: "", status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			browser := &testutil.FakeBrowserPort{Initialized: true}
			if tt.setup != nil {
				tt.setup(browser)
			}
			ts := newTestServer(t, browser, false)

			status, _ := do(t, http.MethodPost, ts.URL+tt.path, tt.body)
			assert.Equal(t, tt.status, status)
		})
	}
}

func TestOpenSession_Failure(t *testing.T) {
	browser := &testutil.FakeBrowserPort{InitErr: errors.New("launch browser: boom")}
	ts := newTestServer(t, browser, false)

	status, body := do(t, http.MethodPost, ts.URL+"/session", "")

	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "launch browser: boom", body["error"])
}

func TestExecuteTool_ConcurrentRequests(t *testing.T) {
	browser := &testutil.FakeBrowserPort{Initialized: true}
	ts := newTestServer(t, browser, false)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := http.Post(ts.URL+"/tools/browser_click", "application/json", strings.NewReader(`{"selector":"#a"}`))
			if err == nil {
				resp.Body.Close()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, browser.CallLog(), 10)
}

func TestListenAndServe_CleansUpOnShutdown(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	browser := &testutil.FakeBrowserPort{Initialized: true}
	s := NewServer(Config{Addr: addr}, browser, service.NewToolRegistry(), logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.Equal(t, 1, browser.Cleanups)
	assert.False(t, browser.IsInitialized())
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(tool.ErrInvalidArguments))
	assert.Equal(t, http.StatusBadRequest, statusFor(tool.ErrInvalidURL))
	assert.Equal(t, http.StatusNotFound, statusFor(output.ErrUnknownTool))
	assert.Equal(t, http.StatusConflict, statusFor(output.ErrNotInitialized))
	assert.Equal(t, http.StatusBadGateway, statusFor(output.ErrInitFailed))
	assert.Equal(t, http.StatusBadGateway, statusFor(errors.New("other")))
}
