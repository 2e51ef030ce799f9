// FILE: logport/src/internal/server/server_test.go
package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"logport/src/internal/config"
	"logport/src/internal/core"
	"logport/src/internal/service"

	json "github.com/goccy/go-json"
	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func newTestServer(t *testing.T) (*Server, *service.Service) {
	t.Helper()

	logger := log.NewLogger()
	cfg := &config.Config{
		Syslog: config.SyslogConfig{
			Host:       "127.0.0.1",
			Ports:      []int64{1514},
			BufferSize: core.DefaultBufferSize,
		},
		Storage: config.StorageConfig{
			Backend:   "memory",
			MemoryCap: 100,
			ReadLimit: core.DefaultReadLimit,
		},
	}

	svc, err := service.New(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(svc.Shutdown)

	httpCfg := &config.HTTPConfig{
		Enabled: true,
		Host:    "127.0.0.1",
		Port:    8080,
	}
	return New(httpCfg, svc, logger), svc
}

func doRequest(t *testing.T, srv *Server, uri string) *fasthttp.RequestCtx {
	t.Helper()

	var req fasthttp.Request
	req.SetRequestURI(uri)

	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)

	srv.requestHandler(ctx)
	return ctx
}

func TestParseLimit(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected int
		wantErr  bool
	}{
		{"Absent", "", 0, false},
		{"Zero", "0", 0, false},
		{"Positive", "250", 250, false},
		{"Negative", "-1", 0, true},
		{"NonNumeric", "abc", 0, true},
		{"Float", "1.5", 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			limit, err := parseLimit([]byte(tc.raw))
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expected, limit)
			}
		})
	}
}

func TestRequestHandler_Index(t *testing.T) {
	srv, _ := newTestServer(t)

	ctx := doRequest(t, srv, "http://test/")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Header.ContentType()), "text/html")
	assert.Contains(t, string(ctx.Response.Body()), "<html")
}

func TestRequestHandler_UnknownPath(t *testing.T) {
	srv, _ := newTestServer(t)

	ctx := doRequest(t, srv, "http://test/nope")
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())

	var body map[string]any
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &body))
	assert.Equal(t, "Not Found", body["error"])
}

func TestRequestHandler_LogsEmpty(t *testing.T) {
	srv, _ := newTestServer(t)

	ctx := doRequest(t, srv, "http://test/logs")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Header.ContentType()), "application/json")
	assert.JSONEq(t, "[]", string(ctx.Response.Body()))
}

func TestRequestHandler_LogsBadLimit(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, raw := range []string{"abc", "-5"} {
		ctx := doRequest(t, srv, "http://test/logs?limit="+raw)
		assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

		var body map[string]any
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &body))
		assert.Contains(t, body["error"], "invalid limit")
	}
}

func TestRequestHandler_LogsStorageFailure(t *testing.T) {
	logger := log.NewLogger()
	dir := filepath.Join(t.TempDir(), "logs")
	cfg := &config.Config{
		Syslog: config.SyslogConfig{
			Host:       "127.0.0.1",
			Ports:      []int64{1514},
			BufferSize: core.DefaultBufferSize,
		},
		Storage: config.StorageConfig{
			Backend:   "file",
			Directory: dir,
			ReadLimit: core.DefaultReadLimit,
		},
	}

	svc, err := service.New(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(svc.Shutdown)

	srv := New(&config.HTTPConfig{Enabled: true, Host: "127.0.0.1", Port: 8080}, svc, logger)

	// Break directory enumeration by replacing the storage directory
	// with a regular file
	require.NoError(t, os.RemoveAll(dir))
	require.NoError(t, os.WriteFile(dir, []byte("not a directory"), 0644))

	ctx := doRequest(t, srv, "http://test/logs")
	assert.Equal(t, fasthttp.StatusInternalServerError, ctx.Response.StatusCode())

	var body map[string]any
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &body))
	assert.Equal(t, "storage unavailable", body["error"])
}

func TestRequestHandler_Status(t *testing.T) {
	srv, _ := newTestServer(t)

	ctx := doRequest(t, srv, "http://test/status")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var body map[string]any
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &body))
	assert.Equal(t, "logport", body["service"])
	require.Contains(t, body, "collector")

	collector, ok := body["collector"].(map[string]any)
	require.True(t, ok)
	storage, ok := collector["storage"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "memory", storage["backend"])
}

func TestRateLimiter_AllowsBurstThenLimits(t *testing.T) {
	logger := log.NewLogger()
	rl := NewRateLimiter(1, 3, logger)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("10.0.0.1"), "request %d within burst", i)
	}
	assert.False(t, rl.Allow("10.0.0.1"))

	// A different client gets its own bucket
	assert.True(t, rl.Allow("10.0.0.2"))
}
