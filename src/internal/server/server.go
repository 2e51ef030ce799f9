// FILE: logport/src/internal/server/server.go
package server

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"logport/src/internal/config"
	"logport/src/internal/service"
	"logport/src/internal/version"

	json "github.com/goccy/go-json"
	"github.com/lixenwraith/log"
	"github.com/lixenwraith/log/compat"
	"github.com/valyala/fasthttp"
)

// Server is the thin HTTP adapter over the query façade. It serves the
// viewer page, the JSON read endpoint, and a status endpoint; it never
// touches the ingestion path.
type Server struct {
	config  *config.HTTPConfig
	svc     *service.Service
	server  *fasthttp.Server
	limiter *RateLimiter
	logger  *log.Logger

	startTime time.Time

	// Statistics
	totalQueries   atomic.Uint64
	queryFailures  atomic.Uint64
	limitedQueries atomic.Uint64
}

// New creates the HTTP server. Nothing is bound until Start.
func New(cfg *config.HTTPConfig, svc *service.Service, logger *log.Logger) *Server {
	s := &Server{
		config:    cfg,
		svc:       svc,
		logger:    logger,
		startTime: time.Now(),
	}

	if rl := cfg.RateLimit; rl != nil && rl.Enabled {
		s.limiter = NewRateLimiter(rl.RequestsPerSecond, int(rl.BurstSize), logger)
	}

	return s
}

func (s *Server) Start(ctx context.Context) error {
	fasthttpLogger := compat.NewFastHTTPAdapter(s.logger)

	s.server = &fasthttp.Server{
		Name:    fmt.Sprintf("logport/%s", version.Short()),
		Handler: s.requestHandler,
		Logger:  fasthttpLogger,
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("msg", "HTTP server starting",
			"component", "http_server",
			"host", s.config.Host,
			"port", s.config.Port)

		if err := s.server.ListenAndServe(addr); err != nil {
			errChan <- err
		}
	}()

	go func() {
		<-ctx.Done()
		if s.server != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			s.server.ShutdownWithContext(shutdownCtx)
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("bind http %s: %w", addr, err)
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

func (s *Server) Stop() {
	s.logger.Info("msg", "Stopping HTTP server", "component", "http_server")

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.server.ShutdownWithContext(ctx)
	}
	if s.limiter != nil {
		s.limiter.Stop()
	}

	s.logger.Info("msg", "HTTP server stopped", "component", "http_server")
}

func (s *Server) requestHandler(ctx *fasthttp.RequestCtx) {
	remoteAddr := ctx.RemoteIP().String()

	if s.limiter != nil && !s.limiter.Allow(remoteAddr) {
		s.limitedQueries.Add(1)
		ctx.SetStatusCode(fasthttp.StatusTooManyRequests)
		ctx.SetContentType("application/json")
		json.NewEncoder(ctx).Encode(map[string]any{
			"error": "Too many requests",
		})
		return
	}

	switch string(ctx.Path()) {
	case "/":
		s.handleIndex(ctx)
	case "/logs":
		s.handleLogs(ctx)
	case "/status":
		s.handleStatus(ctx)
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		ctx.SetContentType("application/json")
		json.NewEncoder(ctx).Encode(map[string]any{
			"error": "Not Found",
		})
	}
}

func (s *Server) handleIndex(ctx *fasthttp.RequestCtx) {
	ctx.SetContentType("text/html; charset=utf-8")
	ctx.SetBodyString(indexHTML)
}

func (s *Server) handleLogs(ctx *fasthttp.RequestCtx) {
	s.totalQueries.Add(1)

	filter := string(ctx.QueryArgs().Peek("filter"))

	limit, err := parseLimit(ctx.QueryArgs().Peek("limit"))
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		ctx.SetContentType("application/json")
		json.NewEncoder(ctx).Encode(map[string]any{
			"error": err.Error(),
		})
		return
	}

	records, err := s.svc.Query(filter, limit)
	if err != nil {
		s.queryFailures.Add(1)
		s.logger.Error("msg", "Query failed",
			"component", "http_server",
			"filter", filter,
			"error", err)
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetContentType("application/json")
		json.NewEncoder(ctx).Encode(map[string]any{
			"error": "storage unavailable",
		})
		return
	}

	data, err := json.Marshal(records)
	if err != nil {
		s.queryFailures.Add(1)
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetContentType("application/json")
		json.NewEncoder(ctx).Encode(map[string]any{
			"error": "failed to encode records",
		})
		return
	}

	ctx.SetContentType("application/json")
	ctx.SetBody(data)
}

// parseLimit interprets the optional limit query parameter. Absent or
// empty means uncapped; anything non-numeric or negative is a client
// error rather than a silent default.
func parseLimit(raw []byte) (int, error) {
	if len(raw) == 0 {
		return 0, nil
	}
	limit, err := strconv.Atoi(string(raw))
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("invalid limit: %q", raw)
	}
	return limit, nil
}

func (s *Server) handleStatus(ctx *fasthttp.RequestCtx) {
	ctx.SetContentType("application/json")

	var rateLimitStats any
	if s.limiter != nil {
		rateLimitStats = s.limiter.GetStats()
	} else {
		rateLimitStats = map[string]any{
			"enabled": false,
		}
	}

	status := map[string]any{
		"service": "logport",
		"version": version.Short(),
		"server": map[string]any{
			"host":           s.config.Host,
			"port":           s.config.Port,
			"uptime_seconds": int(time.Since(s.startTime).Seconds()),
		},
		"statistics": map[string]any{
			"total_queries":   s.totalQueries.Load(),
			"query_failures":  s.queryFailures.Load(),
			"limited_queries": s.limitedQueries.Load(),
		},
		"rate_limit": rateLimitStats,
		"collector":  s.svc.GetStats(),
	}

	data, _ := json.Marshal(status)
	ctx.SetBody(data)
}
