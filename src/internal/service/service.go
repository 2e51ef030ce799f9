// FILE: logport/src/internal/service/service.go
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"logport/src/internal/config"
	"logport/src/internal/core"
	"logport/src/internal/source"
	"logport/src/internal/store"

	"github.com/lixenwraith/log"
)

// Service owns the per-port receivers and the record store, and is the
// single query boundary the HTTP layer calls into.
type Service struct {
	store   store.Store
	sources []source.Source
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	logger  *log.Logger

	startTime time.Time
}

// New builds the store and one UDP receiver per configured port.
// Nothing is bound until Start.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Service, error) {
	serviceCtx, cancel := context.WithCancel(ctx)

	st, err := createStore(&cfg.Storage, logger)
	if err != nil {
		cancel()
		return nil, err
	}

	s := &Service{
		store:     st,
		ctx:       serviceCtx,
		cancel:    cancel,
		logger:    logger,
		startTime: time.Now(),
	}

	for _, port := range cfg.Syslog.Ports {
		src, err := source.NewUDPSource(cfg.Syslog.Host, port, cfg.Syslog.BufferSize, logger)
		if err != nil {
			s.Shutdown()
			return nil, fmt.Errorf("failed to create receiver for port %d: %w", port, err)
		}
		s.sources = append(s.sources, src)
	}

	return s, nil
}

// createStore is a factory function for the configured storage backend.
func createStore(cfg *config.StorageConfig, logger *log.Logger) (store.Store, error) {
	switch cfg.Backend {
	case "file":
		return store.NewFileStore(cfg.Directory, int(cfg.ReadLimit), cfg.SyncOnWrite, logger)
	case "memory":
		return store.NewMemoryStore(int(cfg.MemoryCap), logger), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}

// Start binds every receiver and wires it to the store. A bind failure
// disables that one listener only; Start errors when no listener came
// up at all.
func (s *Service) Start() error {
	started := 0
	for _, src := range s.sources {
		stats := src.GetStats()
		if err := src.Start(); err != nil {
			s.logger.Error("msg", "Receiver failed to start",
				"component", "service",
				"port", stats.Port,
				"error", err)
			continue
		}
		s.wireSource(src)
		started++
	}

	if started == 0 {
		return fmt.Errorf("no receivers successfully started (attempted %d)", len(s.sources))
	}

	s.logger.Info("msg", "Service started",
		"component", "service",
		"receivers", started,
		"backend", s.store.GetStats().Backend)

	return nil
}

// wireSource pumps one receiver's records into the store. One goroutine
// per port keeps appends sequential, so file order equals arrival order.
func (s *Service) wireSource(src source.Source) {
	records := src.Subscribe()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		for {
			select {
			case <-s.ctx.Done():
				return
			case record, ok := <-records:
				if !ok {
					return
				}

				if err := s.store.Append(record); err != nil {
					// That record is lost; ingestion continues.
					// The store counts the failure
					s.logger.Error("msg", "Failed to append record",
						"component", "service",
						"port", record.Port,
						"error", err)
				}
			}
		}
	}()
}

// Query returns recent records merged across all ports, optionally
// filtered (case-insensitive substring) and capped to the most recent
// limit. It fails only when the storage itself is inaccessible.
func (s *Service) Query(filter string, limit int) ([]core.LogRecord, error) {
	return s.store.Query(filter, limit)
}

// GetStats returns statistics for all receivers and the store.
func (s *Service) GetStats() map[string]any {
	receivers := make([]map[string]any, 0, len(s.sources))
	for _, src := range s.sources {
		stats := src.GetStats()
		receivers = append(receivers, map[string]any{
			"port":            stats.Port,
			"total_records":   stats.TotalRecords,
			"dropped_records": stats.DroppedRecords,
			"last_record":     stats.LastRecordTime,
			"details":         stats.Details,
		})
	}

	storeStats := s.store.GetStats()

	return map[string]any{
		"uptime_seconds": int(time.Since(s.startTime).Seconds()),
		"receivers":      receivers,
		"storage": map[string]any{
			"backend":         storeStats.Backend,
			"total_appended":  storeStats.TotalAppended,
			"append_failures": storeStats.AppendFailures,
			"parse_failures":  storeStats.ParseFailures,
			"details":         storeStats.Details,
		},
	}
}

// Shutdown stops all receivers, drains the wiring goroutines, and
// closes the store.
func (s *Service) Shutdown() {
	s.logger.Info("msg", "Service shutdown initiated", "component", "service")

	var wg sync.WaitGroup
	for _, src := range s.sources {
		wg.Add(1)
		go func(src source.Source) {
			defer wg.Done()
			src.Stop()
		}(src)
	}
	wg.Wait()

	s.cancel()
	s.wg.Wait()

	s.store.Close()

	s.logger.Info("msg", "Service shutdown complete", "component", "service")
}
