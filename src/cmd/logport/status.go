// FILE: logport/src/cmd/logport/status.go
package main

import (
	"context"
	"time"

	"logport/src/internal/service"
)

// Periodically logs collector status
func statusReporter(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := svc.GetStats()

			storage, _ := stats["storage"].(map[string]any)
			logger.Debug("msg", "Status report",
				"component", "status_reporter",
				"uptime_seconds", stats["uptime_seconds"],
				"total_appended", storage["total_appended"],
				"append_failures", storage["append_failures"])
		}
	}
}
