// FILE: logport/src/internal/source/source.go
package source

import (
	"time"

	"logport/src/internal/core"
)

// Represents an input datagram stream
type Source interface {
	// Returns a channel that receives log records
	Subscribe() <-chan core.LogRecord

	// Begins receiving from the source
	Start() error

	// Gracefully shuts down the source
	Stop()

	// Returns source statistics
	GetStats() SourceStats
}

// Contains statistics about a source
type SourceStats struct {
	Type           string
	Port           int64
	TotalRecords   uint64
	DroppedRecords uint64
	StartTime      time.Time
	LastRecordTime time.Time
	Details        map[string]any
}
