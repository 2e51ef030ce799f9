// FILE: logport/src/internal/store/store.go
package store

import (
	"errors"

	"logport/src/internal/core"
)

// ErrClosed is returned for operations on a store that has been shut down.
var ErrClosed = errors.New("store is closed")

// Represents a record store backing the query façade
type Store interface {
	// Persists a single record; failures affect that record only
	Append(record core.LogRecord) error

	// Returns recent records merged across all ports, time-ordered
	// ascending, optionally filtered and capped to the most recent limit
	Query(filter string, limit int) ([]core.LogRecord, error)

	// Returns store statistics
	GetStats() StoreStats

	// Releases store resources
	Close()
}

// Contains statistics about a store
type StoreStats struct {
	Backend        string
	TotalAppended  uint64
	AppendFailures uint64
	ParseFailures  uint64
	Details        map[string]any
}
