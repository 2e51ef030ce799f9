// FILE: logport/src/internal/store/aggregate.go
package store

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"logport/src/internal/core"

	"github.com/valyala/fastjson"
)

// parseRecord decodes one persisted line back into a record. Any
// structural defect fails the whole line; callers skip it and move on.
func parseRecord(p *fastjson.Parser, line []byte) (core.LogRecord, error) {
	v, err := p.ParseBytes(line)
	if err != nil {
		return core.LogRecord{}, err
	}

	tsBytes := v.GetStringBytes("timestamp")
	if tsBytes == nil {
		return core.LogRecord{}, fmt.Errorf("missing timestamp")
	}
	ts, err := time.Parse(time.RFC3339Nano, string(tsBytes))
	if err != nil {
		return core.LogRecord{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	port := v.GetInt64("port")
	if port < 1 || port > 65535 {
		return core.LogRecord{}, fmt.Errorf("invalid port: %d", port)
	}

	msgBytes := v.GetStringBytes("message")
	if msgBytes == nil {
		return core.LogRecord{}, fmt.Errorf("missing message")
	}

	return core.LogRecord{
		Time:    ts,
		Port:    port,
		Address: string(v.GetStringBytes("address")),
		Message: string(msgBytes),
	}, nil
}

// sortByTime orders records by timestamp ascending. The sort is stable
// so sub-second ties keep their original read order.
func sortByTime(records []core.LogRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Time.Before(records[j].Time)
	})
}

// matchesFilter reports whether the record contains the filter substring
// in its message, address, or port, case-insensitively. An empty filter
// matches everything.
func matchesFilter(record core.LogRecord, filter string) bool {
	if filter == "" {
		return true
	}
	filter = strings.ToLower(filter)
	if strings.Contains(strings.ToLower(record.Message), filter) {
		return true
	}
	if strings.Contains(strings.ToLower(record.Address), filter) {
		return true
	}
	return strings.Contains(strconv.FormatInt(record.Port, 10), filter)
}

// filterRecords retains records matching the filter, preserving order.
func filterRecords(records []core.LogRecord, filter string) []core.LogRecord {
	if filter == "" {
		return records
	}

	filtered := records[:0]
	for _, record := range records {
		if matchesFilter(record, filter) {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

// capRecords keeps the last limit records of an already sorted slice,
// so the cap always retains the most recent matches. A non-positive
// limit disables capping.
func capRecords(records []core.LogRecord, limit int) []core.LogRecord {
	if limit <= 0 || len(records) <= limit {
		return records
	}
	return records[len(records)-limit:]
}

// aggregate applies the read-side pipeline: filter, then sort, then
// cap. Truncation after sorting guarantees "most recent" holds
// against the full filtered set.
func aggregate(records []core.LogRecord, filter string, limit int) []core.LogRecord {
	records = filterRecords(records, filter)
	sortByTime(records)
	return capRecords(records, limit)
}
