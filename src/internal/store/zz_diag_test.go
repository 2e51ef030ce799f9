package store

import (
	"testing"
	"time"

	"logport/src/internal/core"
)

func TestZZDiag(t *testing.T) {
	r := record(time.Now(), 514, "a", "connection denied")
	t.Logf("matchesFilter=%v", matchesFilter(r, "deny"))
	recs := []core.LogRecord{r}
	t.Logf("filterRecords=%v", filterRecords(recs, "deny"))
	t.Logf("aggregate=%v", aggregate(recs, "deny", 0))
	recs2 := []core.LogRecord{record(time.Now(), 514, "a", "deny 1")}
	t.Logf("aggregate2=%v", aggregate(recs2, "deny", 2))
}
