// FILE: logport/src/internal/store/memory.go
package store

import (
	"sync"
	"sync/atomic"

	"logport/src/internal/core"

	"github.com/lixenwraith/log"
)

// MemoryStore keeps the newest records in a bounded ring for
// deployments that prefer ephemeral storage over files. A single
// collector goroutine owns the ring; receivers reach it only through
// message passing, so no shared-memory append exists.
type MemoryStore struct {
	capacity int
	input    chan core.LogRecord
	queries  chan memoryQuery
	done     chan struct{}
	wg       sync.WaitGroup
	logger   *log.Logger

	// Statistics
	totalAppended  atomic.Uint64
	appendFailures atomic.Uint64
	evicted        atomic.Uint64
}

type memoryQuery struct {
	filter string
	limit  int
	reply  chan []core.LogRecord
}

// NewMemoryStore creates the store and starts its collector.
func NewMemoryStore(capacity int, logger *log.Logger) *MemoryStore {
	if capacity < 1 {
		capacity = core.DefaultMemoryCap
	}

	ms := &MemoryStore{
		capacity: capacity,
		input:    make(chan core.LogRecord, capacity),
		queries:  make(chan memoryQuery),
		done:     make(chan struct{}),
		logger:   logger,
	}

	ms.wg.Add(1)
	go ms.collectorLoop()

	return ms
}

func (ms *MemoryStore) Append(record core.LogRecord) error {
	// Checked first: with buffer room both select cases below could be
	// ready after Close, and the send must not win then
	select {
	case <-ms.done:
		ms.appendFailures.Add(1)
		return ErrClosed
	default:
	}

	select {
	case ms.input <- record:
		return nil
	case <-ms.done:
		ms.appendFailures.Add(1)
		return ErrClosed
	}
}

func (ms *MemoryStore) Query(filter string, limit int) ([]core.LogRecord, error) {
	q := memoryQuery{
		filter: filter,
		limit:  limit,
		reply:  make(chan []core.LogRecord, 1),
	}

	select {
	case ms.queries <- q:
		return <-q.reply, nil
	case <-ms.done:
		return nil, ErrClosed
	}
}

func (ms *MemoryStore) GetStats() StoreStats {
	return StoreStats{
		Backend:        "memory",
		TotalAppended:  ms.totalAppended.Load(),
		AppendFailures: ms.appendFailures.Load(),
		Details: map[string]any{
			"capacity": ms.capacity,
			"evicted":  ms.evicted.Load(),
		},
	}
}

func (ms *MemoryStore) Close() {
	select {
	case <-ms.done:
		return
	default:
	}
	close(ms.done)
	ms.wg.Wait()
}

// collectorLoop is the sole owner of the ring buffer.
func (ms *MemoryStore) collectorLoop() {
	defer ms.wg.Done()

	ring := make([]core.LogRecord, ms.capacity)
	next := 0
	count := 0

	ingest := func(record core.LogRecord) {
		if count == ms.capacity {
			ms.evicted.Add(1)
		} else {
			count++
		}
		ring[next] = record
		next = (next + 1) % ms.capacity
		ms.totalAppended.Add(1)
	}

	for {
		select {
		case record := <-ms.input:
			ingest(record)

		case q := <-ms.queries:
			// Drain pending appends first so a caller that appended
			// before querying observes its own records
			for drained := false; !drained; {
				select {
				case record := <-ms.input:
					ingest(record)
				default:
					drained = true
				}
			}

			// Snapshot in arrival order, oldest first
			snapshot := make([]core.LogRecord, 0, count)
			start := next - count
			if start < 0 {
				start += ms.capacity
			}
			for i := 0; i < count; i++ {
				snapshot = append(snapshot, ring[(start+i)%ms.capacity])
			}
			q.reply <- aggregate(snapshot, q.filter, q.limit)

		case <-ms.done:
			return
		}
	}
}
