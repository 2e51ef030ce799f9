// FILE: logport/src/internal/source/udp.go
package source

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"logport/src/internal/core"

	"github.com/lixenwraith/log"
	"github.com/lixenwraith/log/compat"
	"github.com/panjf2000/gnet/v2"
)

// Receives syslog datagrams on a single UDP port
type UDPSource struct {
	host        string
	port        int64
	bufferSize  int64
	server      *udpSourceServer
	subscribers []chan core.LogRecord
	mu          sync.RWMutex
	done        chan struct{}
	closeOnce   sync.Once
	engine      *gnet.Engine
	engineMu    sync.Mutex
	wg          sync.WaitGroup
	logger      *log.Logger

	// Statistics
	totalRecords   atomic.Uint64
	droppedRecords atomic.Uint64
	emptyPayloads  atomic.Uint64
	startTime      time.Time
	lastRecordTime atomic.Value // time.Time
}

// Creates a new UDP receiver bound to host:port
func NewUDPSource(host string, port int64, bufferSize int64, logger *log.Logger) (*UDPSource, error) {
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("udp source requires a valid port, got %d", port)
	}
	if host == "" {
		host = "0.0.0.0"
	}
	if bufferSize < 1 {
		bufferSize = core.DefaultBufferSize
	}

	u := &UDPSource{
		host:       host,
		port:       port,
		bufferSize: bufferSize,
		done:       make(chan struct{}),
		startTime:  time.Now(),
		logger:     logger,
	}
	u.lastRecordTime.Store(time.Time{})

	return u, nil
}

func (u *UDPSource) Subscribe() <-chan core.LogRecord {
	u.mu.Lock()
	defer u.mu.Unlock()

	ch := make(chan core.LogRecord, u.bufferSize)
	u.subscribers = append(u.subscribers, ch)
	return ch
}

func (u *UDPSource) Start() error {
	u.server = &udpSourceServer{source: u}

	addr := fmt.Sprintf("udp://%s:%d", u.host, u.port)

	gnetLogger := compat.NewGnetAdapter(u.logger)

	// Single event loop keeps datagram handling sequential, so append
	// order equals arrival order for this port
	errChan := make(chan error, 1)
	u.wg.Add(1)
	go func() {
		defer u.wg.Done()
		u.logger.Info("msg", "UDP receiver starting",
			"component", "udp_source",
			"port", u.port)

		err := gnet.Run(u.server, addr,
			gnet.WithLogger(gnetLogger),
		)
		if err != nil {
			u.logger.Error("msg", "UDP receiver failed",
				"component", "udp_source",
				"port", u.port,
				"error", err)
		}
		errChan <- err
	}()

	// Wait briefly for the listener to bind or fail
	select {
	case err := <-errChan:
		u.closeOnce.Do(func() { close(u.done) })
		u.wg.Wait()
		if u.port < 1024 && strings.Contains(err.Error(), "permission denied") {
			return fmt.Errorf("bind udp port %d: %w (reserved port, run privileged or use a port above 1024)", u.port, err)
		}
		return fmt.Errorf("bind udp port %d: %w", u.port, err)
	case <-time.After(100 * time.Millisecond):
		u.logger.Info("msg", "UDP receiver started", "port", u.port)
		return nil
	}
}

func (u *UDPSource) Stop() {
	u.logger.Info("msg", "Stopping UDP receiver", "port", u.port)
	u.closeOnce.Do(func() { close(u.done) })

	u.engineMu.Lock()
	engine := u.engine
	u.engineMu.Unlock()

	if engine != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		(*engine).Stop(ctx)
	}

	u.wg.Wait()

	u.mu.Lock()
	for _, ch := range u.subscribers {
		close(ch)
	}
	u.subscribers = nil
	u.mu.Unlock()

	u.logger.Info("msg", "UDP receiver stopped", "port", u.port)
}

func (u *UDPSource) GetStats() SourceStats {
	lastRecord, _ := u.lastRecordTime.Load().(time.Time)

	return SourceStats{
		Type:           "udp",
		Port:           u.port,
		TotalRecords:   u.totalRecords.Load(),
		DroppedRecords: u.droppedRecords.Load(),
		StartTime:      u.startTime,
		LastRecordTime: lastRecord,
		Details: map[string]any{
			"host":           u.host,
			"empty_payloads": u.emptyPayloads.Load(),
		},
	}
}

// Port returns the UDP port this receiver is bound to.
func (u *UDPSource) Port() int64 {
	return u.port
}

func (u *UDPSource) publish(record core.LogRecord) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	u.totalRecords.Add(1)
	u.lastRecordTime.Store(record.Time)

	dropped := false
	for _, ch := range u.subscribers {
		select {
		case ch <- record:
		default:
			dropped = true
			u.droppedRecords.Add(1)
		}
	}

	if dropped {
		u.logger.Debug("msg", "Dropped log record - subscriber buffer full",
			"component", "udp_source",
			"port", u.port)
	}
}

// decodePayload turns a raw datagram into message text. Invalid UTF-8
// bytes are replaced rather than dropped; a payload that decodes to
// nothing still yields a record so the arrival stays visible.
func decodePayload(data []byte) string {
	data = bytes.TrimRight(data, "\r\n\x00")

	var msg string
	if utf8.Valid(data) {
		msg = string(data)
	} else {
		msg = strings.ToValidUTF8(string(data), string(utf8.RuneError))
	}

	if msg == "" {
		return core.UnreadablePayload
	}
	return msg
}

// Handles gnet events for one UDP socket
type udpSourceServer struct {
	gnet.BuiltinEventEngine
	source *UDPSource
}

func (s *udpSourceServer) OnBoot(eng gnet.Engine) gnet.Action {
	s.source.engineMu.Lock()
	s.source.engine = &eng
	s.source.engineMu.Unlock()

	s.source.logger.Debug("msg", "UDP receiver booted",
		"component", "udp_source",
		"port", s.source.port)
	return gnet.None
}

func (s *udpSourceServer) OnTraffic(c gnet.Conn) gnet.Action {
	data, err := c.Next(-1)
	if err != nil {
		s.source.logger.Error("msg", "Error reading datagram",
			"component", "udp_source",
			"port", s.source.port,
			"error", err)
		return gnet.None
	}

	msg := decodePayload(data)
	if msg == core.UnreadablePayload {
		s.source.emptyPayloads.Add(1)
	}

	record := core.LogRecord{
		Time:    time.Now(),
		Port:    s.source.port,
		Message: msg,
	}
	if addr := c.RemoteAddr(); addr != nil {
		record.Address = addr.String()
	}

	s.source.publish(record)
	return gnet.None
}
