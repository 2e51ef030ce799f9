// FILE: logport/src/internal/store/file.go
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"sync/atomic"

	"logport/src/internal/core"

	json "github.com/goccy/go-json"
	"github.com/lixenwraith/log"
	"github.com/valyala/fastjson"
)

// Matches per-port file names of the form <port>.log
var portFilePattern = regexp.MustCompile(`^(\d{1,5})\.log$`)

// FileStore persists one append-only JSON-line file per source port.
// Writers own disjoint files, readers tolerate files mid-growth, and
// every record is appended with a single write so no reader observes
// a torn line.
type FileStore struct {
	directory   string
	readLimit   int
	syncOnWrite bool
	logger      *log.Logger

	mu        sync.RWMutex
	appenders map[int64]*portAppender
	closed    bool

	parserPool fastjson.ParserPool

	// Statistics
	totalAppended  atomic.Uint64
	appendFailures atomic.Uint64
	parseFailures  atomic.Uint64
}

// One open append-only file for a single port
type portAppender struct {
	file *os.File
	mu   sync.Mutex
}

// NewFileStore creates the store and its directory if absent.
func NewFileStore(directory string, readLimit int, syncOnWrite bool, logger *log.Logger) (*FileStore, error) {
	if directory == "" {
		return nil, fmt.Errorf("file store requires a directory")
	}
	if readLimit < 1 {
		readLimit = core.DefaultReadLimit
	}

	if err := os.MkdirAll(directory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", directory, err)
	}

	return &FileStore{
		directory:   directory,
		readLimit:   readLimit,
		syncOnWrite: syncOnWrite,
		logger:      logger,
		appenders:   make(map[int64]*portAppender),
	}, nil
}

// PortFileName returns the deterministic file name for a port.
func PortFileName(port int64) string {
	return fmt.Sprintf("%d.log", port)
}

// Append serializes the record and appends it to its port's file.
// The line plus newline goes out in one write on an O_APPEND
// descriptor, which keeps concurrent appends and reads torn-free.
func (fs *FileStore) Append(record core.LogRecord) error {
	appender, err := fs.appender(record.Port)
	if err != nil {
		fs.appendFailures.Add(1)
		return err
	}

	data, err := json.Marshal(record)
	if err != nil {
		fs.appendFailures.Add(1)
		return fmt.Errorf("failed to serialize record: %w", err)
	}
	data = append(data, '\n')

	appender.mu.Lock()
	defer appender.mu.Unlock()

	if _, err := appender.file.Write(data); err != nil {
		fs.appendFailures.Add(1)
		return fmt.Errorf("failed to append to %s: %w", appender.file.Name(), err)
	}
	if fs.syncOnWrite {
		if err := appender.file.Sync(); err != nil {
			fs.appendFailures.Add(1)
			return fmt.Errorf("failed to sync %s: %w", appender.file.Name(), err)
		}
	}

	fs.totalAppended.Add(1)
	return nil
}

// appender returns the open file for a port, creating it lazily.
func (fs *FileStore) appender(port int64) (*portAppender, error) {
	fs.mu.RLock()
	appender, exists := fs.appenders[port]
	closed := fs.closed
	fs.mu.RUnlock()

	if closed {
		return nil, ErrClosed
	}
	if exists {
		return appender, nil
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.closed {
		return nil, ErrClosed
	}
	if appender, exists = fs.appenders[port]; exists {
		return appender, nil
	}

	path := filepath.Join(fs.directory, PortFileName(port))
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	appender = &portAppender{file: file}
	fs.appenders[port] = appender

	fs.logger.Debug("msg", "Opened port log file",
		"component", "file_store",
		"port", port,
		"path", path)

	return appender, nil
}

// Query tail-reads every per-port file in the directory, merges the
// parsed records, and applies filter, sort, and cap in that order.
// Only a directory-level failure is an error; absent or unreadable
// individual files contribute zero records.
func (fs *FileStore) Query(filter string, limit int) ([]core.LogRecord, error) {
	entries, err := os.ReadDir(fs.directory)
	if err != nil {
		if os.IsNotExist(err) {
			return []core.LogRecord{}, nil
		}
		return nil, fmt.Errorf("failed to read log directory %s: %w", fs.directory, err)
	}

	parser := fs.parserPool.Get()
	defer fs.parserPool.Put(parser)

	var records []core.LogRecord
	for _, entry := range entries {
		if entry.IsDir() || !portFilePattern.MatchString(entry.Name()) {
			continue
		}

		path := filepath.Join(fs.directory, entry.Name())
		lines, err := tailLines(path, fs.readLimit)
		if err != nil {
			if !os.IsNotExist(err) {
				fs.logger.Warn("msg", "Failed to read port log file",
					"component", "file_store",
					"path", path,
					"error", err)
			}
			continue
		}

		for _, line := range lines {
			if len(line) == 0 {
				continue
			}
			record, err := parseRecord(parser, line)
			if err != nil {
				fs.parseFailures.Add(1)
				fs.logger.Debug("msg", "Skipped malformed record line",
					"component", "file_store",
					"path", path,
					"error", err)
				continue
			}
			records = append(records, record)
		}
	}

	if records == nil {
		records = []core.LogRecord{}
	}

	return aggregate(records, filter, limit), nil
}

func (fs *FileStore) GetStats() StoreStats {
	fs.mu.RLock()
	openFiles := len(fs.appenders)
	fs.mu.RUnlock()

	return StoreStats{
		Backend:        "file",
		TotalAppended:  fs.totalAppended.Load(),
		AppendFailures: fs.appendFailures.Load(),
		ParseFailures:  fs.parseFailures.Load(),
		Details: map[string]any{
			"directory":     fs.directory,
			"read_limit":    fs.readLimit,
			"sync_on_write": fs.syncOnWrite,
			"open_files":    openFiles,
		},
	}
}

// Close closes all open port files. Subsequent appends fail with ErrClosed.
func (fs *FileStore) Close() {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.closed {
		return
	}
	fs.closed = true

	for port, appender := range fs.appenders {
		appender.mu.Lock()
		if err := appender.file.Close(); err != nil {
			fs.logger.Warn("msg", "Failed to close port log file",
				"component", "file_store",
				"port", port,
				"error", err)
		}
		appender.mu.Unlock()
	}
	fs.appenders = make(map[int64]*portAppender)
}
