// FILE: logport/src/internal/store/file_test.go
package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastjson"
)

func newTestLogger() *log.Logger {
	return log.NewLogger()
}

func newTestFileStore(t *testing.T, readLimit int) (*FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFileStore(dir, readLimit, false, newTestLogger())
	require.NoError(t, err)
	t.Cleanup(fs.Close)
	return fs, dir
}

func TestFileStore_AppendGoesToOwningPortFile(t *testing.T) {
	fs, dir := newTestFileStore(t, 100)

	base := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, fs.Append(record(base, 514, "10.0.0.1:999", "alpha")))
	require.NoError(t, fs.Append(record(base.Add(time.Second), 1514, "10.0.0.2:999", "beta")))

	data514, err := os.ReadFile(filepath.Join(dir, "514.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data514), "alpha")
	assert.NotContains(t, string(data514), "beta")

	data1514, err := os.ReadFile(filepath.Join(dir, "1514.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data1514), "beta")
	assert.NotContains(t, string(data1514), "alpha")
}

func TestFileStore_ReadBackPreservesArrivalOrder(t *testing.T) {
	fs, _ := newTestFileStore(t, 100)

	base := time.Now().UTC()
	for i := 0; i < 10; i++ {
		require.NoError(t, fs.Append(record(base.Add(time.Duration(i)*time.Millisecond), 514, "a", fmt.Sprintf("msg-%d", i))))
	}

	out, err := fs.Query("", 0)
	require.NoError(t, err)
	require.Len(t, out, 10)
	for i, rec := range out {
		assert.Equal(t, fmt.Sprintf("msg-%d", i), rec.Message)
	}
}

func TestFileStore_ReadLimitBoundsPerFile(t *testing.T) {
	fs, _ := newTestFileStore(t, 5)

	base := time.Now().UTC()
	for i := 0; i < 20; i++ {
		require.NoError(t, fs.Append(record(base.Add(time.Duration(i)*time.Millisecond), 514, "a", fmt.Sprintf("msg-%d", i))))
	}

	out, err := fs.Query("", 0)
	require.NoError(t, err)
	require.Len(t, out, 5)
	// Tail read keeps the most recent lines
	assert.Equal(t, "msg-15", out[0].Message)
	assert.Equal(t, "msg-19", out[4].Message)
}

func TestFileStore_MergesAcrossFilesInTimeOrder(t *testing.T) {
	fs, _ := newTestFileStore(t, 100)

	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	// Port 514 holds t1 and t3, port 1514 holds t2
	require.NoError(t, fs.Append(record(base, 514, "a", "t1")))
	require.NoError(t, fs.Append(record(base.Add(2*time.Second), 514, "a", "t3")))
	require.NoError(t, fs.Append(record(base.Add(time.Second), 1514, "b", "t2")))

	out, err := fs.Query("", 0)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "t1", out[0].Message)
	assert.Equal(t, "t2", out[1].Message)
	assert.Equal(t, "t3", out[2].Message)
}

func TestFileStore_MalformedLineSkippedNotFatal(t *testing.T) {
	fs, dir := newTestFileStore(t, 100)

	base := time.Now().UTC()
	require.NoError(t, fs.Append(record(base, 514, "a", "before")))

	// Simulate a torn write between two good records
	f, err := os.OpenFile(filepath.Join(dir, "514.log"), os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("{\"timestamp\":\"2026-08-\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, fs.Append(record(base.Add(time.Second), 514, "a", "after")))

	out, err := fs.Query("", 0)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "before", out[0].Message)
	assert.Equal(t, "after", out[1].Message)
	assert.Equal(t, uint64(1), fs.GetStats().ParseFailures)
}

func TestFileStore_IgnoresForeignFiles(t *testing.T) {
	fs, dir := newTestFileStore(t, 100)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a record\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "web.log"), []byte("not a record\n"), 0644))

	out, err := fs.Query("", 0)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, uint64(0), fs.GetStats().ParseFailures)
}

func TestFileStore_EmptyDirectory(t *testing.T) {
	fs, _ := newTestFileStore(t, 100)

	out, err := fs.Query("", 0)
	assert.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestFileStore_MissingDirectory(t *testing.T) {
	fs, dir := newTestFileStore(t, 100)
	require.NoError(t, os.RemoveAll(dir))

	out, err := fs.Query("", 0)
	assert.NoError(t, err)
	assert.Empty(t, out)
}

func TestFileStore_InaccessibleDirectoryFailsQuery(t *testing.T) {
	fs, dir := newTestFileStore(t, 100)

	// A regular file where the directory should be makes enumeration
	// fail with a real I/O error, not a not-exist
	require.NoError(t, os.RemoveAll(dir))
	require.NoError(t, os.WriteFile(dir, []byte("not a directory"), 0644))

	_, err := fs.Query("", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read log directory")
}

func TestFileStore_AppendAfterClose(t *testing.T) {
	fs, _ := newTestFileStore(t, 100)
	fs.Close()

	err := fs.Append(record(time.Now(), 514, "a", "late"))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestFileStore_LazyFileCreation(t *testing.T) {
	fs, dir := newTestFileStore(t, 100)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, fs.Append(record(time.Now(), 9514, "a", "first write")))

	_, err = os.Stat(filepath.Join(dir, "9514.log"))
	assert.NoError(t, err)
}

func TestFileStore_ConcurrentAppendsNeverTear(t *testing.T) {
	fs, dir := newTestFileStore(t, 10000)

	// Two writers mimic two independent port receivers plus a file
	// shared by rapid appends; every resulting line must parse cleanly
	const perWriter = 500
	var wg sync.WaitGroup
	for _, port := range []int64{514, 1514} {
		wg.Add(1)
		go func(port int64) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				rec := record(time.Now(), port, "127.0.0.1:40000", fmt.Sprintf("port %d msg %d payload", port, i))
				assert.NoError(t, fs.Append(rec))
			}
		}(port)
	}
	wg.Wait()

	var p fastjson.Parser
	for _, name := range []string{"514.log", "1514.log"} {
		f, err := os.Open(filepath.Join(dir, name))
		require.NoError(t, err)

		count := 0
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			_, err := parseRecord(&p, scanner.Bytes())
			assert.NoError(t, err, "torn or malformed line in %s", name)
			count++
		}
		require.NoError(t, scanner.Err())
		require.NoError(t, f.Close())
		assert.Equal(t, perWriter, count)
	}
}
