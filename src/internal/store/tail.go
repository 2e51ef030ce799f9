// FILE: logport/src/internal/store/tail.go
package store

import (
	"bytes"
	"os"
)

const tailChunkSize = 32 * 1024

// tailLines reads at most max lines from the end of the file, returned
// in file order. The file is scanned backwards in chunks so read cost
// depends on max, not on total file size. The final element may be an
// unterminated line still being appended; callers treat lines that
// fail to parse as absent.
func tailLines(path string, max int) ([][]byte, error) {
	if max < 1 {
		return nil, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}

	size := info.Size()
	if size == 0 {
		return nil, nil
	}

	var buf []byte
	offset := size

	// Read backwards until the buffer spans max complete lines (max+1
	// newlines) or the start of the file
	for offset > 0 && bytes.Count(buf, []byte{'\n'}) <= max {
		chunkLen := int64(tailChunkSize)
		if offset < chunkLen {
			chunkLen = offset
		}
		offset -= chunkLen

		chunk := make([]byte, chunkLen)
		if _, err := file.ReadAt(chunk, offset); err != nil {
			return nil, err
		}
		buf = append(chunk, buf...)
	}

	// Drop the partial line preceding the first newline when the scan
	// stopped mid-file
	if offset > 0 {
		if idx := bytes.IndexByte(buf, '\n'); idx >= 0 {
			buf = buf[idx+1:]
		}
	}

	lines := bytes.Split(buf, []byte{'\n'})

	// A trailing newline leaves one empty tail element
	if len(lines) > 0 && len(lines[len(lines)-1]) == 0 {
		lines = lines[:len(lines)-1]
	}

	if len(lines) > max {
		lines = lines[len(lines)-max:]
	}

	return lines, nil
}
