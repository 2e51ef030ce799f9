// FILE: logport/src/internal/core/record.go
package core

import "time"

// LogRecord is a single syslog datagram as captured by a receiver.
// The timestamp is assigned at arrival; embedded syslog timestamps
// are not trusted. Records are immutable once created.
type LogRecord struct {
	Time    time.Time `json:"timestamp"`
	Port    int64     `json:"port"`
	Address string    `json:"address"`
	Message string    `json:"message"`
}
