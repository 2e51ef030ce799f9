// FILE: logport/src/internal/core/const.go
package core

const (
	// Substituted for datagrams whose payload decodes to nothing.
	// Arrival is still recorded so that unreadable traffic stays visible.
	UnreadablePayload = "<unreadable datagram>"

	// Default capacity of each receiver's subscriber channel.
	DefaultBufferSize = 1000

	// Default number of lines tail-read per port file during a query.
	DefaultReadLimit = 2000

	// Default ring capacity of the in-memory store.
	DefaultMemoryCap = 2000
)
