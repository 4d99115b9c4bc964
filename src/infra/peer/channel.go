// Package peer provides the channel abstraction the sync layer runs on and
// its websocket implementation. The core only requires ordered, reliable
// delivery of opaque byte payloads per established connection; the transport
// mechanism behind that contract is interchangeable.
package peer

// Callbacks receive channel lifecycle events. Nil callbacks are skipped.
type Callbacks struct {
	OnConnect func()
	OnData    func(data []byte)
	OnError   func(err error)
	OnClose   func()
}

// Channel is one established peer connection.
type Channel interface {
	// Send queues an opaque payload for ordered delivery.
	Send(data []byte) error
	// Close tears the connection down; OnClose fires once.
	Close() error
}
