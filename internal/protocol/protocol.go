// internal/protocol/protocol.go
package protocol

import (
	"context"
	"time"

	"panel-link/internal/protocol/serial"

	"go.uber.org/zap"
)

// Transport is an open byte link to the panel
type Transport interface {
	// Connection lifecycle
	Open(ctx context.Context) error
	Close() error

	// Data communication
	Write(ctx context.Context, data []byte) error
	Capture(ctx context.Context, window time.Duration) ([]byte, error)
}

// Dialer creates an unopened transport for a device node
type Dialer func(path string) (Transport, error)

// SerialDialer returns a dialer producing go.bug.st/serial connections.
// A nil opener uses the real port.
func SerialDialer(baudRate int, open serial.Opener, logger *zap.Logger) Dialer {
	return func(path string) (Transport, error) {
		return serial.NewConnection(&serial.Config{Port: path, BaudRate: baudRate}, open, logger)
	}
}
