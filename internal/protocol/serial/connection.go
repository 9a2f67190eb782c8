// internal/protocol/serial/connection.go
package serial

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"
)

// Port is the subset of serial.Port the connection uses
type Port interface {
	io.ReadWriter
	SetReadTimeout(t time.Duration) error
	Close() error
}

// Opener opens a device node with the given mode
type Opener func(path string, mode *serial.Mode) (Port, error)

// OpenPort opens a real serial port
func OpenPort(path string, mode *serial.Mode) (Port, error) {
	return serial.Open(path, mode)
}

// pollInterval bounds a single blocking read inside Capture
const pollInterval = 100 * time.Millisecond

// Connection represents a serial port connection
type Connection struct {
	config *Config
	open   Opener
	port   Port
	logger *zap.Logger
	mutex  sync.Mutex
	isOpen bool
}

// Config represents serial port configuration. The panel runs 8N1.
type Config struct {
	Port     string `json:"port"`
	BaudRate int    `json:"baud_rate"`
}

// NewConnection creates a new serial connection. A nil opener uses OpenPort.
func NewConnection(config *Config, open Opener, logger *zap.Logger) (*Connection, error) {
	if config.Port == "" {
		return nil, fmt.Errorf("port is required")
	}
	if config.BaudRate <= 0 {
		return nil, fmt.Errorf("invalid baud rate %d", config.BaudRate)
	}
	if open == nil {
		open = OpenPort
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Connection{
		config: config,
		open:   open,
		logger: logger.With(zap.String("port", config.Port)),
	}, nil
}

// Open opens the serial connection
func (c *Connection) Open(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.isOpen {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	mode := &serial.Mode{
		BaudRate: c.config.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := c.open(c.config.Port, mode)
	if err != nil {
		c.logger.Debug("Failed to open serial port", zap.Error(err))
		return fmt.Errorf("failed to open serial port %s: %w", c.config.Port, err)
	}

	c.port = port
	c.isOpen = true

	c.logger.Debug("Serial port opened", zap.Int("baud_rate", c.config.BaudRate))
	return nil
}

// Close closes the serial connection
func (c *Connection) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.isOpen || c.port == nil {
		return nil
	}

	err := c.port.Close()
	c.port = nil
	c.isOpen = false
	if err != nil {
		return fmt.Errorf("failed to close serial port: %w", err)
	}

	c.logger.Debug("Serial port closed")
	return nil
}

// Write writes data in a single call
func (c *Connection) Write(ctx context.Context, data []byte) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.isOpen || c.port == nil {
		return fmt.Errorf("port not open")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	n, err := c.port.Write(data)
	if err != nil {
		return fmt.Errorf("failed to write to serial port: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("incomplete write: wrote %d of %d bytes", n, len(data))
	}

	c.logger.Debug("Data written to serial port", zap.Int("bytes_written", n))
	return nil
}

// Capture reads everything that arrives within window. Reaching the end of
// the window or the device closing the line ends the capture normally; the
// bytes read so far are returned. Any other read error is returned with them.
func (c *Connection) Capture(ctx context.Context, window time.Duration) ([]byte, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.isOpen || c.port == nil {
		return nil, fmt.Errorf("port not open")
	}

	deadline := time.Now().Add(window)
	var captured []byte
	buf := make([]byte, 1024)

	for {
		if err := ctx.Err(); err != nil {
			return captured, err
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return captured, nil
		}
		if err := c.port.SetReadTimeout(min(remaining, pollInterval)); err != nil {
			return captured, fmt.Errorf("failed to set read timeout: %w", err)
		}

		n, err := c.port.Read(buf)
		captured = append(captured, buf[:n]...)
		if err != nil {
			if IsLineClosed(err) {
				c.logger.Debug("Line closed during capture", zap.Int("bytes", len(captured)))
				return captured, nil
			}
			return captured, fmt.Errorf("failed to read from serial port: %w", err)
		}
	}
}

// IsOpen returns whether the connection is open
func (c *Connection) IsOpen() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.isOpen
}

// IsLineClosed reports whether err means the other end went away
func IsLineClosed(err error) bool {
	if errors.Is(err, io.EOF) {
		return true
	}
	var portErr *serial.PortError
	if errors.As(err, &portErr) {
		return portErr.Code() == serial.PortClosed
	}
	return false
}
