//go:build !linux

// internal/protocol/termios/configure_other.go
package termios

import (
	"context"
	"fmt"

	"go.bug.st/serial"
)

// PortMode configures the line by opening the port with the wanted mode.
// go.bug.st/serial always opens in raw mode without echo.
type PortMode struct{}

// NewConfigurator returns the platform line configurator
func NewConfigurator() Configurator {
	return PortMode{}
}

func (PortMode) Configure(ctx context.Context, path string, cfg LineConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if cfg.BaudRate <= 0 {
		return fmt.Errorf("%w: %d", ErrUnsupportedBaud, cfg.BaudRate)
	}

	port, err := serial.Open(path, &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	return port.Close()
}
