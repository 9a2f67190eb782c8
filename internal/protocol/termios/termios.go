// internal/protocol/termios/termios.go
package termios

import (
	"context"
	"errors"
)

// ErrUnsupportedBaud is returned for rates the line discipline cannot express
var ErrUnsupportedBaud = errors.New("unsupported baud rate")

// LineConfig holds the line parameters applied before talking to the panel
type LineConfig struct {
	BaudRate int
	Raw      bool
	Echo     bool
}

// PanelLine is 115200 baud, raw, no echo
func PanelLine(baud int) LineConfig {
	return LineConfig{BaudRate: baud, Raw: true, Echo: false}
}

// Configurator applies line parameters to a device node
type Configurator interface {
	Configure(ctx context.Context, path string, cfg LineConfig) error
}

// ConfiguratorFunc adapts a function to Configurator
type ConfiguratorFunc func(ctx context.Context, path string, cfg LineConfig) error

func (f ConfiguratorFunc) Configure(ctx context.Context, path string, cfg LineConfig) error {
	return f(ctx, path, cfg)
}
