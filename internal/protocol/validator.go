// internal/protocol/validator.go
package protocol

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"panel-link/internal/discovery"
	"panel-link/internal/protocol/termios"
	"panel-link/internal/utils"

	"go.uber.org/zap"
)

// DefaultProbeWindow is how long a candidate is listened to
const DefaultProbeWindow = 2 * time.Second

// Signatures are byte sequences only the panel firmware emits
var Signatures = [][]byte{
	[]byte(`"type":"telemetry"`),
	[]byte(`"proto":1`),
}

// ProbeResult describes one bounded capture
type ProbeResult struct {
	Port      string        `json:"port"`
	Window    time.Duration `json:"window"`
	Bytes     int           `json:"bytes"`
	Valid     bool          `json:"valid"`
	Signature string        `json:"signature,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// Validator listens to a device for a bounded window and looks for protocol signatures
type Validator struct {
	configurator termios.Configurator
	dial         Dialer
	baudRate     int
	window       time.Duration
	logger       *zap.Logger
}

// NewValidator creates a validator. A zero window uses DefaultProbeWindow.
func NewValidator(configurator termios.Configurator, dial Dialer, baudRate int, window time.Duration, logger *zap.Logger) *Validator {
	if window <= 0 {
		window = DefaultProbeWindow
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{
		configurator: configurator,
		dial:         dial,
		baudRate:     baudRate,
		window:       window,
		logger:       logger,
	}
}

// Validate reports whether realPath emitted a protocol signature within the window.
// Failures to configure, open or read count as not valid.
func (v *Validator) Validate(ctx context.Context, realPath string) bool {
	return v.Probe(ctx, realPath, v.window).Valid
}

// Check is Validate returning ErrValidationFailed with the cause attached
func (v *Validator) Check(ctx context.Context, realPath string) error {
	result := v.Probe(ctx, realPath, v.window)
	if result.Valid {
		return nil
	}
	if result.Error != "" {
		return fmt.Errorf("%w: %s: %s", discovery.ErrValidationFailed, realPath, result.Error)
	}
	return fmt.Errorf("%w: %s: no signature in %d bytes", discovery.ErrValidationFailed, realPath, result.Bytes)
}

// Probe captures for window and reports what was seen
func (v *Validator) Probe(ctx context.Context, realPath string, window time.Duration) ProbeResult {
	if window <= 0 {
		window = v.window
	}
	result := ProbeResult{Port: realPath, Window: window}
	deviceLogger := utils.NewDeviceLogger(v.logger, realPath)

	captured, err := v.capture(ctx, realPath, window)
	result.Bytes = len(captured)
	if err != nil {
		result.Error = err.Error()
		deviceLogger.LogProbe(window, result.Bytes, false, err)
		return result
	}

	if sig := FindSignature(captured); sig != nil {
		result.Valid = true
		result.Signature = string(sig)
	}
	deviceLogger.LogProbe(window, result.Bytes, result.Valid, nil)
	return result
}

func (v *Validator) capture(ctx context.Context, realPath string, window time.Duration) ([]byte, error) {
	if err := v.configurator.Configure(ctx, realPath, termios.PanelLine(v.baudRate)); err != nil {
		return nil, fmt.Errorf("configure line: %w", err)
	}

	conn, err := v.dial(realPath)
	if err != nil {
		return nil, err
	}
	if err := conn.Open(ctx); err != nil {
		return nil, err
	}
	defer conn.Close()

	return conn.Capture(ctx, window)
}

// FindSignature returns the first signature contained in data, or nil
func FindSignature(data []byte) []byte {
	for _, sig := range Signatures {
		if bytes.Contains(data, sig) {
			return sig
		}
	}
	return nil
}
