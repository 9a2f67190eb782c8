// internal/discovery/udev/provider.go
package udev

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"panel-link/internal/discovery"
	"panel-link/internal/model"

	"go.uber.org/zap"
)

// udev property keys
const (
	PropVendorID    = "ID_VENDOR_ID"
	PropModelID     = "ID_MODEL_ID"
	PropSerialShort = "ID_SERIAL_SHORT"
	PropSerial      = "ID_SERIAL"
	PropModel       = "ID_MODEL"
	PropVendor      = "ID_VENDOR"
)

// Runner executes a command and returns its standard output
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs the command with os/exec
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Provider reads device identity from the udev database via udevadm
type Provider struct {
	udevadm string
	run     Runner
	logger  *zap.Logger
}

// NewProvider creates a provider. An empty path defaults to "udevadm" on PATH.
func NewProvider(udevadmPath string, run Runner, logger *zap.Logger) *Provider {
	if udevadmPath == "" {
		udevadmPath = "udevadm"
	}
	if run == nil {
		run = ExecRunner
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		udevadm: udevadmPath,
		run:     run,
		logger:  logger.With(zap.String("component", "udev")),
	}
}

// Identify runs `udevadm info -q property -n <dev>`
func (p *Provider) Identify(ctx context.Context, realPath string) (model.Identity, error) {
	out, err := p.run(ctx, p.udevadm, "info", "-q", "property", "-n", realPath)
	if err != nil {
		return model.Identity{}, fmt.Errorf("%w: udevadm %s: %v", discovery.ErrMetadataUnavailable, realPath, err)
	}

	props := ParseProperties(out)
	p.logger.Debug("udev properties read",
		zap.String("device", realPath),
		zap.Int("properties", len(props)),
	)
	return IdentityFromProperties(props), nil
}

// ParseProperties parses KEY=VALUE lines. Lines without '=' are ignored.
func ParseProperties(out []byte) map[string]string {
	props := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		key, value, ok := strings.Cut(line, "=")
		if !ok || key == "" {
			continue
		}
		props[key] = value
	}
	return props
}

// IdentityFromProperties maps udev keys onto an identity.
// ID_SERIAL is used when ID_SERIAL_SHORT is absent.
func IdentityFromProperties(props map[string]string) model.Identity {
	serial, ok := props[PropSerialShort]
	if !ok {
		serial = props[PropSerial]
	}
	return model.Identity{
		VendorID:  props[PropVendorID],
		ProductID: props[PropModelID],
		Serial:    serial,
		Product:   props[PropModel],
		Vendor:    props[PropVendor],
	}
}
