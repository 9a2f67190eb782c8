// internal/discovery/portlist/provider.go
package portlist

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"panel-link/internal/discovery"
	"panel-link/internal/model"

	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"
)

// ListFunc returns the detailed port list
type ListFunc func() ([]*enumerator.PortDetails, error)

// Provider reads device identity from the platform serial enumerator.
// It serves hosts without udev.
type Provider struct {
	list   ListFunc
	logger *zap.Logger
}

// NewProvider creates a provider backed by enumerator.GetDetailedPortsList
func NewProvider(list ListFunc, logger *zap.Logger) *Provider {
	if list == nil {
		list = enumerator.GetDetailedPortsList
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		list:   list,
		logger: logger.With(zap.String("component", "portlist")),
	}
}

// Identify looks realPath up in the current port list
func (p *Provider) Identify(ctx context.Context, realPath string) (model.Identity, error) {
	if err := ctx.Err(); err != nil {
		return model.Identity{}, err
	}

	ports, err := p.list()
	if err != nil {
		return model.Identity{}, fmt.Errorf("%w: port list: %v", discovery.ErrMetadataUnavailable, err)
	}

	for _, port := range ports {
		if !samePort(port.Name, realPath) {
			continue
		}
		if !port.IsUSB {
			p.logger.Debug("Port is not USB", zap.String("device", realPath))
			return model.Identity{}, nil
		}
		return model.Identity{
			VendorID:  strings.ToLower(port.VID),
			ProductID: strings.ToLower(port.PID),
			Serial:    port.SerialNumber,
			Product:   port.Product,
		}, nil
	}

	return model.Identity{}, fmt.Errorf("%w: %s not in port list", discovery.ErrMetadataUnavailable, realPath)
}

func samePort(name, realPath string) bool {
	if name == realPath {
		return true
	}
	// enumerators on some platforms report bare names
	return !strings.ContainsRune(name, filepath.Separator) && name == filepath.Base(realPath)
}
