// internal/service/discovery_service.go
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"panel-link/internal/config"
	"panel-link/internal/discovery"
	"panel-link/internal/discovery/portlist"
	"panel-link/internal/discovery/udev"
	"panel-link/internal/discovery/usb"
	"panel-link/internal/model"
	"panel-link/internal/protocol"
	"panel-link/internal/protocol/termios"
	"panel-link/internal/utils"
)

// Prober validates candidates and reports probe details
type Prober interface {
	discovery.Validator
	Probe(ctx context.Context, realPath string, window time.Duration) protocol.ProbeResult
}

// DiscoveryService enumerates, probes and selects panel devices
type DiscoveryService struct {
	enumerator *discovery.Enumerator
	selector   *discovery.Selector
	prober     Prober
	logger     *utils.ServiceLogger
}

// NewDiscoveryService creates a discovery service over the given collaborators
func NewDiscoveryService(enumerator *discovery.Enumerator, prober Prober, logger *zap.Logger) *DiscoveryService {
	return &DiscoveryService{
		enumerator: enumerator,
		selector:   discovery.NewSelector(enumerator, prober, logger),
		prober:     prober,
		logger:     utils.NewServiceLogger(logger, "discovery-service"),
	}
}

// BuildDiscoveryService wires the platform collaborators described by cfg
func BuildDiscoveryService(cfg *config.DeviceConfig, logger *zap.Logger) *DiscoveryService {
	enumerator := discovery.NewEnumerator(
		discovery.ByIDLister{Dir: cfg.ByIDDir},
		discovery.SymlinkResolver{},
		NewMetadataProvider(cfg, logger),
		discovery.NewScorer(discovery.DefaultScoringConfig()),
		logger,
	)
	validator := protocol.NewValidator(
		termios.NewConfigurator(),
		protocol.SerialDialer(cfg.BaudRate, nil, logger),
		cfg.BaudRate,
		cfg.ProbeWindow,
		logger,
	)
	return NewDiscoveryService(enumerator, validator, logger)
}

// NewMetadataProvider picks the identity source configured in cfg
func NewMetadataProvider(cfg *config.DeviceConfig, logger *zap.Logger) discovery.MetadataProvider {
	var provider discovery.MetadataProvider
	switch cfg.MetadataSource {
	case config.MetadataSourcePortList:
		provider = portlist.NewProvider(nil, logger)
	default:
		provider = udev.NewProvider(cfg.UdevadmPath, nil, logger)
	}

	if cfg.USBDescriptors {
		provider = usb.NewEnricher(provider, nil, logger)
	}
	return provider
}

// ListDevices returns the ranked candidate list without probing
func (ds *DiscoveryService) ListDevices(ctx context.Context) ([]model.CandidateDevice, error) {
	devices, err := ds.enumerator.Enumerate(ctx)
	if err != nil {
		ds.logger.Error("Device enumeration failed", zap.Error(err))
		return nil, err
	}
	return devices, nil
}

// SelectDevice probes candidates in rank order and returns the selection
func (ds *DiscoveryService) SelectDevice(ctx context.Context) (*discovery.Selection, error) {
	start := time.Now()
	sel, err := ds.selector.SelectDetailed(ctx)
	if err != nil {
		return nil, err
	}

	ds.logger.Info("Device selection completed",
		zap.Bool("found", sel.Found),
		zap.Bool("validated", sel.Validated),
		zap.String("device", sel.Device.RealPath),
		zap.Int("candidates", len(sel.Ranked)),
		zap.Duration("duration", time.Since(start)),
	)
	return sel, nil
}

// ProbeDevice captures from path for window and reports what was seen
func (ds *DiscoveryService) ProbeDevice(ctx context.Context, path string, window time.Duration) protocol.ProbeResult {
	return ds.prober.Probe(ctx, path, window)
}
