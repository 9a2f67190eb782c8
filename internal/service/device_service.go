// internal/service/device_service.go
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"panel-link/internal/config"
	"panel-link/internal/discovery"
	"panel-link/internal/model"
	"panel-link/internal/protocol"
	"panel-link/internal/protocol/termios"
	"panel-link/internal/repository"
	"panel-link/internal/utils"
)

// RawCommandName is recorded for raw lines that carry no "cmd" field
const RawCommandName = "RAW"

// CommandSender writes command lines to a device
type CommandSender interface {
	Send(ctx context.Context, devicePath string, cmd model.CommandEnvelope) error
	SendRaw(ctx context.Context, devicePath, line string) error
}

// DeviceService is the single entry point to the serial line.
// Every device access holds mu, so concurrent callers are serialized.
type DeviceService struct {
	mu        sync.Mutex
	discovery *DiscoveryService
	sender    CommandSender
	history   repository.CommandRepository
	config    *config.DeviceConfig
	logger    *utils.ServiceLogger
}

// NewDeviceService creates a new device service instance
func NewDeviceService(
	discoveryService *DiscoveryService,
	sender CommandSender,
	history repository.CommandRepository,
	config *config.DeviceConfig,
	logger *zap.Logger,
) *DeviceService {
	return &DeviceService{
		discovery: discoveryService,
		sender:    sender,
		history:   history,
		config:    config,
		logger:    utils.NewServiceLogger(logger, "device-service"),
	}
}

// BuildDeviceService wires discovery and the serial sender described by cfg
func BuildDeviceService(cfg *config.DeviceConfig, history repository.CommandRepository, logger *zap.Logger) *DeviceService {
	sender := protocol.NewSender(
		termios.NewConfigurator(),
		protocol.SerialDialer(cfg.BaudRate, nil, logger),
		cfg.BaudRate,
		logger,
	)
	return NewDeviceService(BuildDiscoveryService(cfg, logger), sender, history, cfg, logger)
}

// ListDevices returns ranked candidates
func (ds *DeviceService) ListDevices(ctx context.Context) ([]model.CandidateDevice, error) {
	return ds.discovery.ListDevices(ctx)
}

// SelectDevice runs a full selection pass
func (ds *DeviceService) SelectDevice(ctx context.Context) (*discovery.Selection, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.discovery.SelectDevice(ctx)
}

// ProbeDevice validates a single device node
func (ds *DeviceService) ProbeDevice(ctx context.Context, path string, window time.Duration) protocol.ProbeResult {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.discovery.ProbeDevice(ctx, path, window)
}

// SendCommand writes cmd to port, or to the selected device when port is empty.
// The returned record is also stored in the history.
func (ds *DeviceService) SendCommand(ctx context.Context, port string, cmd model.CommandEnvelope) (*model.CommandRecord, error) {
	cmd, err := model.BuildCommand(cmd.ID, cmd.Cmd, cmd.Args)
	if err != nil {
		return nil, err
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()

	path, err := ds.resolvePort(ctx, port)
	if err != nil {
		return nil, err
	}

	sendErr := ds.sender.Send(ctx, path, cmd)
	record := ds.record(ctx, cmd, path, sendErr)
	if sendErr != nil {
		return record, fmt.Errorf("failed to send %s: %w", cmd.Cmd, sendErr)
	}

	linger := ds.config.SendLinger
	if cmd.Cmd == model.CmdVideoSelect {
		linger = ds.config.VideoLinger
	}
	wait(ctx, linger)
	return record, nil
}

// SelectVideo switches the panel video output
func (ds *DeviceService) SelectVideo(ctx context.Context, port, id string, channel int) (*model.CommandRecord, error) {
	cmd, err := model.VideoSelect(id, channel)
	if err != nil {
		return nil, err
	}
	return ds.SendCommand(ctx, port, cmd)
}

// SendRaw writes a caller-supplied line verbatim, newline-terminated
func (ds *DeviceService) SendRaw(ctx context.Context, port, line string) (*model.CommandRecord, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	path, err := ds.resolvePort(ctx, port)
	if err != nil {
		return nil, err
	}

	sendErr := ds.sender.SendRaw(ctx, path, line)
	record := ds.record(ctx, envelopeFromRaw(line), path, sendErr)
	if sendErr != nil {
		return record, fmt.Errorf("failed to send raw line: %w", sendErr)
	}

	wait(ctx, ds.config.SendLinger)
	return record, nil
}

// History lists sent commands, newest first
func (ds *DeviceService) History(ctx context.Context, filter *repository.CommandFilter) ([]*model.CommandRecord, error) {
	return ds.history.List(ctx, filter)
}

// PruneHistory drops history records older than retention
func (ds *DeviceService) PruneHistory(ctx context.Context, retention time.Duration) (int64, error) {
	deleted, err := ds.history.DeleteOlderThan(ctx, time.Now().Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("failed to prune command history: %w", err)
	}
	if deleted > 0 {
		ds.logger.Info("Pruned command history", zap.Int64("deleted", deleted))
	}
	return deleted, nil
}

func (ds *DeviceService) resolvePort(ctx context.Context, port string) (string, error) {
	if port != "" {
		return port, nil
	}

	sel, err := ds.discovery.SelectDevice(ctx)
	if err != nil {
		return "", err
	}
	if !sel.Found {
		return "", discovery.ErrNoCandidates
	}
	return sel.Device.RealPath, nil
}

func (ds *DeviceService) record(ctx context.Context, cmd model.CommandEnvelope, port string, sendErr error) *model.CommandRecord {
	record := model.NewCommandRecord(cmd, port, sendErr)
	if err := ds.history.Create(ctx, record); err != nil {
		ds.logger.Warn("Failed to record command",
			zap.String("command_id", cmd.ID),
			zap.Error(err),
		)
	}
	return record
}

// envelopeFromRaw extracts id, cmd and args from a raw line for the history
func envelopeFromRaw(line string) model.CommandEnvelope {
	var env model.CommandEnvelope
	if err := json.Unmarshal([]byte(line), &env); err != nil || env.Cmd == "" {
		return model.CommandEnvelope{ID: env.ID, Cmd: RawCommandName, Args: map[string]interface{}{"line": line}}
	}
	return env
}

// wait blocks for d or until ctx is done; the panel needs time to act on a
// line before the next open of the port
func wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
