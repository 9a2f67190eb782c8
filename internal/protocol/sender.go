// internal/protocol/sender.go
package protocol

import (
	"context"
	"fmt"

	"panel-link/internal/model"
	"panel-link/internal/protocol/termios"
	"panel-link/internal/utils"

	"go.uber.org/zap"
)

// Sender writes command lines to the panel without waiting for a reply
type Sender struct {
	configurator termios.Configurator
	dial         Dialer
	baudRate     int
	logger       *zap.Logger
}

// NewSender creates a sender
func NewSender(configurator termios.Configurator, dial Dialer, baudRate int, logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sender{
		configurator: configurator,
		dial:         dial,
		baudRate:     baudRate,
		logger:       logger,
	}
}

// Send encodes cmd and writes it to devicePath in a single write
func (s *Sender) Send(ctx context.Context, devicePath string, cmd model.CommandEnvelope) error {
	line, err := EncodeCommand(cmd)
	if err != nil {
		return err
	}
	err = s.write(ctx, devicePath, line)
	utils.NewDeviceLogger(s.logger, devicePath).LogCommand(cmd.ID, cmd.Cmd, len(line), err)
	return err
}

// SendRaw writes a caller-supplied line, newline-terminated
func (s *Sender) SendRaw(ctx context.Context, devicePath, line string) error {
	data := EncodeRaw(line)
	err := s.write(ctx, devicePath, data)
	utils.NewDeviceLogger(s.logger, devicePath).LogCommand("", "raw", len(data), err)
	return err
}

func (s *Sender) write(ctx context.Context, devicePath string, data []byte) error {
	if err := s.configurator.Configure(ctx, devicePath, termios.PanelLine(s.baudRate)); err != nil {
		return fmt.Errorf("configure line: %w", err)
	}

	conn, err := s.dial(devicePath)
	if err != nil {
		return err
	}
	if err := conn.Open(ctx); err != nil {
		return err
	}
	defer conn.Close()

	return conn.Write(ctx, data)
}
