// internal/model/message.go
package model

import (
	"github.com/shopspring/decimal"
)

// MessageType is the discriminator carried in the "type" field of device lines
type MessageType string

const (
	MessageTypeTelemetry  MessageType = "telemetry"
	MessageTypeCommandAck MessageType = "command_ack"
)

// Message is a decoded device-to-host line
type Message interface {
	MessageType() MessageType
}

// Receiver is one video receiver entry of a telemetry line
type Receiver struct {
	ID          int   `json:"id" yaml:"id"`
	FrequencyHz int64 `json:"freq_hz" yaml:"freq_hz"`
	RSSIRaw     int   `json:"rssi_raw" yaml:"rssi_raw"`
}

// FrequencyMHz returns the tuned frequency in MHz without float rounding
func (r Receiver) FrequencyMHz() decimal.Decimal {
	return decimal.New(r.FrequencyHz, -6)
}

// VideoState reports the active video switch input
type VideoState struct {
	Selected int `json:"selected" yaml:"selected"`
}

// LEDState holds the panel LEDs, each 0 or 1
type LEDState struct {
	Red    int `json:"r" yaml:"r"`
	Yellow int `json:"y" yaml:"y"`
	Green  int `json:"g" yaml:"g"`
}

// SystemState is the firmware housekeeping block
type SystemState struct {
	UptimeMs  int64 `json:"uptime_ms" yaml:"uptime_ms"`
	HeapBytes int64 `json:"heap" yaml:"heap"`
}

// TelemetryMessage is the periodic status line emitted by the panel
type TelemetryMessage struct {
	Type            MessageType `json:"type" yaml:"type"`
	TimestampMs     int64       `json:"timestamp_ms" yaml:"timestamp_ms"`
	SelectedChannel int         `json:"sel" yaml:"sel"`
	Receivers       []Receiver  `json:"vrx" yaml:"vrx"`
	Video           VideoState  `json:"video" yaml:"video"`
	LED             LEDState    `json:"led" yaml:"led"`
	System          SystemState `json:"sys" yaml:"sys"`
}

func (TelemetryMessage) MessageType() MessageType { return MessageTypeTelemetry }

// CommandAck acknowledges a command envelope by id
type CommandAck struct {
	Type        MessageType            `json:"type" yaml:"type"`
	TimestampMs int64                  `json:"timestamp_ms" yaml:"timestamp_ms"`
	ID          string                 `json:"id" yaml:"id"`
	OK          bool                   `json:"ok" yaml:"ok"`
	Err         *string                `json:"err" yaml:"err"`
	Data        map[string]interface{} `json:"data" yaml:"data"`
}

func (CommandAck) MessageType() MessageType { return MessageTypeCommandAck }

// ErrorText returns the device-reported error, or "" on success
func (a CommandAck) ErrorText() string {
	if a.Err == nil {
		return ""
	}
	return *a.Err
}
