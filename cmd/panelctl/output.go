// cmd/panelctl/output.go
package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"panel-link/internal/model"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// printer renders results on stdout in the selected format
type printer struct {
	format string
	w      io.Writer
}

func newPrinter(format string, w io.Writer) (*printer, error) {
	switch format {
	case formatText, formatJSON, formatYAML:
		return &printer{format: format, w: w}, nil
	default:
		return nil, fmt.Errorf("unknown format %q, want text, json or yaml", format)
	}
}

func (p *printer) devices(devices []model.CandidateDevice) error {
	if p.format != formatText {
		if devices == nil {
			devices = []model.CandidateDevice{}
		}
		return p.structured(devices)
	}
	for _, d := range devices {
		if _, err := fmt.Fprintln(p.w, d.String()); err != nil {
			return err
		}
	}
	return nil
}

func (p *printer) port(port string) error {
	if p.format != formatText {
		return p.structured(map[string]string{"port": port})
	}
	_, err := fmt.Fprintln(p.w, port)
	return err
}

// record stays silent in text mode
func (p *printer) record(record *model.CommandRecord) error {
	if p.format == formatText {
		return nil
	}
	return p.structured(record)
}

func (p *printer) message(msg model.Message) error {
	if p.format != formatText {
		return p.structured(msg)
	}

	var line string
	switch m := msg.(type) {
	case *model.TelemetryMessage:
		line = telemetrySummary(m)
	case *model.CommandAck:
		line = ackSummary(m)
	default:
		line = string(msg.MessageType())
	}
	_, err := fmt.Fprintln(p.w, line)
	return err
}

func (p *printer) structured(v interface{}) error {
	switch p.format {
	case formatYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(p.w, string(data))
		return err
	}
}

func telemetrySummary(m *model.TelemetryMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "telemetry t=%dms sel=%d video=%d led=r%d,y%d,g%d",
		m.TimestampMs, m.SelectedChannel, m.Video.Selected, m.LED.Red, m.LED.Yellow, m.LED.Green)
	for _, r := range m.Receivers {
		fmt.Fprintf(&b, " vrx%d=%sMHz/%d", r.ID, r.FrequencyMHz().String(), r.RSSIRaw)
	}
	fmt.Fprintf(&b, " uptime=%dms heap=%d", m.System.UptimeMs, m.System.HeapBytes)
	return b.String()
}

func ackSummary(a *model.CommandAck) string {
	if a.OK {
		return fmt.Sprintf("command_ack id=%s ok", a.ID)
	}
	return fmt.Sprintf("command_ack id=%s failed: %s", a.ID, a.ErrorText())
}
