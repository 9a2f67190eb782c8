// internal/protocol/codec.go
package protocol

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"panel-link/internal/model"

	"github.com/goccy/go-json"
)

// Wire shapes with pointer fields so absent keys can be told apart from zero values

type wireEnvelope struct {
	Type *string `json:"type"`
}

type wireReceiver struct {
	ID          *int   `json:"id"`
	FrequencyHz *int64 `json:"freq_hz"`
	RSSIRaw     *int   `json:"rssi_raw"`
}

type wireTelemetry struct {
	TimestampMs *int64          `json:"timestamp_ms"`
	Sel         *int            `json:"sel"`
	Vrx         *[]wireReceiver `json:"vrx"`
	Video       *struct {
		Selected *int `json:"selected"`
	} `json:"video"`
	LED *struct {
		R *int `json:"r"`
		Y *int `json:"y"`
		G *int `json:"g"`
	} `json:"led"`
	Sys *struct {
		UptimeMs *int64 `json:"uptime_ms"`
		Heap     *int64 `json:"heap"`
	} `json:"sys"`
}

type wireAck struct {
	TimestampMs *int64                  `json:"timestamp_ms"`
	ID          *string                 `json:"id"`
	OK          *bool                   `json:"ok"`
	Err         json.RawMessage         `json:"err"`
	Data        *map[string]interface{} `json:"data"`
}

// DecodeLine decodes one device-to-host line. A trailing "\n" or "\r\n" is
// ignored. Unknown fields are ignored; missing or out-of-domain required
// fields and invalid UTF-8 yield a *MalformedMessageError. An ack without
// data, or with "data":null, decodes with an empty Data map.
func DecodeLine(line []byte) (model.Message, error) {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	if bytes.IndexByte(line, '\n') >= 0 {
		return nil, malformed("more than one line")
	}
	if len(bytes.TrimSpace(line)) == 0 {
		return nil, malformed("empty line")
	}
	if !utf8.Valid(line) {
		return nil, malformed("invalid UTF-8")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(line, &fields); err != nil {
		return nil, malformed("not a JSON object: %v", err)
	}
	if fields == nil {
		return nil, malformed("not a JSON object")
	}

	var env wireEnvelope
	if err := json.Unmarshal(line, &env); err != nil {
		return nil, malformed("invalid type field: %v", err)
	}
	if env.Type == nil {
		return nil, malformed("missing type")
	}

	switch model.MessageType(*env.Type) {
	case model.MessageTypeTelemetry:
		return decodeTelemetry(line)
	case model.MessageTypeCommandAck:
		return decodeAck(line, fields)
	default:
		return nil, malformed("unknown type %q", *env.Type)
	}
}

func decodeTelemetry(line []byte) (*model.TelemetryMessage, error) {
	var w wireTelemetry
	if err := json.Unmarshal(line, &w); err != nil {
		return nil, malformed("telemetry: %v", err)
	}

	switch {
	case w.TimestampMs == nil:
		return nil, malformed("telemetry: missing timestamp_ms")
	case w.Sel == nil:
		return nil, malformed("telemetry: missing sel")
	case w.Vrx == nil:
		return nil, malformed("telemetry: missing vrx")
	case w.Video == nil || w.Video.Selected == nil:
		return nil, malformed("telemetry: missing video.selected")
	case w.LED == nil || w.LED.R == nil || w.LED.Y == nil || w.LED.G == nil:
		return nil, malformed("telemetry: missing led field")
	case w.Sys == nil || w.Sys.UptimeMs == nil || w.Sys.Heap == nil:
		return nil, malformed("telemetry: missing sys field")
	}

	if !validChannel(*w.Sel) {
		return nil, malformed("telemetry: sel %d out of range", *w.Sel)
	}
	if !validChannel(*w.Video.Selected) {
		return nil, malformed("telemetry: video.selected %d out of range", *w.Video.Selected)
	}
	leds := []struct {
		name  string
		value int
	}{{"r", *w.LED.R}, {"y", *w.LED.Y}, {"g", *w.LED.G}}
	for _, led := range leds {
		if led.value != 0 && led.value != 1 {
			return nil, malformed("telemetry: led.%s %d not 0 or 1", led.name, led.value)
		}
	}

	receivers := make([]model.Receiver, 0, len(*w.Vrx))
	for i, r := range *w.Vrx {
		if r.ID == nil || r.FrequencyHz == nil || r.RSSIRaw == nil {
			return nil, malformed("telemetry: vrx[%d] missing field", i)
		}
		receivers = append(receivers, model.Receiver{
			ID:          *r.ID,
			FrequencyHz: *r.FrequencyHz,
			RSSIRaw:     *r.RSSIRaw,
		})
	}

	return &model.TelemetryMessage{
		Type:            model.MessageTypeTelemetry,
		TimestampMs:     *w.TimestampMs,
		SelectedChannel: *w.Sel,
		Receivers:       receivers,
		Video:           model.VideoState{Selected: *w.Video.Selected},
		LED:             model.LEDState{Red: *w.LED.R, Yellow: *w.LED.Y, Green: *w.LED.G},
		System:          model.SystemState{UptimeMs: *w.Sys.UptimeMs, HeapBytes: *w.Sys.Heap},
	}, nil
}

func decodeAck(line []byte, fields map[string]json.RawMessage) (*model.CommandAck, error) {
	var w wireAck
	if err := json.Unmarshal(line, &w); err != nil {
		return nil, malformed("command_ack: %v", err)
	}

	switch {
	case w.TimestampMs == nil:
		return nil, malformed("command_ack: missing timestamp_ms")
	case w.ID == nil:
		return nil, malformed("command_ack: missing id")
	case w.OK == nil:
		return nil, malformed("command_ack: missing ok")
	}

	rawErr, ok := fields["err"]
	if !ok {
		return nil, malformed("command_ack: missing err")
	}
	var errText *string
	if err := json.Unmarshal(rawErr, &errText); err != nil {
		return nil, malformed("command_ack: err must be string or null")
	}

	data := map[string]interface{}{}
	if w.Data != nil && *w.Data != nil {
		data = *w.Data
	}

	return &model.CommandAck{
		Type:        model.MessageTypeCommandAck,
		TimestampMs: *w.TimestampMs,
		ID:          *w.ID,
		OK:          *w.OK,
		Err:         errText,
		Data:        data,
	}, nil
}

// EncodeCommand renders an envelope as one JSON line with a single trailing newline
func EncodeCommand(cmd model.CommandEnvelope) ([]byte, error) {
	if cmd.Args == nil {
		cmd.Args = map[string]interface{}{}
	}
	out, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to encode command %s: %w", cmd.Cmd, err)
	}
	return append(out, '\n'), nil
}

// EncodeRaw terminates a caller-supplied line with a newline if it lacks one
func EncodeRaw(line string) []byte {
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	return []byte(line)
}

func validChannel(ch int) bool {
	return ch >= model.MinChannel && ch <= model.MaxChannel
}
