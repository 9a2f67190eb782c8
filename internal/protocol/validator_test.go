package protocol

import (
	"context"
	"errors"
	"testing"
	"time"

	"panel-link/internal/discovery"
	"panel-link/internal/protocol/termios"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_Signatures(t *testing.T) {
	tests := []struct {
		name     string
		captured string
		want     bool
	}{
		{"telemetry line", telemetryLine + "\n", true},
		{"hello line", `{"proto":1,"fw":"1.4.2"}` + "\n", true},
		{"partial line at window end", `ESP-ROM:esp32s3` + "\n" + `{"type":"telemetry","timesta`, true},
		{"boot noise only", "ESP-ROM:esp32s3-20210327\r\nBuild:Mar 27 2021\r\n", false},
		{"spaced json does not match", `{"type": "telemetry"}`, false},
		{"nothing", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := &recordingConfigurator{}
			tr := &fakeTransport{captured: []byte(tt.captured)}
			v := NewValidator(conf, dialerFor(map[string]*fakeTransport{"/dev/ttyACM0": tr}), 115200, 0, nil)

			assert.Equal(t, tt.want, v.Validate(context.Background(), "/dev/ttyACM0"))
			assert.Equal(t, DefaultProbeWindow, tr.window)
			assert.True(t, tr.closed)
			require.Len(t, conf.cfgs, 1)
			assert.Equal(t, termios.LineConfig{BaudRate: 115200, Raw: true, Echo: false}, conf.cfgs[0])
		})
	}
}

func TestValidator_DataBeforeErrorIsIgnored(t *testing.T) {
	tr := &fakeTransport{captured: []byte(telemetryLine), capErr: errors.New("input/output error")}
	v := NewValidator(&recordingConfigurator{}, dialerFor(map[string]*fakeTransport{"/dev/ttyUSB0": tr}), 115200, time.Second, nil)

	result := v.Probe(context.Background(), "/dev/ttyUSB0", 0)
	assert.False(t, result.Valid)
	assert.Equal(t, len(telemetryLine), result.Bytes)
	assert.Contains(t, result.Error, "input/output error")
	assert.Equal(t, time.Second, result.Window)
}

func TestValidator_FailuresAreFalse(t *testing.T) {
	ok := &fakeTransport{captured: []byte(telemetryLine)}

	configFails := NewValidator(&recordingConfigurator{err: errors.New("not a tty")},
		dialerFor(map[string]*fakeTransport{"/dev/ttyACM0": ok}), 115200, 0, nil)
	assert.False(t, configFails.Validate(context.Background(), "/dev/ttyACM0"))
	assert.False(t, ok.opened)

	openFails := NewValidator(&recordingConfigurator{},
		dialerFor(map[string]*fakeTransport{"/dev/ttyACM0": {openErr: errors.New("busy")}}), 115200, 0, nil)
	assert.False(t, openFails.Validate(context.Background(), "/dev/ttyACM0"))

	dialFails := NewValidator(&recordingConfigurator{}, dialerFor(nil), 115200, 0, nil)
	assert.False(t, dialFails.Validate(context.Background(), "/dev/ttyACM0"))
}

func TestValidator_Check(t *testing.T) {
	silent := &fakeTransport{captured: []byte("noise")}
	v := NewValidator(&recordingConfigurator{}, dialerFor(map[string]*fakeTransport{"/dev/ttyUSB0": silent}), 115200, 0, nil)

	err := v.Check(context.Background(), "/dev/ttyUSB0")
	assert.ErrorIs(t, err, discovery.ErrValidationFailed)

	talking := &fakeTransport{captured: []byte(telemetryLine)}
	v = NewValidator(&recordingConfigurator{}, dialerFor(map[string]*fakeTransport{"/dev/ttyACM0": talking}), 115200, 0, nil)
	assert.NoError(t, v.Check(context.Background(), "/dev/ttyACM0"))
}

func TestValidator_SatisfiesSelector(t *testing.T) {
	var _ discovery.Validator = (*Validator)(nil)
}

func TestFindSignature(t *testing.T) {
	assert.Equal(t, `"proto":1`, string(FindSignature([]byte(`{"proto":1}`))))
	assert.Nil(t, FindSignature([]byte(`{"proto":2}`)))
}
