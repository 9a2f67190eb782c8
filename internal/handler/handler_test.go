package handler

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"panel-link/internal/config"
	"panel-link/internal/discovery"
	"panel-link/internal/model"
	"panel-link/internal/protocol"
	"panel-link/internal/repository"
)

type fakeDevices struct {
	devices   []model.CandidateDevice
	listErr   error
	selection *discovery.Selection
	selectErr error
	sendErr   error

	probedPath   string
	probedWindow time.Duration
	sent         []model.CommandEnvelope
	sentPorts    []string
	raw          []string
	filter       *repository.CommandFilter
}

func (f *fakeDevices) ListDevices(ctx context.Context) ([]model.CandidateDevice, error) {
	return f.devices, f.listErr
}

func (f *fakeDevices) SelectDevice(ctx context.Context) (*discovery.Selection, error) {
	return f.selection, f.selectErr
}

func (f *fakeDevices) ProbeDevice(ctx context.Context, path string, window time.Duration) protocol.ProbeResult {
	f.probedPath = path
	f.probedWindow = window
	return protocol.ProbeResult{Port: path, Window: window, Valid: path == "/dev/ttyACM0"}
}

func (f *fakeDevices) SendCommand(ctx context.Context, port string, cmd model.CommandEnvelope) (*model.CommandRecord, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, cmd)
	f.sentPorts = append(f.sentPorts, port)
	return model.NewCommandRecord(cmd, port, nil), nil
}

func (f *fakeDevices) SelectVideo(ctx context.Context, port, id string, channel int) (*model.CommandRecord, error) {
	cmd, err := model.VideoSelect(id, channel)
	if err != nil {
		return nil, err
	}
	return f.SendCommand(ctx, port, cmd)
}

func (f *fakeDevices) SendRaw(ctx context.Context, port, line string) (*model.CommandRecord, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.raw = append(f.raw, line)
	return model.NewCommandRecord(model.NewCommand("", "RAW", nil), port, nil), nil
}

func (f *fakeDevices) History(ctx context.Context, filter *repository.CommandFilter) ([]*model.CommandRecord, error) {
	f.filter = filter
	return []*model.CommandRecord{}, nil
}

type fakeDB struct {
	err error
}

func (f *fakeDB) Health(ctx context.Context) error { return f.err }

func (f *fakeDB) Stats() sql.DBStats { return sql.DBStats{OpenConnections: 1} }

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Details string            `json:"details"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func newEngine(devices *fakeDevices) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	engine := gin.New()
	api := engine.Group("/api/v1")
	NewDeviceHandler(devices, 2*time.Second, logger).RegisterRoutes(api)
	NewCommandHandler(devices, logger).RegisterRoutes(api)
	NewProtocolHandler(logger).RegisterRoutes(api)
	return engine
}

func perform(t *testing.T, engine *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestListDevices(t *testing.T) {
	devices := &fakeDevices{devices: []model.CandidateDevice{
		{StableName: "/dev/serial/by-id/usb-1a86_USB_Single_Serial_58FB-if00", RealPath: "/dev/ttyACM0", Score: 180},
	}}
	w, env := perform(t, newEngine(devices), http.MethodGet, "/api/v1/devices", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	var got []model.CandidateDevice
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, 180, got[0].Score)
}

func TestListDevices_Error(t *testing.T) {
	devices := &fakeDevices{listErr: errors.New("permission denied")}
	w, env := perform(t, newEngine(devices), http.MethodGet, "/api/v1/devices", "")

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.False(t, env.Success)
}

func TestSelectedDevice(t *testing.T) {
	device := model.CandidateDevice{RealPath: "/dev/ttyACM0", Score: 180}
	devices := &fakeDevices{selection: &discovery.Selection{Device: device, Found: true, Validated: true}}
	w, env := perform(t, newEngine(devices), http.MethodGet, "/api/v1/devices/selected", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var sel discovery.Selection
	require.NoError(t, json.Unmarshal(env.Data, &sel))
	assert.True(t, sel.Validated)
	assert.Equal(t, "/dev/ttyACM0", sel.Device.RealPath)
}

func TestSelectedDevice_NoneFound(t *testing.T) {
	devices := &fakeDevices{selection: &discovery.Selection{}}
	w, env := perform(t, newEngine(devices), http.MethodGet, "/api/v1/devices/selected", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestProbeDevice(t *testing.T) {
	devices := &fakeDevices{}
	engine := newEngine(devices)

	w, env := perform(t, engine, http.MethodPost, "/api/v1/devices/probe", `{"port":"/dev/ttyACM0"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2*time.Second, devices.probedWindow)

	var result protocol.ProbeResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.True(t, result.Valid)

	w, _ = perform(t, engine, http.MethodPost, "/api/v1/devices/probe", `{"port":"/dev/ttyUSB0","window":"500ms"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 500*time.Millisecond, devices.probedWindow)
	assert.Equal(t, "/dev/ttyUSB0", devices.probedPath)
}

func TestProbeDevice_BadRequests(t *testing.T) {
	engine := newEngine(&fakeDevices{})

	w, env := perform(t, engine, http.MethodPost, "/api/v1/devices/probe", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "required", env.Error.Fields["Port"])

	for _, window := range []string{"soon", "-1s", "1h"} {
		w, _ := perform(t, engine, http.MethodPost, "/api/v1/devices/probe",
			fmt.Sprintf(`{"port":"/dev/ttyACM0","window":%q}`, window))
		assert.Equal(t, http.StatusBadRequest, w.Code, window)
	}
}

func TestSendCommand(t *testing.T) {
	devices := &fakeDevices{}
	w, env := perform(t, newEngine(devices), http.MethodPost, "/api/v1/commands",
		`{"port":"/dev/ttyACM0","cmd":"TEST_BEEP"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, devices.sent, 1)
	assert.Equal(t, model.CmdTestBeep, devices.sent[0].Cmd)
	assert.NotEmpty(t, devices.sent[0].ID)
	assert.Equal(t, "/dev/ttyACM0", devices.sentPorts[0])

	var record model.CommandRecord
	require.NoError(t, json.Unmarshal(env.Data, &record))
	assert.Equal(t, model.CommandStatusSent, record.Status)
}

func TestSendCommand_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"no candidates", discovery.ErrNoCandidates, http.StatusNotFound},
		{"invalid argument", fmt.Errorf("%w: channel 9", model.ErrInvalidArgument), http.StatusBadRequest},
		{"write failure", errors.New("input/output error"), http.StatusBadGateway},
		{"deadline", fmt.Errorf("send: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			devices := &fakeDevices{sendErr: tt.err}
			w, env := perform(t, newEngine(devices), http.MethodPost, "/api/v1/commands", `{"cmd":"TEST_BEEP"}`)
			assert.Equal(t, tt.status, w.Code)
			assert.False(t, env.Success)
		})
	}
}

func TestSendCommand_ValidatesKnownCommands(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"receiver out of range", `{"cmd":"FPV_TUNE_FREQ","args":{"vrx_id":7,"freq_mhz":5800}}`},
		{"missing frequency", `{"cmd":"FPV_TUNE_FREQ","args":{"vrx_id":1}}`},
		{"channel out of range", `{"cmd":"VIDEO_SELECT","args":{"ch":9}}`},
		{"unknown band", `{"cmd":"FPV_SET_BAND_PROFILE","args":{"band":"2.4G"}}`},
		{"hold not boolean", `{"cmd":"FPV_HOLD_SET","args":{"hold":2}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			devices := &fakeDevices{}
			w, env := perform(t, newEngine(devices), http.MethodPost, "/api/v1/commands", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, "BAD_REQUEST", env.Error.Code)
			assert.Empty(t, devices.sent)
		})
	}
}

func TestSendCommand_CanonicalArgs(t *testing.T) {
	devices := &fakeDevices{}
	w, _ := perform(t, newEngine(devices), http.MethodPost, "/api/v1/commands",
		`{"id":"9","cmd":"FPV_TUNE_FREQ","args":{"vrx_id":2,"freq_mhz":5740,"extra":true}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, devices.sent, 1)
	assert.Equal(t, "9", devices.sent[0].ID)
	assert.Equal(t, map[string]interface{}{"vrx_id": 2, "freq_mhz": 5740}, devices.sent[0].Args)
}

func TestSendCommand_MissingCmd(t *testing.T) {
	w, env := perform(t, newEngine(&fakeDevices{}), http.MethodPost, "/api/v1/commands", `{"args":{}}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Equal(t, "required", env.Error.Fields["Cmd"])
}

func TestSelectVideo(t *testing.T) {
	devices := &fakeDevices{}
	engine := newEngine(devices)

	w, _ := perform(t, engine, http.MethodPost, "/api/v1/commands/video", `{"channel":2,"id":"20"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, devices.sent, 1)
	assert.Equal(t, "20", devices.sent[0].ID)
	assert.Equal(t, 2, devices.sent[0].Args["ch"])
	assert.Equal(t, "", devices.sentPorts[0])

	w, env := perform(t, engine, http.MethodPost, "/api/v1/commands/video", `{"channel":4}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "max", env.Error.Fields["Channel"])
}

func TestSendRaw(t *testing.T) {
	devices := &fakeDevices{}
	w, _ := perform(t, newEngine(devices), http.MethodPost, "/api/v1/commands/raw",
		`{"line":"{\"id\":\"1\",\"cmd\":\"TEST_BEEP\",\"args\":{}}"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{`{"id":"1","cmd":"TEST_BEEP","args":{}}`}, devices.raw)
}

func TestListCommands(t *testing.T) {
	devices := &fakeDevices{}
	engine := newEngine(devices)

	w, _ := perform(t, engine, http.MethodGet, "/api/v1/commands?limit=5&port=/dev/ttyACM0&status=FAILED", "")
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, devices.filter)
	assert.Equal(t, 5, devices.filter.Limit)
	assert.Equal(t, "/dev/ttyACM0", devices.filter.Port)
	assert.Equal(t, model.CommandStatusFailed, devices.filter.Status)

	w, _ = perform(t, engine, http.MethodGet, "/api/v1/commands?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = perform(t, engine, http.MethodGet, "/api/v1/commands?status=LOST", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDecode_Telemetry(t *testing.T) {
	line := `{"type":"telemetry","timestamp_ms":1,"sel":2,` +
		`"vrx":[{"id":1,"freq_hz":5732500000,"rssi_raw":700}],` +
		`"video":{"selected":2},"led":{"r":0,"y":0,"g":1},"sys":{"uptime_ms":10,"heap":20}}`
	body, err := json.Marshal(DecodeRequest{Line: line})
	require.NoError(t, err)

	w, env := perform(t, newEngine(&fakeDevices{}), http.MethodPost, "/api/v1/protocol/decode", string(body))
	assert.Equal(t, http.StatusOK, w.Code)

	var decoded struct {
		Type        string `json:"type"`
		Frequencies []struct {
			ID           int    `json:"id"`
			FrequencyMHz string `json:"freq_mhz"`
		} `json:"frequencies"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &decoded))
	assert.Equal(t, "telemetry", decoded.Type)
	require.Len(t, decoded.Frequencies, 1)
	assert.Equal(t, "5732.5", decoded.Frequencies[0].FrequencyMHz)
}

func TestDecode_Malformed(t *testing.T) {
	w, env := perform(t, newEngine(&fakeDevices{}), http.MethodPost, "/api/v1/protocol/decode",
		`{"line":"{\"type\":\"telemetry\"}"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Details, "malformed message")
}

func newHealthEngine(db DatabaseChecker, devices *fakeDevices) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{App: config.AppConfig{Name: "panel-link", Version: "test"}}

	engine := gin.New()
	NewHealthHandler(db, devices, cfg, zap.NewNop()).RegisterRoutes(engine.Group(""))
	return engine
}

func getHealth(t *testing.T, engine *gin.Engine, path string) (*httptest.ResponseRecorder, HealthResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var health HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	return w, health
}

func TestHealthCheck_MemoryHistory(t *testing.T) {
	engine := newHealthEngine(nil, &fakeDevices{})

	w, health := getHealth(t, engine, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "disabled", health.Checks["database"].Status)
	assert.Equal(t, "warning", health.Checks["devices"].Status)
}

func TestHealthCheck_DatabaseDown(t *testing.T) {
	devices := &fakeDevices{devices: []model.CandidateDevice{{RealPath: "/dev/ttyACM0"}}}
	engine := newHealthEngine(&fakeDB{err: errors.New("connection refused")}, devices)

	w, health := getHealth(t, engine, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unhealthy", health.Status)
	assert.Equal(t, "healthy", health.Checks["devices"].Status)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestReadyAndLive(t *testing.T) {
	engine := newHealthEngine(&fakeDB{}, &fakeDevices{})

	for _, path := range []string{"/ready", "/live", "/health/db"} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}
