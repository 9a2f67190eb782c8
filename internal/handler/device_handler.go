// internal/handler/device_handler.go
package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"panel-link/internal/discovery"
	"panel-link/internal/model"
	"panel-link/internal/protocol"
	"panel-link/internal/repository"
	"panel-link/internal/utils"
)

// MaxProbeWindow bounds the capture window a client may request
const MaxProbeWindow = 30 * time.Second

// DeviceAPI is the device facade driven by the HTTP handlers
type DeviceAPI interface {
	ListDevices(ctx context.Context) ([]model.CandidateDevice, error)
	SelectDevice(ctx context.Context) (*discovery.Selection, error)
	ProbeDevice(ctx context.Context, path string, window time.Duration) protocol.ProbeResult
	SendCommand(ctx context.Context, port string, cmd model.CommandEnvelope) (*model.CommandRecord, error)
	SelectVideo(ctx context.Context, port, id string, channel int) (*model.CommandRecord, error)
	SendRaw(ctx context.Context, port, line string) (*model.CommandRecord, error)
	History(ctx context.Context, filter *repository.CommandFilter) ([]*model.CommandRecord, error)
}

// DeviceHandler handles device detection requests
type DeviceHandler struct {
	devices     DeviceAPI
	probeWindow time.Duration
	logger      *utils.ServiceLogger
}

// NewDeviceHandler creates a new device handler
func NewDeviceHandler(devices DeviceAPI, probeWindow time.Duration, logger *zap.Logger) *DeviceHandler {
	if probeWindow <= 0 {
		probeWindow = protocol.DefaultProbeWindow
	}
	return &DeviceHandler{
		devices:     devices,
		probeWindow: probeWindow,
		logger:      utils.NewServiceLogger(logger, "device-handler"),
	}
}

// RegisterRoutes registers device routes
func (h *DeviceHandler) RegisterRoutes(router *gin.RouterGroup) {
	devices := router.Group("/devices")
	{
		devices.GET("", h.ListDevices)
		devices.GET("/selected", h.SelectedDevice)
		devices.POST("/probe", h.ProbeDevice)
	}
}

// ProbeRequest asks for a bounded capture on one device node
type ProbeRequest struct {
	Port   string `json:"port" binding:"required" example:"/dev/ttyACM0"`
	Window string `json:"window,omitempty" example:"2s"`
}

// ListDevices returns the ranked candidates
// @Summary List candidate devices
// @Description Enumerate stable serial device names, ranked by score. No device is opened.
// @Tags Devices
// @Produce json
// @Success 200 {object} utils.APIResponse{data=[]model.CandidateDevice}
// @Failure 502 {object} utils.APIResponse
// @Router /devices [get]
func (h *DeviceHandler) ListDevices(c *gin.Context) {
	devices, err := h.devices.ListDevices(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list devices", zap.Error(err))
		respondError(c, "Failed to list devices", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, fmt.Sprintf("%d candidate(s)", len(devices)), devices)
}

// SelectedDevice runs a selection pass
// @Summary Select the panel
// @Description Probe candidates in rank order and return the first that emits the protocol, or the best-ranked one
// @Tags Devices
// @Produce json
// @Success 200 {object} utils.APIResponse{data=discovery.Selection}
// @Failure 404 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Router /devices/selected [get]
func (h *DeviceHandler) SelectedDevice(c *gin.Context) {
	sel, err := h.devices.SelectDevice(c.Request.Context())
	if err != nil {
		h.logger.Error("Device selection failed", zap.Error(err))
		respondError(c, "Device selection failed", err)
		return
	}
	if !sel.Found {
		utils.ErrorResponse(c, http.StatusNotFound, "No serial ports detected", discovery.ErrNoCandidates)
		return
	}

	message := "Device validated"
	if !sel.Validated {
		message = "No device validated, using best-ranked candidate"
	}
	utils.SuccessResponse(c, http.StatusOK, message, sel)
}

// ProbeDevice validates one device node
// @Summary Probe a device
// @Description Configure the line, listen for a bounded window and report whether a protocol signature was seen
// @Tags Devices
// @Accept json
// @Produce json
// @Param request body ProbeRequest true "Probe request"
// @Success 200 {object} utils.APIResponse{data=protocol.ProbeResult}
// @Failure 400 {object} utils.APIResponse
// @Router /devices/probe [post]
func (h *DeviceHandler) ProbeDevice(c *gin.Context) {
	var req ProbeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	window := h.probeWindow
	if req.Window != "" {
		parsed, err := time.ParseDuration(req.Window)
		if err != nil || parsed <= 0 || parsed > MaxProbeWindow {
			utils.ErrorResponse(c, http.StatusBadRequest,
				fmt.Sprintf("window must be a duration between 0s and %s", MaxProbeWindow), err)
			return
		}
		window = parsed
	}

	result := h.devices.ProbeDevice(c.Request.Context(), req.Port, window)

	message := "No protocol signature seen"
	if result.Valid {
		message = "Protocol signature seen"
	}
	utils.SuccessResponse(c, http.StatusOK, message, result)
}
