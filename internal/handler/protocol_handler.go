// internal/handler/protocol_handler.go
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"panel-link/internal/model"
	"panel-link/internal/protocol"
	"panel-link/internal/utils"
)

// ProtocolHandler exposes the line codec
type ProtocolHandler struct {
	logger *utils.ServiceLogger
}

// NewProtocolHandler creates a new protocol handler
func NewProtocolHandler(logger *zap.Logger) *ProtocolHandler {
	return &ProtocolHandler{
		logger: utils.NewServiceLogger(logger, "protocol-handler"),
	}
}

// RegisterRoutes registers protocol routes
func (h *ProtocolHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/protocol/decode", h.Decode)
}

// DecodeRequest carries one device line
type DecodeRequest struct {
	Line string `json:"line" binding:"required"`
}

// ReceiverFrequency is a receiver tuning in MHz
type ReceiverFrequency struct {
	ID           int             `json:"id"`
	FrequencyMHz decimal.Decimal `json:"freq_mhz" swaggertype:"string" example:"5740"`
}

// DecodedMessage is a decoded line plus derived views
type DecodedMessage struct {
	Type        model.MessageType   `json:"type"`
	Message     model.Message       `json:"message"`
	Frequencies []ReceiverFrequency `json:"frequencies,omitempty"`
}

// Decode parses one device line
// @Summary Decode a device line
// @Description Decode a telemetry or command_ack line; telemetry frequencies are also reported in MHz
// @Tags Protocol
// @Accept json
// @Produce json
// @Param request body DecodeRequest true "Line"
// @Success 200 {object} utils.APIResponse{data=DecodedMessage}
// @Failure 400 {object} utils.APIResponse
// @Failure 422 {object} utils.APIResponse
// @Router /protocol/decode [post]
func (h *ProtocolHandler) Decode(c *gin.Context) {
	var req DecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	msg, err := protocol.DecodeLine([]byte(req.Line))
	if err != nil {
		h.logger.Debug("Rejected line", zap.Error(err))
		respondError(c, "Malformed message", err)
		return
	}

	decoded := DecodedMessage{Type: msg.MessageType(), Message: msg}
	if telemetry, ok := msg.(*model.TelemetryMessage); ok {
		decoded.Frequencies = make([]ReceiverFrequency, 0, len(telemetry.Receivers))
		for _, r := range telemetry.Receivers {
			decoded.Frequencies = append(decoded.Frequencies, ReceiverFrequency{
				ID:           r.ID,
				FrequencyMHz: r.FrequencyMHz(),
			})
		}
	}

	utils.SuccessResponse(c, http.StatusOK, "Decoded", decoded)
}
