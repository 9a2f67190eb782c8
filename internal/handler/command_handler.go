// internal/handler/command_handler.go
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"panel-link/internal/model"
	"panel-link/internal/repository"
	"panel-link/internal/utils"
)

// CommandHandler handles command requests
type CommandHandler struct {
	devices DeviceAPI
	logger  *utils.ServiceLogger
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(devices DeviceAPI, logger *zap.Logger) *CommandHandler {
	return &CommandHandler{
		devices: devices,
		logger:  utils.NewServiceLogger(logger, "command-handler"),
	}
}

// RegisterRoutes registers command routes
func (h *CommandHandler) RegisterRoutes(router *gin.RouterGroup) {
	commands := router.Group("/commands")
	{
		commands.POST("", h.SendCommand)
		commands.POST("/raw", h.SendRaw)
		commands.POST("/video", h.SelectVideo)
		commands.GET("", h.ListCommands)
	}
}

// SendCommandRequest is a command envelope with an optional target port
type SendCommandRequest struct {
	Port string                 `json:"port,omitempty" example:"/dev/ttyACM0"`
	ID   string                 `json:"id,omitempty" example:"20"`
	Cmd  string                 `json:"cmd" binding:"required" example:"TEST_BEEP"`
	Args map[string]interface{} `json:"args,omitempty"`
}

// RawCommandRequest carries a line written verbatim to the device
type RawCommandRequest struct {
	Port string `json:"port,omitempty" example:"/dev/ttyACM0"`
	Line string `json:"line" binding:"required" example:"{\"id\":\"1\",\"cmd\":\"TEST_BEEP\",\"args\":{}}"`
}

// VideoSelectRequest switches the panel video output
type VideoSelectRequest struct {
	Port    string `json:"port,omitempty" example:"/dev/ttyACM0"`
	ID      string `json:"id,omitempty" example:"20"`
	Channel int    `json:"channel" binding:"required,min=1,max=3" example:"2"`
}

// SendCommand writes a command envelope
// @Summary Send a command
// @Description Encode a command envelope and write it to the given port, or to the selected device when port is empty
// @Tags Commands
// @Accept json
// @Produce json
// @Param request body SendCommandRequest true "Command"
// @Success 200 {object} utils.APIResponse{data=model.CommandRecord}
// @Failure 400 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Router /commands [post]
func (h *CommandHandler) SendCommand(c *gin.Context) {
	var req SendCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	cmd, err := model.BuildCommand(req.ID, req.Cmd, req.Args)
	if err != nil {
		respondError(c, "Invalid command", err)
		return
	}

	record, err := h.devices.SendCommand(c.Request.Context(), req.Port, cmd)
	if err != nil {
		h.logger.Error("Command send failed",
			zap.String("cmd", cmd.Cmd),
			zap.String("command_id", cmd.ID),
			zap.Error(err),
		)
		respondError(c, "Failed to send command", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Command sent", record)
}

// SendRaw writes a caller-supplied line
// @Summary Send a raw line
// @Description Write a line verbatim to the device, appending a newline when missing
// @Tags Commands
// @Accept json
// @Produce json
// @Param request body RawCommandRequest true "Raw line"
// @Success 200 {object} utils.APIResponse{data=model.CommandRecord}
// @Failure 400 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Router /commands/raw [post]
func (h *CommandHandler) SendRaw(c *gin.Context) {
	var req RawCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	record, err := h.devices.SendRaw(c.Request.Context(), req.Port, req.Line)
	if err != nil {
		h.logger.Error("Raw send failed", zap.Error(err))
		respondError(c, "Failed to send raw line", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Line sent", record)
}

// SelectVideo switches the video output
// @Summary Select video channel
// @Description Send VIDEO_SELECT for channel 1..3
// @Tags Commands
// @Accept json
// @Produce json
// @Param request body VideoSelectRequest true "Video selection"
// @Success 200 {object} utils.APIResponse{data=model.CommandRecord}
// @Failure 400 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Failure 502 {object} utils.APIResponse
// @Router /commands/video [post]
func (h *CommandHandler) SelectVideo(c *gin.Context) {
	var req VideoSelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	record, err := h.devices.SelectVideo(c.Request.Context(), req.Port, req.ID, req.Channel)
	if err != nil {
		h.logger.Error("Video select failed", zap.Int("channel", req.Channel), zap.Error(err))
		respondError(c, "Failed to select video channel", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Video channel selected", record)
}

// ListCommands returns the command history
// @Summary Command history
// @Description List sent commands, newest first
// @Tags Commands
// @Produce json
// @Param limit query int false "Maximum records" default(50)
// @Param port query string false "Filter by port"
// @Param cmd query string false "Filter by command name"
// @Param status query string false "Filter by status" Enums(SENT, FAILED)
// @Success 200 {object} utils.APIResponse{data=[]model.CommandRecord}
// @Failure 400 {object} utils.APIResponse
// @Router /commands [get]
func (h *CommandHandler) ListCommands(c *gin.Context) {
	filter := &repository.CommandFilter{
		Port: c.Query("port"),
		Cmd:  c.Query("cmd"),
	}

	if limit := c.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n <= 0 {
			utils.ErrorResponse(c, http.StatusBadRequest, "limit must be a positive integer", err)
			return
		}
		filter.Limit = n
	}

	switch status := model.CommandStatus(c.Query("status")); status {
	case "", model.CommandStatusSent, model.CommandStatusFailed:
		filter.Status = status
	default:
		utils.ErrorResponse(c, http.StatusBadRequest, "status must be SENT or FAILED", nil)
		return
	}

	records, err := h.devices.History(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list commands", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to list commands", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Command history", records)
}
