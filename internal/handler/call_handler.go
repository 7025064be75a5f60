package handler

import (
	"net/http"

	"astro_consult/internal/model"
	"astro_consult/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CallHandler exposes the call status records
type CallHandler struct {
	service service.CallService
	log     *zap.Logger
}

func NewCallHandler(s service.CallService, log *zap.Logger) *CallHandler {
	registerValidators()
	return &CallHandler{service: s, log: log}
}

func (h *CallHandler) InitCall(c *gin.Context) {
	var req model.InitCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	callID, err := h.service.InitCall(c.Request.Context(), req.CalleeID, req.CallType, req.ChatID)
	if err != nil {
		respondError(c, h.log, err, "Failed to create call")
		return
	}
	c.JSON(http.StatusOK, model.InitCallResponse{CallID: callID})
}

func (h *CallHandler) GetCall(c *gin.Context) {
	call, err := h.service.GetCall(c.Request.Context(), c.Param("call_id"))
	if err != nil {
		respondError(c, h.log, err, "Failed to retrieve call")
		return
	}
	c.JSON(http.StatusOK, call)
}

// UpdateStatus takes the new status from the query string
func (h *CallHandler) UpdateStatus(c *gin.Context) {
	status, err := h.service.UpdateCallStatus(c.Request.Context(), c.Param("call_id"), c.Query("status"))
	if err != nil {
		respondError(c, h.log, err, "Failed to update call status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

func (h *CallHandler) RegisterCallRoutes(rg *gin.RouterGroup, mws ...gin.HandlerFunc) {
	callGroup := rg.Group("/call")
	callGroup.Use(mws...)
	{
		callGroup.POST("/init", h.InitCall)
		callGroup.GET("/:call_id", h.GetCall)
		callGroup.POST("/:call_id/status", h.UpdateStatus)
	}
}
