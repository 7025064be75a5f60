package handler

import (
	"net/http"

	"astro_consult/internal/model"
	"astro_consult/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChatHandler handles chat and message requests
type ChatHandler struct {
	service service.ChatService
	log     *zap.Logger
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(s service.ChatService, log *zap.Logger) *ChatHandler {
	registerValidators()
	return &ChatHandler{service: s, log: log}
}

func (h *ChatHandler) CreateChat(c *gin.Context) {
	var req model.CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	chatID, err := h.service.CreateChat(c.Request.Context(), req.AstrologerID, req.MinFee)
	if err != nil {
		respondError(c, h.log, err, "Failed to create chat")
		return
	}
	c.JSON(http.StatusOK, model.CreateChatResponse{ChatID: chatID})
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req model.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.service.SendMessage(c.Request.Context(), req.ChatID, req.SenderID, req.Content); err != nil {
		respondError(c, h.log, err, "Failed to send message")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}

func (h *ChatHandler) ListMessages(c *gin.Context) {
	messages, err := h.service.ListMessages(c.Request.Context(), c.Param("chat_id"))
	if err != nil {
		respondError(c, h.log, err, "Failed to retrieve messages")
		return
	}
	c.JSON(http.StatusOK, messages)
}

// RegisterChatRoutes registers chat routes behind the given middlewares
func (h *ChatHandler) RegisterChatRoutes(rg *gin.RouterGroup, mws ...gin.HandlerFunc) {
	chatGroup := rg.Group("/chat")
	chatGroup.Use(mws...)
	{
		chatGroup.POST("/create", h.CreateChat)
		chatGroup.POST("/send", h.SendMessage)
		chatGroup.GET("/:chat_id/messages", h.ListMessages)
	}
}
