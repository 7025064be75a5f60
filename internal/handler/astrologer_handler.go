package handler

import (
	"net/http"

	"astro_consult/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AstrologerHandler struct {
	service service.AstrologerService
	log     *zap.Logger
}

func NewAstrologerHandler(s service.AstrologerService, log *zap.Logger) *AstrologerHandler {
	return &AstrologerHandler{service: s, log: log}
}

func (h *AstrologerHandler) List(c *gin.Context) {
	profiles, err := h.service.ListAstrologers(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err, "Failed to list astrologers")
		return
	}
	c.JSON(http.StatusOK, profiles)
}

func (h *AstrologerHandler) RegisterAstrologerRoutes(rg *gin.RouterGroup) {
	rg.GET("/astrologers", h.List)
}
