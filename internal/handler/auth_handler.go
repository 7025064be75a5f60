package handler

import (
	"net/http"

	"astro_consult/internal/middleware"
	"astro_consult/internal/model"
	"astro_consult/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	service service.AuthService
	log     *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.AuthService, log *zap.Logger) *AuthHandler {
	registerValidators()
	return &AuthHandler{service: s, log: log}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, token, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err, "Failed to register user")
		return
	}

	c.JSON(http.StatusOK, model.SessionResponse{
		Token:  token,
		UserID: user.ID.Hex(),
		Name:   user.Name,
		Role:   user.Role,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.log, err, "Failed to login")
		return
	}

	c.JSON(http.StatusOK, model.SessionResponse{
		Token:  token,
		UserID: user.ID.Hex(),
		Name:   user.Name,
		Role:   user.Role,
	})
}

// Me returns the account behind the bearer token
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.AuthUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": service.ErrInvalidToken.Error()})
		return
	}
	c.JSON(http.StatusOK, user)
}

// RegisterAuthRoutes registers auth routes
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup, sessionMW gin.HandlerFunc) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.GET("/me", sessionMW, h.Me)
	}
}
