package router

import (
	"astro_consult/internal/config"
	"astro_consult/internal/handler"
	"astro_consult/internal/metrics"
	"astro_consult/internal/middleware"
	"astro_consult/internal/repository"
	"astro_consult/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// New wires services and handlers over repos and returns the gin engine
func New(cfg *config.Config, log *zap.Logger, repos *repository.Repositories) *gin.Engine {
	// --- Services ---
	authService := service.NewAuthService(repos.Users, repos.Sessions, service.SessionConfig{
		TTL:           cfg.SessionTTL,
		EnforceExpiry: cfg.EnforceSessionExpiry,
	}, log)
	astrologerService := service.NewAstrologerService(repos.Users)
	chatService := service.NewChatService(repos.Users, repos.Chats, repos.Messages, log)
	callService := service.NewCallService(repos.Calls, log)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService, log)
	astrologerHandler := handler.NewAstrologerHandler(astrologerService, log)
	chatHandler := handler.NewChatHandler(chatService, log)
	callHandler := handler.NewCallHandler(callService, log)
	healthHandler := handler.NewHealthHandler(repos.Store, log)

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.Recovery(log),
		middleware.CORS(),
		middleware.Metrics(),
	)

	sessionMW := middleware.SessionAuthMiddleware(authService, log)
	var protected []gin.HandlerFunc
	if cfg.AuthRequired {
		protected = append(protected, sessionMW)
	}

	api := r.Group("/")
	healthHandler.RegisterHealthRoutes(api)
	authHandler.RegisterAuthRoutes(api, sessionMW)
	astrologerHandler.RegisterAstrologerRoutes(api)
	chatHandler.RegisterChatRoutes(api, protected...)
	callHandler.RegisterCallRoutes(api, protected...)

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	return r
}
