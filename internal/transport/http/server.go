package http

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"legaldoc-ai/internal/bootstrap"
	"legaldoc-ai/internal/config"
	"legaldoc-ai/internal/transport/http/handler"
)

type Handlers struct {
	Analyze *handler.AnalyzeHandler
	Chat    *handler.ChatHandler
	Health  *handler.HealthHandler
}

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)

	checks := make(map[string]handler.DependencyCheck)
	for name, check := range app.HealthChecks() {
		checks[name] = handler.DependencyCheck(check)
	}

	return newEngine(app.Config.App, Handlers{
		Analyze: handler.NewAnalyzeHandler(app.AnalysisService, app.Config.Upload.MaxBytes, app.Logger),
		Chat:    handler.NewChatHandler(app.ChatService, app.Logger),
		Health: handler.NewHealthHandler(
			app.Config.App.Name,
			app.Config.ModelConfigured(),
			app.Config.GCPConfigured(),
			app.StartedAt,
			checks,
		),
	})
}

func newEngine(cfg config.AppConfig, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), corsMiddleware(cfg.AllowedOrigins))

	router.GET("/", h.Health.Root)

	// every route is served both at the root and under /api
	for _, group := range []*gin.RouterGroup{&router.RouterGroup, router.Group("/api")} {
		group.GET("/health", h.Health.Check)
		group.POST("/analyze", h.Analyze.Analyze)
		group.GET("/chat", h.Chat.Usage)
		group.POST("/chat", h.Chat.SendMessage)
	}
	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
