package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/learnforge/learnforge-backend/internal/config"
	"github.com/learnforge/learnforge-backend/internal/handler"
	"github.com/learnforge/learnforge-backend/internal/middleware"
	"github.com/learnforge/learnforge-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Learning  *handler.LearningHandler
	Execution *handler.ExecutionHandler
	WS        *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Generated curricula and lessons are large text payloads; compress
	// them for clients that accept brotli.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for execution routes (30 requests per minute per IP);
	// every run costs a Judge0 submission upstream.
	execLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Learning Group ─────────────────────────────────────────────
	api := router.Group("/api/v1")
	{
		api.POST("/curriculum/", handlers.Learning.GenerateCurriculum)
		api.POST("/lesson/", handlers.Learning.GenerateLesson)
		api.POST("/feedback/", handlers.Learning.GetFeedback)
	}

	// ─── 2. Execution Group (Rate Limited) ─────────────────────────────
	execAPI := router.Group("/api/v1/execute")
	{
		// The language catalog is static per deployment; let clients cache it.
		execAPI.GET("/", middleware.CacheControl(300), handlers.Execution.ListLanguages)
		execAPI.POST("/", execLimiter.Middleware(), handlers.Execution.RunCode)
		execAPI.GET("/runs", handlers.Execution.ListRuns)
	}

	// ─── 3. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/execute/stream", handlers.WS.ExecuteStream)
	}

	return router
}
