package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/tikulab/tiku-backend/internal/config"
	"github.com/tikulab/tiku-backend/internal/handler"
	"github.com/tikulab/tiku-backend/internal/middleware"
	"github.com/tikulab/tiku-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Bank    *handler.BankHandler
	Session *handler.SessionHandler
	History *handler.HistoryHandler
	Book    *handler.BookHandler
	WS      *handler.WSHandler
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
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally, except on workbook downloads
	// which are already compressed containers.
	router.Use(middleware.BrotliWithConfig(middleware.BrotliConfig{
		Quality:   middleware.DefaultBrotliConfig.Quality,
		MinLength: middleware.DefaultBrotliConfig.MinLength,
		Skipper:   middleware.SkipSuffixes("/export", "/template"),
	}))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for workbook imports (20 uploads per minute per IP).
	importLimiter := middleware.NewRateLimiter(20, time.Minute)

	api := router.Group("/api/v1")
	{
		// Question banks
		api.GET("/banks", handlers.Bank.ListBanks)
		api.POST("/banks", handlers.Bank.CreateBank)
		api.GET("/banks/template",
			middleware.CacheControl(86400),
			handlers.Bank.DownloadTemplate,
		)
		api.POST("/banks/import",
			importLimiter.Middleware(),
			handlers.Bank.ImportQuestions,
		)
		api.GET("/banks/:id", handlers.Bank.GetBank)
		api.PUT("/banks/:id", handlers.Bank.UpdateBank)
		api.DELETE("/banks/:id", handlers.Bank.DeleteBank)
		api.GET("/banks/:id/export", handlers.Bank.ExportBank)
		api.POST("/banks/:id/sessions", handlers.Session.StartBankSession)

		// Sessions. Session state changes every second; forbid caching.
		sessions := api.Group("/sessions", middleware.NoStore())
		sessions.GET("/:id", handlers.Session.GetSession)
		sessions.PUT("/:id/answers", handlers.Session.RecordAnswer)
		sessions.PUT("/:id/position", handlers.Session.Navigate)
		sessions.POST("/:id/pause", handlers.Session.TogglePause)
		sessions.POST("/:id/submit", handlers.Session.Submit)

		// Exam history
		api.GET("/history", handlers.History.ListHistory)
		api.GET("/history/:id", handlers.History.GetHistory)
		api.DELETE("/history/:id", handlers.History.DeleteHistory)

		// Wrong-answer books
		api.GET("/books", handlers.Book.ListBooks)
		api.GET("/books/:id", handlers.Book.GetBook)
		api.DELETE("/books/:id", handlers.Book.DeleteBook)
		api.POST("/books/:id/sessions", handlers.Session.StartPracticeSession)
	}

	// ─── WebSocket ─────────────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/sessions/:id/stream", handlers.WS.SessionStream)
	}

	return router
}
