package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/unirank/rankbrowser/internal/config"
	"github.com/unirank/rankbrowser/internal/handler"
	"github.com/unirank/rankbrowser/internal/middleware"
	"github.com/unirank/rankbrowser/internal/response"
	"github.com/unirank/rankbrowser/internal/view"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Page *handler.PageHandler
	API  *handler.APIHandler
}

// SetupRouter configures the page routes, the JSON API and static assets.
func SetupRouter(
	handlers *Handlers,
	limiter *middleware.RateLimiter,
	cfg *config.Config,
	log zerolog.Logger,
) (*gin.Engine, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	tmpl, err := view.LoadTemplates()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	// Embedded stylesheet, cached for a day.
	staticGroup := router.Group("/static")
	staticGroup.Use(middleware.CacheControl(86400))
	{
		staticGroup.StaticFS("/", view.StaticFS())
	}

	// Health check.
	router.GET("/health", handlers.API.Health)

	// ─── 1. Browser Pages ──────────────────────────────────────────────
	pages := router.Group("/")
	pages.Use(middleware.NoStore())
	{
		pages.GET("/", handlers.Page.Index)
		pages.GET("/search", handlers.Page.Search)
		pages.GET("/reset", handlers.Page.Reset)
		pages.GET("/universities/:name", handlers.Page.University)
		pages.POST("/subject-search", handlers.Page.SubjectSearch)
	}

	// ─── 2. JSON API (CORS, Rate Limited) ──────────────────────────────
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

	api := router.Group("/api/v1")
	api.Use(cors.New(corsConfig))
	if limiter != nil {
		api.Use(limiter.Middleware())
	}
	{
		api.GET("/universities", handlers.API.ListUniversities)
		api.POST("/universities/search", handlers.API.SearchUniversities)
		api.POST("/universities/reset", handlers.API.ResetUniversities)
		api.GET("/universities/:name", handlers.API.GetUniversity)

		api.GET("/subjects", handlers.API.ListSubjects)
		api.GET("/subjects/:subject/specialties", handlers.API.ListSpecialties)
		api.POST("/subjects/search", handlers.API.SearchSubjects)
	}

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	})

	return router, nil
}
