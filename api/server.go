// Package api serves the listings JSON API and the server-rendered page.
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"annonces-abidjan/config"
	"annonces-abidjan/utils"
)

// Routes of the page and of the listing fragment it reloads.
const (
	PagePath     = "/"
	FragmentPath = "/fragments/annonces"
)

// NewRouter builds the gin engine with every route registered.
func NewRouter(env string, logger *utils.Logger, h *Handler) *gin.Engine {
	mode := configureGinMode(env)
	logger.Debug("[api] gin initialized in %s mode", mode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(RequestLogger(logger.Slog()))
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length", "Content-Type", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	router.GET("/health", h.Health)
	router.GET(PagePath, h.Page)
	router.GET(FragmentPath, h.Fragment)

	api := router.Group("/api")
	api.GET("/statistiques", h.Statistics)
	api.GET("/annonces", h.Listings)
	api.GET("/annonces/du-jour", h.TodayListings)
	api.GET("/annonces/:id", h.Listing)
	api.GET("/quartiers", h.Neighborhoods)

	return router
}

// NewServer wraps the router in an http.Server listening on cfg.HTTPAddr.
func NewServer(cfg *config.Config, logger *utils.Logger, h *Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg.Env, logger, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test", "testing":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}
	return gin.Mode()
}
