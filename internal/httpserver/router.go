package httpserver

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"freegift/internal/repository/audit"
)

// Deps carries the services the handlers need.
type Deps struct {
	GiftSvc GiftService
	RuleSvc RuleService
	Audit   audit.Repository

	// StorefrontURL, when set, restricts the banner-facing endpoints to the
	// shop's origin; empty allows any origin (development).
	StorefrontURL string
}

// buildRouter wires routes for the gift app.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(corsConfig(deps.StorefrontURL)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	app := router.Group("/apps/embedded/app/gift")
	app.POST("/apply", applyGiftHandler(deps.GiftSvc))
	app.GET("/status", giftStatusHandler(deps.GiftSvc))
	app.GET("/settings", getSettingsHandler(deps.RuleSvc))
	app.PUT("/settings", putSettingsHandler(deps.RuleSvc))
	app.GET("/audit", auditHandler(deps.Audit))

	return router
}

func corsConfig(storefrontURL string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}
	if storefrontURL != "" {
		cfg.AllowOrigins = []string{storefrontURL}
	} else {
		cfg.AllowAllOrigins = true
	}
	return cfg
}
