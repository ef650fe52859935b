package api

import (
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codyseavey/jeeves/internal/api/handlers"
	"github.com/codyseavey/jeeves/internal/metrics"
	"github.com/codyseavey/jeeves/internal/services"
)

// Dependencies groups what the router needs. History may be nil when no
// database is configured; Refresh may be nil when the worker is disabled.
type Dependencies struct {
	Catalog     *services.CatalogStore
	Lookup      *services.LookupService
	Reloader    services.CatalogReloader
	History     handlers.HistoryReader
	Refresh     *services.RefreshWorker
	CORSOrigins []string
	AdminToken  string
}

func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestMetrics())

	// CORS configuration - allow configured origins only
	config := cors.DefaultConfig()
	if len(deps.CORSOrigins) > 0 {
		config.AllowOrigins = deps.CORSOrigins
	} else {
		config.AllowAllOrigins = true
	}
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	config.AllowCredentials = false
	router.Use(cors.New(config))

	// Initialize handlers
	cardHandler := handlers.NewCardHandler(deps.Lookup)
	catalogHandler := handlers.NewCatalogHandler(deps.Catalog, deps.Reloader, deps.Refresh)
	historyHandler := handlers.NewHistoryHandler(deps.History)

	// API routes
	api := router.Group("/api")
	{
		// Card routes
		cards := api.Group("/cards")
		{
			cards.GET("/resolve", cardHandler.ResolveCard)
			cards.GET("/:code", cardHandler.GetCard)
		}

		api.POST("/messages", cardHandler.HandleMessage)

		// Catalog routes
		catalog := api.Group("/catalog")
		{
			catalog.GET("/status", catalogHandler.GetStatus)
			catalog.POST("/reload", requireAdmin(deps.AdminToken), catalogHandler.Reload)
		}

		api.GET("/lookups", historyHandler.GetRecent)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "cards": deps.Catalog.Snapshot().CardCount()})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// requireAdmin checks a bearer token. An empty token leaves the route open,
// which is only sensible when the server listens on a private address.
func requireAdmin(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		if c.GetHeader("Authorization") != "Bearer "+token {
			c.AbortWithStatusJSON(401, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
