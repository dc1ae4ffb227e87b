package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/scroll-feed/app/cfg"
	"github.com/lysyi3m/scroll-feed/app/render"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	// Set Gin mode (can be controlled via GIN_MODE environment variable)
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Middleware
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
		SkipPaths: []string{"/health"},
	}))

	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, apiAccessKey)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	r.GET("/", handler.GetIndex)
	r.StaticFS("/static", http.FS(render.StaticFS()))

	r.GET("/feeds/:id", handler.GetFeedView)
	r.GET("/health", handler.GetHealth)

	api := r.Group("/api")
	{
		api.POST("/feeds", handler.CreateFeed)
		api.GET("/feeds/:id", handler.GetFeedState)
		api.DELETE("/feeds/:id", handler.DeleteFeed)
		api.POST("/feeds/:id/scroll", handler.ScrollFeed)
		api.POST("/feeds/:id/load", handler.LoadMore)
		api.GET("/pages/:page", handler.GetPage)
	}

	// Admin endpoints (conditionally enabled with authentication)
	if apiAccessKey != "" {
		admin := api.Group("")
		admin.Use(authMiddleware(apiAccessKey))
		admin.GET("/sessions", handler.APIListSessions)
		slog.Info("Admin endpoints enabled with authentication")
	} else {
		slog.Info("Admin endpoints disabled (API_ACCESS_KEY not set)")
	}

	r.GET("/about", func(c *gin.Context) {
		endpoints := map[string]string{
			"page":   "/",
			"feed":   "/feeds/<id>",
			"mount":  "/api/feeds (POST)",
			"scroll": "/api/feeds/<id>/scroll (POST)",
			"load":   "/api/feeds/<id>/load (POST)",
			"pages":  "/api/pages/<page>",
			"health": "/health",
		}

		if apiAccessKey != "" {
			endpoints["sessions"] = "/api/sessions (requires X-API-Key header)"
		}

		c.JSON(http.StatusOK, gin.H{
			"service":     "Scroll Feed",
			"title":       handler.renderer.Title(),
			"version":     cfg.GetVersion(),
			"description": "Paged product feed with scroll-driven loading",
			"endpoints":   endpoints,
			"api_status": map[string]interface{}{
				"enabled":       apiAccessKey != "",
				"auth_required": apiAccessKey != "",
				"header":        "X-API-Key",
			},
		})
	})

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

// authMiddleware creates authentication middleware for admin endpoints
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
