package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/relaychat-server/internal/auth"
	"github.com/vovakirdan/relaychat-server/internal/config"
	"github.com/vovakirdan/relaychat-server/internal/core"
)

// NewServer builds the HTTP server: health, the chat WebSocket endpoint,
// and the JWT-gated diagnostics API when a secret is configured.
func NewServer(hub *core.Hub, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", healthHandler)
	router.GET("/ws", gin.WrapH(NewWSHandler(hub, logger)))

	if cfg.JWTSecret != "" {
		jwtConfig := &auth.JWTConfig{
			Secret: []byte(cfg.JWTSecret),
			Issuer: cfg.JWTIssuer,
		}
		api := router.Group("/api", LoggerMiddleware(logger), AuthMiddleware(jwtConfig, logger))
		api.GET("/stats", statsHandler(hub))
	}

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}

// statsHandler serves a hub snapshot. The query goes through the hub's
// command queue, so the numbers are consistent with command processing.
func statsHandler(hub *core.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := hub.Snapshot(c.Request.Context())
		if err != nil {
			c.JSON(stdhttp.StatusServiceUnavailable, ErrorResponse{Error: "hub unavailable"})
			return
		}
		c.JSON(stdhttp.StatusOK, stats)
	}
}
