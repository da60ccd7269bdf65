package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/linechat/internal/config"
	"github.com/vovakirdan/linechat/internal/session"
	"github.com/vovakirdan/linechat/internal/store"
)

// NewServer builds the operator HTTP server: health, registry inspection,
// announcements, the session journal and the WebSocket chat endpoint.
func NewServer(sessions *session.Service, journal store.SessionStore, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	if journal == nil {
		journal = store.Nop{}
	}
	l := logger.With().Str("component", "http").Logger()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(&l))

	router.GET("/health", healthHandler)
	router.GET("/ws", gin.WrapH(NewWSHandler(sessions, WSOptions{
		MaxLineBytes: cfg.MaxLineBytes,
		WriteTimeout: cfg.WriteTimeout,
	}, &l)))

	api := NewAPIHandlers(sessions, journal, cfg.AnnounceRateLimit, &l)
	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/stats", api.Stats)
		apiGroup.GET("/rooms", api.Rooms)
		apiGroup.POST("/announce", api.Announce)
		apiGroup.GET("/sessions", api.Sessions)
	}

	return &stdhttp.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
