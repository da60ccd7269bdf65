package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/linechat/internal/core"
	"github.com/vovakirdan/linechat/internal/proto"
	"github.com/vovakirdan/linechat/internal/session"
	"github.com/vovakirdan/linechat/internal/store"
)

const (
	defaultSessionsLimit = 50
	maxSessionsLimit     = 500
)

// APIHandlers provides HTTP handlers for the operator API.
type APIHandlers struct {
	sessions *session.Service
	journal  store.SessionStore
	limiter  *rateLimiter
	log      *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance. announceLimit caps
// announcements per minute; zero means unlimited.
func NewAPIHandlers(sessions *session.Service, journal store.SessionStore, announceLimit int, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{
		sessions: sessions,
		journal:  journal,
		limiter:  newRateLimiter(announceLimit),
		log:      logger,
	}
}

// StatsResponse represents the stats response body.
type StatsResponse struct {
	core.Stats
	Active int64 `json:"active"`
}

// AnnounceRequest represents the announce request body.
type AnnounceRequest struct {
	Text string `json:"text" binding:"required"`
}

// AnnounceResponse represents the announce response body.
type AnnounceResponse struct {
	Delivered int `json:"delivered"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Stats reports registry counters and live connections.
// GET /api/stats
func (h *APIHandlers) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, StatsResponse{
		Stats:  h.sessions.Registry().Stats(),
		Active: h.sessions.Active(),
	})
}

// Rooms lists rooms in creation order with their members.
// GET /api/rooms
func (h *APIHandlers) Rooms(c *gin.Context) {
	c.JSON(http.StatusOK, h.sessions.Registry().Rooms())
}

// Announce sends a server line to every registered participant.
// POST /api/announce
func (h *APIHandlers) Announce(c *gin.Context) {
	var req AnnounceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid announce request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" || strings.ContainsAny(text, "\r\n") {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "text must be a single non-empty line"})
		return
	}

	if !h.limiter.allow() {
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "announce rate limit exceeded"})
		return
	}

	delivered := h.sessions.Registry().BroadcastAll(nil, proto.FormatAnnouncement(text))
	h.log.Info().Int("delivered", delivered).Msg("announcement sent")
	c.JSON(http.StatusOK, AnnounceResponse{Delivered: delivered})
}

// Sessions returns the most recent journal entries.
// GET /api/sessions?limit=N
func (h *APIHandlers) Sessions(c *gin.Context) {
	limit := defaultSessionsLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = min(n, maxSessionsLimit)
	}

	sessions, err := h.journal.RecentSessions(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list sessions")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, sessions)
}
