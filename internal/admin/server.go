// Package admin implements a read-only HTTP introspection API for a
// running natsio client connection.
package admin

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lumadb/natsio/pkg/client"
	"github.com/lumadb/natsio/pkg/natsio"
	"go.uber.org/zap"
)

// Server is the admin HTTP API.
type Server struct {
	handle *client.ClientHandle
	logger *zap.Logger
	engine *gin.Engine
}

// NewServer creates a new admin API server over handle.
func NewServer(handle *client.ClientHandle, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		handle: handle,
		logger: logger,
		engine: engine,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/state", s.handleState)
	s.engine.GET("/subscriptions", s.handleSubscriptions)
	s.engine.GET("/keepalive", s.handleKeepAlive)
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleHealth(c *gin.Context) {
	state, _, _ := s.handle.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"connected": state == natsio.StateInfoReceived,
	})
}

func (s *Server) handleState(c *gin.Context) {
	state, _, _ := s.handle.Snapshot()
	c.JSON(http.StatusOK, gin.H{"state": stateName(state)})
}

func (s *Server) handleSubscriptions(c *gin.Context) {
	_, subs, _ := s.handle.Snapshot()
	out := make([]gin.H, 0, len(subs))
	for _, sub := range subs {
		out = append(out, gin.H{
			"sid":         sub.SID,
			"subject":     sub.Subject,
			"queue_group": sub.QueueGroup,
			"max_msgs":    sub.MaxMsgs,
		})
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": out})
}

func (s *Server) handleKeepAlive(c *gin.Context) {
	_, _, keepAlive := s.handle.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"last_ping_sent":     formatTime(keepAlive.LastPingSent),
		"last_ping_received": formatTime(keepAlive.LastPingReceived),
		"last_pong_received": formatTime(keepAlive.LastPongReceived),
	})
}

func formatTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}

func stateName(s natsio.StateKind) string {
	switch s {
	case natsio.StateAwaitingInfo:
		return "awaiting_info"
	case natsio.StateInfoReceived:
		return "info_received"
	case natsio.StateProtocolViolation:
		return "protocol_violation"
	case natsio.StateConnectionLost:
		return "connection_lost"
	default:
		return "unknown"
	}
}
