package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aria-assistant/aria/pkg/assistant"
	"github.com/aria-assistant/aria/pkg/config"
	"github.com/aria-assistant/aria/pkg/types"
)

// CommandProcessor is the minimal pipeline contract the API server relies on.
type CommandProcessor interface {
	Process(ctx context.Context, text string, history []types.Message) *assistant.CommandResponse
}

// MediaStatus reports the media integration's health for /health.
type MediaStatus interface {
	Ready() bool
	User() string
}

// CommandRequest is the body of POST /process and of each WebSocket message.
type CommandRequest struct {
	Text    string           `json:"text" binding:"required"`
	Context []ContextMessage `json:"context"`
}

// ContextMessage is one prior conversation turn supplied by the client.
type ContextMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (r *CommandRequest) history() []types.Message {
	if len(r.Context) == 0 {
		return nil
	}
	msgs := make([]types.Message, 0, len(r.Context))
	for _, m := range r.Context {
		msgs = append(msgs, types.Message{Role: m.Role, Content: m.Content})
	}
	return msgs
}

// Server hosts the Gin engine and both command transports.
type Server struct {
	Engine *gin.Engine

	processor CommandProcessor
	media     MediaStatus
	provider  string
	apiKey    string
	log       *slog.Logger
}

// NewServer constructs the HTTP API server. providerID names the active LLM
// provider for health reporting.
func NewServer(cfg config.HTTPConfig, processor CommandProcessor, media MediaStatus, providerID string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	srv := &Server{
		Engine:    engine,
		processor: processor,
		media:     media,
		provider:  providerID,
		apiKey:    cfg.APIKey,
		log:       logger,
	}

	engine.Use(srv.requestLogger())
	engine.Use(srv.apiKeyMiddleware())

	engine.GET("/", srv.handleRoot)
	engine.GET("/health", srv.handleHealth)
	engine.GET("/healthz", srv.handleHealth)
	engine.POST("/process", srv.handleProcess)
	engine.GET("/ws", srv.handleWebSocket)

	return srv
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		// WebSocket upgrades are long-lived; the connection handler logs
		// its own lifecycle.
		if c.FullPath() == "/ws" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		s.log.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) apiKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.apiKey == "" {
			return
		}
		key := c.GetHeader("X-API-Key")
		if key == "" || key != s.apiKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
			return
		}
	}
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Voice assistant API is running",
		"status":  "running",
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	spotifyStatus := "not_authenticated"
	if s.media != nil && s.media.Ready() {
		spotifyStatus = "ready"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services": gin.H{
			"llm":      s.provider,
			"spotify":  spotifyStatus,
			"calendar": "not_configured",
		},
	})
}

func (s *Server) handleProcess(c *gin.Context) {
	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	resp := s.processor.Process(c.Request.Context(), req.Text, req.history())
	c.JSON(http.StatusOK, resp)
}
