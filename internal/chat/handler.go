package chat

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/kineticchat/webui/internal/platform/metrics"
	"github.com/kineticchat/webui/internal/platform/middleware"
	"github.com/kineticchat/webui/internal/platform/store"
)

// ServiceName and Version identify the service in health and metrics
// responses.
const (
	ServiceName = "KineticChat WebUI"
	Version     = "1.0.0"
)

// Handler exposes the chat HTTP surface.
type Handler struct {
	agent     *Agent
	collector *metrics.Collector
	history   store.ConversationStore
	limiter   *middleware.RateLimiter
	log       zerolog.Logger

	environment string
	profileName string
	collection  string
	perMinute   int

	ragConfigured bool
	vectorHealthy func(ctx context.Context) bool

	startTime time.Time
}

// HandlerConfig carries the wiring for a Handler.
type HandlerConfig struct {
	Agent         *Agent
	Collector     *metrics.Collector
	History       store.ConversationStore
	Limiter       *middleware.RateLimiter
	Log           zerolog.Logger
	Environment   string
	ProfileName   string
	Collection    string
	PerMinute     int
	RAGConfigured bool
	VectorHealthy func(ctx context.Context) bool
}

// NewHandler creates the HTTP handler set.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		agent:         cfg.Agent,
		collector:     cfg.Collector,
		history:       cfg.History,
		limiter:       cfg.Limiter,
		log:           cfg.Log,
		environment:   cfg.Environment,
		profileName:   cfg.ProfileName,
		collection:    cfg.Collection,
		perMinute:     cfg.PerMinute,
		ragConfigured: cfg.RAGConfigured,
		vectorHealthy: cfg.VectorHealthy,
		startTime:     time.Now(),
	}
}

// Register attaches all routes to the echo instance.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/", h.Root)
	e.GET("/health", h.Health)
	e.GET("/metrics", h.Metrics)

	e.POST("/api/v1/chat", h.Chat)
	e.POST("/api/chat", h.Chat) // legacy path kept for existing frontends
	e.POST("/api/v1/chat/feedback", h.Feedback)
	e.GET("/api/v1/health", h.HealthV1)
	e.GET("/api/v1/metrics", h.MetricsV1)
	e.GET("/api/v1/status", h.Status)
}

// Chat answers one message. The full response is assembled server-side and
// returned as a single JSON envelope.
func (h *Handler) Chat(c echo.Context) error {
	var req Request
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request format")
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	// Expose the language to the metrics middleware.
	c.Set("language", req.Language)

	start := time.Now()
	var full strings.Builder
	source, err := h.agent.Process(c.Request().Context(), req.Text(), req.SessionID, req.Language, func(chunk string) error {
		full.WriteString(chunk)
		return nil
	})
	if err != nil {
		h.log.Error().Err(err).Msg("chat processing error")
	}

	return c.JSON(http.StatusOK, Response{
		Response:     full.String(),
		SessionID:    req.SessionID,
		Language:     req.Language,
		Source:       source,
		ResponseTime: time.Since(start).Seconds(),
		Timestamp:    now(),
		Status:       "success",
	})
}

// Feedback accepts a rating for a chat response.
func (h *Handler) Feedback(c echo.Context) error {
	var req FeedbackRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid feedback format")
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	sessionRef := req.SessionID
	if sessionRef == "" {
		sessionRef = req.ConversationID
	}
	fb := &store.Feedback{
		SessionHash: hashSessionID(sessionRef),
		Rating:      req.Rating,
		Comment:     req.Comment,
	}
	if h.history != nil {
		if err := h.history.SaveFeedback(c.Request().Context(), fb); err != nil {
			h.log.Warn().Err(err).Msg("failed to persist feedback")
		}
	}

	h.log.Info().Str("session_hash", fb.SessionHash).Float64("rating", req.Rating).Msg("feedback received")
	return c.JSON(http.StatusOK, map[string]any{
		"status":      "accepted",
		"feedback_id": uuid.NewString(),
	})
}

// Root returns basic service information.
func (h *Handler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"service":   ServiceName,
		"version":   Version,
		"status":    "operational",
		"health":    "/health",
		"health_v1": "/api/v1/health",
	})
}

// Health is the legacy liveness endpoint.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":         "healthy",
		"service":        ServiceName,
		"version":        Version,
		"timestamp":      now(),
		"uptime_seconds": time.Since(h.startTime).Seconds(),
		"environment":    h.environment,
	})
}

// HealthV1 reports per-component health.
func (h *Handler) HealthV1(c echo.Context) error {
	ctx := c.Request().Context()

	llmStatus := "unhealthy"
	if h.ragConfigured {
		llmStatus = "healthy"
	}
	vectorStatus := "unhealthy"
	if h.vectorHealthy != nil && h.vectorHealthy(ctx) {
		vectorStatus = "healthy"
	}
	dbStatus := "healthy"
	if h.history != nil && !h.history.Healthy(ctx) {
		dbStatus = "unhealthy"
	}

	allHealthy := llmStatus == "healthy" && vectorStatus == "healthy" && dbStatus == "healthy"
	status := "degraded"
	if allHealthy {
		status = "healthy"
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":         status,
		"service":        ServiceName,
		"version":        Version,
		"timestamp":      now(),
		"uptime_seconds": time.Since(h.startTime).Seconds(),
		"environment":    h.environment,
		"checks": map[string]string{
			"api":          "operational",
			"rag_config":   "healthy",
			"llm":          llmStatus,
			"vector_store": vectorStatus,
			"database":     dbStatus,
		},
	})
}

// Metrics is the condensed legacy metrics endpoint.
func (h *Handler) Metrics(c echo.Context) error {
	s := h.collector.Snapshot()
	return c.JSON(http.StatusOK, map[string]any{
		"service":              ServiceName,
		"version":              Version,
		"requests_total":       s.Requests.Total,
		"active_connections":   s.Requests.Active,
		"response_time_avg_ms": s.ResponseTimes.Average,
		"timestamp":            now(),
	})
}

// MetricsV1 returns the full metrics snapshot.
func (h *Handler) MetricsV1(c echo.Context) error {
	return c.JSON(http.StatusOK, h.collector.Snapshot())
}

// Status is the detailed component status endpoint.
func (h *Handler) Status(c echo.Context) error {
	var limiterStats any
	if h.limiter != nil {
		limiterStats = h.limiter.Stats()
	}

	return c.JSON(http.StatusOK, map[string]any{
		"service": ServiceName,
		"version": Version,
		"status":  "operational",
		"components": map[string]any{
			"api": map[string]any{
				"status": "operational",
			},
			"rag_config": map[string]any{
				"status":  "operational",
				"profile": h.profileName,
			},
			"rag_engine": map[string]any{
				"status":     ragEngineStatus(h.ragConfigured),
				"vector_db":  "qdrant",
				"collection": h.collection,
			},
			"rate_limiter": limiterStats,
		},
		"configuration": map[string]any{
			"environment":   h.environment,
			"rate_limiting": rateLimitSummary(h.perMinute),
			"phi_scrubbing": "enabled",
		},
		"timestamp": now(),
	})
}

func ragEngineStatus(configured bool) string {
	if configured {
		return "operational"
	}
	return "disabled"
}

func rateLimitSummary(perMinute int) string {
	return strconv.Itoa(perMinute) + " req/min"
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]any{
		"error":  msg,
		"status": "error",
	})
}
