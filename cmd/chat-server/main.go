package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kineticchat/webui/internal/chat"
	"github.com/kineticchat/webui/internal/chat/deterministic"
	"github.com/kineticchat/webui/internal/chat/rag"
	"github.com/kineticchat/webui/internal/config"
	"github.com/kineticchat/webui/internal/platform/llm"
	"github.com/kineticchat/webui/internal/platform/metrics"
	"github.com/kineticchat/webui/internal/platform/middleware"
	"github.com/kineticchat/webui/internal/platform/phi"
	"github.com/kineticchat/webui/internal/platform/store"
	"github.com/kineticchat/webui/internal/platform/vectorstore"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "chat-server",
		Short: "Bilingual chat backend with deterministic answers and retrieval",
	}

	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the chat API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

// rateLimitExcluded returns the paths the limiter never counts: health and
// observability probes plus static assets.
func rateLimitExcluded() (exact []string, prefixes []string) {
	exact = []string{
		"/", "/health", "/metrics",
		"/api/v1/health", "/api/v1/metrics", "/api/v1/status",
	}
	prefixes = []string{"/static"}
	return exact, prefixes
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	scrubber := phi.NewScrubber()
	collector := metrics.NewCollector(chat.ServiceName, chat.Version)

	profile, err := rag.ProfileFor(cfg.ActiveProfile)
	if err != nil {
		logger.Fatal().Err(err).Msg("unknown profile")
	}
	matcher := deterministic.NewMatcher(deterministic.ResponsesFor(cfg.ActiveProfile))

	// Retrieval stack. Without an API key the server still answers
	// deterministic intents.
	var responder chat.Responder
	var vectorClient *vectorstore.Client
	if cfg.GenAIAPIKey != "" {
		llmClient, err := llm.NewClient(ctx, llm.Options{
			APIKey:         cfg.GenAIAPIKey,
			Model:          cfg.GenAIModel,
			EmbeddingModel: cfg.EmbeddingModel,
			MaxTokens:      cfg.MaxTokens,
			Temperature:    cfg.Temperature,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create LLM client")
		}
		vectorClient = vectorstore.NewClient(cfg.QdrantURL, cfg.QdrantAPIKey)
		responder = rag.NewOrchestrator(profile, llmClient, vectorClient, llmClient, scrubber, logger, cfg.RAGTopK, cfg.SimilarityThreshold)
		logger.Info().Str("profile", cfg.ActiveProfile).Str("collection", profile.Collection).Msg("retrieval engine initialized")
	} else {
		logger.Warn().Msg("GENAI_API_KEY not set; serving deterministic answers only")
	}

	// Conversation store. Persistence is optional; without DATABASE_URL all
	// writes are discarded.
	var history store.ConversationStore = store.Nop{}
	if cfg.DatabaseURL != "" {
		pool, err := store.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		history = store.NewPG(pool, logger)
		logger.Info().Msg("conversation persistence enabled")
	}

	agent := chat.NewAgent(matcher, responder, scrubber, history, collector, logger)

	// Rate limiter with background idle sweep
	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		PerMinute:       cfg.RateLimitPerMinute,
		PerHour:         cfg.RateLimitPerHour,
		Burst:           cfg.RateLimitBurst,
		MaxClients:      cfg.MaxTrackedClients,
		CleanupInterval: cfg.CleanupInterval(),
		IdleTimeout:     cfg.IdleTimeout(),
	}, logger)
	sweepCtx, sweepCancel := context.WithCancel(ctx)
	defer sweepCancel()
	go limiter.StartCleanup(sweepCtx)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = chat.ErrorHandler(logger)

	secHeaders := middleware.DefaultSecurityHeadersConfig()
	secHeaders.EnableHSTS = cfg.EnableHSTS

	exact, prefixes := rateLimitExcluded()

	// Global middleware. Order matters: recovery outermost, then request id
	// and scrubbed logging, then the security layers, then metrics so
	// rejected requests are counted too.
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger, scrubber))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Content-Type", "X-Request-ID", "X-Session-ID"},
	}))
	e.Use(middleware.SecurityHeaders(secHeaders))
	e.Use(middleware.BodyLimit(cfg.MaxBodySize))
	e.Use(metrics.Middleware(collector))
	e.Use(middleware.Sanitize())
	e.Use(middleware.RateLimit(limiter, middleware.SkipPaths(exact, prefixes)))
	e.Use(middleware.RequestTimeout(cfg.Timeout(), "/api/v1/chat", "/api/chat"))
	e.Use(middleware.Audit(logger))

	// Routes
	handler := chat.NewHandler(chat.HandlerConfig{
		Agent:         agent,
		Collector:     collector,
		History:       history,
		Limiter:       limiter,
		Log:           logger,
		Environment:   cfg.Env,
		ProfileName:   cfg.ActiveProfile,
		Collection:    profile.Collection,
		PerMinute:     cfg.RateLimitPerMinute,
		RAGConfigured: responder != nil,
		VectorHealthy: func(ctx context.Context) bool {
			if vectorClient == nil {
				return false
			}
			return vectorClient.Healthy(ctx)
		},
	})
	handler.Register(e)

	if cfg.StaticDir != "" {
		e.Static("/static", cfg.StaticDir)
	}

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("profile", cfg.ActiveProfile).Msg("starting server")
		var err error
		if cfg.TLSEnabled {
			err = e.StartTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = e.Start(addr)
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
