package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// Chat profile selection. "finance" and "pharmacy" are shipped.
	ActiveProfile string `mapstructure:"ACTIVE_RAG_PROFILE"`

	// LLM and embedding settings.
	GenAIAPIKey    string  `mapstructure:"GENAI_API_KEY"`
	GenAIModel     string  `mapstructure:"GENAI_MODEL"`
	EmbeddingModel string  `mapstructure:"EMBEDDING_MODEL"`
	MaxTokens      int     `mapstructure:"MAX_TOKENS"`
	Temperature    float64 `mapstructure:"TEMPERATURE"`

	// Vector store settings.
	QdrantURL           string  `mapstructure:"QDRANT_URL"`
	QdrantAPIKey        string  `mapstructure:"QDRANT_API_KEY"`
	SimilarityThreshold float64 `mapstructure:"SIMILARITY_THRESHOLD"`
	RAGTopK             int     `mapstructure:"RAG_TOP_K"`

	// Optional conversation persistence. The chat service runs without a
	// database; history and feedback are simply not stored.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`

	// Rate limiting.
	RateLimitPerMinute    int `mapstructure:"RATE_LIMIT_PER_MINUTE"`
	RateLimitPerHour      int `mapstructure:"RATE_LIMIT_PER_HOUR"`
	RateLimitBurst        int `mapstructure:"RATE_LIMIT_BURST"`
	MaxTrackedClients     int `mapstructure:"MAX_TRACKED_CLIENTS"`
	ClientCleanupInterval int `mapstructure:"CLIENT_CLEANUP_INTERVAL"` // seconds
	ClientIdleTimeout     int `mapstructure:"CLIENT_IDLE_TIMEOUT"`     // seconds

	// HTTP surface.
	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`
	StaticDir      string   `mapstructure:"STATIC_DIR"`
	RequestTimeout int      `mapstructure:"REQUEST_TIMEOUT"` // seconds
	MaxBodySize    string   `mapstructure:"MAX_BODY_SIZE"`   // echo size string, e.g. "10M"
	EnableHSTS     bool     `mapstructure:"ENABLE_HSTS"`

	TLSEnabled  bool   `mapstructure:"TLS_ENABLED"`
	TLSCertFile string `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile  string `mapstructure:"TLS_KEY_FILE"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("ACTIVE_RAG_PROFILE", "finance")
	v.SetDefault("GENAI_MODEL", "gemini-2.0-flash")
	v.SetDefault("EMBEDDING_MODEL", "text-embedding-004")
	v.SetDefault("MAX_TOKENS", 1000)
	v.SetDefault("TEMPERATURE", 0.2)
	v.SetDefault("QDRANT_URL", "http://localhost:6333")
	v.SetDefault("SIMILARITY_THRESHOLD", 0.4)
	v.SetDefault("RAG_TOP_K", 5)
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 100)
	v.SetDefault("RATE_LIMIT_PER_HOUR", 1000)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("MAX_TRACKED_CLIENTS", 10000)
	v.SetDefault("CLIENT_CLEANUP_INTERVAL", 300)
	v.SetDefault("CLIENT_IDLE_TIMEOUT", 3600)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("STATIC_DIR", "static")
	v.SetDefault("REQUEST_TIMEOUT", 30)
	v.SetDefault("MAX_BODY_SIZE", "10M")
	v.SetDefault("ENABLE_HSTS", true)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("ACTIVE_RAG_PROFILE")
	v.BindEnv("GENAI_API_KEY")
	v.BindEnv("GENAI_MODEL")
	v.BindEnv("EMBEDDING_MODEL")
	v.BindEnv("MAX_TOKENS")
	v.BindEnv("TEMPERATURE")
	v.BindEnv("QDRANT_URL")
	v.BindEnv("QDRANT_API_KEY")
	v.BindEnv("SIMILARITY_THRESHOLD")
	v.BindEnv("RAG_TOP_K")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("RATE_LIMIT_PER_MINUTE")
	v.BindEnv("RATE_LIMIT_PER_HOUR")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("MAX_TRACKED_CLIENTS")
	v.BindEnv("CLIENT_CLEANUP_INTERVAL")
	v.BindEnv("CLIENT_IDLE_TIMEOUT")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("STATIC_DIR")
	v.BindEnv("REQUEST_TIMEOUT")
	v.BindEnv("MAX_BODY_SIZE")
	v.BindEnv("ENABLE_HSTS")
	v.BindEnv("TLS_ENABLED")
	v.BindEnv("TLS_CERT_FILE")
	v.BindEnv("TLS_KEY_FILE")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.GenAIAPIKey == "" && cfg.IsDev() {
		log.Println("WARNING: GENAI_API_KEY is not set. Retrieval-augmented answers")
		log.Println("WARNING: are disabled; only deterministic responses will be served.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// CleanupInterval returns the client cleanup interval as a duration.
func (c *Config) CleanupInterval() time.Duration {
	return time.Duration(c.ClientCleanupInterval) * time.Second
}

// IdleTimeout returns the client idle timeout as a duration.
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.ClientIdleTimeout) * time.Second
}

// Timeout returns the per-request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// Validate checks that the configuration is safe to run. Production requires
// an LLM API key; development degrades to deterministic-only answers.
func (c *Config) Validate() error {
	if c.ActiveProfile != "finance" && c.ActiveProfile != "pharmacy" {
		return fmt.Errorf("ACTIVE_RAG_PROFILE must be \"finance\" or \"pharmacy\", got %q", c.ActiveProfile)
	}

	if c.IsProduction() && c.GenAIAPIKey == "" {
		return fmt.Errorf("GENAI_API_KEY is required in production")
	}

	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("SIMILARITY_THRESHOLD must be between 0 and 1, got %v", c.SimilarityThreshold)
	}
	if c.RAGTopK < 1 {
		return fmt.Errorf("RAG_TOP_K must be at least 1, got %d", c.RAGTopK)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("TEMPERATURE must be between 0 and 2, got %v", c.Temperature)
	}

	if c.RateLimitPerMinute < 1 || c.RateLimitPerHour < 1 || c.RateLimitBurst < 1 {
		return fmt.Errorf("rate limits must be positive")
	}
	if c.RateLimitPerHour < c.RateLimitPerMinute {
		return fmt.Errorf("RATE_LIMIT_PER_HOUR (%d) must be >= RATE_LIMIT_PER_MINUTE (%d)",
			c.RateLimitPerHour, c.RateLimitPerMinute)
	}

	// TLS validation: when TLS is enabled, cert and key files must be specified.
	if c.TLSEnabled {
		if c.TLSCertFile == "" {
			return fmt.Errorf("TLS_CERT_FILE is required when TLS_ENABLED is true")
		}
		if c.TLSKeyFile == "" {
			return fmt.Errorf("TLS_KEY_FILE is required when TLS_ENABLED is true")
		}
	}

	return nil
}
