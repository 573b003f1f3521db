package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("PORT")
	os.Unsetenv("ACTIVE_RAG_PROFILE")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.ActiveProfile != "finance" {
		t.Errorf("expected default profile finance, got %s", cfg.ActiveProfile)
	}
	if cfg.RateLimitPerMinute != 100 {
		t.Errorf("expected default 100 rpm, got %d", cfg.RateLimitPerMinute)
	}
	if cfg.RateLimitPerHour != 1000 {
		t.Errorf("expected default 1000 rph, got %d", cfg.RateLimitPerHour)
	}
	if cfg.RateLimitBurst != 10 {
		t.Errorf("expected default burst 10, got %d", cfg.RateLimitBurst)
	}
	if cfg.SimilarityThreshold != 0.4 {
		t.Errorf("expected default threshold 0.4, got %v", cfg.SimilarityThreshold)
	}
	if cfg.RAGTopK != 5 {
		t.Errorf("expected default top-k 5, got %d", cfg.RAGTopK)
	}
	if cfg.GenAIModel != "gemini-2.0-flash" {
		t.Errorf("expected default model gemini-2.0-flash, got %s", cfg.GenAIModel)
	}
	if cfg.MaxBodySize != "10M" {
		t.Errorf("expected default body size 10M, got %s", cfg.MaxBodySize)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	os.Setenv("ACTIVE_RAG_PROFILE", "pharmacy")
	os.Setenv("RATE_LIMIT_PER_MINUTE", "30")
	defer os.Unsetenv("ACTIVE_RAG_PROFILE")
	defer os.Unsetenv("RATE_LIMIT_PER_MINUTE")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ActiveProfile != "pharmacy" {
		t.Errorf("expected pharmacy profile, got %s", cfg.ActiveProfile)
	}
	if cfg.RateLimitPerMinute != 30 {
		t.Errorf("expected 30 rpm, got %d", cfg.RateLimitPerMinute)
	}
}

func TestConfig_IsDev(t *testing.T) {
	c := &Config{Env: "development"}
	if !c.IsDev() {
		t.Error("expected IsDev() to return true for development")
	}

	c.Env = "production"
	if c.IsDev() {
		t.Error("expected IsDev() to return false for production")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Env:                 "development",
			ActiveProfile:       "finance",
			SimilarityThreshold: 0.4,
			RAGTopK:             5,
			Temperature:         0.2,
			RateLimitPerMinute:  100,
			RateLimitPerHour:    1000,
			RateLimitBurst:      10,
		}
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("expected valid base config, got %v", err)
	}

	t.Run("unknown profile", func(t *testing.T) {
		c := base()
		c.ActiveProfile = "retail"
		if err := c.Validate(); err == nil {
			t.Error("expected error for unknown profile")
		}
	})

	t.Run("production requires api key", func(t *testing.T) {
		c := base()
		c.Env = "production"
		if err := c.Validate(); err == nil {
			t.Error("expected error for missing GENAI_API_KEY in production")
		}
		c.GenAIAPIKey = "key"
		if err := c.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("threshold bounds", func(t *testing.T) {
		c := base()
		c.SimilarityThreshold = 1.5
		if err := c.Validate(); err == nil {
			t.Error("expected error for threshold > 1")
		}
	})

	t.Run("hour floor", func(t *testing.T) {
		c := base()
		c.RateLimitPerHour = 50
		if err := c.Validate(); err == nil {
			t.Error("expected error when hourly limit is below minute limit")
		}
	})

	t.Run("tls needs cert and key", func(t *testing.T) {
		c := base()
		c.TLSEnabled = true
		if err := c.Validate(); err == nil {
			t.Error("expected error for TLS without cert")
		}
		c.TLSCertFile = "cert.pem"
		c.TLSKeyFile = "key.pem"
		if err := c.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
