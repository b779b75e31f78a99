// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"tickerpulse/pkg/classifier"
	"tickerpulse/pkg/news"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every setting the api and watcher binaries read. Credentials
// are optional here; a missing key is reported by the call that needs it.
type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	FrontendURL string `envconfig:"FRONTEND_URL"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
	RedisURL    string `envconfig:"REDIS_URL"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	NewsProvider       string `envconfig:"NEWS_PROVIDER" default:"massive"`
	PolygonAPIKey      string `envconfig:"POLYGON_API_KEY"`
	MassiveBaseURL     string `envconfig:"MASSIVE_BASE_URL"`
	FinnHubAPIKey      string `envconfig:"FINNHUB_API_KEY"`
	AlphaVantageAPIKey string `envconfig:"ALPHA_VANTAGE_API_KEY"`

	ModelBackend     string `envconfig:"MODEL_BACKEND" default:"huggingface"`
	HuggingFaceToken string `envconfig:"HUGGING_FACE_TOKEN"`
	HFInferenceURL   string `envconfig:"HF_INFERENCE_URL"`
	OpenAIAPIKey     string `envconfig:"OPENAI_API_KEY"`
	AnthropicAPIKey  string `envconfig:"ANTHROPIC_API_KEY"`

	PollInterval  time.Duration `envconfig:"POLL_INTERVAL" default:"60s"`
	ClassifyDelay time.Duration `envconfig:"CLASSIFY_DELAY" default:"1s"`
	NewsCacheTTL  time.Duration `envconfig:"NEWS_CACHE_TTL" default:"60s"`
	HTTPTimeout   time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
}

// hfTokenFallbacks are read in order when HUGGING_FACE_TOKEN is empty.
var hfTokenFallbacks = []string{"NEXT_PUBLIC_HUGGING_FACE_TOKEN", "HF_TOKEN"}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv parses the process environment without touching .env.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if cfg.HuggingFaceToken == "" {
		for _, name := range hfTokenFallbacks {
			if v := os.Getenv(name); v != "" {
				cfg.HuggingFaceToken = v
				break
			}
		}
	}

	cfg.NewsProvider = strings.ToLower(strings.TrimSpace(cfg.NewsProvider))
	cfg.ModelBackend = strings.ToLower(strings.TrimSpace(cfg.ModelBackend))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.NewsProvider {
	case news.ProviderMassive, news.ProviderFinnHub, news.ProviderAlphaVantage:
	default:
		return fmt.Errorf("unknown NEWS_PROVIDER %q", c.NewsProvider)
	}

	switch c.ModelBackend {
	case classifier.BackendHuggingFace, classifier.BackendOpenAI, classifier.BackendAnthropic:
	default:
		return fmt.Errorf("unknown MODEL_BACKEND %q", c.ModelBackend)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown LOG_LEVEL %q", c.LogLevel)
	}

	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat)
	}

	durations := map[string]time.Duration{
		"POLL_INTERVAL":  c.PollInterval,
		"CLASSIFY_DELAY": c.ClassifyDelay,
		"NEWS_CACHE_TTL": c.NewsCacheTTL,
		"HTTP_TIMEOUT":   c.HTTPTimeout,
	}
	for name, d := range durations {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	return nil
}

func (c *Config) NewsCredentials() news.Credentials {
	return news.Credentials{
		MassiveAPIKey:      c.PolygonAPIKey,
		MassiveBaseURL:     c.MassiveBaseURL,
		FinnHubAPIKey:      c.FinnHubAPIKey,
		AlphaVantageAPIKey: c.AlphaVantageAPIKey,
		Timeout:            c.HTTPTimeout,
	}
}

func (c *Config) ClassifierCredentials() classifier.Credentials {
	return classifier.Credentials{
		HuggingFaceToken: c.HuggingFaceToken,
		InferenceURL:     c.HFInferenceURL,
		OpenAIAPIKey:     c.OpenAIAPIKey,
		AnthropicAPIKey:  c.AnthropicAPIKey,
		Timeout:          c.HTTPTimeout,
	}
}
