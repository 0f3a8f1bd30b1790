package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvProduction represents the production environment.
	EnvProduction = "production"

	// ProviderGemini runs both pipeline stages on the Gemini API.
	ProviderGemini = "gemini"
	// ProviderOpenAI pairs Whisper transcription with Claude polishing.
	ProviderOpenAI = "openai"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	Env  string `envconfig:"ENV" default:"development"`
	Port string `envconfig:"PORT" default:"8080"`

	// Where notes live on disk. Empty means $HOME/.voxnote.
	DataDir string `envconfig:"DATA_DIR" default:""`

	// Pipeline settings
	Provider        string `envconfig:"PROVIDER" default:"gemini"`
	GeminiAPIKey    string `envconfig:"GEMINI_API_KEY" default:""`
	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY" default:""`
	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY" default:""`

	// Security settings
	HSTSMaxAge int    `envconfig:"HSTS_MAX_AGE" default:"31536000"`
	CSPMode    string `envconfig:"CSP_MODE" default:"relaxed"`

	// Logging settings
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadConfig loads configuration from .env file and environment variables.
func LoadConfig() (*Config, error) {
	// Try to load .env file (optional for development)
	if err := godotenv.Load(); err != nil {
		// Not an error if file doesn't exist (expected in production)
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	}

	// Parse environment variables into config struct
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if config.Provider != ProviderGemini && config.Provider != ProviderOpenAI {
		return nil, fmt.Errorf("unknown provider %q (want %s or %s)",
			config.Provider, ProviderGemini, ProviderOpenAI)
	}

	return &config, nil
}

// BuildCSP constructs Content Security Policy based on mode.
func BuildCSP(mode string) string {
	if mode == "strict" {
		// Production CSP
		return "default-src 'self'; " +
			"style-src 'self' 'unsafe-inline'; " +
			"script-src 'self'; " +
			"img-src 'self' data:; " +
			"object-src 'none'; " +
			"base-uri 'self'; " +
			"form-action 'self'"
	}

	// Development/relaxed CSP
	return "default-src 'self'; " +
		"style-src 'self' 'unsafe-inline'; " +
		"script-src 'self' 'unsafe-inline'; " +
		"img-src 'self' data:"
}
