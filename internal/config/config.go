// Package config loads service configuration from the process environment.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultPort is used when PORT is missing or malformed.
const DefaultPort = 8000

// Error is a configuration failure. Raised eagerly at load or client
// construction and fatal for the process.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s %s", e.Field, e.Reason)
}

// HCMConfig describes the Oracle HCM connection.
type HCMConfig struct {
	BaseURL     string
	AuthMethod  string // "basic" or "oauth"
	Username    string
	Password    string
	OAuthToken  string
	CatalogFile string // optional YAML catalog override
}

// Validate enforces the auth-method invariants up front rather than on the
// first outbound call.
func (c HCMConfig) Validate() error {
	if c.BaseURL == "" {
		return &Error{Field: "HCM_BASE_URL", Reason: "is required"}
	}
	switch c.AuthMethod {
	case "basic":
		if c.Username == "" || c.Password == "" {
			return &Error{Field: "HCM_USERNAME/HCM_PASSWORD", Reason: "are required for basic auth"}
		}
	case "oauth":
		if c.OAuthToken == "" {
			return &Error{Field: "HCM_OAUTH_TOKEN", Reason: "is required for oauth auth"}
		}
	default:
		return &Error{Field: "HCM_AUTH_METHOD", Reason: fmt.Sprintf("must be basic or oauth, got %q", c.AuthMethod)}
	}
	return nil
}

// AzureConfig describes the enterprise-gateway LLM backend.
type AzureConfig struct {
	Endpoint   string
	APIKey     string
	APIVersion string
	Deployment string
}

// AppConfig is the full service configuration.
type AppConfig struct {
	LLMProvider  string // "gemini" (default) or "azure"
	GoogleAPIKey string
	Azure        AzureConfig
	HCM          HCMConfig
	Port         int
	LogLevel     string
	LogFormat    string
}

// Load reads configuration from the environment, honoring a local .env file
// when present. Malformed PORT values fall back to DefaultPort.
func Load() AppConfig {
	// Missing .env is the normal case in deployment; ignore it.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("HCM_AUTH_METHOD", "basic")
	v.SetDefault("LLM_PROVIDER", "gemini")
	v.SetDefault("AZURE_OPENAI_API_VERSION", "2024-06-01")
	v.SetDefault("PORT", DefaultPort)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")

	port := v.GetInt("PORT")
	if port <= 0 {
		port = DefaultPort
	}

	return AppConfig{
		LLMProvider:  strings.ToLower(strings.TrimSpace(v.GetString("LLM_PROVIDER"))),
		GoogleAPIKey: strings.TrimSpace(v.GetString("GOOGLE_API_KEY")),
		Azure: AzureConfig{
			Endpoint:   strings.TrimSpace(v.GetString("AZURE_OPENAI_ENDPOINT")),
			APIKey:     strings.TrimSpace(v.GetString("AZURE_OPENAI_API_KEY")),
			APIVersion: strings.TrimSpace(v.GetString("AZURE_OPENAI_API_VERSION")),
			Deployment: strings.TrimSpace(v.GetString("AZURE_OPENAI_CHAT_DEPLOYMENT")),
		},
		HCM: HCMConfig{
			BaseURL:     strings.TrimRight(strings.TrimSpace(v.GetString("HCM_BASE_URL")), "/"),
			AuthMethod:  strings.ToLower(strings.TrimSpace(v.GetString("HCM_AUTH_METHOD"))),
			Username:    strings.TrimSpace(v.GetString("HCM_USERNAME")),
			Password:    strings.TrimSpace(v.GetString("HCM_PASSWORD")),
			OAuthToken:  strings.TrimSpace(v.GetString("HCM_OAUTH_TOKEN")),
			CatalogFile: strings.TrimSpace(v.GetString("HCM_CATALOG_FILE")),
		},
		Port:      port,
		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),
	}
}
