package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Parser   ParserConfig
	Render   RenderConfig
	Coverage CoverageConfig
	Prompt   PromptConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// AuthConfig holds inbound authorization settings. An empty ServiceKey
// disables the shared-secret check entirely.
type AuthConfig struct {
	ServiceKey string `mapstructure:"service_key"`
}

// ParserConfig holds OpenAI vision model settings.
type ParserConfig struct {
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// RenderConfig holds PDF rasterization settings.
type RenderConfig struct {
	DPI          int    `mapstructure:"dpi"`
	MaxPages     int    `mapstructure:"max_pages"`
	DefaultPages int    `mapstructure:"default_pages"`
	Pdftoppm     string `mapstructure:"pdftoppm"`
	Pdfinfo      string `mapstructure:"pdfinfo"`
}

// CoverageConfig holds settings for the coverage sanity check.
type CoverageConfig struct {
	Threshold float64 `mapstructure:"threshold"`
}

// PromptConfig holds the variant-dependent prompt strings.
type PromptConfig struct {
	CatchAllLabel string `mapstructure:"catchall_label"`
}

// Load reads configuration from environment variables with the LIPSEYOCR_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LIPSEYOCR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "180s")
	v.SetDefault("server.environment", "development")

	// Auth defaults
	v.SetDefault("auth.service_key", "")

	// Parser defaults
	v.SetDefault("parser.api_key", "")
	v.SetDefault("parser.default_model", "gpt-4o-mini")
	v.SetDefault("parser.timeout_secs", 120)

	// Render defaults
	v.SetDefault("render.dpi", 220)
	v.SetDefault("render.max_pages", 4)
	v.SetDefault("render.default_pages", 4)
	v.SetDefault("render.pdftoppm", "pdftoppm")
	v.SetDefault("render.pdfinfo", "pdfinfo")

	// Coverage defaults
	v.SetDefault("coverage.threshold", 0.8)

	// Prompt defaults
	v.SetDefault("prompt.catchall_label", "Ineligible")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":           "LIPSEYOCR_SERVER_PORT",
		"server.read_timeout":   "LIPSEYOCR_SERVER_READ_TIMEOUT",
		"server.write_timeout":  "LIPSEYOCR_SERVER_WRITE_TIMEOUT",
		"server.environment":    "LIPSEYOCR_SERVER_ENVIRONMENT",
		"auth.service_key":      "LIPSEYOCR_AUTH_SERVICE_KEY",
		"parser.api_key":        "LIPSEYOCR_PARSER_API_KEY",
		"parser.default_model":  "LIPSEYOCR_PARSER_DEFAULT_MODEL",
		"parser.timeout_secs":   "LIPSEYOCR_PARSER_TIMEOUT_SECS",
		"render.dpi":            "LIPSEYOCR_RENDER_DPI",
		"render.max_pages":      "LIPSEYOCR_RENDER_MAX_PAGES",
		"render.default_pages":  "LIPSEYOCR_RENDER_DEFAULT_PAGES",
		"render.pdftoppm":       "LIPSEYOCR_RENDER_PDFTOPPM",
		"render.pdfinfo":        "LIPSEYOCR_RENDER_PDFINFO",
		"coverage.threshold":    "LIPSEYOCR_COVERAGE_THRESHOLD",
		"prompt.catchall_label": "LIPSEYOCR_PROMPT_CATCHALL_LABEL",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	// The env vars the original deployment used keep working.
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && os.Getenv("LIPSEYOCR_PARSER_API_KEY") == "" {
		v.Set("parser.api_key", key)
	}
	if key := os.Getenv("SERVICE_API_KEY"); key != "" && os.Getenv("LIPSEYOCR_AUTH_SERVICE_KEY") == "" {
		v.Set("auth.service_key", key)
	}

	// Railway/Heroku/Render set a PORT env var. Use it if LIPSEYOCR_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("LIPSEYOCR_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg := &Config{}
	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Auth = AuthConfig{
		ServiceKey: v.GetString("auth.service_key"),
	}
	cfg.Parser = ParserConfig{
		APIKey:       v.GetString("parser.api_key"),
		DefaultModel: v.GetString("parser.default_model"),
		TimeoutSecs:  v.GetInt("parser.timeout_secs"),
	}
	cfg.Render = RenderConfig{
		DPI:          v.GetInt("render.dpi"),
		MaxPages:     v.GetInt("render.max_pages"),
		DefaultPages: v.GetInt("render.default_pages"),
		Pdftoppm:     v.GetString("render.pdftoppm"),
		Pdfinfo:      v.GetString("render.pdfinfo"),
	}
	cfg.Coverage = CoverageConfig{
		Threshold: v.GetFloat64("coverage.threshold"),
	}
	cfg.Prompt = PromptConfig{
		CatchAllLabel: v.GetString("prompt.catchall_label"),
	}

	if cfg.Parser.APIKey == "" {
		return nil, fmt.Errorf("parser API key is required (set LIPSEYOCR_PARSER_API_KEY or OPENAI_API_KEY)")
	}

	return cfg, nil
}
