package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Session store backends
const (
	SessionStoreFile  = "file"
	SessionStoreRedis = "redis"
)

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Backend       BackendConfig
	Google        GoogleConfig
	Session       SessionConfig
	Auth          AuthConfig
	Submission    SubmissionConfig
	Dashboard     DashboardConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
}

type BackendConfig struct {
	URL            string
	TimeoutSeconds int // 0 disables the client timeout
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
}

type SessionConfig struct {
	Store    string
	File     string
	RedisURL string
	Profile  string
}

type AuthConfig struct {
	VerifyOnResume      bool
	MaxRetries          int
	RetryInitialDelayMS int
}

type SubmissionConfig struct {
	MaxAttachmentBytes int64
}

type DashboardConfig struct {
	Port           string
	GinMode        string
	AllowedOrigins []string
	ResultsTTL     time.Duration
}

type LoggingConfig struct {
	Level  string
	Dir    string
	AppEnv string
}

type ObservabilityConfig struct {
	ExporterEndpoint string
	ServiceName      string
	ServiceVersion   string
}

// ProfilingConfig drives pyroscope for the dashboard server; an empty Endpoint disables it
type ProfilingConfig struct {
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "")
	v.SetDefault("SESSION_STORE", SessionStoreFile)
	v.SetDefault("SESSION_FILE", "")
	v.SetDefault("SESSION_PROFILE", "default")
	v.SetDefault("VERIFY_SESSION_ON_RESUME", true)
	v.SetDefault("AUTH_MAX_RETRIES", 3)
	v.SetDefault("AUTH_RETRY_INITIAL_DELAY_MS", 1000)
	v.SetDefault("HTTP_TIMEOUT_SECONDS", 30)
	v.SetDefault("MAX_ATTACHMENT_BYTES", 100<<20)
	v.SetDefault("RESULTS_CACHE_TTL", "5m")
	v.SetDefault("DASHBOARD_PORT", "8082")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("O11Y_EXPORTER_ENDPOINT", "") // tracing disabled when empty
	v.SetDefault("O11Y_SERVICE_NAME", "survey-client")
	v.SetDefault("O11Y_SERVICE_VERSION", "1.0.0")
	v.SetDefault("O11Y_PROFILING_ENDPOINT", "") // profiling disabled when empty
	v.SetDefault("O11Y_PROFILING_APP_NAME", "survey-dashboard")
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,alloc_objects,goroutines")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	cfg := &Config{
		Backend: BackendConfig{
			URL:            strings.TrimRight(v.GetString("SURVEY_API_URL"), "/"),
			TimeoutSeconds: v.GetInt("HTTP_TIMEOUT_SECONDS"),
		},
		Google: GoogleConfig{
			ClientID:     v.GetString("GOOGLE_CLIENT_ID"),
			ClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
		},
		Session: SessionConfig{
			Store:    strings.ToLower(v.GetString("SESSION_STORE")),
			File:     v.GetString("SESSION_FILE"),
			RedisURL: v.GetString("REDIS_URL"),
			Profile:  v.GetString("SESSION_PROFILE"),
		},
		Auth: AuthConfig{
			VerifyOnResume:      v.GetBool("VERIFY_SESSION_ON_RESUME"),
			MaxRetries:          v.GetInt("AUTH_MAX_RETRIES"),
			RetryInitialDelayMS: v.GetInt("AUTH_RETRY_INITIAL_DELAY_MS"),
		},
		Submission: SubmissionConfig{
			MaxAttachmentBytes: v.GetInt64("MAX_ATTACHMENT_BYTES"),
		},
		Dashboard: DashboardConfig{
			Port:           v.GetString("DASHBOARD_PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_CORS_ORIGINS")),
			ResultsTTL:     v.GetDuration("RESULTS_CACHE_TTL"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Dir:    v.GetString("LOG_DIR"),
			AppEnv: v.GetString("APP_ENV"),
		},
		Observability: ObservabilityConfig{
			ExporterEndpoint: v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:      v.GetString("O11Y_SERVICE_NAME"),
			ServiceVersion:   v.GetString("O11Y_SERVICE_VERSION"),
		},
		Profiling: ProfilingConfig{
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// splitList parses a comma-separated list, dropping blanks
func splitList(s string) []string {
	out := []string{}
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("SURVEY_API_URL is required")
	}
	if u, err := url.Parse(c.Backend.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("SURVEY_API_URL must be an absolute URL")
	}
	if c.Backend.TimeoutSeconds < 0 {
		return fmt.Errorf("HTTP_TIMEOUT_SECONDS must not be negative")
	}

	switch c.Session.Store {
	case SessionStoreFile:
	case SessionStoreRedis:
		if c.Session.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when SESSION_STORE=redis")
		}
	default:
		return fmt.Errorf("SESSION_STORE must be %q or %q", SessionStoreFile, SessionStoreRedis)
	}

	if c.Auth.MaxRetries < 0 {
		return fmt.Errorf("AUTH_MAX_RETRIES must not be negative")
	}
	if c.Submission.MaxAttachmentBytes <= 0 {
		return fmt.Errorf("MAX_ATTACHMENT_BYTES must be positive")
	}

	return nil
}

// ValidateDashboard checks the settings only the results dashboard needs
func (c *Config) ValidateDashboard() error {
	if c.Dashboard.Port == "" {
		return fmt.Errorf("DASHBOARD_PORT is required")
	}
	if len(c.Dashboard.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_CORS_ORIGINS is required")
	}
	if c.Profiling.Endpoint != "" {
		if u, err := url.Parse(c.Profiling.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("O11Y_PROFILING_ENDPOINT must be an absolute URL")
		}
		if c.Profiling.UploadIntervalSeconds < 0 {
			return fmt.Errorf("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS must not be negative")
		}
	}
	return nil
}

// ValidateSignIn checks the settings the interactive Google sign-in needs
func (c *Config) ValidateSignIn() error {
	if c.Google.ClientID == "" {
		return fmt.Errorf("GOOGLE_CLIENT_ID is required to sign in")
	}
	return nil
}

// HTTPTimeout is the backend client timeout; zero means none
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// RetryInitialDelay is the first identity-exchange backoff
func (c *Config) RetryInitialDelay() time.Duration {
	return time.Duration(c.Auth.RetryInitialDelayMS) * time.Millisecond
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Logging.AppEnv == "development" || c.Dashboard.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Logging.AppEnv == "production"
}
