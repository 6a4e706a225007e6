package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Server        ServerConfig
	Notify        NotifyConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
}

type ServerConfig struct {
	Port         string
	GinMode      string
	AppEnv       string
	MaxBodyBytes int64
}

// NotifyConfig is the process-wide channel configuration. A channel is active
// only when both halves of its credential pair are present.
type NotifyConfig struct {
	TelegramBotToken string
	TelegramChatID   string
	TelegramAPIBase  string

	EmailAddress  string
	EmailPassword string
	SMTPHost      string
	SMTPPort      int

	ChannelTimeout time.Duration
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	ExporterEndpoint  string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("PORT", "3001")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("MAX_BODY_BYTES", 64*1024)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "")
	v.SetDefault("TELEGRAM_API_BASE", "https://api.telegram.org")
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("NOTIFY_CHANNEL_TIMEOUT_SECONDS", 5)
	v.SetDefault("O11Y_EXPORTER_ENDPOINT", "") // tracing disabled unless set
	v.SetDefault("O11Y_SERVICE_NAME", "portfolio-api")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "portfolio")
	v.SetDefault("O11Y_SERVICE_VERSION", "1.0.0")
	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_APP_NAME", "portfolio-api")
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,goroutines")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists (repository root when run from cmd/api)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("PORT"),
			GinMode:      v.GetString("GIN_MODE"),
			AppEnv:       v.GetString("APP_ENV"),
			MaxBodyBytes: v.GetInt64("MAX_BODY_BYTES"),
		},
		Notify: NotifyConfig{
			TelegramBotToken: strings.TrimSpace(v.GetString("TELEGRAM_BOT_TOKEN")),
			TelegramChatID:   strings.TrimSpace(v.GetString("TELEGRAM_CHAT_ID")),
			TelegramAPIBase:  strings.TrimRight(v.GetString("TELEGRAM_API_BASE"), "/"),
			EmailAddress:     strings.TrimSpace(v.GetString("EMAIL_ADDRESS")),
			EmailPassword:    v.GetString("GMAIL_PASSKEY"),
			SMTPHost:         v.GetString("SMTP_HOST"),
			SMTPPort:         v.GetInt("SMTP_PORT"),
			ChannelTimeout:   time.Duration(v.GetInt("NOTIFY_CHANNEL_TIMEOUT_SECONDS")) * time.Second,
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			ExporterEndpoint:  v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
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

// Validate checks if required configuration values are set.
// Channel credentials are optional: a missing pair disables that channel.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive")
	}

	if c.Notify.ChannelTimeout <= 0 {
		return fmt.Errorf("NOTIFY_CHANNEL_TIMEOUT_SECONDS must be positive")
	}
	if c.EmailEnabledWithoutHost() {
		return fmt.Errorf("SMTP_HOST and SMTP_PORT are required when email notifications are configured")
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("O11Y_PROFILING_ENDPOINT is required when profiling is enabled")
	}

	return nil
}

// EmailEnabledWithoutHost reports credentials that would enable email but no
// transport to send it through.
func (c *Config) EmailEnabledWithoutHost() bool {
	return c.Notify.EmailEnabled() && (c.Notify.SMTPHost == "" || c.Notify.SMTPPort <= 0)
}

// ChatEnabled reports whether the Telegram channel has both bot token and chat id.
func (n NotifyConfig) ChatEnabled() bool {
	return n.TelegramBotToken != "" && n.TelegramChatID != ""
}

// EmailEnabled reports whether the email channel has both sender address and app password.
func (n NotifyConfig) EmailEnabled() bool {
	return n.EmailAddress != "" && n.EmailPassword != ""
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}

// FileLogDir is the directory for rotated log files. File logging is a
// production concern, so other environments log to stdout only.
func (c *Config) FileLogDir() string {
	if !c.IsProduction() {
		return ""
	}
	return c.Logging.Dir
}
