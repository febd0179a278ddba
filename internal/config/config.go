package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Cache    CacheConfig    `yaml:"cache"`
	Queue    QueueConfig    `yaml:"queue"`
	Mail     MailConfig     `yaml:"mail"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port                  int      `yaml:"port"`
	Host                  string   `yaml:"host"`
	RequestTimeoutSeconds int      `yaml:"request_timeout_seconds"`
	AllowedOrigins        []string `yaml:"allowed_origins"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// RequestTimeout returns the per-request deadline applied by the router
func (c ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// DatabaseConfig holds the PostgreSQL pool configuration
type DatabaseConfig struct {
	URL                    string `yaml:"url"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// ConnMaxLifetime returns the pool connection lifetime as a duration
func (c DatabaseConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetimeMinutes) * time.Minute
}

// RedisConfig holds the cache/lock backend address. An empty URL runs the
// service without a cache.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// CacheConfig holds lookaside cache tuning
type CacheConfig struct {
	SongsTTLSeconds          int `yaml:"songs_ttl_seconds"`
	InvalidateTimeoutSeconds int `yaml:"invalidate_timeout_seconds"`
}

// SongsTTL returns the TTL of cached playlist song lists
func (c CacheConfig) SongsTTL() time.Duration {
	return time.Duration(c.SongsTTLSeconds) * time.Second
}

// InvalidateTimeout bounds the post-commit cache delete
func (c CacheConfig) InvalidateTimeout() time.Duration {
	return time.Duration(c.InvalidateTimeoutSeconds) * time.Second
}

// QueueConfig holds the SQS export queue configuration
type QueueConfig struct {
	ExportQueueURL     string `yaml:"export_queue_url"`
	Region             string `yaml:"region"`
	WaitTimeSeconds    int32  `yaml:"wait_time_seconds"`
	MaxMessages        int32  `yaml:"max_messages"`
	PublishTimeoutSecs int    `yaml:"publish_timeout_seconds"`
}

// PublishTimeout bounds how long SubmitExport waits for the broker ack
func (c QueueConfig) PublishTimeout() time.Duration {
	return time.Duration(c.PublishTimeoutSecs) * time.Second
}

// MailConfig holds the SES settings the export worker uses
type MailConfig struct {
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

// AuthConfig holds the access token verification settings
type AuthConfig struct {
	AccessTokenKey string `yaml:"access_token_key"`
	Issuer         string `yaml:"issuer"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level     string `yaml:"level"`
	RedactPII *bool  `yaml:"redact_pii"`
}

// ShouldRedact reports whether PII redaction is on. It defaults to true.
func (c LogConfig) ShouldRedact() bool {
	return c.RedactPII == nil || *c.RedactPII
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.RequestTimeoutSeconds == 0 {
		cfg.Server.RequestTimeoutSeconds = 15
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetimeMinutes == 0 {
		cfg.Database.ConnMaxLifetimeMinutes = 5
	}
	if cfg.Cache.SongsTTLSeconds == 0 {
		cfg.Cache.SongsTTLSeconds = 1800
	}
	if cfg.Cache.InvalidateTimeoutSeconds == 0 {
		cfg.Cache.InvalidateTimeoutSeconds = 2
	}
	if cfg.Queue.Region == "" {
		cfg.Queue.Region = "us-east-1"
	}
	if cfg.Queue.WaitTimeSeconds == 0 {
		cfg.Queue.WaitTimeSeconds = 20
	}
	if cfg.Queue.MaxMessages == 0 {
		cfg.Queue.MaxMessages = 10
	}
	if cfg.Queue.PublishTimeoutSecs == 0 {
		cfg.Queue.PublishTimeoutSecs = 5
	}
	if cfg.Mail.Region == "" {
		cfg.Mail.Region = cfg.Queue.Region
	}
	if cfg.Mail.FromName == "" {
		cfg.Mail.FromName = "Playlists"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on ECS.
// A missing config file is not an error here: env vars alone can configure
// the service.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if os.IsNotExist(err) {
		cfg = &Config{}
		applyDefaults(cfg)
	} else if err != nil {
		return nil, err
	}

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("SQS_EXPORT_QUEUE_URL"); v != "" {
		cfg.Queue.ExportQueueURL = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.Queue.Region = v
		cfg.Mail.Region = v
	}
	if v := os.Getenv("AWS_SES_ACCESS_KEY"); v != "" {
		cfg.Mail.AccessKey = v
	}
	if v := os.Getenv("AWS_SES_SECRET_KEY"); v != "" {
		cfg.Mail.SecretKey = v
	}
	if v := os.Getenv("MAIL_FROM_EMAIL"); v != "" {
		cfg.Mail.FromEmail = v
	}
	if v := os.Getenv("ACCESS_TOKEN_KEY"); v != "" {
		cfg.Auth.AccessTokenKey = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	return cfg, nil
}
