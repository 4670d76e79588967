package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures runtime configuration for the bot.
type Config struct {
	HTTP      HTTPConfig
	Telegram  TelegramConfig
	Store     StoreConfig
	Sessions  SessionConfig
	Redis     RedisConfig
	Database  DatabaseConfig
	Events    EventsConfig
	AI        AIConfig
	KeepAlive KeepAliveConfig
	Telemetry TelemetryConfig
	Service   ServiceConfig
}

type HTTPConfig struct {
	Port          int
	ShutdownGrace int
}

type TelegramConfig struct {
	Token string
	// AdminChatID receives order alerts. Empty disables them.
	AdminChatID string
	PollTimeout int
}

type StoreConfig struct {
	Name          string
	SupportNumber string
	CatalogPath   string
}

type SessionConfig struct {
	Backend string
	TTL     time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type DatabaseConfig struct {
	URL            string
	Ledger         string
	AutoMigrate    bool
	MigrationsPath string
}

type EventsConfig struct {
	Sink   string
	Stream string
	MaxLen int64
}

type AIConfig struct {
	APIKey  string
	URL     string
	Model   string
	Timeout time.Duration
}

type KeepAliveConfig struct {
	URL      string
	Interval time.Duration
}

type TelemetryConfig struct {
	LogLevel      string
	OTelEndpoint  string
	EnableTracing bool
	EnableMetrics bool
	SampleRate    float64
}

type ServiceConfig struct {
	Name        string
	Version     string
	Environment string
}

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"

	LedgerNone     = "none"
	LedgerPostgres = "postgres"

	SinkLog   = "log"
	SinkRedis = "redis"
)

const (
	defaultHTTPPort          = 8080
	defaultShutdownGrace     = 15
	defaultPollTimeout       = 60
	defaultStoreName         = "TDS Store"
	defaultSupportNumber     = "919024487624"
	defaultSessionTTL        = 24 * time.Hour
	defaultRedisAddr         = "localhost:6379"
	defaultMigrationsPath    = "migrations"
	defaultEventStream       = "tdsbot:events"
	defaultEventStreamMaxLen = 10000
	defaultAIURL             = "https://api.deepseek.com/v1/chat/completions"
	defaultAIModel           = "deepseek-chat"
	defaultAITimeout         = 15 * time.Second
	defaultKeepAlive         = 14 * time.Minute
	defaultServiceName       = "tdsbot"
	defaultServiceVersion    = "0.1.0"
	defaultEnvironment       = "development"
	defaultLogLevel          = "info"
	defaultOTelSampleRate    = 1.0
)

// Load reads a .env file when present, then environment variables, applying defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() (*Config, error) {
	var errs []error
	p := &parser{errs: &errs}

	cfg := &Config{
		HTTP: HTTPConfig{
			Port:          p.getInt("API_HTTP_PORT", p.getInt("PORT", defaultHTTPPort)),
			ShutdownGrace: p.getInt("API_SHUTDOWN_GRACE_SECONDS", defaultShutdownGrace),
		},
		Telegram: TelegramConfig{
			Token:       firstEnv("TELEGRAM_BOT_TOKEN", "BOT_TOKEN"),
			AdminChatID: os.Getenv("ADMIN_CHAT_ID"),
			PollTimeout: p.getInt("TELEGRAM_POLL_TIMEOUT", defaultPollTimeout),
		},
		Store: StoreConfig{
			Name:          getEnvOrDefault("STORE_NAME", defaultStoreName),
			SupportNumber: getEnvOrDefault("WHATSAPP_NUMBER", defaultSupportNumber),
			CatalogPath:   os.Getenv("CATALOG_PATH"),
		},
		Sessions: SessionConfig{
			Backend: strings.ToLower(getEnvOrDefault("SESSION_BACKEND", BackendMemory)),
			TTL:     p.getDuration("SESSION_TTL", defaultSessionTTL),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", defaultRedisAddr),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       p.getInt("REDIS_DB", 0),
		},
		Database: DatabaseConfig{
			URL:            getEnvOrDefault("DATABASE_URL", buildDatabaseURL()),
			Ledger:         strings.ToLower(getEnvOrDefault("ORDER_LEDGER", LedgerNone)),
			AutoMigrate:    getBoolEnv("AUTO_MIGRATE", true),
			MigrationsPath: getEnvOrDefault("MIGRATIONS_PATH", defaultMigrationsPath),
		},
		Events: EventsConfig{
			Sink:   strings.ToLower(getEnvOrDefault("EVENT_SINK", SinkLog)),
			Stream: getEnvOrDefault("EVENT_STREAM", defaultEventStream),
			MaxLen: int64(p.getInt("EVENT_STREAM_MAXLEN", defaultEventStreamMaxLen)),
		},
		AI: AIConfig{
			APIKey:  os.Getenv("AI_API_KEY"),
			URL:     getEnvOrDefault("AI_API_URL", defaultAIURL),
			Model:   getEnvOrDefault("AI_MODEL", defaultAIModel),
			Timeout: p.getDuration("AI_TIMEOUT", defaultAITimeout),
		},
		KeepAlive: KeepAliveConfig{
			URL:      os.Getenv("KEEPALIVE_URL"),
			Interval: p.getDuration("KEEPALIVE_INTERVAL", defaultKeepAlive),
		},
		Telemetry: TelemetryConfig{
			LogLevel:      getEnvOrDefault("LOG_LEVEL", defaultLogLevel),
			OTelEndpoint:  os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			EnableTracing: getBoolEnv("OTEL_ENABLE_TRACING", true),
			EnableMetrics: getBoolEnv("OTEL_ENABLE_METRICS", true),
			SampleRate:    p.getFloat("OTEL_SAMPLE_RATE", defaultOTelSampleRate),
		},
		Service: ServiceConfig{
			Name:        getEnvOrDefault("API_SERVICE_NAME", defaultServiceName),
			Version:     getEnvOrDefault("SERVICE_VERSION", defaultServiceVersion),
			Environment: getEnvOrDefault("ENVIRONMENT", defaultEnvironment),
		},
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown backends. The bot token is checked by the serve
// command only, so migrate and quote run without one.
func (c *Config) Validate() error {
	switch c.Sessions.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("invalid SESSION_BACKEND %q: want %s or %s", c.Sessions.Backend, BackendMemory, BackendRedis)
	}
	switch c.Database.Ledger {
	case LedgerNone, LedgerPostgres:
	default:
		return fmt.Errorf("invalid ORDER_LEDGER %q: want %s or %s", c.Database.Ledger, LedgerNone, LedgerPostgres)
	}
	switch c.Events.Sink {
	case SinkLog, SinkRedis:
	default:
		return fmt.Errorf("invalid EVENT_SINK %q: want %s or %s", c.Events.Sink, SinkLog, SinkRedis)
	}
	if c.Sessions.TTL < 0 {
		return errors.New("SESSION_TTL must not be negative")
	}
	return nil
}

// UsesRedis reports whether any component needs a redis connection.
func (c *Config) UsesRedis() bool {
	return c.Sessions.Backend == BackendRedis || c.Events.Sink == SinkRedis
}

// parser collects every malformed variable instead of stopping at the first.
type parser struct {
	errs *[]error
}

func (p *parser) getInt(key string, defaultValue int) int {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		*p.errs = append(*p.errs, fmt.Errorf("invalid %s: %w", key, err))
		return defaultValue
	}
	return parsed
}

func (p *parser) getFloat(key string, defaultValue float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		*p.errs = append(*p.errs, fmt.Errorf("invalid %s: %w", key, err))
		return defaultValue
	}
	return parsed
}

func (p *parser) getDuration(key string, defaultValue time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		*p.errs = append(*p.errs, fmt.Errorf("invalid %s: %w", key, err))
		return defaultValue
	}
	return parsed
}

func buildDatabaseURL() string {
	host := getEnvOrDefault("DB_HOST", "localhost")
	port := getEnvOrDefault("DB_PORT", "5432")
	user := getEnvOrDefault("DB_USER", "postgres")
	password := getEnvOrDefault("DB_PASSWORD", "postgres")
	dbName := getEnvOrDefault("DB_NAME", "tdsbot")
	sslMode := getEnvOrDefault("DB_SSLMODE", "disable")

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, password, host, port, dbName, sslMode)
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		return value == "true"
	}
	return defaultValue
}
