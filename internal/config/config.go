package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App        AppConfig
	Postgres   PostgresConfig
	Redis      RedisConfig
	Logger     LoggerConfig
	Auth       AuthConfig
	Summarizer SummarizerConfig
	Notifier   NotifierConfig
	Gate       GateConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// SummarizerConfig configures the ticket summarization chain.
type SummarizerConfig struct {
	BaseURL               string
	APIKey                string
	Model                 string
	Temperature           float64
	ChunkSize             int
	ChunkOverlap          int
	RequestTimeoutSeconds int
	JobTimeoutSeconds     int
}

// NotifierConfig configures the ticket change feed consumer.
type NotifierConfig struct {
	FeedChannel      string
	ToastChannelBase string
}

// GateConfig configures the page access gate.
type GateConfig struct {
	RoleCacheTTLSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	temperature, err := strconv.ParseFloat(getEnv("SUMMARIZER_TEMPERATURE", "0.3"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SUMMARIZER_TEMPERATURE: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "support-portal"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Summarizer: SummarizerConfig{
			BaseURL:               getEnv("SUMMARIZER_BASE_URL", "https://api.openai.com/v1"),
			APIKey:                os.Getenv("SUMMARIZER_API_KEY"),
			Model:                 getEnv("SUMMARIZER_MODEL", "gpt-3.5-turbo"),
			Temperature:           temperature,
			ChunkSize:             getEnvAsInt("SUMMARIZER_CHUNK_SIZE", 3000),
			ChunkOverlap:          getEnvAsInt("SUMMARIZER_CHUNK_OVERLAP", 200),
			RequestTimeoutSeconds: getEnvAsInt("SUMMARIZER_REQUEST_TIMEOUT_SECONDS", 60),
			JobTimeoutSeconds:     getEnvAsInt("SUMMARIZER_JOB_TIMEOUT_SECONDS", 300),
		},
		Notifier: NotifierConfig{
			FeedChannel:      getEnv("NOTIFIER_FEED_CHANNEL", "ticket_changes"),
			ToastChannelBase: getEnv("NOTIFIER_TOAST_CHANNEL_BASE", "toasts"),
		},
		Gate: GateConfig{
			RoleCacheTTLSeconds: getEnvAsInt("GATE_ROLE_CACHE_TTL_SECONDS", 60),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// RequestTimeout returns the per-call timeout for model requests.
func (s SummarizerConfig) RequestTimeout() time.Duration {
	if s.RequestTimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// JobTimeout bounds one full summarization run.
func (s SummarizerConfig) JobTimeout() time.Duration {
	if s.JobTimeoutSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(s.JobTimeoutSeconds) * time.Second
}

// RoleCacheTTL returns how long gate role lookups may be cached.
func (g GateConfig) RoleCacheTTL() time.Duration {
	if g.RoleCacheTTLSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(g.RoleCacheTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
