package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers understood by Load.
const (
	StorageDriverMemory   = "memory"
	StorageDriverRedis    = "redis"
	StorageDriverPostgres = "postgres"
)

// Config aggregates runtime configuration for the gateway.
type Config struct {
	App      AppConfig
	Backend  BackendConfig
	Storage  StorageConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Cache    CacheConfig
	Session  SessionConfig
	Guard    GuardConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	StaticDir             string
}

// BackendConfig points at the restaurant REST API.
type BackendConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// StorageConfig selects the durable visitor storage backend.
type StorageConfig struct {
	Driver    string
	KeyPrefix string
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

// CacheConfig tunes the content cache.
type CacheConfig struct {
	TTLSeconds         int
	FallbackTTLMinutes int
}

// SessionConfig controls the visitor cookie.
type SessionConfig struct {
	CookieName     string
	CookieSecure   bool
	MaxAgeDays     int
	CookieDomain   string
	CookieSameSite string
}

// GuardConfig controls where the route guard sends visitors.
type GuardConfig struct {
	LoginPath    string
	HomePath     string
	ExplicitDeny bool
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	driver := strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverMemory))
	switch driver {
	case StorageDriverMemory, StorageDriverRedis, StorageDriverPostgres:
	default:
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q", driver)
	}

	baseURL := strings.TrimRight(getEnv("BACKEND_BASE_URL", "http://127.0.0.1:5000/api"), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("BACKEND_BASE_URL must not be empty")
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "qr-menu-web"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			StaticDir:             os.Getenv("STATIC_DIR"),
		},
		Backend: BackendConfig{
			BaseURL:        baseURL,
			TimeoutSeconds: getEnvAsInt("BACKEND_TIMEOUT_SECONDS", 10),
		},
		Storage: StorageConfig{
			Driver:    driver,
			KeyPrefix: getEnv("STORAGE_KEY_PREFIX", "qrmenu:"),
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
		Cache: CacheConfig{
			TTLSeconds:         getEnvAsInt("CACHE_TTL_SECONDS", 300),
			FallbackTTLMinutes: getEnvAsInt("UPLOAD_FALLBACK_TTL_MINUTES", 24*60),
		},
		Session: SessionConfig{
			CookieName:     getEnv("SESSION_COOKIE_NAME", "qrm_sid"),
			CookieSecure:   getEnvAsBool("SESSION_COOKIE_SECURE", false),
			MaxAgeDays:     getEnvAsInt("SESSION_MAX_AGE_DAYS", 30),
			CookieDomain:   os.Getenv("SESSION_COOKIE_DOMAIN"),
			CookieSameSite: getEnv("SESSION_COOKIE_SAMESITE", "Lax"),
		},
		Guard: GuardConfig{
			LoginPath:    getEnv("GUARD_LOGIN_PATH", "/login"),
			HomePath:     getEnv("GUARD_HOME_PATH", "/"),
			ExplicitDeny: getEnvAsBool("GUARD_EXPLICIT_DENY", false),
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

// Timeout returns the per-call backend timeout.
func (b BackendConfig) Timeout() time.Duration {
	if b.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// TTL returns the content cache time-to-live.
func (c CacheConfig) TTL() time.Duration {
	if c.TTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.TTLSeconds) * time.Second
}

// FallbackTTL returns how long upload fallbacks stay mirrored.
func (c CacheConfig) FallbackTTL() time.Duration {
	if c.FallbackTTLMinutes <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.FallbackTTLMinutes) * time.Minute
}

// MaxAge returns the visitor cookie lifetime.
func (s SessionConfig) MaxAge() time.Duration {
	if s.MaxAgeDays <= 0 {
		return 30 * 24 * time.Hour
	}
	return time.Duration(s.MaxAgeDays) * 24 * time.Hour
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
