package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Department data sources understood by HODConfig.Source.
const (
	DepartmentSourceNone     = "none"
	DepartmentSourceAPI      = "api"
	DepartmentSourcePostgres = "postgres"
)

// Message delivery channels understood by MessagingConfig.Channel.
const (
	MessagingChannelLog      = "log"
	MessagingChannelAPI      = "api"
	MessagingChannelSendGrid = "sendgrid"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	HOD       HODConfig
	SchoolAPI SchoolAPIConfig
	Messaging MessagingConfig
	Dispatch  DispatchConfig
	Cache     CacheConfig
	Sessions  SessionConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds verification settings for bearer tokens issued by the auth service.
type JWTConfig struct {
	Secret string
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// HODConfig tunes the per-session department store.
type HODConfig struct {
	DepartmentCode string
	TickInterval   time.Duration
	StepSeed       int64
	Source         string
}

// SchoolAPIConfig points at the upstream school-management REST API.
type SchoolAPIConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// MessagingConfig selects how teacher messages leave the service.
type MessagingConfig struct {
	Channel        string
	SendGridAPIKey string
	FromName       string
	FromEmail      string
}

// DispatchConfig configures the outbound worker queue.
type DispatchConfig struct {
	Workers     int
	BufferSize  int
	MaxRetries  int
	RetryDelay  time.Duration
	EnqueueWait time.Duration
}

// CacheConfig governs last-known-good snapshot caching.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// SessionConfig controls HOD session reaping.
type SessionConfig struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
	MaxSessions   int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
		Issuer: v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.HOD = HODConfig{
		DepartmentCode: v.GetString("HOD_DEPARTMENT_CODE"),
		TickInterval:   parseDuration(v.GetString("HOD_BADGE_TICK_INTERVAL"), 30*time.Second),
		StepSeed:       v.GetInt64("HOD_BADGE_STEP_SEED"),
		Source:         strings.ToLower(v.GetString("HOD_DEPARTMENT_SOURCE")),
	}

	cfg.SchoolAPI = SchoolAPIConfig{
		BaseURL: strings.TrimRight(v.GetString("SCHOOL_API_BASE_URL"), "/"),
		Token:   v.GetString("SCHOOL_API_TOKEN"),
		Timeout: parseDuration(v.GetString("SCHOOL_API_TIMEOUT"), 5*time.Second),
	}

	cfg.Messaging = MessagingConfig{
		Channel:        strings.ToLower(v.GetString("MESSAGING_CHANNEL")),
		SendGridAPIKey: v.GetString("SENDGRID_API_KEY"),
		FromName:       v.GetString("MESSAGING_FROM_NAME"),
		FromEmail:      v.GetString("MESSAGING_FROM_EMAIL"),
	}

	cfg.Dispatch = DispatchConfig{
		Workers:     v.GetInt("DISPATCH_WORKERS"),
		BufferSize:  v.GetInt("DISPATCH_BUFFER_SIZE"),
		MaxRetries:  v.GetInt("DISPATCH_MAX_RETRIES"),
		RetryDelay:  parseDuration(v.GetString("DISPATCH_RETRY_DELAY"), 2*time.Second),
		EnqueueWait: parseDuration(v.GetString("DISPATCH_ENQUEUE_WAIT"), 500*time.Millisecond),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_CACHE"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 24*time.Hour),
	}

	cfg.Sessions = SessionConfig{
		IdleTTL:       parseDuration(v.GetString("SESSION_IDLE_TTL"), 30*time.Minute),
		SweepInterval: parseDuration(v.GetString("SESSION_SWEEP_INTERVAL"), time.Minute),
		MaxSessions:   v.GetInt("SESSION_MAX"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("SESSION_MAX", 256)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "sma_hod")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("HOD_DEPARTMENT_CODE", "MATH")
	v.SetDefault("HOD_BADGE_TICK_INTERVAL", "30s")
	v.SetDefault("HOD_BADGE_STEP_SEED", 0)
	v.SetDefault("HOD_DEPARTMENT_SOURCE", DepartmentSourceNone)

	v.SetDefault("SCHOOL_API_BASE_URL", "")
	v.SetDefault("SCHOOL_API_TOKEN", "")
	v.SetDefault("SCHOOL_API_TIMEOUT", "5s")

	v.SetDefault("MESSAGING_CHANNEL", MessagingChannelLog)
	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("MESSAGING_FROM_NAME", "SMA HOD")
	v.SetDefault("MESSAGING_FROM_EMAIL", "no-reply@sma.local")

	v.SetDefault("DISPATCH_WORKERS", 2)
	v.SetDefault("DISPATCH_BUFFER_SIZE", 64)
	v.SetDefault("DISPATCH_MAX_RETRIES", 3)
	v.SetDefault("DISPATCH_RETRY_DELAY", "2s")

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_TTL", "24h")

	v.SetDefault("SESSION_IDLE_TTL", "30m")
	v.SetDefault("SESSION_SWEEP_INTERVAL", "1m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
