package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Persistent cache store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	LMS   LMSConfig
	Cache CacheConfig
	Redis RedisConfig
	Queue QueueConfig
	Roles RolesConfig
	JWT   JWTConfig
	CORS  CORSConfig
	Log   LogConfig
}

// LMSConfig locates the remote LMS webservice.
type LMSConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// CacheConfig selects the persistent store and holds the per-feature TTL table.
type CacheConfig struct {
	Store      string
	SQLitePath string

	CoursesTTL      time.Duration
	CourseDetailTTL time.Duration
	LessonsTTL      time.Duration
	LessonDetailTTL time.Duration
	ActivitiesTTL   time.Duration
	DashboardTTL    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// QueueConfig tunes the outbound request batching queue.
type QueueConfig struct {
	BatchSize    int
	SubBatchSize int
	PacingDelay  time.Duration
}

// RolesConfig overrides the built-in account tables of the role resolver.
type RolesConfig struct {
	SystemAccounts []string
	AdminAccounts  []string
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
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
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.LMS = LMSConfig{
		BaseURL: v.GetString("LMS_BASE_URL"),
		Token:   v.GetString("LMS_TOKEN"),
		Timeout: parseDuration(v.GetString("LMS_TIMEOUT"), 10*time.Second),
	}

	cfg.Cache = CacheConfig{
		Store:           v.GetString("CACHE_STORE"),
		SQLitePath:      v.GetString("CACHE_SQLITE_PATH"),
		CoursesTTL:      parseDuration(v.GetString("CACHE_COURSES_TTL"), 10*time.Minute),
		CourseDetailTTL: parseDuration(v.GetString("CACHE_COURSE_DETAIL_TTL"), 10*time.Minute),
		LessonsTTL:      parseDuration(v.GetString("CACHE_LESSONS_TTL"), 5*time.Minute),
		LessonDetailTTL: parseDuration(v.GetString("CACHE_LESSON_DETAIL_TTL"), 15*time.Minute),
		ActivitiesTTL:   parseDuration(v.GetString("CACHE_ACTIVITIES_TTL"), 3*time.Minute),
		DashboardTTL:    parseDuration(v.GetString("CACHE_DASHBOARD_TTL"), 15*time.Minute),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Queue = QueueConfig{
		BatchSize:    v.GetInt("QUEUE_BATCH_SIZE"),
		SubBatchSize: v.GetInt("QUEUE_SUB_BATCH_SIZE"),
		PacingDelay:  parseDuration(v.GetString("QUEUE_PACING_DELAY"), 50*time.Millisecond),
	}

	cfg.Roles = RolesConfig{
		SystemAccounts: splitAndTrim(v.GetString("ROLES_SYSTEM_ACCOUNTS")),
		AdminAccounts:  splitAndTrim(v.GetString("ROLES_ADMIN_ACCOUNTS")),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("LMS_BASE_URL", "http://localhost:8000/webservice/rest/server.php")
	v.SetDefault("LMS_TOKEN", "")
	v.SetDefault("LMS_TIMEOUT", "10s")

	v.SetDefault("CACHE_STORE", StoreMemory)
	v.SetDefault("CACHE_SQLITE_PATH", "./cache.db")
	v.SetDefault("CACHE_COURSES_TTL", "10m")
	v.SetDefault("CACHE_COURSE_DETAIL_TTL", "10m")
	v.SetDefault("CACHE_LESSONS_TTL", "5m")
	v.SetDefault("CACHE_LESSON_DETAIL_TTL", "15m")
	v.SetDefault("CACHE_ACTIVITIES_TTL", "3m")
	v.SetDefault("CACHE_DASHBOARD_TTL", "15m")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("QUEUE_BATCH_SIZE", 5)
	v.SetDefault("QUEUE_SUB_BATCH_SIZE", 3)
	v.SetDefault("QUEUE_PACING_DELAY", "50ms")

	v.SetDefault("ROLES_SYSTEM_ACCOUNTS", "")
	v.SetDefault("ROLES_ADMIN_ACCOUNTS", "")

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
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
