package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Storage   StorageConfig
	Tracing   TracingConfig `mapstructure:"tracing"`
	Redis     RedisConfig
	Mentor    MentorConfig    `mapstructure:"mentor"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Learning  LearningConfig  `mapstructure:"learning"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// runtime flags, set from the command line rather than the config file
	ForceMigrate bool `mapstructure:"-"`
	MigrateOnly  bool `mapstructure:"-"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type MentorConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type NotifyConfig struct {
	WebhookURL     string `mapstructure:"webhook_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// LearningConfig holds the tunables of the adaptive learning core.
// All values are overrideable at startup and hot-reloadable through
// the config watcher.
type LearningConfig struct {
	VerifyN         int    `mapstructure:"verify_n"`
	DailyMin        int    `mapstructure:"daily_min"`
	DailyMax        int    `mapstructure:"daily_max"`
	RoadmapWeeks    int    `mapstructure:"roadmap_weeks"`
	CoverageL2Pct   int    `mapstructure:"coverage_l2_pct"`
	CoverageL3Pct   int    `mapstructure:"coverage_l3_pct"`
	TargetDate      string `mapstructure:"target_date"` // RFC3339 or 2006-01-02
	Timezone        string `mapstructure:"timezone"`
	LockWaitSeconds int    `mapstructure:"lock_wait_seconds"`
}

func (lc *LearningConfig) ApplyDefaults() {
	if lc.VerifyN <= 0 {
		lc.VerifyN = 2
	}
	if lc.DailyMin <= 0 {
		lc.DailyMin = 2
	}
	if lc.DailyMax <= 0 {
		lc.DailyMax = 3
	}
	if lc.DailyMax < lc.DailyMin {
		lc.DailyMax = lc.DailyMin
	}
	if lc.RoadmapWeeks <= 0 {
		lc.RoadmapWeeks = 12
	}
	if lc.CoverageL2Pct <= 0 {
		lc.CoverageL2Pct = 30
	}
	if lc.CoverageL3Pct <= 0 {
		lc.CoverageL3Pct = 60
	}
	if lc.Timezone == "" {
		lc.Timezone = "UTC"
	}
	if lc.LockWaitSeconds <= 0 {
		lc.LockWaitSeconds = 5
	}
}

// Location resolves the configured timezone, falling back to UTC.
func (lc *LearningConfig) Location() *time.Location {
	loc, err := time.LoadLocation(lc.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// TargetTime parses the target interview date; zero time when unset.
func (lc *LearningConfig) TargetTime() time.Time {
	if lc.TargetDate == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, lc.TargetDate); err == nil {
		return t
	}
	if t, err := time.ParseInLocation("2006-01-02", lc.TargetDate, lc.Location()); err == nil {
		return t
	}
	return time.Time{}
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("MAANG_TRACKER")
	viper.AutomaticEnv()

	// Database
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT
	viper.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	viper.BindEnv("server.mode", "SERVER_MODE")

	// Mentor oracle
	viper.BindEnv("mentor.base_url", "MENTOR_BASE_URL")
	viper.BindEnv("mentor.api_key", "MENTOR_API_KEY")
	viper.BindEnv("mentor.model", "MENTOR_MODEL")

	// Notifications
	viper.BindEnv("notify.webhook_url", "NOTIFY_WEBHOOK_URL")

	// Storage
	viper.BindEnv("storage.type", "STORAGE_TYPE")
	viper.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	viper.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	// Learning core
	viper.BindEnv("learning.verify_n", "LEARNING_VERIFY_N")
	viper.BindEnv("learning.daily_min", "LEARNING_DAILY_MIN")
	viper.BindEnv("learning.daily_max", "LEARNING_DAILY_MAX")
	viper.BindEnv("learning.roadmap_weeks", "LEARNING_ROADMAP_WEEKS")
	viper.BindEnv("learning.target_date", "LEARNING_TARGET_DATE")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour
	cfg.Learning.ApplyDefaults()

	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, 0755)
		}
	}

	return &cfg, nil
}
