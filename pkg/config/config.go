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

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Institution string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Admin     AdminConfig
	CORS      CORSConfig
	Log       LogConfig
	Reports   ReportsConfig
	Scraper   ScraperConfig
	Scheduler SchedulerConfig
	Dashboard DashboardConfig
	History   HistoryConfig
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

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

// AdminConfig holds the single dashboard operator account.
type AdminConfig struct {
	Username     string
	PasswordHash string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ReportsConfig locates downloaded exports and governs combined workbook retention.
type ReportsConfig struct {
	Dir             string
	FallbackDirs    []string
	CleanOnStart    bool
	ResultTTL       time.Duration
	CleanupInterval time.Duration
	SigningSecret   string
	DownloadURLTTL  time.Duration
	SettingsFile    string
	AccountsFile    string
}

// ScraperConfig describes the external scraper command.
type ScraperConfig struct {
	Command []string
	Timeout time.Duration
}

// SchedulerConfig toggles periodic scrape+combine runs.
type SchedulerConfig struct {
	Enabled bool
	Spec    string
}

// DashboardConfig governs cache behaviour for summary views.
type DashboardConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// HistoryConfig toggles persistence of job runs in Postgres.
type HistoryConfig struct {
	Enabled bool
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
		if !errors.As(err, &notFound) && !isMissingFile(err) {
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
	cfg.Institution = v.GetString("INSTITUTION_NAME")

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
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 12*time.Hour),
	}

	cfg.Admin = AdminConfig{
		Username:     v.GetString("ADMIN_USERNAME"),
		PasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Reports = ReportsConfig{
		Dir:             v.GetString("REPORTS_DIR"),
		FallbackDirs:    splitAndTrim(v.GetString("REPORTS_FALLBACK_DIRS")),
		CleanOnStart:    v.GetBool("REPORTS_CLEAN_ON_START"),
		ResultTTL:       parseDuration(v.GetString("REPORTS_RESULT_TTL"), 30*24*time.Hour),
		CleanupInterval: parseDuration(v.GetString("REPORTS_CLEANUP_INTERVAL"), 6*time.Hour),
		SigningSecret:   v.GetString("DOWNLOAD_SIGNING_SECRET"),
		DownloadURLTTL:  parseDuration(v.GetString("DOWNLOAD_URL_TTL"), 30*time.Minute),
		SettingsFile:    v.GetString("SETTINGS_FILE"),
		AccountsFile:    v.GetString("ACCOUNTS_FILE"),
	}

	cfg.Scraper = ScraperConfig{
		Command: strings.Fields(v.GetString("SCRAPER_COMMAND")),
		Timeout: parseDuration(v.GetString("SCRAPER_TIMEOUT"), time.Hour),
	}

	cfg.Scheduler = SchedulerConfig{
		Enabled: v.GetBool("SCHEDULER_ENABLED"),
		Spec:    v.GetString("SCHEDULER_SPEC"),
	}

	cfg.Dashboard = DashboardConfig{
		CacheEnabled: v.GetBool("ENABLE_CACHE"),
		CacheTTL:     parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
	}

	cfg.History = HistoryConfig{
		Enabled: v.GetBool("ENABLE_RUN_HISTORY"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 5000)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("INSTITUTION_NAME", "Unidad Educativa")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "reading_reports")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 5)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "12h")
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD_HASH", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("REPORTS_DIR", "reports")
	v.SetDefault("REPORTS_FALLBACK_DIRS", "")
	v.SetDefault("REPORTS_CLEAN_ON_START", false)
	v.SetDefault("REPORTS_RESULT_TTL", "720h")
	v.SetDefault("REPORTS_CLEANUP_INTERVAL", "6h")
	v.SetDefault("DOWNLOAD_SIGNING_SECRET", "dev_download_secret")
	v.SetDefault("DOWNLOAD_URL_TTL", "30m")
	v.SetDefault("SETTINGS_FILE", "scraper_config.json")
	v.SetDefault("ACCOUNTS_FILE", "users.json")

	v.SetDefault("SCRAPER_COMMAND", "")
	v.SetDefault("SCRAPER_TIMEOUT", "1h")

	v.SetDefault("SCHEDULER_ENABLED", false)
	v.SetDefault("SCHEDULER_SPEC", "@weekly")

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")

	v.SetDefault("ENABLE_RUN_HISTORY", false)
}

func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory") ||
		strings.Contains(err.Error(), "cannot find the file")
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
