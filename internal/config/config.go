package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Database
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`
	DBSSLMode  string `yaml:"db_sslmode"`

	// Moderator sessions
	JWTSecret string        `yaml:"jwt_secret"`
	JWTExpiry time.Duration `yaml:"jwt_expiry"`

	// Seeded moderator accounts. Empty username disables the seed.
	AdminUsername     string `yaml:"admin_username"`
	AdminPassword     string `yaml:"admin_password"`
	AdminName         string `yaml:"admin_name"`
	UsersOnlyUsername string `yaml:"users_only_username"`
	UsersOnlyPassword string `yaml:"users_only_password"`
	UsersOnlyName     string `yaml:"users_only_name"`

	// Ingestion hooks. Empty token leaves /api/hooks unmounted.
	HookToken string `yaml:"hook_token"`

	// Server
	Port        string `yaml:"port"`
	CORSOrigins string `yaml:"cors_origins"`
	LoginRate   int    `yaml:"login_rate"`

	// Observability
	SentryDSN        string `yaml:"sentry_dsn"`
	Environment      string `yaml:"environment"`
	LogRetentionDays int    `yaml:"log_retention_days"`
}

func defaults() *Config {
	return &Config{
		DBHost:    "localhost",
		DBPort:    "5432",
		DBUser:    "postgres",
		DBName:    "moderation_db",
		DBSSLMode: "disable",

		JWTExpiry: 24 * time.Hour,

		AdminName:     "Administrator",
		UsersOnlyName: "Gestione Rappresentanti",

		Port:        "8080",
		CORSOrigins: "*",
		LoginRate:   10,

		Environment:      "development",
		LogRetentionDays: 30,
	}
}

// Load builds the configuration from defaults, the optional YAML file named by
// CONFIG_FILE, local .env files and finally the process environment.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	loadDotEnv()
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func loadDotEnv() {
	for _, file := range []string{".env", ".env.local"} {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			slog.Warn("failed to load env file", "file", file, "error", err)
		}
	}
}

func (c *Config) applyEnv() {
	c.DBHost = getEnv("DB_HOST", c.DBHost)
	c.DBPort = getEnv("DB_PORT", c.DBPort)
	c.DBUser = getEnv("DB_USER", c.DBUser)
	c.DBPassword = getEnv("DB_PASSWORD", c.DBPassword)
	c.DBName = getEnv("DB_NAME", c.DBName)
	c.DBSSLMode = getEnv("DB_SSLMODE", c.DBSSLMode)

	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTExpiry = parseDuration(os.Getenv("JWT_EXPIRY"), c.JWTExpiry)

	c.AdminUsername = getEnv("ADMIN_USERNAME", c.AdminUsername)
	c.AdminPassword = getEnv("ADMIN_PASSWORD", c.AdminPassword)
	c.AdminName = getEnv("ADMIN_NAME", c.AdminName)
	c.UsersOnlyUsername = getEnv("USERS_ONLY_USERNAME", c.UsersOnlyUsername)
	c.UsersOnlyPassword = getEnv("USERS_ONLY_PASSWORD", c.UsersOnlyPassword)
	c.UsersOnlyName = getEnv("USERS_ONLY_NAME", c.UsersOnlyName)

	c.HookToken = getEnv("HOOK_TOKEN", c.HookToken)

	c.Port = getEnv("PORT", c.Port)
	c.CORSOrigins = getEnv("CORS_ORIGINS", c.CORSOrigins)
	c.LoginRate = getEnvInt("LOGIN_RATE", c.LoginRate)

	c.SentryDSN = getEnv("SENTRY_DSN", c.SentryDSN)
	c.Environment = getEnv("APP_ENV", c.Environment)
	c.LogRetentionDays = getEnvInt("LOG_RETENTION_DAYS", c.LogRetentionDays)
}

// Validate reports the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWTExpiry <= 0 {
		return fmt.Errorf("JWT_EXPIRY must be positive")
	}
	return nil
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
