package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// DevSecretKey is the signing secret used when AUTH_SECRET_KEY is unset.
// It is rejected when ENVIRONMENT is production.
const DevSecretKey = "dev-secret-change-in-production"

var ErrInsecureSecret = errors.New("AUTH_SECRET_KEY must be set to at least 32 characters in production")

// Config is the process-wide configuration. It is built once at startup and
// handed to the components that need it; nothing reads the environment after Load.
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
}

type AppConfig struct {
	Name        string `validate:"required"`
	Version     string `validate:"required"`
	Description string
	Environment string `validate:"required,oneof=development test staging production"`
	Debug       bool
	LogLevel    string `validate:"required,oneof=debug info warn error"`
}

type ServerConfig struct {
	Host           string  `validate:"required"`
	Port           int     `validate:"required,gt=0,lt=65536"`
	FrontendURL    string  `validate:"required,url"`
	RateLimitRPS   float64 `validate:"gt=0"`
	RateLimitBurst int     `validate:"gt=0"`
}

type DatabaseConfig struct {
	URL         string `validate:"required"`
	AutoMigrate bool
}

type AuthConfig struct {
	SecretKey      string        `validate:"required"`
	Algorithm      string        `validate:"required,oneof=HS256 HS384 HS512"`
	TokenTTL       time.Duration `validate:"gt=0"`
	CookieSecure   bool
	PasswordScheme string        `validate:"required,oneof=bcrypt argon2id"`
	BcryptCost     int           `validate:"gte=4,lte=31"`
}

// Addr returns the listen address in host:port form.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsProduction reports whether the service runs in the production environment.
func (c AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads configuration from the environment, applies defaults and
// validates the result.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := Config{
		App: AppConfig{
			Name:        v.GetString("APP_NAME"),
			Version:     v.GetString("APP_VERSION"),
			Description: v.GetString("APP_DESCRIPTION"),
			Environment: v.GetString("ENVIRONMENT"),
			Debug:       v.GetBool("DEBUG"),
			LogLevel:    v.GetString("LOG_LEVEL"),
		},
		Server: ServerConfig{
			Host:           v.GetString("HOST"),
			Port:           v.GetInt("PORT"),
			FrontendURL:    v.GetString("FRONTEND_URL"),
			RateLimitRPS:   v.GetFloat64("RATE_LIMIT_RPS"),
			RateLimitBurst: v.GetInt("RATE_LIMIT_BURST"),
		},
		Database: DatabaseConfig{
			URL:         v.GetString("DATABASE_URL"),
			AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
		},
		Auth: AuthConfig{
			SecretKey:      v.GetString("AUTH_SECRET_KEY"),
			Algorithm:      v.GetString("AUTH_ALGORITHM"),
			TokenTTL:       v.GetDuration("AUTH_TOKEN_TTL"),
			CookieSecure:   v.GetBool("AUTH_COOKIE_SECURE"),
			PasswordScheme: v.GetString("PASSWORD_SCHEME"),
			BcryptCost:     v.GetInt("BCRYPT_COST"),
		},
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.App.IsProduction() && (cfg.Auth.SecretKey == DevSecretKey || len(cfg.Auth.SecretKey) < 32) {
		return Config{}, ErrInsecureSecret
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "Task Manager API")
	v.SetDefault("APP_VERSION", "1.0.0")
	v.SetDefault("APP_DESCRIPTION", "Backend for task management")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("HOST", "127.0.0.1")
	v.SetDefault("PORT", 8000)
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)

	v.SetDefault("DATABASE_URL", "root:password@tcp(127.0.0.1:3306)/taskmanager?parseTime=true")
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("AUTH_SECRET_KEY", DevSecretKey)
	v.SetDefault("AUTH_ALGORITHM", "HS256")
	v.SetDefault("AUTH_TOKEN_TTL", 60*time.Minute)
	v.SetDefault("AUTH_COOKIE_SECURE", false)
	v.SetDefault("PASSWORD_SCHEME", "bcrypt")
	v.SetDefault("BCRYPT_COST", 12)
}
