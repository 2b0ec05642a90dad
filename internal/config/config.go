/**
 * @description
 * This package handles configuration management for the banking service. It
 * uses the Viper library to read configuration from environment variables
 * (optionally backed by a .env file), providing a centralized way to manage
 * application settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the banking service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort             string        `mapstructure:"SERVER_PORT"`
	AppEnv                 string        `mapstructure:"APP_ENV"`
	DatabaseURL            string        `mapstructure:"DATABASE_URL"`
	RedisURL               string        `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix   string        `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	JWTSecret              string        `mapstructure:"JWT_SECRET"`
	JWTExpiry              time.Duration `mapstructure:"JWT_EXPIRY"`
	CORSAllowedOrigins     []string      `mapstructure:"-"`
	LoginRateLimitPerMin   int           `mapstructure:"LOGIN_RATE_LIMIT_PER_MINUTE"`
	CheckInRateLimitPerMin int           `mapstructure:"CHECKIN_RATE_LIMIT_PER_MINUTE"`
}

// IsProduction reports whether the service runs in production mode. Error
// responses include stack traces only outside production.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// LoadConfig reads configuration from environment variables, with an optional
// .env file at the given path. Viper automatically binds environment
// variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "glabank:rate_limit")
	viper.SetDefault("JWT_EXPIRY", "168h")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:8080")
	viper.SetDefault("LOGIN_RATE_LIMIT_PER_MINUTE", 10)
	viper.SetDefault("CHECKIN_RATE_LIMIT_PER_MINUTE", 30)

	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("APP_ENV")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("JWT_SECRET")
	_ = viper.BindEnv("JWT_EXPIRY")
	_ = viper.BindEnv("CORS_ALLOWED_ORIGINS")
	_ = viper.BindEnv("LOGIN_RATE_LIMIT_PER_MINUTE")
	_ = viper.BindEnv("CHECKIN_RATE_LIMIT_PER_MINUTE")

	// The .env file is optional; missing file is not an error.
	if readErr := viper.ReadInConfig(); readErr != nil {
		if _, ok := readErr.(viper.ConfigFileNotFoundError); !ok {
			// Keep going on parse errors too: env vars may still be complete.
			_ = readErr
		}
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	// Platform-provided PORT (e.g. Railway/Render) wins over SERVER_PORT.
	if port := viper.GetString("PORT"); port != "" {
		config.ServerPort = port
	}
	if config.ServerPort == "" {
		config.ServerPort = "8080"
	}

	config.CORSAllowedOrigins = splitAndTrim(viper.GetString("CORS_ALLOWED_ORIGINS"))
	return
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
