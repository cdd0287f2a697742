package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds all configuration for the authorization server.
// Tags use mapstructure for Viper unmarshalling; every key can also be set
// through the environment variable of the same name.
type ServerConfig struct {
	HTTPPort string `mapstructure:"HTTP_PORT"`

	RedisHost     string `mapstructure:"REDIS_HOST"`
	RedisPort     int    `mapstructure:"REDIS_PORT"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	RedisPoolSize int    `mapstructure:"REDIS_POOL_SIZE"`

	// SecretKey signs access tokens. The default exists for local
	// development only and must be overridden in production.
	SecretKey                string `mapstructure:"SECRET_KEY"`
	Algorithm                string `mapstructure:"ALGORITHM"`
	AccessTokenExpireMinutes int    `mapstructure:"ACCESS_TOKEN_EXPIRE_MINUTES"`
	AuthCodeTTLMinutes       int    `mapstructure:"AUTH_CODE_TTL_MINUTES"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogPretty bool   `mapstructure:"LOG_PRETTY"`

	OtelServiceName string `mapstructure:"OTEL_SERVICE_NAME"`
}

// RedisAddr returns the host:port connection target for the code store.
func (c *ServerConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// AccessTokenTTL returns the configured access-token lifetime.
func (c *ServerConfig) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

// AuthCodeTTL returns the configured authorization-code lifetime.
func (c *ServerConfig) AuthCodeTTL() time.Duration {
	return time.Duration(c.AuthCodeTTLMinutes) * time.Minute
}

// LoadConfig reads configuration from file, environment variables, and
// defaults.
func LoadConfig() (*ServerConfig, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/ledgerkeep-auth/")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("REDIS_HOST", "redis")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 100)
	v.SetDefault("SECRET_KEY", "defaultsecretkey") // CHANGE IN PRODUCTION
	v.SetDefault("ALGORITHM", "HS256")
	v.SetDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 30)
	v.SetDefault("AUTH_CODE_TTL_MINUTES", 10)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", true)
	v.SetDefault("OTEL_SERVICE_NAME", "ledgerkeep-auth")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, we run on defaults and env vars.
		// Anything else (malformed file, permissions) is a real error.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	return &cfg, nil
}
