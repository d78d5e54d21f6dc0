package config

import (
	"errors"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type WebServerConfig struct {
	Port            string `mapstructure:"port"`
	IP              string `mapstructure:"ip"`
	ReadTimeout     int    `mapstructure:"read_timeout"`
	WriteTimeout    int    `mapstructure:"write_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
}

// BackendConfig points at the chat analysis API.
type BackendConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// SessionConfig controls where the bearer token lives between requests.
type SessionConfig struct {
	Store      string `mapstructure:"store"` // "cookie" or "redis"
	CookieName string `mapstructure:"cookie_name"`
	Secret     string `mapstructure:"secret"`
	Secure     bool   `mapstructure:"secure"`
	TTLSeconds int    `mapstructure:"ttl_seconds"` // redis store only
}

type RedisConfig struct {
	Address          string `mapstructure:"address"`
	Password         string `mapstructure:"password"`
	DB               int    `mapstructure:"db"`
	PoolSize         int    `mapstructure:"pool_size"`
	MinIdleConns     int    `mapstructure:"min_idle_conns"`
	OperationTimeout int    `mapstructure:"operation_timeout"`
}

// CacheConfig sizes the in-memory registry of per-session analysis workspaces.
type CacheConfig struct {
	MaxSizeMB   int `mapstructure:"max_size_mb"`
	TTLSeconds  int `mapstructure:"ttl_seconds"`
	CounterSize int `mapstructure:"counter_size"`
}

type UploadConfig struct {
	MaxSizeMB        int    `mapstructure:"max_size_mb"`
	AllowedExtension string `mapstructure:"allowed_extension"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type Config struct {
	WebServer WebServerConfig `mapstructure:"webserver"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Session   SessionConfig   `mapstructure:"session"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Upload    UploadConfig    `mapstructure:"upload"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
}

var ErrMissingSessionSecret = errors.New("session.secret must be set")

// LoadConfig reads config.yaml (from path when given, else the working directory),
// then applies CHATANALYZER_* environment overrides. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	var config Config

	// .env is optional; variables already in the environment win.
	_ = godotenv.Load()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("CHATANALYZER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return config, err
		}
		log.Warn().Msg("No config file found, using defaults and environment")
	}

	if err := v.Unmarshal(&config); err != nil {
		return config, err
	}

	if err := config.Validate(); err != nil {
		return config, err
	}

	return config, nil
}

// MustLoadConfig loads the configuration or exits the process.
func MustLoadConfig(path string) Config {
	config, err := LoadConfig(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	return config
}

func setDefaults(v *viper.Viper) {
	// WebServer defaults
	v.SetDefault("webserver.port", "3000")
	v.SetDefault("webserver.ip", "127.0.0.1")
	v.SetDefault("webserver.read_timeout", 30)
	v.SetDefault("webserver.write_timeout", 120)
	v.SetDefault("webserver.shutdown_timeout", 30)

	// Backend defaults
	v.SetDefault("backend.base_url", "http://localhost:8000")
	v.SetDefault("backend.timeout_seconds", 120) // analysis of large exports is slow

	// Session defaults
	v.SetDefault("session.store", "cookie")
	v.SetDefault("session.cookie_name", "chat_analyzer_session")
	v.SetDefault("session.secret", "")
	v.SetDefault("session.secure", false)
	v.SetDefault("session.ttl_seconds", 86400)

	// Redis defaults
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.operation_timeout", 5)

	// Cache defaults
	v.SetDefault("cache.max_size_mb", 256)
	v.SetDefault("cache.ttl_seconds", 3600)
	v.SetDefault("cache.counter_size", 100000)

	// Upload defaults
	v.SetDefault("upload.max_size_mb", 20)
	v.SetDefault("upload.allowed_extension", ".txt")

	// RateLimit defaults
	v.SetDefault("ratelimit.requests_per_second", 2.0)
	v.SetDefault("ratelimit.burst", 10)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", true)
}
