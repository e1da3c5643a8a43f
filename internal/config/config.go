package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Credential store kinds.
const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type Config struct {
	ServiceName  string             `mapstructure:"service_name"`
	API          APIConfig          `mapstructure:"api"`
	Credential   CredentialConfig   `mapstructure:"credential"`
	Redis        RedisConfig        `mapstructure:"redis"`
	NATS         NATSConfig         `mapstructure:"nats"`
	Notification NotificationConfig `mapstructure:"notification"`
	Log          LogConfig          `mapstructure:"log"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
	Tracing      TracingConfig      `mapstructure:"tracing"`
}

// APIConfig describes the remote bulletin board API.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CredentialConfig selects where the bearer token survives restarts.
type CredentialConfig struct {
	Store string `mapstructure:"store"` // file | redis | memory
	Path  string `mapstructure:"path"`  // для file
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Key      string `mapstructure:"key"`
}

type NATSConfig struct {
	URL           string        `mapstructure:"url"` // пусто = события не публикуются
	SubjectPrefix string        `mapstructure:"subject_prefix"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type NotificationConfig struct {
	Duration time.Duration `mapstructure:"duration"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputFile string `mapstructure:"output_file"`
}

type MetricsConfig struct {
	Port string `mapstructure:"port"`
}

type TracingConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

// LoadConfig reads defaults, an optional YAML file at path (file or directory) and
// BOARD_* environment variables, in increasing priority.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		if fi, err := os.Stat(path); err == nil {
			if fi.IsDir() {
				v.AddConfigPath(path)
				v.SetConfigName("config")
				v.SetConfigType("yaml")
			} else {
				v.SetConfigFile(path)
			}
		} else {
			v.AddConfigPath(".")
			v.SetConfigName("config")
			v.SetConfigType("yaml")
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("BOARD") // например, BOARD_API_BASE_URL
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "board-client")

	v.SetDefault("api.base_url", "http://localhost:8080")
	v.SetDefault("api.timeout", "10s")

	v.SetDefault("credential.store", StoreFile)
	v.SetDefault("credential.path", defaultCredentialPath())

	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key", "board:credential:default")

	v.SetDefault("nats.url", "")
	v.SetDefault("nats.subject_prefix", "board")
	v.SetDefault("nats.timeout", "5s")

	v.SetDefault("notification.duration", "4s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_file", "stderr")

	v.SetDefault("metrics.port", "")
	v.SetDefault("tracing.otlp_endpoint", "")
}

func defaultCredentialPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".board-client", "credential.json")
	}
	return filepath.Join(home, ".board-client", "credential.json")
}

// Validate checks the values the client cannot work without.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: invalid api.base_url %q", c.API.BaseURL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("config: api.timeout must be positive, got %s", c.API.Timeout)
	}
	switch c.Credential.Store {
	case StoreFile:
		if c.Credential.Path == "" {
			return errors.New("config: credential.path is required for the file store")
		}
	case StoreRedis:
		if c.Redis.Address == "" {
			return errors.New("config: redis.address is required for the redis store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("config: unknown credential.store %q", c.Credential.Store)
	}
	if c.Notification.Duration <= 0 {
		return fmt.Errorf("config: notification.duration must be positive, got %s", c.Notification.Duration)
	}
	return nil
}
