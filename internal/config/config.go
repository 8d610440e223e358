package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	ServerMode  = "server"
	ConsoleMode = "console"

	RedisStorage  = "redis"
	MemoryStorage = "memory"
)

type Config struct {
	LogLevel     string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	AppMode      string        `yaml:"app-mode" env:"APP_MODE" env-default:"server"`
	HTTPPort     string        `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Storage      string        `yaml:"storage" env:"STORAGE" env-default:"redis"`
	Redis        Redis         `yaml:"redis"`
	PollInterval time.Duration `yaml:"poll-interval" env:"POLL_INTERVAL" env-default:"1s"`
	PlayerID     string        `yaml:"player-id" env:"PLAYER_ID"`
	PublicURL    string        `yaml:"public-url" env:"PUBLIC_URL" env-default:"http://localhost:9090/join"`
	Bot          Bot           `yaml:"bot"`
}

type Redis struct {
	Host       string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port       string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password   string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB         int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	SessionTTL time.Duration `yaml:"session-ttl" env:"REDIS_SESSION_TTL" env-default:"24h"`
}

type Bot struct {
	Difficulty string `yaml:"difficulty" env:"BOT_DIFFICULTY" env-default:"medium"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load - reads path and applies environment overrides on top of it.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

func (that *Config) validate() error {
	switch that.AppMode {
	case ServerMode, ConsoleMode:
	default:
		return fmt.Errorf("app-mode must be %q or %q, got %q", ServerMode, ConsoleMode, that.AppMode)
	}

	switch that.Storage {
	case RedisStorage, MemoryStorage:
	default:
		return fmt.Errorf("storage must be %q or %q, got %q", RedisStorage, MemoryStorage, that.Storage)
	}

	if that.PollInterval <= 0 {
		return fmt.Errorf("poll-interval must be positive, got %s", that.PollInterval)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
