package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

type Config struct {
	LogLevel string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTP     HTTP   `yaml:"http"`
	Store    Store  `yaml:"store"`
	Redis    Redis  `yaml:"redis"`
}

type HTTP struct {
	Addr            string        `yaml:"addr" env:"HTTP_ADDR" env-default:":8080"`
	Heartbeat       time.Duration `yaml:"heartbeat" env:"HTTP_HEARTBEAT" env-default:"15s"`
	ShutdownTimeout time.Duration `yaml:"shutdown-timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type Store struct {
	Driver string        `yaml:"driver" env:"STORE_DRIVER" env-default:"memory"`
	TTL    time.Duration `yaml:"ttl" env:"STORE_TTL" env-default:"24h"`
}

type Redis struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// Load reads the YAML file at path, if it exists, and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	var err error
	if _, statErr := os.Stat(path); path != "" && statErr == nil {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}

	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad - load config or panic.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func (that *Config) Validate() error {
	switch that.Store.Driver {
	case DriverMemory, DriverRedis:
	default:
		return fmt.Errorf("unknown store driver %q", that.Store.Driver)
	}
	if that.HTTP.Heartbeat <= 0 {
		return errors.New("http heartbeat must be positive")
	}
	return nil
}

func (that *Redis) Addr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
