package config

import (
	"time"
)

type AppConfig struct {
	Port            int           `yaml:"port" env:"TFS_PORT" env-default:"8080"`
	DefaultTimeout  time.Duration `yaml:"default_timeout" env-default:"5s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
	LogLevel        string        `yaml:"log_level" env:"TFS_LOG_LEVEL" env-default:"debug"`
	LogFormat       string        `yaml:"log_format" env:"TFS_LOG_FORMAT" env-default:"pretty"`
}
