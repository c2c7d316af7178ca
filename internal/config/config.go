package config

import (
	"errors"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Filesystem FilesystemConfig `yaml:"filesystem"`
	Database   DatabaseConfig   `yaml:"database"`
}

func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err.Error())
	}
	return cfg
}

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, errors.New("config path is empty")
	}

	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.New("config file does not exist: " + configPath)
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.New("failed to read data from config file: " + configPath)
	}

	// Enrich with env variables
	data = expandEnvVars(data)

	// Serialize to struct, then fill defaults and env overrides
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.New("cannot parse config: " + err.Error())
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, errors.New("cannot read config env: " + err.Error())
	}

	return &cfg, nil
}

// Defaults returns a config populated only from env-default tags and the
// environment.
func Defaults() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, errors.New("cannot read config env: " + err.Error())
	}
	return &cfg, nil
}

func expandEnvVars(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}
