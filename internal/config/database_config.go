package config

import (
	"fmt"
	"net/url"
	"time"
)

// DatabaseConfig points at the PostgreSQL instance holding external files
// that can be imported into a filesystem. Disabled by default.
type DatabaseConfig struct {
	Enabled        bool          `yaml:"enabled" env:"TFS_DB_ENABLED" env-default:"false"`
	Host           string        `yaml:"host" env:"TFS_DB_HOST" env-default:"localhost"`
	Port           int           `yaml:"port" env:"TFS_DB_PORT" env-default:"5432"`
	User           string        `yaml:"user" env:"TFS_DB_USER" env-default:"postgres"`
	Password       string        `yaml:"password" env:"TFS_DB_PASSWORD"`
	Name           string        `yaml:"name" env:"TFS_DB_NAME" env-default:"tfs"`
	SSLMode        string        `yaml:"sslmode" env-default:"disable"`
	SourceTable    string        `yaml:"source_table" env-default:"external_files"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env-default:"30s"`
}

func (c DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}
	q := u.Query()
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
