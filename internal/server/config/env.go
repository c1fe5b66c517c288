package config

import (
	"errors"
	"io/fs"
	"net"
	"net/url"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/otpauth/internal/flagx"
	"github.com/joho/godotenv"
)

// dbParts lets the DSN be assembled from separate variables, the way
// container environments usually provide database credentials.
type dbParts struct {
	Host     string `env:"DB_HOST"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	Name     string `env:"DB_NAME"`
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

func (p dbParts) dsn() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     net.JoinHostPort(p.Host, p.Port),
		Path:     "/" + p.Name,
		RawQuery: url.Values{"sslmode": {p.SSLMode}}.Encode(),
	}
	return u.String()
}

// loadDotEnv reads path (".env" when empty) into the process environment
// without overriding variables that are already set. A missing default
// file is not an error.
func loadDotEnv(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err != nil && !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// parseEnv overlays environment variables onto config. Variables that are
// not set leave the current value untouched. DATABASE_DSN wins over the
// DB_* parts. Errors panic, as this only runs at startup.
func parseEnv(config *Config) {
	if err := loadDotEnv(flagx.EnvFileFlags()); err != nil {
		panic(err)
	}

	if err := env.Parse(config); err != nil {
		panic(err)
	}

	var parts dbParts
	if err := env.Parse(&parts); err != nil {
		panic(err)
	}
	if parts.Host != "" {
		if _, ok := os.LookupEnv("DATABASE_DSN"); !ok {
			config.DatabaseDSN = parts.dsn()
		}
	}
}
