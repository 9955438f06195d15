package config

import (
	"fmt"
	"os"
	"sync"
)

type DBConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	TimeZone string
	// Path is the sqlite file (or a file: URI) when Driver is sqlite.
	Path string
}

var (
	dbConfig *DBConfig
	dbOnce   sync.Once
)

func LoadDBConfig() *DBConfig {
	dbOnce.Do(func() {
		dbConfig = &DBConfig{
			Driver:   getEnvOrDefault("DB_DRIVER", "postgres"),
			Host:     os.Getenv("DB_HOST"),
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			SSLMode:  getEnvOrDefault("DB_SSLMODE", "disable"),
			TimeZone: getEnvOrDefault("DB_TIMEZONE", "UTC"),
			Path:     getEnvOrDefault("DB_PATH", "jobmarket.db"),
		}
	})
	return dbConfig
}

// DSN renders the postgres connection string.
func (c *DBConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.Host,
		c.User,
		c.Password,
		c.Name,
		c.Port,
		c.SSLMode,
		c.TimeZone,
	)
}
