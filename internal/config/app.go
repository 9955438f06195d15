package config

import (
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	StartPolicyScheduled = "scheduled"
	StartPolicyImmediate = "immediate"
)

type AppConfig struct {
	Name    string
	Env     string
	Port    string
	BaseURL string
	// Location decides which calendar day "today" is for generation and start checks.
	Location *time.Location
	// StartPolicy is "scheduled" (start allowed from the scheduled date) or "immediate".
	StartPolicy string
	// IdentityToken, when set, must be presented by the identity proxy in X-Identity-Token.
	IdentityToken string
	LockShards    int
}

var (
	appConfig *AppConfig
	appOnce   sync.Once
)

func LoadAppConfig() *AppConfig {
	appOnce.Do(func() {
		env := os.Getenv("APP_ENV")
		if env == "" {
			env = "development"
			log.Printf("Warning: APP_ENV not set, defaulting to %s", env)
		}
		loc, err := time.LoadLocation(getEnvOrDefault("APP_TIMEZONE", "UTC"))
		if err != nil {
			log.Printf("Warning: invalid APP_TIMEZONE, using UTC: %v", err)
			loc = time.UTC
		}
		policy := strings.ToLower(getEnvOrDefault("APP_START_POLICY", StartPolicyScheduled))
		if policy != StartPolicyImmediate {
			policy = StartPolicyScheduled
		}
		appConfig = &AppConfig{
			Name:          getEnvOrDefault("APP_NAME", "jobmarket"),
			Env:           env,
			Port:          getEnvOrDefault("APP_PORT", ":8080"),
			BaseURL:       os.Getenv("APP_URL"),
			Location:      loc,
			StartPolicy:   policy,
			IdentityToken: os.Getenv("IDENTITY_TOKEN"),
			LockShards:    getEnvAsInt("APP_LOCK_SHARDS", 64),
		}
	})
	return appConfig
}

func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}
