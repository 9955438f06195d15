package config

import (
	"os"
	"sync"
	"time"
)

type NotifyConfig struct {
	// WebhookURL receives every domain event; empty disables the notifier.
	WebhookURL string
	Secret     string
	Timeout    time.Duration
	MaxRetries int
	BufferSize int
}

var (
	notifyConfig *NotifyConfig
	notifyOnce   sync.Once
)

func LoadNotifyConfig() *NotifyConfig {
	notifyOnce.Do(func() {
		notifyConfig = &NotifyConfig{
			WebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
			Secret:     os.Getenv("NOTIFY_WEBHOOK_SECRET"),
			Timeout:    getEnvAsDuration("NOTIFY_TIMEOUT", 10*time.Second),
			MaxRetries: getEnvAsInt("NOTIFY_MAX_RETRIES", 3),
			BufferSize: getEnvAsInt("NOTIFY_BUFFER_SIZE", 256),
		}
	})
	return notifyConfig
}
