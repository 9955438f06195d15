package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("JM_TEST_INT", "42")
	t.Setenv("JM_TEST_BAD_INT", "forty")
	t.Setenv("JM_TEST_BOOL", "false")
	t.Setenv("JM_TEST_DUR", "90s")

	assert.Equal(t, 42, getEnvAsInt("JM_TEST_INT", 1))
	assert.Equal(t, 1, getEnvAsInt("JM_TEST_BAD_INT", 1))
	assert.False(t, getEnvAsBool("JM_TEST_BOOL", true))
	assert.True(t, getEnvAsBool("JM_TEST_UNSET", true))
	assert.Equal(t, 90*time.Second, getEnvAsDuration("JM_TEST_DUR", time.Minute))
	assert.Equal(t, "fallback", getEnvOrDefault("JM_TEST_UNSET", "fallback"))
}

func TestDSN(t *testing.T) {
	c := &DBConfig{Host: "db", User: "u", Password: "p", Name: "market", Port: "5432", SSLMode: "disable", TimeZone: "UTC"}
	assert.Equal(t, "host=db user=u password=p dbname=market port=5432 sslmode=disable TimeZone=UTC", c.DSN())
}
