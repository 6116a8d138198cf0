package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kestrelapps/taskdeck-api/config"
)

func TestNewDefaults(t *testing.T) {
	os.Unsetenv("PUSH_PROVIDER")
	os.Unsetenv("PUSH_CHUNK_SIZE")
	os.Unsetenv("PUSH_CONCURRENCY")
	os.Unsetenv("PUSH_TIMEOUT")
	os.Unsetenv("TOKEN_RETENTION_DAYS")

	c := config.New()

	assert.Equal(t, "expo", c.PushProvider)
	assert.Equal(t, "https://exp.host/--/api/v2/push/send", c.ExpoPushURL)
	assert.Equal(t, 100, c.PushChunkSize)
	assert.Equal(t, 4, c.PushConcurrency)
	assert.Equal(t, 15*time.Second, c.PushTimeout)
	assert.Equal(t, 30*24*time.Hour, c.RetentionWindow)
}

func TestNewOverrides(t *testing.T) {
	os.Setenv("PUSH_PROVIDER", "fcm")
	os.Setenv("PUSH_CHUNK_SIZE", "500")
	os.Setenv("PUSH_TIMEOUT", "5s")
	os.Setenv("TOKEN_RETENTION_DAYS", "7")
	defer func() {
		os.Unsetenv("PUSH_PROVIDER")
		os.Unsetenv("PUSH_CHUNK_SIZE")
		os.Unsetenv("PUSH_TIMEOUT")
		os.Unsetenv("TOKEN_RETENTION_DAYS")
	}()

	c := config.New()

	assert.Equal(t, "fcm", c.PushProvider)
	assert.Equal(t, 500, c.PushChunkSize)
	assert.Equal(t, 5*time.Second, c.PushTimeout)
	assert.Equal(t, 7*24*time.Hour, c.RetentionWindow)
}

func TestNewBadValuesFallBack(t *testing.T) {
	os.Setenv("PUSH_CHUNK_SIZE", "not-a-number")
	os.Setenv("PUSH_TIMEOUT", "-3s")
	defer func() {
		os.Unsetenv("PUSH_CHUNK_SIZE")
		os.Unsetenv("PUSH_TIMEOUT")
	}()

	c := config.New()

	assert.Equal(t, 100, c.PushChunkSize)
	assert.Equal(t, 15*time.Second, c.PushTimeout)
}
