package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_DefaultValues(t *testing.T) {
	os.Clearenv()

	cfg := Load()
	assert.NotNil(t, cfg)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)

	assert.Equal(t, "file", cfg.History.Backend)
	assert.Equal(t, "vitals_history.json", cfg.History.File)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "postgres", cfg.Database.User)
	assert.Equal(t, "vitals", cfg.Database.Database)
	assert.Equal(t, "disable", cfg.Database.SSLMode)

	assert.Equal(t, 5*time.Second, cfg.Liveness.PollInterval)
	assert.Equal(t, 10*time.Second, cfg.Liveness.Timeout)

	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "vitals:events", cfg.Redis.Stream)

	assert.False(t, cfg.MQTT.Enabled)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.Broker)
	assert.Equal(t, "vitals/readings", cfg.MQTT.Topic)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)

	assert.False(t, cfg.Cloud.Enabled)
	assert.Equal(t, 10*time.Second, cfg.Cloud.Timeout)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("HISTORY_BACKEND", "postgres")
	os.Setenv("HISTORY_FILE", "/var/lib/vitals/history.json")
	os.Setenv("DB_HOST", "test-host")
	os.Setenv("DB_NAME", "test-db")
	os.Setenv("LIVENESS_POLL_SECONDS", "1")
	os.Setenv("LIVENESS_TIMEOUT_SECONDS", "3")
	os.Setenv("REDIS_ENABLED", "true")
	os.Setenv("REDIS_ADDR", "test-redis:6380")
	os.Setenv("MQTT_ENABLED", "true")
	os.Setenv("MQTT_TOPIC", "devices/+/vitals")
	os.Setenv("CLOUD_ENABLED", "true")
	os.Setenv("CLOUD_WEBHOOK_URL", "https://example.com/hook")
	os.Setenv("LOG_LEVEL", "debug")
	defer os.Clearenv()

	cfg := Load()

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "postgres", cfg.History.Backend)
	assert.Equal(t, "/var/lib/vitals/history.json", cfg.History.File)
	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, "test-db", cfg.Database.Database)
	assert.Equal(t, time.Second, cfg.Liveness.PollInterval)
	assert.Equal(t, 3*time.Second, cfg.Liveness.Timeout)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "test-redis:6380", cfg.Redis.Addr)
	assert.True(t, cfg.MQTT.Enabled)
	assert.Equal(t, "devices/+/vitals", cfg.MQTT.Topic)
	assert.True(t, cfg.Cloud.Enabled)
	assert.Equal(t, "https://example.com/hook", cfg.Cloud.WebhookURL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{
		Host:     "db",
		Port:     5433,
		User:     "u",
		Password: "p",
		Database: "vitals",
		SSLMode:  "disable",
	}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=vitals sslmode=disable", c.DSN())
}
