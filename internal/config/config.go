package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config wisefido-vitals (HTTP API + realtime fan-out) configuration.
type Config struct {
	HTTP struct {
		Addr string
	}

	// History selects where medical records are durably kept.
	// Backend "file" (default) rewrites a JSON snapshot file on every
	// append; "postgres" keeps the same snapshot contract in a table.
	History struct {
		Backend string
		File    string
	}

	Database DatabaseConfig

	Liveness struct {
		PollInterval time.Duration
		Timeout      time.Duration
	}

	// Redis publishes every snapshot/record to a Redis Stream for
	// downstream consumers (disabled by default).
	Redis struct {
		Enabled  bool
		Addr     string
		Password string
		DB       int
		Stream   string
	}

	// MQTT subscribes to a readings topic as a second ingest source
	// (disabled by default).
	MQTT struct {
		Enabled  bool
		Broker   string
		ClientID string
		Username string
		Password string
		Topic    string
		QoS      byte
	}

	// Cloud forwards newly persisted records to an external webhook,
	// best effort (disabled by default).
	Cloud struct {
		Enabled    bool
		WebhookURL string
		Timeout    time.Duration
	}

	Log struct {
		Level  string
		Format string
	}
}

// DatabaseConfig postgres connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN returns the database connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.History.Backend = getEnv("HISTORY_BACKEND", "file")
	cfg.History.File = getEnv("HISTORY_FILE", "vitals_history.json")

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "vitals")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.Liveness.PollInterval = time.Duration(parseInt(getEnv("LIVENESS_POLL_SECONDS", "5"), 5)) * time.Second
	cfg.Liveness.Timeout = time.Duration(parseInt(getEnv("LIVENESS_TIMEOUT_SECONDS", "10"), 10)) * time.Second

	cfg.Redis.Enabled = getEnv("REDIS_ENABLED", "false") == "true"
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)
	cfg.Redis.Stream = getEnv("REDIS_STREAM", "vitals:events")

	cfg.MQTT.Enabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "wisefido-vitals")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.Topic = getEnv("MQTT_TOPIC", "vitals/readings")
	cfg.MQTT.QoS = byte(parseInt(getEnv("MQTT_QOS", "1"), 1))

	cfg.Cloud.Enabled = getEnv("CLOUD_ENABLED", "false") == "true"
	cfg.Cloud.WebhookURL = getEnv("CLOUD_WEBHOOK_URL", "")
	cfg.Cloud.Timeout = time.Duration(parseInt(getEnv("CLOUD_TIMEOUT_SECONDS", "10"), 10)) * time.Second

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
