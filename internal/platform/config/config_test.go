package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, time.Duration(0), cfg.Scheduler.FailureDelay)
	assert.Equal(t, 10*time.Second, cfg.Scheduler.PublishTimeout)
	assert.True(t, cfg.Engine.FindDuplicate)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MOCKABIS_SCHEDULER__FAILURE_DELAY", "3s")
	t.Setenv("MOCKABIS_ENGINE__FIND_DUPLICATE", "false")
	t.Setenv("MOCKABIS_KAFKA__BROKERS", "broker-1:9092, broker-2:9092")
	t.Setenv("MOCKABIS_STORE__BACKEND", "redis")
	t.Setenv("MOCKABIS_REDIS__URL", "redis://localhost:6379/0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.Scheduler.FailureDelay)
	assert.False(t, cfg.Engine.FindDuplicate)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown backend", env: map[string]string{"MOCKABIS_STORE__BACKEND": "mongo"}},
		{name: "redis without url", env: map[string]string{"MOCKABIS_STORE__BACKEND": "redis"}},
		{name: "postgres without dsn", env: map[string]string{"MOCKABIS_STORE__BACKEND": "postgres"}},
		{name: "listener without brokers", env: map[string]string{"MOCKABIS_KAFKA__LISTENER_ENABLED": "true"}},
		{name: "bad log level", env: map[string]string{"MOCKABIS_LOGGER__LEVEL": "loud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
