package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a:9092", "b:9092"}, CSV(" a:9092, ,b:9092 "))
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("CANTEEN_TEST_INT", "42")
	t.Setenv("CANTEEN_TEST_BAD_INT", "x")
	t.Setenv("CANTEEN_TEST_BOOL", "true")
	t.Setenv("CANTEEN_TEST_DURATION", "3s")

	assert.Equal(t, 42, EnvIntDefault("CANTEEN_TEST_INT", 1))
	assert.Equal(t, 1, EnvIntDefault("CANTEEN_TEST_BAD_INT", 1))
	assert.Equal(t, "def", EnvDefault("CANTEEN_TEST_MISSING", "def"))
	assert.True(t, EnvBoolDefault("CANTEEN_TEST_BOOL", false))
	assert.Equal(t, 3*time.Second, EnvDurationDefault("CANTEEN_TEST_DURATION", 0))
}

func TestOverlay_ReplacesOnlyPresentValues(t *testing.T) {
	cfg := Config{ServiceName: "canteen", KVDriver: "sqlite", ServerPort: 8080}

	err := cfg.overlayBytes([]byte("KV_DRIVER: redis\nREDIS_ADDR: localhost:6379\nSERVER_PORT: 9090\n"))
	require.NoError(t, err)

	assert.Equal(t, "canteen", cfg.ServiceName)
	assert.Equal(t, "redis", cfg.KVDriver)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 9090, cfg.ServerPort)
}
