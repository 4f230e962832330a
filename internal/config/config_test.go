package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var keys = []string{
	"HTTP_PORT", "API_BASE_PATH", "LOG_LEVEL", "SCHEMA_PATH", "STORE_DRIVER", "SQLITE_PATH", "SEED_SQL",
	"DATABASE_URL", "MONGO_URI", "MONGO_DB", "REDIS_ADDR", "CACHE_TTL", "USE_KAFKA", "KAFKA_BROKERS",
	"KAFKA_TOPIC_QUERIES", "CLICKHOUSE_ADDR", "CLICKHOUSE_DB", "CURSOR_SECRET", "DEFAULT_PAGE_SIZE",
	"MAX_PAGE_SIZE", "MAX_SORT_FIELDS", "MAX_SEARCH_LENGTH", "MAX_IN_VALUES", "PAGE_WINDOW",
}

// clearEnv vacía las claves para el test; t.Setenv restaura los valores al terminar.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "/api", cfg.APIBasePath)
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.False(t, cfg.UseKafka)
	assert.Empty(t, cfg.CursorSecret)
	assert.Equal(t, 20, cfg.DefaultPageSize)
	assert.Equal(t, 100, cfg.MaxPageSize)
	assert.Equal(t, 3, cfg.MaxSortFields)
	assert.Equal(t, 100, cfg.MaxSearchLength)
	assert.Equal(t, 100, cfg.MaxInValues)
	assert.Equal(t, 2, cfg.PageWindow)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("USE_KAFKA", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("CACHE_TTL", "2m")
	t.Setenv("MAX_PAGE_SIZE", "250")
	t.Setenv("PAGE_WINDOW", "-3")

	cfg := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.True(t, cfg.UseKafka)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 250, cfg.MaxPageSize)
	assert.Equal(t, 2, cfg.PageWindow, "invalid values fall back")
}

func TestLoadConfig_DotEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	assert.NoError(t, os.WriteFile(path, []byte("HTTP_PORT=9090\nCURSOR_SECRET=from-dotenv-file-0123\n"), 0o600))
	t.Setenv("HTTP_PORT", "7070")

	cfg := LoadConfig(path)

	assert.Equal(t, "7070", cfg.HTTPPort, "environment wins over .env")
	assert.Equal(t, "from-dotenv-file-0123", cfg.CursorSecret)
}
