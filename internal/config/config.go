package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Drivers de almacenamiento soportados.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

type Config struct {
	HTTPPort    string
	APIBasePath string
	LogLevel    string
	SchemaPath  string

	StoreDriver string
	SQLitePath  string
	SeedSQL     string
	DatabaseURL string
	MongoURI    string
	MongoDB     string

	RedisAddr string
	CacheTTL  time.Duration

	UseKafka          bool
	KafkaBrokers      []string
	KafkaTopicQueries string

	ClickHouseAddr string
	ClickHouseDB   string

	CursorSecret string

	DefaultPageSize int
	MaxPageSize     int
	MaxSortFields   int
	MaxSearchLength int
	MaxInValues     int
	PageWindow      int
}

// LoadConfig carga un .env opcional y lee las variables de entorno con sus valores por defecto.
// Las variables ya definidas en el entorno tienen prioridad sobre el fichero.
func LoadConfig(envFiles ...string) *Config {
	_ = godotenv.Load(envFiles...)

	getEnv := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}
	getInt := func(key string, fallback int) int {
		if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n > 0 {
			return n
		}
		return fallback
	}
	getBool := func(key string, fallback bool) bool {
		if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
			return b
		}
		return fallback
	}
	getDuration := func(key string, fallback time.Duration) time.Duration {
		if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
			return d
		}
		return fallback
	}

	var brokers []string
	for _, b := range strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}

	return &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		APIBasePath: getEnv("API_BASE_PATH", "/api"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		SchemaPath:  getEnv("SCHEMA_PATH", "./config/entities.yaml"),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", DriverSQLite)),
		SQLitePath:  getEnv("SQLITE_PATH", "./hexaquery.db"),
		SeedSQL:     getEnv("SEED_SQL", ""),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getEnv("MONGO_DB", "hexaquery"),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		CacheTTL:  getDuration("CACHE_TTL", 30*time.Second),

		UseKafka:          getBool("USE_KAFKA", false),
		KafkaBrokers:      brokers,
		KafkaTopicQueries: getEnv("KAFKA_TOPIC_QUERIES", "listing-queries"),

		ClickHouseAddr: getEnv("CLICKHOUSE_ADDR", ""),
		ClickHouseDB:   getEnv("CLICKHOUSE_DB", "default"),

		CursorSecret: os.Getenv("CURSOR_SECRET"),

		DefaultPageSize: getInt("DEFAULT_PAGE_SIZE", 20),
		MaxPageSize:     getInt("MAX_PAGE_SIZE", 100),
		MaxSortFields:   getInt("MAX_SORT_FIELDS", 3),
		MaxSearchLength: getInt("MAX_SEARCH_LENGTH", 100),
		MaxInValues:     getInt("MAX_IN_VALUES", 100),
		PageWindow:      getInt("PAGE_WINDOW", 2),
	}
}
