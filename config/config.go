package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

const (
	// DebugMode indicates service mode is debug.
	DebugMode = "debug"
	// TestMode indicates service mode is test.
	TestMode = "test"
	// ReleaseMode indicates service mode is release.
	ReleaseMode = "release"
)

type Config struct {
	ServiceName string
	ServiceHost string
	HTTPPort    string
	GRPCPort    string

	Environment string // debug, test, release
	Version     string

	JaegerHostPort string

	PostgresHost           string
	PostgresPort           int
	PostgresUser           string
	PostgresPassword       string
	PostgresDatabase       string
	PostgresMaxConnections int32
	MigrateOnStart         bool

	MinioHost        string
	MinioAccessKeyID string
	MinioSecretKey   string
	MinioBucket      string
	MinioUseSSL      bool

	LoginRPS   float64
	LoginBurst int

	DemoResetSchedule string
	DefaultSortField  string
	TopHeroesCount    int
}

// Load ...
func Load() Config {
	if err := godotenv.Load("/app/.env"); err != nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Println(ErrEnvNotFound)
		}
	}

	config := Config{}

	config.ServiceName = cast.ToString(getOrReturnDefaultValue("SERVICE_NAME", "heroes"))
	config.ServiceHost = cast.ToString(getOrReturnDefaultValue("HEROES_SERVICE_HOST", "localhost"))
	config.HTTPPort = cast.ToString(getOrReturnDefaultValue("HEROES_HTTP_PORT", ":8080"))
	config.GRPCPort = cast.ToString(getOrReturnDefaultValue("HEROES_GRPC_PORT", ":9090"))

	config.Environment = cast.ToString(getOrReturnDefaultValue("ENVIRONMENT", DebugMode))
	config.Version = cast.ToString(getOrReturnDefaultValue("VERSION", "1.0"))

	config.JaegerHostPort = cast.ToString(getOrReturnDefaultValue("JAEGER_URL", ""))

	config.PostgresHost = cast.ToString(getOrReturnDefaultValue("POSTGRES_HOST", "localhost"))
	config.PostgresPort = cast.ToInt(getOrReturnDefaultValue("POSTGRES_PORT", 5432))
	config.PostgresUser = cast.ToString(getOrReturnDefaultValue("POSTGRES_USER", "heroes"))
	config.PostgresPassword = cast.ToString(getOrReturnDefaultValue("POSTGRES_PASSWORD", ""))
	config.PostgresDatabase = cast.ToString(getOrReturnDefaultValue("POSTGRES_DATABASE", "heroes"))
	config.PostgresMaxConnections = cast.ToInt32(getOrReturnDefaultValue("POSTGRES_MAX_CONNECTIONS", 30))
	config.MigrateOnStart = cast.ToBool(getOrReturnDefaultValue("MIGRATE_ON_START", true))

	config.MinioHost = cast.ToString(getOrReturnDefaultValue("MINIO_ENDPOINT", "localhost:9000"))
	config.MinioAccessKeyID = cast.ToString(getOrReturnDefaultValue("MINIO_ACCESS_KEY", ""))
	config.MinioSecretKey = cast.ToString(getOrReturnDefaultValue("MINIO_SECRET_KEY", ""))
	config.MinioBucket = cast.ToString(getOrReturnDefaultValue("MINIO_BUCKET", "avatars"))
	config.MinioUseSSL = cast.ToBool(getOrReturnDefaultValue("MINIO_USE_SSL", false))

	config.LoginRPS = cast.ToFloat64(getOrReturnDefaultValue("LOGIN_RPS", 1))
	config.LoginBurst = cast.ToInt(getOrReturnDefaultValue("LOGIN_BURST", 5))

	config.DemoResetSchedule = cast.ToString(getOrReturnDefaultValue("DEMO_RESET_SCHEDULE", ""))
	config.DefaultSortField = cast.ToString(getOrReturnDefaultValue("DEFAULT_SORT_FIELD", "id"))
	config.TopHeroesCount = cast.ToInt(getOrReturnDefaultValue("TOP_HEROES_COUNT", 5))

	return config
}

// PostgresURL is the connection string shared by the pool and the migrator.
func (c Config) PostgresURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PostgresUser,
		c.PostgresPassword,
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresDatabase,
	)
}

func getOrReturnDefaultValue(key string, defaultValue any) any {
	val, exists := os.LookupEnv(key)

	if exists {
		return val
	}

	return defaultValue
}
