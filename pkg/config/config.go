package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"watchit"`
	ServerPort  int    `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	StoreDriver   string `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL   string `env:"DATABASE_URL"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"watchit.db"`
	MongoURI      string `env:"MONGO_URI"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"watchit"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret               string        `env:"JWT_SECRET"`
	RevocationPurgeInterval time.Duration `env:"REVOCATION_PURGE_INTERVAL" envDefault:"10m"`

	TMDBBaseURL     string        `env:"TMDB_BASE_URL" envDefault:"https://api.themoviedb.org/3"`
	TMDBAccessToken string        `env:"TMDB_ACCESS_TOKEN"`
	TMDBCacheTTL    time.Duration `env:"TMDB_CACHE_TTL" envDefault:"10m"`

	ESURL      string `env:"ES_URL"`
	ESUser     string `env:"ES_USER"`
	ESPassword string `env:"ES_PASSWORD"`
	ESIndex    string `env:"ES_INDEX" envDefault:"movies"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
}

func Load() (Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}
	return Parse()
}

func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.KafkaBrokers = CSV(cfg.KafkaBrokers)
	return cfg, nil
}

func (c Config) Validate() error {
	if err := NonEmpty(c.JWTSecret, "JWT_SECRET"); err != nil {
		return err
	}
	switch c.StoreDriver {
	case DriverPostgres:
		return NonEmpty(c.DatabaseURL, "DATABASE_URL")
	case DriverSQLite:
		return NonEmpty(c.SQLitePath, "SQLITE_PATH")
	case DriverMongo:
		return NonEmpty(c.MongoURI, "MONGO_URI")
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
}

func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

// CSV drops blank entries left by values like "a,,b" or a trailing comma.
func CSV(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = trim(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
