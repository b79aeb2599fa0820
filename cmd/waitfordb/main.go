// Command waitfordb blocks until the Postgres database behind DATABASE_URL
// accepts connections. It is meant for container entrypoints and CI.
package main

import (
	"context"
	"database/sql"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	_ "github.com/lib/pq"

	"github.com/Skotchmaster/watchit/pkg/logging"
)

type waitConfig struct {
	DatabaseURL string        `env:"DATABASE_URL,required"`
	Timeout     time.Duration `env:"WAIT_FOR_DB_TIMEOUT" envDefault:"60s"`
	Interval    time.Duration `env:"WAIT_FOR_DB_INTERVAL" envDefault:"2s"`
}

func main() {
	os.Exit(run())
}

func run() int {
	l := logging.New(os.Getenv("LOG_LEVEL")).With("component", "waitfordb")

	var cfg waitConfig
	if err := env.Parse(&cfg); err != nil {
		l.Error("config_error", "error", err)
		return 2
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		l.Error("open_failed", "error", err)
		return 1
	}
	defer db.Close()

	if err := waitReady(db, cfg.Timeout, cfg.Interval); err != nil {
		l.Error("db_not_ready", "timeout", cfg.Timeout.String(), "error", err)
		return 1
	}
	l.Info("db_ready")
	return 0
}

func waitReady(db *sql.DB, timeout, interval time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		err := db.PingContext(ctx)
		cancel()
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(interval)
	}
}
