package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/watchit/internal/events"
	"github.com/Skotchmaster/watchit/internal/httpserver"
	"github.com/Skotchmaster/watchit/internal/metrics"
	"github.com/Skotchmaster/watchit/internal/mongostore"
	"github.com/Skotchmaster/watchit/internal/redisstore"
	"github.com/Skotchmaster/watchit/internal/repo"
	"github.com/Skotchmaster/watchit/internal/search"
	"github.com/Skotchmaster/watchit/internal/service"
	"github.com/Skotchmaster/watchit/internal/store"
	"github.com/Skotchmaster/watchit/internal/tmdb"
	"github.com/Skotchmaster/watchit/internal/token"
	"github.com/Skotchmaster/watchit/pkg/config"
	"github.com/Skotchmaster/watchit/pkg/db"
	"github.com/Skotchmaster/watchit/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_error", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("config_error", "error", err)
		os.Exit(1)
	}

	base := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(base)

	if err := run(cfg, base); err != nil {
		base.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, base *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.IntoContext(ctx, base)

	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	backend, err := openBackend(initCtx, cfg)
	cancel()
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := backend.Close(closeCtx); err != nil {
			base.Error("store_close_failed", "error", err)
		}
	}()

	var revocations store.Revocations = backend
	if cfg.RedisAddr != "" {
		rdb := redisstore.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer rdb.Close()
		rs := redisstore.New(rdb)
		if err := rs.Ping(ctx); err != nil {
			return err
		}
		revocations = rs
		base.Info("revocations_in_redis", "addr", cfg.RedisAddr)
	}

	authority := token.New([]byte(cfg.JWTSecret), revocations)

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		prod, err := events.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			return err
		}
		defer func() {
			if err := prod.Close(); err != nil {
				base.Error("kafka_close_failed", "error", err)
			}
		}()
		publisher = prod
	}

	var metadata service.MetadataClient
	if cfg.TMDBAccessToken != "" {
		metadata = tmdb.NewClient(cfg.TMDBBaseURL, cfg.TMDBAccessToken, cfg.TMDBCacheTTL)
	} else {
		base.Warn("tmdb_disabled", "reason", "TMDB_ACCESS_TOKEN is empty")
	}

	var index service.CatalogIndex
	if cfg.ESURL != "" {
		es, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			return err
		}
		idx := search.New(es, cfg.ESIndex)
		if err := idx.EnsureIndex(ctx); err != nil {
			return err
		}
		index = idx
	}

	m := metrics.New()
	e := httpserver.NewEcho(base, m)
	httpserver.Register(e, &httpserver.Deps{
		Auth: &httpserver.AuthHTTP{
			Svc:     &service.AuthService{Users: backend, Lists: backend, Tokens: authority, Events: publisher},
			Tokens:  authority,
			Metrics: m,
		},
		Lists: &httpserver.ListsHTTP{
			Svc:     &service.ListService{Lists: backend, Metadata: metadata, Events: publisher},
			Metrics: m,
		},
		Movies: &httpserver.MoviesHTTP{
			Svc: &service.MovieService{Movies: backend, Index: index, Metadata: metadata, Events: publisher},
		},
		Authn:   &httpserver.Authenticator{Tokens: authority},
		Metrics: m,
		Ready:   backend,
	})

	go authority.RunJanitor(ctx, cfg.RevocationPurgeInterval)

	errCh := make(chan error, 1)
	go func() {
		base.Info("listening", "addr", cfg.ListenAddr(), "store", cfg.StoreDriver)
		if err := e.Start(cfg.ListenAddr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	base.Info("shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		base.Error("server_shutdown_failed", "error", err)
	}
	return nil
}

func openBackend(ctx context.Context, cfg config.Config) (store.Backend, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		return mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case config.DriverSQLite:
		gdb, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return migrated(ctx, gdb)
	default:
		gdb, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return migrated(ctx, gdb)
	}
}

func migrated(ctx context.Context, gdb *gorm.DB) (store.Backend, error) {
	r, err := repo.New(ctx, gdb)
	if err != nil {
		_ = db.Close(gdb)
		return nil, err
	}
	return r, nil
}
