package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func configurePool(sqlDB *sql.DB) {
	const (
		maxOpenConns    = 20
		maxIdleConns    = 10
		connMaxLifetime = 30 * time.Minute
		connMaxIdleTime = 5 * time.Minute
	)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)
}

// gormLogger reports slow queries and real failures. A missing row is an
// ordinary outcome (unknown user, 404) and is not logged.
func gormLogger(w logger.Writer) logger.Interface {
	return logger.New(w, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

func gormConfig(w logger.Writer) *gorm.Config {
	return &gorm.Config{
		PrepareStmt: true,
		NowFunc:     func() time.Time { return time.Now().UTC() },
		Logger:      gormLogger(w),
	}
}

var defaultLogWriter logger.Writer = log.New(os.Stdout, "\r\n", log.LstdFlags)

func Open(ctx context.Context, dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig(defaultLogWriter))
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	configurePool(sqlDB)

	if err := Ping(ctx, db); err != nil {
		return nil, err
	}

	return db, nil
}

// OpenSQLite opens a file-backed or in-memory SQLite database.
func OpenSQLite(ctx context.Context, path string) (*gorm.DB, error) {
	return openSQLite(ctx, path, defaultLogWriter)
}

func openSQLite(ctx context.Context, path string, w logger.Writer) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("SQLITE_PATH is empty")
	}

	memory := isSQLiteMemory(path)
	dsn := path
	if !memory {
		dsn = sqliteFileDSN(path)
	}

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(w))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if memory {
		// every connection would see its own empty ":memory:" database
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(sqliteMaxOpenConns)
	}

	if err := Ping(ctx, db); err != nil {
		return nil, err
	}

	return db, nil
}

const sqliteMaxOpenConns = 8

func isSQLiteMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory") || strings.HasPrefix(path, "file::memory:")
}

// sqliteFileDSN lets concurrent writers queue on the file lock instead of
// failing with SQLITE_BUSY. Transactions take the write lock up front, so a
// read followed by a write inside one transaction cannot deadlock.
func sqliteFileDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"
}

func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return fmt.Errorf("ping db: %w", err)
	}
	return nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
