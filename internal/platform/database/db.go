package database

import (
	"database/sql"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"partnerhub/internal/platform/config"
)

// New opens the shared platform database. A single database holds every
// partner's rows: the license table's cross-partner uniqueness check needs
// one table to query, so there is no per-tenant database split.
func New(cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn := strings.TrimPrefix(cfg.URL, "file:")

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

// DB wraps the shared connection for handler injection.
type DB struct {
	DB *sql.DB
}

func NewWrapper(db *sql.DB) *DB {
	return &DB{DB: db}
}
