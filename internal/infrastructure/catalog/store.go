// Package catalog provides the read-only SQL catalog store.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/outfitlens/backend/internal/domain"
)

// Supported drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Config holds catalog connection settings
type Config struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Store hands out per-request sessions over a database/sql pool
type Store struct {
	db      *sql.DB
	dialect dialect
}

// Open connects to the catalog database and verifies the connection
func Open(ctx context.Context, cfg Config) (*Store, error) {
	d, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping failed: %v", domain.ErrCatalogUnavailable, err)
	}

	return &Store{db: db, dialect: d}, nil
}

// NewStore wraps an existing pool
func NewStore(db *sql.DB, driver string) (*Store, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, dialect: d}, nil
}

// DB exposes the underlying pool
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the pool
func (s *Store) Close() error {
	return s.db.Close()
}

// Acquire reserves one connection for the duration of a request
func (s *Store) Acquire(ctx context.Context) (domain.CatalogSession, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	return &Session{conn: conn, dialect: s.dialect}, nil
}

// dialect renders driver-specific placeholders
type dialect struct {
	numbered bool
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case DriverPostgres:
		return dialect{numbered: true}, nil
	case DriverSQLite:
		return dialect{}, nil
	default:
		return dialect{}, fmt.Errorf("unsupported catalog driver: %q", driver)
	}
}

// args collects positional arguments and hands out placeholders
type args struct {
	dialect dialect
	values  []interface{}
}

func (a *args) add(v interface{}) string {
	a.values = append(a.values, v)
	if a.dialect.numbered {
		return "$" + strconv.Itoa(len(a.values))
	}
	return "?"
}

func (a *args) list(vs []string) string {
	ph := make([]string, len(vs))
	for i, v := range vs {
		ph[i] = a.add(v)
	}
	return strings.Join(ph, ", ")
}
