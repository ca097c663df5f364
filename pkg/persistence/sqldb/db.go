package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Querier is the subset of *sql.DB and *sql.Tx used by repositories.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB is the store handle shared by repositories and the transaction manager.
type DB struct {
	db     *sql.DB
	target Target
	conf   Config
	log    *zap.Logger
}

// Open creates the handle without touching the network. Call Ping to
// validate the connection.
func Open(conf Config, log *zap.Logger) (*DB, error) {
	target, err := ParseURL(conf.URL)
	if err != nil {
		return nil, err
	}

	if target.Dialect == DialectSQLite && !target.InMemory() {
		if dir := filepath.Dir(target.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open(target.Driver, target.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	configurePool(db, target, conf)

	return &DB{db: db, target: target, conf: conf, log: log}, nil
}

// NewWithDB wraps an existing handle, mostly for tests with go-sqlmock.
func NewWithDB(db *sql.DB, dialect Dialect, log *zap.Logger) *DB {
	return &DB{db: db, target: Target{Dialect: dialect}, log: log}
}

func configurePool(db *sql.DB, target Target, conf Config) {
	if target.Dialect == DialectSQLite {
		// single writer; also keeps one :memory: database alive
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		return
	}
	if conf.MaxOpenConns > 0 {
		db.SetMaxOpenConns(conf.MaxOpenConns)
	}
	if conf.MaxIdleConns > 0 {
		db.SetMaxIdleConns(conf.MaxIdleConns)
	}
	if conf.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(conf.ConnMaxLifetime)
	}
}

func (d *DB) Ping(ctx context.Context) error {
	if d.conf.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.conf.ConnectTimeout)
		defer cancel()
	}
	if err := d.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	d.log.Info("connected to database",
		zap.String("dialect", string(d.target.Dialect)),
		zap.String("path", d.target.Path),
		zap.Duration("query-timeout", d.conf.QueryTimeout),
	)
	return nil
}

func (d *DB) Close() error {
	if err := d.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	d.log.Info("disconnected from database")
	return nil
}

func (d *DB) Dialect() Dialect {
	return d.target.Dialect
}

// SQL exposes the underlying handle for migrations.
func (d *DB) SQL() *sql.DB {
	return d.db
}

// Conn returns the transaction carried by ctx, or the pool.
func (d *DB) Conn(ctx context.Context) Querier {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return d.db
}

// WithQueryTimeout bounds ctx by the configured query timeout.
func (d *DB) WithQueryTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.conf.QueryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d.conf.QueryTimeout)
}

// Rebind rewrites '?' placeholders to the dialect's form.
func (d *DB) Rebind(query string) string {
	return Rebind(d.target.Dialect, query)
}

// Rebind rewrites '?' placeholders to $1..$n for postgres. Quoted literals are
// left untouched.
func Rebind(dialect Dialect, query string) string {
	if dialect != DialectPostgres || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
