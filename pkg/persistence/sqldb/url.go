package sqldb

import (
	"fmt"
	"strings"
)

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

const memoryPath = ":memory:"

// Target is a parsed connection string.
type Target struct {
	Dialect Dialect
	// Driver is the database/sql driver name.
	Driver string
	// DSN is what the driver receives.
	DSN string
	// Path is the sqlite file path, or ":memory:".
	Path string
}

// InMemory reports whether the target is a private in-memory sqlite database.
func (t Target) InMemory() bool {
	return t.Dialect == DialectSQLite && t.Path == memoryPath
}

// ParseURL maps a SQLAlchemy-style connection string onto a driver and DSN.
// An optional "+driver" suffix on the scheme (postgresql+psycopg2) is ignored.
func ParseURL(raw string) (Target, error) {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return Target{}, fmt.Errorf("invalid database url %q: missing scheme", raw)
	}
	scheme, _, _ = strings.Cut(strings.ToLower(scheme), "+")

	switch scheme {
	case "sqlite", "sqlite3":
		path := sqlitePath(rest)
		if path == "" {
			return Target{}, fmt.Errorf("invalid database url %q: empty sqlite path", raw)
		}
		return Target{
			Dialect: DialectSQLite,
			Driver:  "sqlite",
			DSN:     sqliteDSN(path),
			Path:    path,
		}, nil
	case "postgres", "postgresql":
		return Target{
			Dialect: DialectPostgres,
			Driver:  "postgres",
			DSN:     "postgres://" + rest,
		}, nil
	default:
		return Target{}, fmt.Errorf("unsupported database scheme %q", scheme)
	}
}

// sqlitePath follows the sqlite:///relative and sqlite:////absolute convention.
// A bare sqlite:// means an in-memory database.
func sqlitePath(rest string) string {
	switch rest {
	case "", memoryPath, "/" + memoryPath:
		return memoryPath
	}
	return strings.TrimPrefix(rest, "/")
}

func sqliteDSN(path string) string {
	if path == memoryPath {
		return "file::memory:?_pragma=foreign_keys(1)&_time_format=sqlite"
	}
	// modernc.org/sqlite per-connection pragmas: WAL, NORMAL sync, busy timeout.
	return fmt.Sprintf(
		"file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)&_time_format=sqlite",
		path,
	)
}
