// Package sqlstore — доступ к таблицам ноды (аттестации, балансы, эпохи, журнал доступа).
// Диалект определяется по схеме URL: postgres:// (pgx), mysql://, sqlite://.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v5"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // Драйвер Postgres
	"github.com/xela07ax/rustchain-node-api/internal/infra"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
	DialectSQLite   Dialect = "sqlite"
)

type Store struct {
	db      *sql.DB
	dialect Dialect
	logger  *zap.Logger
}

// ParseURL разбирает URL базы в (диалект, имя драйвера, DSN для драйвера).
func ParseURL(url string) (Dialect, string, string, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DialectPostgres, "pgx", url, nil
	case strings.HasPrefix(url, "mysql://"):
		return DialectMySQL, "mysql", strings.TrimPrefix(url, "mysql://"), nil
	case strings.HasPrefix(url, "sqlite://"):
		return DialectSQLite, "sqlite", strings.TrimPrefix(url, "sqlite://"), nil
	case strings.HasPrefix(url, "file:"):
		return DialectSQLite, "sqlite", url, nil
	default:
		return "", "", "", fmt.Errorf("sqlstore: unsupported database url %q", url)
	}
}

// Open открывает пул и ждет доступности базы с экспоненциальным бэкоффом.
// Ретраи только здесь, на старте: в обработчиках запросов повторов нет.
func Open(ctx context.Context, cfg infra.DatabaseConfig, logger *zap.Logger) (*Store, error) {
	dialect, driver, dsn, err := ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", dialect, err)
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	// У in-memory sqlite каждое соединение видит свою базу
	if dialect == DialectSQLite && strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	attempts := cfg.ConnectAttempts
	if attempts == 0 {
		attempts = 1
	}

	s := &Store{db: db, dialect: dialect, logger: logger.Named("sqlstore")}

	r := retry.New(
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.DelayType(retry.BackOffDelay),
	)
	err = r.Do(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			s.logger.Warn("database not reachable yet", zap.String("dialect", string(dialect)), zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlstore: database unreachable: %w", err)
	}

	s.logger.Info("database connected", zap.String("dialect", string(dialect)))
	return s, nil
}

func (s *Store) Dialect() Dialect { return s.dialect }

// DB отдает нижележащий *sql.DB (сидирование в тестах и dev-скриптах).
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// rebind переводит плейсхолдеры '?' в $N для Postgres.
func (s *Store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}
