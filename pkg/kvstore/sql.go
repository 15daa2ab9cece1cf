package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// dialect carries the statements that differ between SQL engines.
type dialect struct {
	driver string
	schema string
	upsert string
}

var (
	sqliteDialect = dialect{
		driver: "sqlite",
		schema: `CREATE TABLE IF NOT EXISTS kv_entries(
  entry_key  TEXT PRIMARY KEY,
  value      BLOB NOT NULL,
  updated_at TEXT NOT NULL
)`,
		upsert: `INSERT INTO kv_entries(entry_key, value, updated_at) VALUES(?, ?, ?)
ON CONFLICT(entry_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
	}
	mysqlDialect = dialect{
		driver: "mysql",
		schema: `CREATE TABLE IF NOT EXISTS kv_entries(
  entry_key  VARCHAR(191) PRIMARY KEY,
  value      LONGBLOB NOT NULL,
  updated_at VARCHAR(40) NOT NULL
)`,
		upsert: `INSERT INTO kv_entries(entry_key, value, updated_at) VALUES(?, ?, ?)
ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = VALUES(updated_at)`,
	}
)

// SQLStore keeps entries in a single kv_entries table reached through sqlx.
type SQLStore struct {
	db      *sqlx.DB
	dialect dialect
}

// OpenSQLite opens (or creates) a sqlite database file. ":memory:" gives a private in-memory database.
func OpenSQLite(dsn string) (*SQLStore, error) {
	return openSQL(sqliteDialect, dsn)
}

// OpenMySQL connects with a go-sql-driver DSN such as "user:pass@tcp(localhost:3306)/ombor".
func OpenMySQL(dsn string) (*SQLStore, error) {
	return openSQL(mysqlDialect, dsn)
}

func openSQL(d dialect, dsn string) (*SQLStore, error) {
	db, err := sqlx.Open(d.driver, dsn)
	if err != nil {
		return nil, err
	}
	if d.driver == "sqlite" {
		// one connection keeps ":memory:" databases alive and serializes writers
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(d.schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create kv_entries: %w", err)
	}
	return &SQLStore{db: db, dialect: d}, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.GetContext(ctx, &value, `SELECT value FROM kv_entries WHERE entry_key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, s.dialect.upsert, key, value, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE entry_key = ?`, key)
	return err
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
