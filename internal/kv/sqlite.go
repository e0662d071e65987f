package kv

import (
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists values in a single-table SQLite database, so the
// answer cache survives process restarts.
type SQLiteStore struct {
	db       *sql.DB
	builder  sq.StatementBuilderType
	maxBytes int64
}

// NewSQLiteStore opens (creating if needed) the database at path. A maxBytes
// of 0 disables the quota.
func NewSQLiteStore(path string, maxBytes int64) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}

	return &SQLiteStore{
		db:       db,
		builder:  sq.StatementBuilder.PlaceholderFormat(sq.Question),
		maxBytes: maxBytes,
	}, nil
}

func (s *SQLiteStore) Get(key string) ([]byte, bool, error) {
	query, args, err := s.builder.
		Select("value").
		From("kv").
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("failed to build query: %w", err)
	}

	var value []byte
	if err := s.db.QueryRow(query, args...).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get key %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(key string, value []byte) error {
	if s.maxBytes > 0 {
		used, err := s.usedBytes(key)
		if err != nil {
			return err
		}
		if used+int64(len(value)) > s.maxBytes {
			return ErrCapacityExceeded
		}
	}

	query, args, err := s.builder.
		Insert("kv").
		Columns("key", "value").
		Values(key, value).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := s.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to set key %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Remove(key string) error {
	query, args, err := s.builder.
		Delete("kv").
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := s.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to remove key %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Keys() ([]string, error) {
	query, _, err := s.builder.Select("key").From("kv").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate keys: %w", err)
	}
	return keys, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// usedBytes returns the total stored size excluding the key about to be
// replaced.
func (s *SQLiteStore) usedBytes(excludeKey string) (int64, error) {
	query, args, err := s.builder.
		Select("COALESCE(SUM(LENGTH(value)), 0)").
		From("kv").
		Where(sq.NotEq{"key": excludeKey}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build query: %w", err)
	}

	var used int64
	if err := s.db.QueryRow(query, args...).Scan(&used); err != nil {
		return 0, fmt.Errorf("failed to compute used bytes: %w", err)
	}
	return used, nil
}
