package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore ячейки в локальном файле SQLite
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore открывает файл базы. Миграции применяются отдельно.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Один писатель: SQLite всё равно сериализует записи
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// DB соединение для goose
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

func (s *SQLiteStore) Get(ctx context.Context, name string) (*Slot, error) {
	var (
		slot    Slot
		payload string
		updated int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT name, payload, updated_at FROM storage_slots WHERE name = ?`, name,
	).Scan(&slot.Name, &payload, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot %s: %w", name, err)
	}
	slot.Payload = []byte(payload)
	slot.UpdatedAt = time.UnixMilli(updated).UTC()
	return &slot, nil
}

func (s *SQLiteStore) PutMany(ctx context.Context, payloads map[string][]byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().UnixMilli()
	for name, payload := range payloads {
		_, err := tx.ExecContext(ctx, `
INSERT INTO storage_slots (name, payload, updated_at) VALUES (?, ?, ?)
ON CONFLICT (name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
`, name, string(payload), now)
		if err != nil {
			return fmt.Errorf("put slot %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(names)), ",")
	args := make([]any, len(names))
	for i, name := range names {
		args[i] = name
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM storage_slots WHERE name IN (`+placeholders+`)`, args...); err != nil {
		return fmt.Errorf("delete slots: %w", err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, prefix string) ([]Slot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, updated_at FROM storage_slots WHERE substr(name, 1, ?) = ? ORDER BY name`,
		len(prefix), prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var slots []Slot
	for rows.Next() {
		var (
			slot    Slot
			updated int64
		)
		if err := rows.Scan(&slot.Name, &updated); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slot.UpdatedAt = time.UnixMilli(updated).UTC()
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
