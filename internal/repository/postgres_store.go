package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore ячейки в таблице storage_slots на PostgreSQL
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore подключается к базе и проверяет соединение
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// DB *sql.DB поверх пула, нужен goose
func (s *PostgresStore) DB() *sql.DB {
	return stdlib.OpenDBFromPool(s.pool)
}

func (s *PostgresStore) Get(ctx context.Context, name string) (*Slot, error) {
	query := `
		SELECT name, payload, updated_at
		FROM storage_slots
		WHERE name = $1
	`

	var slot Slot
	err := s.pool.QueryRow(ctx, query, name).Scan(&slot.Name, &slot.Payload, &slot.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot %s: %w", name, err)
	}

	return &slot, nil
}

func (s *PostgresStore) PutMany(ctx context.Context, payloads map[string][]byte) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO storage_slots (name, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at
	`
	for name, payload := range payloads {
		if _, err := tx.Exec(ctx, query, name, payload); err != nil {
			return fmt.Errorf("put slot %s: %w", name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `DELETE FROM storage_slots WHERE name = ANY($1)`, names)
	if err != nil {
		return fmt.Errorf("delete slots: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, prefix string) ([]Slot, error) {
	query := `
		SELECT name, updated_at
		FROM storage_slots
		WHERE starts_with(name, $1)
		ORDER BY name
	`

	rows, err := s.pool.Query(ctx, query, prefix)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var slots []Slot
	for rows.Next() {
		var slot Slot
		if err := rows.Scan(&slot.Name, &slot.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}

	return slots, rows.Err()
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
