package repository

import (
	"context"
	"time"
)

// Slot именованная ячейка хранилища с JSON содержимым
type Slot struct {
	Name      string
	Payload   []byte
	UpdatedAt time.Time
}

// SlotStore хранилище именованных ячеек.
// PutMany пишет все ячейки в одной транзакции.
type SlotStore interface {
	// Get возвращает nil, nil если ячейки нет
	Get(ctx context.Context, name string) (*Slot, error)
	PutMany(ctx context.Context, payloads map[string][]byte) error
	Delete(ctx context.Context, names ...string) error
	// List ячейки с префиксом, без содержимого, по возрастанию имени
	List(ctx context.Context, prefix string) ([]Slot, error)
	Close() error
}
