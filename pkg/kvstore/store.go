// Package kvstore holds the key-value backends the inventory collections are persisted in.
// Every collection is one opaque blob under one key; backends never look inside values.
package kvstore

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("kvstore: key not found")

type Store interface {
	// Get returns ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete is a no-op for an absent key.
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}
