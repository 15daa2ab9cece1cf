package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go-ombor/internal/model"
	"go-ombor/pkg/kvstore"
)

// Keys of the persisted collections.
const (
	ProductsKey     = "ombor_products"
	TransactionsKey = "ombor_transactions"
	UsersKey        = "ombor_users"
)

// collection round-trips a whole list of records as one JSON blob under one key.
// Every write rewrites the entire list: the last writer wins, and nothing here guards
// against a second process writing the same key.
type collection[T model.Record] struct {
	store kvstore.Store
	key   string
}

// load returns the stored list and whether the key existed.
func (c collection[T]) load(ctx context.Context) ([]T, bool, error) {
	raw, err := c.store.Get(ctx, c.key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return []T{}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", c.key, err)
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", c.key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, true, nil
}

func (c collection[T]) save(ctx context.Context, items []T) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.key, err)
	}
	if err := c.store.Set(ctx, c.key, raw); err != nil {
		return fmt.Errorf("write %s: %w", c.key, err)
	}
	return nil
}

// upsert replaces the record with the same id, or appends it.
func (c collection[T]) upsert(ctx context.Context, item T) error {
	items, _, err := c.load(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range items {
		if items[i].RecordID() == item.RecordID() {
			items[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		items = append(items, item)
	}
	return c.save(ctx, items)
}

// remove filters out the record with id. It reports false when no record matched.
func (c collection[T]) remove(ctx context.Context, id string) (bool, error) {
	items, _, err := c.load(ctx)
	if err != nil {
		return false, err
	}
	kept := items[:0]
	for _, item := range items {
		if item.RecordID() != id {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(items) {
		return false, nil
	}
	return true, c.save(ctx, kept)
}

// find returns the first record matching, or nil.
func (c collection[T]) find(ctx context.Context, match func(T) bool) (*T, error) {
	items, _, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if match(items[i]) {
			return &items[i], nil
		}
	}
	return nil, nil
}
