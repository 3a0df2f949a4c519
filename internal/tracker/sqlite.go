package tracker

import (
	"context"

	"github.com/jcii/hunt/internal/store"
)

type sqliteStore struct {
	db *store.DB
}

// SQLite adapts a store.DB to Store.
func SQLite(db *store.DB) Store {
	return &sqliteStore{db: db}
}

func (s *sqliteStore) Update(ctx context.Context, fn func(RecordStore) error) error {
	return s.db.Update(ctx, func(tx *store.Tx) error { return fn(tx) })
}

func (s *sqliteStore) View(ctx context.Context, fn func(RecordStore) error) error {
	return s.db.View(ctx, func(tx *store.Tx) error { return fn(tx) })
}
