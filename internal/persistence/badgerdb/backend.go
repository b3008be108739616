// Package badgerdb provides an embedded BadgerDB persistence backend
// for single-node deployments with no external store.
package badgerdb

import (
	"context"
	"errors"

	badger "github.com/dgraph-io/badger/v4"

	"personalization-service/internal/persistence"
)

type Backend struct {
	db *badger.DB
}

// New opens (or creates) a Badger database at path. An empty path opens
// an in-memory database, useful for tests.
func New(path string) (*Backend, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Backend{db: db}, nil
}

func (b *Backend) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, persistence.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (b *Backend) Set(_ context.Context, key string, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

func (b *Backend) Close(context.Context) error {
	return b.db.Close()
}
