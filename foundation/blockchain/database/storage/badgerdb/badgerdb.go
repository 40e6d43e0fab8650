// Package badgerdb implements the ability to read and write blocks to a
// badger key/value store. Every field of a block is stored under its own key
// and all keys of a block are written in a single transaction.
package badgerdb

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/dgraph-io/badger/v2"
)

// DB represents the serialization implementation for reading and storing
// blocks in badger. This implements the database.Storage interface.
type DB struct {
	bdb *badger.DB
}

// New opens the badger database at the specified path. An empty path opens
// an in-memory database.
func New(path string) (*DB, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger at %q: %w", path, err)
	}

	return &DB{bdb: bdb}, nil
}

// Close closes the badger database.
func (db *DB) Close() error {
	return db.bdb.Close()
}

// Put writes every field of the block in one transaction.
func (db *DB) Put(block database.Block) error {
	if block.Index == 0 {
		return database.ErrInvalidIndex
	}

	f := func(txn *badger.Txn) error {
		if err := mustNotExist(txn, block.Index); err != nil {
			return err
		}

		if err := txn.Set(database.BlockKey(block.Index), []byte(strconv.FormatUint(block.Index, 10))); err != nil {
			return err
		}

		for _, field := range database.Fields {
			value, err := block.Value(field)
			if err != nil {
				return err
			}

			if err := txn.Set(database.FieldKey(block.Index, field), []byte(value)); err != nil {
				return err
			}
		}

		return nil
	}

	return db.bdb.Update(f)
}

// Get reads every field of the block from a single read transaction.
func (db *DB) Get(index uint64) (database.Block, error) {
	var block database.Block

	f := func(txn *badger.Txn) error {
		if err := mustExist(txn, index); err != nil {
			return err
		}

		values := make(map[database.Field]string, len(database.Fields))
		for _, field := range database.Fields {
			item, err := txn.Get(database.FieldKey(index, field))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}

			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			values[field] = string(value)
		}

		block = database.BlockFromValues(index, values)
		return nil
	}

	if err := db.bdb.View(f); err != nil {
		return database.Block{}, err
	}

	return block, nil
}

// Set replaces a single field of an existing block.
func (db *DB) Set(index uint64, field database.Field, value string) error {
	if _, err := (database.Block{}).With(field, value); err != nil {
		return err
	}

	f := func(txn *badger.Txn) error {
		if err := mustExist(txn, index); err != nil {
			return err
		}

		return txn.Set(database.FieldKey(index, field), []byte(value))
	}

	return db.bdb.Update(f)
}

// =============================================================================

func mustExist(txn *badger.Txn, index uint64) error {
	_, err := txn.Get(database.BlockKey(index))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("block %d: %w", index, database.ErrNotFound)
	}

	return err
}

func mustNotExist(txn *badger.Txn, index uint64) error {
	_, err := txn.Get(database.BlockKey(index))
	switch {
	case err == nil:
		return fmt.Errorf("block %d: %w", index, database.ErrBlockExists)
	case errors.Is(err, badger.ErrKeyNotFound):
		return nil
	}

	return err
}
