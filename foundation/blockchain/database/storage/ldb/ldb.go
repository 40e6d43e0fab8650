// Package ldb implements the ability to read and write blocks to a leveldb
// database. Every field of a block is stored under its own key and all keys
// of a block are written in a single batch.
package ldb

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/syndtr/goleveldb/leveldb"
	ldbErrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

// LevelDB represents the serialization implementation for reading and
// storing blocks in leveldb. This implements the database.Storage interface.
type LevelDB struct {
	mu  sync.Mutex
	ldb *leveldb.DB
}

// New opens a leveldb instance at the given path, creating it if needed.
// An empty path opens an in-memory instance.
func New(path string) (*LevelDB, error) {
	if path == "" {
		ldb, err := leveldb.Open(storage.NewMemStorage(), nil)
		if err != nil {
			return nil, err
		}
		return &LevelDB{ldb: ldb}, nil
	}

	ldb, err := leveldb.OpenFile(path, nil)

	// If the database is corrupted, attempt to recover.
	var corrupted *ldbErrors.ErrCorrupted
	if errors.As(err, &corrupted) {
		ldb, err = leveldb.RecoverFile(path, nil)
	}

	if err != nil {
		return nil, fmt.Errorf("opening leveldb at %q: %w", path, err)
	}

	return &LevelDB{ldb: ldb}, nil
}

// Close closes the leveldb instance.
func (db *LevelDB) Close() error {
	return db.ldb.Close()
}

// Put writes every field of the block in one batch.
func (db *LevelDB) Put(block database.Block) error {
	if block.Index == 0 {
		return database.ErrInvalidIndex
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	exists, err := db.ldb.Has(database.BlockKey(block.Index), nil)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("block %d: %w", block.Index, database.ErrBlockExists)
	}

	batch := new(leveldb.Batch)
	batch.Put(database.BlockKey(block.Index), []byte(strconv.FormatUint(block.Index, 10)))
	for _, field := range database.Fields {
		value, err := block.Value(field)
		if err != nil {
			return err
		}
		batch.Put(database.FieldKey(block.Index, field), []byte(value))
	}

	return db.ldb.Write(batch, nil)
}

// Get reads every field of the block from a consistent snapshot.
func (db *LevelDB) Get(index uint64) (database.Block, error) {
	snap, err := db.ldb.GetSnapshot()
	if err != nil {
		return database.Block{}, err
	}
	defer snap.Release()

	exists, err := snap.Has(database.BlockKey(index), nil)
	if err != nil {
		return database.Block{}, err
	}
	if !exists {
		return database.Block{}, fmt.Errorf("block %d: %w", index, database.ErrNotFound)
	}

	values := make(map[database.Field]string, len(database.Fields))
	for _, field := range database.Fields {
		value, err := snap.Get(database.FieldKey(index, field), nil)
		if errors.Is(err, leveldb.ErrNotFound) {
			continue
		}
		if err != nil {
			return database.Block{}, err
		}
		values[field] = string(value)
	}

	return database.BlockFromValues(index, values), nil
}

// Set replaces a single field of an existing block.
func (db *LevelDB) Set(index uint64, field database.Field, value string) error {
	if _, err := (database.Block{}).With(field, value); err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	exists, err := db.ldb.Has(database.BlockKey(index), nil)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("block %d: %w", index, database.ErrNotFound)
	}

	return db.ldb.Put(database.FieldKey(index, field), []byte(value), nil)
}
