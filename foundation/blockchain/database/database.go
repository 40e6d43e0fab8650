// Package database handles all the lower level support for maintaining the
// blockchain in storage and caching blocks for queries.
package database

import (
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
)

// Set of errors a Storage implementation is expected to return.
var (
	ErrNotFound     = errors.New("block not found")
	ErrBlockExists  = errors.New("block already exists")
	ErrInvalidIndex = errors.New("block index must be greater than zero")
	ErrInvalidValue = errors.New("invalid field value")
)

// Storage interface represents the behavior required to be implemented by any
// package providing support for storing and reading the blockchain.
type Storage interface {
	Put(block Block) error
	Get(index uint64) (Block, error)
	Set(index uint64, field Field, value string) error
	Close() error
}

// BlockKey returns the key marking the existence of a block in key/value
// based storage.
func BlockKey(index uint64) []byte {
	return []byte(fmt.Sprintf("node/%d", index))
}

// FieldKey returns the key holding a single field of a block in key/value
// based storage.
func FieldKey(index uint64, field Field) []byte {
	return []byte(fmt.Sprintf("node/%d/%s", index, field))
}

// =============================================================================

// Database provides cached access to the blocks held in storage.
type Database struct {
	storage Storage
	cache   *lru.Cache
}

// New constructs a database on top of the storage. A cacheSize of zero or
// less disables the block cache.
func New(storage Storage, cacheSize int) (*Database, error) {
	db := Database{
		storage: storage,
	}

	if cacheSize > 0 {
		cache, err := lru.New(cacheSize)
		if err != nil {
			return nil, fmt.Errorf("constructing block cache: %w", err)
		}
		db.cache = cache
	}

	return &db, nil
}

// Close closes the underlying storage.
func (db *Database) Close() error {
	if db.cache != nil {
		db.cache.Purge()
	}

	return db.storage.Close()
}

// Storage returns the storage without the cache. The chain verifier reads
// through this so edits made outside the process are seen.
func (db *Database) Storage() Storage {
	return db.storage
}

// Write adds a new block to storage.
func (db *Database) Write(block Block) error {
	if err := db.storage.Put(block); err != nil {
		return err
	}

	if db.cache != nil {
		db.cache.Add(block.Index, block)
	}

	return nil
}

// GetBlock returns the block for the specified index.
func (db *Database) GetBlock(index uint64) (Block, error) {
	if db.cache != nil {
		if v, exists := db.cache.Get(index); exists {
			return v.(Block), nil
		}
	}

	block, err := db.storage.Get(index)
	if err != nil {
		return Block{}, err
	}

	if db.cache != nil {
		db.cache.Add(index, block)
	}

	return block, nil
}

// Edit replaces a single stored field of an existing block.
func (db *Database) Edit(index uint64, field Field, value string) error {
	if db.cache != nil {
		db.cache.Remove(index)
	}

	return db.storage.Set(index, field, value)
}

// ForEach returns an iterator to walk through all the blocks
// starting with block number 1.
func (db *Database) ForEach() *Iterator {
	return &Iterator{storage: db.storage}
}

// =============================================================================

// Iterator walks blocks in index order until the first missing index.
type Iterator struct {
	storage Storage // Access to the storage API.
	current uint64  // Current block number being iterated over.
	eoc     bool    // Represents the iterator is at the end of the chain.
}

// Next retrieves the next block. When the next index doesn't exist the
// iterator is marked done and ErrNotFound is returned.
func (it *Iterator) Next() (Block, error) {
	if it.eoc {
		return Block{}, ErrNotFound
	}

	it.current++
	block, err := it.storage.Get(it.current)
	if errors.Is(err, ErrNotFound) {
		it.eoc = true
	}

	return block, err
}

// Done returns the end of chain value.
func (it *Iterator) Done() bool {
	return it.eoc
}
