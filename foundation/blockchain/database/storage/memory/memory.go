// Package memory implements the ability to read and write blocks to memory
// using a map.
package memory

import (
	"fmt"
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// Memory represents the serialization implementation for reading and storing
// blocks in memory. This implements the database.Storage interface.
type Memory struct {
	mu     sync.RWMutex
	blocks map[uint64]database.Block
}

// New constructs a Memory value for use.
func New() *Memory {
	return &Memory{
		blocks: make(map[uint64]database.Block),
	}
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// Put stores the block in memory.
func (m *Memory) Put(block database.Block) error {
	if block.Index == 0 {
		return database.ErrInvalidIndex
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.blocks[block.Index]; exists {
		return fmt.Errorf("block %d: %w", block.Index, database.ErrBlockExists)
	}

	m.blocks[block.Index] = block

	return nil
}

// Get returns the block for the specified index.
func (m *Memory) Get(index uint64) (database.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	block, exists := m.blocks[index]
	if !exists {
		return database.Block{}, fmt.Errorf("block %d: %w", index, database.ErrNotFound)
	}

	return block, nil
}

// Set replaces a single field of an existing block.
func (m *Memory) Set(index uint64, field database.Field, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	block, exists := m.blocks[index]
	if !exists {
		return fmt.Errorf("block %d: %w", index, database.ErrNotFound)
	}

	block, err := block.With(field, value)
	if err != nil {
		return err
	}

	m.blocks[index] = block

	return nil
}
