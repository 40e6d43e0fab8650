// Package state is the core API for the ledger and implements all the
// business rules for appending and auditing blocks.
package state

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/digest"
	"github.com/ardanlabs/powledger/foundation/blockchain/pow"
)

// ErrPersistence is returned when a sealed block could not be written to
// storage. The ledger is left unchanged when this happens.
var ErrPersistence = errors.New("unable to persist block")

// EventHandler defines a function that is called when events
// occur in the processing of persisting blocks.
type EventHandler func(v string, args ...any)

// =============================================================================

// Config represents the configuration required to start the ledger.
type Config struct {
	Storage    database.Storage
	Digest     digest.Func
	Difficulty int
	Workers    int
	CacheSize  int
	EvHandler  EventHandler
}

// State manages the ledger. The next index and tip hash are only changed
// after a block has been sealed and persisted.
type State struct {
	difficulty int
	workers    int
	hash       digest.Func
	evHandler  EventHandler

	appendMu  sync.Mutex
	mu        sync.RWMutex
	nextIndex uint64
	tip       string

	db *database.Database
}

// New constructs the ledger state. The tip is rebuilt by walking the blocks
// already in storage from index 1 until the first missing index.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	// Reject a bad difficulty before any mining can take place.
	if err := pow.ValidateDifficulty(cfg.Difficulty); err != nil {
		return nil, err
	}

	if cfg.Storage == nil {
		return nil, errors.New("storage is required")
	}

	hash := cfg.Digest
	if hash == nil {
		hash = digest.SHA256
	}

	db, err := database.New(cfg.Storage, cfg.CacheSize)
	if err != nil {
		return nil, err
	}

	// Walk the existing blocks to find where the chain left off.
	var height uint64
	var tip string

	iter := db.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			return nil, fmt.Errorf("loading block %d: %w", height+1, err)
		}

		height = block.Index
		tip = block.Hash
	}

	ev("state: New: loaded: height[%d]: tip[%s]", height, tip)

	state := State{
		difficulty: cfg.Difficulty,
		workers:    cfg.Workers,
		hash:       hash,
		evHandler:  ev,
		nextIndex:  height + 1,
		tip:        tip,
		db:         db,
	}

	return &state, nil
}

// Shutdown cleanly brings the ledger down.
func (s *State) Shutdown() error {
	s.evHandler("state: Shutdown: closing storage")

	// Wait for any append in flight to complete.
	s.appendMu.Lock()
	defer s.appendMu.Unlock()

	return s.db.Close()
}

// Tip returns the hash of the most recently appended block.
func (s *State) Tip() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.tip
}

// NextIndex returns the index the next appended block will receive.
func (s *State) NextIndex() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.nextIndex
}

// Height returns the index of the most recently appended block.
func (s *State) Height() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.nextIndex - 1
}

// Difficulty returns the number of leading zeros required to seal a block.
func (s *State) Difficulty() int {
	return s.difficulty
}
