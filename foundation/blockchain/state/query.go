package state

import (
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// QueryLatest represents to query the latest block in the chain.
const QueryLatest = ^uint64(0) >> 1

// =============================================================================

// QueryBlock returns the block for the specified index.
func (s *State) QueryBlock(index uint64) (database.Block, error) {
	if index == QueryLatest {
		index = s.Height()
	}

	return s.db.GetBlock(index)
}

// QueryBlocksByNumber returns the set of blocks between from and to. The
// range is clamped to the blocks that exist.
func (s *State) QueryBlocksByNumber(from uint64, to uint64) ([]database.Block, error) {
	height := s.Height()

	if from == QueryLatest {
		from = height
		to = from
	}
	if to == QueryLatest || to > height {
		to = height
	}
	if from == 0 {
		from = 1
	}

	var out []database.Block
	for i := from; i <= to; i++ {
		block, err := s.db.GetBlock(i)
		if err != nil {
			s.evHandler("state: QueryBlocksByNumber: getblock: ERROR: %s", err)
			return nil, err
		}
		out = append(out, block)
	}

	return out, nil
}

// EditBlock replaces a single stored field of a block. This exists for
// administration and to simulate tampering, the ledger never calls it.
func (s *State) EditBlock(index uint64, field database.Field, value string) error {
	s.evHandler("state: EditBlock: blk[%d]: field[%s]", index, field)

	return s.db.Edit(index, field, value)
}
