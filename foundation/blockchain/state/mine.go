package state

import (
	"context"
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/chain"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/pow"
)

// Append seals the payload against the current tip and writes the new block
// to storage. Appends are serialized. If sealing is cancelled or the write
// fails, the tip and next index are left untouched.
func (s *State) Append(ctx context.Context, payload string) (database.Block, pow.Solution, error) {
	s.appendMu.Lock()
	defer s.appendMu.Unlock()

	s.mu.RLock()
	index, prevHash := s.nextIndex, s.tip
	s.mu.RUnlock()

	s.evHandler("state: Append: MINING: blk[%d]: perform POW", index)

	// Attempt to seal the block by solving the POW puzzle. This can be cancelled.
	sol, err := pow.Seal(ctx, s.hash, payload, prevHash, s.difficulty, pow.WithWorkers(s.workers), pow.WithEvHandler(s.evHandler))
	if err != nil {
		return database.Block{}, pow.Solution{}, err
	}

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		return database.Block{}, pow.Solution{}, ctx.Err()
	}

	block := database.Block{
		Index:    index,
		Payload:  payload,
		PrevHash: prevHash,
		Hash:     sol.Hash,
		Nonce:    sol.Nonce,
	}

	s.evHandler("state: Append: blk[%d]: write to storage", index)

	if err := s.db.Write(block); err != nil {
		s.evHandler("state: Append: blk[%d]: ERROR: %s", index, err)
		return database.Block{}, pow.Solution{}, fmt.Errorf("%w: block %d: %w", ErrPersistence, index, err)
	}

	s.mu.Lock()
	s.tip = block.Hash
	s.nextIndex = index + 1
	s.mu.Unlock()

	s.evHandler("state: Append: blk[%d]: hash[%s]: duration[%v]", index, block.Hash, sol.Duration)

	return block, sol, nil
}

// VerifyAll audits every block from genesis to the current tip. Storage is
// read directly so changes made outside this process are seen.
func (s *State) VerifyAll(ctx context.Context, mode chain.Mode) (chain.Report, error) {
	upTo := s.Height()

	s.evHandler("state: VerifyAll: blocks[%d]: mode[%s]", upTo, mode)

	return chain.Verify(ctx, s.db.Storage(), upTo,
		chain.WithMode(mode),
		chain.WithDigest(s.hash),
		chain.WithEvHandler(s.evHandler),
	)
}
