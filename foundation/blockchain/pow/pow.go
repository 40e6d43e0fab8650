// Package pow implements the proof of work search used to seal a block.
// A block is sealed by finding the smallest nonce where the digest of
// payload, previous hash and decimal nonce starts with a difficulty number
// of zero characters.
package pow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/digest"
)

// ErrInvalidDifficulty is returned when the difficulty can't be used
// to seal a block with the configured digest.
var ErrInvalidDifficulty = errors.New("invalid difficulty")

// progressInterval is how often a progress event is raised while mining.
const progressInterval = 1_000_000

// Solution represents the result of a successful seal.
type Solution struct {
	Hash     string        // Digest that satisfies the difficulty.
	Nonce    uint64        // Smallest nonce producing Hash.
	Attempts uint64        // Number of digests computed.
	Duration time.Duration // Wall time spent searching.
}

// =============================================================================

type options struct {
	workers   int
	evHandler func(v string, args ...any)
}

// Option changes how a seal operation is performed.
type Option func(*options)

// WithWorkers sets the number of goroutines searching nonces for one seal.
// Values less than 2 keep the search on the calling goroutine.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithEvHandler sets a function to receive mining progress events.
func WithEvHandler(ev func(v string, args ...any)) Option {
	return func(o *options) {
		if ev != nil {
			o.evHandler = ev
		}
	}
}

// =============================================================================

// ValidateDifficulty checks the difficulty is a number of leading zeros a
// digest of digest.Width characters can satisfy.
func ValidateDifficulty(difficulty int) error {
	if difficulty < 0 || difficulty > digest.Width {
		return fmt.Errorf("%w: %d, must be between 0 and %d", ErrInvalidDifficulty, difficulty, digest.Width)
	}

	return nil
}

// IsSolved checks the hash starts with a difficulty number of 0's.
func IsSolved(difficulty int, hash string) bool {
	if difficulty > len(hash) {
		return false
	}

	for i := 0; i < difficulty; i++ {
		if hash[i] != '0' {
			return false
		}
	}

	return true
}

// Candidate returns the bytes that are hashed for the specified nonce.
// There are no separators between the parts.
func Candidate(payload string, prevHash string, nonce uint64) []byte {
	b := make([]byte, 0, len(payload)+len(prevHash)+20)
	b = append(b, payload...)
	b = append(b, prevHash...)

	return strconv.AppendUint(b, nonce, 10)
}

// Seal performs the work of mining to find the smallest nonce that solves
// the puzzle for the payload and previous hash. The search has no upper
// bound and only stops early when the context is cancelled.
func Seal(ctx context.Context, hash digest.Func, payload string, prevHash string, difficulty int, opts ...Option) (Solution, error) {
	if err := ValidateDifficulty(difficulty); err != nil {
		return Solution{}, err
	}

	o := options{
		workers:   1,
		evHandler: func(v string, args ...any) {},
	}
	for _, opt := range opts {
		opt(&o)
	}

	o.evHandler("pow: Seal: MINING: started: difficulty[%d] workers[%d]", difficulty, o.workers)
	defer o.evHandler("pow: Seal: MINING: completed")

	start := time.Now()

	var sol Solution
	var err error
	switch {
	case o.workers > 1:
		sol, err = sealParallel(ctx, hash, payload, prevHash, difficulty, o)
	default:
		sol, err = seal(ctx, hash, payload, prevHash, difficulty, o)
	}

	if err != nil {
		o.evHandler("pow: Seal: MINING: CANCELLED")
		return Solution{}, err
	}

	sol.Duration = time.Since(start)

	o.evHandler("pow: Seal: MINING: SOLVED: prevHash[%s]: hash[%s]: nonce[%d]", prevHash, sol.Hash, sol.Nonce)
	o.evHandler("pow: Seal: MINING: attempts[%d]: duration[%v]", sol.Attempts, sol.Duration)

	return sol, nil
}

// seal walks the nonces from zero on the calling goroutine.
func seal(ctx context.Context, hash digest.Func, payload string, prevHash string, difficulty int, o options) (Solution, error) {
	prefix := payload + prevHash
	buf := make([]byte, 0, len(prefix)+20)

	for nonce := uint64(0); ; nonce++ {
		if ctx.Err() != nil {
			return Solution{}, ctx.Err()
		}

		if nonce > 0 && nonce%progressInterval == 0 {
			o.evHandler("pow: Seal: MINING: attempts[%d]", nonce)
		}

		buf = strconv.AppendUint(append(buf[:0], prefix...), nonce, 10)
		h := hash(buf)
		if !IsSolved(difficulty, h) {
			continue
		}

		sol := Solution{
			Hash:     h,
			Nonce:    nonce,
			Attempts: nonce + 1,
		}

		return sol, nil
	}
}

// String implements the Stringer interface.
func (s Solution) String() string {
	return fmt.Sprintf("hash[%s] nonce[%d] attempts[%d] duration[%v]", s.Hash, s.Nonce, s.Attempts, s.Duration)
}
