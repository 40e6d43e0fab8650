// Package chain audits the blocks held in storage. The audit walks the chain
// from genesis and stops at the first block that breaks the link to its
// parent, is missing, or has no hash.
package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/digest"
	"github.com/ardanlabs/powledger/foundation/blockchain/pow"
)

// Reader represents the behavior required to read blocks for an audit.
type Reader interface {
	Get(index uint64) (database.Block, error)
}

// Mode selects how much checking is done per block.
type Mode int

// Set of audit modes.
const (
	// ModeLink checks each block points to the hash of its parent and has
	// a hash of its own. Payloads are not checked.
	ModeLink Mode = iota

	// ModeStrict also recomputes the hash from the stored payload, parent
	// hash and nonce and compares it with the stored hash.
	ModeStrict
)

// ErrUnknownMode is returned when an audit mode name isn't recognized.
var ErrUnknownMode = errors.New("unknown audit mode")

// ParseMode converts a mode name into a Mode. An empty name is ModeLink.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "link":
		return ModeLink, nil
	case "strict":
		return ModeStrict, nil
	}

	return ModeLink, fmt.Errorf("%q: %w", s, ErrUnknownMode)
}

// String implements the Stringer interface.
func (m Mode) String() string {
	if m == ModeStrict {
		return "strict"
	}
	return "link"
}

// Reason describes why a block was reported as corrupt.
type Reason string

// Set of reasons a block can be reported as corrupt.
const (
	ReasonMissing        Reason = "missing"
	ReasonBrokenLink     Reason = "broken link"
	ReasonMissingDigest  Reason = "missing digest"
	ReasonDigestMismatch Reason = "digest mismatch"
)

// =============================================================================

// Report is the outcome of an audit.
type Report struct {
	Valid   bool   `json:"valid"`
	UpTo    uint64 `json:"up_to"`            // Last index requested.
	Index   uint64 `json:"index,omitempty"`  // First corrupt index.
	Reason  Reason `json:"reason,omitempty"` // Why Index is corrupt.
	Checked uint64 `json:"checked"`          // Number of blocks that passed.
	Mode    string `json:"mode"`
}

// String implements the Stringer interface.
func (r Report) String() string {
	if r.Valid {
		return fmt.Sprintf("[OK] chain valid up to block %d", r.UpTo)
	}
	return fmt.Sprintf("[ERROR] chain corrupt at block %d: %s", r.Index, r.Reason)
}

// =============================================================================

type options struct {
	mode      Mode
	hash      digest.Func
	evHandler func(v string, args ...any)
}

// Option changes how an audit is performed.
type Option func(*options)

// WithMode sets the audit mode.
func WithMode(mode Mode) Option {
	return func(o *options) {
		o.mode = mode
	}
}

// WithDigest sets the digest used by strict mode to recompute hashes.
func WithDigest(hash digest.Func) Option {
	return func(o *options) {
		if hash != nil {
			o.hash = hash
		}
	}
}

// WithEvHandler sets a function to receive audit events.
func WithEvHandler(ev func(v string, args ...any)) Option {
	return func(o *options) {
		if ev != nil {
			o.evHandler = ev
		}
	}
}

// =============================================================================

// Verify walks blocks 1 through upTo in order. The first problem found is
// reported and no later block is checked. Storage failures other than a
// missing block are returned as errors.
func Verify(ctx context.Context, r Reader, upTo uint64, opts ...Option) (Report, error) {
	o := options{
		mode:      ModeLink,
		hash:      digest.SHA256,
		evHandler: func(v string, args ...any) {},
	}
	for _, opt := range opts {
		opt(&o)
	}

	o.evHandler("chain: Verify: started: upTo[%d] mode[%s]", upTo, o.mode)

	report := Report{
		UpTo: upTo,
		Mode: o.mode.String(),
	}

	corrupt := func(index uint64, reason Reason) (Report, error) {
		o.evHandler("chain: Verify: CORRUPT: blk[%d]: %s", index, reason)

		report.Index = index
		report.Reason = reason
		return report, nil
	}

	var expPrevHash string
	for i := uint64(1); i <= upTo; i++ {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}

		block, err := r.Get(i)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return corrupt(i, ReasonMissing)
			}
			return Report{}, fmt.Errorf("reading block %d: %w", i, err)
		}

		if block.PrevHash != expPrevHash {
			return corrupt(i, ReasonBrokenLink)
		}

		if block.Hash == "" {
			return corrupt(i, ReasonMissingDigest)
		}

		if o.mode == ModeStrict {
			if o.hash(pow.Candidate(block.Payload, block.PrevHash, block.Nonce)) != block.Hash {
				return corrupt(i, ReasonDigestMismatch)
			}
		}

		expPrevHash = block.Hash
		report.Checked++
	}

	o.evHandler("chain: Verify: VALID: blocks[%d]", report.Checked)

	report.Valid = true
	return report, nil
}
