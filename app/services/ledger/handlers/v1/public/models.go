package public

import (
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/chain"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/pow"
)

// newBlock is what a client posts to append a block. The payload key must
// be present but the payload itself may be empty.
type newBlock struct {
	Payload *string `json:"payload" validate:"required"`
}

type block struct {
	Index    uint64 `json:"index"`
	Payload  string `json:"payload"`
	PrevHash string `json:"prev_hash"`
	Hash     string `json:"hash"`
	Nonce    uint64 `json:"nonce"`
}

func toBlock(blk database.Block) block {
	return block{
		Index:    blk.Index,
		Payload:  blk.Payload,
		PrevHash: blk.PrevHash,
		Hash:     blk.Hash,
		Nonce:    blk.Nonce,
	}
}

type appended struct {
	Block    block         `json:"block"`
	Attempts uint64        `json:"attempts"`
	Duration time.Duration `json:"duration_ns"`
	Elapsed  string        `json:"elapsed"`
}

func toAppended(blk database.Block, sol pow.Solution) appended {
	return appended{
		Block:    toBlock(blk),
		Attempts: sol.Attempts,
		Duration: sol.Duration,
		Elapsed:  sol.Duration.String(),
	}
}

type tip struct {
	Index      uint64 `json:"index"`
	Hash       string `json:"hash"`
	Difficulty int    `json:"difficulty"`
}

type report struct {
	Valid   bool   `json:"valid"`
	Mode    string `json:"mode"`
	UpTo    uint64 `json:"up_to"`
	Checked uint64 `json:"checked"`
	Index   uint64 `json:"index,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}

func toReport(rpt chain.Report) report {
	return report{
		Valid:   rpt.Valid,
		Mode:    rpt.Mode,
		UpTo:    rpt.UpTo,
		Checked: rpt.Checked,
		Index:   rpt.Index,
		Reason:  string(rpt.Reason),
		Message: rpt.String(),
	}
}
