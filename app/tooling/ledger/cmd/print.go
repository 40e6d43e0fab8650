package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/ardanlabs/powledger/foundation/blockchain/chain"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/pow"
	"github.com/pterm/pterm"
)

func printAppended(w io.Writer, block database.Block, sol pow.Solution) {
	pterm.Info.WithWriter(w).Printfln("Block %d created in %.2f seconds. Hash: %s", block.Index, sol.Duration.Seconds(), block.Hash)
}

func printReport(w io.Writer, rpt chain.Report) {
	switch {
	case rpt.Valid:
		pterm.Success.WithWriter(w).Println(rpt.String())
	default:
		pterm.Error.WithWriter(w).Println(rpt.String())
	}
}

func printError(w io.Writer, err error) {
	pterm.Error.WithWriter(w).Println(err.Error())
}

func printBlocks(w io.Writer, blocks []database.Block) error {
	if len(blocks) == 0 {
		pterm.Info.WithWriter(w).Println("The chain is empty.")
		return nil
	}

	data := pterm.TableData{
		{"Index", "Payload", "Prev", "Hash", "Nonce"},
	}
	for _, block := range blocks {
		data = append(data, []string{
			strconv.FormatUint(block.Index, 10),
			block.Payload,
			short(block.PrevHash),
			short(block.Hash),
			fmt.Sprint(block.Nonce),
		})
	}

	return pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render()
}

// short trims a hash for table output.
func short(hash string) string {
	if len(hash) <= 16 {
		return hash
	}
	return hash[:16] + "..."
}
