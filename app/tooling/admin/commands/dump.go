package commands

import (
	"fmt"
	"io"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// Dump writes every block in storage from genesis until the first missing
// index.
func Dump(w io.Writer, db *database.Database) error {
	var count int

	iter := db.ForEach()
	for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "Block %d\n", block.Index)
		fmt.Fprintf(w, "  payload: %s\n", block.Payload)
		fmt.Fprintf(w, "  prev   : %s\n", block.PrevHash)
		fmt.Fprintf(w, "  hash   : %s\n", block.Hash)
		fmt.Fprintf(w, "  nonce  : %d\n", block.Nonce)
		count++
	}

	if count == 0 {
		fmt.Fprintln(w, "no blocks stored")
	}

	return nil
}
