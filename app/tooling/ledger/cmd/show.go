package cmd

import (
	"fmt"
	"strconv"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [index]",
	Short: "Print one block or the whole chain.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  showRun,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func showRun(cmd *cobra.Command, args []string) error {
	st, closeFn, err := openLedger()
	if err != nil {
		return err
	}
	defer closeFn()

	if len(args) == 0 {
		blocks, err := st.QueryBlocksByNumber(1, state.QueryLatest)
		if err != nil {
			return err
		}
		return printBlocks(cmd.OutOrStdout(), blocks)
	}

	index, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid block index %q: %w", args[0], err)
	}

	block, err := st.QueryBlock(index)
	if err != nil {
		return err
	}

	return printBlocks(cmd.OutOrStdout(), []database.Block{block})
}
