package cmd

import (
	"errors"

	"github.com/ardanlabs/powledger/foundation/blockchain/chain"
	"github.com/spf13/cobra"
)

// ErrCorrupt is returned by the verify command when the audit fails so the
// process exits with a non-zero status.
var ErrCorrupt = errors.New("chain is corrupt")

var strict bool

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Audit the chain from genesis to the tip.",
	Args:  cobra.NoArgs,
	RunE:  verifyRun,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().BoolVar(&strict, "strict", false, "Recompute every block digest.")
}

func verifyRun(cmd *cobra.Command, args []string) error {
	st, closeFn, err := openLedger()
	if err != nil {
		return err
	}
	defer closeFn()

	mode := chain.ModeLink
	if strict {
		mode = chain.ModeStrict
	}

	rpt, err := st.VerifyAll(cmd.Context(), mode)
	if err != nil {
		return err
	}

	printReport(cmd.OutOrStdout(), rpt)

	if !rpt.Valid {
		return ErrCorrupt
	}

	return nil
}
