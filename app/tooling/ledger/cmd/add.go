package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <payload...>",
	Short: "Seal a payload into a new block.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  addRun,
}

func init() {
	rootCmd.AddCommand(addCmd)
}

func addRun(cmd *cobra.Command, args []string) error {
	st, closeFn, err := openLedger()
	if err != nil {
		return err
	}
	defer closeFn()

	block, sol, err := st.Append(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	printAppended(cmd.OutOrStdout(), block, sol)

	return nil
}
