package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ardanlabs/powledger/foundation/blockchain/chain"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Run the interactive menu.",
	Args:  cobra.NoArgs,
	RunE:  menuRun,
}

func init() {
	rootCmd.AddCommand(menuCmd)
}

func menuRun(cmd *cobra.Command, args []string) error {
	st, closeFn, err := openLedger()
	if err != nil {
		return err
	}
	defer closeFn()

	return runMenu(cmd.Context(), st, cmd.InOrStdin(), cmd.OutOrStdout())
}

// runMenu drives the ledger from the option typed on each line of in until
// the user exits or the input ends. Errors are reported and the loop
// continues.
func runMenu(ctx context.Context, st *state.State, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	reader := bufio.NewReader(in)

	// readLine returns the next line without its line ending. A final line
	// with no newline is still returned. Lines have no length limit.
	readLine := func() (string, bool, error) {
		line, err := reader.ReadString('\n')
		switch {
		case errors.Is(err, io.EOF):
			if line == "" {
				return "", false, nil
			}
		case err != nil:
			return "", false, err
		}
		return strings.TrimRight(line, "\r\n"), true, nil
	}

	for {
		pterm.DefaultSection.WithWriter(out).Println("POW LEDGER")
		fmt.Fprintln(out, "1. Add a new block")
		fmt.Fprintln(out, "2. Verify the chain")
		fmt.Fprint(out, "0. Exit\n> ")

		option, ok, err := readLine()
		if !ok {
			return err
		}

		switch strings.TrimSpace(option) {
		case "1":
			fmt.Fprintf(out, "Data for block %d: ", st.NextIndex())

			payload, ok, err := readLine()
			if !ok {
				return err
			}

			block, sol, err := st.Append(ctx, payload)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				printError(out, err)
				continue
			}
			printAppended(out, block, sol)

		case "2":
			rpt, err := st.VerifyAll(ctx, chain.ModeLink)
			if err != nil {
				printError(out, err)
				continue
			}
			printReport(out, rpt)

		case "0":
			return nil

		default:
			pterm.Warning.WithWriter(out).Println("Invalid option.")
		}
	}
}
