// Package cmd contains the ledger command line tool.
package cmd

import (
	"fmt"
	"os"

	"github.com/ardanlabs/powledger/foundation/blockchain/database/storage"
	"github.com/ardanlabs/powledger/foundation/blockchain/digest"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/logger"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dbPath     string
	storeKind  string
	difficulty int
	digestName string
	workers    int
	verbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "bc_data", "Path to the block storage.")
	rootCmd.PersistentFlags().StringVarP(&storeKind, "store", "s", storage.KindDisk, "Storage kind: disk, memory, badger or leveldb.")
	rootCmd.PersistentFlags().IntVarP(&difficulty, "difficulty", "z", 3, "Number of leading zeros a block hash needs.")
	rootCmd.PersistentFlags().StringVar(&digestName, "digest", "sha256", "Digest used to seal blocks: sha256 or keccak256.")
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "w", 1, "Number of goroutines searching for a nonce.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log ledger events.")
}

var rootCmd = &cobra.Command{
	Use:          "ledger",
	Short:        "A minimal proof of work ledger",
	SilenceUsage: true,
	RunE:         menuRun,
}

// Execute runs the command selected on the command line.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openLedger constructs the ledger over the configured storage. The
// returned function must be called to release the storage.
func openLedger() (*state.State, func(), error) {
	hash, err := digest.Lookup(digestName)
	if err != nil {
		return nil, nil, err
	}

	var log *zap.SugaredLogger
	if verbose {
		if log, err = logger.New("LEDGER"); err != nil {
			return nil, nil, err
		}
	}

	ev := func(v string, args ...any) {
		if log != nil {
			log.Infow(fmt.Sprintf(v, args...))
		}
	}

	strg, err := storage.Open(storeKind, dbPath)
	if err != nil {
		return nil, nil, err
	}

	st, err := state.New(state.Config{
		Storage:    strg,
		Digest:     hash,
		Difficulty: difficulty,
		Workers:    workers,
		EvHandler:  ev,
	})
	if err != nil {
		strg.Close()
		return nil, nil, err
	}

	closeFn := func() {
		if err := st.Shutdown(); err != nil {
			pterm.Error.Printfln("closing storage: %s", err)
		}
		if log != nil {
			log.Sync()
		}
	}

	return st, closeFn, nil
}
