// This program performs administrative tasks against the ledger storage.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/powledger/app/tooling/admin/commands"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/database/storage"
	"github.com/ardanlabs/powledger/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		if !errors.Is(err, commands.ErrHelp) {
			log.Errorw("admin", "ERROR", err)
		}
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	cfg := struct {
		conf.Version
		Args  conf.Args
		Store struct {
			Kind string `conf:"default:disk"`
			Path string `conf:"default:bc_data"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "ledger storage administration",
		},
	}

	const prefix = "LEDGER"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	strg, err := storage.Open(cfg.Store.Kind, cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}

	db, err := database.New(strg, 0)
	if err != nil {
		strg.Close()
		return err
	}
	defer db.Close()

	log.Infow("admin", "status", "storage opened", "kind", cfg.Store.Kind, "path", cfg.Store.Path)

	return processCommands(cfg.Args, log, db)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args conf.Args, log *zap.SugaredLogger, db *database.Database) error {
	switch args.Num(0) {
	case "dump":
		if err := commands.Dump(os.Stdout, db); err != nil {
			return fmt.Errorf("dumping blocks: %w", err)
		}

	case "edit":
		if err := commands.Edit(log, db, args.Num(1), args.Num(2), args.Num(3)); err != nil {
			return fmt.Errorf("editing block: %w", err)
		}

	default:
		fmt.Println("dump: print every stored block")
		fmt.Println("edit <index> <field> <value>: replace one stored field, fields are payload, prev, hash and nonce")
		fmt.Println("provide a command to get more help.")
		return commands.ErrHelp
	}

	return nil
}
