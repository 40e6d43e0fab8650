package commands

import (
	"fmt"
	"strconv"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"go.uber.org/zap"
)

// Edit replaces a single stored field of a block. This is how tampering
// is simulated to exercise the chain audit.
func Edit(log *zap.SugaredLogger, db *database.Database, indexStr string, fieldStr string, value string) error {
	if indexStr == "" || fieldStr == "" {
		return fmt.Errorf("edit <index> <field> <value>: %w", ErrMissingArg)
	}

	index, err := strconv.ParseUint(indexStr, 10, 64)
	if err != nil {
		return fmt.Errorf("parsing index %q: %w", indexStr, err)
	}

	field, err := database.ParseField(fieldStr)
	if err != nil {
		return err
	}

	if err := db.Edit(index, field, value); err != nil {
		return err
	}

	log.Infow("admin", "status", "block edited", "index", index, "field", field, "value", value)

	return nil
}
