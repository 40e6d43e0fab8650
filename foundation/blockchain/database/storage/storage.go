// Package storage opens the block storage implementation selected by
// configuration.
package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/database/storage/badgerdb"
	"github.com/ardanlabs/powledger/foundation/blockchain/database/storage/disk"
	"github.com/ardanlabs/powledger/foundation/blockchain/database/storage/ldb"
	"github.com/ardanlabs/powledger/foundation/blockchain/database/storage/memory"
)

// Set of supported storage kinds.
const (
	KindDisk    = "disk"
	KindMemory  = "memory"
	KindBadger  = "badger"
	KindLevelDB = "leveldb"
)

// ErrUnknownKind is returned when the storage kind isn't supported.
var ErrUnknownKind = errors.New("unknown storage kind")

// Open constructs the storage of the specified kind rooted at path. The
// path is ignored for memory storage.
func Open(kind string, path string) (database.Storage, error) {
	switch strings.ToLower(kind) {
	case KindDisk:
		return disk.New(path)

	case KindMemory:
		return memory.New(), nil

	case KindBadger:
		return badgerdb.New(path)

	case KindLevelDB:
		return ldb.New(path)
	}

	return nil, fmt.Errorf("%q: %w, options [%s %s %s %s]", kind, ErrUnknownKind, KindDisk, KindMemory, KindBadger, KindLevelDB)
}
