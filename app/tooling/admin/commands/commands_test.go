package commands_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ardanlabs/powledger/app/tooling/admin/commands"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/database/storage/memory"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDumpEdit(t *testing.T) {
	db, err := database.New(memory.New(), 0)
	require.NoError(t, err)
	defer db.Close()

	var out bytes.Buffer
	require.NoError(t, commands.Dump(&out, db))
	require.Contains(t, out.String(), "no blocks stored")

	require.NoError(t, db.Write(database.Block{Index: 1, Payload: "tx1", Hash: "0abc", Nonce: 4}))
	require.NoError(t, db.Write(database.Block{Index: 2, Payload: "tx2", PrevHash: "0abc", Hash: "0def", Nonce: 9}))

	log := zap.NewNop().Sugar()
	require.NoError(t, commands.Edit(log, db, "1", "hash", "0bad"))

	block, err := db.GetBlock(1)
	require.NoError(t, err)
	require.Equal(t, "0bad", block.Hash)

	out.Reset()
	require.NoError(t, commands.Dump(&out, db))
	require.Contains(t, out.String(), "Block 2")
	require.Contains(t, out.String(), "hash   : 0bad")

	require.ErrorIs(t, commands.Edit(log, db, "1", "owner", "x"), database.ErrUnknownField)
	require.Error(t, commands.Edit(log, db, "one", "hash", "x"))
	require.True(t, errors.Is(commands.Edit(log, db, "", "", ""), commands.ErrMissingArg))
}
