package database_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/database/storage/memory"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// =============================================================================

func Test_CachedReads(t *testing.T) {
	t.Log("Given the need to cache blocks for queries.")
	{
		strg := memory.New()

		db, err := database.New(strg, 8)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to open database: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to open database.", success)
		defer db.Close()

		if err := db.Write(database.Block{Index: 1, Payload: "tx1", Hash: "0a"}); err != nil {
			t.Fatalf("\t%s\tShould be able to write block: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to write block.", success)

		// Change the storage behind the cache's back.
		if err := strg.Set(1, database.FieldPayload, "changed"); err != nil {
			t.Fatalf("\t%s\tShould be able to set field: %v", failed, err)
		}

		block, err := db.GetBlock(1)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to read block: %v", failed, err)
		}
		if block.Payload != "tx1" {
			t.Fatalf("\t%s\tShould read the cached block, got %q.", failed, block.Payload)
		}
		t.Logf("\t%s\tShould read the cached block.", success)

		raw, err := db.Storage().Get(1)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to read storage: %v", failed, err)
		}
		if raw.Payload != "changed" {
			t.Fatalf("\t%s\tShould read the stored block, got %q.", failed, raw.Payload)
		}
		t.Logf("\t%s\tShould read the stored block without the cache.", success)

		if err := db.Edit(1, database.FieldHash, "ff"); err != nil {
			t.Fatalf("\t%s\tShould be able to edit block: %v", failed, err)
		}

		block, err = db.GetBlock(1)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to read block: %v", failed, err)
		}
		if block.Hash != "ff" || block.Payload != "changed" {
			t.Fatalf("\t%s\tShould see edits made through the database, got %+v.", failed, block)
		}
		t.Logf("\t%s\tShould see edits made through the database.", success)
	}
}

func Test_Iterator(t *testing.T) {
	t.Log("Given the need to walk the chain from genesis.")
	{
		db, err := database.New(memory.New(), 0)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to open database: %v", failed, err)
		}
		defer db.Close()

		for i := uint64(1); i <= 3; i++ {
			if err := db.Write(database.Block{Index: i, Hash: "0a"}); err != nil {
				t.Fatalf("\t%s\tShould be able to write block %d: %v", failed, i, err)
			}
		}

		// Block 5 is not reachable since block 4 is missing.
		if err := db.Write(database.Block{Index: 5, Hash: "0a"}); err != nil {
			t.Fatalf("\t%s\tShould be able to write block 5: %v", failed, err)
		}

		var count uint64
		iter := db.ForEach()
		for block, err := iter.Next(); !iter.Done(); block, err = iter.Next() {
			if err != nil {
				t.Fatalf("\t%s\tShould be able to iterate: %v", failed, err)
			}
			count++

			if block.Index != count {
				t.Fatalf("\t%s\tShould get block %d, got %d.", failed, count, block.Index)
			}
		}

		if count != 3 {
			t.Fatalf("\t%s\tShould stop at the first gap, walked %d blocks.", failed, count)
		}
		t.Logf("\t%s\tShould stop at the first gap.", success)

		if _, err := iter.Next(); !errors.Is(err, database.ErrNotFound) {
			t.Fatalf("\t%s\tShould get ErrNotFound after the end, got %v.", failed, err)
		}
		t.Logf("\t%s\tShould get ErrNotFound after the end.", success)
	}
}

func Test_Fields(t *testing.T) {
	t.Log("Given the need to address block fields by name.")
	{
		block := database.Block{Index: 2, Payload: "p", PrevHash: "a", Hash: "b", Nonce: 11}

		for _, name := range []string{"payload", "prev", "hash", "nonce"} {
			field, err := database.ParseField(name)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to parse field %q: %v", failed, name, err)
			}

			v, err := block.Value(field)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to read field %q: %v", failed, name, err)
			}

			cpy, err := block.With(field, v)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to write field %q: %v", failed, name, err)
			}

			if cpy != block {
				t.Fatalf("\t%s\tShould get the same block back for field %q.", failed, name)
			}
			t.Logf("\t%s\tShould handle field %q.", success, name)
		}

		if _, err := database.ParseField("color"); !errors.Is(err, database.ErrUnknownField) {
			t.Fatalf("\t%s\tShould reject unknown fields, got %v.", failed, err)
		}
		t.Logf("\t%s\tShould reject unknown fields.", success)
	}
}
