// Package disk implements the ability to read and write blocks to disk
// using a directory per block and a text file per field.
package disk

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// fileNames maps each block field to the file holding it.
var fileNames = map[database.Field]string{
	database.FieldPayload:  "data.txt",
	database.FieldPrevHash: "prev.txt",
	database.FieldHash:     "hash.txt",
	database.FieldNonce:    "nonce.txt",
}

// Disk represents the serialization implementation for reading and storing
// blocks on disk. Block N lives in <root>/nodes/nodeN. This implements the
// database.Storage interface.
type Disk struct {
	mu    sync.Mutex
	nodes string
}

// New constructs a Disk value for use. If the root path exists but isn't a
// directory it is removed so the layout can be created.
func New(root string) (*Disk, error) {
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		if err := os.Remove(root); err != nil {
			return nil, fmt.Errorf("removing non-directory root %q: %w", root, err)
		}
	}

	nodes := filepath.Join(root, "nodes")
	if err := os.MkdirAll(nodes, 0755); err != nil {
		return nil, err
	}

	return &Disk{nodes: nodes}, nil
}

// Close in this implementation has nothing to do since a new set of files
// is written to disk for each block and then immediately closed.
func (d *Disk) Close() error {
	return nil
}

// Put writes the fields of the block into a temporary directory and then
// renames it into place, so a reader never sees a partial block.
func (d *Disk) Put(block database.Block) error {
	if block.Index == 0 {
		return database.ErrInvalidIndex
	}

	for _, field := range []database.Field{database.FieldPrevHash, database.FieldHash} {
		value, _ := block.Value(field)
		if err := checkTrimmed(field, value); err != nil {
			return err
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	dir := d.getPath(block.Index)
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("block %d: %w", block.Index, database.ErrBlockExists)
	}

	tmp, err := os.MkdirTemp(d.nodes, fmt.Sprintf(".node%d-", block.Index))
	if err != nil {
		return err
	}

	for _, field := range database.Fields {
		value, err := block.Value(field)
		if err != nil {
			os.RemoveAll(tmp)
			return err
		}

		if err := os.WriteFile(filepath.Join(tmp, fileNames[field]), []byte(value), 0644); err != nil {
			os.RemoveAll(tmp)
			return err
		}
	}

	if err := os.Chmod(tmp, 0755); err != nil {
		os.RemoveAll(tmp)
		return err
	}

	if err := os.Rename(tmp, dir); err != nil {
		os.RemoveAll(tmp)
		return err
	}

	return nil
}

// Get reads the fields of the specified block from disk. A missing field
// file reads back as an empty value.
func (d *Disk) Get(index uint64) (database.Block, error) {
	dir := d.getPath(index)

	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.IsDir()) {
		return database.Block{}, fmt.Errorf("block %d: %w", index, database.ErrNotFound)
	}
	if err != nil {
		return database.Block{}, err
	}

	values := make(map[database.Field]string, len(fileNames))
	for field, name := range fileNames {
		value, err := readFile(filepath.Join(dir, name))
		if err != nil {
			return database.Block{}, err
		}

		// Hashes and nonces are single line values. Put and Set never write
		// surrounding whitespace, so trimming only affects files edited by
		// hand. The payload is kept byte exact.
		if field != database.FieldPayload {
			value = strings.TrimSpace(value)
		}

		values[field] = value
	}

	return database.BlockFromValues(index, values), nil
}

// Set replaces the file for a single field of an existing block.
func (d *Disk) Set(index uint64, field database.Field, value string) error {
	name, exists := fileNames[field]
	if !exists {
		return fmt.Errorf("%q: %w", field, database.ErrUnknownField)
	}

	switch field {
	case database.FieldNonce:
		if _, err := database.ParseNonce(value); err != nil {
			return err
		}

	case database.FieldPrevHash, database.FieldHash:
		if err := checkTrimmed(field, value); err != nil {
			return err
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	dir := d.getPath(index)
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("block %d: %w", index, database.ErrNotFound)
		}
		return err
	}

	f, err := os.CreateTemp(dir, "."+name+"-")
	if err != nil {
		return err
	}

	if err := f.Chmod(0644); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}

	if _, err := f.WriteString(value); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return err
	}

	if err := os.Rename(f.Name(), filepath.Join(dir, name)); err != nil {
		os.Remove(f.Name())
		return err
	}

	return nil
}

// getPath forms the path to the directory of the specified block.
func (d *Disk) getPath(index uint64) string {
	return filepath.Join(d.nodes, fmt.Sprintf("node%d", index))
}

// checkTrimmed rejects hash values with surrounding whitespace since Get
// trims them on the way back.
func checkTrimmed(field database.Field, value string) error {
	if strings.TrimSpace(value) != value {
		return fmt.Errorf("%s %q has surrounding whitespace: %w", field, value, database.ErrInvalidValue)
	}
	return nil
}

// readFile returns the content of the file or an empty string if the file
// doesn't exist.
func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	return string(data), nil
}
