package database

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrUnknownField is returned when a field name doesn't match one of the
// independently stored block fields.
var ErrUnknownField = errors.New("unknown block field")

// =============================================================================

// Block represents a sealed entry in the ledger. Each field is persisted as
// an independent value so it can be inspected or edited on its own.
type Block struct {
	Index    uint64 `json:"index"`     // Position in the chain, starting at 1.
	Payload  string `json:"payload"`   // Caller supplied content.
	PrevHash string `json:"prev_hash"` // Hash of block Index-1, empty for genesis.
	Hash     string `json:"hash"`      // Sealed hash, written once.
	Nonce    uint64 `json:"nonce"`     // Value that solved the proof of work.
}

// Value returns the string form of the specified field.
func (b Block) Value(field Field) (string, error) {
	switch field {
	case FieldPayload:
		return b.Payload, nil
	case FieldPrevHash:
		return b.PrevHash, nil
	case FieldHash:
		return b.Hash, nil
	case FieldNonce:
		return strconv.FormatUint(b.Nonce, 10), nil
	}

	return "", fmt.Errorf("%q: %w", field, ErrUnknownField)
}

// With returns a copy of the block with the field replaced by value.
func (b Block) With(field Field, value string) (Block, error) {
	switch field {
	case FieldPayload:
		b.Payload = value
	case FieldPrevHash:
		b.PrevHash = value
	case FieldHash:
		b.Hash = value
	case FieldNonce:
		nonce, err := ParseNonce(value)
		if err != nil {
			return Block{}, err
		}
		b.Nonce = nonce
	default:
		return Block{}, fmt.Errorf("%q: %w", field, ErrUnknownField)
	}

	return b, nil
}

// =============================================================================

// Field identifies one of the independently stored values of a block.
type Field string

// Set of fields persisted for every block.
const (
	FieldPayload  Field = "payload"
	FieldPrevHash Field = "prev"
	FieldHash     Field = "hash"
	FieldNonce    Field = "nonce"
)

// Fields lists the stored fields in the order they are written.
var Fields = []Field{FieldPayload, FieldPrevHash, FieldHash, FieldNonce}

// ParseField converts a string into a field.
func ParseField(s string) (Field, error) {
	for _, f := range Fields {
		if string(f) == s {
			return f, nil
		}
	}

	return "", fmt.Errorf("%q: %w", s, ErrUnknownField)
}

// ParseNonce converts the stored representation of a nonce. An empty value
// is treated as zero since a missing nonce artifact reads back empty.
func ParseNonce(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}

	nonce, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing nonce %q: %w", s, err)
	}

	return nonce, nil
}

// BlockFromValues builds a block from the raw stored values. Missing values
// read back empty. A nonce that can't be parsed reads back as zero so a
// strict audit reports the block instead of the read failing.
func BlockFromValues(index uint64, values map[Field]string) Block {
	nonce, err := ParseNonce(values[FieldNonce])
	if err != nil {
		nonce = 0
	}

	block := Block{
		Index:    index,
		Payload:  values[FieldPayload],
		PrevHash: values[FieldPrevHash],
		Hash:     values[FieldHash],
		Nonce:    nonce,
	}

	return block
}
