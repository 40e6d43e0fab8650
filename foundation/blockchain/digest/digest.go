// Package digest provides the hashing functions used to seal and audit
// blocks. Every function returns a fixed width, lower case hex string
// without any prefix so the proof of work predicate can count leading
// zero characters directly.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// Width is the number of hex characters produced by every Func in
// this package.
const Width = 64

// ErrUnknownDigest is returned by Lookup when the name doesn't map to
// a supported digest function.
var ErrUnknownDigest = errors.New("unknown digest")

// Func computes the digest for the specified data.
type Func func(data []byte) string

// SHA256 returns the sha256 digest of the data. This is the default
// digest used by the ledger.
func SHA256(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Keccak256 returns the Ethereum flavor of sha3 for the data.
func Keccak256(data []byte) string {
	return hex.EncodeToString(crypto.Keccak256(data))
}

// =============================================================================

var funcs = map[string]Func{
	"sha256":    SHA256,
	"keccak256": Keccak256,
}

// Lookup returns the digest function registered under the name.
func Lookup(name string) (Func, error) {
	fn, exists := funcs[strings.ToLower(name)]
	if !exists {
		return nil, fmt.Errorf("%q: %w, options %v", name, ErrUnknownDigest, Names())
	}

	return fn, nil
}

// Names returns the sorted list of supported digest names.
func Names() []string {
	names := make([]string, 0, len(funcs))
	for name := range funcs {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
