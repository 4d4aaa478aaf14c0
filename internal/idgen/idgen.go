// Package idgen produces random student identifiers.
package idgen

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// Alphabet is the set of symbols an identifier is drawn from.
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// Length is the number of symbols in an identifier.
	Length = 16
)

var alphabetSize = big.NewInt(int64(len(Alphabet)))

// Generate returns a Length-character identifier drawn uniformly from
// Alphabet using crypto/rand. Uniqueness is not guaranteed here; the store's
// primary key reports collisions.
func Generate() (string, error) {
	id := make([]byte, Length)
	for i := range id {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("idgen.Generate: %w", err)
		}
		id[i] = Alphabet[n.Int64()]
	}
	return string(id), nil
}
