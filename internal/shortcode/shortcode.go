// Package shortcode generates and validates short link codes.
package shortcode

import (
	"crypto/rand"
	"math/big"
	"regexp"
)

// Alphabet is the 62-symbol charset for generated codes.
const Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// DefaultLength is the code length used when no override is configured.
const DefaultLength = 6

var codeRegex = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// Generate returns a random code of the given length. Each symbol is an
// independent uniform draw from Alphabet using crypto/rand, so codes are
// not guessable or enumerable.
func Generate(length int) string {
	if length <= 0 {
		return ""
	}

	b := make([]byte, length)
	for i := range b {
		b[i] = Alphabet[randInt(len(Alphabet))]
	}
	return string(b)
}

// IsValidCode reports whether code is a non-empty base62 string.
// Custom aliases are validated by the request layer with a wider charset;
// this check covers generated codes and redirect path parameters.
func IsValidCode(code string) bool {
	return codeRegex.MatchString(code)
}

// randInt returns a cryptographically secure random integer in [0, max).
func randInt(max int) int {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		// crypto/rand only fails if the OS entropy source is broken,
		// in which case continuing to serve traffic is pointless.
		panic(err)
	}
	return int(n.Int64())
}
