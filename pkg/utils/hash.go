package utils

import (
	"crypto/sha256"
	"fmt"
)

func HashString(input string) string {
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", hash)
}

// HashStrings fingerprints an ordered list of strings. The separator makes the
// hash sensitive to element boundaries, not just concatenated bytes.
func HashStrings(items []string) string {
	h := sha256.New()
	for _, item := range items {
		h.Write([]byte(item))
		h.Write([]byte{0x1e})
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
