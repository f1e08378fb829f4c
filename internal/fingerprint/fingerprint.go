// Package fingerprint produces content addresses for submitted source.
//
// The fingerprint is a pure function of the normalized text: two
// submissions that differ only in comments or blank lines map to the
// same address, so the cache answers them identically.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Normalize strips // line comments, trims surrounding whitespace from
// each line and drops lines that end up empty. Statement order is
// preserved.
func Normalize(source string) string {
	var lines []string
	for _, line := range strings.Split(source, "\n") {
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// Of returns the hex sha256 digest of the normalized source.
func Of(source string) string {
	sum := sha256.Sum256([]byte(Normalize(source)))
	return hex.EncodeToString(sum[:])
}
