package driver

import (
	"crypto/sha256"
	"strconv"

	"yieldc/internal/iterlower"
	"yieldc/internal/version"
)

// Digest is a SHA-256 value.
type Digest [32]byte

// combineDigest: H(content || part1 || part2 ...). Части разделяются нулевым байтом.
func combineDigest(content Digest, parts ...string) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, p := range parts {
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(p))
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// cacheKey covers everything that influences the lowered text of one file.
func cacheKey(content Digest, mode iterlower.DisposeMode, indent int, tabs bool) Digest {
	style := "spaces"
	if tabs {
		style = "tabs"
	}
	return combineDigest(content, version.Version, mode.String(), style, strconv.Itoa(indent))
}
