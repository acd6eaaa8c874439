// Package fingerprint derives stable content identifiers used for
// hash-based artifact naming and deduplication.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

// idBytes keeps 96 bits of the digest, enough for dedupe purposes.
const idBytes = 12

// Sum returns a fixed-length, URL-safe identifier derived purely from the
// content bytes. The tail of the SHA-256 digest is kept rather than the
// prefix so near-duplicate headers do not produce correlated ids.
func Sum(data []byte) string {
	digest := sha256.Sum256(data)
	return hex.EncodeToString(digest[len(digest)-idBytes:])
}
