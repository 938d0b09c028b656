package digest

import (
	"crypto/sha1" // #nosec G505 -- content addressing, not a security boundary
	"encoding/hex"
	"fmt"
)

// Size is the length of a Digest in bytes.
const Size = sha1.Size

// Digest is a fixed 160-bit content hash. Its hex form names cache entries.
type Digest [Size]byte

// Sum hashes content.
func Sum(content []byte) Digest {
	return Digest(sha1.Sum(content)) // #nosec G401
}

// String returns the lowercase hex form (40 characters).
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether d is the zero digest.
func (d Digest) IsZero() bool {
	var z Digest
	return d == z
}

// Parse decodes a 40-character hex digest.
func Parse(s string) (Digest, error) {
	var d Digest
	if len(s) != 2*Size {
		return d, fmt.Errorf("digest %q: want %d hex characters, got %d", s, 2*Size, len(s))
	}
	if _, err := hex.Decode(d[:], []byte(s)); err != nil {
		return d, fmt.Errorf("digest %q: %w", s, err)
	}
	return d, nil
}
