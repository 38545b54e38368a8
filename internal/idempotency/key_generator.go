package idempotency

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"strings"
)

// GenerateKey returns "<scope>:<sha256 of parts>". Parts are length-prefixed, so ("ab", "c")
// and ("a", "bc") give different keys.
func GenerateKey(scope string, parts ...string) string {
	h := sha256.New()
	for _, part := range parts {
		var n [4]byte
		binary.BigEndian.PutUint32(n[:], uint32(len(part)))
		h.Write(n[:])
		h.Write([]byte(part))
	}

	return strings.TrimSpace(scope) + ":" + hex.EncodeToString(h.Sum(nil))
}
