// Package checksum computes the content digests used as journey ETags.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Match reports whether tag, an If-Match header value, names the digest of
// data. Surrounding quotes and a weak W/ prefix are ignored, and "*" matches
// any content.
func Match(data []byte, tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "*" {
		return true
	}
	tag = strings.TrimPrefix(tag, "W/")
	tag = strings.Trim(tag, `"`)
	return tag == Sum(data)
}
