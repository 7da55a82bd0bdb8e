// Package checksum fingerprints stored documents for change detection,
// manifests and HTTP ETags.
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

// ETag returns a strong HTTP entity tag for data: the first 16 hex digits
// of its digest, quoted.
func ETag(data []byte) string {
	return `"` + Sum(data)[:16] + `"`
}

// MatchesETag reports whether an If-None-Match header value names etag.
// A bare "*" matches anything.
func MatchesETag(header, etag string) bool {
	if strings.TrimSpace(header) == "*" {
		return true
	}
	for _, candidate := range strings.Split(header, ",") {
		if strings.TrimPrefix(strings.TrimSpace(candidate), "W/") == etag {
			return true
		}
	}
	return false
}
