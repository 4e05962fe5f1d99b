package auth

import (
	"crypto/sha256"
	"crypto/subtle"
)

// Guard validates the shared token presented by callers. Comparison runs
// in constant time over fixed-length digests, so the time taken leaks
// neither matching-prefix length nor token length.
//
// There is deliberately no lockout or backoff: the trust boundary is the
// origin filter, not brute-force resistance.
type Guard struct {
	secret [sha256.Size]byte
}

// NewGuard builds a guard for the configured shared token.
func NewGuard(token string) *Guard {
	return &Guard{secret: sha256.Sum256([]byte(token))}
}

// Match reports whether the presented token equals the configured secret.
func (g *Guard) Match(presented string) bool {
	digest := sha256.Sum256([]byte(presented))
	return subtle.ConstantTimeCompare(digest[:], g.secret[:]) == 1
}
