package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
)

// ComputeCodeChallenge derives the S256 PKCE challenge for a code verifier:
// the base64url encoding, without padding, of the verifier's SHA-256 digest
// (RFC 7636 §4.2).
func ComputeCodeChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// VerifyCodeChallenge reports whether the verifier matches the stored
// challenge. The comparison is byte-for-byte over the exact no-padding
// base64url encoding; padded or standard-alphabet encodings of the same
// digest do not match. Constant-time comparison avoids leaking the match
// position through timing.
func VerifyCodeChallenge(challenge, verifier string) bool {
	computed := ComputeCodeChallenge(verifier)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(challenge)) == 1
}
