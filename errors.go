package auth

import "errors"

var (
	// ErrUnsupportedGrantType signals a /token request whose grant_type is
	// anything other than "authorization_code".
	ErrUnsupportedGrantType = errors.New("unsupported grant type")

	// ErrInvalidCode signals a code that was never issued, already redeemed,
	// or expired. Store unavailability reports the same error: redemption
	// fails closed.
	ErrInvalidCode = errors.New("invalid or expired code")

	// ErrInvalidVerifier signals a PKCE verifier whose S256 challenge does
	// not match the challenge bound to the code at issuance.
	ErrInvalidVerifier = errors.New("invalid code verifier")

	// ErrCodeStoreUnavailable signals that an authorization code could not
	// be durably stored.
	ErrCodeStoreUnavailable = errors.New("authorization code store unavailable")
)
