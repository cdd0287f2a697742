package domain

import "time"

// AuthCodeRecord is the state stored for an issued OAuth 2.0 authorization
// code. The code itself is the storage key, not part of the record. A record
// is written once at authorization time and never mutated; it disappears
// either by expiry or by the single atomic redemption at the token endpoint.
type AuthCodeRecord struct {
	ClientID      string    `json:"client_id"`      // Client application ID, not validated against a registry
	RedirectURI   string    `json:"redirect_uri"`   // Client's callback URL, carried through as supplied
	CodeChallenge string    `json:"code_challenge"` // base64url (no padding) SHA-256 of the client's verifier
	CreatedAt     time.Time `json:"created_at"`     // Issuance timestamp
}
