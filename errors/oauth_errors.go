package errors

// APIError is the single error shape the HTTP surface returns. The detail
// messages are fixed strings: they never carry store state, stack detail, or
// anything that distinguishes "backend down" from "code absent".
type APIError struct {
	Detail string `json:"detail"`
}

func (e *APIError) Error() string {
	return e.Detail
}

// Fixed client-protocol error messages.
const (
	DetailUnsupportedGrantType = "Unsupported grant type"
	DetailInvalidCode          = "Invalid or expired code"
	DetailInvalidVerifier      = "Invalid code verifier"
	DetailCodeIssueFailed      = "Failed to generate authorization code"
	DetailInternal             = "Internal server error"
)

// NewUnsupportedGrantType reports a /token grant_type other than
// "authorization_code".
func NewUnsupportedGrantType() *APIError {
	return &APIError{Detail: DetailUnsupportedGrantType}
}

// NewInvalidCode reports a code that is absent, expired, or already used.
func NewInvalidCode() *APIError {
	return &APIError{Detail: DetailInvalidCode}
}

// NewInvalidVerifier reports a PKCE challenge mismatch.
func NewInvalidVerifier() *APIError {
	return &APIError{Detail: DetailInvalidVerifier}
}

// NewCodeIssueFailed reports that the authorization code could not be
// durably stored.
func NewCodeIssueFailed() *APIError {
	return &APIError{Detail: DetailCodeIssueFailed}
}

// NewInternal is the generic boundary error with no internal detail.
func NewInternal() *APIError {
	return &APIError{Detail: DetailInternal}
}

// NewMissingField reports a required form field absent from the request.
func NewMissingField(field string) *APIError {
	return &APIError{Detail: "Missing required field: " + field}
}
