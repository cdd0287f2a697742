package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService mints and validates the bearer tokens issued by the token
// endpoint. Tokens are stateless JWTs signed with a server-held symmetric
// secret; nothing is persisted after issuance, so validation needs only the
// secret.
type TokenService struct {
	secret   []byte
	method   *jwt.SigningMethodHMAC
	tokenTTL time.Duration
}

// NewTokenService creates a TokenService. The algorithm must name an HMAC
// method (HS256, HS384 or HS512); asymmetric or unknown algorithms are
// rejected so a misconfigured deployment fails at startup rather than
// issuing tokens it cannot validate.
func NewTokenService(secret, algorithm string, tokenTTL time.Duration) (*TokenService, error) {
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q: symmetric HMAC required", algorithm)
	}

	return &TokenService{
		secret:   []byte(secret),
		method:   method,
		tokenTTL: tokenTTL,
	}, nil
}

// Mint creates a signed access token for the given subject, expiring
// tokenTTL from now.
func (s *TokenService) Mint(subject string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenTTL)),
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies an access token, returning its claims. The
// accepted signing method is pinned to the service's configured one, so a
// token with alg=none or an asymmetric algorithm never reaches signature
// checking.
func (s *TokenService) Validate(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(_ *jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid access token: %w", err)
	}

	return claims, nil
}
