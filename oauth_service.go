package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ledgerkeep/auth/cache"
	"github.com/ledgerkeep/auth/domain"
	"github.com/ledgerkeep/auth/internal/metrics"
)

// GrantTypeAuthorizationCode is the only grant type the token endpoint
// accepts.
const GrantTypeAuthorizationCode = "authorization_code"

// TokenResponse is the successful result of a token exchange.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// OAuthService implements the two-step authorization-code flow with PKCE.
// It holds no locks and no mutable state of its own: every code lives in the
// shared CodeStore, and the store's atomic Take is the only coordination
// point between concurrent redemptions.
type OAuthService struct {
	codes   cache.CodeStore
	tokens  *TokenService
	codeTTL time.Duration
}

// NewOAuthService creates an OAuthService issuing codes with the given TTL.
func NewOAuthService(codes cache.CodeStore, tokens *TokenService, codeTTL time.Duration) *OAuthService {
	return &OAuthService{
		codes:   codes,
		tokens:  tokens,
		codeTTL: codeTTL,
	}
}

// Authorize issues a fresh single-use authorization code bound to the
// client's PKCE challenge and stores it with the configured TTL. The inputs
// are opaque: no client registry exists, so client_id and redirect_uri are
// carried through as supplied.
func (s *OAuthService) Authorize(ctx context.Context, clientID, redirectURI, codeChallenge string) (string, error) {
	code := uuid.NewString()

	record := &domain.AuthCodeRecord{
		ClientID:      clientID,
		RedirectURI:   redirectURI,
		CodeChallenge: codeChallenge,
		CreatedAt:     time.Now().UTC(),
	}

	if !s.codes.Put(ctx, code, record, s.codeTTL) {
		log.Error().Msg("failed to store authorization code")
		return "", ErrCodeStoreUnavailable
	}

	metrics.CodesIssuedTotal.Inc()

	return code, nil
}

// Token redeems an authorization code for a signed bearer token.
//
// The grant-type gate runs before any store access. Redemption is a single
// atomic Take: of N concurrent exchanges of the same code exactly one
// proceeds past it. The record is already gone when PKCE verification runs,
// so a failed verification burns the code — it cannot be retried with
// another verifier.
func (s *OAuthService) Token(ctx context.Context, grantType, code, codeVerifier string) (*TokenResponse, error) {
	if grantType != GrantTypeAuthorizationCode {
		return nil, ErrUnsupportedGrantType
	}

	record, ok := s.codes.Take(ctx, code)
	if !ok {
		metrics.RedemptionsRejectedTotal.Inc()
		return nil, ErrInvalidCode
	}

	if !VerifyCodeChallenge(record.CodeChallenge, codeVerifier) {
		metrics.RedemptionsRejectedTotal.Inc()
		return nil, ErrInvalidVerifier
	}

	accessToken, err := s.tokens.Mint(record.ClientID)
	if err != nil {
		log.Error().Err(err).Msg("failed to sign access token")
		return nil, err
	}

	metrics.TokensIssuedTotal.Inc()

	return &TokenResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
	}, nil
}
