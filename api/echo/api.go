//nolint:varnamelen
package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	auth "github.com/ledgerkeep/auth"
	apierrors "github.com/ledgerkeep/auth/errors"
)

// OAuth2API exposes the authorization-code flow over HTTP. Both endpoints
// take form-encoded bodies and answer with a single JSON object, matching
// the redirect-based login flow of the client application.
type OAuth2API struct {
	service *auth.OAuthService
}

// NewOAuth2API initializes the OAuth2 API.
func NewOAuth2API(service *auth.OAuthService) *OAuth2API {
	return &OAuth2API{service: service}
}

// RegisterRoutes registers the OAuth2 routes.
func (oa *OAuth2API) RegisterRoutes(e *echo.Echo) {
	e.POST("/authorize", oa.AuthorizeHandler)
	e.POST("/token", oa.TokenHandler)
}

// AuthorizeResponse carries the issued authorization code back to the
// client, which presents it to /token together with its PKCE verifier.
type AuthorizeResponse struct {
	AuthCode string `json:"auth_code"`
}

// AuthorizeHandler handles POST /authorize. It requires client_id,
// redirect_uri and code_challenge form fields, issues a single-use code
// bound to the challenge, and returns it as JSON. The inputs are opaque
// strings; only presence is enforced here.
func (oa *OAuth2API) AuthorizeHandler(c echo.Context) error {
	clientID := c.FormValue("client_id")
	redirectURI := c.FormValue("redirect_uri")
	codeChallenge := c.FormValue("code_challenge")

	for _, f := range []struct{ name, value string }{
		{"client_id", clientID},
		{"redirect_uri", redirectURI},
		{"code_challenge", codeChallenge},
	} {
		if f.value == "" {
			return c.JSON(http.StatusBadRequest, apierrors.NewMissingField(f.name))
		}
	}

	code, err := oa.service.Authorize(c.Request().Context(), clientID, redirectURI, codeChallenge)
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate authorization code")
		return c.JSON(http.StatusInternalServerError, apierrors.NewCodeIssueFailed())
	}

	return c.JSON(http.StatusOK, AuthorizeResponse{AuthCode: code})
}

// TokenHandler handles POST /token. It requires grant_type, code and
// code_verifier form fields and exchanges a valid, unredeemed code whose
// verifier matches for a signed bearer token. Every failure maps to a fixed,
// non-leaky detail message; the code is consumed even when verification
// fails.
func (oa *OAuth2API) TokenHandler(c echo.Context) error {
	grantType := c.FormValue("grant_type")
	code := c.FormValue("code")
	codeVerifier := c.FormValue("code_verifier")

	for _, f := range []struct{ name, value string }{
		{"grant_type", grantType},
		{"code", code},
		{"code_verifier", codeVerifier},
	} {
		if f.value == "" {
			return c.JSON(http.StatusBadRequest, apierrors.NewMissingField(f.name))
		}
	}

	token, err := oa.service.Token(c.Request().Context(), grantType, code, codeVerifier)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUnsupportedGrantType):
			return c.JSON(http.StatusBadRequest, apierrors.NewUnsupportedGrantType())
		case errors.Is(err, auth.ErrInvalidCode):
			return c.JSON(http.StatusBadRequest, apierrors.NewInvalidCode())
		case errors.Is(err, auth.ErrInvalidVerifier):
			return c.JSON(http.StatusBadRequest, apierrors.NewInvalidVerifier())
		default:
			log.Error().Err(err).Msg("Token exchange failed")
			return c.JSON(http.StatusInternalServerError, apierrors.NewInternal())
		}
	}

	return c.JSON(http.StatusOK, token)
}
