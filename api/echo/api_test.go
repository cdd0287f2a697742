package echo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/ledgerkeep/auth"
	"github.com/ledgerkeep/auth/cache"
	"github.com/ledgerkeep/auth/domain"
)

// downStore simulates an unreachable backing store.
type downStore struct{}

func (downStore) Put(context.Context, string, *domain.AuthCodeRecord, time.Duration) bool {
	return false
}
func (downStore) Get(context.Context, string) (*domain.AuthCodeRecord, bool)  { return nil, false }
func (downStore) Delete(context.Context, string) int64                        { return 0 }
func (downStore) Take(context.Context, string) (*domain.AuthCodeRecord, bool) { return nil, false }

func setupAPI(t *testing.T) (*echo.Echo, *auth.TokenService) {
	t.Helper()

	store := cache.NewMemoryCodeStore()
	t.Cleanup(store.Stop)

	tokens, err := auth.NewTokenService("test-secret", "HS256", 30*time.Minute)
	require.NoError(t, err)

	service := auth.NewOAuthService(store, tokens, 10*time.Minute)

	e := echo.New()
	NewOAuth2API(service).RegisterRoutes(e)

	return e, tokens
}

func postForm(e *echo.Echo, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func authorize(t *testing.T, e *echo.Echo, challenge string) string {
	t.Helper()

	rec := postForm(e, "/authorize", url.Values{
		"client_id":      {"abc"},
		"redirect_uri":   {"https://cb"},
		"code_challenge": {challenge},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AuthorizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AuthCode)

	return resp.AuthCode
}

func detailOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["detail"]
}

func TestAuthorizeEndpoint(t *testing.T) {
	e, _ := setupAPI(t)

	code := authorize(t, e, auth.ComputeCodeChallenge("verifier1"))
	assert.NotEmpty(t, code)
}

func TestAuthorizeEndpoint_MissingField(t *testing.T) {
	e, _ := setupAPI(t)

	rec := postForm(e, "/authorize", url.Values{
		"client_id":    {"abc"},
		"redirect_uri": {"https://cb"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required field: code_challenge", detailOf(t, rec))
}

func TestTokenEndpoint_EndToEnd(t *testing.T) {
	e, tokens := setupAPI(t)

	code := authorize(t, e, auth.ComputeCodeChallenge("verifier1"))

	rec := postForm(e, "/token", url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"code_verifier": {"verifier1"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp auth.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "bearer", resp.TokenType)

	claims, err := tokens.Validate(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "abc", claims.Subject)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), claims.ExpiresAt.Time, 5*time.Second)

	// Replaying the code fails.
	rec = postForm(e, "/token", url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"code_verifier": {"verifier1"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid or expired code", detailOf(t, rec))
}

func TestTokenEndpoint_UnsupportedGrantType(t *testing.T) {
	e, _ := setupAPI(t)

	rec := postForm(e, "/token", url.Values{
		"grant_type":    {"refresh_token"},
		"code":          {"whatever"},
		"code_verifier": {"verifier1"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Unsupported grant type", detailOf(t, rec))
}

func TestTokenEndpoint_InvalidCode(t *testing.T) {
	e, _ := setupAPI(t)

	rec := postForm(e, "/token", url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {"never-issued"},
		"code_verifier": {"verifier1"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid or expired code", detailOf(t, rec))
}

func TestTokenEndpoint_WrongVerifierThenRetry(t *testing.T) {
	e, _ := setupAPI(t)

	code := authorize(t, e, auth.ComputeCodeChallenge("verifier1"))

	rec := postForm(e, "/token", url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"code_verifier": {"wrong"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid code verifier", detailOf(t, rec))

	// The mismatch consumed the code: a correct-verifier retry fails too.
	rec = postForm(e, "/token", url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"code_verifier": {"verifier1"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid or expired code", detailOf(t, rec))
}

func TestAuthorizeEndpoint_StoreFailure(t *testing.T) {
	tokens, err := auth.NewTokenService("test-secret", "HS256", time.Minute)
	require.NoError(t, err)
	service := auth.NewOAuthService(downStore{}, tokens, time.Minute)

	e := echo.New()
	NewOAuth2API(service).RegisterRoutes(e)

	rec := postForm(e, "/authorize", url.Values{
		"client_id":      {"abc"},
		"redirect_uri":   {"https://cb"},
		"code_challenge": {auth.ComputeCodeChallenge("verifier1")},
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to generate authorization code", detailOf(t, rec))
}

func TestTokenEndpoint_MissingField(t *testing.T) {
	e, _ := setupAPI(t)

	rec := postForm(e, "/token", url.Values{
		"grant_type": {"authorization_code"},
		"code":       {"some-code"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required field: code_verifier", detailOf(t, rec))
}
