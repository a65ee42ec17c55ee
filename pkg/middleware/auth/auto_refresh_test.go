package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/apparel_shop/pkg/authclient"
	"github.com/Skotchmaster/apparel_shop/pkg/tokens"
)

var secret = []byte("test-jwt-secret")

type fakeRefresher struct {
	resp  *authclient.RefreshResponse
	err   error
	calls int
}

func (f *fakeRefresher) RefreshTokens(ctx context.Context, refreshToken, accessToken string) (*authclient.RefreshResponse, error) {
	f.calls++
	return f.resp, f.err
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, c.Get("user_id").(string))
}

func newCtx(req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func sign(t *testing.T, sub, role string, exp time.Time) string {
	t.Helper()
	tok, err := tokens.SignAccessToken(secret, sub, role, exp)
	require.NoError(t, err)
	return tok
}

func TestRequireAuth_BearerToken(t *testing.T) {
	userID := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+sign(t, userID, "user", time.Now().Add(time.Minute)))
	c, rec := newCtx(req)

	mw := NewAutoRefreshMiddleware(secret, nil)
	require.NoError(t, mw.RequireAuth(okHandler)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, rec.Body.String())
}

func TestRequireAuth_MissingToken(t *testing.T) {
	c, _ := newCtx(httptest.NewRequest(http.MethodGet, "/cart", nil))

	err := NewAutoRefreshMiddleware(secret, nil).RequireAuth(okHandler)(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireAdmin_Forbidden(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: sign(t, uuid.NewString(), "user", time.Now().Add(time.Minute))})
	c, _ := newCtx(req)

	err := NewAutoRefreshMiddleware(secret, nil).RequireAdmin(okHandler)(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, he.Code)
}

func TestRequireAuth_RefreshesExpiredCookie(t *testing.T) {
	userID := uuid.NewString()
	fresh := sign(t, userID, "user", time.Now().Add(time.Minute))
	ref := &fakeRefresher{resp: &authclient.RefreshResponse{
		AccessToken:  fresh,
		RefreshToken: "new-refresh",
		AccessExp:    time.Now().Add(time.Minute).Unix(),
		RefreshExp:   time.Now().Add(time.Hour).Unix(),
	}}

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: sign(t, userID, "user", time.Now().Add(-time.Minute))})
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "old-refresh"})
	c, rec := newCtx(req)

	require.NoError(t, NewAutoRefreshMiddleware(secret, ref).RequireAuth(okHandler)(c))
	assert.Equal(t, 1, ref.calls)
	assert.Equal(t, userID, rec.Body.String())
	assert.Contains(t, rec.Header().Values("Set-Cookie")[0], "accessToken="+fresh)
}

func TestRequireAuth_RefreshServiceDown(t *testing.T) {
	userID := uuid.NewString()
	ref := &fakeRefresher{err: authclient.ErrUnavailable}

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: sign(t, userID, "user", time.Now().Add(-time.Minute))})
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: "old-refresh"})
	c, _ := newCtx(req)

	err := NewAutoRefreshMiddleware(secret, ref).RequireAuth(okHandler)(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, he.Code)
}
