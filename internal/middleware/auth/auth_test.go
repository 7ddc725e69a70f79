package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/auth_service/internal/tokens"
)

type fakeChecker struct {
	claims *tokens.Claims
	err    error
	seen   string
}

func (f *fakeChecker) CheckAccess(_ context.Context, token string, _ []string) (*tokens.Claims, error) {
	f.seen = token
	return f.claims, f.err
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{header: "Bearer abc", want: "abc", ok: true},
		{header: "bearer abc", want: "abc", ok: true},
		{header: "Basic abc", ok: false},
		{header: "Bearer ", ok: false},
		{header: "abc", ok: false},
		{header: "", ok: false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set(echo.HeaderAuthorization, tt.header)
		}
		got, ok := BearerToken(req)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.want, got, tt.header)
	}
}

func serve(mw []echo.MiddlewareFunc, header string) (*httptest.ResponseRecorder, echo.Context) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, c
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	claims := &tokens.Claims{UserID: uuid.New(), Roles: []string{"user"}}
	chk := &fakeChecker{claims: claims}

	rec, c := serve([]echo.MiddlewareFunc{RequireAuth(chk)}, "Bearer good")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "good", chk.seen)
	assert.Same(t, claims, ClaimsFrom(c))
	assert.Equal(t, "good", TokenFrom(c))

	rec, _ = serve([]echo.MiddlewareFunc{RequireAuth(chk)}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = serve([]echo.MiddlewareFunc{RequireAuth(&fakeChecker{err: errors.New("revoked")})}, "Bearer bad")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"unauthorized"`)
}

func TestRequireRoles(t *testing.T) {
	t.Parallel()

	admin := &fakeChecker{claims: &tokens.Claims{UserID: uuid.New(), Roles: []string{"admin"}}}
	user := &fakeChecker{claims: &tokens.Claims{UserID: uuid.New(), Roles: []string{"user"}}}

	rec, _ := serve([]echo.MiddlewareFunc{RequireAuth(admin), RequireRoles("admin")}, "Bearer t")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = serve([]echo.MiddlewareFunc{RequireAuth(user), RequireRoles("admin")}, "Bearer t")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = serve([]echo.MiddlewareFunc{RequireRoles("admin")}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
