package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/deal-pipeline/internal/auth"
	"github.com/iliyamo/deal-pipeline/internal/model"
	"github.com/iliyamo/deal-pipeline/internal/repository"
	"github.com/iliyamo/deal-pipeline/internal/service"
)

// stubStore backs the auth service with a fixed set of users. Only the
// lookups the middleware path touches are functional.
type stubStore struct {
	users map[uint64]model.User
}

func (s *stubStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (s *stubStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (s *stubStore) Create(context.Context, *model.User) error                { return nil }
func (s *stubStore) EmailExists(context.Context, string) (bool, error)        { return false, nil }
func (s *stubStore) List(context.Context, int, int) ([]model.User, error)     { return nil, nil }
func (s *stubStore) TouchLastLogin(context.Context, uint64) error             { return nil }
func (s *stubStore) UpdatePasswordHash(context.Context, uint64, string) error { return nil }
func (s *stubStore) UpdateFullName(context.Context, uint64, *string) error    { return nil }
func (s *stubStore) UpdateRole(context.Context, uint64, string) error         { return nil }
func (s *stubStore) SetActive(context.Context, uint64, bool) error            { return nil }
func (s *stubStore) Delete(context.Context, uint64) error                     { return nil }

func newAuthFixture(t *testing.T) (*service.AuthService, *auth.Issuer) {
	t.Helper()
	issuer, err := auth.NewIssuer("0123456789abcdef0123456789abcdef", "HS256", 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	store := &stubStore{users: map[uint64]model.User{
		1: {ID: 1, Email: "alice@example.com", Role: model.RoleAnalyst, IsActive: true},
		2: {ID: 2, Email: "bob@example.com", Role: model.RoleUser, IsActive: false},
	}}
	return service.NewAuthService(store, issuer, bcrypt.MinCost, 8), issuer
}

func runProtected(t *testing.T, svc *service.AuthService, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		u, ok := CurrentUser(c)
		require.True(t, ok, "handler must see the authenticated user")
		return c.String(http.StatusOK, u.Email)
	}, Authenticate(svc))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"BEARER abc", "abc", true},
		{"Bearer  abc", "abc", true}, // extra whitespace collapses
		{"", "", false},
		{"Bearer", "", false},
		{"Bearer a b", "", false},
		{"Basic abc", "", false},
		{"abc", "", false},
	}
	for _, tc := range cases {
		token, ok := ExtractBearerToken(tc.header)
		assert.Equal(t, tc.ok, ok, "header %q", tc.header)
		assert.Equal(t, tc.token, token, "header %q", tc.header)
	}
}

func TestAuthenticateValidToken(t *testing.T) {
	svc, issuer := newAuthFixture(t)
	token, err := issuer.IssueAccess(1, "alice@example.com", model.RoleAnalyst)
	require.NoError(t, err)

	rec := runProtected(t, svc, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice@example.com", rec.Body.String())
}

func TestAuthenticateLowercaseScheme(t *testing.T) {
	svc, issuer := newAuthFixture(t)
	token, err := issuer.IssueAccess(1, "alice@example.com", model.RoleAnalyst)
	require.NoError(t, err)

	rec := runProtected(t, svc, "bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticateMissingHeader(t *testing.T) {
	svc, _ := newAuthFixture(t)
	rec := runProtected(t, svc, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
}

func TestAuthenticateMalformedHeader(t *testing.T) {
	svc, _ := newAuthFixture(t)
	for _, header := range []string{"Bearer", "Basic abc", "Bearer a b c"} {
		rec := runProtected(t, svc, header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
		assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"), "header %q", header)
	}
}

func TestAuthenticateRejectsRefreshToken(t *testing.T) {
	svc, issuer := newAuthFixture(t)
	token, err := issuer.IssueRefresh(1)
	require.NoError(t, err)

	rec := runProtected(t, svc, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateExpiredToken(t *testing.T) {
	svc, issuer := newAuthFixture(t)
	token, err := issuer.IssueAccessTTL(1, "alice@example.com", model.RoleAnalyst, -time.Minute)
	require.NoError(t, err)

	rec := runProtected(t, svc, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
}

func TestAuthenticateInactiveUser(t *testing.T) {
	svc, issuer := newAuthFixture(t)
	token, err := issuer.IssueAccess(2, "bob@example.com", model.RoleUser)
	require.NoError(t, err)

	rec := runProtected(t, svc, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	svc, issuer := newAuthFixture(t)
	token, err := issuer.IssueAccess(999, "ghost@example.com", model.RoleUser)
	require.NoError(t, err)

	rec := runProtected(t, svc, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
