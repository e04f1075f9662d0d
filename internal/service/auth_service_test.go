package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/deal-pipeline/internal/apperr"
	"github.com/iliyamo/deal-pipeline/internal/auth"
	"github.com/iliyamo/deal-pipeline/internal/model"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestAuthService(t *testing.T, store UserStore) *AuthService {
	t.Helper()
	issuer, err := auth.NewIssuer(testSecret, "HS256", 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	return NewAuthService(store, issuer, bcrypt.MinCost, 8)
}

func seedUser(t *testing.T, store *fakeUserStore, email, password, role string, active bool) uint64 {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	return store.seed(model.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     active,
	})
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
}

func TestRegister(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestAuthService(t, store)
	name := "Alice Smith"

	pair, err := svc.Register(context.Background(), " Alice@Example.COM ", "Secur3Pass!", &name)
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", pair.User.Email)
	assert.Equal(t, model.RoleUser, pair.User.Role)
	assert.True(t, pair.User.IsActive)
	assert.NotZero(t, pair.User.ID)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	// The returned access token resolves straight back to the new account.
	u, err := svc.Validate(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, pair.User.ID, u.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestAuthService(t, store)

	_, err := svc.Register(context.Background(), "alice@example.com", "Secur3Pass!", nil)
	require.NoError(t, err)

	// Case-insensitive: the normalized email collides.
	_, err = svc.Register(context.Background(), "ALICE@EXAMPLE.COM", "0therPass!", nil)
	assertCode(t, err, apperr.CodeDuplicate)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserStore())

	_, err := svc.Register(context.Background(), "not-an-email", "Secur3Pass!", nil)
	assertCode(t, err, apperr.CodeValidation)

	_, err = svc.Register(context.Background(), "", "Secur3Pass!", nil)
	assertCode(t, err, apperr.CodeValidation)

	_, err = svc.Register(context.Background(), "a@example.com", "short", nil)
	assertCode(t, err, apperr.CodeValidation)
}

func TestPasswordLengthCountedInRunes(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserStore())

	// Six Cyrillic letters take twelve bytes but are still too short.
	_, err := svc.Register(context.Background(), "a@example.com", "пароль", nil)
	assertCode(t, err, apperr.CodeValidation)

	// Eight runes pass regardless of byte count.
	_, err = svc.Register(context.Background(), "b@example.com", "парольны", nil)
	require.NoError(t, err)
}

func TestLogin(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestAuthService(t, store)
	id := seedUser(t, store, "alice@example.com", "Secur3Pass!", model.RoleAnalyst, true)

	pair, err := svc.Login(context.Background(), "Alice@Example.com", "Secur3Pass!")
	require.NoError(t, err)
	assert.Equal(t, id, pair.User.ID)
	assert.NotNil(t, pair.User.LastLogin)

	stored, err := store.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLogin)
}

func TestLoginFailuresIndistinguishable(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestAuthService(t, store)
	seedUser(t, store, "alice@example.com", "Secur3Pass!", model.RoleUser, true)
	seedUser(t, store, "bob@example.com", "Secur3Pass!", model.RoleUser, false)

	cases := map[string]struct{ email, password string }{
		"unknown email":    {"nobody@example.com", "Secur3Pass!"},
		"wrong password":   {"alice@example.com", "wrong-password"},
		"inactive account": {"bob@example.com", "Secur3Pass!"},
	}
	for name, tc := range cases {
		_, err := svc.Login(context.Background(), tc.email, tc.password)
		require.Error(t, err, name)
		assertCode(t, err, apperr.CodeUnauthorized)
		// One message for all three cases, so callers cannot probe emails.
		assert.EqualError(t, err, "invalid email or password", name)
	}
}

func TestRefresh(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestAuthService(t, store)
	seedUser(t, store, "alice@example.com", "Secur3Pass!", model.RoleUser, true)

	pair, err := svc.Login(context.Background(), "alice@example.com", "Secur3Pass!")
	require.NoError(t, err)

	access, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)

	u, err := svc.Validate(context.Background(), access)
	require.NoError(t, err)
	assert.Equal(t, pair.User.ID, u.ID)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestAuthService(t, store)
	seedUser(t, store, "alice@example.com", "Secur3Pass!", model.RoleUser, true)

	pair, err := svc.Login(context.Background(), "alice@example.com", "Secur3Pass!")
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), pair.AccessToken)
	assertCode(t, err, apperr.CodeUnauthorized)

	_, err = svc.Refresh(context.Background(), "garbage")
	assertCode(t, err, apperr.CodeUnauthorized)
}

func TestRefreshCarriesCurrentRole(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestAuthService(t, store)
	seedUser(t, store, "admin@example.com", "Secur3Pass!", model.RoleAdmin, true)
	id := seedUser(t, store, "alice@example.com", "Secur3Pass!", model.RoleUser, true)

	pair, err := svc.Login(context.Background(), "alice@example.com", "Secur3Pass!")
	require.NoError(t, err)

	// Promote after the refresh token was issued.
	require.NoError(t, store.UpdateRole(context.Background(), id, model.RoleAnalyst))

	access, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)

	u, err := svc.Validate(context.Background(), access)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAnalyst, u.Role)
}

func TestRefreshDeactivatedUser(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestAuthService(t, store)
	id := seedUser(t, store, "alice@example.com", "Secur3Pass!", model.RoleUser, true)

	pair, err := svc.Login(context.Background(), "alice@example.com", "Secur3Pass!")
	require.NoError(t, err)

	require.NoError(t, store.SetActive(context.Background(), id, false))

	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	assertCode(t, err, apperr.CodeUnauthorized)
}

func TestValidateRejectsRefreshToken(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestAuthService(t, store)
	seedUser(t, store, "alice@example.com", "Secur3Pass!", model.RoleUser, true)

	pair, err := svc.Login(context.Background(), "alice@example.com", "Secur3Pass!")
	require.NoError(t, err)

	_, err = svc.Validate(context.Background(), pair.RefreshToken)
	assertCode(t, err, apperr.CodeUnauthorized)
}

func TestValidateReturnsLiveRecord(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestAuthService(t, store)
	seedUser(t, store, "admin@example.com", "Secur3Pass!", model.RoleAdmin, true)
	id := seedUser(t, store, "alice@example.com", "Secur3Pass!", model.RoleUser, true)

	pair, err := svc.Login(context.Background(), "alice@example.com", "Secur3Pass!")
	require.NoError(t, err)

	// The role claim inside the token is stale after this; Validate must
	// return what the store says now.
	require.NoError(t, store.UpdateRole(context.Background(), id, model.RolePartner))

	u, err := svc.Validate(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, model.RolePartner, u.Role)

	require.NoError(t, store.SetActive(context.Background(), id, false))
	_, err = svc.Validate(context.Background(), pair.AccessToken)
	assertCode(t, err, apperr.CodeUnauthorized)
}

func TestChangePassword(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestAuthService(t, store)
	id := seedUser(t, store, "alice@example.com", "OldPass123", model.RoleUser, true)

	require.NoError(t, svc.ChangePassword(context.Background(), id, "OldPass123", "NewPass456"))

	_, err := svc.Login(context.Background(), "alice@example.com", "OldPass123")
	assertCode(t, err, apperr.CodeUnauthorized)

	_, err = svc.Login(context.Background(), "alice@example.com", "NewPass456")
	assert.NoError(t, err)
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestAuthService(t, store)
	id := seedUser(t, store, "alice@example.com", "OldPass123", model.RoleUser, true)

	err := svc.ChangePassword(context.Background(), id, "not-the-password", "NewPass456")
	assertCode(t, err, apperr.CodeUnauthorized)

	// Old password still works.
	_, err = svc.Login(context.Background(), "alice@example.com", "OldPass123")
	assert.NoError(t, err)
}

func TestChangePasswordTooShort(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestAuthService(t, store)
	id := seedUser(t, store, "alice@example.com", "OldPass123", model.RoleUser, true)

	err := svc.ChangePassword(context.Background(), id, "OldPass123", "short")
	assertCode(t, err, apperr.CodeValidation)

	// Byte count alone must not satisfy the minimum.
	err = svc.ChangePassword(context.Background(), id, "OldPass123", "пароль")
	assertCode(t, err, apperr.CodeValidation)
}

func TestChangePasswordUnknownUser(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserStore())
	err := svc.ChangePassword(context.Background(), 999, "OldPass123", "NewPass456")
	assertCode(t, err, apperr.CodeNotFound)
}
