// Package service holds the orchestration layer between handlers and
// repositories: authentication flows, user administration and event
// publishing.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iliyamo/deal-pipeline/internal/apperr"
	"github.com/iliyamo/deal-pipeline/internal/auth"
	"github.com/iliyamo/deal-pipeline/internal/model"
	"github.com/iliyamo/deal-pipeline/internal/repository"
)

// The single message returned for a missing user, an inactive account and a
// wrong password. Keeping the three cases indistinguishable stops callers
// probing which emails are registered.
const msgInvalidCredentials = "invalid email or password"

// UserStore is the persistence surface the services need. *repository.UserRepo
// satisfies it; tests substitute an in-memory fake.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uint64) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, offset, limit int) ([]model.User, error)
	TouchLastLogin(ctx context.Context, id uint64) error
	UpdatePasswordHash(ctx context.Context, id uint64, hash string) error
	UpdateFullName(ctx context.Context, id uint64, fullName *string) error
	UpdateRole(ctx context.Context, id uint64, role string) error
	SetActive(ctx context.Context, id uint64, active bool) error
	Delete(ctx context.Context, id uint64) error
}

// TokenPair is what a successful registration or login hands back.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	User         model.User
}

// AuthService composes the password hasher, the token issuer and the user
// store into the registration, login, refresh and validation flows.
type AuthService struct {
	users          UserStore
	issuer         *auth.Issuer
	bcryptCost     int
	passwordMinLen int
}

func NewAuthService(users UserStore, issuer *auth.Issuer, bcryptCost, passwordMinLen int) *AuthService {
	return &AuthService{
		users:          users,
		issuer:         issuer,
		bcryptCost:     bcryptCost,
		passwordMinLen: passwordMinLen,
	}
}

// Register creates an account with the default role and returns a token
// pair so the client is authenticated immediately.
func (s *AuthService) Register(ctx context.Context, email, password string, fullName *string) (*TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.Validation("invalid email format")
	}
	// Counted in runes, not bytes, so multibyte passwords are measured the
	// way users perceive their length.
	if utf8.RuneCountInString(password) < s.passwordMinLen {
		return nil, apperr.Validation(fmt.Sprintf("password must be at least %d characters", s.passwordMinLen))
	}

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		log.Printf("registration attempt with existing email: %s", email)
		return nil, apperr.Duplicate("user", email)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := model.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Role:         model.RoleUser,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, &u); err != nil {
		// A concurrent registration can slip past the EmailExists check;
		// the unique constraint is the source of truth.
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, apperr.Duplicate("user", email)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	log.Printf("user registered: %s", email)

	return s.issuePair(u)
}

// Login verifies credentials and returns a fresh token pair. A missing
// user, an inactive account and a bad password all yield the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		log.Printf("login attempt with unknown email: %s", email)
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !u.IsActive {
		log.Printf("login attempt on inactive account: %s", email)
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}
	if !auth.VerifyPassword(u.PasswordHash, password) {
		log.Printf("failed login for %s", email)
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}

	if err := s.users.TouchLastLogin(ctx, u.ID); err != nil {
		log.Printf("update last login for %d: %v", u.ID, err)
	}
	now := time.Now().UTC()
	u.LastLogin = &now

	return s.issuePair(u)
}

// Refresh mints a new access token from a refresh token. The user record
// is re-fetched so the access token always carries the current stored
// role, not whatever role the account had when the refresh token was
// issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.issuer.Decode(refreshToken)
	if err != nil {
		return "", apperr.Unauthorized("invalid refresh token")
	}
	if claims.TokenType != auth.TokenTypeRefresh {
		return "", apperr.Unauthorized("invalid token type")
	}
	id, err := claims.UserID()
	if err != nil {
		return "", apperr.Unauthorized("invalid refresh token")
	}

	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return "", apperr.Unauthorized("user not found or inactive")
	}
	if err != nil {
		return "", fmt.Errorf("load user: %w", err)
	}
	if !u.IsActive {
		return "", apperr.Unauthorized("user not found or inactive")
	}

	access, err := s.issuer.IssueAccess(u.ID, u.Email, u.Role)
	if err != nil {
		return "", fmt.Errorf("issue access token: %w", err)
	}
	return access, nil
}

// Validate resolves an access token to the live user record. Tokens prove
// identity only; role and active state are read from the store on every
// call so revoking either takes effect immediately.
func (s *AuthService) Validate(ctx context.Context, accessToken string) (model.User, error) {
	claims, err := s.issuer.Decode(accessToken)
	if err != nil {
		return model.User{}, apperr.Unauthorized("invalid token")
	}
	if claims.TokenType != auth.TokenTypeAccess {
		return model.User{}, apperr.Unauthorized("invalid token type")
	}
	id, err := claims.UserID()
	if err != nil {
		return model.User{}, apperr.Unauthorized("invalid token")
	}

	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, apperr.Unauthorized("user not found or inactive")
	}
	if err != nil {
		return model.User{}, fmt.Errorf("load user: %w", err)
	}
	if !u.IsActive {
		return model.User{}, apperr.Unauthorized("user not found or inactive")
	}
	return u, nil
}

// ChangePassword verifies the old password before storing a hash of the
// new one.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint64, oldPassword, newPassword string) error {
	u, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("user", userID)
	}
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	if !auth.VerifyPassword(u.PasswordHash, oldPassword) {
		log.Printf("password change with wrong current password for user %d", userID)
		return apperr.Unauthorized("current password is incorrect")
	}
	if utf8.RuneCountInString(newPassword) < s.passwordMinLen {
		return apperr.Validation(fmt.Sprintf("new password must be at least %d characters", s.passwordMinLen))
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("store password: %w", err)
	}
	log.Printf("password changed for user %d", userID)
	return nil
}

func (s *AuthService) issuePair(u model.User) (*TokenPair, error) {
	access, err := s.issuer.IssueAccess(u.ID, u.Email, u.Role)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.issuer.IssueRefresh(u.ID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh, User: u}, nil
}
