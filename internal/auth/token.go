package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token purposes carried in the "type" claim. A token presented for the
// wrong purpose (a refresh token where an access token is expected, or the
// reverse) must be rejected by the caller checking Claims.TokenType.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Default lifetimes used when the configured TTLs are zero.
const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

var (
	// ErrTokenExpired is returned by Decode for a well-formed token past
	// its expiry instant.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned by Decode for every other failure:
	// bad signature, wrong algorithm, malformed structure.
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims are the JWT claims issued by this service. Access tokens carry
// email and role for observability; refresh tokens carry neither, so a role
// change takes effect on the next refresh without reissuing the refresh
// token. Authorization always re-fetches the user record, never trusts the
// role claim.
type Claims struct {
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// UserID parses the numeric subject claim.
func (c *Claims) UserID() (uint64, error) {
	return strconv.ParseUint(c.Subject, 10, 64)
}

// Issuer signs and verifies access and refresh tokens with a shared HMAC
// secret. It is safe for concurrent use.
type Issuer struct {
	secret     []byte
	method     *jwt.SigningMethodHMAC
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewIssuer validates the signing configuration up front: the secret must
// be at least 32 characters and the algorithm one of HS256, HS384 or HS512.
// Misconfiguration fails here, not on first use.
func NewIssuer(secret, algorithm string, accessTTL, refreshTTL time.Duration) (*Issuer, error) {
	if len(secret) < 32 {
		return nil, errors.New("jwt secret must be at least 32 characters")
	}
	var method *jwt.SigningMethodHMAC
	switch algorithm {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported jwt algorithm %q", algorithm)
	}
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}
	return &Issuer{
		secret:     []byte(secret),
		method:     method,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// IssueAccess signs a short-lived access token carrying identity claims.
func (i *Issuer) IssueAccess(userID uint64, email, role string) (string, error) {
	return i.IssueAccessTTL(userID, email, role, i.accessTTL)
}

// IssueAccessTTL is IssueAccess with a caller-chosen lifetime.
func (i *Issuer) IssueAccessTTL(userID uint64, email, role string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		Email:     email,
		Role:      role,
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(i.method, claims).SignedString(i.secret)
}

// IssueRefresh signs a long-lived refresh token. Only the subject and the
// type discriminator go in; see the Claims doc for why.
func (i *Issuer) IssueRefresh(userID uint64) (string, error) {
	return i.IssueRefreshTTL(userID, i.refreshTTL)
}

// IssueRefreshTTL is IssueRefresh with a caller-chosen lifetime.
func (i *Issuer) IssueRefreshTTL(userID uint64, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		TokenType: TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(i.method, claims).SignedString(i.secret)
}

// Decode verifies signature and expiry and returns the claims. An expired
// token yields ErrTokenExpired; any other failure yields ErrTokenInvalid.
// Callers that must not distinguish the two should use DecodeSafe.
func (i *Issuer) Decode(token string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but our configured method.
		if t.Method.Alg() != i.method.Alg() {
			return nil, ErrTokenInvalid
		}
		return i.secret, nil
	}, jwt.WithValidMethods([]string{i.method.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !tok.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// DecodeSafe is Decode for call sites that only probe a token: both failure
// kinds collapse into a nil result.
func (i *Issuer) DecodeSafe(token string) *Claims {
	claims, err := i.Decode(token)
	if err != nil {
		return nil
	}
	return claims
}
