package model

import "time"

// Role names assignable to a user.  The users.role column stores one of
// these strings directly; authorization decisions compare against them and
// never consult the roles table, which holds reference metadata only.
const (
	RoleAdmin   = "admin"
	RoleAnalyst = "analyst"
	RolePartner = "partner"
	RoleUser    = "user"
)

// ValidRole reports whether s belongs to the closed set of role names.
func ValidRole(s string) bool {
	switch s {
	case RoleAdmin, RoleAnalyst, RolePartner, RoleUser:
		return true
	}
	return false
}

// User represents an account record as stored in the `users` table.  Each
// field corresponds to a column.  Emails are normalized to lowercase before
// every read or write so uniqueness is case-insensitive.  The json tags are
// omitted because handlers expose their own response types; PasswordHash in
// particular must never reach a response body.
//
// Fields:
//  ID            – primary key identifier of the user.
//  Email         – unique, lowercase email address.
//  Username      – optional unique handle (nullable).
//  PasswordHash  – bcrypt hash of the password.
//  FullName      – optional display name (nullable).
//  Role          – one of the Role* constants above.
//  IsActive      – whether the account may authenticate.
//  EmailVerified – whether the address passed verification.
//  LastLogin     – time of the most recent successful login (nullable).
//  CreatedAt     – timestamp of creation.
//  UpdatedAt     – timestamp of last update.
type User struct {
	ID            uint64     // users.id
	Email         string     // users.email
	Username      *string    // users.username (nullable)
	PasswordHash  string     // users.password_hash
	FullName      *string    // users.full_name (nullable)
	Role          string     // users.role
	IsActive      bool       // users.is_active
	EmailVerified bool       // users.email_verified
	LastLogin     *time.Time // users.last_login (nullable)
	CreatedAt     time.Time  // users.created_at
	UpdatedAt     time.Time  // users.updated_at
}

// Role represents a row in the `roles` table.  Higher Level means more
// privilege.  Kept as lookup data for clients that want to render role
// pickers; the authorization path works off User.Role alone.
//
// Fields:
//  ID          – numeric identifier of the role.
//  Name        – unique role name matching one of the Role* constants.
//  Description – human-readable summary of the role.
//  Level       – hierarchy level, higher = more privilege.
//  IsActive    – whether the role may still be assigned.
type Role struct {
	ID          uint8     // roles.id
	Name        string    // roles.name
	Description string    // roles.description
	Level       int       // roles.level
	IsActive    bool      // roles.is_active
	CreatedAt   time.Time // roles.created_at
	UpdatedAt   time.Time // roles.updated_at
}
