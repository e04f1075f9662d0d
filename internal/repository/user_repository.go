package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/deal-pipeline/internal/model"
)

const userColumns = "id,email,username,password_hash,full_name,role,is_active,email_verified,last_login,created_at,updated_at"

// UserRepo is the typed query surface over the `users` table. No business
// rules live here except the last-admin guard, which has to sit next to the
// transaction that makes it atomic.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

type scanner interface{ Scan(dest ...any) error }

func scanUser(s scanner) (model.User, error) {
	var u model.User
	err := s.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.FullName,
		&u.Role, &u.IsActive, &u.EmailVerified, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create inserts the user and fills in its assigned ID. The email is
// normalized to lowercase before the write.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, username, password_hash, full_name, role, is_active, email_verified) VALUES (?,?,?,?,?,?,?)",
		u.Email, u.Username, u.PasswordHash, u.FullName, u.Role, u.IsActive, u.EmailVerified)
	if err != nil {
		// 1062 = ER_DUP_ENTRY
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// EmailExists reports whether a user with the normalized email exists.
func (r *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE email=?)", email).Scan(&exists)
	return exists, err
}

// List returns users ordered by id with offset/limit pagination.
func (r *UserRepo) List(ctx context.Context, offset, limit int) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// TouchLastLogin stamps last_login with the current server time.
func (r *UserRepo) TouchLastLogin(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET last_login=NOW() WHERE id=?", id)
	return err
}

// UpdatePasswordHash replaces the stored password hash.
func (r *UserRepo) UpdatePasswordHash(ctx context.Context, id uint64, hash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=? WHERE id=?", hash, id)
	return err
}

// UpdateFullName sets the display name.
func (r *UserRepo) UpdateFullName(ctx context.Context, id uint64, fullName *string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET full_name=? WHERE id=?", fullName, id)
	return err
}

// CountActiveAdmins returns the number of users that keep the system
// administrable: active accounts with the admin role.
func (r *UserRepo) CountActiveAdmins(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE role=? AND is_active=1", model.RoleAdmin).Scan(&n)
	return n, err
}

// UpdateRole changes a user's role. Demoting an active admin runs through
// the last-admin guard; see guardedMutate.
func (r *UserRepo) UpdateRole(ctx context.Context, id uint64, role string) error {
	return r.guardedMutate(ctx, id, func(u model.User) bool {
		return u.Role == model.RoleAdmin && u.IsActive && role != model.RoleAdmin
	}, "UPDATE users SET role=? WHERE id=?", role, id)
}

// SetActive toggles the active flag. Deactivating an active admin runs
// through the last-admin guard.
func (r *UserRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	return r.guardedMutate(ctx, id, func(u model.User) bool {
		return u.Role == model.RoleAdmin && u.IsActive && !active
	}, "UPDATE users SET is_active=? WHERE id=?", active, id)
}

// Delete removes the user row. Deleting an active admin runs through the
// last-admin guard.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	return r.guardedMutate(ctx, id, func(u model.User) bool {
		return u.Role == model.RoleAdmin && u.IsActive
	}, "DELETE FROM users WHERE id=?", id)
}

// guardedMutate executes the mutation inside a transaction, retrying once
// when MySQL aborts the transaction as a deadlock victim. Demotions of two
// different admins lock their own row first and then wait on each other's
// in the admin count, which MySQL resolves by killing one transaction; the
// retry re-runs the victim against the committed state and gets either a
// clean write or ErrLastAdmin.
func (r *UserRepo) guardedMutate(ctx context.Context, id uint64, needsGuard func(model.User) bool, query string, args ...any) error {
	err := r.guardedMutateTx(ctx, id, needsGuard, query, args...)
	if isDeadlock(err) {
		err = r.guardedMutateTx(ctx, id, needsGuard, query, args...)
	}
	return err
}

// guardedMutateTx runs one attempt. The target row is locked first; when
// needsGuard says the change would cost an active admin, every active admin
// row is locked and counted before the write, so two concurrent demotions
// cannot both observe a count of two. A count of one aborts with
// ErrLastAdmin.
func (r *UserRepo) guardedMutateTx(ctx context.Context, id uint64, needsGuard func(model.User) bool, query string, args ...any) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	u, err := scanUser(tx.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1 FOR UPDATE", id))
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if needsGuard(u) {
		var admins int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM users WHERE role=? AND is_active=1 FOR UPDATE",
			model.RoleAdmin).Scan(&admins); err != nil {
			return err
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	return tx.Commit()
}

// isDeadlock matches MySQL error 1213 (ER_LOCK_DEADLOCK), reported when
// this transaction was chosen as the deadlock victim and rolled back.
func isDeadlock(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1213")
}
