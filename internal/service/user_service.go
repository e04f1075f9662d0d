package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/iliyamo/deal-pipeline/internal/apperr"
	"github.com/iliyamo/deal-pipeline/internal/model"
	"github.com/iliyamo/deal-pipeline/internal/repository"
)

// UserUpdate carries the optional fields of an admin user update. Nil
// means "leave unchanged".
type UserUpdate struct {
	FullName *string
	IsActive *bool
}

// UserService implements the admin-only user management operations. The
// last-admin invariant itself is enforced atomically by the store; this
// layer translates its sentinel into the client-facing error.
type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id uint64) (model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, apperr.NotFound("user", id)
	}
	return u, err
}

// List returns users with offset/limit pagination. The limit is clamped
// to 100.
func (s *UserService) List(ctx context.Context, offset, limit int) ([]model.User, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return s.users.List(ctx, offset, limit)
}

// Update applies an admin edit (display name, active flag) and returns the
// fresh record. Deactivating the last active admin is rejected.
func (s *UserService) Update(ctx context.Context, id uint64, upd UserUpdate) (model.User, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return model.User{}, err
	}

	if upd.FullName != nil {
		if err := s.users.UpdateFullName(ctx, id, upd.FullName); err != nil {
			return model.User{}, fmt.Errorf("update full name: %w", err)
		}
	}
	if upd.IsActive != nil {
		err := s.users.SetActive(ctx, id, *upd.IsActive)
		if errors.Is(err, repository.ErrLastAdmin) {
			return model.User{}, apperr.Validation("cannot deactivate the last admin user")
		}
		if err != nil {
			return model.User{}, fmt.Errorf("set active: %w", err)
		}
	}
	log.Printf("user %d updated", id)
	return s.Get(ctx, id)
}

// UpdateRole assigns a role from the closed enumeration and returns the
// fresh record. Demoting the last active admin is rejected.
func (s *UserService) UpdateRole(ctx context.Context, id uint64, role string) (model.User, error) {
	if !model.ValidRole(role) {
		return model.User{}, apperr.Validation(fmt.Sprintf("invalid role %q", role))
	}

	err := s.users.UpdateRole(ctx, id, role)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, apperr.NotFound("user", id)
	}
	if errors.Is(err, repository.ErrLastAdmin) {
		return model.User{}, apperr.Validation("cannot remove the last admin user")
	}
	if err != nil {
		return model.User{}, fmt.Errorf("update role: %w", err)
	}
	log.Printf("user %d role changed to %s", id, role)
	return s.Get(ctx, id)
}

// Delete removes a user. Deleting the last active admin is rejected.
func (s *UserService) Delete(ctx context.Context, id uint64) error {
	err := s.users.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("user", id)
	}
	if errors.Is(err, repository.ErrLastAdmin) {
		return apperr.Validation("cannot delete the last admin user")
	}
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	log.Printf("user %d deleted", id)
	return nil
}
