package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/deal-pipeline/internal/model"
	"github.com/iliyamo/deal-pipeline/internal/repository"
)

// fakeUserStore is an in-memory UserStore. It honors the same contract as
// the SQL implementation: unique lowercase emails, sentinel errors, and the
// atomic last-admin guard on role changes, deactivation and deletion. The
// mutex makes the guard check and the write a single critical section,
// mirroring the row locks the real store takes.
type fakeUserStore struct {
	mu    sync.Mutex
	seq   uint64
	users map[uint64]model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uint64]model.User)}
}

// seed inserts a user directly, bypassing validation. Returns the id.
func (f *fakeUserStore) seed(u model.User) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	u.ID = f.seq
	u.Email = strings.ToLower(u.Email)
	u.CreatedAt = time.Now().UTC()
	f.users[u.ID] = u
	return u.ID
}

func (f *fakeUserStore) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	email := strings.ToLower(u.Email)
	for _, existing := range f.users {
		if existing.Email == email {
			return repository.ErrEmailExists
		}
	}
	f.seq++
	u.ID = f.seq
	u.Email = email
	u.CreatedAt = time.Now().UTC()
	f.users[u.ID] = *u
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = strings.ToLower(email)
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUserStore) EmailExists(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = strings.ToLower(email)
	for _, u := range f.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserStore) List(_ context.Context, offset, limit int) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeUserStore) TouchLastLogin(_ context.Context, id uint64) error {
	return f.mutate(id, func(u *model.User) {
		now := time.Now().UTC()
		u.LastLogin = &now
	})
}

func (f *fakeUserStore) UpdatePasswordHash(_ context.Context, id uint64, hash string) error {
	return f.mutate(id, func(u *model.User) { u.PasswordHash = hash })
}

func (f *fakeUserStore) UpdateFullName(_ context.Context, id uint64, fullName *string) error {
	return f.mutate(id, func(u *model.User) { u.FullName = fullName })
}

func (f *fakeUserStore) UpdateRole(_ context.Context, id uint64, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if u.IsActive && u.Role == model.RoleAdmin && role != model.RoleAdmin &&
		f.activeAdminsLocked() <= 1 {
		return repository.ErrLastAdmin
	}
	u.Role = role
	f.users[id] = u
	return nil
}

func (f *fakeUserStore) SetActive(_ context.Context, id uint64, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if u.IsActive && u.Role == model.RoleAdmin && !active &&
		f.activeAdminsLocked() <= 1 {
		return repository.ErrLastAdmin
	}
	u.IsActive = active
	f.users[id] = u
	return nil
}

func (f *fakeUserStore) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if u.IsActive && u.Role == model.RoleAdmin && f.activeAdminsLocked() <= 1 {
		return repository.ErrLastAdmin
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserStore) activeAdmins() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.activeAdminsLocked()
}

func (f *fakeUserStore) activeAdminsLocked() int {
	n := 0
	for _, u := range f.users {
		if u.Role == model.RoleAdmin && u.IsActive {
			n++
		}
	}
	return n
}

func (f *fakeUserStore) mutate(id uint64, fn func(*model.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&u)
	f.users[id] = u
	return nil
}
