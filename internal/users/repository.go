package users

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talentbridge/sales-crm-platform/internal/faults"
)

// Repository defines the interface for user storage.
type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	// ListActiveByRole returns active users with the given role ordered by
	// creation time; the bulk importer round-robins over this list.
	ListActiveByRole(ctx context.Context, role Role) ([]*User, error)
	Update(ctx context.Context, u *User) (*User, error)
}

// InMemoryRepository keeps users in memory; used in tests and when the server
// runs without a database.
type InMemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*User
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{users: make(map[string]*User)}
}

func (r *InMemoryRepository) Create(ctx context.Context, u *User) (*User, error) {
	cp := *u
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	if cp.Status == "" {
		cp.Status = StatusActive
	}
	now := time.Now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now

	r.mu.Lock()
	r.users[cp.ID] = &cp
	r.mu.Unlock()

	out := cp
	return &out, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, faults.NotFound("user", id)
	}
	cp := *u
	return &cp, nil
}

func (r *InMemoryRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, faults.NotFound("user", email)
}

func (r *InMemoryRepository) List(ctx context.Context) ([]*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *InMemoryRepository) ListActiveByRole(ctx context.Context, role Role) ([]*User, error) {
	all, _ := r.List(ctx)
	out := make([]*User, 0, len(all))
	for _, u := range all {
		if u.Role == role && u.Status == StatusActive {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, u *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.users[u.ID]
	if !ok {
		return nil, faults.NotFound("user", u.ID)
	}
	cp := *u
	cp.CreatedAt = cur.CreatedAt
	cp.UpdatedAt = time.Now().UTC()
	r.users[cp.ID] = &cp
	out := cp
	return &out, nil
}
