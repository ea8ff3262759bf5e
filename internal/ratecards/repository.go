package ratecards

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talentbridge/sales-crm-platform/internal/faults"
)

// Repository is the storage port for rate cards. Activate must be atomic:
// after it returns, the target card is the only active one.
type Repository interface {
	Create(ctx context.Context, rc *RateCard) (*RateCard, error)
	GetByID(ctx context.Context, id string) (*RateCard, error)
	GetActive(ctx context.Context) (*RateCard, error)
	List(ctx context.Context) ([]*RateCard, error)
	Update(ctx context.Context, rc *RateCard) (*RateCard, error)
	Activate(ctx context.Context, id string) (*RateCard, error)
	Delete(ctx context.Context, id string) error
}

// InMemoryRepository backs the demo deployment and the test suite.
type InMemoryRepository struct {
	mu    sync.RWMutex
	cards map[string]*RateCard
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{cards: make(map[string]*RateCard)}
}

func cloneCard(rc *RateCard) *RateCard {
	cp := *rc
	cp.Items = append([]Item(nil), rc.Items...)
	return &cp
}

func (r *InMemoryRepository) Create(ctx context.Context, rc *RateCard) (*RateCard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := cloneCard(rc)
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	for i := range cp.Items {
		if cp.Items[i].ID == "" {
			cp.Items[i].ID = uuid.NewString()
		}
	}
	now := time.Now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	cp.Active = false
	r.cards[cp.ID] = cp
	return cloneCard(cp), nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*RateCard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rc, ok := r.cards[id]
	if !ok {
		return nil, faults.NotFound("rate card", id)
	}
	return cloneCard(rc), nil
}

func (r *InMemoryRepository) GetActive(ctx context.Context) (*RateCard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rc := range r.cards {
		if rc.Active {
			return cloneCard(rc), nil
		}
	}
	return nil, faults.NotFound("rate card", "active")
}

func (r *InMemoryRepository) List(ctx context.Context) ([]*RateCard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*RateCard{}
	for _, rc := range r.cards {
		out = append(out, cloneCard(rc))
	}
	return out, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, rc *RateCard) (*RateCard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.cards[rc.ID]
	if !ok {
		return nil, faults.NotFound("rate card", rc.ID)
	}
	cp := cloneCard(rc)
	cp.Active = stored.Active
	cp.CreatedAt = stored.CreatedAt
	cp.UpdatedAt = time.Now().UTC()
	for i := range cp.Items {
		if cp.Items[i].ID == "" {
			cp.Items[i].ID = uuid.NewString()
		}
	}
	r.cards[cp.ID] = cp
	return cloneCard(cp), nil
}

func (r *InMemoryRepository) Activate(ctx context.Context, id string) (*RateCard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, ok := r.cards[id]
	if !ok {
		return nil, faults.NotFound("rate card", id)
	}
	for _, rc := range r.cards {
		rc.Active = false
	}
	target.Active = true
	target.UpdatedAt = time.Now().UTC()
	return cloneCard(target), nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.cards[id]; !ok {
		return faults.NotFound("rate card", id)
	}
	delete(r.cards, id)
	return nil
}
