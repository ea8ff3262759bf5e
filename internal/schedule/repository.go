package schedule

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talentbridge/sales-crm-platform/internal/faults"
)

// Repository is the storage port for scheduled events.
type Repository interface {
	Create(ctx context.Context, e *Event) (*Event, error)
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, f ListFilter) ([]*Event, error)
	Update(ctx context.Context, e *Event) (*Event, error)
	Delete(ctx context.Context, id string) error
}

// InMemoryRepository backs the demo deployment and the test suite.
type InMemoryRepository struct {
	mu     sync.RWMutex
	events map[string]*Event
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{events: make(map[string]*Event)}
}

func (r *InMemoryRepository) Create(ctx context.Context, e *Event) (*Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *e
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	r.events[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.events[id]
	if !ok {
		return nil, faults.NotFound("event", id)
	}
	cp := *e
	return &cp, nil
}

func (r *InMemoryRepository) List(ctx context.Context, f ListFilter) ([]*Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*Event{}
	for _, e := range r.events {
		if f.LeadID != "" && e.LeadID != f.LeadID {
			continue
		}
		if f.AssignedTo != "" && e.AssignedTo != f.AssignedTo {
			continue
		}
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		if !f.From.IsZero() && e.Start.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && e.Start.After(f.To) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, e *Event) (*Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[e.ID]; !ok {
		return nil, faults.NotFound("event", e.ID)
	}
	cp := *e
	cp.UpdatedAt = time.Now().UTC()
	r.events[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[id]; !ok {
		return faults.NotFound("event", id)
	}
	delete(r.events, id)
	return nil
}
