package templates

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talentbridge/sales-crm-platform/internal/faults"
)

// Repository is the storage port for templates.
type Repository interface {
	Create(ctx context.Context, t *Template) (*Template, error)
	GetByID(ctx context.Context, id string) (*Template, error)
	List(ctx context.Context, f ListFilter) ([]*Template, error)
	Update(ctx context.Context, t *Template) (*Template, error)
	Delete(ctx context.Context, id string) error
}

// InMemoryRepository backs the demo deployment and the test suite.
type InMemoryRepository struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{templates: make(map[string]*Template)}
}

func cloneTemplate(t *Template) *Template {
	cp := *t
	cp.Placeholders = append([]string(nil), t.Placeholders...)
	return &cp
}

func (r *InMemoryRepository) Create(ctx context.Context, t *Template) (*Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := cloneTemplate(t)
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	r.templates[cp.ID] = cp
	return cloneTemplate(cp), nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.templates[id]
	if !ok {
		return nil, faults.NotFound("template", id)
	}
	return cloneTemplate(t), nil
}

func (r *InMemoryRepository) List(ctx context.Context, f ListFilter) ([]*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*Template{}
	for _, t := range r.templates {
		if f.Kind != "" && t.Kind != f.Kind {
			continue
		}
		if f.ActiveOnly && !t.Active {
			continue
		}
		out = append(out, cloneTemplate(t))
	}
	return out, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, t *Template) (*Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.templates[t.ID]; !ok {
		return nil, faults.NotFound("template", t.ID)
	}
	cp := cloneTemplate(t)
	cp.UpdatedAt = time.Now().UTC()
	r.templates[cp.ID] = cp
	return cloneTemplate(cp), nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.templates[id]; !ok {
		return faults.NotFound("template", id)
	}
	delete(r.templates, id)
	return nil
}
