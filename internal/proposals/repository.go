package proposals

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talentbridge/sales-crm-platform/internal/faults"
)

// Repository is the storage port for proposals.
type Repository interface {
	Create(ctx context.Context, p *Proposal) (*Proposal, error)
	GetByID(ctx context.Context, id string) (*Proposal, error)
	ListByLead(ctx context.Context, leadID string) ([]*Proposal, error)
	Update(ctx context.Context, p *Proposal) (*Proposal, error)
	Delete(ctx context.Context, id string) error
}

// InMemoryRepository backs the demo deployment and the test suite.
type InMemoryRepository struct {
	mu        sync.RWMutex
	proposals map[string]*Proposal
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{proposals: make(map[string]*Proposal)}
}

func cloneProposal(p *Proposal) *Proposal {
	cp := *p
	if p.SentAt != nil {
		t := *p.SentAt
		cp.SentAt = &t
	}
	return &cp
}

func (r *InMemoryRepository) Create(ctx context.Context, p *Proposal) (*Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := cloneProposal(p)
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	r.proposals[cp.ID] = cp
	return cloneProposal(cp), nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Proposal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.proposals[id]
	if !ok {
		return nil, faults.NotFound("proposal", id)
	}
	return cloneProposal(p), nil
}

func (r *InMemoryRepository) ListByLead(ctx context.Context, leadID string) ([]*Proposal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*Proposal{}
	for _, p := range r.proposals {
		if p.LeadID == leadID {
			out = append(out, cloneProposal(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, p *Proposal) (*Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.proposals[p.ID]; !ok {
		return nil, faults.NotFound("proposal", p.ID)
	}
	cp := cloneProposal(p)
	cp.UpdatedAt = time.Now().UTC()
	r.proposals[cp.ID] = cp
	return cloneProposal(cp), nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.proposals[id]; !ok {
		return faults.NotFound("proposal", id)
	}
	delete(r.proposals, id)
	return nil
}
