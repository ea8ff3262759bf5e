package leads

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talentbridge/sales-crm-platform/internal/faults"
)

// Repository defines the interface for lead storage.
type Repository interface {
	Create(ctx context.Context, l *Lead) (*Lead, error)
	GetByID(ctx context.Context, id string) (*Lead, error)
	List(ctx context.Context, f ListFilter) ([]*Lead, error)
	// Update performs a compare-and-swap on the lead's version token and
	// returns ErrVersionConflict when the stored version no longer matches.
	Update(ctx context.Context, l *Lead) (*Lead, error)
	Delete(ctx context.Context, id string) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	AddRemark(ctx context.Context, rm *Remark) (*Remark, error)
	GetRemark(ctx context.Context, leadID, remarkID string) (*Remark, error)
	DeleteRemark(ctx context.Context, leadID, remarkID string) error
	ListRemarks(ctx context.Context, leadID string) ([]*Remark, error)
}

// InMemoryRepository keeps leads in memory; used in tests and when the
// server runs without a database.
type InMemoryRepository struct {
	mu      sync.RWMutex
	leads   map[string]*Lead
	remarks map[string][]*Remark
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		leads:   make(map[string]*Lead),
		remarks: make(map[string][]*Remark),
	}
}

func cloneLead(l *Lead) *Lead {
	cp := *l
	cp.HiringNeeds = append([]HiringNeed(nil), l.HiringNeeds...)
	cp.PointsOfContact = append([]PointOfContact(nil), l.PointsOfContact...)
	return &cp
}

func (r *InMemoryRepository) Create(ctx context.Context, l *Lead) (*Lead, error) {
	cp := cloneLead(l)
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	for i := range cp.PointsOfContact {
		if cp.PointsOfContact[i].ID == "" {
			cp.PointsOfContact[i].ID = uuid.NewString()
		}
	}
	now := time.Now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	cp.Version = 1

	r.mu.Lock()
	r.leads[cp.ID] = cp
	r.mu.Unlock()

	return cloneLead(cp), nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.leads[id]
	if !ok {
		return nil, faults.NotFound("lead", id)
	}
	return cloneLead(l), nil
}

func (r *InMemoryRepository) List(ctx context.Context, f ListFilter) ([]*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Lead, 0, len(r.leads))
	for _, l := range r.leads {
		if f.Stage != "" && l.Stage != f.Stage {
			continue
		}
		if f.AssignedTo != "" && l.AssignedTo != f.AssignedTo {
			continue
		}
		out = append(out, cloneLead(l))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []*Lead{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, l *Lead) (*Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.leads[l.ID]
	if !ok {
		return nil, faults.NotFound("lead", l.ID)
	}
	if cur.Version != l.Version {
		return nil, ErrVersionConflict
	}

	cp := cloneLead(l)
	for i := range cp.PointsOfContact {
		if cp.PointsOfContact[i].ID == "" {
			cp.PointsOfContact[i].ID = uuid.NewString()
		}
	}
	cp.CreatedAt = cur.CreatedAt
	cp.UpdatedAt = time.Now().UTC()
	cp.Version = cur.Version + 1
	r.leads[cp.ID] = cp

	return cloneLead(cp), nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.leads[id]; !ok {
		return faults.NotFound("lead", id)
	}
	delete(r.leads, id)
	delete(r.remarks, id)
	return nil
}

func (r *InMemoryRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, l := range r.leads {
		if l.CompanyEmail == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryRepository) AddRemark(ctx context.Context, rm *Remark) (*Remark, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.leads[rm.LeadID]; !ok {
		return nil, faults.NotFound("lead", rm.LeadID)
	}
	cp := *rm
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	cp.CreatedAt = time.Now().UTC()
	r.remarks[cp.LeadID] = append(r.remarks[cp.LeadID], &cp)

	out := cp
	return &out, nil
}

func (r *InMemoryRepository) GetRemark(ctx context.Context, leadID, remarkID string) (*Remark, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rm := range r.remarks[leadID] {
		if rm.ID == remarkID {
			cp := *rm
			return &cp, nil
		}
	}
	return nil, faults.NotFound("remark", remarkID)
}

func (r *InMemoryRepository) DeleteRemark(ctx context.Context, leadID, remarkID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.remarks[leadID]
	for i, rm := range list {
		if rm.ID == remarkID {
			r.remarks[leadID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return faults.NotFound("remark", remarkID)
}

func (r *InMemoryRepository) ListRemarks(ctx context.Context, leadID string) ([]*Remark, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.remarks[leadID]
	out := make([]*Remark, 0, len(list))
	for _, rm := range list {
		cp := *rm
		out = append(out, &cp)
	}
	return out, nil
}
