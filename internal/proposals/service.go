package proposals

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/talentbridge/sales-crm-platform/internal/activity"
	"github.com/talentbridge/sales-crm-platform/internal/faults"
	"github.com/talentbridge/sales-crm-platform/internal/leads"
	"github.com/talentbridge/sales-crm-platform/internal/ratecards"
	"github.com/talentbridge/sales-crm-platform/internal/templates"
	"github.com/talentbridge/sales-crm-platform/pkg/logging"
)

// Service generates and tracks proposals. Creation snapshots the template id
// and the active rate card's version so the document stays stable after later
// pricing or template changes.
type Service struct {
	repo      Repository
	leads     leads.Repository
	templates *templates.Service
	ratecards *ratecards.Service
	audit     activity.Recorder
	logger    *logging.Logger
}

func NewService(repo Repository, leadRepo leads.Repository, tmpl *templates.Service,
	cards *ratecards.Service, audit activity.Recorder, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:      repo,
		leads:     leadRepo,
		templates: tmpl,
		ratecards: cards,
		audit:     audit,
		logger:    logger,
	}
}

// Create renders the template against the lead context plus caller-supplied
// values and persists a Draft proposal.
func (s *Service) Create(ctx context.Context, req *CreateRequest, actorID string) (*Proposal, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	lead, err := s.leads.GetByID(ctx, req.LeadID)
	if err != nil {
		return nil, err
	}
	card, err := s.ratecards.GetActive(ctx)
	if err != nil {
		return nil, faults.Invalid("rate_card", "no active rate card to price against")
	}

	values := leadValues(lead, card)
	for k, v := range req.Values {
		values[k] = v
	}

	rendered, err := s.templates.RenderByID(ctx, req.TemplateID, values)
	if err != nil {
		return nil, err
	}

	p := &Proposal{
		LeadID:          lead.ID,
		OwnerID:         actorID,
		TemplateID:      req.TemplateID,
		RateCardVersion: card.Version,
		SentVia:         req.SentVia,
		Status:          StatusDraft,
		Content:         rendered.Content,
	}
	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	s.recordActivity(ctx, created, activity.ActionCreate, map[string]any{
		"template_id":       created.TemplateID,
		"rate_card_version": created.RateCardVersion,
	}, actorID)
	return created, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Proposal, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByLead(ctx context.Context, leadID string) ([]*Proposal, error) {
	return s.repo.ListByLead(ctx, leadID)
}

// UpdateStatus accepts any enum value; the Draft→Sent→Viewed path is a UI
// convention, not a server-side constraint.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status, actorID string) (*Proposal, error) {
	if !status.Valid() {
		return nil, faults.Invalid("status", fmt.Sprintf("%q is not a known status", status))
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Status = status
	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		return nil, err
	}
	s.recordActivity(ctx, updated, activity.ActionUpdate, map[string]any{"status": status}, actorID)
	return updated, nil
}

// MarkSent stamps the send time, records the channel, and moves the proposal
// to Sent.
func (s *Service) MarkSent(ctx context.Context, id string, via Channel, actorID string) (*Proposal, error) {
	if via == "" || !via.Valid() {
		return nil, faults.Invalid("sent_via", "must be one of Email, WhatsApp, Both")
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	p.Status = StatusSent
	p.SentVia = via
	p.SentAt = &now
	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		return nil, err
	}
	s.recordActivity(ctx, updated, activity.ActionUpdate, map[string]any{
		"status":   StatusSent,
		"sent_via": via,
	}, actorID)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// leadValues exposes the lead and pricing context to template substitution.
func leadValues(l *leads.Lead, card *ratecards.RateCard) map[string]string {
	values := map[string]string{
		"company_name":      l.CompanyName,
		"industry_name":     l.IndustryName,
		"website_url":       l.WebsiteURL,
		"rate_card_version": card.Version,
	}
	if len(l.PointsOfContact) > 0 {
		values["contact_name"] = l.PointsOfContact[0].Name
		values["contact_email"] = l.PointsOfContact[0].Email
	}
	return values
}

func (s *Service) recordActivity(ctx context.Context, p *Proposal, action activity.Action, fields map[string]any, actorID string) {
	if s.audit == nil {
		return
	}
	var raw json.RawMessage
	if len(fields) > 0 {
		b, err := json.Marshal(fields)
		if err == nil {
			raw = b
		}
	}
	err := s.audit.Record(ctx, activity.Entry{
		EntityType:    "proposal",
		EntityID:      p.ID,
		LeadID:        p.LeadID,
		Action:        action,
		UpdatedFields: raw,
		ActorID:       actorID,
	})
	if err != nil {
		s.logger.Error("failed to record activity", "error", err, "proposal_id", p.ID, "action", action)
	}
}
