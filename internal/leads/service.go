package leads

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/talentbridge/sales-crm-platform/internal/activity"
	"github.com/talentbridge/sales-crm-platform/internal/faults"
	"github.com/talentbridge/sales-crm-platform/internal/observability/metrics"
	"github.com/talentbridge/sales-crm-platform/internal/users"
	"github.com/talentbridge/sales-crm-platform/internal/validation"
	"github.com/talentbridge/sales-crm-platform/pkg/logging"
)

// Service owns creation, update, stage transition, contact management,
// locking and bulk operations for leads, and emits an activity entry for
// every mutation.
type Service struct {
	repo    Repository
	users   users.Repository
	audit   activity.Recorder
	metrics *metrics.CRMMetrics
	logger  *logging.Logger
}

// NewService wires the lead workflow engine.
func NewService(repo Repository, userRepo users.Repository, audit activity.Recorder, m *metrics.CRMMetrics, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:    repo,
		users:   userRepo,
		audit:   audit,
		metrics: m,
		logger:  logger,
	}
}

func (s *Service) actor(ctx context.Context, actorID string) (*users.User, error) {
	u, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, faults.NotPermitted("unknown user")
	}
	if !u.Active() {
		return nil, faults.NotPermitted("user is inactive")
	}
	return u, nil
}

// Create validates the form and persists a new lead. Stage defaults to New.
func (s *Service) Create(ctx context.Context, req *CreateLeadRequest, actorID string) (*Lead, error) {
	if _, err := s.actor(ctx, actorID); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		s.metrics.ObserveLeadMutation("create", "invalid")
		return nil, err
	}

	l := &Lead{
		CompanyName:      strings.TrimSpace(req.CompanyName),
		CompanyInfo:      req.CompanyInfo,
		CompanySize:      req.CompanySize,
		WebsiteURL:       strings.TrimSpace(req.WebsiteURL),
		CompanyEmail:     strings.TrimSpace(req.CompanyEmail),
		HiringNeeds:      req.HiringNeeds,
		LeadSource:       req.LeadSource,
		IndustryName:     strings.TrimSpace(req.IndustryName),
		LinkedInLink:     req.LinkedInLink,
		NoOfDesignations: req.NoOfDesignations,
		NoOfPositions:    req.NoOfPositions,
		Stage:            req.Stage,
		AssignedTo:       req.AssignedTo,
		AssignedBy:       actorID,
		PointsOfContact:  req.PointsOfContact,
	}
	if l.Stage == "" {
		l.Stage = StageNew
	}

	created, err := s.repo.Create(ctx, l)
	if err != nil {
		s.metrics.ObserveLeadMutation("create", "error")
		return nil, err
	}

	s.recordActivity(ctx, created.ID, activity.ActionCreate, map[string]any{
		"company_name": created.CompanyName,
		"stage":        created.Stage,
	}, actorID)
	s.metrics.ObserveLeadMutation("create", "ok")
	s.logger.Info("lead created", "id", created.ID, "company", created.CompanyName, "actor", actorID)

	return created, nil
}

// Get returns a lead by id.
func (s *Service) Get(ctx context.Context, id string) (*Lead, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns leads matching the filter.
func (s *Service) List(ctx context.Context, f ListFilter) ([]*Lead, error) {
	return s.repo.List(ctx, f)
}

// Update merges partial fields into the stored lead. Any field may change,
// including stage; the same lock policy as stage updates applies.
func (s *Service) Update(ctx context.Context, id string, req *UpdateLeadRequest, actorID string) (*Lead, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		s.metrics.ObserveLeadMutation("update", "invalid")
		return nil, err
	}

	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d := users.CanMutateLead(actor, l.Locked, l.LockedBy); !d.Allowed {
		s.metrics.ObserveLeadMutation("update", "denied")
		return nil, faults.NotPermitted(d.Reason)
	}

	diff := req.apply(l)
	if len(diff) == 0 {
		return l, nil
	}
	// Locking and unlocking track who holds the lock.
	if locked, ok := diff["locked"]; ok {
		if locked == true {
			l.LockedBy = actorID
		} else {
			l.LockedBy = ""
		}
		diff["locked_by"] = l.LockedBy
	}

	updated, err := s.repo.Update(ctx, l)
	if err != nil {
		s.metrics.ObserveLeadMutation("update", "error")
		return nil, err
	}

	s.recordActivity(ctx, id, activity.ActionUpdate, diff, actorID)
	s.metrics.ObserveLeadMutation("update", "ok")
	return updated, nil
}

// UpdateStage sets the lead's pipeline stage. Any enum member is reachable
// from any other; only enum closure and the lock policy are enforced.
func (s *Service) UpdateStage(ctx context.Context, id string, stage Stage, actorID string) (*Lead, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !stage.Valid() {
		s.metrics.ObserveLeadMutation("update_stage", "invalid")
		return nil, faults.Invalid("stage", fmt.Sprintf("%q is not a known stage", stage))
	}

	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d := users.CanMutateLead(actor, l.Locked, l.LockedBy); !d.Allowed {
		s.metrics.ObserveLeadMutation("update_stage", "denied")
		return nil, faults.NotPermitted(d.Reason)
	}
	if l.Stage == stage {
		return l, nil
	}

	l.Stage = stage
	updated, err := s.repo.Update(ctx, l)
	if err != nil {
		s.metrics.ObserveLeadMutation("update_stage", "error")
		return nil, err
	}

	s.recordActivity(ctx, id, activity.ActionUpdate, map[string]any{"stage": stage}, actorID)
	s.metrics.ObserveLeadMutation("update_stage", "ok")
	s.logger.Info("lead stage updated", "id", id, "stage", stage, "actor", actorID)
	return updated, nil
}

func validateContacts(contacts []PointOfContact) error {
	var v faults.ValidationError
	for _, c := range contacts {
		if !c.Stage.Valid() {
			v.Add("points_of_contact", fmt.Sprintf("%q is not a known contact stage", c.Stage))
		}
		if c.Phone != "" && !validation.ValidPhone(c.Phone) {
			v.Add("points_of_contact", "contact phone must contain 8 to 15 digits")
		}
		if c.Email != "" && !validation.ValidEmail(c.Email) {
			v.Add("points_of_contact", "contact email must be a valid email address")
		}
	}
	return v.OrNil()
}

// ReplaceContacts swaps the full contact collection. The creation-time
// "one contact with name and email" rule does not apply here.
func (s *Service) ReplaceContacts(ctx context.Context, id string, contacts []PointOfContact, actorID string) (*Lead, error) {
	return s.mutateContacts(ctx, id, actorID, func(l *Lead) error {
		l.PointsOfContact = contacts
		return nil
	})
}

// AddContact appends one contact.
func (s *Service) AddContact(ctx context.Context, id string, c PointOfContact, actorID string) (*Lead, error) {
	return s.mutateContacts(ctx, id, actorID, func(l *Lead) error {
		l.PointsOfContact = append(l.PointsOfContact, c)
		return nil
	})
}

// UpdateContact replaces the contact with the matching id.
func (s *Service) UpdateContact(ctx context.Context, id string, c PointOfContact, actorID string) (*Lead, error) {
	return s.mutateContacts(ctx, id, actorID, func(l *Lead) error {
		for i := range l.PointsOfContact {
			if l.PointsOfContact[i].ID == c.ID {
				l.PointsOfContact[i] = c
				return nil
			}
		}
		return faults.NotFound("contact", c.ID)
	})
}

// RemoveContact deletes the contact with the matching id.
func (s *Service) RemoveContact(ctx context.Context, id, contactID, actorID string) (*Lead, error) {
	return s.mutateContacts(ctx, id, actorID, func(l *Lead) error {
		for i := range l.PointsOfContact {
			if l.PointsOfContact[i].ID == contactID {
				l.PointsOfContact = append(l.PointsOfContact[:i], l.PointsOfContact[i+1:]...)
				return nil
			}
		}
		return faults.NotFound("contact", contactID)
	})
}

func (s *Service) mutateContacts(ctx context.Context, id, actorID string, mutate func(*Lead) error) (*Lead, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d := users.CanMutateLead(actor, l.Locked, l.LockedBy); !d.Allowed {
		s.metrics.ObserveLeadMutation("contacts", "denied")
		return nil, faults.NotPermitted(d.Reason)
	}
	if err := mutate(l); err != nil {
		return nil, err
	}
	if err := validateContacts(l.PointsOfContact); err != nil {
		s.metrics.ObserveLeadMutation("contacts", "invalid")
		return nil, err
	}

	updated, err := s.repo.Update(ctx, l)
	if err != nil {
		s.metrics.ObserveLeadMutation("contacts", "error")
		return nil, err
	}

	// The contact collection itself stays out of the audit snapshot.
	s.recordActivity(ctx, id, activity.ActionUpdate, map[string]any{
		"points_of_contact": fmt.Sprintf("%d contacts", len(updated.PointsOfContact)),
	}, actorID)
	s.metrics.ObserveLeadMutation("contacts", "ok")
	return updated, nil
}

// BulkAssignRequest applies an assignee and/or a stage to a set of leads.
type BulkAssignRequest struct {
	LeadIDs    []string `json:"lead_ids"`
	AssigneeID string   `json:"assignee_id,omitempty"`
	Stage      Stage    `json:"stage,omitempty"`
}

// BulkAssign processes each lead independently; one bad id never rolls back
// the others. Failures are collected per row.
func (s *Service) BulkAssign(ctx context.Context, req *BulkAssignRequest, actorID string) (*faults.BatchResult, error) {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if req.AssigneeID == "" && req.Stage == "" {
		return nil, faults.Invalid("request", "at least one of assignee_id or stage is required")
	}
	if req.Stage != "" && !req.Stage.Valid() {
		return nil, faults.Invalid("stage", fmt.Sprintf("%q is not a known stage", req.Stage))
	}
	if len(req.LeadIDs) == 0 {
		return nil, faults.Invalid("lead_ids", "must not be empty")
	}
	if req.AssigneeID != "" {
		if _, err := s.users.GetByID(ctx, req.AssigneeID); err != nil {
			return nil, faults.Invalid("assignee_id", "unknown user")
		}
	}

	res := &faults.BatchResult{Total: len(req.LeadIDs)}
	for _, id := range req.LeadIDs {
		l, err := s.repo.GetByID(ctx, id)
		if err != nil {
			res.Fail(id, "lead not found")
			continue
		}
		if d := users.CanMutateLead(actor, l.Locked, l.LockedBy); !d.Allowed {
			res.Fail(id, d.Reason)
			continue
		}

		diff := make(map[string]any)
		if req.AssigneeID != "" && l.AssignedTo != req.AssigneeID {
			l.AssignedTo = req.AssigneeID
			l.AssignedBy = actorID
			diff["assigned_to"] = req.AssigneeID
		}
		if req.Stage != "" && l.Stage != req.Stage {
			l.Stage = req.Stage
			diff["stage"] = req.Stage
		}
		if len(diff) == 0 {
			res.Done++
			continue
		}

		if _, err := s.repo.Update(ctx, l); err != nil {
			res.Fail(id, err.Error())
			continue
		}
		s.recordActivity(ctx, id, activity.ActionBulkAssign, diff, actorID)
		res.Done++
	}

	s.logger.Info("bulk assign finished", "total", res.Total, "done", res.Done, "failed", res.Failed, "actor", actorID)
	return res, nil
}

// Delete removes a lead. Admin only.
func (s *Service) Delete(ctx context.Context, id, actorID string) error {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return err
	}
	if !users.CanDeleteLead(actor) {
		return faults.NotPermitted("only admins may delete leads")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordActivity(ctx, id, activity.ActionDelete, nil, actorID)
	s.logger.Info("lead deleted", "id", id, "actor", actorID)
	return nil
}

// AddRemark appends a remark; the lead itself is not mutated.
func (s *Service) AddRemark(ctx context.Context, rm *Remark, actorID string) (*Remark, error) {
	if _, err := s.actor(ctx, actorID); err != nil {
		return nil, err
	}
	if !rm.Type.Valid() {
		return nil, faults.Invalid("type", fmt.Sprintf("%q is not a known remark type", rm.Type))
	}
	switch rm.Type {
	case RemarkText:
		if strings.TrimSpace(rm.Content) == "" {
			return nil, faults.Invalid("content", "is required for text remarks")
		}
	case RemarkFile:
		if rm.FileURL == "" {
			return nil, faults.Invalid("file_url", "is required for file remarks")
		}
	case RemarkVoice:
		if rm.VoiceURL == "" {
			return nil, faults.Invalid("voice_url", "is required for voice remarks")
		}
	}
	rm.AuthorID = actorID

	created, err := s.repo.AddRemark(ctx, rm)
	if err != nil {
		return nil, err
	}
	s.recordActivity(ctx, rm.LeadID, activity.ActionRemarkAdded, map[string]any{"remark_id": created.ID, "type": created.Type}, actorID)
	return created, nil
}

// DeleteRemark removes a remark by id. Admins may delete any remark,
// BD Executives only their own.
func (s *Service) DeleteRemark(ctx context.Context, leadID, remarkID, actorID string) error {
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return err
	}
	rm, err := s.repo.GetRemark(ctx, leadID, remarkID)
	if err != nil {
		return err
	}
	if !users.CanDeleteRemark(actor, rm.AuthorID) {
		return faults.NotPermitted("may not delete this remark")
	}
	if err := s.repo.DeleteRemark(ctx, leadID, remarkID); err != nil {
		return err
	}
	s.recordActivity(ctx, leadID, activity.ActionRemarkDeleted, map[string]any{"remark_id": remarkID}, actorID)
	return nil
}

// ListRemarks returns all remarks for a lead, oldest first.
func (s *Service) ListRemarks(ctx context.Context, leadID string) ([]*Remark, error) {
	if _, err := s.repo.GetByID(ctx, leadID); err != nil {
		return nil, err
	}
	return s.repo.ListRemarks(ctx, leadID)
}

// Activities returns the audit trail for a lead, newest first.
func (s *Service) Activities(ctx context.Context, leadID string, limit, offset int) ([]activity.Entry, error) {
	return s.audit.Query(ctx, activity.Filter{LeadID: leadID, Limit: limit, Offset: offset})
}

func (s *Service) recordActivity(ctx context.Context, leadID string, action activity.Action, fields map[string]any, actorID string) {
	var raw json.RawMessage
	if len(fields) > 0 {
		b, err := json.Marshal(fields)
		if err == nil {
			raw = b
		}
	}
	err := s.audit.Record(ctx, activity.Entry{
		EntityType:    "lead",
		EntityID:      leadID,
		LeadID:        leadID,
		Action:        action,
		UpdatedFields: raw,
		ActorID:       actorID,
	})
	if err != nil {
		// The mutation already happened; losing the audit entry is logged,
		// not surfaced to the caller.
		s.logger.Error("failed to record activity", "error", err, "lead_id", leadID, "action", action)
	}
}
