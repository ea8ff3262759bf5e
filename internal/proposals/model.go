package proposals

import (
	"time"

	"github.com/talentbridge/sales-crm-platform/internal/faults"
)

// Channel says where a proposal was (or will be) sent.
type Channel string

const (
	ChannelEmail    Channel = "Email"
	ChannelWhatsApp Channel = "WhatsApp"
	ChannelBoth     Channel = "Both"
)

func (c Channel) Valid() bool {
	switch c {
	case "", ChannelEmail, ChannelWhatsApp, ChannelBoth:
		return true
	}
	return false
}

// Status is caller-driven; the usual path is Draft→Sent→Viewed→{Accepted,
// Rejected} but any enum value is accepted at any point.
type Status string

const (
	StatusDraft    Status = "Draft"
	StatusSent     Status = "Sent"
	StatusViewed   Status = "Viewed"
	StatusAccepted Status = "Accepted"
	StatusRejected Status = "Rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusViewed, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Proposal is a rendered, sendable document. TemplateID and RateCardVersion
// are snapshots taken at creation; later template or rate card edits do not
// touch existing proposals.
type Proposal struct {
	ID              string     `json:"id"`
	LeadID          string     `json:"lead_id"`
	OwnerID         string     `json:"owner_id"`
	TemplateID      string     `json:"template_id"`
	RateCardVersion string     `json:"rate_card_version"`
	SentVia         Channel    `json:"sent_via,omitempty"`
	Status          Status     `json:"status"`
	SentAt          *time.Time `json:"sent_at,omitempty"`
	Content         string     `json:"content"`
	PDFLink         string     `json:"pdf_link,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// CreateRequest carries everything proposal generation needs. Values feed the
// template's placeholder substitution on top of the lead-derived defaults.
type CreateRequest struct {
	LeadID     string            `json:"lead_id"`
	TemplateID string            `json:"template_id"`
	SentVia    Channel           `json:"sent_via,omitempty"`
	Values     map[string]string `json:"values,omitempty"`
}

func (r *CreateRequest) Validate() error {
	var v faults.ValidationError
	if r.LeadID == "" {
		v.Add("lead_id", "is required")
	}
	if r.TemplateID == "" {
		v.Add("template_id", "is required")
	}
	if !r.SentVia.Valid() {
		v.Add("sent_via", "must be one of Email, WhatsApp, Both")
	}
	return v.OrNil()
}
