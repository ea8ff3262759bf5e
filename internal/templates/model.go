package templates

import (
	"time"

	"github.com/talentbridge/sales-crm-platform/internal/faults"
)

// Kind distinguishes the three template families the CRM ships.
type Kind string

const (
	KindProposal Kind = "proposal"
	KindEmail    Kind = "email"
	KindWhatsApp Kind = "whatsapp"
)

func (k Kind) Valid() bool {
	switch k {
	case KindProposal, KindEmail, KindWhatsApp:
		return true
	}
	return false
}

// Template is parametrized text with {{placeholder}} tokens. Subject is only
// meaningful for email templates.
type Template struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Kind         Kind      `json:"kind"`
	Subject      string    `json:"subject,omitempty"`
	Content      string    `json:"content"`
	Placeholders []string  `json:"placeholders"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Validate checks the shape rules for create and update.
func (t *Template) Validate() error {
	var v faults.ValidationError
	if t.Name == "" {
		v.Add("name", "is required")
	}
	if !t.Kind.Valid() {
		v.Add("kind", "must be one of proposal, email, whatsapp")
	}
	if t.Content == "" {
		v.Add("content", "is required")
	}
	if t.Kind.Valid() && t.Kind != KindEmail && t.Subject != "" {
		v.Add("subject", "is only valid for email templates")
	}
	return v.OrNil()
}

// ListFilter narrows template listings.
type ListFilter struct {
	Kind       Kind
	ActiveOnly bool
}
