package outreach

import (
	"context"

	"github.com/google/uuid"

	"github.com/talentbridge/sales-crm-platform/internal/faults"
	"github.com/talentbridge/sales-crm-platform/internal/observability/metrics"
	"github.com/talentbridge/sales-crm-platform/internal/templates"
	"github.com/talentbridge/sales-crm-platform/pkg/logging"
)

// DispatchRequest is one outbound message. Either an inline body or a stored
// template id (with substitution values) must be supplied.
type DispatchRequest struct {
	Channel    Channel           `json:"channel"`
	To         string            `json:"to"`
	ToName     string            `json:"to_name,omitempty"`
	Subject    string            `json:"subject,omitempty"`
	Body       string            `json:"body"`
	HTML       string            `json:"html,omitempty"`
	LeadID     string            `json:"lead_id,omitempty"`
	TemplateID string            `json:"template_id,omitempty"`
	Values     map[string]string `json:"values,omitempty"`
}

func (r *DispatchRequest) Validate() error {
	var v faults.ValidationError
	if !r.Channel.Valid() {
		v.Add("channel", "must be email or whatsapp")
	}
	if r.To == "" {
		v.Add("to", "is required")
	}
	if r.Body == "" && r.TemplateID == "" {
		v.Add("body", "body or template_id is required")
	}
	return v.OrNil()
}

// Dispatcher fans a message out to the channel's sender and opens a delivery
// record for status tracking.
type Dispatcher struct {
	email    EmailSender
	whatsapp WhatsAppSender
	status   *StatusStore
	metrics  *metrics.CRMMetrics
	logger   *logging.Logger

	templates *templates.Service
}

func NewDispatcher(email EmailSender, whatsapp WhatsAppSender, status *StatusStore,
	m *metrics.CRMMetrics, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{email: email, whatsapp: whatsapp, status: status, metrics: m, logger: logger}
}

// WithTemplates enables template-driven dispatch.
func (d *Dispatcher) WithTemplates(svc *templates.Service) *Dispatcher {
	d.templates = svc
	return d
}

// Dispatch sends the message and returns the delivery record tracking it.
// When a template id is given, subject and body come from the rendered
// template; an inline subject or body wins over the rendered one.
func (d *Dispatcher) Dispatch(ctx context.Context, req *DispatchRequest) (*Delivery, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.TemplateID != "" {
		if d.templates == nil {
			return nil, faults.Invalid("template_id", "template dispatch not configured")
		}
		rendered, err := d.templates.RenderByID(ctx, req.TemplateID, req.Values)
		if err != nil {
			return nil, err
		}
		if req.Subject == "" {
			req.Subject = rendered.Subject
		}
		if req.Body == "" {
			req.Body = rendered.Content
		}
	}

	var err error
	switch req.Channel {
	case ChannelEmail:
		if d.email == nil {
			return nil, faults.Infra("outreach: dispatch", errNoSender("email"))
		}
		err = d.email.Send(ctx, EmailMessage{
			To: req.To, ToName: req.ToName, Subject: req.Subject, Body: req.Body, HTML: req.HTML,
		})
	case ChannelWhatsApp:
		if d.whatsapp == nil {
			return nil, faults.Infra("outreach: dispatch", errNoSender("whatsapp"))
		}
		err = d.whatsapp.Send(ctx, WhatsAppMessage{To: req.To, Body: req.Body})
	}
	if err != nil {
		d.metrics.ObserveDispatch(string(req.Channel), "failed")
		return nil, faults.Infra("outreach: send", err)
	}
	d.metrics.ObserveDispatch(string(req.Channel), "sent")

	delivery := &Delivery{
		Ref:     uuid.NewString(),
		Channel: req.Channel,
		To:      req.To,
		Status:  StatusSent,
	}
	if d.status != nil {
		if err := d.status.Set(ctx, delivery); err != nil {
			// The message left the building; losing the tracking record is
			// logged, not surfaced.
			d.logger.Error("failed to record delivery", "ref", delivery.Ref, "error", err)
		}
	}
	d.logger.Info("message dispatched", "channel", req.Channel, "to", req.To, "ref", delivery.Ref, "lead_id", req.LeadID)
	return delivery, nil
}

type errNoSender string

func (e errNoSender) Error() string { return "no " + string(e) + " sender configured" }
