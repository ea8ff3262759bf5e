package outreach

import (
	"context"

	"github.com/talentbridge/sales-crm-platform/pkg/logging"
)

// WhatsAppMessage is an outbound WhatsApp text.
type WhatsAppMessage struct {
	To   string
	Body string
}

// WhatsAppSender abstracts the WhatsApp provider. No real provider is wired
// yet; the stub simulates a successful send so delivery tracking and dispatch
// accounting can be exercised end to end.
type WhatsAppSender interface {
	Send(ctx context.Context, msg WhatsAppMessage) error
}

// StubWhatsAppSender logs instead of sending.
type StubWhatsAppSender struct {
	senderID string
	logger   *logging.Logger
	Sent     []WhatsAppMessage
}

func NewStubWhatsAppSender(senderID string, logger *logging.Logger) *StubWhatsAppSender {
	if senderID == "" {
		senderID = "talentbridge"
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &StubWhatsAppSender{senderID: senderID, logger: logger}
}

func (s *StubWhatsAppSender) Send(ctx context.Context, msg WhatsAppMessage) error {
	s.Sent = append(s.Sent, msg)
	s.logger.Info("stub whatsapp sender: would send message", "from", s.senderID, "to", msg.To)
	return nil
}
