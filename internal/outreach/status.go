package outreach

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/talentbridge/sales-crm-platform/internal/faults"
)

// DeliveryStatus tracks an outbound message's progress.
type DeliveryStatus string

const (
	StatusSent      DeliveryStatus = "Sent"
	StatusDelivered DeliveryStatus = "Delivered"
	StatusOpened    DeliveryStatus = "Opened" // email terminal state
	StatusRead      DeliveryStatus = "Read"   // whatsapp terminal state
)

// next returns the follow-up state per channel, or "" when terminal.
func (s DeliveryStatus) next(channel Channel) DeliveryStatus {
	switch s {
	case StatusSent:
		return StatusDelivered
	case StatusDelivered:
		if channel == ChannelWhatsApp {
			return StatusRead
		}
		return StatusOpened
	}
	return ""
}

// Channel is the outbound medium.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
)

func (c Channel) Valid() bool {
	return c == ChannelEmail || c == ChannelWhatsApp
}

// Delivery is the tracked state of one outbound message.
type Delivery struct {
	Ref       string         `json:"ref"`
	Channel   Channel        `json:"channel"`
	To        string         `json:"to"`
	Status    DeliveryStatus `json:"status"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// StatusStore keeps delivery state in redis, keyed by dispatch ref. Entries
// expire after the retention window; delivery tracking is operational data,
// not the audit log.
type StatusStore struct {
	redis     *redis.Client
	retention time.Duration
}

func NewStatusStore(redisClient *redis.Client, retention time.Duration) *StatusStore {
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	return &StatusStore{redis: redisClient, retention: retention}
}

func (s *StatusStore) key(ref string) string {
	return fmt.Sprintf("outreach:delivery:%s", ref)
}

// Get retrieves the delivery for a dispatch ref.
func (s *StatusStore) Get(ctx context.Context, ref string) (*Delivery, error) {
	data, err := s.redis.Get(ctx, s.key(ref)).Bytes()
	if err == redis.Nil {
		return nil, faults.NotFound("delivery", ref)
	}
	if err != nil {
		return nil, fmt.Errorf("outreach: get delivery: %w", err)
	}

	var d Delivery
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("outreach: unmarshal delivery: %w", err)
	}
	return &d, nil
}

// Set stores the delivery state.
func (s *StatusStore) Set(ctx context.Context, d *Delivery) error {
	d.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("outreach: marshal delivery: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(d.Ref), data, s.retention).Err(); err != nil {
		return fmt.Errorf("outreach: set delivery: %w", err)
	}
	return nil
}

// Advance moves the delivery to its next state. Terminal deliveries are
// returned unchanged.
func (s *StatusStore) Advance(ctx context.Context, ref string) (*Delivery, error) {
	d, err := s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	next := d.Status.next(d.Channel)
	if next == "" {
		return d, nil
	}
	d.Status = next
	if err := s.Set(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}
