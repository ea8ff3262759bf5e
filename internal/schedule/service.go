package schedule

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/talentbridge/sales-crm-platform/internal/faults"
	"github.com/talentbridge/sales-crm-platform/pkg/logging"
)

// CalendarSync pushes event changes to an external calendar provider. The
// default implementation is a no-op; sync failures never fail the CRM write.
type CalendarSync interface {
	Push(ctx context.Context, e *Event) error
	Remove(ctx context.Context, eventID string) error
}

// NoopCalendarSync satisfies CalendarSync without an external provider.
type NoopCalendarSync struct{}

func (NoopCalendarSync) Push(ctx context.Context, e *Event) error      { return nil }
func (NoopCalendarSync) Remove(ctx context.Context, eventID string) error { return nil }

// MeetingLinkFunc mints a join URL for a new event.
type MeetingLinkFunc func() string

// MeetingLinkMinter mints join URLs under the given base URL.
func MeetingLinkMinter(baseURL string) MeetingLinkFunc {
	base := strings.TrimRight(baseURL, "/")
	return func() string {
		return fmt.Sprintf("%s/%s", base, uuid.NewString())
	}
}

// DefaultMeetingLink points at the hosted meeting redirector.
var DefaultMeetingLink = MeetingLinkMinter("https://meet.talentbridge.io")

// Service owns scheduled-event bookkeeping.
type Service struct {
	repo        Repository
	sync        CalendarSync
	meetingLink MeetingLinkFunc
	defaultTZ   string
	logger      *logging.Logger
}

func NewService(repo Repository, sync CalendarSync, linkFn MeetingLinkFunc, logger *logging.Logger) *Service {
	if sync == nil {
		sync = NoopCalendarSync{}
	}
	if linkFn == nil {
		linkFn = DefaultMeetingLink
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, sync: sync, meetingLink: linkFn, defaultTZ: "UTC", logger: logger}
}

// WithDefaultTimezone sets the timezone stamped on events created without one.
func (s *Service) WithDefaultTimezone(tz string) *Service {
	if tz != "" {
		s.defaultTZ = tz
	}
	return s
}

// Create validates and persists a Pending event, minting a meeting link when
// the caller did not bring one.
func (s *Service) Create(ctx context.Context, e *Event) (*Event, error) {
	if e.Status == "" {
		e.Status = StatusPending
	}
	if !e.Status.Valid() {
		return nil, faults.Invalid("status", fmt.Sprintf("%q is not a known status", e.Status))
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if e.Recurring == "" {
		e.Recurring = RecurNone
	}
	if e.Timezone == "" {
		e.Timezone = s.defaultTZ
	}
	if e.MeetingLink == "" {
		e.MeetingLink = s.meetingLink()
	}

	created, err := s.repo.Create(ctx, e)
	if err != nil {
		return nil, err
	}
	s.push(ctx, created)
	return created, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Event, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]*Event, error) {
	return s.repo.List(ctx, f)
}

// Update rewrites an event in place. Terminal events stay editable; the UI
// uses this to fix titles on completed meetings.
func (s *Service) Update(ctx context.Context, e *Event) (*Event, error) {
	if !e.Status.Valid() {
		return nil, faults.Invalid("status", fmt.Sprintf("%q is not a known status", e.Status))
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, e)
	if err != nil {
		return nil, err
	}
	s.push(ctx, updated)
	return updated, nil
}

// UpdateStatus moves the event to a new status.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (*Event, error) {
	if !status.Valid() {
		return nil, faults.Invalid("status", fmt.Sprintf("%q is not a known status", status))
	}
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	e.Status = status
	updated, err := s.repo.Update(ctx, e)
	if err != nil {
		return nil, err
	}
	s.push(ctx, updated)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.sync.Remove(ctx, id); err != nil {
		s.logger.Warn("calendar sync remove failed", "event", id, "error", err)
	}
	return nil
}

func (s *Service) push(ctx context.Context, e *Event) {
	if err := s.sync.Push(ctx, e); err != nil {
		s.logger.Warn("calendar sync push failed", "event", e.ID, "error", err)
	}
}
