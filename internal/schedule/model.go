package schedule

import (
	"time"

	"github.com/talentbridge/sales-crm-platform/internal/faults"
)

// Status of a scheduled event. Completed and Cancelled are terminal.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Recurrence is stored as metadata; events are not expanded into instances.
type Recurrence string

const (
	RecurNone    Recurrence = "None"
	RecurDaily   Recurrence = "Daily"
	RecurWeekly  Recurrence = "Weekly"
	RecurMonthly Recurrence = "Monthly"
)

func (r Recurrence) Valid() bool {
	switch r {
	case "", RecurNone, RecurDaily, RecurWeekly, RecurMonthly:
		return true
	}
	return false
}

// Event is a calendar entry tied to a lead. Times are stored in UTC; Timezone
// records the wall-clock zone the event was scheduled in.
type Event struct {
	ID          string     `json:"id"`
	LeadID      string     `json:"lead_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	AssignedTo  string     `json:"assigned_to"`
	Start       time.Time  `json:"start"`
	End         time.Time  `json:"end"`
	Status      Status     `json:"status"`
	Recurring   Recurrence `json:"recurring,omitempty"`
	MeetingLink string     `json:"meeting_link,omitempty"`
	Timezone    string     `json:"timezone"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Validate checks the shape rules for create and update.
func (e *Event) Validate() error {
	var v faults.ValidationError
	if e.LeadID == "" {
		v.Add("lead_id", "is required")
	}
	if e.Title == "" {
		v.Add("title", "is required")
	}
	if e.Start.IsZero() || e.End.IsZero() {
		v.Add("start", "start and end are required")
	} else if !e.End.After(e.Start) {
		v.Add("end", "must be after start")
	}
	if !e.Recurring.Valid() {
		v.Add("recurring", "must be one of None, Daily, Weekly, Monthly")
	}
	if e.Timezone != "" {
		if _, err := time.LoadLocation(e.Timezone); err != nil {
			v.Add("timezone", "is not a known IANA zone")
		}
	}
	return v.OrNil()
}

// ListFilter narrows event listings.
type ListFilter struct {
	LeadID     string
	AssignedTo string
	Status     Status
	From       time.Time
	To         time.Time
}
