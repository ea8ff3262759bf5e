package schedule

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentbridge/sales-crm-platform/internal/faults"
)

type recordingSync struct {
	pushed  []string
	removed []string
}

func (r *recordingSync) Push(ctx context.Context, e *Event) error {
	r.pushed = append(r.pushed, e.ID)
	return nil
}

func (r *recordingSync) Remove(ctx context.Context, eventID string) error {
	r.removed = append(r.removed, eventID)
	return nil
}

func validEvent() *Event {
	start := time.Date(2026, 9, 10, 14, 0, 0, 0, time.UTC)
	return &Event{
		LeadID:     "lead-1",
		Title:      "Intro call",
		AssignedTo: "user-1",
		Start:      start,
		End:        start.Add(30 * time.Minute),
		Timezone:   "Asia/Kolkata",
	}
}

func TestCreateDefaultsAndMeetingLink(t *testing.T) {
	sync := &recordingSync{}
	svc := NewService(NewInMemoryRepository(), sync, func() string { return "https://meet.example/abc" }, nil)

	created, err := svc.Create(context.Background(), validEvent())
	require.NoError(t, err)
	assert.Equal(t, StatusPending, created.Status)
	assert.Equal(t, RecurNone, created.Recurring)
	assert.Equal(t, "https://meet.example/abc", created.MeetingLink)
	assert.Equal(t, []string{created.ID}, sync.pushed)
}

func TestCreateUsesConfiguredLinkBaseAndTimezone(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), nil, MeetingLinkMinter("https://meet.example/"), nil).
		WithDefaultTimezone("Asia/Kolkata")

	e := validEvent()
	e.Timezone = ""
	created, err := svc.Create(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", created.Timezone)
	assert.True(t, strings.HasPrefix(created.MeetingLink, "https://meet.example/"))
	assert.NotEqual(t, "https://meet.example/", created.MeetingLink)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), nil, nil, nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*Event)
	}{
		{"missing lead", func(e *Event) { e.LeadID = "" }},
		{"missing title", func(e *Event) { e.Title = "" }},
		{"end before start", func(e *Event) { e.End = e.Start.Add(-time.Hour) }},
		{"zero-length", func(e *Event) { e.End = e.Start }},
		{"bad timezone", func(e *Event) { e.Timezone = "Mars/Olympus" }},
		{"bad recurrence", func(e *Event) { e.Recurring = Recurrence("Yearly") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEvent()
			tt.mutate(e)
			_, err := svc.Create(ctx, e)
			require.Error(t, err)
			assert.True(t, faults.IsValidation(err))
		})
	}
}

func TestRecurringStoredNotExpanded(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), nil, nil, nil)
	ctx := context.Background()

	e := validEvent()
	e.Recurring = RecurWeekly
	created, err := svc.Create(ctx, e)
	require.NoError(t, err)
	assert.Equal(t, RecurWeekly, created.Recurring)

	all, err := svc.List(ctx, ListFilter{LeadID: "lead-1"})
	require.NoError(t, err)
	assert.Len(t, all, 1, "a recurring event stays a single row")
}

func TestUpdateStatusTransitions(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), nil, nil, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, validEvent())
	require.NoError(t, err)

	done, err := svc.UpdateStatus(ctx, created.ID, StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)

	_, err = svc.UpdateStatus(ctx, created.ID, Status("Postponed"))
	require.Error(t, err)
	assert.True(t, faults.IsValidation(err))

	_, err = svc.UpdateStatus(ctx, "ghost", StatusCancelled)
	assert.True(t, faults.IsNotFound(err))
}

func TestListFilters(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), nil, nil, nil)
	ctx := context.Background()

	early := validEvent()
	_, err := svc.Create(ctx, early)
	require.NoError(t, err)

	late := validEvent()
	late.Start = early.Start.Add(48 * time.Hour)
	late.End = late.Start.Add(time.Hour)
	late.AssignedTo = "user-2"
	_, err = svc.Create(ctx, late)
	require.NoError(t, err)

	out, err := svc.List(ctx, ListFilter{AssignedTo: "user-2"})
	require.NoError(t, err)
	assert.Len(t, out, 1)

	out, err = svc.List(ctx, ListFilter{From: early.Start.Add(time.Hour)})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "user-2", out[0].AssignedTo)
}

func TestDeleteRemovesFromCalendar(t *testing.T) {
	sync := &recordingSync{}
	svc := NewService(NewInMemoryRepository(), sync, nil, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, validEvent())
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.Equal(t, []string{created.ID}, sync.removed)
}
