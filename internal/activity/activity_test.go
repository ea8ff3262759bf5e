package activity

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceRecordFillsDefaults(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO activities").
		WithArgs(sqlmock.AnyArg(), "lead", "l1", sqlmock.AnyArg(), string(ActionCreate),
			sqlmock.AnyArg(), "u1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	svc := NewService(db)
	err = svc.Record(context.Background(), Entry{
		EntityType: "lead",
		EntityID:   "l1",
		LeadID:     "l1",
		Action:     ActionCreate,
		ActorID:    "u1",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceQueryFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "entity_type", "entity_id", "lead_id", "action",
		"updated_fields", "actor_id", "created_at",
	}).AddRow("a1", "lead", "l1", "l1", string(ActionStageChange),
		[]byte(`{"stage":"Won"}`), "u1", now)

	mock.ExpectQuery("SELECT .+ FROM activities").
		WithArgs("l1", string(ActionStageChange)).
		WillReturnRows(rows)

	svc := NewService(db)
	entries, err := svc.Query(context.Background(), Filter{
		LeadID: "l1",
		Action: ActionStageChange,
		Limit:  10,
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "l1", entries[0].LeadID)
	assert.JSONEq(t, `{"stage":"Won"}`, string(entries[0].UpdatedFields))
}

func TestMemoryRecorderFiltersAndOrders(t *testing.T) {
	rec := NewMemoryRecorder()
	ctx := context.Background()

	require.NoError(t, rec.Record(ctx, Entry{EntityType: "lead", EntityID: "l1", LeadID: "l1", Action: ActionCreate, ActorID: "u1"}))
	require.NoError(t, rec.Record(ctx, Entry{EntityType: "lead", EntityID: "l1", LeadID: "l1", Action: ActionUpdate, ActorID: "u1",
		UpdatedFields: json.RawMessage(`{"stage":"Won"}`)}))
	require.NoError(t, rec.Record(ctx, Entry{EntityType: "proposal", EntityID: "p1", LeadID: "l2", Action: ActionCreate, ActorID: "u2"}))

	got, err := rec.Query(ctx, Filter{LeadID: "l1"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Newest first.
	assert.Equal(t, ActionUpdate, got[0].Action)
	assert.Equal(t, ActionCreate, got[1].Action)

	got, err = rec.Query(ctx, Filter{EntityType: "proposal"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].EntityID)
}
