// Package activity records the append-only audit trail for CRM mutations.
package activity

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Action identifies what kind of mutation an entry records.
type Action string

const (
	ActionCreate        Action = "create"
	ActionUpdate        Action = "update"
	ActionDelete        Action = "delete"
	ActionStageChange   Action = "stage_change"
	ActionBulkAssign    Action = "bulk_assign"
	ActionImport        Action = "import"
	ActionRemarkAdded   Action = "remark_added"
	ActionRemarkDeleted Action = "remark_deleted"
)

// Entry is an immutable audit record. UpdatedFields holds a JSON snapshot of
// the changed fields; large sub-collections are excluded by the callers.
type Entry struct {
	ID            string          `json:"id"`
	EntityType    string          `json:"entity_type"`
	EntityID      string          `json:"entity_id"`
	LeadID        string          `json:"lead_id,omitempty"`
	Action        Action          `json:"action"`
	UpdatedFields json.RawMessage `json:"updated_fields,omitempty"`
	ActorID       string          `json:"actor_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Filter specifies criteria for querying the trail.
type Filter struct {
	LeadID     string
	EntityType string
	Action     Action
	StartTime  time.Time
	EndTime    time.Time
	Limit      int
	Offset     int
}

// Recorder is the write/read interface the domain services depend on.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
	Query(ctx context.Context, f Filter) ([]Entry, error)
}

// Service persists activity entries in the relational database.
type Service struct {
	db *sql.DB
}

// NewService creates an activity service.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Record inserts one audit entry.
func (s *Service) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO activities (
			id, entity_type, entity_id, lead_id, action,
			updated_fields, actor_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		e.ID,
		e.EntityType,
		e.EntityID,
		nullString(e.LeadID),
		e.Action,
		nullableJSON(e.UpdatedFields),
		e.ActorID,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("activity: failed to record entry: %w", err)
	}
	return nil
}

// Query retrieves audit entries with filters, newest first.
func (s *Service) Query(ctx context.Context, f Filter) ([]Entry, error) {
	query := `
		SELECT id, entity_type, entity_id, lead_id, action,
		       updated_fields, actor_id, created_at
		FROM activities
		WHERE 1=1
	`
	var args []interface{}
	argIdx := 1

	if f.LeadID != "" {
		query += fmt.Sprintf(" AND lead_id = $%d", argIdx)
		args = append(args, f.LeadID)
		argIdx++
	}
	if f.EntityType != "" {
		query += fmt.Sprintf(" AND entity_type = $%d", argIdx)
		args = append(args, f.EntityType)
		argIdx++
	}
	if f.Action != "" {
		query += fmt.Sprintf(" AND action = $%d", argIdx)
		args = append(args, f.Action)
		argIdx++
	}
	if !f.StartTime.IsZero() {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, f.StartTime)
		argIdx++
	}
	if !f.EndTime.IsZero() {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, f.EndTime)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}
	if f.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", f.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("activity: failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var leadID sql.NullString
		var fields []byte
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &leadID, &e.Action,
			&fields, &e.ActorID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("activity: failed to scan entry: %w", err)
		}
		e.LeadID = leadID.String
		e.UpdatedFields = fields
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

// MemoryRecorder keeps entries in memory for tests and database-less runs.
type MemoryRecorder struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewMemoryRecorder creates an empty in-memory recorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

func (m *MemoryRecorder) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	m.mu.Lock()
	m.entries = append(m.entries, e)
	m.mu.Unlock()
	return nil
}

func (m *MemoryRecorder) Query(ctx context.Context, f Filter) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Entry
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		if f.LeadID != "" && e.LeadID != f.LeadID {
			continue
		}
		if f.EntityType != "" && e.EntityType != f.EntityType {
			continue
		}
		if f.Action != "" && e.Action != f.Action {
			continue
		}
		if !f.StartTime.IsZero() && e.CreatedAt.Before(f.StartTime) {
			continue
		}
		if !f.EndTime.IsZero() && e.CreatedAt.After(f.EndTime) {
			continue
		}
		out = append(out, e)
	}
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}
