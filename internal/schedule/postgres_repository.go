package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/talentbridge/sales-crm-platform/internal/faults"
)

// PgxPool is the subset of pgxpool.Pool the repository uses; pgxmock
// satisfies it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores scheduled events in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("schedule: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

const eventColumns = `id, lead_id, title, description, assigned_to, start_at, end_at,
	status, recurring, meeting_link, timezone, created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, e *Event) (*Event, error) {
	cp := *e
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now

	_, err := r.pool.Exec(ctx, `
		INSERT INTO scheduled_events (`+eventColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		cp.ID, cp.LeadID, cp.Title, cp.Description, cp.AssignedTo, cp.Start, cp.End,
		cp.Status, cp.Recurring, cp.MeetingLink, cp.Timezone, cp.CreatedAt, cp.UpdatedAt)
	if err != nil {
		return nil, faults.Infra("schedule: insert", err)
	}
	return &cp, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Event, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM scheduled_events WHERE id = $1`, id)
	e, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, faults.NotFound("event", id)
	}
	if err != nil {
		return nil, faults.Infra("schedule: select", err)
	}
	return e, nil
}

func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]*Event, error) {
	query := `SELECT ` + eventColumns + ` FROM scheduled_events WHERE 1=1`
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		query += fmt.Sprintf(" AND "+cond, len(args))
	}
	if f.LeadID != "" {
		add("lead_id = $%d", f.LeadID)
	}
	if f.AssignedTo != "" {
		add("assigned_to = $%d", f.AssignedTo)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if !f.From.IsZero() {
		add("start_at >= $%d", f.From)
	}
	if !f.To.IsZero() {
		add("start_at <= $%d", f.To)
	}
	query += " ORDER BY start_at"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, faults.Infra("schedule: list", err)
	}
	defer rows.Close()

	out := []*Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, faults.Infra("schedule: scan", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Update(ctx context.Context, e *Event) (*Event, error) {
	cp := *e
	cp.UpdatedAt = time.Now().UTC()

	tag, err := r.pool.Exec(ctx, `
		UPDATE scheduled_events SET title=$2, description=$3, assigned_to=$4, start_at=$5,
			end_at=$6, status=$7, recurring=$8, meeting_link=$9, timezone=$10, updated_at=$11
		WHERE id=$1`,
		cp.ID, cp.Title, cp.Description, cp.AssignedTo, cp.Start, cp.End,
		cp.Status, cp.Recurring, cp.MeetingLink, cp.Timezone, cp.UpdatedAt)
	if err != nil {
		return nil, faults.Infra("schedule: update", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, faults.NotFound("event", cp.ID)
	}
	return &cp, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM scheduled_events WHERE id=$1`, id)
	if err != nil {
		return faults.Infra("schedule: delete", err)
	}
	if tag.RowsAffected() == 0 {
		return faults.NotFound("event", id)
	}
	return nil
}

func scanEvent(row pgx.Row) (*Event, error) {
	var e Event
	err := row.Scan(&e.ID, &e.LeadID, &e.Title, &e.Description, &e.AssignedTo,
		&e.Start, &e.End, &e.Status, &e.Recurring, &e.MeetingLink, &e.Timezone,
		&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
