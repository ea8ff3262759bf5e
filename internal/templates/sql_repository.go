package templates

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/talentbridge/sales-crm-platform/internal/faults"
)

// SQLRepository stores templates in the relational database. Placeholders live
// in a TEXT[] column.
type SQLRepository struct {
	db *sql.DB
}

func NewSQLRepository(db *sql.DB) *SQLRepository {
	if db == nil {
		panic("templates: db required")
	}
	return &SQLRepository{db: db}
}

const templateColumns = `id, name, kind, subject, content, placeholders, active, created_at, updated_at`

func (r *SQLRepository) Create(ctx context.Context, t *Template) (*Template, error) {
	cp := cloneTemplate(t)
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO templates (`+templateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		cp.ID, cp.Name, cp.Kind, cp.Subject, cp.Content, pq.Array(cp.Placeholders),
		cp.Active, cp.CreatedAt, cp.UpdatedAt)
	if err != nil {
		return nil, faults.Infra("templates: insert", err)
	}
	return cp, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id string) (*Template, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM templates WHERE id = $1`, id)
	return scanTemplate(row, id)
}

func (r *SQLRepository) List(ctx context.Context, f ListFilter) ([]*Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates WHERE 1=1`
	var args []any
	if f.Kind != "" {
		args = append(args, f.Kind)
		query += fmt.Sprintf(" AND kind = $%d", len(args))
	}
	if f.ActiveOnly {
		query += " AND active = true"
	}
	query += " ORDER BY created_at"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, faults.Infra("templates: list", err)
	}
	defer rows.Close()

	out := []*Template{}
	for rows.Next() {
		var t Template
		var placeholders pq.StringArray
		if err := rows.Scan(&t.ID, &t.Name, &t.Kind, &t.Subject, &t.Content,
			&placeholders, &t.Active, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("templates: scan: %w", err)
		}
		t.Placeholders = placeholders
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (r *SQLRepository) Update(ctx context.Context, t *Template) (*Template, error) {
	cp := cloneTemplate(t)
	cp.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
		UPDATE templates SET name=$2, kind=$3, subject=$4, content=$5, placeholders=$6, active=$7, updated_at=$8
		WHERE id=$1`,
		cp.ID, cp.Name, cp.Kind, cp.Subject, cp.Content, pq.Array(cp.Placeholders),
		cp.Active, cp.UpdatedAt)
	if err != nil {
		return nil, faults.Infra("templates: update", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, faults.NotFound("template", cp.ID)
	}
	return cp, nil
}

func (r *SQLRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM templates WHERE id=$1`, id)
	if err != nil {
		return faults.Infra("templates: delete", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return faults.NotFound("template", id)
	}
	return nil
}

func scanTemplate(row *sql.Row, ref string) (*Template, error) {
	var t Template
	var placeholders pq.StringArray
	err := row.Scan(&t.ID, &t.Name, &t.Kind, &t.Subject, &t.Content,
		&placeholders, &t.Active, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, faults.NotFound("template", ref)
	}
	if err != nil {
		return nil, fmt.Errorf("templates: scan: %w", err)
	}
	t.Placeholders = placeholders
	return &t, nil
}
