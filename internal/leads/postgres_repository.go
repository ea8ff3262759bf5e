package leads

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
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgx.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

const leadColumns = `id, company_name, company_info, company_size, website_url, company_email,
	hiring_needs, lead_source, industry_name, linkedin_link, no_of_designations,
	no_of_positions, stage, assigned_to, assigned_by, locked, locked_by, version,
	created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, l *Lead) (*Lead, error) {
	cp := cloneLead(l)
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	cp.Version = 1

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, faults.Infra("leads: begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO leads (`+leadColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
		cp.ID, cp.CompanyName, cp.CompanyInfo, cp.CompanySize, cp.WebsiteURL, cp.CompanyEmail,
		needsToStrings(cp.HiringNeeds), cp.LeadSource, cp.IndustryName, cp.LinkedInLink,
		cp.NoOfDesignations, cp.NoOfPositions, cp.Stage, cp.AssignedTo, cp.AssignedBy,
		cp.Locked, cp.LockedBy, cp.Version, cp.CreatedAt, cp.UpdatedAt)
	if err != nil {
		return nil, faults.Infra("leads: insert", err)
	}

	if err := insertContacts(ctx, tx, cp.ID, cp.PointsOfContact); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, faults.Infra("leads: commit", err)
	}
	return cp, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	l, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, faults.NotFound("lead", id)
		}
		return nil, faults.Infra("leads: select", err)
	}

	contacts, err := r.listContacts(ctx, id)
	if err != nil {
		return nil, err
	}
	l.PointsOfContact = contacts
	return l, nil
}

func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]*Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE 1=1`
	var args []any
	argIdx := 1

	if f.Stage != "" {
		query += fmt.Sprintf(" AND stage = $%d", argIdx)
		args = append(args, f.Stage)
		argIdx++
	}
	if f.AssignedTo != "" {
		query += fmt.Sprintf(" AND assigned_to = $%d", argIdx)
		args = append(args, f.AssignedTo)
		argIdx++
	}
	query += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}
	if f.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", f.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, faults.Infra("leads: list", err)
	}
	defer rows.Close()

	var out []*Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, faults.Infra("leads: scan", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, faults.Infra("leads: list", err)
	}
	if out == nil {
		out = []*Lead{}
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, l *Lead) (*Lead, error) {
	cp := cloneLead(l)
	cp.UpdatedAt = time.Now().UTC()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, faults.Infra("leads: begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Compare-and-swap on the version token.
	tag, err := tx.Exec(ctx, `
		UPDATE leads SET
			company_name=$2, company_info=$3, company_size=$4, website_url=$5,
			company_email=$6, hiring_needs=$7, lead_source=$8, industry_name=$9,
			linkedin_link=$10, no_of_designations=$11, no_of_positions=$12, stage=$13,
			assigned_to=$14, assigned_by=$15, locked=$16, locked_by=$17,
			version=version+1, updated_at=$18
		WHERE id=$1 AND version=$19`,
		cp.ID, cp.CompanyName, cp.CompanyInfo, cp.CompanySize, cp.WebsiteURL,
		cp.CompanyEmail, needsToStrings(cp.HiringNeeds), cp.LeadSource, cp.IndustryName,
		cp.LinkedInLink, cp.NoOfDesignations, cp.NoOfPositions, cp.Stage,
		cp.AssignedTo, cp.AssignedBy, cp.Locked, cp.LockedBy, cp.UpdatedAt, cp.Version)
	if err != nil {
		return nil, faults.Infra("leads: update", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM leads WHERE id=$1)`, cp.ID).Scan(&exists); err != nil {
			return nil, faults.Infra("leads: update", err)
		}
		if !exists {
			return nil, faults.NotFound("lead", cp.ID)
		}
		return nil, ErrVersionConflict
	}

	if _, err := tx.Exec(ctx, `DELETE FROM points_of_contact WHERE lead_id=$1`, cp.ID); err != nil {
		return nil, faults.Infra("leads: replace contacts", err)
	}
	if err := insertContacts(ctx, tx, cp.ID, cp.PointsOfContact); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, faults.Infra("leads: commit", err)
	}

	cp.Version++
	return cp, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id=$1`, id)
	if err != nil {
		return faults.Infra("leads: delete", err)
	}
	if tag.RowsAffected() == 0 {
		return faults.NotFound("lead", id)
	}
	return nil
}

func (r *PostgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM leads WHERE company_email=$1)`, email).Scan(&exists)
	if err != nil {
		return false, faults.Infra("leads: email lookup", err)
	}
	return exists, nil
}

func (r *PostgresRepository) AddRemark(ctx context.Context, rm *Remark) (*Remark, error) {
	cp := *rm
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	cp.CreatedAt = time.Now().UTC()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO remarks (id, lead_id, author_id, type, content, file_url, voice_url, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		cp.ID, cp.LeadID, cp.AuthorID, cp.Type, cp.Content, cp.FileURL, cp.VoiceURL, cp.CreatedAt)
	if err != nil {
		return nil, faults.Infra("leads: insert remark", err)
	}
	return &cp, nil
}

func (r *PostgresRepository) GetRemark(ctx context.Context, leadID, remarkID string) (*Remark, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, lead_id, author_id, type, content, file_url, voice_url, created_at
		FROM remarks WHERE id=$1 AND lead_id=$2`, remarkID, leadID)

	var rm Remark
	err := row.Scan(&rm.ID, &rm.LeadID, &rm.AuthorID, &rm.Type,
		&rm.Content, &rm.FileURL, &rm.VoiceURL, &rm.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, faults.NotFound("remark", remarkID)
	}
	if err != nil {
		return nil, faults.Infra("leads: select remark", err)
	}
	return &rm, nil
}

func (r *PostgresRepository) DeleteRemark(ctx context.Context, leadID, remarkID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM remarks WHERE id=$1 AND lead_id=$2`, remarkID, leadID)
	if err != nil {
		return faults.Infra("leads: delete remark", err)
	}
	if tag.RowsAffected() == 0 {
		return faults.NotFound("remark", remarkID)
	}
	return nil
}

func (r *PostgresRepository) ListRemarks(ctx context.Context, leadID string) ([]*Remark, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, author_id, type, content, file_url, voice_url, created_at
		FROM remarks WHERE lead_id=$1 ORDER BY created_at`, leadID)
	if err != nil {
		return nil, faults.Infra("leads: list remarks", err)
	}
	defer rows.Close()

	var out []*Remark
	for rows.Next() {
		var rm Remark
		if err := rows.Scan(&rm.ID, &rm.LeadID, &rm.AuthorID, &rm.Type,
			&rm.Content, &rm.FileURL, &rm.VoiceURL, &rm.CreatedAt); err != nil {
			return nil, faults.Infra("leads: scan remark", err)
		}
		out = append(out, &rm)
	}
	if out == nil {
		out = []*Remark{}
	}
	return out, rows.Err()
}

func (r *PostgresRepository) listContacts(ctx context.Context, leadID string) ([]PointOfContact, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, designation, phone, email, linkedin_url, stage
		FROM points_of_contact WHERE lead_id=$1 ORDER BY position`, leadID)
	if err != nil {
		return nil, faults.Infra("leads: list contacts", err)
	}
	defer rows.Close()

	var out []PointOfContact
	for rows.Next() {
		var c PointOfContact
		if err := rows.Scan(&c.ID, &c.Name, &c.Designation, &c.Phone,
			&c.Email, &c.LinkedInURL, &c.Stage); err != nil {
			return nil, faults.Infra("leads: scan contact", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func insertContacts(ctx context.Context, tx pgx.Tx, leadID string, contacts []PointOfContact) error {
	for i, c := range contacts {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO points_of_contact (id, lead_id, name, designation, phone, email, linkedin_url, stage, position)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			c.ID, leadID, c.Name, c.Designation, c.Phone, c.Email, c.LinkedInURL, c.Stage, i)
		if err != nil {
			return faults.Infra("leads: insert contact", err)
		}
	}
	return nil
}

func scanLead(row pgx.Row) (*Lead, error) {
	var l Lead
	var needs []string
	err := row.Scan(&l.ID, &l.CompanyName, &l.CompanyInfo, &l.CompanySize, &l.WebsiteURL,
		&l.CompanyEmail, &needs, &l.LeadSource, &l.IndustryName, &l.LinkedInLink,
		&l.NoOfDesignations, &l.NoOfPositions, &l.Stage, &l.AssignedTo, &l.AssignedBy,
		&l.Locked, &l.LockedBy, &l.Version, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.HiringNeeds = stringsToNeeds(needs)
	return &l, nil
}

func needsToStrings(needs []HiringNeed) []string {
	out := make([]string, len(needs))
	for i, n := range needs {
		out[i] = string(n)
	}
	return out
}

func stringsToNeeds(ss []string) []HiringNeed {
	if len(ss) == 0 {
		return nil
	}
	out := make([]HiringNeed, len(ss))
	for i, s := range ss {
		out[i] = HiringNeed(s)
	}
	return out
}
