package proposals

import (
	"context"
	"errors"
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

// PostgresRepository stores proposals in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("proposals: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

const proposalColumns = `id, lead_id, owner_id, template_id, rate_card_version, sent_via,
	status, sent_at, content, pdf_link, created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, p *Proposal) (*Proposal, error) {
	cp := cloneProposal(p)
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now

	_, err := r.pool.Exec(ctx, `
		INSERT INTO proposals (`+proposalColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		cp.ID, cp.LeadID, cp.OwnerID, cp.TemplateID, cp.RateCardVersion, cp.SentVia,
		cp.Status, cp.SentAt, cp.Content, cp.PDFLink, cp.CreatedAt, cp.UpdatedAt)
	if err != nil {
		return nil, faults.Infra("proposals: insert", err)
	}
	return cp, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Proposal, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+proposalColumns+` FROM proposals WHERE id = $1`, id)
	p, err := scanProposal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, faults.NotFound("proposal", id)
	}
	if err != nil {
		return nil, faults.Infra("proposals: select", err)
	}
	return p, nil
}

func (r *PostgresRepository) ListByLead(ctx context.Context, leadID string) ([]*Proposal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+proposalColumns+` FROM proposals WHERE lead_id = $1 ORDER BY created_at`, leadID)
	if err != nil {
		return nil, faults.Infra("proposals: list", err)
	}
	defer rows.Close()

	out := []*Proposal{}
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, faults.Infra("proposals: scan", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Update(ctx context.Context, p *Proposal) (*Proposal, error) {
	cp := cloneProposal(p)
	cp.UpdatedAt = time.Now().UTC()

	tag, err := r.pool.Exec(ctx, `
		UPDATE proposals SET sent_via=$2, status=$3, sent_at=$4, content=$5, pdf_link=$6, updated_at=$7
		WHERE id=$1`,
		cp.ID, cp.SentVia, cp.Status, cp.SentAt, cp.Content, cp.PDFLink, cp.UpdatedAt)
	if err != nil {
		return nil, faults.Infra("proposals: update", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, faults.NotFound("proposal", cp.ID)
	}
	return cp, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM proposals WHERE id=$1`, id)
	if err != nil {
		return faults.Infra("proposals: delete", err)
	}
	if tag.RowsAffected() == 0 {
		return faults.NotFound("proposal", id)
	}
	return nil
}

func scanProposal(row pgx.Row) (*Proposal, error) {
	var p Proposal
	err := row.Scan(&p.ID, &p.LeadID, &p.OwnerID, &p.TemplateID, &p.RateCardVersion,
		&p.SentVia, &p.Status, &p.SentAt, &p.Content, &p.PDFLink, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
