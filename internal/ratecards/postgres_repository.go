package ratecards

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
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresRepository stores rate cards in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("ratecards: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Create(ctx context.Context, rc *RateCard) (*RateCard, error) {
	cp := cloneCard(rc)
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	cp.Active = false
	for i := range cp.Items {
		if cp.Items[i].ID == "" {
			cp.Items[i].ID = uuid.NewString()
		}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, faults.Infra("ratecards: begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO rate_cards (id, version, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		cp.ID, cp.Version, cp.Active, cp.CreatedAt, cp.UpdatedAt)
	if err != nil {
		return nil, faults.Infra("ratecards: insert", err)
	}
	if err := insertItems(ctx, tx, cp.ID, cp.Items); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, faults.Infra("ratecards: commit", err)
	}
	return cp, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*RateCard, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, version, active, created_at, updated_at FROM rate_cards WHERE id = $1`, id)
	return r.scanWithItems(ctx, row, id)
}

// GetActive returns the single active card.
func (r *PostgresRepository) GetActive(ctx context.Context) (*RateCard, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, version, active, created_at, updated_at FROM rate_cards WHERE active = true`)
	return r.scanWithItems(ctx, row, "active")
}

func (r *PostgresRepository) scanWithItems(ctx context.Context, row pgx.Row, ref string) (*RateCard, error) {
	var rc RateCard
	err := row.Scan(&rc.ID, &rc.Version, &rc.Active, &rc.CreatedAt, &rc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, faults.NotFound("rate card", ref)
	}
	if err != nil {
		return nil, faults.Infra("ratecards: select", err)
	}

	items, err := r.listItems(ctx, rc.ID)
	if err != nil {
		return nil, err
	}
	rc.Items = items
	return &rc, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*RateCard, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, version, active, created_at, updated_at FROM rate_cards ORDER BY created_at`)
	if err != nil {
		return nil, faults.Infra("ratecards: list", err)
	}
	defer rows.Close()

	out := []*RateCard{}
	for rows.Next() {
		var rc RateCard
		if err := rows.Scan(&rc.ID, &rc.Version, &rc.Active, &rc.CreatedAt, &rc.UpdatedAt); err != nil {
			return nil, faults.Infra("ratecards: scan", err)
		}
		out = append(out, &rc)
	}
	if err := rows.Err(); err != nil {
		return nil, faults.Infra("ratecards: list", err)
	}

	for _, rc := range out {
		items, err := r.listItems(ctx, rc.ID)
		if err != nil {
			return nil, err
		}
		rc.Items = items
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, rc *RateCard) (*RateCard, error) {
	cp := cloneCard(rc)
	cp.UpdatedAt = time.Now().UTC()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, faults.Infra("ratecards: begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx,
		`UPDATE rate_cards SET version=$2, updated_at=$3 WHERE id=$1`,
		cp.ID, cp.Version, cp.UpdatedAt)
	if err != nil {
		return nil, faults.Infra("ratecards: update", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, faults.NotFound("rate card", cp.ID)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM rate_card_items WHERE rate_card_id=$1`, cp.ID); err != nil {
		return nil, faults.Infra("ratecards: replace items", err)
	}
	if err := insertItems(ctx, tx, cp.ID, cp.Items); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, faults.Infra("ratecards: commit", err)
	}
	return cp, nil
}

// Activate makes id the single active card. The previous active card is
// cleared before the target flips, so the partial unique index on active rows
// holds after every statement, and an unknown id rolls the whole flip back.
func (r *PostgresRepository) Activate(ctx context.Context, id string) (*RateCard, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, faults.Infra("ratecards: begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
	if _, err := tx.Exec(ctx,
		`UPDATE rate_cards SET active = false, updated_at = $2 WHERE active AND id <> $1`,
		id, now); err != nil {
		return nil, faults.Infra("ratecards: deactivate", err)
	}
	tag, err := tx.Exec(ctx,
		`UPDATE rate_cards SET active = true, updated_at = $2 WHERE id = $1`,
		id, now)
	if err != nil {
		return nil, faults.Infra("ratecards: activate", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, faults.NotFound("rate card", id)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, faults.Infra("ratecards: commit", err)
	}

	return r.GetByID(ctx, id)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM rate_cards WHERE id=$1`, id)
	if err != nil {
		return faults.Infra("ratecards: delete", err)
	}
	if tag.RowsAffected() == 0 {
		return faults.NotFound("rate card", id)
	}
	return nil
}

func (r *PostgresRepository) listItems(ctx context.Context, cardID string) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, category, base_price, discount_limit, unit, active
		FROM rate_card_items WHERE rate_card_id=$1 ORDER BY position`, cardID)
	if err != nil {
		return nil, faults.Infra("ratecards: list items", err)
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Category, &it.BasePrice,
			&it.DiscountLimit, &it.Unit, &it.Active); err != nil {
			return nil, faults.Infra("ratecards: scan item", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func insertItems(ctx context.Context, tx pgx.Tx, cardID string, items []Item) error {
	for i, it := range items {
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO rate_card_items (id, rate_card_id, name, category, base_price, discount_limit, unit, active, position)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			it.ID, cardID, it.Name, it.Category, it.BasePrice, it.DiscountLimit, it.Unit, it.Active, i)
		if err != nil {
			return faults.Infra("ratecards: insert item", err)
		}
	}
	return nil
}
