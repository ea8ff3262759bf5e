package users

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/talentbridge/sales-crm-platform/internal/faults"
)

// SQLRepository stores users in the relational database.
type SQLRepository struct {
	db *sql.DB
}

// NewSQLRepository initializes a repo backed by database/sql.
func NewSQLRepository(db *sql.DB) *SQLRepository {
	if db == nil {
		panic("users: db required")
	}
	return &SQLRepository{db: db}
}

const userColumns = `id, name, email, phone, role, app_password, status, created_at, updated_at`

func (r *SQLRepository) Create(ctx context.Context, u *User) (*User, error) {
	cp := *u
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	if cp.Status == "" {
		cp.Status = StatusActive
	}
	now := time.Now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, phone, role, app_password, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		cp.ID, cp.Name, cp.Email, cp.Phone, cp.Role, cp.AppPassword, cp.Status, cp.CreatedAt, cp.UpdatedAt)
	if err != nil {
		return nil, faults.Infra("users: insert", err)
	}
	return &cp, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id string) (*User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row, id)
}

func (r *SQLRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row, email)
}

func (r *SQLRepository) List(ctx context.Context) ([]*User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, faults.Infra("users: list", err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (r *SQLRepository) ListActiveByRole(ctx context.Context, role Role) ([]*User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = $1 AND status = $2 ORDER BY created_at`,
		role, StatusActive)
	if err != nil {
		return nil, faults.Infra("users: list by role", err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (r *SQLRepository) Update(ctx context.Context, u *User) (*User, error) {
	cp := *u
	cp.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET name=$2, email=$3, phone=$4, role=$5, app_password=$6, status=$7, updated_at=$8
		WHERE id=$1`,
		cp.ID, cp.Name, cp.Email, cp.Phone, cp.Role, cp.AppPassword, cp.Status, cp.UpdatedAt)
	if err != nil {
		return nil, faults.Infra("users: update", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, faults.NotFound("user", cp.ID)
	}
	return &cp, nil
}

func scanUser(row *sql.Row, ref string) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &u.AppPassword,
		&u.Status, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, faults.NotFound("user", ref)
	}
	if err != nil {
		return nil, fmt.Errorf("users: scan: %w", err)
	}
	return &u, nil
}

func collectUsers(rows *sql.Rows) ([]*User, error) {
	var out []*User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &u.AppPassword,
			&u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("users: scan: %w", err)
		}
		out = append(out, &u)
	}
	if out == nil {
		out = []*User{}
	}
	return out, rows.Err()
}
