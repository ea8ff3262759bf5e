package users

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentbridge/sales-crm-platform/internal/faults"
)

func TestSQLRepositoryCreateDefaultsStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO users").
		WithArgs(sqlmock.AnyArg(), "Priya", "priya@talentbridge.io", "+919876543210",
			string(RoleBDExecutive), "", string(StatusActive), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewSQLRepository(db)
	u, err := repo.Create(context.Background(), &User{
		Name:  "Priya",
		Email: "priya@talentbridge.io",
		Phone: "+919876543210",
		Role:  RoleBDExecutive,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, StatusActive, u.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRepositoryGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT .+ FROM users WHERE id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := NewSQLRepository(db)
	_, err = repo.GetByID(context.Background(), "missing")
	assert.True(t, faults.IsNotFound(err))
}

func TestSQLRepositoryUpdateMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE users SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewSQLRepository(db)
	_, err = repo.Update(context.Background(), &User{ID: "ghost", Role: RoleManager})
	assert.True(t, faults.IsNotFound(err))
}

func TestInMemoryListActiveByRole(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, &User{Name: "A", Role: RoleBDExecutive})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &User{Name: "B", Role: RoleBDExecutive, Status: StatusInactive})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &User{Name: "C", Role: RoleManager})
	require.NoError(t, err)

	bds, err := repo.ListActiveByRole(ctx, RoleBDExecutive)
	require.NoError(t, err)
	require.Len(t, bds, 1)
	assert.Equal(t, "A", bds[0].Name)
}
