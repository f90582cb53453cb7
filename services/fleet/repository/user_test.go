package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanwheels/urbanwheels/internal/pkg/apperr"
	"github.com/urbanwheels/urbanwheels/internal/pkg/models"
)

func setupUserRepoTest(t *testing.T) (*UserRepo, sqlmock.Sqlmock, func()) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")

	repo := &UserRepo{
		cfg: &models.Config{},
		db:  sqlxDB,
	}

	return repo, mock, func() { sqlxDB.Close() }
}

func TestUserRepo_GetUserByID(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo, mock, cleanup := setupUserRepoTest(t)
		defer cleanup()

		birthDate := time.Date(1995, 6, 15, 0, 0, 0, 0, time.UTC)
		rows := sqlmock.NewRows([]string{"id", "email", "role", "birth_date", "has_license", "balance", "is_active", "created_at", "updated_at"}).
			AddRow(42, "rider@example.com", "rider", birthDate, true, 12.50, true, time.Now(), time.Now())
		mock.ExpectQuery(`SELECT (.+) FROM users\s+WHERE id = \$1`).
			WithArgs(int64(42)).
			WillReturnRows(rows)

		user, err := repo.GetUserByID(context.Background(), 42)
		require.NoError(t, err)
		assert.Equal(t, "rider@example.com", user.Email)
		assert.True(t, user.HasLicense)
		require.NotNil(t, user.BirthDate)
		assert.Equal(t, birthDate, *user.BirthDate)
	})

	t.Run("Not found", func(t *testing.T) {
		repo, mock, cleanup := setupUserRepoTest(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT (.+) FROM users`).
			WithArgs(int64(404)).
			WillReturnError(sql.ErrNoRows)

		user, err := repo.GetUserByID(context.Background(), 404)
		assert.Nil(t, user)
		assert.True(t, apperr.IsNotFound(err))
	})
}
