package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/urbanwheels/urbanwheels/internal/pkg/apperr"
	"github.com/urbanwheels/urbanwheels/internal/pkg/models"
)

// UserRepo provides read access to rider accounts
type UserRepo struct {
	cfg *models.Config
	db  *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(
	cfg *models.Config,
	db *sqlx.DB,
) *UserRepo {
	return &UserRepo{
		cfg: cfg,
		db:  db,
	}
}

// GetUserByID retrieves a user by id
func (r *UserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT id, email, role, birth_date, has_license, balance, is_active, created_at, updated_at
		FROM users
		WHERE id = $1`

	user := &models.User{}
	err := r.db.GetContext(ctx, user, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}

	return user, nil
}
