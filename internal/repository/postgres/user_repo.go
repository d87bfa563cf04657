package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-headhunter-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type userRepo struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) domain.UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, email, password_hash, salt, role, is_active, register_token, token_expires_at, created_at, updated_at`

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (` + userColumns + `)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := conn(ctx, r.db).Exec(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Salt, user.Role, user.IsActive,
		user.RegisterToken, user.TokenExpiresAt, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", mapWriteError(err))
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	// Malformed ids cannot match the uuid column
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(conn(ctx, r.db).QueryRow(ctx, query, id))
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanOne(conn(ctx, r.db).QueryRow(ctx, query, email))
}

// Activate is a compare-and-set on the pending state; a concurrent winner
// leaves zero rows to update.
func (r *userRepo) Activate(ctx context.Context, id, token string, at time.Time) error {
	query := `UPDATE users
              SET is_active = TRUE, register_token = NULL, token_expires_at = NULL, updated_at = $3
              WHERE id = $1 AND is_active = FALSE AND register_token = $2`
	tag, err := conn(ctx, r.db).Exec(ctx, query, id, token, at)
	if err != nil {
		return fmt.Errorf("activate user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidActivation
	}
	return nil
}

func (r *userRepo) scanOne(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Salt, &u.Role, &u.IsActive,
		&u.RegisterToken, &u.TokenExpiresAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
