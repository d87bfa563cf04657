package postgres

import (
	"context"
	"errors"
	"fmt"

	"go-headhunter-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type hrProfileRepo struct {
	db *pgxpool.Pool
}

func NewHrProfileRepository(db *pgxpool.Pool) domain.HrProfileRepository {
	return &hrProfileRepo{db: db}
}

func (r *hrProfileRepo) Create(ctx context.Context, p *domain.HrProfile) error {
	query := `INSERT INTO hr_profiles (id, user_id, first_name, last_name, email, company, max_reserved_students, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := conn(ctx, r.db).Exec(ctx, query,
		p.ID, p.UserID, p.FirstName, p.LastName, p.Email, p.Company, p.MaxReservedStudents,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert hr profile: %w", mapWriteError(err))
	}
	return nil
}

const hrProfileColumns = `id, user_id, first_name, last_name, email, company, max_reserved_students, created_at, updated_at`

func (r *hrProfileRepo) GetByUserID(ctx context.Context, userID string) (*domain.HrProfile, error) {
	query := `SELECT ` + hrProfileColumns + ` FROM hr_profiles WHERE user_id = $1`
	return r.scanOne(conn(ctx, r.db).QueryRow(ctx, query, userID))
}

// GetByUserIDForUpdate serializes reservations of one recruiter so the
// reservation count cannot be read stale by a parallel transaction.
func (r *hrProfileRepo) GetByUserIDForUpdate(ctx context.Context, userID string) (*domain.HrProfile, error) {
	query := `SELECT ` + hrProfileColumns + ` FROM hr_profiles WHERE user_id = $1 FOR UPDATE`
	return r.scanOne(conn(ctx, r.db).QueryRow(ctx, query, userID))
}

func (r *hrProfileRepo) scanOne(row pgx.Row) (*domain.HrProfile, error) {
	var p domain.HrProfile
	err := row.Scan(
		&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.Email, &p.Company, &p.MaxReservedStudents,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get hr profile: %w", err)
	}
	return &p, nil
}
