package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Juadebfm/ecorewards-deploy/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, name, email, password_hash, role, points, eco_level,
	referral_code, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Points, &u.EcoLevel,
		&u.ReferralCode, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user with a generated referral code
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.ReferralCode == "" {
		user.ReferralCode = newReferralCode()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	user.EcoLevel = models.EcoLevelFor(user.Points)

	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, points, eco_level, referral_code, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, true)
		RETURNING created_at, updated_at
	`, user.ID, user.Name, user.Email, user.PasswordHash, user.Role,
		user.Points, user.EcoLevel, user.ReferralCode).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.IsActive = true
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1 AND is_active = true`, userColumns)

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email for login
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE LOWER(email) = $1 AND is_active = true`, userColumns)

	user, err := scanUser(r.pool.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email))))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// CreditActivityPoints ledgers a manual eco activity and credits its
// points in one transaction.
func (r *UserRepository) CreditActivityPoints(ctx context.Context, activity *models.Activity) (*models.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO activities (id, user_id, activity_type, points, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, activity.ID, activity.UserID, activity.ActivityType, activity.Points,
		activity.Description).Scan(&activity.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert activity: %w", err)
	}

	user, err := creditPoints(ctx, tx, activity.UserID, activity.Points)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}

// newReferralCode builds a short shareable code from a fresh UUID
func newReferralCode() string {
	return "eco-" + strings.Split(uuid.NewString(), "-")[0]
}
