package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Juadebfm/ecorewards-deploy/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RewardRepository struct {
	pool *pgxpool.Pool
}

func NewRewardRepository(pool *pgxpool.Pool) *RewardRepository {
	return &RewardRepository{pool: pool}
}

const rewardColumns = `id, partner_id, title, description, points, max_claims_per_user,
	total_max_claims, current_claims, expiry_date, is_active, created_at, updated_at`

func scanReward(row pgx.Row) (*models.Reward, error) {
	var rw models.Reward
	err := row.Scan(
		&rw.ID, &rw.PartnerID, &rw.Title, &rw.Description, &rw.Points, &rw.MaxClaimsPerUser,
		&rw.TotalMaxClaims, &rw.CurrentClaims, &rw.ExpiryDate, &rw.IsActive,
		&rw.CreatedAt, &rw.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rw, nil
}

// Create inserts a reward campaign and bumps the partner's aggregate
// in the same transaction.
func (r *RewardRepository) Create(ctx context.Context, reward *models.Reward) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if reward.ID == uuid.Nil {
		reward.ID = uuid.New()
	}
	if reward.MaxClaimsPerUser == 0 {
		reward.MaxClaimsPerUser = 1
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO rewards (id, partner_id, title, description, points,
			max_claims_per_user, total_max_claims, expiry_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, true)
		RETURNING created_at, updated_at
	`, reward.ID, reward.PartnerID, reward.Title, reward.Description, reward.Points,
		reward.MaxClaimsPerUser, reward.TotalMaxClaims, reward.ExpiryDate,
	).Scan(&reward.CreatedAt, &reward.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create reward: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE partners SET total_rewards = total_rewards + 1, updated_at = NOW() WHERE id = $1
	`, reward.PartnerID)
	if err != nil {
		return fmt.Errorf("failed to update partner rewards: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	reward.IsActive = true
	return nil
}

// GetByID retrieves a reward
func (r *RewardRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Reward, error) {
	query := fmt.Sprintf(`SELECT %s FROM rewards WHERE id = $1`, rewardColumns)

	reward, err := scanReward(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRewardNotFound
		}
		return nil, fmt.Errorf("failed to query reward: %w", err)
	}
	return reward, nil
}

// ListAvailable returns rewards currently open for claiming, backed by
// eligible partners.
func (r *RewardRepository) ListAvailable(ctx context.Context) ([]models.Reward, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM rewards
		WHERE is_active = true
		  AND (expiry_date IS NULL OR expiry_date > NOW())
		  AND (total_max_claims IS NULL OR current_claims < total_max_claims)
		  AND EXISTS (
			SELECT 1 FROM partners p
			WHERE p.id = rewards.partner_id AND p.is_active = true AND p.verification_status = 'verified'
		  )
		ORDER BY created_at DESC`, rewardColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query rewards: %w", err)
	}
	defer rows.Close()

	rewards := []models.Reward{}
	for rows.Next() {
		reward, err := scanReward(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reward: %w", err)
		}
		rewards = append(rewards, *reward)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rewards: %w", err)
	}

	return rewards, nil
}

// SetActive toggles whether a reward accepts claims
func (r *RewardRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE rewards SET is_active = $2, updated_at = NOW() WHERE id = $1
	`, id, active)
	if err != nil {
		return fmt.Errorf("failed to update reward: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRewardNotFound
	}
	return nil
}
