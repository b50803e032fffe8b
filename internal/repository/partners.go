package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Juadebfm/ecorewards-deploy/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PartnerRepository struct {
	pool *pgxpool.Pool
}

func NewPartnerRepository(pool *pgxpool.Pool) *PartnerRepository {
	return &PartnerRepository{pool: pool}
}

const partnerColumns = `id, name, email, verification_status, is_active,
	total_rewards, total_scans, created_at, updated_at`

func scanPartner(row pgx.Row) (*models.Partner, error) {
	var p models.Partner
	err := row.Scan(
		&p.ID, &p.Name, &p.Email, &p.VerificationStatus, &p.IsActive,
		&p.TotalRewards, &p.TotalScans, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create registers a partner organization, pending verification
func (r *PartnerRepository) Create(ctx context.Context, partner *models.Partner) error {
	if partner.ID == uuid.Nil {
		partner.ID = uuid.New()
	}
	if partner.VerificationStatus == "" {
		partner.VerificationStatus = models.VerificationPending
	}

	err := r.pool.QueryRow(ctx, `
		INSERT INTO partners (id, name, email, verification_status, is_active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING created_at, updated_at
	`, partner.ID, partner.Name, partner.Email, partner.VerificationStatus,
	).Scan(&partner.CreatedAt, &partner.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create partner: %w", err)
	}
	partner.IsActive = true
	return nil
}

// GetByID retrieves a partner
func (r *PartnerRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Partner, error) {
	query := fmt.Sprintf(`SELECT %s FROM partners WHERE id = $1`, partnerColumns)

	partner, err := scanPartner(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPartnerNotFound
		}
		return nil, fmt.Errorf("failed to query partner: %w", err)
	}
	return partner, nil
}

// SetVerificationStatus transitions a partner through the verification
// lifecycle (pending, verified, rejected).
func (r *PartnerRepository) SetVerificationStatus(ctx context.Context, id uuid.UUID, status string) (*models.Partner, error) {
	query := fmt.Sprintf(`
		UPDATE partners SET verification_status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING %s`, partnerColumns)

	partner, err := scanPartner(r.pool.QueryRow(ctx, query, id, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPartnerNotFound
		}
		return nil, fmt.Errorf("failed to update partner: %w", err)
	}
	return partner, nil
}
