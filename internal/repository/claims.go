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

type ClaimRepository struct {
	pool *pgxpool.Pool
}

func NewClaimRepository(pool *pgxpool.Pool) *ClaimRepository {
	return &ClaimRepository{pool: pool}
}

const claimColumns = `id, user_id, qr_code_id, partner_id, reward_id, points_awarded,
	status, claim_method, notes, ip_address, user_agent,
	latitude, longitude, address, device_info, proof_type, proof_url,
	claimed_at, reversed_at`

func scanClaim(row pgx.Row) (*models.RewardClaim, error) {
	var c models.RewardClaim
	var lat, lng *float64
	var address *string

	err := row.Scan(
		&c.ID, &c.UserID, &c.QRCodeID, &c.PartnerID, &c.RewardID, &c.PointsAwarded,
		&c.Status, &c.ClaimMethod, &c.Notes, &c.IPAddress, &c.UserAgent,
		&lat, &lng, &address, &c.DeviceInfo, &c.ProofType, &c.ProofURL,
		&c.ClaimedAt, &c.ReversedAt,
	)
	if err != nil {
		return nil, err
	}

	if lat != nil && lng != nil {
		c.Location = &models.GeoLocation{Latitude: *lat, Longitude: *lng, Address: address}
	}

	return &c, nil
}

func claimLocation(c *models.RewardClaim) (lat, lng *float64, address *string) {
	if c.Location != nil {
		lat = &c.Location.Latitude
		lng = &c.Location.Longitude
		address = c.Location.Address
	}
	return lat, lng, address
}

// ActiveClaim returns the non-reversed claim for a (user, QR code)
// pair, or nil when none exists.
func (r *ClaimRepository) ActiveClaim(ctx context.Context, userID, qrCodeID uuid.UUID) (*models.RewardClaim, error) {
	query := fmt.Sprintf(`SELECT %s FROM reward_claims
		WHERE user_id = $1 AND qr_code_id = $2 AND status <> 'reversed'`, claimColumns)

	claim, err := scanClaim(r.pool.QueryRow(ctx, query, userID, qrCodeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query active claim: %w", err)
	}
	return claim, nil
}

// CountActiveClaims counts non-reversed claims a user holds against a reward
func (r *ClaimRepository) CountActiveClaims(ctx context.Context, userID, rewardID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM reward_claims
		 WHERE user_id = $1 AND reward_id = $2 AND status <> 'reversed'`,
		userID, rewardID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count claims: %w", err)
	}
	return count, nil
}

// ClaimByID retrieves a single claim
func (r *ClaimRepository) ClaimByID(ctx context.Context, id uuid.UUID) (*models.RewardClaim, error) {
	query := fmt.Sprintf(`SELECT %s FROM reward_claims WHERE id = $1`, claimColumns)

	claim, err := scanClaim(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClaimNotFound
		}
		return nil, fmt.Errorf("failed to query claim: %w", err)
	}
	return claim, nil
}

// ClaimsByUser returns a user's claim history, newest first. Reversed
// claims stay in the history; they are the audit trail.
func (r *ClaimRepository) ClaimsByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.RewardClaim, error) {
	query := fmt.Sprintf(`SELECT %s FROM reward_claims
		WHERE user_id = $1 ORDER BY claimed_at DESC LIMIT $2 OFFSET $3`, claimColumns)

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query claims: %w", err)
	}
	defer rows.Close()

	claims := []models.RewardClaim{}
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		claims = append(claims, *claim)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating claims: %w", err)
	}

	return claims, nil
}

// CreateClaim persists the claim record and applies its side effects
// (QR code and reward counters, user points, eco level) in a single
// transaction. A violation of the partial unique index on
// (user_id, qr_code_id) surfaces as ErrDuplicateClaim, which is the
// race path for concurrent claims of the same code.
func (r *ClaimRepository) CreateClaim(ctx context.Context, claim *models.RewardClaim) (*models.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	lat, lng, address := claimLocation(claim)

	err = tx.QueryRow(ctx, `
		INSERT INTO reward_claims (
			id, user_id, qr_code_id, partner_id, reward_id, points_awarded,
			status, claim_method, notes, ip_address, user_agent,
			latitude, longitude, address, device_info, proof_type, proof_url, claimed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW())
		RETURNING claimed_at
	`, claim.ID, claim.UserID, claim.QRCodeID, claim.PartnerID, claim.RewardID,
		claim.PointsAwarded, claim.Status, claim.ClaimMethod, claim.Notes,
		claim.IPAddress, claim.UserAgent, lat, lng, address, claim.DeviceInfo,
		claim.ProofType, claim.ProofURL).Scan(&claim.ClaimedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			return nil, ErrDuplicateClaim
		}
		return nil, fmt.Errorf("failed to insert claim: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE qr_codes SET successful_claims = successful_claims + 1, updated_at = NOW()
		WHERE id = $1
	`, claim.QRCodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to update QR code counter: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE rewards SET current_claims = current_claims + 1, updated_at = NOW()
		WHERE id = $1
	`, claim.RewardID)
	if err != nil {
		return nil, fmt.Errorf("failed to update reward counter: %w", err)
	}

	user, err := creditPoints(ctx, tx, claim.UserID, claim.PointsAwarded)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}

// ReverseClaim transitions a claim to its terminal reversed state and
// undoes its counter and point effects in one transaction. The status
// guard on the UPDATE makes a second reversal a conditional miss, so
// points can never be double-deducted. User points are recomputed from
// the ledger rather than decremented, which keeps the points invariant
// intact even after multiple reversals.
func (r *ClaimRepository) ReverseClaim(ctx context.Context, claimID uuid.UUID, reason string) (*models.RewardClaim, *models.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := fmt.Sprintf(`
		UPDATE reward_claims
		SET status = 'reversed',
			reversed_at = NOW(),
			notes = CASE WHEN notes IS NULL THEN $2 ELSE notes || ' | ' || $2 END
		WHERE id = $1 AND status <> 'reversed'
		RETURNING %s`, claimColumns)

	claim, err := scanClaim(tx.QueryRow(ctx, query, claimID, "Reversed: "+reason))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var status string
			lookupErr := tx.QueryRow(ctx,
				`SELECT status FROM reward_claims WHERE id = $1`, claimID,
			).Scan(&status)
			if errors.Is(lookupErr, pgx.ErrNoRows) {
				return nil, nil, ErrClaimNotFound
			}
			if lookupErr != nil {
				return nil, nil, fmt.Errorf("failed to look up claim: %w", lookupErr)
			}
			return nil, nil, ErrAlreadyReversed
		}
		return nil, nil, fmt.Errorf("failed to reverse claim: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE qr_codes SET successful_claims = GREATEST(successful_claims - 1, 0), updated_at = NOW()
		WHERE id = $1
	`, claim.QRCodeID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update QR code counter: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE rewards SET current_claims = GREATEST(current_claims - 1, 0), updated_at = NOW()
		WHERE id = $1
	`, claim.RewardID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update reward counter: %w", err)
	}

	user, err := recomputeUserPoints(ctx, tx, claim.UserID)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return claim, user, nil
}

// creditPoints atomically adds points to a user and recomputes the eco
// level inside the caller's transaction.
func creditPoints(ctx context.Context, tx pgx.Tx, userID uuid.UUID, points int) (*models.User, error) {
	var newTotal int
	err := tx.QueryRow(ctx, `
		UPDATE users SET points = points + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING points
	`, userID, points).Scan(&newTotal)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user points: %w", err)
	}

	return setEcoLevel(ctx, tx, userID, newTotal)
}

// recomputeUserPoints rebuilds a user's points from the claim ledger
// and activity log, then recomputes the eco level. Claims are the
// source of truth; this never under-deducts the way a floored
// decrement would.
func recomputeUserPoints(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*models.User, error) {
	var newTotal int
	err := tx.QueryRow(ctx, `
		UPDATE users SET points =
			COALESCE((SELECT SUM(points_awarded) FROM reward_claims
				WHERE user_id = $1 AND status <> 'reversed'), 0)
			+ COALESCE((SELECT SUM(points) FROM activities WHERE user_id = $1), 0),
			updated_at = NOW()
		WHERE id = $1
		RETURNING points
	`, userID).Scan(&newTotal)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to recompute user points: %w", err)
	}

	return setEcoLevel(ctx, tx, userID, newTotal)
}

func setEcoLevel(ctx context.Context, tx pgx.Tx, userID uuid.UUID, points int) (*models.User, error) {
	var user models.User
	err := tx.QueryRow(ctx, `
		UPDATE users SET eco_level = $2
		WHERE id = $1
		RETURNING id, name, email, role, points, eco_level, referral_code, is_active, created_at, updated_at
	`, userID, models.EcoLevelFor(points)).Scan(
		&user.ID, &user.Name, &user.Email, &user.Role, &user.Points, &user.EcoLevel,
		&user.ReferralCode, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update eco level: %w", err)
	}
	return &user, nil
}
