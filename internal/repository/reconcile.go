package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ReconcileRepository recomputes every counter column from the claim
// ledger and activity log. It is the repair path for side-effect
// writes that failed after a claim record committed: claims are the
// durable source of truth, counters are derivable caches.
type ReconcileRepository struct {
	pool *pgxpool.Pool
}

func NewReconcileRepository(pool *pgxpool.Pool) *ReconcileRepository {
	return &ReconcileRepository{pool: pool}
}

// RecountRewardClaims resets rewards.current_claims to the count of
// non-reversed claims referencing each reward. Returns the number of
// rows that were out of sync.
func (r *ReconcileRepository) RecountRewardClaims(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE rewards SET current_claims = c.cnt, updated_at = NOW()
		FROM (
			SELECT r.id, COALESCE(COUNT(rc.id) FILTER (WHERE rc.status <> 'reversed'), 0) AS cnt
			FROM rewards r
			LEFT JOIN reward_claims rc ON rc.reward_id = r.id
			GROUP BY r.id
		) c
		WHERE rewards.id = c.id AND rewards.current_claims <> c.cnt
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to recount reward claims: %w", err)
	}
	return tag.RowsAffected(), nil
}

// RecountQRCodeClaims resets qr_codes.successful_claims from the ledger
func (r *ReconcileRepository) RecountQRCodeClaims(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE qr_codes SET successful_claims = c.cnt, updated_at = NOW()
		FROM (
			SELECT q.id, COALESCE(COUNT(rc.id) FILTER (WHERE rc.status <> 'reversed'), 0) AS cnt
			FROM qr_codes q
			LEFT JOIN reward_claims rc ON rc.qr_code_id = q.id
			GROUP BY q.id
		) c
		WHERE qr_codes.id = c.id AND qr_codes.successful_claims <> c.cnt
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to recount QR code claims: %w", err)
	}
	return tag.RowsAffected(), nil
}

// RecountQRCodeScans rebuilds qr_codes.scan_count and unique_scans
// from the qr_scans rows. Each row carries one user's scan count, so
// the total is the sum and the unique count is the row count.
func (r *ReconcileRepository) RecountQRCodeScans(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE qr_codes SET scan_count = c.total, unique_scans = c.uniq, updated_at = NOW()
		FROM (
			SELECT q.id,
				COALESCE(SUM(s.scan_count), 0) AS total,
				COUNT(s.id) AS uniq
			FROM qr_codes q
			LEFT JOIN qr_scans s ON s.qr_code_id = q.id
			GROUP BY q.id
		) c
		WHERE qr_codes.id = c.id
		  AND (qr_codes.scan_count <> c.total OR qr_codes.unique_scans <> c.uniq)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to recount QR code scans: %w", err)
	}
	return tag.RowsAffected(), nil
}

// RecomputeUserPoints rebuilds users.points and eco_level from
// non-reversed claims plus manual activity credits.
func (r *ReconcileRepository) RecomputeUserPoints(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET
			points = c.total,
			eco_level = CASE
				WHEN c.total >= 1000 THEN 'leader'
				WHEN c.total >= 500 THEN 'expert'
				WHEN c.total >= 250 THEN 'advanced'
				WHEN c.total >= 100 THEN 'intermediate'
				ELSE 'beginner'
			END,
			updated_at = NOW()
		FROM (
			SELECT u.id,
				COALESCE((SELECT SUM(rc.points_awarded) FROM reward_claims rc
					WHERE rc.user_id = u.id AND rc.status <> 'reversed'), 0)
				+ COALESCE((SELECT SUM(a.points) FROM activities a WHERE a.user_id = u.id), 0) AS total
			FROM users u
		) c
		WHERE users.id = c.id AND users.points <> c.total
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to recompute user points: %w", err)
	}
	return tag.RowsAffected(), nil
}

// RecountPartnerTotals rebuilds partner aggregates from their children
func (r *ReconcileRepository) RecountPartnerTotals(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE partners SET
			total_rewards = c.reward_cnt,
			total_scans = c.scan_cnt,
			updated_at = NOW()
		FROM (
			SELECT p.id,
				COALESCE((SELECT COUNT(*) FROM rewards r WHERE r.partner_id = p.id), 0) AS reward_cnt,
				COALESCE((SELECT SUM(q.scan_count) FROM qr_codes q WHERE q.partner_id = p.id), 0) AS scan_cnt
			FROM partners p
		) c
		WHERE partners.id = c.id
		  AND (partners.total_rewards <> c.reward_cnt OR partners.total_scans <> c.scan_cnt)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to recount partner totals: %w", err)
	}
	return tag.RowsAffected(), nil
}
