package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the schema. Claims are the durable event log; every
// counter column (current_claims, successful_claims, points, partner
// totals) is a materialized view over it, recomputable by the
// reconciliation pass.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash TEXT,
			role VARCHAR(20) NOT NULL DEFAULT 'user',
			points INT NOT NULL DEFAULT 0 CHECK (points >= 0),
			eco_level VARCHAR(20) NOT NULL DEFAULT 'beginner',
			referral_code VARCHAR(20) UNIQUE NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS partners (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			verification_status VARCHAR(20) NOT NULL DEFAULT 'pending',
			is_active BOOLEAN NOT NULL DEFAULT true,
			total_rewards INT NOT NULL DEFAULT 0,
			total_scans INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS rewards (
			id UUID PRIMARY KEY,
			partner_id UUID NOT NULL REFERENCES partners(id),
			title VARCHAR(255) NOT NULL,
			description TEXT,
			points INT NOT NULL CHECK (points >= 1 AND points <= 1000),
			max_claims_per_user INT NOT NULL DEFAULT 1 CHECK (max_claims_per_user >= 1),
			total_max_claims INT CHECK (total_max_claims >= 1),
			current_claims INT NOT NULL DEFAULT 0 CHECK (current_claims >= 0),
			expiry_date TIMESTAMPTZ,
			is_active BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS qr_codes (
			id UUID PRIMARY KEY,
			code VARCHAR(64) UNIQUE NOT NULL,
			partner_id UUID NOT NULL REFERENCES partners(id),
			reward_id UUID NOT NULL REFERENCES rewards(id),
			is_active BOOLEAN NOT NULL DEFAULT true,
			scan_count INT NOT NULL DEFAULT 0,
			unique_scans INT NOT NULL DEFAULT 0,
			successful_claims INT NOT NULL DEFAULT 0,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			address TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS qr_scans (
			id UUID PRIMARY KEY,
			qr_code_id UUID NOT NULL REFERENCES qr_codes(id),
			user_id UUID NOT NULL REFERENCES users(id),
			scan_count INT NOT NULL DEFAULT 1,
			first_scanned_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_scanned_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_qr_scans_code_user ON qr_scans(qr_code_id, user_id)`,
		`CREATE TABLE IF NOT EXISTS reward_claims (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id),
			qr_code_id UUID NOT NULL REFERENCES qr_codes(id),
			partner_id UUID NOT NULL REFERENCES partners(id),
			reward_id UUID NOT NULL REFERENCES rewards(id),
			points_awarded INT NOT NULL CHECK (points_awarded >= 1),
			status VARCHAR(20) NOT NULL DEFAULT 'completed',
			claim_method VARCHAR(20) NOT NULL DEFAULT 'qr_scan',
			notes TEXT,
			ip_address TEXT,
			user_agent TEXT,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			address TEXT,
			device_info TEXT,
			proof_type TEXT,
			proof_url TEXT,
			claimed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			reversed_at TIMESTAMPTZ
		)`,
		// At most one non-reversed claim per (user, qr code). Concurrent
		// duplicate claims race on this index instead of on an
		// application-level check.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_claims_user_qr_active
			ON reward_claims(user_id, qr_code_id) WHERE status <> 'reversed'`,
		`CREATE INDEX IF NOT EXISTS idx_claims_user ON reward_claims(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_claims_reward ON reward_claims(reward_id)`,
		`CREATE INDEX IF NOT EXISTS idx_claims_qr_code ON reward_claims(qr_code_id)`,
		`CREATE TABLE IF NOT EXISTS activities (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id),
			activity_type VARCHAR(50) NOT NULL,
			points INT NOT NULL,
			description TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_user ON activities(user_id)`,
		`CREATE TABLE IF NOT EXISTS leaderboard (
			user_id UUID PRIMARY KEY REFERENCES users(id),
			name VARCHAR(255) NOT NULL,
			eco_level VARCHAR(20) NOT NULL DEFAULT 'beginner',
			total_points INT NOT NULL DEFAULT 0,
			current_rank INT NOT NULL DEFAULT 0,
			previous_rank INT,
			rank_movement VARCHAR(10) NOT NULL DEFAULT 'new',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}
