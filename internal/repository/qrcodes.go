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

type QRCodeRepository struct {
	pool *pgxpool.Pool
}

func NewQRCodeRepository(pool *pgxpool.Pool) *QRCodeRepository {
	return &QRCodeRepository{pool: pool}
}

const qrCodeColumns = `id, code, partner_id, reward_id, is_active,
	scan_count, unique_scans, successful_claims,
	latitude, longitude, address, created_at, updated_at`

func scanQRCode(row pgx.Row) (*models.QRCode, error) {
	var q models.QRCode
	var lat, lng *float64
	var address *string

	err := row.Scan(
		&q.ID, &q.Code, &q.PartnerID, &q.RewardID, &q.IsActive,
		&q.ScanCount, &q.UniqueScans, &q.SuccessfulClaims,
		&lat, &lng, &address, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lat != nil && lng != nil {
		q.Location = &models.GeoLocation{Latitude: *lat, Longitude: *lng, Address: address}
	}

	return &q, nil
}

// Create mints a QR code bound to one (partner, reward) pair
func (r *QRCodeRepository) Create(ctx context.Context, qr *models.QRCode) error {
	if qr.ID == uuid.Nil {
		qr.ID = uuid.New()
	}
	if qr.Code == "" {
		qr.Code = models.NewQRCodeToken()
	}

	var lat, lng *float64
	var address *string
	if qr.Location != nil {
		lat = &qr.Location.Latitude
		lng = &qr.Location.Longitude
		address = qr.Location.Address
	}

	err := r.pool.QueryRow(ctx, `
		INSERT INTO qr_codes (id, code, partner_id, reward_id, is_active, latitude, longitude, address)
		VALUES ($1, $2, $3, $4, true, $5, $6, $7)
		RETURNING created_at, updated_at
	`, qr.ID, qr.Code, qr.PartnerID, qr.RewardID, lat, lng, address).Scan(&qr.CreatedAt, &qr.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create QR code: %w", err)
	}
	qr.IsActive = true
	return nil
}

// GetByCode resolves a QR code by its public token
func (r *QRCodeRepository) GetByCode(ctx context.Context, code string) (*models.QRCode, error) {
	query := fmt.Sprintf(`SELECT %s FROM qr_codes WHERE code = $1`, qrCodeColumns)

	qr, err := scanQRCode(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQRCodeNotFound
		}
		return nil, fmt.Errorf("failed to query QR code: %w", err)
	}
	return qr, nil
}

// RecordScan logs a scan and bumps the scan counters atomically.
// Scanning is independent of claiming: a scan never creates a claim.
// qr_scans holds one row per (code, user) with a per-user count; the
// upsert serializes concurrent scans on the unique index, so exactly
// one scan per user ever sees scan_count = 1 and earns the
// unique_scans increment. The partner's total_scans aggregate rides
// in the same transaction.
func (r *QRCodeRepository) RecordScan(ctx context.Context, qrCodeID, userID uuid.UUID) (*models.QRCode, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var userScans int
	err = tx.QueryRow(ctx, `
		INSERT INTO qr_scans (id, qr_code_id, user_id) VALUES ($1, $2, $3)
		ON CONFLICT (qr_code_id, user_id) DO UPDATE
		SET scan_count = qr_scans.scan_count + 1, last_scanned_at = NOW()
		RETURNING scan_count
	`, uuid.New(), qrCodeID, userID).Scan(&userScans)
	if err != nil {
		return nil, fmt.Errorf("failed to record scan: %w", err)
	}

	uniqueDelta := 0
	if userScans == 1 {
		uniqueDelta = 1
	}

	query := fmt.Sprintf(`
		UPDATE qr_codes
		SET scan_count = scan_count + 1,
			unique_scans = unique_scans + $2,
			updated_at = NOW()
		WHERE id = $1
		RETURNING %s`, qrCodeColumns)

	qr, err := scanQRCode(tx.QueryRow(ctx, query, qrCodeID, uniqueDelta))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQRCodeNotFound
		}
		return nil, fmt.Errorf("failed to update scan counters: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE partners SET total_scans = total_scans + 1, updated_at = NOW() WHERE id = $1
	`, qr.PartnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to update partner scans: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return qr, nil
}

// SetActive toggles whether the code accepts scans and claims
func (r *QRCodeRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE qr_codes SET is_active = $2, updated_at = NOW() WHERE id = $1
	`, id, active)
	if err != nil {
		return fmt.Errorf("failed to update QR code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrQRCodeNotFound
	}
	return nil
}

// ListByPartner returns a partner's QR codes
func (r *QRCodeRepository) ListByPartner(ctx context.Context, partnerID uuid.UUID) ([]models.QRCode, error) {
	query := fmt.Sprintf(`SELECT %s FROM qr_codes WHERE partner_id = $1 ORDER BY created_at DESC`, qrCodeColumns)

	rows, err := r.pool.Query(ctx, query, partnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query QR codes: %w", err)
	}
	defer rows.Close()

	codes := []models.QRCode{}
	for rows.Next() {
		qr, err := scanQRCode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan QR code: %w", err)
		}
		codes = append(codes, *qr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating QR codes: %w", err)
	}

	return codes, nil
}
