package postgres

import (
	"context"
	"errors"
	"fmt"

	"estatedesk-service/internal/domain/otp"
	xerrors "estatedesk-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OTPRepository struct {
	db *pgxpool.Pool
}

func NewOTPRepository(db *pgxpool.Pool) *OTPRepository {
	return &OTPRepository{db: db}
}

const otpColumns = `id, association_id, phone, code_hash, expires_at, attempts, verified, verified_at, created_at, updated_at`

func scanOTP(row pgx.Row) (*otp.Record, error) {
	var rec otp.Record
	err := row.Scan(
		&rec.ID, &rec.AssociationID, &rec.Phone, &rec.CodeHash,
		&rec.ExpiresAt, &rec.Attempts, &rec.Verified, &rec.VerifiedAt,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan otp record: %w", err)
	}
	return &rec, nil
}

// FindActive retrieves the single unexpired, unverified record for an
// association, newest first.
func (r *OTPRepository) FindActive(ctx context.Context, associationID int64) (*otp.Record, error) {
	query := `
		SELECT ` + otpColumns + `
		FROM otp_records
		WHERE association_id = $1 AND verified = FALSE AND expires_at > NOW()
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanOTP(r.db.QueryRow(ctx, query, associationID))
}

// FindVerified retrieves the verified record for an association, if any.
func (r *OTPRepository) FindVerified(ctx context.Context, associationID int64) (*otp.Record, error) {
	query := `
		SELECT ` + otpColumns + `
		FROM otp_records
		WHERE association_id = $1 AND verified = TRUE
		ORDER BY verified_at DESC
		LIMIT 1
	`
	return scanOTP(r.db.QueryRow(ctx, query, associationID))
}

// Create stores a freshly issued record.
func (r *OTPRepository) Create(ctx context.Context, rec *otp.Record) error {
	query := `
		INSERT INTO otp_records (association_id, phone, code_hash, expires_at, attempts)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		rec.AssociationID, rec.Phone, rec.CodeHash, rec.ExpiresAt, rec.Attempts,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create otp record: %w", err)
	}
	return nil
}

// Update persists attempt counts, verification state and expiry changes.
func (r *OTPRepository) Update(ctx context.Context, rec *otp.Record) error {
	query := `
		UPDATE otp_records
		SET attempts = $2, verified = $3, verified_at = $4, expires_at = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query,
		rec.ID, rec.Attempts, rec.Verified, rec.VerifiedAt, rec.ExpiresAt,
	).Scan(&rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return xerrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update otp record: %w", err)
	}
	return nil
}
