package postgres

import (
	"context"
	"errors"
	"fmt"

	"estatedesk-service/internal/domain/commission"
	xerrors "estatedesk-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CommissionRepository struct {
	db *pgxpool.Pool
}

func NewCommissionRepository(db *pgxpool.Pool) *CommissionRepository {
	return &CommissionRepository{db: db}
}

const commissionColumns = `
	id, commission_ref, booking_id, project_id, staff_id, beneficiary, status,
	approved_by, approved_at, paid_by, paid_at, created_at, updated_at`

func scanCommission(row pgx.Row) (*commission.Commission, error) {
	var cm commission.Commission
	err := row.Scan(
		&cm.ID, &cm.CommissionRef, &cm.BookingID, &cm.ProjectID, &cm.StaffID,
		&cm.Beneficiary, &cm.Status,
		&cm.ApprovedBy, &cm.ApprovedAt, &cm.PaidBy, &cm.PaidAt,
		&cm.CreatedAt, &cm.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan commission: %w", err)
	}
	return &cm, nil
}

// CreateWithTx inserts a commission inside the booking transaction.
func (r *CommissionRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, cm *commission.Commission) error {
	query := `
		INSERT INTO commissions (commission_ref, booking_id, project_id, staff_id, beneficiary, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		cm.CommissionRef, cm.BookingID, cm.ProjectID, cm.StaffID, cm.Beneficiary, cm.Status,
	).Scan(&cm.ID, &cm.CreatedAt, &cm.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create commission: %w", err)
	}
	return nil
}

// FindByID retrieves a commission by ID.
func (r *CommissionRepository) FindByID(ctx context.Context, id int64) (*commission.Commission, error) {
	query := `SELECT ` + commissionColumns + ` FROM commissions WHERE id = $1`
	return scanCommission(r.db.QueryRow(ctx, query, id))
}

// Approve performs the pending to approved transition as a single guarded
// update: zero rows affected means the commission was not pending.
func (r *CommissionRepository) Approve(ctx context.Context, id, approverID int64) (*commission.Commission, error) {
	query := `
		UPDATE commissions
		SET status = 'approved', approved_by = $2, approved_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + commissionColumns

	cm, err := scanCommission(r.db.QueryRow(ctx, query, id, approverID))
	if errors.Is(err, xerrors.ErrNotFound) {
		// Distinguish missing from wrong-state for the caller.
		if _, findErr := r.FindByID(ctx, id); findErr == nil {
			return nil, fmt.Errorf("commission is not pending: %w", xerrors.ErrConflict)
		}
		return nil, xerrors.ErrNotFound
	}
	return cm, err
}

// MarkPaid performs the approved to paid transition with the same guard.
func (r *CommissionRepository) MarkPaid(ctx context.Context, id, payerID int64) (*commission.Commission, error) {
	query := `
		UPDATE commissions
		SET status = 'paid', paid_by = $2, paid_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'approved'
		RETURNING ` + commissionColumns

	cm, err := scanCommission(r.db.QueryRow(ctx, query, id, payerID))
	if errors.Is(err, xerrors.ErrNotFound) {
		if _, findErr := r.FindByID(ctx, id); findErr == nil {
			return nil, fmt.Errorf("commission is not approved: %w", xerrors.ErrConflict)
		}
		return nil, xerrors.ErrNotFound
	}
	return cm, err
}

// List retrieves commissions matching the filters, newest first.
func (r *CommissionRepository) List(ctx context.Context, f *commission.ListFilters) ([]*commission.Commission, error) {
	query := `SELECT ` + commissionColumns + ` FROM commissions WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if f.ProjectID != 0 {
		query += fmt.Sprintf(" AND project_id = $%d", idx)
		args = append(args, f.ProjectID)
		idx++
	}
	if f.StaffID != nil {
		query += fmt.Sprintf(" AND staff_id = $%d", idx)
		args = append(args, *f.StaffID)
		idx++
	}
	if f.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, *f.Status)
		idx++
	}

	page, size := f.Page, f.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 50
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, size, (page-1)*size)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list commissions: %w", err)
	}
	defer rows.Close()

	var out []*commission.Commission
	for rows.Next() {
		cm, err := scanCommission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cm)
	}
	return out, rows.Err()
}
