package postgres

import (
	"context"
	"errors"
	"fmt"

	"estatedesk-service/internal/domain/unit"
	xerrors "estatedesk-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UnitRepository struct {
	db *pgxpool.Pool
}

func NewUnitRepository(db *pgxpool.Pool) *UnitRepository {
	return &UnitRepository{db: db}
}

const unitColumns = `
	id, project_id, tower, floor, unit_number,
	area_config_id, amenities, status,
	blocked_by, blocked_at, blocked_until, booking_id,
	created_at, updated_at`

func scanUnit(row pgx.Row) (*unit.Unit, error) {
	var u unit.Unit
	err := row.Scan(
		&u.ID, &u.ProjectID, &u.Tower, &u.Floor, &u.UnitNumber,
		&u.AreaConfigID, &u.Amenities, &u.Status,
		&u.BlockedBy, &u.BlockedAt, &u.BlockedUntil, &u.BookingID,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan unit: %w", err)
	}
	return &u, nil
}

// FindByID retrieves a unit by ID.
func (r *UnitRepository) FindByID(ctx context.Context, id int64) (*unit.Unit, error) {
	query := `SELECT ` + unitColumns + ` FROM units WHERE id = $1`
	return scanUnit(r.db.QueryRow(ctx, query, id))
}

// ListByProject retrieves a project's units matching the filters.
func (r *UnitRepository) ListByProject(ctx context.Context, projectID int64, f *unit.ListFilters) ([]*unit.Unit, error) {
	query := `SELECT ` + unitColumns + ` FROM units WHERE project_id = $1`
	args := []interface{}{projectID}
	idx := 2

	if f != nil {
		if f.Tower != "" {
			query += fmt.Sprintf(" AND tower = $%d", idx)
			args = append(args, f.Tower)
			idx++
		}
		if f.Floor != nil {
			query += fmt.Sprintf(" AND floor = $%d", idx)
			args = append(args, *f.Floor)
			idx++
		}
		if f.Status != nil {
			query += fmt.Sprintf(" AND status = $%d", idx)
			args = append(args, *f.Status)
			idx++
		}
	}
	query += " ORDER BY tower, floor, unit_number"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	defer rows.Close()

	var out []*unit.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateBlock persists block/unblock state changes.
func (r *UnitRepository) UpdateBlock(ctx context.Context, u *unit.Unit) error {
	query := `
		UPDATE units
		SET status = $2, blocked_by = $3, blocked_at = $4, blocked_until = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query,
		u.ID, u.Status, u.BlockedBy, u.BlockedAt, u.BlockedUntil,
	).Scan(&u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return xerrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update unit block: %w", err)
	}
	return nil
}

// AcquireForBooking locks the candidate unit rows inside the booking
// transaction. Rows whose lock is already held elsewhere are skipped, not
// waited on: they come back in busy and the caller treats them as
// unavailable. This is the only mutual-exclusion point in the system.
func (r *UnitRepository) AcquireForBooking(ctx context.Context, tx pgx.Tx, unitIDs []int64) (acquired []*unit.Unit, busy []int64, err error) {
	query := `
		SELECT ` + unitColumns + `
		FROM units
		WHERE id = ANY($1)
		FOR UPDATE SKIP LOCKED
	`

	rows, err := tx.Query(ctx, query, unitIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to acquire units: %w", err)
	}
	defer rows.Close()

	got := make(map[int64]bool, len(unitIDs))
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, nil, err
		}
		acquired = append(acquired, u)
		got[u.ID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	for _, id := range unitIDs {
		if !got[id] {
			busy = append(busy, id)
		}
	}
	return acquired, busy, nil
}

// MarkBookedWithTx links the unit to its booking inside the booking
// transaction. The row is already lock-held by AcquireForBooking.
func (r *UnitRepository) MarkBookedWithTx(ctx context.Context, tx pgx.Tx, unitID, bookingID int64) error {
	query := `
		UPDATE units
		SET status = 'booked', booking_id = $2,
		    blocked_by = NULL, blocked_at = NULL, blocked_until = NULL,
		    updated_at = NOW()
		WHERE id = $1
	`
	if _, err := tx.Exec(ctx, query, unitID, bookingID); err != nil {
		return fmt.Errorf("failed to mark unit booked: %w", err)
	}
	return nil
}
