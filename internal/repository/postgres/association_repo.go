package postgres

import (
	"context"
	"errors"
	"fmt"

	"estatedesk-service/internal/domain/association"
	xerrors "estatedesk-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AssociationRepository struct {
	db *pgxpool.Pool
}

func NewAssociationRepository(db *pgxpool.Pool) *AssociationRepository {
	return &AssociationRepository{db: db}
}

const associationColumns = `
	id, lead_id, project_id, status,
	is_pretagged, pretag_status, channel_partner_id,
	phone_verified, verified_at,
	assigned_to, assigned_at, assigned_by,
	previous_visit_id, revisit_count,
	queued_at, queued_by,
	created_by, created_by_role,
	archived_at, created_at, updated_at`

func scanAssociation(row pgx.Row) (*association.Association, error) {
	var a association.Association
	err := row.Scan(
		&a.ID, &a.LeadID, &a.ProjectID, &a.Status,
		&a.IsPretagged, &a.PretagStatus, &a.ChannelPartnerID,
		&a.PhoneVerified, &a.VerifiedAt,
		&a.AssignedTo, &a.AssignedAt, &a.AssignedBy,
		&a.PreviousVisitID, &a.RevisitCount,
		&a.QueuedAt, &a.QueuedBy,
		&a.CreatedBy, &a.CreatedByRole,
		&a.ArchivedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan association: %w", err)
	}
	return &a, nil
}

// Create inserts a new association. The partial unique index on
// (lead_id, project_id) where archived_at is null enforces the one-live-row
// invariant; violations surface as ErrConflict.
func (r *AssociationRepository) Create(ctx context.Context, a *association.Association) error {
	query := `
		INSERT INTO associations (
			lead_id, project_id, status,
			is_pretagged, pretag_status, channel_partner_id,
			assigned_to, assigned_at, assigned_by,
			previous_visit_id, revisit_count,
			queued_at, queued_by,
			created_by, created_by_role
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		a.LeadID, a.ProjectID, a.Status,
		a.IsPretagged, a.PretagStatus, a.ChannelPartnerID,
		a.AssignedTo, a.AssignedAt, a.AssignedBy,
		a.PreviousVisitID, a.RevisitCount,
		a.QueuedAt, a.QueuedBy,
		a.CreatedBy, a.CreatedByRole,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("association already exists for lead and project: %w", xerrors.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to create association: %w", err)
	}
	return nil
}

// FindByID retrieves an association by ID.
func (r *AssociationRepository) FindByID(ctx context.Context, id int64) (*association.Association, error) {
	query := `SELECT ` + associationColumns + ` FROM associations WHERE id = $1`
	return scanAssociation(r.db.QueryRow(ctx, query, id))
}

// FindLive retrieves the single non-archived association for a
// (lead, project) pair.
func (r *AssociationRepository) FindLive(ctx context.Context, leadID, projectID int64) (*association.Association, error) {
	query := `
		SELECT ` + associationColumns + `
		FROM associations
		WHERE lead_id = $1 AND project_id = $2 AND archived_at IS NULL
	`
	return scanAssociation(r.db.QueryRow(ctx, query, leadID, projectID))
}

// Update persists mutable fields of an association.
func (r *AssociationRepository) Update(ctx context.Context, a *association.Association) error {
	query := `
		UPDATE associations
		SET status = $2, pretag_status = $3, phone_verified = $4, verified_at = $5,
		    assigned_to = $6, assigned_at = $7, assigned_by = $8,
		    queued_at = $9, queued_by = $10, archived_at = $11,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query,
		a.ID, a.Status, a.PretagStatus, a.PhoneVerified, a.VerifiedAt,
		a.AssignedTo, a.AssignedAt, a.AssignedBy,
		a.QueuedAt, a.QueuedBy, a.ArchivedAt,
	).Scan(&a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return xerrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update association: %w", err)
	}
	return nil
}

// List retrieves associations matching the filters, newest first.
func (r *AssociationRepository) List(ctx context.Context, f *association.ListFilters) ([]*association.Association, error) {
	query := `SELECT ` + associationColumns + ` FROM associations WHERE archived_at IS NULL`
	args := []interface{}{}
	idx := 1

	if f.ProjectID != 0 {
		query += fmt.Sprintf(" AND project_id = $%d", idx)
		args = append(args, f.ProjectID)
		idx++
	}
	if f.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, *f.Status)
		idx++
	}
	if f.AssignedTo != nil {
		query += fmt.Sprintf(" AND assigned_to = $%d", idx)
		args = append(args, *f.AssignedTo)
		idx++
	}
	if f.Pretagged != nil {
		query += fmt.Sprintf(" AND is_pretagged = $%d", idx)
		args = append(args, *f.Pretagged)
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
		return nil, fmt.Errorf("failed to list associations: %w", err)
	}
	defer rows.Close()

	var out []*association.Association
	for rows.Next() {
		a, err := scanAssociation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AcquireUnassigned locks up to limit unassigned, non-pretag-pending
// associations for assignment inside the caller's transaction. Rows
// already lock-held by a concurrent scheduler are skipped, never waited
// on, so two runs cannot double-assign.
func (r *AssociationRepository) AcquireUnassigned(ctx context.Context, tx pgx.Tx, projectID int64, limit int) ([]*association.Association, error) {
	query := `
		SELECT ` + associationColumns + `
		FROM associations
		WHERE project_id = $1
		  AND archived_at IS NULL
		  AND assigned_to IS NULL
		  AND status NOT IN ('booked', 'lost', 'queued_visit')
		  AND NOT (is_pretagged AND pretag_status = 'pending_verification')
		ORDER BY created_at
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`

	rows, err := tx.Query(ctx, query, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire unassigned associations: %w", err)
	}
	defer rows.Close()

	var out []*association.Association
	for rows.Next() {
		a, err := scanAssociation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AssignWithTx records an assignment inside the scheduler's transaction.
func (r *AssociationRepository) AssignWithTx(ctx context.Context, tx pgx.Tx, associationID, staffID, assignerID int64) error {
	query := `
		UPDATE associations
		SET assigned_to = $2, assigned_at = NOW(), assigned_by = $3, updated_at = NOW()
		WHERE id = $1
	`
	if _, err := tx.Exec(ctx, query, associationID, staffID, assignerID); err != nil {
		return fmt.Errorf("failed to assign association: %w", err)
	}
	return nil
}

// CountAssignedToday counts assignments made to one employee on one
// project since midnight, for the daily quota.
func (r *AssociationRepository) CountAssignedToday(ctx context.Context, projectID, staffID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM associations
		WHERE project_id = $1 AND assigned_to = $2
		  AND assigned_at >= date_trunc('day', NOW())
	`

	var count int
	if err := r.db.QueryRow(ctx, query, projectID, staffID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count assignments: %w", err)
	}
	return count, nil
}

// MarkBookedWithTx flips the association to booked inside the booking
// transaction.
func (r *AssociationRepository) MarkBookedWithTx(ctx context.Context, tx pgx.Tx, associationID int64) error {
	query := `
		UPDATE associations
		SET status = 'booked', updated_at = NOW()
		WHERE id = $1
	`
	if _, err := tx.Exec(ctx, query, associationID); err != nil {
		return fmt.Errorf("failed to mark association booked: %w", err)
	}
	return nil
}
