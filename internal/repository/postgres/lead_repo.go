package postgres

import (
	"context"
	"errors"
	"fmt"

	"estatedesk-service/internal/domain/lead"
	xerrors "estatedesk-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LeadRepository struct {
	db *pgxpool.Pool
}

func NewLeadRepository(db *pgxpool.Pool) *LeadRepository {
	return &LeadRepository{db: db}
}

const leadColumns = `id, lead_reference, phone, full_name, email, sources, archived_at, created_at, updated_at`

func scanLead(row pgx.Row) (*lead.Lead, error) {
	var l lead.Lead
	err := row.Scan(
		&l.ID, &l.LeadReference, &l.Phone, &l.FullName, &l.Email,
		&l.Sources, &l.ArchivedAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan lead: %w", err)
	}
	return &l, nil
}

// FindByPhone looks a lead up by its normalized phone number.
func (r *LeadRepository) FindByPhone(ctx context.Context, phone string) (*lead.Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE phone = $1 AND archived_at IS NULL
	`
	return scanLead(r.db.QueryRow(ctx, query, phone))
}

// FindByID retrieves a lead by ID.
func (r *LeadRepository) FindByID(ctx context.Context, id int64) (*lead.Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE id = $1
	`
	return scanLead(r.db.QueryRow(ctx, query, id))
}

// Create inserts a new lead.
func (r *LeadRepository) Create(ctx context.Context, l *lead.Lead) error {
	query := `
		INSERT INTO leads (lead_reference, phone, full_name, email, sources)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		l.LeadReference, l.Phone, l.FullName, l.Email, l.Sources,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

// Update persists contact detail changes on later contact.
func (r *LeadRepository) Update(ctx context.Context, l *lead.Lead) error {
	query := `
		UPDATE leads
		SET full_name = $2, email = $3, sources = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query, l.ID, l.FullName, l.Email, l.Sources).Scan(&l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return xerrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update lead: %w", err)
	}
	return nil
}

// Archive soft-deletes a lead; leads are never removed.
func (r *LeadRepository) Archive(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE leads SET archived_at = NOW() WHERE id = $1 AND archived_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to archive lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}
