package postgres

import (
	"context"
	"fmt"

	"estatedesk-service/internal/domain/booking"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{db: db}
}

// CreateWithTx inserts a booking inside the conversion transaction.
func (r *BookingRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, b *booking.Booking) error {
	query := `
		INSERT INTO bookings (
			booking_ref, group_ref, project_id, association_id, lead_id, unit_id,
			agreement_value, negotiated_price, token_amount, down_payment,
			channel_partner_id, closing_manager_id, sourcing_manager_id, telecaller_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		b.BookingRef, b.GroupRef, b.ProjectID, b.AssociationID, b.LeadID, b.UnitID,
		b.AgreementValue, b.NegotiatedPrice, b.TokenAmount, b.DownPayment,
		b.ChannelPartnerID, b.ClosingManagerID, b.SourcingManagerID, b.TelecallerID,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// CreatePaymentWithTx inserts the booking's first payment in the same
// transaction.
func (r *BookingRepository) CreatePaymentWithTx(ctx context.Context, tx pgx.Tx, p *booking.Payment) error {
	query := `
		INSERT INTO payments (booking_id, amount, mode, reference)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := tx.QueryRow(ctx, query, p.BookingID, p.Amount, p.Mode, p.Reference).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// ListByGroup retrieves all bookings created by one multi-unit request.
func (r *BookingRepository) ListByGroup(ctx context.Context, groupRef string) ([]*booking.Booking, error) {
	query := `
		SELECT id, booking_ref, group_ref, project_id, association_id, lead_id, unit_id,
		       agreement_value, negotiated_price, token_amount, down_payment,
		       channel_partner_id, closing_manager_id, sourcing_manager_id, telecaller_id,
		       archived_at, created_at, updated_at
		FROM bookings
		WHERE group_ref = $1
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, groupRef)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var out []*booking.Booking
	for rows.Next() {
		var b booking.Booking
		err := rows.Scan(
			&b.ID, &b.BookingRef, &b.GroupRef, &b.ProjectID, &b.AssociationID, &b.LeadID, &b.UnitID,
			&b.AgreementValue, &b.NegotiatedPrice, &b.TokenAmount, &b.DownPayment,
			&b.ChannelPartnerID, &b.ClosingManagerID, &b.SourcingManagerID, &b.TelecallerID,
			&b.ArchivedAt, &b.CreatedAt, &b.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}
