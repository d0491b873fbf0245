package booking

import (
	"database/sql"
	"time"
)

// Booking records the sale of one unit to a lead within a project. A
// multi-unit request creates one Booking per unit sharing a group
// reference, with the negotiated amounts split proportionally.
type Booking struct {
	ID            int64  `json:"id" db:"id"`
	BookingRef    string `json:"booking_ref" db:"booking_ref"`
	GroupRef      string `json:"group_ref" db:"group_ref"`
	ProjectID     int64  `json:"project_id" db:"project_id"`
	AssociationID int64  `json:"association_id" db:"association_id"`
	LeadID        int64  `json:"lead_id" db:"lead_id"`
	UnitID        int64  `json:"unit_id" db:"unit_id"`

	AgreementValue  float64 `json:"agreement_value" db:"agreement_value"`
	NegotiatedPrice float64 `json:"negotiated_price" db:"negotiated_price"`
	TokenAmount     float64 `json:"token_amount" db:"token_amount"`
	DownPayment     float64 `json:"down_payment" db:"down_payment"`

	ChannelPartnerID sql.NullInt64 `json:"channel_partner_id,omitempty" db:"channel_partner_id"`

	// Credit references used purely for commission attribution, never for
	// access control.
	ClosingManagerID  sql.NullInt64 `json:"closing_manager_id,omitempty" db:"closing_manager_id"`
	SourcingManagerID sql.NullInt64 `json:"sourcing_manager_id,omitempty" db:"sourcing_manager_id"`
	TelecallerID      sql.NullInt64 `json:"telecaller_id,omitempty" db:"telecaller_id"`

	ArchivedAt sql.NullTime `json:"archived_at,omitempty" db:"archived_at"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at" db:"updated_at"`
}

// Payment is the token/down-payment receipt created together with its
// booking.
type Payment struct {
	ID        int64     `json:"id" db:"id"`
	BookingID int64     `json:"booking_id" db:"booking_id"`
	Amount    float64   `json:"amount" db:"amount"`
	Mode      string    `json:"mode" db:"mode"`
	Reference string    `json:"reference" db:"reference"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
