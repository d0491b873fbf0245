package commission

import (
	"database/sql"
	"time"
)

// Status is the commission lifecycle. It moves from pending to approved to
// paid and never backwards.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusPaid     Status = "paid"
)

// BeneficiaryType classifies how the credited staff member contributed to
// the sale.
type BeneficiaryType string

const (
	BeneficiaryClosingManager  BeneficiaryType = "closing_manager"
	BeneficiarySourcingManager BeneficiaryType = "sourcing_manager"
	BeneficiaryTelecaller      BeneficiaryType = "telecaller"
)

// Commission is one credit entry per (booking, beneficiary type).
// Approving or paying a commission never mutates its booking.
type Commission struct {
	ID            int64           `json:"id" db:"id"`
	CommissionRef string          `json:"commission_ref" db:"commission_ref"`
	BookingID     int64           `json:"booking_id" db:"booking_id"`
	ProjectID     int64           `json:"project_id" db:"project_id"`
	StaffID       int64           `json:"staff_id" db:"staff_id"`
	Beneficiary   BeneficiaryType `json:"beneficiary" db:"beneficiary"`
	Status        Status          `json:"status" db:"status"`

	ApprovedBy sql.NullInt64 `json:"approved_by,omitempty" db:"approved_by"`
	ApprovedAt sql.NullTime  `json:"approved_at,omitempty" db:"approved_at"`
	PaidBy     sql.NullInt64 `json:"paid_by,omitempty" db:"paid_by"`
	PaidAt     sql.NullTime  `json:"paid_at,omitempty" db:"paid_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Credit is an attribution decision before persistence.
type Credit struct {
	StaffID     int64           `json:"staff_id"`
	Beneficiary BeneficiaryType `json:"beneficiary"`
}
