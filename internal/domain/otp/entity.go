package otp

import (
	"database/sql"
	"time"
)

// Record is one verification attempt for an association. Only the keyed
// hash of the code is stored; the plaintext exists only inside the send
// operation.
type Record struct {
	ID            int64        `json:"id" db:"id"`
	AssociationID int64        `json:"association_id" db:"association_id"`
	Phone         string       `json:"phone" db:"phone"`
	CodeHash      string       `json:"-" db:"code_hash"`
	ExpiresAt     time.Time    `json:"expires_at" db:"expires_at"`
	Attempts      int          `json:"attempts" db:"attempts"`
	Verified      bool         `json:"verified" db:"verified"`
	VerifiedAt    sql.NullTime `json:"verified_at,omitempty" db:"verified_at"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`
}

// Active reports whether the record is still usable for verification.
func (r *Record) Active(now time.Time) bool {
	return !r.Verified && now.Before(r.ExpiresAt)
}
