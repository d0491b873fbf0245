package unit

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// Status is the persisted inventory state of a unit. A blocked unit whose
// hold has lapsed is reported available at read time; no sweeper runs.
type Status string

const (
	StatusAvailable Status = "available"
	StatusBlocked   Status = "blocked"
	StatusBooked    Status = "booked"
	StatusSold      Status = "sold"
	StatusExcluded  Status = "excluded"
)

// Unit is a physical inventory slot identified by (project, tower, floor,
// unit number). At most one non-archived booking may be linked to it.
type Unit struct {
	ID         int64  `json:"id" db:"id"`
	ProjectID  int64  `json:"project_id" db:"project_id"`
	Tower      string `json:"tower" db:"tower"`
	Floor      int    `json:"floor" db:"floor"`
	UnitNumber string `json:"unit_number" db:"unit_number"`

	AreaConfigID sql.NullInt64  `json:"area_config_id,omitempty" db:"area_config_id"`
	Amenities    pq.StringArray `json:"amenities,omitempty" db:"amenities"`

	Status Status `json:"status" db:"status"`

	BlockedBy    sql.NullInt64 `json:"blocked_by,omitempty" db:"blocked_by"`
	BlockedAt    sql.NullTime  `json:"blocked_at,omitempty" db:"blocked_at"`
	BlockedUntil sql.NullTime  `json:"blocked_until,omitempty" db:"blocked_until"`

	BookingID sql.NullInt64 `json:"booking_id,omitempty" db:"booking_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// EffectiveStatus resolves the wall-clock expiry of a block: once
// blocked_until has passed the unit counts as available again.
func (u *Unit) EffectiveStatus(now time.Time) Status {
	if u.Status == StatusBlocked && u.BlockedUntil.Valid && now.After(u.BlockedUntil.Time) {
		return StatusAvailable
	}
	return u.Status
}

// Sellable reports whether the unit can be blocked or booked right now.
func (u *Unit) Sellable(now time.Time) bool {
	return u.EffectiveStatus(now) == StatusAvailable
}
