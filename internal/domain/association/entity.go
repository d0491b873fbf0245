package association

import (
	"database/sql"
	"time"

	"estatedesk-service/internal/pkg/identity"
)

// Status is the lifecycle position of a lead's engagement with one project.
type Status string

const (
	StatusNew            Status = "new"
	StatusContacted      Status = "contacted"
	StatusVisitScheduled Status = "visit_scheduled"
	StatusVisitCompleted Status = "visit_completed"
	StatusDiscussion     Status = "discussion"
	StatusHot            Status = "hot"
	StatusReadyToBook    Status = "ready_to_book"
	StatusBooked         Status = "booked"
	StatusLost           Status = "lost"
	StatusQueuedVisit    Status = "queued_visit"
)

// Pretag sub-statuses for channel-partner sourced leads awaiting phone
// verification.
const (
	PretagPendingVerification = "pending_verification"
	PretagVerified            = "verified"
	PretagRejected            = "rejected"
)

// forward lists the allowed next statuses per status. Lost is reachable
// from every non-terminal state and handled separately.
var forward = map[Status][]Status{
	StatusNew:            {StatusContacted, StatusVisitScheduled},
	StatusContacted:      {StatusVisitScheduled, StatusVisitCompleted},
	StatusVisitScheduled: {StatusVisitCompleted},
	StatusVisitCompleted: {StatusDiscussion, StatusHot, StatusReadyToBook},
	StatusDiscussion:     {StatusHot, StatusReadyToBook},
	StatusHot:            {StatusReadyToBook, StatusBooked},
	StatusReadyToBook:    {StatusBooked},
	StatusQueuedVisit:    {StatusVisitCompleted},
}

// Terminal reports whether the status never regresses without an explicit
// administrative override.
func (s Status) Terminal() bool {
	return s == StatusBooked || s == StatusLost
}

// CanTransition reports whether the move from s to next is allowed through
// the normal (non-override) path.
func (s Status) CanTransition(next Status) bool {
	if s.Terminal() {
		return false
	}
	if next == StatusLost {
		return true
	}
	for _, allowed := range forward[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Association is the unit of state for one lead's journey within one
// project. A revisit creates a new row linked to the previous one; the old
// row is never mutated.
type Association struct {
	ID        int64 `json:"id" db:"id"`
	LeadID    int64 `json:"lead_id" db:"lead_id"`
	ProjectID int64 `json:"project_id" db:"project_id"`

	Status Status `json:"status" db:"status"`

	IsPretagged      bool           `json:"is_pretagged" db:"is_pretagged"`
	PretagStatus     sql.NullString `json:"pretag_status,omitempty" db:"pretag_status"`
	ChannelPartnerID sql.NullInt64  `json:"channel_partner_id,omitempty" db:"channel_partner_id"`

	// Phone verification is per association: the same lead may be verified
	// for one project and not another.
	PhoneVerified bool         `json:"phone_verified" db:"phone_verified"`
	VerifiedAt    sql.NullTime `json:"verified_at,omitempty" db:"verified_at"`

	AssignedTo sql.NullInt64 `json:"assigned_to,omitempty" db:"assigned_to"`
	AssignedAt sql.NullTime  `json:"assigned_at,omitempty" db:"assigned_at"`
	AssignedBy sql.NullInt64 `json:"assigned_by,omitempty" db:"assigned_by"`

	PreviousVisitID sql.NullInt64 `json:"previous_visit_id,omitempty" db:"previous_visit_id"`
	RevisitCount    int           `json:"revisit_count" db:"revisit_count"`

	QueuedAt sql.NullTime  `json:"queued_at,omitempty" db:"queued_at"`
	QueuedBy sql.NullInt64 `json:"queued_by,omitempty" db:"queued_by"`

	CreatedBy     int64         `json:"created_by" db:"created_by"`
	CreatedByRole identity.Role `json:"created_by_role" db:"created_by_role"`

	ArchivedAt sql.NullTime `json:"archived_at,omitempty" db:"archived_at"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at" db:"updated_at"`
}

// HasChannelPartner reports whether the lead was sourced by a channel
// partner for this project.
func (a *Association) HasChannelPartner() bool {
	return a.ChannelPartnerID.Valid
}
