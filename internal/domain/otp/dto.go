package otp

import (
	"time"

	"estatedesk-service/internal/pkg/sms"
)

// SendRequest issues (or re-issues) a code for an association.
type SendRequest struct {
	AssociationID int64 `json:"association_id" binding:"required"`
}

// SendResult reports issuance plus how delivery went. A fallback delivery
// is a success path: the link is shared manually by staff.
type SendResult struct {
	AssociationID int64              `json:"association_id"`
	ExpiresAt     time.Time          `json:"expires_at"`
	Resent        bool               `json:"resent"`
	Delivery      sms.DeliveryResult `json:"delivery"`
}

// VerifyRequest submits a code for an association.
type VerifyRequest struct {
	AssociationID int64  `json:"association_id" binding:"required"`
	Code          string `json:"code" binding:"required,len=6"`
}
