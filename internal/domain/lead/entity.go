package lead

import (
	"database/sql"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Lead is a deduplicated person record keyed by normalized phone number.
// Leads are global across projects, created on first contact and only ever
// archived, never deleted.
type Lead struct {
	ID            int64          `json:"id" db:"id"`
	LeadReference string         `json:"lead_reference" db:"lead_reference"`
	Phone         string         `json:"phone" db:"phone"`
	FullName      sql.NullString `json:"full_name,omitempty" db:"full_name"`
	Email         sql.NullString `json:"email,omitempty" db:"email"`
	Sources       pq.StringArray `json:"sources,omitempty" db:"sources"`
	ArchivedAt    sql.NullTime   `json:"archived_at,omitempty" db:"archived_at"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
}

// NormalizePhone reduces any formatting of an Indian mobile number to its
// bare ten digits, so repeated contact with the same person always resolves
// to one Lead. The rule is idempotent.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	// Strip country code or trunk prefix down to the 10-digit subscriber
	// number.
	switch {
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		return digits[2:]
	case len(digits) == 11 && strings.HasPrefix(digits, "0"):
		return digits[1:]
	case len(digits) > 10:
		return digits[len(digits)-10:]
	}
	return digits
}
