package project

import (
	"database/sql"
	"time"
)

// HighriseMode selects how floor escalation is applied above the threshold.
type HighriseMode string

const (
	ModePerSqft    HighriseMode = "per_sqft"
	ModeFixedSqft  HighriseMode = "fixed_sqft"
	ModeFixedTotal HighriseMode = "fixed_total"
)

// HighriseSettings configures floor-sensitive pricing for a project. Floors
// are partitioned into ranges of FloorThreshold size above BaseFloor; each
// range entered adds one increment.
type HighriseSettings struct {
	Enabled             bool         `json:"enabled" db:"highrise_enabled"`
	Mode                HighriseMode `json:"mode" db:"highrise_mode"`
	BaseFloor           int          `json:"base_floor" db:"highrise_base_floor"`
	FloorThreshold      int          `json:"floor_threshold" db:"highrise_floor_threshold"`
	PerSqftIncrement    float64      `json:"per_sqft_increment" db:"highrise_per_sqft_increment"`
	FixedPriceIncrement float64      `json:"fixed_price_increment" db:"highrise_fixed_price_increment"`
}

// ChargeRates are the configuration-level pricing rates. Percentage charges
// apply to the agreement value, never to the running total.
type ChargeRates struct {
	PricePerSqft       float64 `json:"price_per_sqft" db:"price_per_sqft"`
	StampDutyPct       float64 `json:"stamp_duty_pct" db:"stamp_duty_pct"`
	GSTPct             float64 `json:"gst_pct" db:"gst_pct"`
	RegistrationCharge float64 `json:"registration_charge" db:"registration_charge"`
	LegalCharge        float64 `json:"legal_charge" db:"legal_charge"`
	DevelopmentCharge  float64 `json:"development_charge" db:"development_charge"`
	DevelopmentPerSqft bool    `json:"development_per_sqft" db:"development_per_sqft"`
	ParkingCharge      float64 `json:"parking_charge" db:"parking_charge"`
}

// Project holds the per-project configuration the conversion engine reads:
// sourcing attribution, rates and highrise settings.
type Project struct {
	ID                int64            `json:"id" db:"id"`
	Name              string           `json:"name" db:"name"`
	SourcingManagerID sql.NullInt64    `json:"sourcing_manager_id,omitempty" db:"sourcing_manager_id"`
	DailyAssignQuota  int              `json:"daily_assign_quota" db:"daily_assign_quota"`
	Rates             ChargeRates      `json:"rates"`
	Highrise          HighriseSettings `json:"highrise"`
	CreatedAt         time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at" db:"updated_at"`
}

// StaffAssignment is one staff member working a project, with their role
// classification synced from the identity provider.
type StaffAssignment struct {
	StaffID int64  `json:"staff_id" db:"staff_id"`
	Role    string `json:"role" db:"role"`
}

// AreaConfig is an area/configuration variant a unit can link to: the
// carpet and buildup areas plus which of them prices are computed against.
type AreaConfig struct {
	ID          int64   `json:"id" db:"id"`
	ProjectID   int64   `json:"project_id" db:"project_id"`
	Name        string  `json:"name" db:"name"`
	CarpetArea  float64 `json:"carpet_area" db:"carpet_area"`
	BuildupArea float64 `json:"buildup_area" db:"buildup_area"`
}
