package pricing

import (
	"estatedesk-service/internal/domain/project"
)

// Breakdown itemizes a unit's total cost. Percentage charges are computed
// against the agreement value, never against the running total.
type Breakdown struct {
	PricePerSqft   float64 `json:"price_per_sqft"`
	AgreementValue float64 `json:"agreement_value"`
	StampDuty      float64 `json:"stamp_duty"`
	GST            float64 `json:"gst"`
	Registration   float64 `json:"registration"`
	Legal          float64 `json:"legal"`
	Development    float64 `json:"development"`
	Parking        float64 `json:"parking"`
	Total          float64 `json:"total"`
}

// rangeNumber counts how many highrise ranges the floor has entered above
// the base threshold floor. Floor at or below the base is range zero;
// entering a range counts immediately, not on completing it.
func rangeNumber(floor int, h project.HighriseSettings) int {
	if floor <= h.BaseFloor || h.FloorThreshold <= 0 {
		return 0
	}
	return (floor - h.BaseFloor + h.FloorThreshold - 1) / h.FloorThreshold
}

// PricePerSqft resolves the floor-adjusted rate. In fixed_total mode the
// rate is unchanged; the flat increment lands on the agreement value
// instead.
func PricePerSqft(base float64, floor int, h project.HighriseSettings) float64 {
	if !h.Enabled {
		return base
	}
	n := float64(rangeNumber(floor, h))
	switch h.Mode {
	case project.ModePerSqft:
		return base + h.PerSqftIncrement*n
	case project.ModeFixedSqft:
		return base + h.FixedPriceIncrement*n
	}
	return base
}

// AgreementValue is the floor-adjusted rate times the buildup area, plus
// the fixed_total escalation where configured.
func AgreementValue(rates project.ChargeRates, buildupArea float64, floor int, h project.HighriseSettings) float64 {
	value := PricePerSqft(rates.PricePerSqft, floor, h) * buildupArea
	if h.Enabled && h.Mode == project.ModeFixedTotal {
		value += h.FixedPriceIncrement * float64(rangeNumber(floor, h))
	}
	return value
}

// TotalCost computes the full breakdown. It is a pure function of its
// inputs: identical inputs always price identically, which the multi-unit
// comparison view relies on.
func TotalCost(rates project.ChargeRates, buildupArea float64, floor int, h project.HighriseSettings, includeParking bool) Breakdown {
	b := Breakdown{
		PricePerSqft:   PricePerSqft(rates.PricePerSqft, floor, h),
		AgreementValue: AgreementValue(rates, buildupArea, floor, h),
	}

	b.StampDuty = b.AgreementValue * rates.StampDutyPct / 100
	b.GST = b.AgreementValue * rates.GSTPct / 100
	b.Registration = rates.RegistrationCharge
	b.Legal = rates.LegalCharge

	if rates.DevelopmentPerSqft {
		b.Development = rates.DevelopmentCharge * buildupArea
	} else {
		b.Development = rates.DevelopmentCharge
	}

	if includeParking {
		b.Parking = rates.ParkingCharge
	}

	b.Total = b.AgreementValue + b.StampDuty + b.GST + b.Registration + b.Legal + b.Development + b.Parking
	return b
}
