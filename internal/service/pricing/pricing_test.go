package pricing

import (
	"testing"

	"estatedesk-service/internal/domain/project"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func perSqftSettings() project.HighriseSettings {
	return project.HighriseSettings{
		Enabled:          true,
		Mode:             project.ModePerSqft,
		BaseFloor:        4,
		FloorThreshold:   4,
		PerSqftIncrement: 100,
	}
}

func TestPricePerSqftEscalation(t *testing.T) {
	h := perSqftSettings()

	tests := []struct {
		floor int
		want  float64
	}{
		{0, 6500},
		{4, 6500},
		{5, 6600},
		{8, 6600},
		{9, 6700},
		{12, 6700},
		{13, 6800},
	}

	for _, tt := range tests {
		got := PricePerSqft(6500, tt.floor, h)
		assert.Equal(t, tt.want, got, "floor %d", tt.floor)
	}
}

func TestPricePerSqftDisabled(t *testing.T) {
	h := perSqftSettings()
	h.Enabled = false

	assert.Equal(t, 6500.0, PricePerSqft(6500, 30, h))
}

func TestPricePerSqftMonotone(t *testing.T) {
	modes := []project.HighriseMode{project.ModePerSqft, project.ModeFixedSqft, project.ModeFixedTotal}

	for _, mode := range modes {
		h := perSqftSettings()
		h.Mode = mode
		h.FixedPriceIncrement = 250

		prev := 0.0
		for floor := 0; floor <= 40; floor++ {
			got := PricePerSqft(6500, floor, h)
			assert.GreaterOrEqual(t, got, prev, "mode %s floor %d", mode, floor)
			prev = got
		}
	}
}

func TestFixedSqftModeUsesFixedIncrementOnRate(t *testing.T) {
	h := perSqftSettings()
	h.Mode = project.ModeFixedSqft
	h.FixedPriceIncrement = 50

	assert.Equal(t, 6550.0, PricePerSqft(6500, 5, h))
}

func TestFixedTotalModeLeavesRateUntouched(t *testing.T) {
	h := perSqftSettings()
	h.Mode = project.ModeFixedTotal
	h.FixedPriceIncrement = 100000

	rates := project.ChargeRates{PricePerSqft: 6500}

	assert.Equal(t, 6500.0, PricePerSqft(6500, 9, h))
	// Two ranges entered by floor 9: the flat increment lands on the
	// agreement value.
	want := 6500.0*1000 + 2*100000
	assert.Equal(t, want, AgreementValue(rates, 1000, 9, h))
}

func TestTotalCostBreakdown(t *testing.T) {
	rates := project.ChargeRates{
		PricePerSqft:       6500,
		StampDutyPct:       5,
		GSTPct:             12,
		RegistrationCharge: 30000,
		LegalCharge:        15000,
		DevelopmentCharge:  200,
		DevelopmentPerSqft: true,
		ParkingCharge:      250000,
	}
	h := perSqftSettings()

	b := TotalCost(rates, 1000, 5, h, true)

	require.Equal(t, 6600.0, b.PricePerSqft)
	require.Equal(t, 6600000.0, b.AgreementValue)

	// Percentage charges are computed against the agreement value, not the
	// running total.
	assert.Equal(t, 330000.0, b.StampDuty)
	assert.Equal(t, 792000.0, b.GST)
	assert.Equal(t, 30000.0, b.Registration)
	assert.Equal(t, 15000.0, b.Legal)
	assert.Equal(t, 200000.0, b.Development)
	assert.Equal(t, 250000.0, b.Parking)
	assert.Equal(t, 8217000.0, b.Total)
}

func TestTotalCostWithoutParking(t *testing.T) {
	rates := project.ChargeRates{PricePerSqft: 6000, ParkingCharge: 250000}
	h := project.HighriseSettings{}

	with := TotalCost(rates, 800, 2, h, true)
	without := TotalCost(rates, 800, 2, h, false)

	assert.Equal(t, 0.0, without.Parking)
	assert.Equal(t, with.Total-250000, without.Total)
}

func TestTotalCostDeterministic(t *testing.T) {
	rates := project.ChargeRates{PricePerSqft: 7000, StampDutyPct: 6, GSTPct: 5}
	h := perSqftSettings()

	a := TotalCost(rates, 1250, 11, h, false)
	b := TotalCost(rates, 1250, 11, h, false)

	assert.Equal(t, a, b)
}
