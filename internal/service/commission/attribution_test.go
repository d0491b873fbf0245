package commission

import (
	"testing"

	"estatedesk-service/internal/domain/commission"
	"estatedesk-service/internal/pkg/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func beneficiaries(credits []commission.Credit) []commission.BeneficiaryType {
	out := make([]commission.BeneficiaryType, 0, len(credits))
	for _, c := range credits {
		out = append(out, c.Beneficiary)
	}
	return out
}

func TestAttributeDirectWalkIn(t *testing.T) {
	credits := Attribute(AttributionContext{
		ClosingActorID:   10,
		VisitCreatorID:   10,
		VisitCreatorRole: identity.RoleClosingManager,
	})

	require.Len(t, credits, 1)
	assert.Equal(t, commission.BeneficiaryClosingManager, credits[0].Beneficiary)
	assert.Equal(t, int64(10), credits[0].StaffID)
}

func TestAttributeChannelPartnerWithSourcingManager(t *testing.T) {
	sm := int64(7)
	credits := Attribute(AttributionContext{
		ClosingActorID:    10,
		HasChannelPartner: true,
		VisitCreatorID:    3,
		VisitCreatorRole:  identity.RoleClosingManager,
		SourcingManagerID: &sm,
	})

	require.Len(t, credits, 2)
	assert.ElementsMatch(t,
		[]commission.BeneficiaryType{commission.BeneficiaryClosingManager, commission.BeneficiarySourcingManager},
		beneficiaries(credits))
	for _, c := range credits {
		if c.Beneficiary == commission.BeneficiarySourcingManager {
			assert.Equal(t, sm, c.StaffID)
		}
	}
}

func TestAttributeChannelPartnerAndTelecaller(t *testing.T) {
	sm := int64(7)
	credits := Attribute(AttributionContext{
		ClosingActorID:    10,
		HasChannelPartner: true,
		VisitCreatorID:    5,
		VisitCreatorRole:  identity.RoleTelecaller,
		SourcingManagerID: &sm,
	})

	require.Len(t, credits, 3)
	assert.ElementsMatch(t,
		[]commission.BeneficiaryType{
			commission.BeneficiaryClosingManager,
			commission.BeneficiaryTelecaller,
			commission.BeneficiarySourcingManager,
		},
		beneficiaries(credits))
}

func TestAttributeTelecallerWithoutChannelPartner(t *testing.T) {
	credits := Attribute(AttributionContext{
		ClosingActorID:   10,
		VisitCreatorID:   5,
		VisitCreatorRole: identity.RoleTelecaller,
	})

	require.Len(t, credits, 2)
	assert.Equal(t, commission.BeneficiaryClosingManager, credits[0].Beneficiary)
	assert.Equal(t, commission.BeneficiaryTelecaller, credits[1].Beneficiary)
	assert.Equal(t, int64(5), credits[1].StaffID)
}

func TestAttributeSourcingCreatedFallsBackToCreator(t *testing.T) {
	credits := Attribute(AttributionContext{
		ClosingActorID:   10,
		VisitCreatorID:   8,
		VisitCreatorRole: identity.RoleSourcingManager,
	})

	require.Len(t, credits, 2)
	assert.Equal(t, commission.BeneficiarySourcingManager, credits[1].Beneficiary)
	assert.Equal(t, int64(8), credits[1].StaffID)
}

func TestAttributeChannelPartnerWithoutAnySourcingManager(t *testing.T) {
	credits := Attribute(AttributionContext{
		ClosingActorID:    10,
		HasChannelPartner: true,
		VisitCreatorID:    3,
		VisitCreatorRole:  identity.RoleClosingManager,
	})

	// No project sourcing manager and the creator is not one either: the
	// sourcing credit is simply absent.
	require.Len(t, credits, 1)
	assert.Equal(t, commission.BeneficiaryClosingManager, credits[0].Beneficiary)
}
