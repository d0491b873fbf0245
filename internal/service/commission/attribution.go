package commission

import (
	"estatedesk-service/internal/domain/commission"
	"estatedesk-service/internal/pkg/identity"
)

// AttributionContext is everything the credit decision needs: how the
// originating visit came to exist and who is closing the sale now.
type AttributionContext struct {
	ClosingActorID    int64
	HasChannelPartner bool
	VisitCreatorID    int64
	VisitCreatorRole  identity.Role
	// SourcingManagerID is the sourcing manager assigned to the project,
	// if any.
	SourcingManagerID *int64
}

// Attribute decides which staff roles receive sales credit for a completed
// booking. Rules are evaluated in order; the first match wins. The order
// mirrors established payout practice, so changes here need sign-off from
// the commercial team.
func Attribute(ctx AttributionContext) []commission.Credit {
	telecallerSourced := ctx.VisitCreatorRole == identity.RoleTelecaller
	sourcingCreated := ctx.VisitCreatorRole == identity.RoleSourcingManager

	closing := commission.Credit{
		StaffID:     ctx.ClosingActorID,
		Beneficiary: commission.BeneficiaryClosingManager,
	}

	sourcing := func() (commission.Credit, bool) {
		if ctx.SourcingManagerID != nil {
			return commission.Credit{
				StaffID:     *ctx.SourcingManagerID,
				Beneficiary: commission.BeneficiarySourcingManager,
			}, true
		}
		if sourcingCreated {
			return commission.Credit{
				StaffID:     ctx.VisitCreatorID,
				Beneficiary: commission.BeneficiarySourcingManager,
			}, true
		}
		return commission.Credit{}, false
	}

	telecaller := commission.Credit{
		StaffID:     ctx.VisitCreatorID,
		Beneficiary: commission.BeneficiaryTelecaller,
	}

	switch {
	// Direct walk-in closed on site: closing credit only.
	case !ctx.HasChannelPartner && !telecallerSourced && !sourcingCreated:
		return []commission.Credit{closing}

	// Channel-partner lead brought in by a telecaller call: all three.
	case ctx.HasChannelPartner && telecallerSourced:
		credits := []commission.Credit{closing, telecaller}
		if sm, ok := sourcing(); ok {
			credits = append(credits, sm)
		}
		return credits

	// Channel-partner lead: closing plus the sourcing manager.
	case ctx.HasChannelPartner:
		credits := []commission.Credit{closing}
		if sm, ok := sourcing(); ok {
			credits = append(credits, sm)
		}
		return credits

	// Telecaller-originated without a channel partner.
	case telecallerSourced:
		return []commission.Credit{closing, telecaller}
	}

	// Sourcing-manager-created visit without a channel partner.
	credits := []commission.Credit{closing}
	if sm, ok := sourcing(); ok {
		credits = append(credits, sm)
	}
	return credits
}
