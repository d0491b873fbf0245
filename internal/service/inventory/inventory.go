package inventory

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"estatedesk-service/internal/domain/association"
	"estatedesk-service/internal/domain/booking"
	"estatedesk-service/internal/domain/commission"
	"estatedesk-service/internal/domain/project"
	"estatedesk-service/internal/domain/unit"
	xerrors "estatedesk-service/internal/pkg/errors"
	"estatedesk-service/internal/pkg/identity"
	commissionsvc "estatedesk-service/internal/service/commission"
	"estatedesk-service/internal/service/pricing"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// UnitRepo is the inventory persistence contract. AcquireForBooking is the
// exclusive-acquisition point: rows already lock-held elsewhere come back
// as busy, never waited on.
type UnitRepo interface {
	FindByID(ctx context.Context, id int64) (*unit.Unit, error)
	ListByProject(ctx context.Context, projectID int64, f *unit.ListFilters) ([]*unit.Unit, error)
	UpdateBlock(ctx context.Context, u *unit.Unit) error
	AcquireForBooking(ctx context.Context, tx pgx.Tx, unitIDs []int64) (acquired []*unit.Unit, busy []int64, err error)
	MarkBookedWithTx(ctx context.Context, tx pgx.Tx, unitID, bookingID int64) error
}

type BookingRepo interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, b *booking.Booking) error
	CreatePaymentWithTx(ctx context.Context, tx pgx.Tx, p *booking.Payment) error
}

type CommissionRepo interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, cm *commission.Commission) error
}

type AssociationRepo interface {
	FindByID(ctx context.Context, id int64) (*association.Association, error)
	MarkBookedWithTx(ctx context.Context, tx pgx.Tx, associationID int64) error
}

type Projects interface {
	FindByID(ctx context.Context, id int64) (*project.Project, error)
	FindAreaConfig(ctx context.Context, id int64) (*project.AreaConfig, error)
}

// TxBeginner opens the conversion transaction.
type TxBeginner interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

type Service struct {
	db          TxBeginner
	units       UnitRepo
	bookings    BookingRepo
	commissions CommissionRepo
	assocs      AssociationRepo
	projects    Projects
	logger      *zap.Logger
}

func NewService(db TxBeginner, units UnitRepo, bookings BookingRepo, commissions CommissionRepo, assocs AssociationRepo, projects Projects, logger *zap.Logger) *Service {
	return &Service{
		db:          db,
		units:       units,
		bookings:    bookings,
		commissions: commissions,
		assocs:      assocs,
		projects:    projects,
		logger:      logger,
	}
}

// List retrieves a project's units with block expiry resolved: a lapsed
// hold reads as available without any background sweep.
func (s *Service) List(ctx context.Context, projectID int64, f *unit.ListFilters) ([]*unit.Unit, error) {
	units, err := s.units.ListByProject(ctx, projectID, f)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for _, u := range units {
		if u.Status == unit.StatusBlocked && u.EffectiveStatus(now) == unit.StatusAvailable {
			u.Status = unit.StatusAvailable
			u.BlockedBy = sql.NullInt64{}
			u.BlockedAt = sql.NullTime{}
			u.BlockedUntil = sql.NullTime{}
		}
	}
	return units, nil
}

// Block places a timed hold on an available unit.
func (s *Service) Block(ctx context.Context, actor identity.Actor, unitID int64, durationHours int) (*unit.Unit, error) {
	if !identity.Can(actor.Role, identity.CapBlockUnit) {
		return nil, fmt.Errorf("role %s cannot block units: %w", actor.Role, xerrors.ErrPermissionDenied)
	}
	if durationHours <= 0 {
		return nil, fmt.Errorf("block duration must be positive: %w", xerrors.ErrValidation)
	}

	u, err := s.units.FindByID(ctx, unitID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if !u.Sellable(now) {
		return nil, fmt.Errorf("unit %s-%s is %s: %w", u.Tower, u.UnitNumber, u.EffectiveStatus(now), xerrors.ErrConflict)
	}

	u.Status = unit.StatusBlocked
	u.BlockedBy = sql.NullInt64{Int64: actor.StaffID, Valid: true}
	u.BlockedAt = sql.NullTime{Time: now, Valid: true}
	u.BlockedUntil = sql.NullTime{Time: now.Add(time.Duration(durationHours) * time.Hour), Valid: true}
	if err := s.units.UpdateBlock(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("unit blocked",
		zap.Int64("unit_id", u.ID),
		zap.Int64("blocked_by", actor.StaffID),
		zap.Int("hours", durationHours),
	)
	return u, nil
}

// Unblock releases a hold, returning the unit to exactly its prior
// available state with no residual blocker metadata.
func (s *Service) Unblock(ctx context.Context, actor identity.Actor, unitID int64) (*unit.Unit, error) {
	u, err := s.units.FindByID(ctx, unitID)
	if err != nil {
		return nil, err
	}

	if u.Status != unit.StatusBlocked {
		return nil, fmt.Errorf("unit %s-%s is not blocked: %w", u.Tower, u.UnitNumber, xerrors.ErrConflict)
	}
	if u.BlockedBy.Valid && u.BlockedBy.Int64 != actor.StaffID && !identity.Can(actor.Role, identity.CapManageInventory) {
		return nil, fmt.Errorf("only the blocker can release this hold: %w", xerrors.ErrPermissionDenied)
	}

	u.Status = unit.StatusAvailable
	u.BlockedBy = sql.NullInt64{}
	u.BlockedAt = sql.NullTime{}
	u.BlockedUntil = sql.NullTime{}
	if err := s.units.UpdateBlock(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Quote prices a unit from current configuration without touching any
// state, for the multi-unit comparison view.
func (s *Service) Quote(ctx context.Context, unitID int64, includeParking bool) (*pricing.Breakdown, error) {
	u, err := s.units.FindByID(ctx, unitID)
	if err != nil {
		return nil, err
	}
	proj, err := s.projects.FindByID(ctx, u.ProjectID)
	if err != nil {
		return nil, err
	}
	if !u.AreaConfigID.Valid {
		return nil, fmt.Errorf("unit %s-%s has no area configuration: %w", u.Tower, u.UnitNumber, xerrors.ErrValidation)
	}
	ac, err := s.projects.FindAreaConfig(ctx, u.AreaConfigID.Int64)
	if err != nil {
		return nil, err
	}

	b := pricing.TotalCost(proj.Rates, ac.BuildupArea, u.Floor, proj.Highrise, includeParking)
	return &b, nil
}

// Book converts a verified association into bookings on one or more
// units. The whole request is one transaction: unit locks are taken with
// skip semantics, so a concurrently booked unit reads as unavailable and
// the entire request rolls back rather than partially committing.
func (s *Service) Book(ctx context.Context, actor identity.Actor, req *booking.CreateRequest) (*booking.CreateResult, error) {
	if !identity.Can(actor.Role, identity.CapBookUnit) {
		return nil, fmt.Errorf("role %s cannot book units: %w", actor.Role, xerrors.ErrPermissionDenied)
	}

	assoc, err := s.assocs.FindByID(ctx, req.AssociationID)
	if err != nil {
		return nil, xerrors.Wrap(err, "association lookup failed")
	}
	if !assoc.PhoneVerified {
		return nil, fmt.Errorf("association %d is not phone-verified: %w", assoc.ID, xerrors.ErrConflict)
	}
	if assoc.Status == association.StatusBooked || assoc.Status == association.StatusLost {
		return nil, fmt.Errorf("association %d is already %s: %w", assoc.ID, assoc.Status, xerrors.ErrConflict)
	}

	proj, err := s.projects.FindByID(ctx, assoc.ProjectID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin booking transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	acquired, busy, err := s.units.AcquireForBooking(ctx, tx, req.UnitIDs)
	if err != nil {
		return nil, err
	}
	if len(busy) > 0 {
		return nil, fmt.Errorf("units %v are being booked by someone else: %w", busy, xerrors.ErrConflict)
	}

	now := time.Now()
	agreementValues := make([]float64, len(acquired))
	sumAV := 0.0
	for i, u := range acquired {
		if u.ProjectID != assoc.ProjectID {
			return nil, fmt.Errorf("unit %d belongs to another project: %w", u.ID, xerrors.ErrValidation)
		}
		if !s.bookable(u, actor, now) {
			return nil, fmt.Errorf("unit %s-%s already %s: %w", u.Tower, u.UnitNumber, u.EffectiveStatus(now), xerrors.ErrConflict)
		}
		if !u.AreaConfigID.Valid {
			return nil, fmt.Errorf("unit %d has no area configuration: %w", u.ID, xerrors.ErrValidation)
		}
		ac, err := s.projects.FindAreaConfig(ctx, u.AreaConfigID.Int64)
		if err != nil {
			return nil, err
		}
		agreementValues[i] = pricing.AgreementValue(proj.Rates, ac.BuildupArea, u.Floor, proj.Highrise)
		sumAV += agreementValues[i]
	}
	if sumAV <= 0 {
		return nil, fmt.Errorf("selected units have no priced area: %w", xerrors.ErrValidation)
	}

	credits := commissionsvc.Attribute(s.attributionContext(actor, assoc, proj))

	groupRef := "BG-" + ulid.Make().String()
	result := &booking.CreateResult{GroupRef: groupRef}

	priceLeft, tokenLeft, downLeft := req.TotalPrice, req.TokenAmount, req.DownPayment
	for i, u := range acquired {
		var price, token, down float64
		if i == len(acquired)-1 {
			// Last unit absorbs rounding remainders so the group sums to
			// the negotiated totals exactly.
			price, token, down = priceLeft, tokenLeft, downLeft
		} else {
			share := agreementValues[i] / sumAV
			price = round2(req.TotalPrice * share)
			token = round2(req.TokenAmount * share)
			down = round2(req.DownPayment * share)
			priceLeft -= price
			tokenLeft -= token
			downLeft -= down
		}

		b := &booking.Booking{
			BookingRef:       "BK-" + ulid.Make().String(),
			GroupRef:         groupRef,
			ProjectID:        assoc.ProjectID,
			AssociationID:    assoc.ID,
			LeadID:           assoc.LeadID,
			UnitID:           u.ID,
			AgreementValue:   agreementValues[i],
			NegotiatedPrice:  price,
			TokenAmount:      token,
			DownPayment:      down,
			ChannelPartnerID: assoc.ChannelPartnerID,
			ClosingManagerID: sql.NullInt64{Int64: actor.StaffID, Valid: true},
		}
		for _, c := range credits {
			switch c.Beneficiary {
			case commission.BeneficiarySourcingManager:
				b.SourcingManagerID = sql.NullInt64{Int64: c.StaffID, Valid: true}
			case commission.BeneficiaryTelecaller:
				b.TelecallerID = sql.NullInt64{Int64: c.StaffID, Valid: true}
			}
		}

		if err := s.bookings.CreateWithTx(ctx, tx, b); err != nil {
			return nil, err
		}
		if token+down > 0 {
			p := &booking.Payment{
				BookingID: b.ID,
				Amount:    token + down,
				Mode:      req.PaymentMode,
				Reference: req.PaymentRef,
			}
			if err := s.bookings.CreatePaymentWithTx(ctx, tx, p); err != nil {
				return nil, err
			}
		}
		for _, c := range credits {
			cm := &commission.Commission{
				CommissionRef: "CM-" + ulid.Make().String(),
				BookingID:     b.ID,
				ProjectID:     assoc.ProjectID,
				StaffID:       c.StaffID,
				Beneficiary:   c.Beneficiary,
				Status:        commission.StatusPending,
			}
			if err := s.commissions.CreateWithTx(ctx, tx, cm); err != nil {
				return nil, err
			}
		}
		if err := s.units.MarkBookedWithTx(ctx, tx, u.ID, b.ID); err != nil {
			return nil, err
		}
		result.Bookings = append(result.Bookings, b)
	}

	if err := s.assocs.MarkBookedWithTx(ctx, tx, assoc.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit booking: %w", err)
	}

	s.logger.Info("booking created",
		zap.String("group_ref", groupRef),
		zap.Int64("association_id", assoc.ID),
		zap.Int("units", len(acquired)),
		zap.Int("commissions_per_unit", len(credits)),
	)
	return result, nil
}

// bookable allows booking an available unit, or one the booking actor has
// blocked themselves (the hold is the usual prelude to conversion).
func (s *Service) bookable(u *unit.Unit, actor identity.Actor, now time.Time) bool {
	if u.Sellable(now) {
		return true
	}
	return u.Status == unit.StatusBlocked && u.BlockedBy.Valid && u.BlockedBy.Int64 == actor.StaffID
}

func (s *Service) attributionContext(actor identity.Actor, assoc *association.Association, proj *project.Project) commissionsvc.AttributionContext {
	actx := commissionsvc.AttributionContext{
		ClosingActorID:    actor.StaffID,
		HasChannelPartner: assoc.HasChannelPartner(),
		VisitCreatorID:    assoc.CreatedBy,
		VisitCreatorRole:  assoc.CreatedByRole,
	}
	if proj.SourcingManagerID.Valid {
		id := proj.SourcingManagerID.Int64
		actx.SourcingManagerID = &id
	}
	return actx
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
