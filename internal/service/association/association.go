package association

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"estatedesk-service/internal/domain/association"
	"estatedesk-service/internal/domain/lead"
	xerrors "estatedesk-service/internal/pkg/errors"
	"estatedesk-service/internal/pkg/identity"

	"go.uber.org/zap"
)

// Repo is the persistence contract for associations.
type Repo interface {
	Create(ctx context.Context, a *association.Association) error
	FindByID(ctx context.Context, id int64) (*association.Association, error)
	FindLive(ctx context.Context, leadID, projectID int64) (*association.Association, error)
	Update(ctx context.Context, a *association.Association) error
	List(ctx context.Context, f *association.ListFilters) ([]*association.Association, error)
}

// Leads upserts the person record at every entry point.
type Leads interface {
	Upsert(ctx context.Context, in *lead.UpsertLeadInput) (*lead.Lead, error)
}

type Service struct {
	repo   Repo
	leads  Leads
	logger *zap.Logger
}

func NewService(repo Repo, leads Leads, logger *zap.Logger) *Service {
	return &Service{repo: repo, leads: leads, logger: logger}
}

// ensureNoLive rejects a second live association for the same pair; a
// revisit is the sanctioned way to re-engage.
func (s *Service) ensureNoLive(ctx context.Context, leadID, projectID int64) error {
	existing, err := s.repo.FindLive(ctx, leadID, projectID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil
		}
		return err
	}
	return fmt.Errorf("lead already has association %d on project %d: %w",
		existing.ID, projectID, xerrors.ErrConflict)
}

// CreateVisit records a walk-in. The association starts at contacted and
// is promoted to visit_completed by the OTP verification that completes
// the same flow.
func (s *Service) CreateVisit(ctx context.Context, actor identity.Actor, req *association.CreateVisitRequest) (*association.Association, error) {
	l, err := s.leads.Upsert(ctx, &req.Lead)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNoLive(ctx, l.ID, req.ProjectID); err != nil {
		return nil, err
	}

	a := &association.Association{
		LeadID:        l.ID,
		ProjectID:     req.ProjectID,
		Status:        association.StatusContacted,
		AssignedTo:    sql.NullInt64{Int64: actor.StaffID, Valid: true},
		AssignedAt:    sql.NullTime{Time: time.Now(), Valid: true},
		AssignedBy:    sql.NullInt64{Int64: actor.StaffID, Valid: true},
		CreatedBy:     actor.StaffID,
		CreatedByRole: actor.Role,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.logger.Info("visit created",
		zap.Int64("association_id", a.ID),
		zap.Int64("lead_id", l.ID),
		zap.Int64("project_id", req.ProjectID),
	)
	return a, nil
}

// Pretag marks a channel-partner sourced lead ahead of any visit. Pretagged
// associations carry no assignee until verified: every staff member on the
// project works the shared pool.
func (s *Service) Pretag(ctx context.Context, actor identity.Actor, req *association.PretagRequest) (*association.Association, error) {
	l, err := s.leads.Upsert(ctx, &req.Lead)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNoLive(ctx, l.ID, req.ProjectID); err != nil {
		return nil, err
	}

	a := &association.Association{
		LeadID:           l.ID,
		ProjectID:        req.ProjectID,
		Status:           association.StatusNew,
		IsPretagged:      true,
		PretagStatus:     sql.NullString{String: association.PretagPendingVerification, Valid: true},
		ChannelPartnerID: sql.NullInt64{Int64: req.ChannelPartnerID, Valid: true},
		CreatedBy:        actor.StaffID,
		CreatedByRole:    actor.Role,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.logger.Info("lead pretagged",
		zap.Int64("association_id", a.ID),
		zap.Int64("channel_partner_id", req.ChannelPartnerID),
	)
	return a, nil
}

// ScheduleVisit creates a future visit with an assigned staff member.
func (s *Service) ScheduleVisit(ctx context.Context, actor identity.Actor, req *association.ScheduleVisitRequest) (*association.Association, error) {
	l, err := s.leads.Upsert(ctx, &req.Lead)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNoLive(ctx, l.ID, req.ProjectID); err != nil {
		return nil, err
	}

	a := &association.Association{
		LeadID:        l.ID,
		ProjectID:     req.ProjectID,
		Status:        association.StatusVisitScheduled,
		AssignedTo:    sql.NullInt64{Int64: req.AssignedTo, Valid: true},
		AssignedAt:    sql.NullTime{Time: time.Now(), Valid: true},
		AssignedBy:    sql.NullInt64{Int64: actor.StaffID, Valid: true},
		CreatedBy:     actor.StaffID,
		CreatedByRole: actor.Role,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Revisit opens a fresh association chained to a completed prior one. The
// parent must already exist and is never mutated, so the chain can never
// form a cycle.
func (s *Service) Revisit(ctx context.Context, actor identity.Actor, req *association.RevisitRequest) (*association.Association, error) {
	prev, err := s.repo.FindByID(ctx, req.PreviousVisitID)
	if err != nil {
		return nil, xerrors.Wrap(err, "previous visit lookup failed")
	}

	live, err := s.repo.FindLive(ctx, prev.LeadID, prev.ProjectID)
	if err != nil && !xerrors.Is(err, xerrors.ErrNotFound) {
		return nil, err
	}
	if live != nil && live.ID != prev.ID {
		return nil, fmt.Errorf("association %d is not the latest visit for this lead: %w",
			prev.ID, xerrors.ErrConflict)
	}
	if live != nil {
		// Archive the prior row so the new one is the single live
		// association; its history stays intact.
		live.ArchivedAt = sql.NullTime{Time: time.Now(), Valid: true}
		if err := s.repo.Update(ctx, live); err != nil {
			return nil, err
		}
	}

	a := &association.Association{
		LeadID:           prev.LeadID,
		ProjectID:        prev.ProjectID,
		Status:           association.StatusVisitCompleted,
		ChannelPartnerID: prev.ChannelPartnerID,
		PreviousVisitID:  sql.NullInt64{Int64: prev.ID, Valid: true},
		RevisitCount:     prev.RevisitCount + 1,
		AssignedTo:       sql.NullInt64{Int64: actor.StaffID, Valid: true},
		AssignedAt:       sql.NullTime{Time: time.Now(), Valid: true},
		AssignedBy:       sql.NullInt64{Int64: actor.StaffID, Valid: true},
		CreatedBy:        actor.StaffID,
		CreatedByRole:    actor.Role,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.logger.Info("revisit recorded",
		zap.Int64("association_id", a.ID),
		zap.Int64("previous_visit_id", prev.ID),
		zap.Int("revisit_count", a.RevisitCount),
	)
	return a, nil
}

// QueueVisit is the front-desk intake path: the visit waits in the queue
// until a closing-role staff member claims it.
func (s *Service) QueueVisit(ctx context.Context, actor identity.Actor, req *association.QueueVisitRequest) (*association.Association, error) {
	if !identity.Can(actor.Role, identity.CapQueueVisit) {
		return nil, fmt.Errorf("role %s cannot queue visits: %w", actor.Role, xerrors.ErrPermissionDenied)
	}

	l, err := s.leads.Upsert(ctx, &req.Lead)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNoLive(ctx, l.ID, req.ProjectID); err != nil {
		return nil, err
	}

	now := time.Now()
	a := &association.Association{
		LeadID:        l.ID,
		ProjectID:     req.ProjectID,
		Status:        association.StatusQueuedVisit,
		QueuedAt:      sql.NullTime{Time: now, Valid: true},
		QueuedBy:      sql.NullInt64{Int64: actor.StaffID, Valid: true},
		CreatedBy:     actor.StaffID,
		CreatedByRole: actor.Role,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// PromoteQueued claims a queued visit: only closing roles may promote, and
// the promoter becomes the assignee.
func (s *Service) PromoteQueued(ctx context.Context, actor identity.Actor, associationID int64) (*association.Association, error) {
	if !identity.Can(actor.Role, identity.CapPromoteQueued) {
		return nil, fmt.Errorf("role %s cannot promote queued visits: %w", actor.Role, xerrors.ErrPermissionDenied)
	}

	a, err := s.repo.FindByID(ctx, associationID)
	if err != nil {
		return nil, err
	}
	if a.Status != association.StatusQueuedVisit {
		return nil, fmt.Errorf("association %d is %s, not queued: %w", a.ID, a.Status, xerrors.ErrConflict)
	}

	now := time.Now()
	a.Status = association.StatusVisitCompleted
	a.AssignedTo = sql.NullInt64{Int64: actor.StaffID, Valid: true}
	a.AssignedAt = sql.NullTime{Time: now, Valid: true}
	a.AssignedBy = sql.NullInt64{Int64: actor.StaffID, Valid: true}
	a.QueuedAt = sql.NullTime{}
	a.QueuedBy = sql.NullInt64{}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}

	s.logger.Info("queued visit promoted",
		zap.Int64("association_id", a.ID),
		zap.Int64("claimed_by", actor.StaffID),
	)
	return a, nil
}

// UpdateStatus moves an association along the pipeline through the guarded
// transition table.
func (s *Service) UpdateStatus(ctx context.Context, actor identity.Actor, associationID int64, next association.Status) (*association.Association, error) {
	a, err := s.repo.FindByID(ctx, associationID)
	if err != nil {
		return nil, err
	}

	if !a.Status.CanTransition(next) {
		return nil, fmt.Errorf("cannot move association from %s to %s: %w", a.Status, next, xerrors.ErrConflict)
	}

	a.Status = next
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// OverrideStatus is the administrative escape hatch for regressing a
// terminal status.
func (s *Service) OverrideStatus(ctx context.Context, actor identity.Actor, associationID int64, next association.Status) (*association.Association, error) {
	if !identity.Can(actor.Role, identity.CapOverrideStatus) {
		return nil, fmt.Errorf("role %s cannot override status: %w", actor.Role, xerrors.ErrPermissionDenied)
	}

	a, err := s.repo.FindByID(ctx, associationID)
	if err != nil {
		return nil, err
	}

	s.logger.Warn("administrative status override",
		zap.Int64("association_id", a.ID),
		zap.String("from", string(a.Status)),
		zap.String("to", string(next)),
		zap.Int64("by", actor.StaffID),
	)

	a.Status = next
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// OnVerified applies the state-machine consequences of a successful OTP
// verification. Verification is scoped to this association alone; the same
// lead's associations with other projects are untouched.
func (s *Service) OnVerified(ctx context.Context, a *association.Association, verifier identity.Actor) error {
	now := time.Now()
	a.PhoneVerified = true
	a.VerifiedAt = sql.NullTime{Time: now, Valid: true}

	if a.IsPretagged {
		a.PretagStatus = sql.NullString{String: association.PretagVerified, Valid: true}
	} else if !a.Status.Terminal() {
		a.Status = association.StatusVisitCompleted
	}

	// Assignment depends on who verified: a telecaller releases the
	// association into the closing queue, a closing role claims it.
	switch {
	case verifier.Role == identity.RoleTelecaller:
		a.AssignedTo = sql.NullInt64{}
		a.AssignedAt = sql.NullTime{}
		a.AssignedBy = sql.NullInt64{}
		a.QueuedAt = sql.NullTime{Time: now, Valid: true}
		a.QueuedBy = sql.NullInt64{Int64: verifier.StaffID, Valid: true}
	case verifier.Role.IsClosing():
		a.AssignedTo = sql.NullInt64{Int64: verifier.StaffID, Valid: true}
		a.AssignedAt = sql.NullTime{Time: now, Valid: true}
		a.AssignedBy = sql.NullInt64{Int64: verifier.StaffID, Valid: true}
	}

	return s.repo.Update(ctx, a)
}

// FindByID fetches one association.
func (s *Service) FindByID(ctx context.Context, id int64) (*association.Association, error) {
	return s.repo.FindByID(ctx, id)
}

// List retrieves associations for list screens. Pretagged, unverified
// associations are visible to every staff member on the project, so no
// assignee filter is forced here.
func (s *Service) List(ctx context.Context, f *association.ListFilters) ([]*association.Association, error) {
	return s.repo.List(ctx, f)
}
