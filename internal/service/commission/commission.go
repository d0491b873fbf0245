package commission

import (
	"context"
	"fmt"

	"estatedesk-service/internal/domain/commission"
	xerrors "estatedesk-service/internal/pkg/errors"
	"estatedesk-service/internal/pkg/identity"

	"go.uber.org/zap"
)

// Repo is the persistence contract the commission lifecycle depends on.
type Repo interface {
	FindByID(ctx context.Context, id int64) (*commission.Commission, error)
	Approve(ctx context.Context, id, approverID int64) (*commission.Commission, error)
	MarkPaid(ctx context.Context, id, payerID int64) (*commission.Commission, error)
	List(ctx context.Context, f *commission.ListFilters) ([]*commission.Commission, error)
}

type Service struct {
	repo   Repo
	logger *zap.Logger
}

func NewService(repo Repo, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Approve moves one commission from pending to approved. The transition is one-way
// and restricted to elevated roles; a non-pending commission fails with no
// side effects.
func (s *Service) Approve(ctx context.Context, actor identity.Actor, id int64) (*commission.Commission, error) {
	if !identity.Can(actor.Role, identity.CapApproveCommission) {
		return nil, fmt.Errorf("role %s cannot approve commissions: %w", actor.Role, xerrors.ErrPermissionDenied)
	}

	cm, err := s.repo.Approve(ctx, id, actor.StaffID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("commission approved",
		zap.Int64("commission_id", cm.ID),
		zap.Int64("approved_by", actor.StaffID),
	)
	return cm, nil
}

// MarkPaid moves one commission from approved to paid.
func (s *Service) MarkPaid(ctx context.Context, actor identity.Actor, id int64) (*commission.Commission, error) {
	if !identity.Can(actor.Role, identity.CapPayCommission) {
		return nil, fmt.Errorf("role %s cannot pay commissions: %w", actor.Role, xerrors.ErrPermissionDenied)
	}

	cm, err := s.repo.MarkPaid(ctx, id, actor.StaffID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("commission paid",
		zap.Int64("commission_id", cm.ID),
		zap.Int64("paid_by", actor.StaffID),
	)
	return cm, nil
}

// BulkApprove approves every pending commission in the batch. Entries that
// are not pending when processed are skipped and reported, never aborting
// the batch.
func (s *Service) BulkApprove(ctx context.Context, actor identity.Actor, ids []int64) (*commission.BulkApproveResult, error) {
	if !identity.Can(actor.Role, identity.CapApproveCommission) {
		return nil, fmt.Errorf("role %s cannot approve commissions: %w", actor.Role, xerrors.ErrPermissionDenied)
	}

	result := &commission.BulkApproveResult{}
	for _, id := range ids {
		if _, err := s.repo.Approve(ctx, id, actor.StaffID); err != nil {
			if xerrors.Is(err, xerrors.ErrConflict) || xerrors.Is(err, xerrors.ErrNotFound) {
				result.Skipped = append(result.Skipped, id)
				continue
			}
			return nil, err
		}
		result.Approved = append(result.Approved, id)
	}

	s.logger.Info("bulk commission approval",
		zap.Int("approved", len(result.Approved)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int64("approved_by", actor.StaffID),
	)
	return result, nil
}

// List retrieves commissions for review screens.
func (s *Service) List(ctx context.Context, f *commission.ListFilters) ([]*commission.Commission, error) {
	return s.repo.List(ctx, f)
}
