package lead

import (
	"context"
	"database/sql"
	"fmt"

	"estatedesk-service/internal/domain/lead"
	xerrors "estatedesk-service/internal/pkg/errors"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// Repo is the persistence contract for leads.
type Repo interface {
	FindByPhone(ctx context.Context, phone string) (*lead.Lead, error)
	FindByID(ctx context.Context, id int64) (*lead.Lead, error)
	Create(ctx context.Context, l *lead.Lead) error
	Update(ctx context.Context, l *lead.Lead) error
}

type Service struct {
	repo   Repo
	logger *zap.Logger
}

func NewService(repo Repo, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Upsert resolves the contact to its single Lead record: created on first
// contact, updated on subsequent contact. The lookup is idempotent across
// phone formattings because everything goes through NormalizePhone.
func (s *Service) Upsert(ctx context.Context, in *lead.UpsertLeadInput) (*lead.Lead, error) {
	phone := lead.NormalizePhone(in.Phone)
	if len(phone) != 10 {
		return nil, fmt.Errorf("phone %q does not normalize to a mobile number: %w", in.Phone, xerrors.ErrValidation)
	}

	existing, err := s.repo.FindByPhone(ctx, phone)
	if err != nil && !xerrors.Is(err, xerrors.ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		changed := false
		if in.FullName != "" && in.FullName != existing.FullName.String {
			existing.FullName = sql.NullString{String: in.FullName, Valid: true}
			changed = true
		}
		if in.Email != "" && in.Email != existing.Email.String {
			existing.Email = sql.NullString{String: in.Email, Valid: true}
			changed = true
		}
		if in.Source != "" && !containsSource(existing.Sources, in.Source) {
			existing.Sources = append(existing.Sources, in.Source)
			changed = true
		}
		if changed {
			if err := s.repo.Update(ctx, existing); err != nil {
				return nil, err
			}
		}
		return existing, nil
	}

	l := &lead.Lead{
		LeadReference: "LD-" + ulid.Make().String(),
		Phone:         phone,
	}
	if in.FullName != "" {
		l.FullName = sql.NullString{String: in.FullName, Valid: true}
	}
	if in.Email != "" {
		l.Email = sql.NullString{String: in.Email, Valid: true}
	}
	if in.Source != "" {
		l.Sources = []string{in.Source}
	}

	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Info("lead created",
		zap.Int64("lead_id", l.ID),
		zap.String("lead_reference", l.LeadReference),
	)
	return l, nil
}

// FindByID fetches a lead for cross-service lookups.
func (s *Service) FindByID(ctx context.Context, id int64) (*lead.Lead, error) {
	return s.repo.FindByID(ctx, id)
}

func containsSource(sources []string, source string) bool {
	for _, s := range sources {
		if s == source {
			return true
		}
	}
	return false
}
