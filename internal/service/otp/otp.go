package otp

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"net/url"
	"time"

	"estatedesk-service/internal/domain/association"
	"estatedesk-service/internal/domain/lead"
	"estatedesk-service/internal/domain/otp"
	xerrors "estatedesk-service/internal/pkg/errors"
	"estatedesk-service/internal/pkg/identity"
	"estatedesk-service/internal/pkg/sms"

	"go.uber.org/zap"
)

// Repo is the persistence contract for OTP records.
type Repo interface {
	FindActive(ctx context.Context, associationID int64) (*otp.Record, error)
	Create(ctx context.Context, rec *otp.Record) error
	Update(ctx context.Context, rec *otp.Record) error
}

// Associations resolves the association a code is scoped to.
type Associations interface {
	FindByID(ctx context.Context, id int64) (*association.Association, error)
}

// Leads resolves the phone number to deliver to.
type Leads interface {
	FindByID(ctx context.Context, id int64) (*lead.Lead, error)
}

// Hook receives the state-machine side of a successful verification.
type Hook interface {
	OnVerified(ctx context.Context, assoc *association.Association, verifier identity.Actor) error
}

// Limiter throttles send requests per association.
type Limiter interface {
	AllowSend(ctx context.Context, associationID int64, phone string) (bool, error)
	Reset(ctx context.Context, associationID int64, phone string) error
}

// Config carries the verification policy.
type Config struct {
	Secret          []byte
	Expiry          time.Duration
	MaxAttempts     int
	FallbackBaseURL string
}

type Service struct {
	repo    Repo
	assocs  Associations
	leads   Leads
	hook    Hook
	channel sms.Channel
	limiter Limiter
	cfg     Config
	logger  *zap.Logger
}

func NewService(repo Repo, assocs Associations, leads Leads, hook Hook, channel sms.Channel, limiter Limiter, cfg Config, logger *zap.Logger) *Service {
	if cfg.Expiry <= 0 {
		cfg.Expiry = 5 * time.Minute
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	return &Service{
		repo:    repo,
		assocs:  assocs,
		leads:   leads,
		hook:    hook,
		channel: channel,
		limiter: limiter,
		cfg:     cfg,
		logger:  logger,
	}
}

// Send issues a verification code for an association. If an active code
// already exists its state is returned instead of minting a new one, so
// repeated sends cannot be used for code enumeration. Delivery failure is
// never fatal: the result degrades to a manually shareable link.
func (s *Service) Send(ctx context.Context, req *otp.SendRequest) (*otp.SendResult, error) {
	assoc, err := s.assocs.FindByID(ctx, req.AssociationID)
	if err != nil {
		return nil, xerrors.Wrap(err, "association lookup failed")
	}

	l, err := s.leads.FindByID(ctx, assoc.LeadID)
	if err != nil {
		return nil, xerrors.Wrap(err, "lead lookup failed")
	}

	if existing, err := s.repo.FindActive(ctx, assoc.ID); err == nil {
		return &otp.SendResult{
			AssociationID: assoc.ID,
			ExpiresAt:     existing.ExpiresAt,
			Resent:        true,
			Delivery:      sms.DeliveryResult{Status: sms.StatusFallback, FallbackLink: s.fallbackLink(assoc.ID, "")},
		}, nil
	} else if !xerrors.Is(err, xerrors.ErrNotFound) {
		return nil, err
	}

	if s.limiter != nil {
		allowed, err := s.limiter.AllowSend(ctx, assoc.ID, l.Phone)
		if err != nil {
			s.logger.Warn("otp rate limiter unavailable", zap.Error(err))
		} else if !allowed {
			return nil, fmt.Errorf("otp sends for this association: %w", xerrors.ErrRateLimited)
		}
	}

	code, err := generateCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code: %w", err)
	}

	rec := &otp.Record{
		AssociationID: assoc.ID,
		Phone:         l.Phone,
		CodeHash:      s.hash(assoc.ID, code),
		ExpiresAt:     time.Now().Add(s.cfg.Expiry),
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Your site visit verification code is %s. It expires in %d minutes.",
		code, int(s.cfg.Expiry.Minutes()))
	delivery := s.channel.Send(ctx, "+91"+l.Phone, message)
	if delivery.Status == sms.StatusFailed {
		// Degrade to the manual path; staff share the link in person.
		delivery = sms.DeliveryResult{
			Status:       sms.StatusFallback,
			FallbackLink: s.fallbackLink(assoc.ID, code),
		}
		s.logger.Warn("otp delivery degraded to fallback link",
			zap.Int64("association_id", assoc.ID),
		)
	}

	s.logger.Info("otp issued",
		zap.Int64("association_id", assoc.ID),
		zap.String("delivery_status", string(delivery.Status)),
	)

	return &otp.SendResult{
		AssociationID: assoc.ID,
		ExpiresAt:     rec.ExpiresAt,
		Delivery:      delivery,
	}, nil
}

// Verify checks a submitted code against the association's active record.
// The attempt counter is incremented unconditionally, success included, so
// the audit trail counts every comparison.
func (s *Service) Verify(ctx context.Context, actor identity.Actor, req *otp.VerifyRequest) (*otp.Record, error) {
	if !identity.Can(actor.Role, identity.CapVerifyOTP) {
		return nil, fmt.Errorf("role %s cannot verify codes: %w", actor.Role, xerrors.ErrPermissionDenied)
	}

	assoc, err := s.assocs.FindByID(ctx, req.AssociationID)
	if err != nil {
		return nil, xerrors.Wrap(err, "association lookup failed")
	}

	rec, err := s.repo.FindActive(ctx, assoc.ID)
	if xerrors.Is(err, xerrors.ErrNotFound) {
		return nil, xerrors.ErrNoActiveOTP
	}
	if err != nil {
		return nil, err
	}

	if rec.Attempts >= s.cfg.MaxAttempts {
		return nil, xerrors.ErrAttemptsExceeded
	}
	rec.Attempts++

	if !s.matches(rec, assoc.ID, req.Code) {
		if err := s.repo.Update(ctx, rec); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("verification code mismatch: %w", xerrors.ErrValidation)
	}

	now := time.Now()
	rec.Verified = true
	rec.VerifiedAt.Time = now
	rec.VerifiedAt.Valid = true
	if assoc.IsPretagged {
		// A verified pretag means "this association's phone is trusted",
		// not a rolling session: keep the record valid effectively forever.
		rec.ExpiresAt = now.AddDate(100, 0, 0)
	}
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, assoc.ID, rec.Phone); err != nil {
			s.logger.Warn("failed to reset otp send counter", zap.Error(err))
		}
	}

	if err := s.hook.OnVerified(ctx, assoc, actor); err != nil {
		return nil, xerrors.Wrap(err, "post-verification transition failed")
	}

	s.logger.Info("otp verified",
		zap.Int64("association_id", assoc.ID),
		zap.Int64("verified_by", actor.StaffID),
		zap.Int("attempts", rec.Attempts),
	)
	return rec, nil
}

// hash keys the code to the association so a code issued for one project
// can never verify another project's association for the same lead.
func (s *Service) hash(associationID int64, code string) string {
	mac := hmac.New(sha256.New, s.cfg.Secret)
	fmt.Fprintf(mac, "%d:%s", associationID, code)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *Service) matches(rec *otp.Record, associationID int64, code string) bool {
	expected, err := hex.DecodeString(rec.CodeHash)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, s.cfg.Secret)
	fmt.Fprintf(mac, "%d:%s", associationID, code)
	return hmac.Equal(expected, mac.Sum(nil))
}

func (s *Service) fallbackLink(associationID int64, code string) string {
	q := url.Values{}
	q.Set("association_id", fmt.Sprintf("%d", associationID))
	if code != "" {
		q.Set("code", code)
	}
	return fmt.Sprintf("%s/verify?%s", s.cfg.FallbackBaseURL, q.Encode())
}

// generateCode produces a cryptographically random 6-digit code with
// leading zeros preserved.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
