package otp

import (
	"context"
	"regexp"
	"testing"
	"time"

	"estatedesk-service/internal/domain/association"
	"estatedesk-service/internal/domain/lead"
	"estatedesk-service/internal/domain/otp"
	xerrors "estatedesk-service/internal/pkg/errors"
	"estatedesk-service/internal/pkg/identity"
	"estatedesk-service/internal/pkg/sms"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRepo struct {
	records map[int64]*otp.Record
	nextID  int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[int64]*otp.Record)}
}

func (r *fakeRepo) FindActive(ctx context.Context, associationID int64) (*otp.Record, error) {
	var latest *otp.Record
	for _, rec := range r.records {
		if rec.AssociationID != associationID || !rec.Active(time.Now()) {
			continue
		}
		if latest == nil || rec.ID > latest.ID {
			latest = rec
		}
	}
	if latest == nil {
		return nil, xerrors.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (r *fakeRepo) Create(ctx context.Context, rec *otp.Record) error {
	r.nextID++
	rec.ID = r.nextID
	cp := *rec
	r.records[rec.ID] = &cp
	return nil
}

func (r *fakeRepo) Update(ctx context.Context, rec *otp.Record) error {
	cp := *rec
	r.records[rec.ID] = &cp
	return nil
}

type fakeAssocs struct {
	assocs map[int64]*association.Association
}

func (f *fakeAssocs) FindByID(ctx context.Context, id int64) (*association.Association, error) {
	a, ok := f.assocs[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return a, nil
}

type fakeLeads struct {
	leads map[int64]*lead.Lead
}

func (f *fakeLeads) FindByID(ctx context.Context, id int64) (*lead.Lead, error) {
	l, ok := f.leads[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return l, nil
}

type fakeHook struct {
	calls []int64
}

func (f *fakeHook) OnVerified(ctx context.Context, assoc *association.Association, verifier identity.Actor) error {
	f.calls = append(f.calls, assoc.ID)
	return nil
}

type fakeChannel struct {
	status   sms.DeliveryStatus
	lastSent string
	lastTo   string
}

func (f *fakeChannel) Send(ctx context.Context, phone, message string) sms.DeliveryResult {
	f.lastSent = message
	f.lastTo = phone
	return sms.DeliveryResult{Status: f.status}
}

type fakeLimiter struct {
	allow  bool
	resets int
}

func (f *fakeLimiter) AllowSend(ctx context.Context, associationID int64, phone string) (bool, error) {
	return f.allow, nil
}

func (f *fakeLimiter) Reset(ctx context.Context, associationID int64, phone string) error {
	f.resets++
	return nil
}

var codeRe = regexp.MustCompile(`\b(\d{6})\b`)

type fixture struct {
	svc     *Service
	repo    *fakeRepo
	assocs  *fakeAssocs
	hook    *fakeHook
	channel *fakeChannel
	limiter *fakeLimiter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newFakeRepo()
	assocs := &fakeAssocs{assocs: map[int64]*association.Association{
		1: {ID: 1, LeadID: 100, ProjectID: 10, Status: association.StatusContacted},
		2: {ID: 2, LeadID: 100, ProjectID: 20, Status: association.StatusNew, IsPretagged: true},
	}}
	leads := &fakeLeads{leads: map[int64]*lead.Lead{
		100: {ID: 100, Phone: "9876543210"},
	}}
	hook := &fakeHook{}
	channel := &fakeChannel{status: sms.StatusSent}
	limiter := &fakeLimiter{allow: true}

	svc := NewService(repo, assocs, leads, hook, channel, limiter, Config{
		Secret:          []byte("test-secret"),
		FallbackBaseURL: "https://verify.example.com",
	}, zap.NewNop())

	return &fixture{svc: svc, repo: repo, assocs: assocs, hook: hook, channel: channel, limiter: limiter}
}

func (f *fixture) sendAndCapture(t *testing.T, associationID int64) string {
	t.Helper()
	_, err := f.svc.Send(context.Background(), &otp.SendRequest{AssociationID: associationID})
	require.NoError(t, err)
	m := codeRe.FindString(f.channel.lastSent)
	require.NotEmpty(t, m, "no code in message %q", f.channel.lastSent)
	return m
}

func TestSendThenVerify(t *testing.T) {
	f := newFixture(t)
	code := f.sendAndCapture(t, 1)

	assert.Equal(t, "+919876543210", f.channel.lastTo)

	actor := identity.Actor{StaffID: 9, Role: identity.RoleClosingManager}
	rec, err := f.svc.Verify(context.Background(), actor, &otp.VerifyRequest{AssociationID: 1, Code: code})
	require.NoError(t, err)

	assert.True(t, rec.Verified)
	assert.Equal(t, 1, rec.Attempts)
	assert.Equal(t, []int64{1}, f.hook.calls)
	assert.Equal(t, 1, f.limiter.resets)
}

func TestResendReturnsExistingRecord(t *testing.T) {
	f := newFixture(t)
	first, err := f.svc.Send(context.Background(), &otp.SendRequest{AssociationID: 1})
	require.NoError(t, err)

	second, err := f.svc.Send(context.Background(), &otp.SendRequest{AssociationID: 1})
	require.NoError(t, err)

	assert.True(t, second.Resent)
	assert.Equal(t, first.ExpiresAt, second.ExpiresAt)
	assert.Len(t, f.repo.records, 1)
}

func TestVerifyWrongCodeCountsAttempt(t *testing.T) {
	f := newFixture(t)
	f.sendAndCapture(t, 1)

	actor := identity.Actor{StaffID: 9, Role: identity.RoleClosingManager}
	_, err := f.svc.Verify(context.Background(), actor, &otp.VerifyRequest{AssociationID: 1, Code: "000000"})
	require.Error(t, err)
	assert.True(t, xerrors.Is(err, xerrors.ErrValidation))

	rec, err := f.repo.FindActive(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Attempts)
	assert.Empty(t, f.hook.calls)
}

func TestVerifyAttemptsExceededEvenWithCorrectCode(t *testing.T) {
	f := newFixture(t)
	code := f.sendAndCapture(t, 1)

	actor := identity.Actor{StaffID: 9, Role: identity.RoleClosingManager}
	for i := 0; i < 3; i++ {
		_, err := f.svc.Verify(context.Background(), actor, &otp.VerifyRequest{AssociationID: 1, Code: "999999"})
		require.Error(t, err)
	}

	// The fourth submission carries the right code but the cap has been
	// reached, so it must still fail.
	_, err := f.svc.Verify(context.Background(), actor, &otp.VerifyRequest{AssociationID: 1, Code: code})
	assert.ErrorIs(t, err, xerrors.ErrAttemptsExceeded)
	assert.Empty(t, f.hook.calls)
}

func TestVerifyWithoutActiveCode(t *testing.T) {
	f := newFixture(t)

	actor := identity.Actor{StaffID: 9, Role: identity.RoleClosingManager}
	_, err := f.svc.Verify(context.Background(), actor, &otp.VerifyRequest{AssociationID: 1, Code: "123456"})
	assert.ErrorIs(t, err, xerrors.ErrNoActiveOTP)
}

func TestVerifyRequiresCapability(t *testing.T) {
	f := newFixture(t)
	code := f.sendAndCapture(t, 1)

	actor := identity.Actor{StaffID: 4, Role: identity.RoleFrontDesk}
	_, err := f.svc.Verify(context.Background(), actor, &otp.VerifyRequest{AssociationID: 1, Code: code})
	assert.True(t, xerrors.Is(err, xerrors.ErrPermissionDenied))
}

func TestCodeScopedToAssociation(t *testing.T) {
	f := newFixture(t)
	code := f.sendAndCapture(t, 1)

	// Same lead, different project. Even with the issued hash copied onto
	// the other association's record, the keyed hash cannot match.
	rec, err := f.repo.FindActive(context.Background(), 1)
	require.NoError(t, err)
	f.repo.Create(context.Background(), &otp.Record{
		AssociationID: 2,
		Phone:         rec.Phone,
		CodeHash:      rec.CodeHash,
		ExpiresAt:     rec.ExpiresAt,
	})

	actor := identity.Actor{StaffID: 9, Role: identity.RoleClosingManager}
	_, err = f.svc.Verify(context.Background(), actor, &otp.VerifyRequest{AssociationID: 2, Code: code})
	require.Error(t, err)
	assert.True(t, xerrors.Is(err, xerrors.ErrValidation))
}

func TestVerifiedPretagKeepsRecordAlive(t *testing.T) {
	f := newFixture(t)
	code := f.sendAndCapture(t, 2)

	actor := identity.Actor{StaffID: 9, Role: identity.RoleClosingManager}
	rec, err := f.svc.Verify(context.Background(), actor, &otp.VerifyRequest{AssociationID: 2, Code: code})
	require.NoError(t, err)

	assert.True(t, rec.Verified)
	assert.True(t, rec.ExpiresAt.After(time.Now().AddDate(50, 0, 0)))
}

func TestDeliveryFailureDegradesToFallbackLink(t *testing.T) {
	f := newFixture(t)
	f.channel.status = sms.StatusFailed

	result, err := f.svc.Send(context.Background(), &otp.SendRequest{AssociationID: 1})
	require.NoError(t, err)

	assert.Equal(t, sms.StatusFallback, result.Delivery.Status)
	assert.Contains(t, result.Delivery.FallbackLink, "https://verify.example.com/verify?")
	assert.Contains(t, result.Delivery.FallbackLink, "association_id=1")
}

func TestSendRateLimited(t *testing.T) {
	f := newFixture(t)
	f.limiter.allow = false

	_, err := f.svc.Send(context.Background(), &otp.SendRequest{AssociationID: 1})
	assert.ErrorIs(t, err, xerrors.ErrRateLimited)
	assert.Empty(t, f.repo.records)
}
