package association

import (
	"context"
	"testing"

	"estatedesk-service/internal/domain/association"
	"estatedesk-service/internal/domain/lead"
	xerrors "estatedesk-service/internal/pkg/errors"
	"estatedesk-service/internal/pkg/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRepo struct {
	rows   map[int64]*association.Association
	nextID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: make(map[int64]*association.Association)}
}

func (r *fakeRepo) Create(ctx context.Context, a *association.Association) error {
	r.nextID++
	a.ID = r.nextID
	cp := *a
	r.rows[a.ID] = &cp
	return nil
}

func (r *fakeRepo) FindByID(ctx context.Context, id int64) (*association.Association, error) {
	a, ok := r.rows[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeRepo) FindLive(ctx context.Context, leadID, projectID int64) (*association.Association, error) {
	for _, a := range r.rows {
		if a.LeadID == leadID && a.ProjectID == projectID && !a.ArchivedAt.Valid {
			cp := *a
			return &cp, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (r *fakeRepo) Update(ctx context.Context, a *association.Association) error {
	if _, ok := r.rows[a.ID]; !ok {
		return xerrors.ErrNotFound
	}
	cp := *a
	r.rows[a.ID] = &cp
	return nil
}

func (r *fakeRepo) List(ctx context.Context, f *association.ListFilters) ([]*association.Association, error) {
	var out []*association.Association
	for _, a := range r.rows {
		if f.ProjectID != 0 && a.ProjectID != f.ProjectID {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

type fakeLeads struct {
	nextID  int64
	byPhone map[string]*lead.Lead
}

func newFakeLeads() *fakeLeads {
	return &fakeLeads{byPhone: make(map[string]*lead.Lead)}
}

func (f *fakeLeads) Upsert(ctx context.Context, in *lead.UpsertLeadInput) (*lead.Lead, error) {
	phone := lead.NormalizePhone(in.Phone)
	if l, ok := f.byPhone[phone]; ok {
		return l, nil
	}
	f.nextID++
	l := &lead.Lead{ID: f.nextID, Phone: phone}
	f.byPhone[phone] = l
	return l, nil
}

var (
	closer     = identity.Actor{StaffID: 9, Role: identity.RoleClosingManager}
	teleActor  = identity.Actor{StaffID: 5, Role: identity.RoleTelecaller}
	deskActor  = identity.Actor{StaffID: 3, Role: identity.RoleFrontDesk}
	adminActor = identity.Actor{StaffID: 1, Role: identity.RoleAdmin}
)

func newService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	return NewService(repo, newFakeLeads(), zap.NewNop()), repo
}

func visitReq(phone string, projectID int64) *association.CreateVisitRequest {
	return &association.CreateVisitRequest{
		Lead:      lead.UpsertLeadInput{Phone: phone, FullName: "Test Lead"},
		ProjectID: projectID,
	}
}

func TestCreateVisitSelfAssigns(t *testing.T) {
	svc, _ := newService()

	a, err := svc.CreateVisit(context.Background(), closer, visitReq("9876543210", 10))
	require.NoError(t, err)

	assert.Equal(t, association.StatusContacted, a.Status)
	assert.Equal(t, closer.StaffID, a.AssignedTo.Int64)
	assert.Equal(t, closer.StaffID, a.CreatedBy)
	assert.Equal(t, identity.RoleClosingManager, a.CreatedByRole)
}

func TestSecondLiveAssociationRejected(t *testing.T) {
	svc, _ := newService()

	_, err := svc.CreateVisit(context.Background(), closer, visitReq("9876543210", 10))
	require.NoError(t, err)

	_, err = svc.CreateVisit(context.Background(), closer, visitReq("+91 98765 43210", 10))
	assert.True(t, xerrors.Is(err, xerrors.ErrConflict))
}

func TestSameLeadDifferentProjectsAllowed(t *testing.T) {
	svc, _ := newService()

	_, err := svc.CreateVisit(context.Background(), closer, visitReq("9876543210", 10))
	require.NoError(t, err)

	b, err := svc.CreateVisit(context.Background(), closer, visitReq("9876543210", 20))
	require.NoError(t, err)
	assert.Equal(t, int64(20), b.ProjectID)
}

func TestPretagStartsUnassigned(t *testing.T) {
	svc, _ := newService()

	a, err := svc.Pretag(context.Background(), teleActor, &association.PretagRequest{
		Lead:             lead.UpsertLeadInput{Phone: "9876543210"},
		ProjectID:        10,
		ChannelPartnerID: 42,
	})
	require.NoError(t, err)

	assert.Equal(t, association.StatusNew, a.Status)
	assert.True(t, a.IsPretagged)
	assert.Equal(t, association.PretagPendingVerification, a.PretagStatus.String)
	assert.False(t, a.AssignedTo.Valid)
	assert.Equal(t, int64(42), a.ChannelPartnerID.Int64)
}

func TestRevisitChainsAndArchives(t *testing.T) {
	svc, repo := newService()

	first, err := svc.CreateVisit(context.Background(), closer, visitReq("9876543210", 10))
	require.NoError(t, err)

	second, err := svc.Revisit(context.Background(), closer, &association.RevisitRequest{PreviousVisitID: first.ID})
	require.NoError(t, err)

	assert.Equal(t, association.StatusVisitCompleted, second.Status)
	assert.Equal(t, first.ID, second.PreviousVisitID.Int64)
	assert.Equal(t, 1, second.RevisitCount)

	archived, err := repo.FindByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.True(t, archived.ArchivedAt.Valid)

	third, err := svc.Revisit(context.Background(), closer, &association.RevisitRequest{PreviousVisitID: second.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, third.RevisitCount)
}

func TestRevisitRejectsStaleParent(t *testing.T) {
	svc, _ := newService()

	first, err := svc.CreateVisit(context.Background(), closer, visitReq("9876543210", 10))
	require.NoError(t, err)
	_, err = svc.Revisit(context.Background(), closer, &association.RevisitRequest{PreviousVisitID: first.ID})
	require.NoError(t, err)

	// The first association is no longer the latest visit.
	_, err = svc.Revisit(context.Background(), closer, &association.RevisitRequest{PreviousVisitID: first.ID})
	assert.True(t, xerrors.Is(err, xerrors.ErrConflict))
}

func TestQueueVisitCapability(t *testing.T) {
	svc, _ := newService()

	a, err := svc.QueueVisit(context.Background(), deskActor, &association.QueueVisitRequest{
		Lead:      lead.UpsertLeadInput{Phone: "9876543210"},
		ProjectID: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, association.StatusQueuedVisit, a.Status)
	assert.Equal(t, deskActor.StaffID, a.QueuedBy.Int64)
	assert.False(t, a.AssignedTo.Valid)

	_, err = svc.QueueVisit(context.Background(), teleActor, &association.QueueVisitRequest{
		Lead:      lead.UpsertLeadInput{Phone: "9876500000"},
		ProjectID: 10,
	})
	assert.True(t, xerrors.Is(err, xerrors.ErrPermissionDenied))
}

func TestPromoteQueued(t *testing.T) {
	svc, _ := newService()

	queued, err := svc.QueueVisit(context.Background(), deskActor, &association.QueueVisitRequest{
		Lead:      lead.UpsertLeadInput{Phone: "9876543210"},
		ProjectID: 10,
	})
	require.NoError(t, err)

	_, err = svc.PromoteQueued(context.Background(), deskActor, queued.ID)
	assert.True(t, xerrors.Is(err, xerrors.ErrPermissionDenied))

	promoted, err := svc.PromoteQueued(context.Background(), closer, queued.ID)
	require.NoError(t, err)
	assert.Equal(t, association.StatusVisitCompleted, promoted.Status)
	assert.Equal(t, closer.StaffID, promoted.AssignedTo.Int64)
	assert.False(t, promoted.QueuedAt.Valid)
	assert.False(t, promoted.QueuedBy.Valid)

	_, err = svc.PromoteQueued(context.Background(), closer, queued.ID)
	assert.True(t, xerrors.Is(err, xerrors.ErrConflict))
}

func TestUpdateStatusTransitions(t *testing.T) {
	svc, _ := newService()

	a, err := svc.CreateVisit(context.Background(), closer, visitReq("9876543210", 10))
	require.NoError(t, err)

	// Skipping ahead is rejected.
	_, err = svc.UpdateStatus(context.Background(), closer, a.ID, association.StatusBooked)
	assert.True(t, xerrors.Is(err, xerrors.ErrConflict))

	a2, err := svc.UpdateStatus(context.Background(), closer, a.ID, association.StatusVisitCompleted)
	require.NoError(t, err)
	assert.Equal(t, association.StatusVisitCompleted, a2.Status)

	// Lost is reachable from any non-terminal status.
	a3, err := svc.UpdateStatus(context.Background(), closer, a.ID, association.StatusLost)
	require.NoError(t, err)
	assert.Equal(t, association.StatusLost, a3.Status)

	// Terminal statuses never move without an override.
	_, err = svc.UpdateStatus(context.Background(), closer, a.ID, association.StatusContacted)
	assert.True(t, xerrors.Is(err, xerrors.ErrConflict))
}

func TestOverrideStatusAdminOnly(t *testing.T) {
	svc, _ := newService()

	a, err := svc.CreateVisit(context.Background(), closer, visitReq("9876543210", 10))
	require.NoError(t, err)
	_, err = svc.UpdateStatus(context.Background(), closer, a.ID, association.StatusLost)
	require.NoError(t, err)

	_, err = svc.OverrideStatus(context.Background(), closer, a.ID, association.StatusDiscussion)
	assert.True(t, xerrors.Is(err, xerrors.ErrPermissionDenied))

	restored, err := svc.OverrideStatus(context.Background(), adminActor, a.ID, association.StatusDiscussion)
	require.NoError(t, err)
	assert.Equal(t, association.StatusDiscussion, restored.Status)
}

func TestOnVerifiedByClosingRole(t *testing.T) {
	svc, repo := newService()

	a, err := svc.CreateVisit(context.Background(), teleActor, visitReq("9876543210", 10))
	require.NoError(t, err)

	require.NoError(t, svc.OnVerified(context.Background(), a, closer))

	stored, err := repo.FindByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.True(t, stored.PhoneVerified)
	assert.Equal(t, association.StatusVisitCompleted, stored.Status)
	assert.Equal(t, closer.StaffID, stored.AssignedTo.Int64)
}

func TestOnVerifiedByTelecallerReleasesToQueue(t *testing.T) {
	svc, repo := newService()

	a, err := svc.CreateVisit(context.Background(), teleActor, visitReq("9876543210", 10))
	require.NoError(t, err)

	require.NoError(t, svc.OnVerified(context.Background(), a, teleActor))

	stored, err := repo.FindByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.True(t, stored.PhoneVerified)
	assert.False(t, stored.AssignedTo.Valid)
	assert.True(t, stored.QueuedAt.Valid)
	assert.Equal(t, teleActor.StaffID, stored.QueuedBy.Int64)
}

func TestOnVerifiedPretagMarksVerifiedOnly(t *testing.T) {
	svc, repo := newService()

	a, err := svc.Pretag(context.Background(), teleActor, &association.PretagRequest{
		Lead:             lead.UpsertLeadInput{Phone: "9876543210"},
		ProjectID:        10,
		ChannelPartnerID: 42,
	})
	require.NoError(t, err)

	require.NoError(t, svc.OnVerified(context.Background(), a, closer))

	stored, err := repo.FindByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, association.PretagVerified, stored.PretagStatus.String)
	assert.Equal(t, association.StatusNew, stored.Status)
	assert.True(t, stored.PhoneVerified)
}
