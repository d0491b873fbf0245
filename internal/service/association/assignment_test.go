package association

import (
	"context"
	"testing"

	"estatedesk-service/internal/domain/association"
	"estatedesk-service/internal/domain/project"
	xerrors "estatedesk-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeDB struct {
	txs []*fakeTx
}

func (d *fakeDB) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx := &fakeTx{}
	d.txs = append(d.txs, tx)
	return tx, nil
}

type fakeBatchRepo struct {
	pending       []*association.Association
	assignedToday map[int64]int
	assignments   map[int64]int64
}

func newFakeBatchRepo(pending ...*association.Association) *fakeBatchRepo {
	return &fakeBatchRepo{
		pending:       pending,
		assignedToday: make(map[int64]int),
		assignments:   make(map[int64]int64),
	}
}

func (r *fakeBatchRepo) AcquireUnassigned(ctx context.Context, tx pgx.Tx, projectID int64, limit int) ([]*association.Association, error) {
	if limit > len(r.pending) {
		limit = len(r.pending)
	}
	return r.pending[:limit], nil
}

func (r *fakeBatchRepo) AssignWithTx(ctx context.Context, tx pgx.Tx, associationID, staffID, assignerID int64) error {
	r.assignments[associationID] = staffID
	return nil
}

func (r *fakeBatchRepo) CountAssignedToday(ctx context.Context, projectID, staffID int64) (int, error) {
	return r.assignedToday[staffID], nil
}

type fakeProjects struct {
	projects map[int64]*project.Project
	staff    map[int64][]project.StaffAssignment
}

func (f *fakeProjects) FindByID(ctx context.Context, id int64) (*project.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return p, nil
}

func (f *fakeProjects) ListProjectStaff(ctx context.Context, projectID int64) ([]project.StaffAssignment, error) {
	return f.staff[projectID], nil
}

func (f *fakeProjects) ListProjectIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	for id := range f.projects {
		ids = append(ids, id)
	}
	return ids, nil
}

func pendingRows(n int) []*association.Association {
	out := make([]*association.Association, n)
	for i := range out {
		out[i] = &association.Association{ID: int64(i + 1), ProjectID: 10, Status: association.StatusVisitCompleted}
	}
	return out
}

func TestAssignProjectRoundRobin(t *testing.T) {
	db := &fakeDB{}
	repo := newFakeBatchRepo(pendingRows(5)...)
	projects := &fakeProjects{
		projects: map[int64]*project.Project{10: {ID: 10, DailyAssignQuota: 2}},
		staff: map[int64][]project.StaffAssignment{10: {
			{StaffID: 100, Role: "closing_manager"},
			{StaffID: 200, Role: "closing_manager"},
			{StaffID: 300, Role: "telecaller"},
		}},
	}

	a := NewAssigner(db, repo, projects, zap.NewNop())
	assigned, err := a.AssignProject(context.Background(), 10)
	require.NoError(t, err)

	// Two closing staff at quota two each; the telecaller takes nothing.
	assert.Equal(t, 4, assigned)
	perStaff := map[int64]int{}
	for _, staffID := range repo.assignments {
		perStaff[staffID]++
		assert.NotEqual(t, int64(300), staffID)
	}
	assert.Equal(t, 2, perStaff[100])
	assert.Equal(t, 2, perStaff[200])

	require.Len(t, db.txs, 1)
	assert.True(t, db.txs[0].committed)
}

func TestAssignProjectHonorsUsedQuota(t *testing.T) {
	db := &fakeDB{}
	repo := newFakeBatchRepo(pendingRows(5)...)
	repo.assignedToday[100] = 2
	repo.assignedToday[200] = 1
	projects := &fakeProjects{
		projects: map[int64]*project.Project{10: {ID: 10, DailyAssignQuota: 2}},
		staff: map[int64][]project.StaffAssignment{10: {
			{StaffID: 100, Role: "closing_manager"},
			{StaffID: 200, Role: "closing_manager"},
		}},
	}

	a := NewAssigner(db, repo, projects, zap.NewNop())
	assigned, err := a.AssignProject(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, 1, assigned)
	for _, staffID := range repo.assignments {
		assert.Equal(t, int64(200), staffID)
	}
}

func TestAssignProjectNoCapacitySkipsTransaction(t *testing.T) {
	db := &fakeDB{}
	repo := newFakeBatchRepo(pendingRows(3)...)
	repo.assignedToday[100] = 2
	projects := &fakeProjects{
		projects: map[int64]*project.Project{10: {ID: 10, DailyAssignQuota: 2}},
		staff: map[int64][]project.StaffAssignment{10: {
			{StaffID: 100, Role: "closing_manager"},
		}},
	}

	a := NewAssigner(db, repo, projects, zap.NewNop())
	assigned, err := a.AssignProject(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, 0, assigned)
	assert.Empty(t, db.txs)
}

func TestAssignProjectZeroQuotaDisabled(t *testing.T) {
	db := &fakeDB{}
	repo := newFakeBatchRepo(pendingRows(3)...)
	projects := &fakeProjects{
		projects: map[int64]*project.Project{10: {ID: 10, DailyAssignQuota: 0}},
		staff: map[int64][]project.StaffAssignment{10: {
			{StaffID: 100, Role: "closing_manager"},
		}},
	}

	a := NewAssigner(db, repo, projects, zap.NewNop())
	assigned, err := a.AssignProject(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 0, assigned)
}
