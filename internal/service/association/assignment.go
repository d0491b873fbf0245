package association

import (
	"context"
	"fmt"

	"estatedesk-service/internal/domain/association"
	"estatedesk-service/internal/domain/project"
	"estatedesk-service/internal/pkg/identity"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// TxBeginner opens the transaction the batch assignment runs inside.
type TxBeginner interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
}

// BatchRepo is the lock-skip acquisition contract for the scheduler. Rows
// held by a concurrent run come back absent, not waited on.
type BatchRepo interface {
	AcquireUnassigned(ctx context.Context, tx pgx.Tx, projectID int64, limit int) ([]*association.Association, error)
	AssignWithTx(ctx context.Context, tx pgx.Tx, associationID, staffID, assignerID int64) error
	CountAssignedToday(ctx context.Context, projectID, staffID int64) (int, error)
}

// Projects supplies staff rosters and quotas.
type Projects interface {
	FindByID(ctx context.Context, id int64) (*project.Project, error)
	ListProjectStaff(ctx context.Context, projectID int64) ([]project.StaffAssignment, error)
	ListProjectIDs(ctx context.Context) ([]int64, error)
}

// Assigner distributes unassigned associations across a project's closing
// staff once a day, honoring the per-(project, employee) quota.
type Assigner struct {
	db       TxBeginner
	repo     BatchRepo
	projects Projects
	logger   *zap.Logger
}

func NewAssigner(db TxBeginner, repo BatchRepo, projects Projects, logger *zap.Logger) *Assigner {
	return &Assigner{db: db, repo: repo, projects: projects, logger: logger}
}

// AssignProject runs one project's distribution. The whole pass is a
// single transaction over skip-locked rows, so two schedulers running at
// once partition the work instead of double-assigning.
func (a *Assigner) AssignProject(ctx context.Context, projectID int64) (int, error) {
	proj, err := a.projects.FindByID(ctx, projectID)
	if err != nil {
		return 0, err
	}
	quota := proj.DailyAssignQuota
	if quota <= 0 {
		return 0, nil
	}

	staff, err := a.projects.ListProjectStaff(ctx, projectID)
	if err != nil {
		return 0, err
	}

	// Only closing roles take pipeline assignments.
	type slot struct {
		staffID   int64
		remaining int
	}
	var slots []slot
	capacity := 0
	for _, sa := range staff {
		if !identity.Role(sa.Role).IsClosing() {
			continue
		}
		used, err := a.repo.CountAssignedToday(ctx, projectID, sa.StaffID)
		if err != nil {
			return 0, err
		}
		if remaining := quota - used; remaining > 0 {
			slots = append(slots, slot{staffID: sa.StaffID, remaining: remaining})
			capacity += remaining
		}
	}
	if capacity == 0 {
		return 0, nil
	}

	tx, err := a.db.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin assignment transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	pending, err := a.repo.AcquireUnassigned(ctx, tx, projectID, capacity)
	if err != nil {
		return 0, err
	}

	assigned := 0
	si := 0
	for _, assoc := range pending {
		for si < len(slots) && slots[si].remaining == 0 {
			si++
		}
		if si >= len(slots) {
			break
		}
		if err := a.repo.AssignWithTx(ctx, tx, assoc.ID, slots[si].staffID, slots[si].staffID); err != nil {
			return 0, err
		}
		slots[si].remaining--
		assigned++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit assignments: %w", err)
	}

	if assigned > 0 {
		a.logger.Info("daily assignment pass",
			zap.Int64("project_id", projectID),
			zap.Int("assigned", assigned),
		)
	}
	return assigned, nil
}

// AssignAll runs the distribution for every project.
func (a *Assigner) AssignAll(ctx context.Context) (int, error) {
	ids, err := a.projects.ListProjectIDs(ctx)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, id := range ids {
		n, err := a.AssignProject(ctx, id)
		if err != nil {
			a.logger.Error("assignment pass failed",
				zap.Int64("project_id", id),
				zap.Error(err),
			)
			continue
		}
		total += n
	}
	return total, nil
}
