package postgres

import (
	"context"
	"errors"
	"fmt"

	"estatedesk-service/internal/domain/project"
	xerrors "estatedesk-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProjectRepository struct {
	db *pgxpool.Pool
}

func NewProjectRepository(db *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// FindByID retrieves a project with its rate configuration.
func (r *ProjectRepository) FindByID(ctx context.Context, id int64) (*project.Project, error) {
	query := `
		SELECT id, name, sourcing_manager_id, daily_assign_quota,
		       price_per_sqft, stamp_duty_pct, gst_pct,
		       registration_charge, legal_charge,
		       development_charge, development_per_sqft, parking_charge,
		       highrise_enabled, highrise_mode, highrise_base_floor,
		       highrise_floor_threshold, highrise_per_sqft_increment,
		       highrise_fixed_price_increment,
		       created_at, updated_at
		FROM projects
		WHERE id = $1
	`

	var p project.Project
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.SourcingManagerID, &p.DailyAssignQuota,
		&p.Rates.PricePerSqft, &p.Rates.StampDutyPct, &p.Rates.GSTPct,
		&p.Rates.RegistrationCharge, &p.Rates.LegalCharge,
		&p.Rates.DevelopmentCharge, &p.Rates.DevelopmentPerSqft, &p.Rates.ParkingCharge,
		&p.Highrise.Enabled, &p.Highrise.Mode, &p.Highrise.BaseFloor,
		&p.Highrise.FloorThreshold, &p.Highrise.PerSqftIncrement,
		&p.Highrise.FixedPriceIncrement,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return &p, nil
}

// FindAreaConfig retrieves an area/configuration variant.
func (r *ProjectRepository) FindAreaConfig(ctx context.Context, id int64) (*project.AreaConfig, error) {
	query := `
		SELECT id, project_id, name, carpet_area, buildup_area
		FROM area_configs
		WHERE id = $1
	`

	var ac project.AreaConfig
	err := r.db.QueryRow(ctx, query, id).Scan(
		&ac.ID, &ac.ProjectID, &ac.Name, &ac.CarpetArea, &ac.BuildupArea,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find area config: %w", err)
	}
	return &ac, nil
}

// ListProjectStaff retrieves the staff members assigned to a project.
func (r *ProjectRepository) ListProjectStaff(ctx context.Context, projectID int64) ([]project.StaffAssignment, error) {
	query := `
		SELECT staff_id, role
		FROM project_staff
		WHERE project_id = $1
		ORDER BY staff_id
	`

	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project staff: %w", err)
	}
	defer rows.Close()

	var out []project.StaffAssignment
	for rows.Next() {
		var sa project.StaffAssignment
		if err := rows.Scan(&sa.StaffID, &sa.Role); err != nil {
			return nil, fmt.Errorf("failed to scan staff assignment: %w", err)
		}
		out = append(out, sa)
	}
	return out, rows.Err()
}

// ListProjectIDs retrieves all project ids, for the daily assignment job.
func (r *ProjectRepository) ListProjectIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM projects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan project id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
