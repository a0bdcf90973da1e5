package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/repositories"
)

var departmentColumns = []string{"d.id", "d.name", "d.code", "d.description", "d.is_active", "d.created_at"}

// DepartmentRepository handles database operations for departments
type DepartmentRepository struct {
	db querier
}

func scanDepartment(row scanner) (*models.Department, error) {
	d := &models.Department{}
	if err := row.Scan(&d.ID, &d.Name, &d.Code, &d.Description, &d.IsActive, &d.CreatedAt); err != nil {
		return nil, err
	}
	return d, nil
}

// Create creates a new department
func (r *DepartmentRepository) Create(ctx context.Context, d *models.Department) error {
	sql, args, err := psql.Insert("departments").
		Columns("name", "code", "description", "is_active").
		Values(d.Name, d.Code, d.Description, d.IsActive).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create department query: %w", err)
	}
	return translate(r.db.QueryRow(ctx, sql, args...).Scan(&d.ID, &d.CreatedAt))
}

// GetByID retrieves a department by ID
func (r *DepartmentRepository) GetByID(ctx context.Context, id int64) (*models.Department, error) {
	q := psql.Select(departmentColumns...).From("departments d").Where(squirrel.Eq{"d.id": id})
	return queryOne(ctx, r.db, q, scanDepartment)
}

// List retrieves all departments ordered by name
func (r *DepartmentRepository) List(ctx context.Context) ([]*models.Department, error) {
	return queryList(ctx, r.db, psql.Select(departmentColumns...).From("departments d").OrderBy("d.name"), scanDepartment)
}

// ClaimForHOD locks the first active department without a HOD. Rows locked by
// a concurrent approval are skipped, so two approvals never get the same row;
// the unique index on hods.department_id backs this up.
func (r *DepartmentRepository) ClaimForHOD(ctx context.Context) (*models.Department, error) {
	q := psql.Select(departmentColumns...).
		From("departments d").
		Where(squirrel.Eq{"d.is_active": true}).
		Where("NOT EXISTS (SELECT 1 FROM hods h WHERE h.department_id = d.id)").
		OrderBy("d.id").
		Suffix("FOR UPDATE OF d SKIP LOCKED")

	d, err := queryOne(ctx, r.db, q, scanDepartment)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, repositories.ErrNoAvailableDepartment
	}
	return d, err
}
