package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/repositories"
	"github.com/yigit/schooladmin/internal/pkg/dberrors"
)

// ProfileRepository handles the students, faculty, hods and principals tables
type ProfileRepository struct {
	db querier
}

var (
	studentColumns   = []string{"id", "user_id", "roll_number", "semester", "department_id", "created_at"}
	facultyColumns   = []string{"id", "user_id", "department_id", "designation", "qualification", "created_at"}
	hodColumns       = []string{"id", "user_id", "department_id", "created_at"}
	principalColumns = []string{"id", "user_id", "institution", "created_at"}
)

func scanStudent(row scanner) (*models.Student, error) {
	s := &models.Student{}
	if err := row.Scan(&s.ID, &s.UserID, &s.RollNumber, &s.Semester, &s.DepartmentID, &s.CreatedAt); err != nil {
		return nil, err
	}
	return s, nil
}

func scanFaculty(row scanner) (*models.Faculty, error) {
	f := &models.Faculty{}
	if err := row.Scan(&f.ID, &f.UserID, &f.DepartmentID, &f.Designation, &f.Qualification, &f.CreatedAt); err != nil {
		return nil, err
	}
	return f, nil
}

func scanHOD(row scanner) (*models.HOD, error) {
	h := &models.HOD{}
	if err := row.Scan(&h.ID, &h.UserID, &h.DepartmentID, &h.CreatedAt); err != nil {
		return nil, err
	}
	return h, nil
}

func scanPrincipal(row scanner) (*models.Principal, error) {
	p := &models.Principal{}
	if err := row.Scan(&p.ID, &p.UserID, &p.Institution, &p.CreatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

// insertReturning runs an insert that returns id and created_at
func (r *ProfileRepository) insertReturning(ctx context.Context, b squirrel.InsertBuilder, dest ...any) error {
	sql, args, err := b.Suffix("RETURNING id, created_at").ToSql()
	if err != nil {
		return fmt.Errorf("failed to build profile insert: %w", err)
	}
	return translate(r.db.QueryRow(ctx, sql, args...).Scan(dest...))
}

// CreateStudent inserts a student profile
func (r *ProfileRepository) CreateStudent(ctx context.Context, s *models.Student) error {
	b := psql.Insert("students").
		Columns("user_id", "roll_number", "semester", "department_id").
		Values(s.UserID, s.RollNumber, s.Semester, s.DepartmentID)
	return r.insertReturning(ctx, b, &s.ID, &s.CreatedAt)
}

// CreateFaculty inserts a faculty profile
func (r *ProfileRepository) CreateFaculty(ctx context.Context, f *models.Faculty) error {
	b := psql.Insert("faculty").
		Columns("user_id", "department_id", "designation", "qualification").
		Values(f.UserID, f.DepartmentID, f.Designation, f.Qualification)
	return r.insertReturning(ctx, b, &f.ID, &f.CreatedAt)
}

// CreateHOD inserts a HOD profile. A second HOD for the same department
// fails on hods_department_id_key.
func (r *ProfileRepository) CreateHOD(ctx context.Context, h *models.HOD) error {
	sql, args, err := psql.Insert("hods").
		Columns("user_id", "department_id").
		Values(h.UserID, h.DepartmentID).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build hod insert: %w", err)
	}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&h.ID, &h.CreatedAt)
	if dberrors.IsDuplicateConstraintError(err, repositories.ConstraintHODDepartment) {
		return &repositories.DuplicateError{Constraint: repositories.ConstraintHODDepartment}
	}
	return translate(err)
}

// CreatePrincipal inserts a principal profile
func (r *ProfileRepository) CreatePrincipal(ctx context.Context, p *models.Principal) error {
	b := psql.Insert("principals").
		Columns("user_id", "institution").
		Values(p.UserID, p.Institution)
	return r.insertReturning(ctx, b, &p.ID, &p.CreatedAt)
}

// GetStudentByUserID retrieves the student profile of a user
func (r *ProfileRepository) GetStudentByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	return queryOne(ctx, r.db, psql.Select(studentColumns...).From("students").Where(squirrel.Eq{"user_id": userID}), scanStudent)
}

// GetFacultyByUserID retrieves the faculty profile of a user
func (r *ProfileRepository) GetFacultyByUserID(ctx context.Context, userID int64) (*models.Faculty, error) {
	return queryOne(ctx, r.db, psql.Select(facultyColumns...).From("faculty").Where(squirrel.Eq{"user_id": userID}), scanFaculty)
}

// GetHODByUserID retrieves the HOD profile of a user
func (r *ProfileRepository) GetHODByUserID(ctx context.Context, userID int64) (*models.HOD, error) {
	return queryOne(ctx, r.db, psql.Select(hodColumns...).From("hods").Where(squirrel.Eq{"user_id": userID}), scanHOD)
}

// GetPrincipalByUserID retrieves the principal profile of a user
func (r *ProfileRepository) GetPrincipalByUserID(ctx context.Context, userID int64) (*models.Principal, error) {
	return queryOne(ctx, r.db, psql.Select(principalColumns...).From("principals").Where(squirrel.Eq{"user_id": userID}), scanPrincipal)
}

// GetStudentByID retrieves a student profile
func (r *ProfileRepository) GetStudentByID(ctx context.Context, id int64) (*models.Student, error) {
	return queryOne(ctx, r.db, psql.Select(studentColumns...).From("students").Where(squirrel.Eq{"id": id}), scanStudent)
}

// GetFacultyByID retrieves a faculty profile
func (r *ProfileRepository) GetFacultyByID(ctx context.Context, id int64) (*models.Faculty, error) {
	return queryOne(ctx, r.db, psql.Select(facultyColumns...).From("faculty").Where(squirrel.Eq{"id": id}), scanFaculty)
}

// ListStudentsByIDs retrieves student profiles by ID
func (r *ProfileRepository) ListStudentsByIDs(ctx context.Context, ids []int64) ([]*models.Student, error) {
	if len(ids) == 0 {
		return []*models.Student{}, nil
	}
	q := psql.Select(studentColumns...).From("students").Where(squirrel.Eq{"id": ids}).OrderBy("id")
	return queryList(ctx, r.db, q, scanStudent)
}

// ListFaculty lists faculty, optionally limited to a department
func (r *ProfileRepository) ListFaculty(ctx context.Context, departmentID *int64) ([]*models.Faculty, error) {
	q := psql.Select(facultyColumns...).From("faculty").OrderBy("id")
	if departmentID != nil {
		q = q.Where(squirrel.Eq{"department_id": *departmentID})
	}
	return queryList(ctx, r.db, q, scanFaculty)
}

// ListHODs returns every HOD profile
func (r *ProfileRepository) ListHODs(ctx context.Context) ([]*models.HOD, error) {
	return queryList(ctx, r.db, psql.Select(hodColumns...).From("hods").OrderBy("department_id"), scanHOD)
}
