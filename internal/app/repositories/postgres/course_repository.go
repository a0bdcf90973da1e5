package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/schooladmin/internal/app/models"
)

var courseColumns = []string{"id", "name", "code", "description", "credits", "semester", "department_id", "faculty_id", "created_at"}

// CourseRepository handles database operations for courses
type CourseRepository struct {
	db querier
}

func scanCourse(row scanner) (*models.Course, error) {
	c := &models.Course{}
	err := row.Scan(&c.ID, &c.Name, &c.Code, &c.Description, &c.Credits, &c.Semester, &c.DepartmentID, &c.FacultyID, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a course; duplicate codes fail on courses_code_key
func (r *CourseRepository) Create(ctx context.Context, c *models.Course) error {
	sql, args, err := psql.Insert("courses").
		Columns("name", "code", "description", "credits", "semester", "department_id", "faculty_id").
		Values(c.Name, c.Code, c.Description, c.Credits, c.Semester, c.DepartmentID, c.FacultyID).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create course query: %w", err)
	}
	return translate(r.db.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.CreatedAt))
}

// GetByID retrieves a course by ID
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	return queryOne(ctx, r.db, psql.Select(courseColumns...).From("courses").Where(squirrel.Eq{"id": id}), scanCourse)
}

// ListAll retrieves every course
func (r *CourseRepository) ListAll(ctx context.Context) ([]*models.Course, error) {
	return queryList(ctx, r.db, psql.Select(courseColumns...).From("courses").OrderBy("code"), scanCourse)
}

// ListByFaculty retrieves courses taught by a faculty member
func (r *CourseRepository) ListByFaculty(ctx context.Context, facultyID int64) ([]*models.Course, error) {
	q := psql.Select(courseColumns...).From("courses").Where(squirrel.Eq{"faculty_id": facultyID}).OrderBy("code")
	return queryList(ctx, r.db, q, scanCourse)
}

// ListByIDs retrieves courses by ID
func (r *CourseRepository) ListByIDs(ctx context.Context, ids []int64) ([]*models.Course, error) {
	if len(ids) == 0 {
		return []*models.Course{}, nil
	}
	q := psql.Select(courseColumns...).From("courses").Where(squirrel.Eq{"id": ids}).OrderBy("code")
	return queryList(ctx, r.db, q, scanCourse)
}

var enrollmentColumns = []string{"id", "student_id", "course_id", "status", "enrolled_at"}

// EnrollmentRepository handles database operations for enrollments
type EnrollmentRepository struct {
	db querier
}

func scanEnrollment(row scanner) (*models.Enrollment, error) {
	e := &models.Enrollment{}
	if err := row.Scan(&e.ID, &e.StudentID, &e.CourseID, &e.Status, &e.EnrolledAt); err != nil {
		return nil, err
	}
	return e, nil
}

// Create inserts an enrollment; a repeated pair fails on enrollments_student_course_key
func (r *EnrollmentRepository) Create(ctx context.Context, e *models.Enrollment) error {
	sql, args, err := psql.Insert("enrollments").
		Columns("student_id", "course_id", "status").
		Values(e.StudentID, e.CourseID, e.Status).
		Suffix("RETURNING id, enrolled_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create enrollment query: %w", err)
	}
	return translate(r.db.QueryRow(ctx, sql, args...).Scan(&e.ID, &e.EnrolledAt))
}

// Exists reports whether the student is enrolled in the course
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, courseID int64) (bool, error) {
	sql, args, err := psql.Select("1").From("enrollments").
		Where(squirrel.Eq{"student_id": studentID, "course_id": courseID}).
		Prefix("SELECT EXISTS (").Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build enrollment exists query: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, translate(err)
	}
	return exists, nil
}

// ListByStudent lists a student's enrollments
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID int64) ([]*models.Enrollment, error) {
	q := psql.Select(enrollmentColumns...).From("enrollments").Where(squirrel.Eq{"student_id": studentID}).OrderBy("id")
	return queryList(ctx, r.db, q, scanEnrollment)
}

// ListByCourseIDs lists enrollments of the given courses
func (r *EnrollmentRepository) ListByCourseIDs(ctx context.Context, courseIDs []int64) ([]*models.Enrollment, error) {
	if len(courseIDs) == 0 {
		return []*models.Enrollment{}, nil
	}
	q := psql.Select(enrollmentColumns...).From("enrollments").Where(squirrel.Eq{"course_id": courseIDs}).OrderBy("id")
	return queryList(ctx, r.db, q, scanEnrollment)
}

// Count returns the number of enrollments
func (r *EnrollmentRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM enrollments").Scan(&n); err != nil {
		return 0, translate(err)
	}
	return n, nil
}
