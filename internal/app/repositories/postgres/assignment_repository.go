package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/schooladmin/internal/app/models"
)

var assignmentColumns = []string{"id", "course_id", "faculty_id", "title", "description", "due_date", "max_marks", "created_at"}

// AssignmentRepository handles database operations for assignments
type AssignmentRepository struct {
	db querier
}

func scanAssignment(row scanner) (*models.Assignment, error) {
	a := &models.Assignment{}
	err := row.Scan(&a.ID, &a.CourseID, &a.FacultyID, &a.Title, &a.Description, &a.DueDate, &a.MaxMarks, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts an assignment
func (r *AssignmentRepository) Create(ctx context.Context, a *models.Assignment) error {
	sql, args, err := psql.Insert("assignments").
		Columns("course_id", "faculty_id", "title", "description", "due_date", "max_marks").
		Values(a.CourseID, a.FacultyID, a.Title, a.Description, a.DueDate, a.MaxMarks).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create assignment query: %w", err)
	}
	return translate(r.db.QueryRow(ctx, sql, args...).Scan(&a.ID, &a.CreatedAt))
}

// GetByID retrieves an assignment
func (r *AssignmentRepository) GetByID(ctx context.Context, id int64) (*models.Assignment, error) {
	return queryOne(ctx, r.db, psql.Select(assignmentColumns...).From("assignments").Where(squirrel.Eq{"id": id}), scanAssignment)
}

// ListAll retrieves every assignment, nearest due date first
func (r *AssignmentRepository) ListAll(ctx context.Context) ([]*models.Assignment, error) {
	return queryList(ctx, r.db, psql.Select(assignmentColumns...).From("assignments").OrderBy("due_date", "id"), scanAssignment)
}

// ListByFaculty retrieves assignments created by a faculty member
func (r *AssignmentRepository) ListByFaculty(ctx context.Context, facultyID int64) ([]*models.Assignment, error) {
	q := psql.Select(assignmentColumns...).From("assignments").Where(squirrel.Eq{"faculty_id": facultyID}).OrderBy("due_date", "id")
	return queryList(ctx, r.db, q, scanAssignment)
}

// ListByCourseIDs retrieves assignments of the given courses
func (r *AssignmentRepository) ListByCourseIDs(ctx context.Context, courseIDs []int64) ([]*models.Assignment, error) {
	if len(courseIDs) == 0 {
		return []*models.Assignment{}, nil
	}
	q := psql.Select(assignmentColumns...).From("assignments").Where(squirrel.Eq{"course_id": courseIDs}).OrderBy("due_date", "id")
	return queryList(ctx, r.db, q, scanAssignment)
}

// ListByIDs retrieves assignments by ID
func (r *AssignmentRepository) ListByIDs(ctx context.Context, ids []int64) ([]*models.Assignment, error) {
	if len(ids) == 0 {
		return []*models.Assignment{}, nil
	}
	q := psql.Select(assignmentColumns...).From("assignments").Where(squirrel.Eq{"id": ids}).OrderBy("due_date", "id")
	return queryList(ctx, r.db, q, scanAssignment)
}

var submissionColumns = []string{"id", "assignment_id", "student_id", "content", "status", "submitted_at", "marks", "feedback", "graded_at"}

// SubmissionRepository handles database operations for submissions
type SubmissionRepository struct {
	db querier
}

func scanSubmission(row scanner) (*models.Submission, error) {
	s := &models.Submission{}
	err := row.Scan(&s.ID, &s.AssignmentID, &s.StudentID, &s.Content, &s.Status, &s.SubmittedAt, &s.Marks, &s.Feedback, &s.GradedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Upsert inserts the submission or replaces the existing one for the same
// assignment and student, resetting any grade.
func (r *SubmissionRepository) Upsert(ctx context.Context, s *models.Submission) error {
	sql, args, err := psql.Insert("submissions").
		Columns("assignment_id", "student_id", "content", "status", "submitted_at").
		Values(s.AssignmentID, s.StudentID, s.Content, models.SubmissionSubmitted, s.SubmittedAt).
		Suffix(`ON CONFLICT ON CONSTRAINT submissions_assignment_student_key DO UPDATE SET
			content = EXCLUDED.content,
			status = EXCLUDED.status,
			submitted_at = EXCLUDED.submitted_at,
			marks = NULL,
			feedback = NULL,
			graded_at = NULL
			RETURNING id, assignment_id, student_id, content, status, submitted_at, marks, feedback, graded_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert submission query: %w", err)
	}

	stored, err := scanSubmission(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return translate(err)
	}
	*s = *stored
	return nil
}

// GetByID retrieves a submission
func (r *SubmissionRepository) GetByID(ctx context.Context, id int64) (*models.Submission, error) {
	return queryOne(ctx, r.db, psql.Select(submissionColumns...).From("submissions").Where(squirrel.Eq{"id": id}), scanSubmission)
}

// Grade stores marks and feedback and marks the submission GRADED
func (r *SubmissionRepository) Grade(ctx context.Context, id int64, marks int, feedback *string, at time.Time) (*models.Submission, error) {
	sql, args, err := psql.Update("submissions").
		Set("marks", marks).
		Set("feedback", feedback).
		Set("graded_at", at).
		Set("status", models.SubmissionGraded).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING id, assignment_id, student_id, content, status, submitted_at, marks, feedback, graded_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build grade submission query: %w", err)
	}

	s, err := scanSubmission(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, translate(err)
	}
	return s, nil
}

// ListByAssignment lists submissions for one assignment
func (r *SubmissionRepository) ListByAssignment(ctx context.Context, assignmentID int64) ([]*models.Submission, error) {
	q := psql.Select(submissionColumns...).From("submissions").Where(squirrel.Eq{"assignment_id": assignmentID}).OrderBy("submitted_at", "id")
	return queryList(ctx, r.db, q, scanSubmission)
}

// ListByAssignmentIDs lists submissions for several assignments
func (r *SubmissionRepository) ListByAssignmentIDs(ctx context.Context, assignmentIDs []int64) ([]*models.Submission, error) {
	if len(assignmentIDs) == 0 {
		return []*models.Submission{}, nil
	}
	q := psql.Select(submissionColumns...).From("submissions").Where(squirrel.Eq{"assignment_id": assignmentIDs}).OrderBy("id")
	return queryList(ctx, r.db, q, scanSubmission)
}

// ListByStudent lists a student's submissions
func (r *SubmissionRepository) ListByStudent(ctx context.Context, studentID int64) ([]*models.Submission, error) {
	q := psql.Select(submissionColumns...).From("submissions").Where(squirrel.Eq{"student_id": studentID}).OrderBy("submitted_at", "id")
	return queryList(ctx, r.db, q, scanSubmission)
}

// CountByStatus counts submissions per status
func (r *SubmissionRepository) CountByStatus(ctx context.Context) (map[models.SubmissionStatus]int, error) {
	return countBy[models.SubmissionStatus](ctx, r.db, psql.Select("status", "COUNT(*)").From("submissions").GroupBy("status"))
}
