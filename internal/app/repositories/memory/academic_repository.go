package memory

import (
	"context"
	"strings"
	"time"

	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/repositories"
)

type departmentRepository struct {
	s *Store
}

func (r *departmentRepository) Create(ctx context.Context, dep *models.Department) error {
	return r.s.view(ctx, func(d *state) error {
		if _, err := findBy(d.departments, func(v *models.Department) bool { return strings.EqualFold(v.Code, dep.Code) }); err == nil {
			return duplicate(repositories.ConstraintDepartmentCode)
		}
		dep.ID = d.next("departments")
		dep.CreatedAt = r.s.now()
		d.departments[dep.ID] = *dep
		return nil
	})
}

func (r *departmentRepository) GetByID(ctx context.Context, id int64) (dep *models.Department, err error) {
	err = r.s.view(ctx, func(d *state) error {
		dep, err = get(d.departments, id)
		return err
	})
	return dep, err
}

func (r *departmentRepository) List(ctx context.Context) (deps []*models.Department, err error) {
	err = r.s.view(ctx, func(d *state) error {
		deps = list(d.departments, nil, func(a, b *models.Department) bool { return a.Name < b.Name })
		return nil
	})
	return deps, err
}

func (r *departmentRepository) ClaimForHOD(ctx context.Context) (dep *models.Department, err error) {
	err = r.s.view(ctx, func(d *state) error {
		taken := make(map[int64]bool, len(d.hods))
		for _, h := range d.hods {
			taken[h.DepartmentID] = true
		}
		free := list(d.departments, func(v *models.Department) bool {
			return v.IsActive && !taken[v.ID]
		}, func(a, b *models.Department) bool { return a.ID < b.ID })
		if len(free) == 0 {
			return repositories.ErrNoAvailableDepartment
		}
		dep = free[0]
		return nil
	})
	return dep, err
}

type courseRepository struct {
	s *Store
}

func byCourseCode(a, b *models.Course) bool { return a.Code < b.Code }

func (r *courseRepository) Create(ctx context.Context, c *models.Course) error {
	return r.s.view(ctx, func(d *state) error {
		if _, err := findBy(d.courses, func(v *models.Course) bool { return v.Code == c.Code }); err == nil {
			return duplicate(repositories.ConstraintCourseCode)
		}
		c.ID = d.next("courses")
		c.CreatedAt = r.s.now()
		d.courses[c.ID] = *c
		return nil
	})
}

func (r *courseRepository) GetByID(ctx context.Context, id int64) (c *models.Course, err error) {
	err = r.s.view(ctx, func(d *state) error {
		c, err = get(d.courses, id)
		return err
	})
	return c, err
}

func (r *courseRepository) ListAll(ctx context.Context) (courses []*models.Course, err error) {
	err = r.s.view(ctx, func(d *state) error {
		courses = list(d.courses, nil, byCourseCode)
		return nil
	})
	return courses, err
}

func (r *courseRepository) ListByFaculty(ctx context.Context, facultyID int64) (courses []*models.Course, err error) {
	err = r.s.view(ctx, func(d *state) error {
		courses = list(d.courses, func(v *models.Course) bool { return v.FacultyID == facultyID }, byCourseCode)
		return nil
	})
	return courses, err
}

func (r *courseRepository) ListByIDs(ctx context.Context, ids []int64) (courses []*models.Course, err error) {
	set := idSet(ids)
	err = r.s.view(ctx, func(d *state) error {
		courses = list(d.courses, func(v *models.Course) bool { return set[v.ID] }, byCourseCode)
		return nil
	})
	return courses, err
}

type enrollmentRepository struct {
	s *Store
}

func byEnrollmentID(a, b *models.Enrollment) bool { return a.ID < b.ID }

func (r *enrollmentRepository) Create(ctx context.Context, e *models.Enrollment) error {
	return r.s.view(ctx, func(d *state) error {
		if _, err := findBy(d.enrollments, func(v *models.Enrollment) bool {
			return v.StudentID == e.StudentID && v.CourseID == e.CourseID
		}); err == nil {
			return duplicate(repositories.ConstraintEnrollment)
		}
		e.ID = d.next("enrollments")
		e.EnrolledAt = r.s.now()
		d.enrollments[e.ID] = *e
		return nil
	})
}

func (r *enrollmentRepository) Exists(ctx context.Context, studentID, courseID int64) (exists bool, err error) {
	err = r.s.view(ctx, func(d *state) error {
		_, findErr := findBy(d.enrollments, func(v *models.Enrollment) bool {
			return v.StudentID == studentID && v.CourseID == courseID
		})
		exists = findErr == nil
		return nil
	})
	return exists, err
}

func (r *enrollmentRepository) ListByStudent(ctx context.Context, studentID int64) (out []*models.Enrollment, err error) {
	err = r.s.view(ctx, func(d *state) error {
		out = list(d.enrollments, func(v *models.Enrollment) bool { return v.StudentID == studentID }, byEnrollmentID)
		return nil
	})
	return out, err
}

func (r *enrollmentRepository) ListByCourseIDs(ctx context.Context, courseIDs []int64) (out []*models.Enrollment, err error) {
	set := idSet(courseIDs)
	err = r.s.view(ctx, func(d *state) error {
		out = list(d.enrollments, func(v *models.Enrollment) bool { return set[v.CourseID] }, byEnrollmentID)
		return nil
	})
	return out, err
}

func (r *enrollmentRepository) Count(ctx context.Context) (n int, err error) {
	err = r.s.view(ctx, func(d *state) error {
		n = len(d.enrollments)
		return nil
	})
	return n, err
}

type assignmentRepository struct {
	s *Store
}

func byDueDate(a, b *models.Assignment) bool {
	if a.DueDate.Equal(b.DueDate) {
		return a.ID < b.ID
	}
	return a.DueDate.Before(b.DueDate)
}

func (r *assignmentRepository) Create(ctx context.Context, a *models.Assignment) error {
	return r.s.view(ctx, func(d *state) error {
		a.ID = d.next("assignments")
		a.CreatedAt = r.s.now()
		d.assignments[a.ID] = *a
		return nil
	})
}

func (r *assignmentRepository) GetByID(ctx context.Context, id int64) (a *models.Assignment, err error) {
	err = r.s.view(ctx, func(d *state) error {
		a, err = get(d.assignments, id)
		return err
	})
	return a, err
}

func (r *assignmentRepository) ListAll(ctx context.Context) (out []*models.Assignment, err error) {
	err = r.s.view(ctx, func(d *state) error {
		out = list(d.assignments, nil, byDueDate)
		return nil
	})
	return out, err
}

func (r *assignmentRepository) ListByFaculty(ctx context.Context, facultyID int64) (out []*models.Assignment, err error) {
	err = r.s.view(ctx, func(d *state) error {
		out = list(d.assignments, func(v *models.Assignment) bool { return v.FacultyID == facultyID }, byDueDate)
		return nil
	})
	return out, err
}

func (r *assignmentRepository) ListByCourseIDs(ctx context.Context, courseIDs []int64) (out []*models.Assignment, err error) {
	set := idSet(courseIDs)
	err = r.s.view(ctx, func(d *state) error {
		out = list(d.assignments, func(v *models.Assignment) bool { return set[v.CourseID] }, byDueDate)
		return nil
	})
	return out, err
}

func (r *assignmentRepository) ListByIDs(ctx context.Context, ids []int64) (out []*models.Assignment, err error) {
	set := idSet(ids)
	err = r.s.view(ctx, func(d *state) error {
		out = list(d.assignments, func(v *models.Assignment) bool { return set[v.ID] }, byDueDate)
		return nil
	})
	return out, err
}

type submissionRepository struct {
	s *Store
}

func bySubmissionID(a, b *models.Submission) bool { return a.ID < b.ID }

func (r *submissionRepository) Upsert(ctx context.Context, sub *models.Submission) error {
	return r.s.view(ctx, func(d *state) error {
		existing, err := findBy(d.submissions, func(v *models.Submission) bool {
			return v.AssignmentID == sub.AssignmentID && v.StudentID == sub.StudentID
		})
		if err == nil {
			sub.ID = existing.ID
		} else {
			sub.ID = d.next("submissions")
		}
		sub.Status = models.SubmissionSubmitted
		sub.Marks = nil
		sub.Feedback = nil
		sub.GradedAt = nil
		d.submissions[sub.ID] = *sub
		return nil
	})
}

func (r *submissionRepository) GetByID(ctx context.Context, id int64) (sub *models.Submission, err error) {
	err = r.s.view(ctx, func(d *state) error {
		sub, err = get(d.submissions, id)
		return err
	})
	return sub, err
}

func (r *submissionRepository) Grade(ctx context.Context, id int64, marks int, feedback *string, at time.Time) (sub *models.Submission, err error) {
	err = r.s.view(ctx, func(d *state) error {
		v, ok := d.submissions[id]
		if !ok {
			return repositories.ErrNotFound
		}
		v.Marks = &marks
		v.Feedback = feedback
		v.GradedAt = &at
		v.Status = models.SubmissionGraded
		d.submissions[id] = v
		sub = &v
		return nil
	})
	return sub, err
}

func (r *submissionRepository) ListByAssignment(ctx context.Context, assignmentID int64) (out []*models.Submission, err error) {
	err = r.s.view(ctx, func(d *state) error {
		out = list(d.submissions, func(v *models.Submission) bool { return v.AssignmentID == assignmentID }, bySubmissionID)
		return nil
	})
	return out, err
}

func (r *submissionRepository) ListByAssignmentIDs(ctx context.Context, assignmentIDs []int64) (out []*models.Submission, err error) {
	set := idSet(assignmentIDs)
	err = r.s.view(ctx, func(d *state) error {
		out = list(d.submissions, func(v *models.Submission) bool { return set[v.AssignmentID] }, bySubmissionID)
		return nil
	})
	return out, err
}

func (r *submissionRepository) ListByStudent(ctx context.Context, studentID int64) (out []*models.Submission, err error) {
	err = r.s.view(ctx, func(d *state) error {
		out = list(d.submissions, func(v *models.Submission) bool { return v.StudentID == studentID }, bySubmissionID)
		return nil
	})
	return out, err
}

func (r *submissionRepository) CountByStatus(ctx context.Context) (map[models.SubmissionStatus]int, error) {
	counts := make(map[models.SubmissionStatus]int)
	err := r.s.view(ctx, func(d *state) error {
		for _, v := range d.submissions {
			counts[v.Status]++
		}
		return nil
	})
	return counts, err
}
