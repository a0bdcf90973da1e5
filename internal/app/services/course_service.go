package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/schooladmin/internal/app/auth"
	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/app/repositories"
	"github.com/yigit/schooladmin/internal/pkg/apperrors"
)

// CourseService manages courses and enrollments
type CourseService struct {
	store  repositories.Store
	authz  *auth.AuthorizationService
	logger zerolog.Logger
}

// NewCourseService creates a new CourseService
func NewCourseService(store repositories.Store, authz *auth.AuthorizationService, logger zerolog.Logger) *CourseService {
	return &CourseService{store: store, authz: authz, logger: logger}
}

// ListCourses returns the courses visible to the caller: a student's
// enrollments, a faculty member's teaching load, or everything.
func (s *CourseService) ListCourses(ctx context.Context, id auth.Identity) (*dto.CourseListResponse, error) {
	repos := s.store.Repos()

	var (
		courses []*models.Course
		err     error
	)
	switch {
	case id.Role == models.RoleStudent:
		student, perr := studentProfile(ctx, repos, id, "list enrolled courses")
		if perr != nil {
			return nil, perr
		}
		ids, perr := enrolledCourseIDs(ctx, repos, student.ID)
		if perr != nil {
			return nil, perr
		}
		courses, err = repos.Courses.ListByIDs(ctx, ids)
	case id.Role == models.RoleFaculty:
		faculty, perr := facultyProfile(ctx, repos, id, "list taught courses")
		if perr != nil {
			return nil, perr
		}
		courses, err = repos.Courses.ListByFaculty(ctx, faculty.ID)
	case seesAll(id):
		courses, err = repos.Courses.ListAll(ctx)
	default:
		return nil, auth.RequireRole(id, "list courses", models.RoleStudent, models.RoleFaculty, models.RoleHOD, models.RolePrincipal)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("role", string(id.Role)).Msg("Failed to list courses")
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	out, err := s.decorate(ctx, repos, courses)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load course details")
		return nil, fmt.Errorf("failed to load course details: %w", err)
	}
	return &dto.CourseListResponse{Courses: out}, nil
}

// decorate attaches faculty, department and enrollments to each course
func (s *CourseService) decorate(ctx context.Context, repos *repositories.Repositories, courses []*models.Course) ([]dto.CourseResponse, error) {
	ids := make([]int64, len(courses))
	for i, c := range courses {
		ids[i] = c.ID
	}
	enrollments, err := repos.Enrollments.ListByCourseIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	studentIDs := make([]int64, 0, len(enrollments))
	byCourse := make(map[int64][]*models.Enrollment)
	for _, e := range enrollments {
		byCourse[e.CourseID] = append(byCourse[e.CourseID], e)
		studentIDs = append(studentIDs, e.StudentID)
	}
	students, err := repos.Profiles.ListStudentsByIDs(ctx, studentIDs)
	if err != nil {
		return nil, err
	}
	studentByID := make(map[int64]*models.Student, len(students))
	for _, st := range students {
		studentByID[st.ID] = st
	}

	l := newLookup(repos)
	out := make([]dto.CourseResponse, 0, len(courses))
	for _, c := range courses {
		resp := dto.CourseResponse{Course: *c, Enrollments: []dto.EnrollmentSummary{}}
		if f, err := l.facultyByID(ctx, c.FacultyID); err == nil {
			resp.Faculty = f
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		if d, err := l.department(ctx, c.DepartmentID); err == nil {
			resp.Department = d
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		for _, e := range byCourse[c.ID] {
			summary := dto.EnrollmentSummary{
				ID:         e.ID,
				StudentID:  e.StudentID,
				Status:     e.Status,
				EnrolledAt: e.EnrolledAt,
			}
			if st, ok := studentByID[e.StudentID]; ok {
				summary.RollNumber = st.RollNumber
				summary.StudentName = l.userName(ctx, st.UserID)
			}
			resp.Enrollments = append(resp.Enrollments, summary)
		}
		out = append(out, resp)
	}
	return out, nil
}

// resolveFaculty accepts either a faculty profile ID or the faculty member's user ID
func resolveFaculty(ctx context.Context, repos *repositories.Repositories, ref int64) (*models.Faculty, error) {
	f, err := repos.Profiles.GetFacultyByID(ctx, ref)
	if errors.Is(err, repositories.ErrNotFound) {
		f, err = repos.Profiles.GetFacultyByUserID(ctx, ref)
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.WithCause(apperrors.ErrBadRequest, apperrors.ErrFacultyNotFound,
			fmt.Sprintf("faculty %d not found", ref))
	}
	return f, err
}

// CreateCourse creates a course. Only a HOD or the principal may do this.
func (s *CourseService) CreateCourse(ctx context.Context, id auth.Identity, req *dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	if _, err := s.authz.RequireStoredRole(ctx, id, "create courses", models.RoleHOD, models.RolePrincipal); err != nil {
		return nil, err
	}
	repos := s.store.Repos()

	faculty, err := resolveFaculty(ctx, repos, req.FacultyID)
	if err != nil {
		return nil, err
	}
	if _, err := repos.Departments.GetByID(ctx, req.DepartmentID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.WithCause(apperrors.ErrBadRequest, apperrors.ErrDepartmentNotFound,
				fmt.Sprintf("department %d not found", req.DepartmentID))
		}
		return nil, fmt.Errorf("failed to get department: %w", err)
	}

	course := &models.Course{
		Name:         strings.TrimSpace(req.Name),
		Code:         strings.ToUpper(strings.TrimSpace(req.Code)),
		Description:  req.Description,
		Credits:      req.Credits,
		Semester:     req.Semester,
		DepartmentID: req.DepartmentID,
		FacultyID:    faculty.ID,
	}
	if err := repos.Courses.Create(ctx, course); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.NewConflictError(fmt.Sprintf("course code %s already exists", course.Code))
		}
		s.logger.Error().Err(err).Str("code", course.Code).Msg("Failed to create course")
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.logger.Info().Int64("courseID", course.ID).Str("code", course.Code).Int64("facultyID", faculty.ID).Msg("Course created")
	out, err := s.decorate(ctx, repos, []*models.Course{course})
	if err != nil {
		return nil, fmt.Errorf("failed to load course details: %w", err)
	}
	return &out[0], nil
}

// Enroll enrolls the calling student in a course
func (s *CourseService) Enroll(ctx context.Context, id auth.Identity, req *dto.EnrollRequest) (*dto.EnrollmentResponse, error) {
	repos := s.store.Repos()
	student, err := studentProfile(ctx, repos, id, "enroll in courses")
	if err != nil {
		return nil, err
	}

	course, err := repos.Courses.GetByID(ctx, req.CourseID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrCourseNotFound, "Course not found")
	}

	alreadyEnrolled := apperrors.WithCause(apperrors.ErrConflict, apperrors.ErrAlreadyEnrolled, "Already enrolled in this course")
	exists, err := repos.Enrollments.Exists(ctx, student.ID, course.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if exists {
		return nil, alreadyEnrolled
	}

	enrollment := &models.Enrollment{
		StudentID: student.ID,
		CourseID:  course.ID,
		Status:    models.EnrollmentEnrolled,
	}
	if err := repos.Enrollments.Create(ctx, enrollment); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, alreadyEnrolled
		}
		s.logger.Error().Err(err).Int64("studentID", student.ID).Int64("courseID", course.ID).Msg("Failed to enroll")
		return nil, fmt.Errorf("failed to enroll: %w", err)
	}

	s.logger.Info().Int64("studentID", student.ID).Str("course", course.Code).Msg("Student enrolled")
	return &dto.EnrollmentResponse{
		Enrollment: *enrollment,
		CourseCode: course.Code,
		CourseName: course.Name,
	}, nil
}
