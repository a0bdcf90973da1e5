// Package services implements the account lifecycle and the academic
// operations on top of the repositories.
//
// Services defined in this package:
//   - AuthService: registration, approval workflow, login, token refresh, profile, request status
//   - CourseService: courses and enrollments
//   - AssignmentService: assignments, submissions, grades
//   - ReportService: role specific aggregates
//   - CommunicationService: schedules, announcements, notifications
//   - DirectoryService: departments, faculty and classmates
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yigit/schooladmin/internal/app/auth"
	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/app/repositories"
	"github.com/yigit/schooladmin/internal/pkg/apperrors"
)

// seesAll reports whether the caller reads institution-wide data
func seesAll(id auth.Identity) bool {
	return id.Role.IsAdministrative() || id.IsAdmin()
}

// studentProfile loads the caller's student profile or returns Forbidden
func studentProfile(ctx context.Context, repos *repositories.Repositories, id auth.Identity, action string) (*models.Student, error) {
	if err := auth.RequireRole(id, action, models.RoleStudent); err != nil {
		return nil, err
	}
	s, err := repos.Profiles.GetStudentByID(ctx, id.ProfileID)
	if errors.Is(err, repositories.ErrNotFound) || (err == nil && s.UserID != id.UserID) {
		return nil, apperrors.NewForbiddenError("student profile not found for the current user")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load student profile: %w", err)
	}
	return s, nil
}

// facultyProfile loads the caller's faculty profile or returns Forbidden
func facultyProfile(ctx context.Context, repos *repositories.Repositories, id auth.Identity, action string) (*models.Faculty, error) {
	if err := auth.RequireRole(id, action, models.RoleFaculty); err != nil {
		return nil, err
	}
	f, err := repos.Profiles.GetFacultyByID(ctx, id.ProfileID)
	if errors.Is(err, repositories.ErrNotFound) || (err == nil && f.UserID != id.UserID) {
		return nil, apperrors.NewForbiddenError("faculty profile not found for the current user")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load faculty profile: %w", err)
	}
	return f, nil
}

// notFound turns a repository miss into a 404 carrying cause
func notFound(err, cause error, message string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.WithCause(apperrors.ErrResourceNotFound, cause, message)
	}
	return err
}

// conflictFromDuplicate maps a unique violation on users to the matching
// conflict reason. Other errors pass through.
func conflictFromDuplicate(err error) error {
	var dup *repositories.DuplicateError
	if !errors.As(err, &dup) {
		return err
	}
	switch dup.Constraint {
	case repositories.ConstraintUserEmail:
		return apperrors.WithCause(apperrors.ErrConflict, apperrors.ErrEmailAlreadyExists, "Email already registered")
	case repositories.ConstraintUserPhone:
		return apperrors.WithCause(apperrors.ErrConflict, apperrors.ErrPhoneAlreadyExists, "Phone number already registered")
	case repositories.ConstraintUserStudentID, repositories.ConstraintUserEmployeeID:
		return apperrors.WithCause(apperrors.ErrConflict, apperrors.ErrIdentifierExists, "ID already registered")
	}
	return apperrors.NewConflictError(dup.Error())
}

// lookup caches rows read while decorating responses within one call
type lookup struct {
	repos       *repositories.Repositories
	users       map[int64]*models.User
	faculty     map[int64]*models.Faculty
	departments map[int64]*models.Department
}

func newLookup(repos *repositories.Repositories) *lookup {
	return &lookup{
		repos:       repos,
		users:       map[int64]*models.User{},
		faculty:     map[int64]*models.Faculty{},
		departments: map[int64]*models.Department{},
	}
}

func (l *lookup) user(ctx context.Context, id int64) (*models.User, error) {
	if u, ok := l.users[id]; ok {
		return u, nil
	}
	u, err := l.repos.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	l.users[id] = u
	return u, nil
}

// userName returns the full name of a user, or "" when it cannot be read
func (l *lookup) userName(ctx context.Context, id int64) string {
	u, err := l.user(ctx, id)
	if err != nil {
		return ""
	}
	return u.FullName()
}

func (l *lookup) department(ctx context.Context, id int64) (*models.Department, error) {
	if d, ok := l.departments[id]; ok {
		return d, nil
	}
	d, err := l.repos.Departments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	l.departments[id] = d
	return d, nil
}

func (l *lookup) facultyResponse(ctx context.Context, f *models.Faculty) (*dto.FacultyResponse, error) {
	u, err := l.user(ctx, f.UserID)
	if err != nil {
		return nil, err
	}
	resp := &dto.FacultyResponse{
		ID:            f.ID,
		UserID:        f.UserID,
		Name:          u.FullName(),
		Email:         u.Email,
		Designation:   f.Designation,
		Qualification: f.Qualification,
		DepartmentID:  f.DepartmentID,
	}
	if u.EmployeeID != nil {
		resp.EmployeeID = *u.EmployeeID
	}
	if f.DepartmentID != nil {
		if d, err := l.department(ctx, *f.DepartmentID); err == nil {
			resp.DepartmentName = d.Name
		}
	}
	return resp, nil
}

func (l *lookup) facultyByID(ctx context.Context, id int64) (*dto.FacultyResponse, error) {
	f, ok := l.faculty[id]
	if !ok {
		var err error
		if f, err = l.repos.Profiles.GetFacultyByID(ctx, id); err != nil {
			return nil, err
		}
		l.faculty[id] = f
	}
	return l.facultyResponse(ctx, f)
}

// enrolledCourseIDs returns the courses a student currently attends
func enrolledCourseIDs(ctx context.Context, repos *repositories.Repositories, studentID int64) ([]int64, error) {
	enrollments, err := repos.Enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	ids := make([]int64, 0, len(enrollments))
	for _, e := range enrollments {
		if e.Status.IsCurrent() {
			ids = append(ids, e.CourseID)
		}
	}
	return ids, nil
}
