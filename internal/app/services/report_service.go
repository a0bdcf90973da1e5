package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/schooladmin/internal/app/auth"
	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/app/repositories"
	"github.com/yigit/schooladmin/internal/pkg/apperrors"
)

// Report types accepted by GenerateReport
const (
	ReportStudent  = "student"
	ReportFaculty  = "faculty"
	ReportOverview = "overview"
)

// ReportService computes role specific aggregates
type ReportService struct {
	store  repositories.Store
	logger zerolog.Logger
}

// NewReportService creates a new ReportService
func NewReportService(store repositories.Store, logger zerolog.Logger) *ReportService {
	return &ReportService{store: store, logger: logger}
}

func defaultReportType(role models.RoleType) string {
	switch role {
	case models.RoleStudent:
		return ReportStudent
	case models.RoleFaculty:
		return ReportFaculty
	}
	return ReportOverview
}

// GenerateReport builds the report of the given type. An empty type selects
// the report matching the caller's role.
func (s *ReportService) GenerateReport(ctx context.Context, id auth.Identity, reportType string) (*dto.ReportResponse, error) {
	reportType = strings.ToLower(strings.TrimSpace(reportType))
	if reportType == "" {
		reportType = defaultReportType(id.Role)
	}

	repos := s.store.Repos()
	resp := &dto.ReportResponse{Type: reportType}
	var err error
	switch reportType {
	case ReportStudent:
		resp.Student, err = s.studentReport(ctx, repos, id)
	case ReportFaculty:
		resp.Faculty, err = s.facultyReport(ctx, repos, id)
	case ReportOverview:
		if !seesAll(id) {
			return nil, auth.RequireRole(id, "view the overview report", models.RoleHOD, models.RolePrincipal)
		}
		resp.Overview, err = s.overviewReport(ctx, repos)
	default:
		return nil, apperrors.NewValidationError("type", "type must be one of student, faculty, overview")
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// bucket returns the letter for a percentage at 90/80/70 cutoffs
func bucket(pct float64) string {
	switch {
	case pct >= 90:
		return "A"
	case pct >= 80:
		return "B"
	case pct >= 70:
		return "C"
	}
	return "D"
}

func (s *ReportService) studentReport(ctx context.Context, repos *repositories.Repositories, id auth.Identity) (*dto.StudentReport, error) {
	student, err := studentProfile(ctx, repos, id, "view the student report")
	if err != nil {
		return nil, err
	}
	grades, err := gradedWork(ctx, repos, student.ID)
	if err != nil {
		s.logger.Error().Err(err).Int64("studentID", student.ID).Msg("Failed to build student report")
		return nil, err
	}

	report := &dto.StudentReport{TotalGraded: len(grades)}
	var sum float64
	for _, g := range grades {
		sum += g.Percentage
		switch bucket(g.Percentage) {
		case "A":
			report.Distribution.A++
		case "B":
			report.Distribution.B++
		case "C":
			report.Distribution.C++
		default:
			report.Distribution.D++
		}
	}
	if len(grades) > 0 {
		report.AverageGrade = math.Round(sum/float64(len(grades))*100) / 100
	}
	return report, nil
}

func (s *ReportService) facultyReport(ctx context.Context, repos *repositories.Repositories, id auth.Identity) (*dto.FacultyReport, error) {
	faculty, err := facultyProfile(ctx, repos, id, "view the faculty report")
	if err != nil {
		return nil, err
	}

	courses, err := repos.Courses.ListByFaculty(ctx, faculty.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	courseIDs := make([]int64, len(courses))
	for i, c := range courses {
		courseIDs[i] = c.ID
	}
	enrollments, err := repos.Enrollments.ListByCourseIDs(ctx, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	students := make(map[int64]bool)
	for _, e := range enrollments {
		students[e.StudentID] = true
	}

	assignments, err := repos.Assignments.ListByFaculty(ctx, faculty.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	assignmentIDs := make([]int64, len(assignments))
	for i, a := range assignments {
		assignmentIDs[i] = a.ID
	}
	subs, err := repos.Submissions.ListByAssignmentIDs(ctx, assignmentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	report := &dto.FacultyReport{
		TotalStudents:    len(students),
		TotalAssignments: len(assignments),
		TotalSubmissions: len(subs),
	}
	for _, sub := range subs {
		if sub.Status == models.SubmissionSubmitted {
			report.PendingGrading++
		}
	}
	return report, nil
}

func (s *ReportService) overviewReport(ctx context.Context, repos *repositories.Repositories) (*dto.OverviewReport, error) {
	byRole, err := repos.Users.CountApprovedByRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	pending, err := repos.Users.ListByStatus(ctx, models.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending requests: %w", err)
	}
	departments, err := repos.Departments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count departments: %w", err)
	}
	courses, err := repos.Courses.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count courses: %w", err)
	}
	enrollments, err := repos.Enrollments.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count enrollments: %w", err)
	}
	assignments, err := repos.Assignments.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count assignments: %w", err)
	}
	subs, err := repos.Submissions.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}

	return &dto.OverviewReport{
		UsersByRole:         byRole,
		PendingRequests:     len(pending),
		Departments:         len(departments),
		Courses:             len(courses),
		Enrollments:         enrollments,
		Assignments:         len(assignments),
		SubmissionsByStatus: subs,
	}, nil
}
