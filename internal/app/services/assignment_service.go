package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/schooladmin/internal/app/auth"
	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/app/repositories"
	"github.com/yigit/schooladmin/internal/pkg/apperrors"
	"github.com/yigit/schooladmin/internal/pkg/helpers"
)

// DefaultMaxMarks is used when an assignment is created without maxMarks
const DefaultMaxMarks = 100

// AssignmentService manages assignments, submissions and grades
type AssignmentService struct {
	store  repositories.Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(store repositories.Store, logger zerolog.Logger) *AssignmentService {
	return &AssignmentService{store: store, logger: logger, now: time.Now}
}

func coursesByID(ctx context.Context, repos *repositories.Repositories, ids []int64) (map[int64]*models.Course, error) {
	courses, err := repos.Courses.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	out := make(map[int64]*models.Course, len(courses))
	for _, c := range courses {
		out[c.ID] = c
	}
	return out, nil
}

// ListAssignments returns assignments of a student's courses with the
// student's own submission, a faculty member's own assignments, or all of them.
func (s *AssignmentService) ListAssignments(ctx context.Context, id auth.Identity) (*dto.AssignmentListResponse, error) {
	repos := s.store.Repos()

	var (
		assignments []*models.Assignment
		own         map[int64]*models.Submission
		err         error
	)
	switch {
	case id.Role == models.RoleStudent:
		student, perr := studentProfile(ctx, repos, id, "list course assignments")
		if perr != nil {
			return nil, perr
		}
		courseIDs, perr := enrolledCourseIDs(ctx, repos, student.ID)
		if perr != nil {
			return nil, perr
		}
		if assignments, err = repos.Assignments.ListByCourseIDs(ctx, courseIDs); err != nil {
			break
		}
		subs, serr := repos.Submissions.ListByStudent(ctx, student.ID)
		if serr != nil {
			err = serr
			break
		}
		own = make(map[int64]*models.Submission, len(subs))
		for _, sub := range subs {
			own[sub.AssignmentID] = sub
		}
	case id.Role == models.RoleFaculty:
		faculty, perr := facultyProfile(ctx, repos, id, "list created assignments")
		if perr != nil {
			return nil, perr
		}
		assignments, err = repos.Assignments.ListByFaculty(ctx, faculty.ID)
	case seesAll(id):
		assignments, err = repos.Assignments.ListAll(ctx)
	default:
		return nil, auth.RequireRole(id, "list assignments", models.RoleStudent, models.RoleFaculty, models.RoleHOD, models.RolePrincipal)
	}
	if err != nil {
		s.logger.Error().Err(err).Str("role", string(id.Role)).Msg("Failed to list assignments")
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	courseIDs := make([]int64, len(assignments))
	assignmentIDs := make([]int64, len(assignments))
	for i, a := range assignments {
		courseIDs[i] = a.CourseID
		assignmentIDs[i] = a.ID
	}
	courses, err := coursesByID(ctx, repos, courseIDs)
	if err != nil {
		return nil, err
	}

	var counts map[int64]int
	if own == nil {
		subs, err := repos.Submissions.ListByAssignmentIDs(ctx, assignmentIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to count submissions: %w", err)
		}
		counts = make(map[int64]int, len(assignments))
		for _, sub := range subs {
			counts[sub.AssignmentID]++
		}
	}

	out := make([]dto.AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		resp := dto.AssignmentResponse{Assignment: *a}
		if c, ok := courses[a.CourseID]; ok {
			resp.CourseCode = c.Code
			resp.CourseName = c.Name
		}
		if own != nil {
			if sub, ok := own[a.ID]; ok {
				sr := dto.NewSubmissionResponse(sub, a)
				resp.Submission = &sr
			}
		} else {
			n := counts[a.ID]
			resp.SubmissionCount = &n
		}
		out = append(out, resp)
	}
	return &dto.AssignmentListResponse{Assignments: out}, nil
}

// CreateAssignment creates an assignment for a course, optionally with a
// due-date calendar entry, and notifies the enrolled students
func (s *AssignmentService) CreateAssignment(ctx context.Context, id auth.Identity, req *dto.CreateAssignmentRequest) (*dto.AssignmentResponse, error) {
	faculty, err := facultyProfile(ctx, s.store.Repos(), id, "create assignments")
	if err != nil {
		return nil, err
	}

	maxMarks := req.MaxMarks
	if maxMarks == 0 {
		maxMarks = DefaultMaxMarks
	}
	assignment := &models.Assignment{
		CourseID:    req.CourseID,
		FacultyID:   faculty.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		DueDate:     req.DueDate,
		MaxMarks:    maxMarks,
	}

	var (
		course     *models.Course
		scheduleID *int64
		notified   int
	)
	err = s.store.WithTx(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
		var err error
		if course, err = repos.Courses.GetByID(ctx, req.CourseID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return apperrors.WithCause(apperrors.ErrBadRequest, apperrors.ErrCourseNotFound,
					fmt.Sprintf("course %d not found", req.CourseID))
			}
			return fmt.Errorf("failed to get course: %w", err)
		}
		if err := repos.Assignments.Create(ctx, assignment); err != nil {
			return fmt.Errorf("failed to create assignment: %w", err)
		}

		if req.CreateSchedule {
			entry := &models.Schedule{
				Title:     "Due: " + assignment.Title,
				Type:      models.ScheduleAssignmentDue,
				CourseID:  &course.ID,
				FacultyID: &faculty.ID,
				StartTime: assignment.DueDate,
				EndTime:   assignment.DueDate.Add(time.Hour),
				DayOfWeek: helpers.DayOfWeek(assignment.DueDate),
			}
			if err := repos.Schedules.Create(ctx, entry); err != nil {
				return fmt.Errorf("failed to create due date entry: %w", err)
			}
			scheduleID = &entry.ID
		}

		notified, err = notifyEnrolled(ctx, repos, course, &models.Notification{
			Type:    models.NotificationAssignment,
			Title:   "New assignment: " + assignment.Title,
			Message: fmt.Sprintf("%s is due %s", assignment.Title, assignment.DueDate.Format(time.RFC1123)),
		})
		return err
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrBadRequest) {
			s.logger.Error().Err(err).Int64("facultyID", faculty.ID).Msg("Failed to create assignment")
		}
		return nil, err
	}

	s.logger.Info().
		Int64("assignmentID", assignment.ID).
		Int64("courseID", course.ID).
		Int("notified", notified).
		Msg("Assignment created")
	zero := 0
	return &dto.AssignmentResponse{
		Assignment:      *assignment,
		CourseCode:      course.Code,
		CourseName:      course.Name,
		SubmissionCount: &zero,
		ScheduleID:      scheduleID,
	}, nil
}

// notifyEnrolled writes a copy of n for every student currently enrolled in course
func notifyEnrolled(ctx context.Context, repos *repositories.Repositories, course *models.Course, n *models.Notification) (int, error) {
	enrollments, err := repos.Enrollments.ListByCourseIDs(ctx, []int64{course.ID})
	if err != nil {
		return 0, fmt.Errorf("failed to list enrollments: %w", err)
	}
	studentIDs := make([]int64, 0, len(enrollments))
	for _, e := range enrollments {
		if e.Status.IsCurrent() {
			studentIDs = append(studentIDs, e.StudentID)
		}
	}
	students, err := repos.Profiles.ListStudentsByIDs(ctx, studentIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to list students: %w", err)
	}
	for _, st := range students {
		copied := *n
		copied.UserID = st.UserID
		if err := repos.Notifications.Create(ctx, &copied); err != nil {
			return 0, fmt.Errorf("failed to notify student %d: %w", st.ID, err)
		}
	}
	return len(students), nil
}

// SubmitAssignment stores the caller's answer, replacing an earlier one.
// Late submissions are accepted and flagged.
func (s *AssignmentService) SubmitAssignment(ctx context.Context, id auth.Identity, assignmentID int64, req *dto.SubmitAssignmentRequest) (*dto.SubmissionResponse, error) {
	repos := s.store.Repos()
	student, err := studentProfile(ctx, repos, id, "submit assignments")
	if err != nil {
		return nil, err
	}

	assignment, err := repos.Assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrAssignmentNotFound, "Assignment not found")
	}
	enrolled, err := repos.Enrollments.Exists(ctx, student.ID, assignment.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if !enrolled {
		return nil, apperrors.NewForbiddenError("you are not enrolled in this assignment's course")
	}

	sub := &models.Submission{
		AssignmentID: assignment.ID,
		StudentID:    student.ID,
		Content:      req.Content,
		SubmittedAt:  s.now(),
	}
	if err := repos.Submissions.Upsert(ctx, sub); err != nil {
		s.logger.Error().Err(err).Int64("assignmentID", assignment.ID).Int64("studentID", student.ID).Msg("Failed to store submission")
		return nil, fmt.Errorf("failed to store submission: %w", err)
	}

	resp := dto.NewSubmissionResponse(sub, assignment)
	s.logger.Info().Int64("submissionID", sub.ID).Bool("late", resp.IsLate).Msg("Assignment submitted")
	return &resp, nil
}

// ownsAssignment reports whether faculty created the assignment or teaches its course
func ownsAssignment(ctx context.Context, repos *repositories.Repositories, faculty *models.Faculty, a *models.Assignment) (bool, error) {
	if a.FacultyID == faculty.ID {
		return true, nil
	}
	course, err := repos.Courses.GetByID(ctx, a.CourseID)
	if errors.Is(err, repositories.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get course: %w", err)
	}
	return course.FacultyID == faculty.ID, nil
}

// GradeSubmission records marks and feedback and notifies the student
func (s *AssignmentService) GradeSubmission(ctx context.Context, id auth.Identity, submissionID int64, req *dto.GradeSubmissionRequest) (*dto.SubmissionResponse, error) {
	faculty, err := facultyProfile(ctx, s.store.Repos(), id, "grade submissions")
	if err != nil {
		return nil, err
	}
	if req.Marks == nil {
		return nil, apperrors.NewValidationError("marks", "marks is required")
	}

	var (
		graded     *models.Submission
		assignment *models.Assignment
	)
	err = s.store.WithTx(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
		sub, err := repos.Submissions.GetByID(ctx, submissionID)
		if err != nil {
			return notFound(err, apperrors.ErrSubmissionNotFound, "Submission not found")
		}
		if assignment, err = repos.Assignments.GetByID(ctx, sub.AssignmentID); err != nil {
			return notFound(err, apperrors.ErrAssignmentNotFound, "Assignment not found")
		}
		owns, err := ownsAssignment(ctx, repos, faculty, assignment)
		if err != nil {
			return err
		}
		if !owns {
			return apperrors.NewForbiddenError("you can only grade submissions for your own assignments")
		}
		if *req.Marks < 0 || *req.Marks > assignment.MaxMarks {
			return apperrors.NewValidationError("marks", fmt.Sprintf("marks must be between 0 and %d", assignment.MaxMarks))
		}

		if graded, err = repos.Submissions.Grade(ctx, sub.ID, *req.Marks, req.Feedback, s.now()); err != nil {
			return fmt.Errorf("failed to grade submission: %w", err)
		}

		student, err := repos.Profiles.GetStudentByID(ctx, sub.StudentID)
		if err != nil {
			return fmt.Errorf("failed to get student: %w", err)
		}
		return repos.Notifications.Create(ctx, &models.Notification{
			UserID:  student.UserID,
			Type:    models.NotificationGrade,
			Title:   "Graded: " + assignment.Title,
			Message: fmt.Sprintf("You scored %d/%d on %s", *req.Marks, assignment.MaxMarks, assignment.Title),
		})
	})
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrResourceNotFound, apperrors.ErrPermissionDenied, apperrors.ErrValidationFailed) {
			s.logger.Error().Err(err).Int64("submissionID", submissionID).Msg("Failed to grade submission")
		}
		return nil, err
	}

	s.logger.Info().Int64("submissionID", graded.ID).Int("marks", *req.Marks).Msg("Submission graded")
	resp := dto.NewSubmissionResponse(graded, assignment)
	return &resp, nil
}

// ListSubmissions returns every submission of an assignment to its owner
// or to administrative roles
func (s *AssignmentService) ListSubmissions(ctx context.Context, id auth.Identity, assignmentID int64) (*dto.SubmissionListResponse, error) {
	repos := s.store.Repos()
	assignment, err := repos.Assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrAssignmentNotFound, "Assignment not found")
	}

	if !seesAll(id) {
		faculty, err := facultyProfile(ctx, repos, id, "view submissions")
		if err != nil {
			return nil, err
		}
		owns, err := ownsAssignment(ctx, repos, faculty, assignment)
		if err != nil {
			return nil, err
		}
		if !owns {
			return nil, apperrors.NewForbiddenError("you can only view submissions for your own assignments")
		}
	}

	subs, err := repos.Submissions.ListByAssignment(ctx, assignment.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	studentIDs := make([]int64, len(subs))
	for i, sub := range subs {
		studentIDs[i] = sub.StudentID
	}
	students, err := repos.Profiles.ListStudentsByIDs(ctx, studentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	studentByID := make(map[int64]*models.Student, len(students))
	for _, st := range students {
		studentByID[st.ID] = st
	}

	l := newLookup(repos)
	out := make([]dto.SubmissionResponse, 0, len(subs))
	for _, sub := range subs {
		resp := dto.NewSubmissionResponse(sub, assignment)
		if st, ok := studentByID[sub.StudentID]; ok {
			resp.RollNumber = st.RollNumber
			resp.StudentName = l.userName(ctx, st.UserID)
		}
		out = append(out, resp)
	}
	return &dto.SubmissionListResponse{Assignment: *assignment, Submissions: out}, nil
}

func percentage(marks, maxMarks int) float64 {
	if maxMarks <= 0 {
		return 0
	}
	return math.Round(float64(marks)/float64(maxMarks)*10000) / 100
}

// FetchGrades returns the caller's graded submissions, optionally for one course
func (s *AssignmentService) FetchGrades(ctx context.Context, id auth.Identity, courseID *int64) (*dto.GradeListResponse, error) {
	repos := s.store.Repos()
	student, err := studentProfile(ctx, repos, id, "view grades")
	if err != nil {
		return nil, err
	}
	grades, err := gradedWork(ctx, repos, student.ID)
	if err != nil {
		s.logger.Error().Err(err).Int64("studentID", student.ID).Msg("Failed to fetch grades")
		return nil, err
	}

	out := make([]dto.GradeResponse, 0, len(grades))
	for _, g := range grades {
		if courseID != nil && g.CourseID != *courseID {
			continue
		}
		out = append(out, g)
	}
	return &dto.GradeListResponse{Grades: out}, nil
}

// gradedWork joins a student's graded submissions with their assignments and courses
func gradedWork(ctx context.Context, repos *repositories.Repositories, studentID int64) ([]dto.GradeResponse, error) {
	subs, err := repos.Submissions.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	graded := make([]*models.Submission, 0, len(subs))
	assignmentIDs := make([]int64, 0, len(subs))
	for _, sub := range subs {
		if sub.Status == models.SubmissionGraded && sub.Marks != nil {
			graded = append(graded, sub)
			assignmentIDs = append(assignmentIDs, sub.AssignmentID)
		}
	}

	assignments, err := repos.Assignments.ListByIDs(ctx, assignmentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	byID := make(map[int64]*models.Assignment, len(assignments))
	courseIDs := make([]int64, 0, len(assignments))
	for _, a := range assignments {
		byID[a.ID] = a
		courseIDs = append(courseIDs, a.CourseID)
	}
	courses, err := coursesByID(ctx, repos, courseIDs)
	if err != nil {
		return nil, err
	}

	out := make([]dto.GradeResponse, 0, len(graded))
	for _, sub := range graded {
		a, ok := byID[sub.AssignmentID]
		if !ok {
			continue
		}
		g := dto.GradeResponse{
			SubmissionID:    sub.ID,
			AssignmentID:    a.ID,
			AssignmentTitle: a.Title,
			CourseID:        a.CourseID,
			Marks:           *sub.Marks,
			MaxMarks:        a.MaxMarks,
			Percentage:      percentage(*sub.Marks, a.MaxMarks),
			Feedback:        sub.Feedback,
			Status:          sub.Status,
			GradedAt:        sub.GradedAt,
		}
		if c, ok := courses[a.CourseID]; ok {
			g.CourseCode = c.Code
			g.CourseName = c.Name
		}
		out = append(out, g)
	}
	return out, nil
}
