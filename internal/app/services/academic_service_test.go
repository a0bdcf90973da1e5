package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/schooladmin/internal/app/auth"
	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/pkg/apperrors"
)

func TestCreateCourse(t *testing.T) {
	f := newFixture(t)
	a := f.academy(t)
	assert.Equal(t, "CS101", a.course.Code)
	require.NotNil(t, a.course.Faculty)
	assert.Equal(t, "EmpFAC001 Test", a.course.Faculty.Name)
	require.NotNil(t, a.course.Department)
	assert.Equal(t, "CSE", a.course.Department.Code)

	req := dto.CreateCourseRequest{Name: "Algorithms", Code: "cs201", Credits: 4, Semester: 3, DepartmentID: a.dep.ID, FacultyID: a.faculty.UserID}

	_, err := f.courses.CreateCourse(f.ctx, a.faculty, &req)
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.Equal(t, "only HOD or PRINCIPAL can create courses", err.Error())

	created, err := f.courses.CreateCourse(f.ctx, a.hod, &req)
	require.NoError(t, err)
	assert.Equal(t, "CS201", created.Code)
	assert.Equal(t, a.faculty.ProfileID, created.FacultyID)

	_, err = f.courses.CreateCourse(f.ctx, a.hod, &req)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	bad := req
	bad.Code = "CS301"
	bad.DepartmentID = 999
	_, err = f.courses.CreateCourse(f.ctx, a.hod, &bad)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	bad.DepartmentID = a.dep.ID
	bad.FacultyID = 999
	_, err = f.courses.CreateCourse(f.ctx, a.hod, &bad)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.ErrorIs(t, err, apperrors.ErrFacultyNotFound)
}

func TestListCourses(t *testing.T) {
	f := newFixture(t)
	a := f.academy(t)
	other := f.staff(t, models.RoleFaculty, "FAC002", "5550000003")
	second := f.course(t, a.hod, other, a.dep, "CS102")
	stu := f.student(t, "STU001", "5551000001")
	f.enroll(t, stu, a.course.ID)

	list, err := f.courses.ListCourses(f.ctx, stu)
	require.NoError(t, err)
	require.Len(t, list.Courses, 1)
	assert.Equal(t, a.course.ID, list.Courses[0].ID)
	require.Len(t, list.Courses[0].Enrollments, 1)
	assert.Equal(t, "STU001", list.Courses[0].Enrollments[0].RollNumber)
	assert.Equal(t, "StuSTU001 Test", list.Courses[0].Enrollments[0].StudentName)

	list, err = f.courses.ListCourses(f.ctx, other)
	require.NoError(t, err)
	require.Len(t, list.Courses, 1)
	assert.Equal(t, second.ID, list.Courses[0].ID)

	list, err = f.courses.ListCourses(f.ctx, a.hod)
	require.NoError(t, err)
	assert.Len(t, list.Courses, 2)
}

func TestEnroll_DuplicateKeepsCount(t *testing.T) {
	f := newFixture(t)
	a := f.academy(t)
	stu := f.student(t, "STU001", "5551000001")

	resp, err := f.courses.Enroll(f.ctx, stu, &dto.EnrollRequest{CourseID: a.course.ID})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentEnrolled, resp.Status)
	assert.Equal(t, "CS101", resp.CourseCode)

	_, err = f.courses.Enroll(f.ctx, stu, &dto.EnrollRequest{CourseID: a.course.ID})
	require.ErrorIs(t, err, apperrors.ErrConflict)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyEnrolled)

	n, err := f.repos.Enrollments.Count(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = f.courses.Enroll(f.ctx, stu, &dto.EnrollRequest{CourseID: 999})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	_, err = f.courses.Enroll(f.ctx, a.faculty, &dto.EnrollRequest{CourseID: a.course.ID})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestCreateAssignment(t *testing.T) {
	f := newFixture(t)
	a := f.academy(t)
	stu := f.student(t, "STU001", "5551000001")
	f.enroll(t, stu, a.course.ID)

	due := time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC)
	created, err := f.assignments.CreateAssignment(f.ctx, a.faculty, &dto.CreateAssignmentRequest{
		CourseID:       a.course.ID,
		Title:          "Homework 1",
		DueDate:        due,
		CreateSchedule: true,
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxMarks, created.MaxMarks)
	require.NotNil(t, created.ScheduleID)

	entries, err := f.repos.Schedules.List(f.ctx, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Due: Homework 1", entries[0].Title)
	assert.Equal(t, models.ScheduleAssignmentDue, entries[0].Type)
	assert.Equal(t, due.Add(time.Hour), entries[0].EndTime)
	assert.Equal(t, "MONDAY", entries[0].DayOfWeek)

	notes, err := f.comms.ListNotifications(f.ctx, stu)
	require.NoError(t, err)
	require.Len(t, notes.Notifications, 1)
	assert.Equal(t, models.NotificationAssignment, notes.Notifications[0].Type)
	assert.Equal(t, 1, notes.Unread)

	_, err = f.assignments.CreateAssignment(f.ctx, a.faculty, &dto.CreateAssignmentRequest{
		CourseID: 999, Title: "Lost", DueDate: due, CreateSchedule: true,
	})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	all, err := f.repos.Assignments.ListAll(f.ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = f.assignments.CreateAssignment(f.ctx, stu, &dto.CreateAssignmentRequest{CourseID: a.course.ID, Title: "x", DueDate: due})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestSubmitAndGrade(t *testing.T) {
	f := newFixture(t)
	a := f.academy(t)
	stu := f.student(t, "STU001", "5551000001")
	outsider := f.student(t, "STU002", "5551000002")
	f.enroll(t, stu, a.course.ID)
	hw := f.assignment(t, a.faculty, a.course.ID, "Homework 1", 50)

	first, err := f.assignments.SubmitAssignment(f.ctx, stu, hw.ID, &dto.SubmitAssignmentRequest{Content: "draft"})
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionSubmitted, first.Status)
	assert.False(t, first.IsLate)

	_, err = f.assignments.SubmitAssignment(f.ctx, outsider, hw.ID, &dto.SubmitAssignmentRequest{Content: "x"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	_, err = f.assignments.SubmitAssignment(f.ctx, stu, 999, &dto.SubmitAssignmentRequest{Content: "x"})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	marks := 51
	_, err = f.assignments.GradeSubmission(f.ctx, a.faculty, first.ID, &dto.GradeSubmissionRequest{Marks: &marks})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	other := f.staff(t, models.RoleFaculty, "FAC002", "5550000003")
	marks = 40
	_, err = f.assignments.GradeSubmission(f.ctx, other, first.ID, &dto.GradeSubmissionRequest{Marks: &marks})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	feedback := "good"
	graded, err := f.assignments.GradeSubmission(f.ctx, a.faculty, first.ID, &dto.GradeSubmissionRequest{Marks: &marks, Feedback: &feedback})
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionGraded, graded.Status)
	assert.Equal(t, 40, *graded.Marks)
	assert.NotNil(t, graded.GradedAt)

	grades, err := f.assignments.FetchGrades(f.ctx, stu, nil)
	require.NoError(t, err)
	require.Len(t, grades.Grades, 1)
	assert.Equal(t, 80.0, grades.Grades[0].Percentage)
	assert.Equal(t, "CS101", grades.Grades[0].CourseCode)

	otherCourse := int64(999)
	grades, err = f.assignments.FetchGrades(f.ctx, stu, &otherCourse)
	require.NoError(t, err)
	assert.Empty(t, grades.Grades)

	second, err := f.assignments.SubmitAssignment(f.ctx, stu, hw.ID, &dto.SubmitAssignmentRequest{Content: "final"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.SubmissionSubmitted, second.Status)
	assert.Nil(t, second.Marks)

	subs, err := f.assignments.ListSubmissions(f.ctx, a.faculty, hw.ID)
	require.NoError(t, err)
	require.Len(t, subs.Submissions, 1)
	assert.Equal(t, "final", subs.Submissions[0].Content)
	assert.Equal(t, "STU001", subs.Submissions[0].RollNumber)

	_, err = f.assignments.ListSubmissions(f.ctx, stu, hw.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	_, err = f.assignments.ListSubmissions(f.ctx, other, hw.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	_, err = f.assignments.ListSubmissions(f.ctx, a.hod, hw.ID)
	assert.NoError(t, err)
}

func TestSubmitLate(t *testing.T) {
	f := newFixture(t)
	a := f.academy(t)
	stu := f.student(t, "STU001", "5551000001")
	f.enroll(t, stu, a.course.ID)

	hw, err := f.assignments.CreateAssignment(f.ctx, a.faculty, &dto.CreateAssignmentRequest{
		CourseID: a.course.ID, Title: "Past", DueDate: time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)

	sub, err := f.assignments.SubmitAssignment(f.ctx, stu, hw.ID, &dto.SubmitAssignmentRequest{Content: "late"})
	require.NoError(t, err)
	assert.True(t, sub.IsLate)
}

func TestListAssignments(t *testing.T) {
	f := newFixture(t)
	a := f.academy(t)
	stu := f.student(t, "STU001", "5551000001")
	f.enroll(t, stu, a.course.ID)
	hw := f.assignment(t, a.faculty, a.course.ID, "Homework 1", 0)
	_, err := f.assignments.SubmitAssignment(f.ctx, stu, hw.ID, &dto.SubmitAssignmentRequest{Content: "done"})
	require.NoError(t, err)

	list, err := f.assignments.ListAssignments(f.ctx, stu)
	require.NoError(t, err)
	require.Len(t, list.Assignments, 1)
	require.NotNil(t, list.Assignments[0].Submission)
	assert.Nil(t, list.Assignments[0].SubmissionCount)
	assert.Equal(t, "CS101", list.Assignments[0].CourseCode)

	list, err = f.assignments.ListAssignments(f.ctx, a.faculty)
	require.NoError(t, err)
	require.Len(t, list.Assignments, 1)
	require.NotNil(t, list.Assignments[0].SubmissionCount)
	assert.Equal(t, 1, *list.Assignments[0].SubmissionCount)

	list, err = f.assignments.ListAssignments(f.ctx, a.hod)
	require.NoError(t, err)
	assert.Len(t, list.Assignments, 1)
}

func TestReports(t *testing.T) {
	f := newFixture(t)
	a := f.academy(t)
	stu := f.student(t, "STU001", "5551000001")
	f.enroll(t, stu, a.course.ID)

	for i, marks := range []int{95, 85, 75, 40} {
		hw := f.assignment(t, a.faculty, a.course.ID, "HW"+string(rune('1'+i)), 100)
		sub, err := f.assignments.SubmitAssignment(f.ctx, stu, hw.ID, &dto.SubmitAssignmentRequest{Content: "x"})
		require.NoError(t, err)
		m := marks
		_, err = f.assignments.GradeSubmission(f.ctx, a.faculty, sub.ID, &dto.GradeSubmissionRequest{Marks: &m})
		require.NoError(t, err)
	}
	pending := f.assignment(t, a.faculty, a.course.ID, "HW5", 100)
	_, err := f.assignments.SubmitAssignment(f.ctx, stu, pending.ID, &dto.SubmitAssignmentRequest{Content: "x"})
	require.NoError(t, err)

	report, err := f.reports.GenerateReport(f.ctx, stu, "")
	require.NoError(t, err)
	require.NotNil(t, report.Student)
	assert.Equal(t, ReportStudent, report.Type)
	assert.Equal(t, 4, report.Student.TotalGraded)
	assert.Equal(t, 73.75, report.Student.AverageGrade)
	assert.Equal(t, dto.GradeDistribution{A: 1, B: 1, C: 1, D: 1}, report.Student.Distribution)

	report, err = f.reports.GenerateReport(f.ctx, a.faculty, "faculty")
	require.NoError(t, err)
	require.NotNil(t, report.Faculty)
	assert.Equal(t, dto.FacultyReport{TotalStudents: 1, TotalAssignments: 5, TotalSubmissions: 5, PendingGrading: 1}, *report.Faculty)

	report, err = f.reports.GenerateReport(f.ctx, a.hod, "")
	require.NoError(t, err)
	require.NotNil(t, report.Overview)
	assert.Equal(t, 1, report.Overview.UsersByRole[models.RoleStudent])
	assert.Equal(t, 1, report.Overview.Courses)
	assert.Equal(t, 4, report.Overview.SubmissionsByStatus[models.SubmissionGraded])

	report, err = f.reports.GenerateReport(f.ctx, auth.Admin(), "")
	require.NoError(t, err)
	assert.NotNil(t, report.Overview)

	_, err = f.reports.GenerateReport(f.ctx, stu, "overview")
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	_, err = f.reports.GenerateReport(f.ctx, stu, "faculty")
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	_, err = f.reports.GenerateReport(f.ctx, stu, "weekly")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestGradeBuckets(t *testing.T) {
	tests := map[float64]string{100: "A", 90: "A", 89.99: "B", 80: "B", 79.5: "C", 70: "C", 69.99: "D", 0: "D"}
	for pct, want := range tests {
		assert.Equal(t, want, bucket(pct), "%v", pct)
	}
}
