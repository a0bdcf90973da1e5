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

func TestSchedule(t *testing.T) {
	f := newFixture(t)
	a := f.academy(t)
	other := f.staff(t, models.RoleFaculty, "FAC002", "5550000003")
	second := f.course(t, a.hod, other, a.dep, "CS102")
	stu := f.student(t, "STU001", "5551000001")
	f.enroll(t, stu, a.course.ID)

	start := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	create := func(id auth.Identity, title string, courseID *int64) *models.Schedule {
		t.Helper()
		s, err := f.comms.CreateSchedule(f.ctx, id, &dto.CreateScheduleRequest{
			Title: title, Type: models.ScheduleClass, CourseID: courseID,
			StartTime: start, EndTime: start.Add(time.Hour),
		})
		require.NoError(t, err)
		return s
	}
	lecture := create(a.faculty, "Lecture", &a.course.ID)
	assert.Equal(t, "TUESDAY", lecture.DayOfWeek)
	require.NotNil(t, lecture.FacultyID)
	create(other, "Other lecture", &second.ID)
	create(a.hod, "Open day", nil)

	titles := func(id auth.Identity) []string {
		t.Helper()
		list, err := f.comms.ListSchedule(f.ctx, id)
		require.NoError(t, err)
		out := make([]string, len(list.Schedules))
		for i, s := range list.Schedules {
			out[i] = s.Title
		}
		return out
	}
	assert.ElementsMatch(t, []string{"Lecture", "Open day"}, titles(stu))
	assert.ElementsMatch(t, []string{"Other lecture", "Open day"}, titles(other))
	assert.Len(t, titles(a.hod), 3)

	_, err := f.comms.CreateSchedule(f.ctx, stu, &dto.CreateScheduleRequest{
		Title: "x", Type: models.ScheduleEvent, StartTime: start, EndTime: start.Add(time.Hour),
	})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = f.comms.CreateSchedule(f.ctx, a.hod, &dto.CreateScheduleRequest{
		Title: "x", Type: models.ScheduleEvent, StartTime: start, EndTime: start,
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	missing := int64(999)
	_, err = f.comms.CreateSchedule(f.ctx, a.hod, &dto.CreateScheduleRequest{
		Title: "x", Type: models.ScheduleEvent, CourseID: &missing, StartTime: start, EndTime: start.Add(time.Hour),
	})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestAnnouncements(t *testing.T) {
	f := newFixture(t)
	a := f.academy(t)
	stu := f.student(t, "STU001", "5551000001")

	students := models.RoleStudent
	faculty := models.RoleFaculty
	for _, req := range []dto.CreateAnnouncementRequest{
		{Title: "Welcome", Content: "Hello everyone"},
		{Title: "Exams", Content: "Next week", TargetRole: &students},
		{Title: "Staff meeting", Content: "Friday", TargetRole: &faculty},
	} {
		req := req
		_, err := f.comms.CreateAnnouncement(f.ctx, a.hod, &req)
		require.NoError(t, err)
	}

	list, err := f.comms.ListAnnouncements(f.ctx, stu)
	require.NoError(t, err)
	require.Len(t, list.Announcements, 2)
	assert.Equal(t, "Exams", list.Announcements[0].Title)
	assert.Equal(t, "EmpHOD001 Test", list.Announcements[0].AuthorName)

	list, err = f.comms.ListAnnouncements(f.ctx, a.faculty)
	require.NoError(t, err)
	assert.Len(t, list.Announcements, 2)

	list, err = f.comms.ListAnnouncements(f.ctx, auth.Admin())
	require.NoError(t, err)
	assert.Len(t, list.Announcements, 3)

	_, err = f.comms.CreateAnnouncement(f.ctx, stu, &dto.CreateAnnouncementRequest{Title: "x", Content: "y"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestNotifications(t *testing.T) {
	f := newFixture(t)
	a := f.academy(t)
	stu := f.student(t, "STU001", "5551000001")
	f.enroll(t, stu, a.course.ID)
	f.assignment(t, a.faculty, a.course.ID, "Homework 1", 10)

	list, err := f.comms.ListNotifications(f.ctx, stu)
	require.NoError(t, err)
	require.Len(t, list.Notifications, 1)
	id := list.Notifications[0].ID

	err = f.comms.MarkNotificationRead(f.ctx, a.faculty, id)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	err = f.comms.MarkNotificationRead(f.ctx, stu, 999)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	require.NoError(t, f.comms.MarkNotificationRead(f.ctx, stu, id))
	list, err = f.comms.ListNotifications(f.ctx, stu)
	require.NoError(t, err)
	assert.Equal(t, 0, list.Unread)
	assert.True(t, list.Notifications[0].IsRead)
}

func TestDirectory(t *testing.T) {
	f := newFixture(t)
	a := f.academy(t)
	ece := f.department(t, "ECE")
	stu := f.student(t, "STU001", "5551000001")
	mate := f.student(t, "STU002", "5551000002")
	f.student(t, "STU003", "5551000003")
	f.enroll(t, stu, a.course.ID)
	f.enroll(t, mate, a.course.ID)

	deps, err := f.directory.ListDepartments(f.ctx)
	require.NoError(t, err)
	require.Len(t, deps.Departments, 2)
	headed := map[string]bool{}
	for _, d := range deps.Departments {
		headed[d.Code] = d.HasHOD
	}
	assert.Equal(t, map[string]bool{"CSE": true, "ECE": false}, headed)

	all, err := f.directory.ListFaculty(f.ctx, nil)
	require.NoError(t, err)
	require.Len(t, all.Faculty, 1)
	assert.Equal(t, "FAC001", all.Faculty[0].EmployeeID)
	assert.Equal(t, "Assistant Professor", all.Faculty[0].Designation)

	none, err := f.directory.ListFaculty(f.ctx, &ece.ID)
	require.NoError(t, err)
	assert.Empty(t, none.Faculty)

	mates, err := f.directory.ListClassmates(f.ctx, stu)
	require.NoError(t, err)
	require.Len(t, mates.Classmates, 1)
	assert.Equal(t, "STU002", mates.Classmates[0].RollNumber)
	assert.Equal(t, []string{"CS101"}, mates.Classmates[0].SharedCourses)

	_, err = f.directory.ListClassmates(f.ctx, a.faculty)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
