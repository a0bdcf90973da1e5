// Package seed populates an empty database with demo data.
package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/repositories"
	"github.com/yigit/schooladmin/internal/pkg/auth"
	"github.com/yigit/schooladmin/internal/pkg/helpers"
)

// DemoPassword is shared by every seeded account
const DemoPassword = "password123"

type department struct {
	code, name, description string
}

type account struct {
	id, first, last string
	role            models.RoleType
	department      string
}

type course struct {
	code, name, department, faculty string
	credits, semester               int
}

var (
	departments = []department{
		{"CSE", "Computer Science and Engineering", "Programming, systems and theory"},
		{"ECE", "Electronics and Communication Engineering", "Circuits, signals and communication"},
		{"ME", "Mechanical Engineering", "Design, thermodynamics and manufacturing"},
		{"CE", "Civil Engineering", "Structures, surveying and construction"},
		{"MATH", "Mathematics", "Pure and applied mathematics"},
	}

	staff = []account{
		{"PRIN001", "Margaret", "Hale", models.RolePrincipal, ""},
		{"HOD001", "Rajesh", "Kumar", models.RoleHOD, "CSE"},
		{"HOD002", "Anita", "Sharma", models.RoleHOD, "ECE"},
		{"FAC001", "David", "Chen", models.RoleFaculty, "CSE"},
		{"FAC002", "Sarah", "Wilson", models.RoleFaculty, "CSE"},
		{"FAC003", "Michael", "Brown", models.RoleFaculty, "ECE"},
		{"FAC004", "Priya", "Nair", models.RoleFaculty, "MATH"},
	}

	students = []account{
		{"STU001", "Alice", "Johnson", models.RoleStudent, "CSE"},
		{"STU002", "Bob", "Smith", models.RoleStudent, "CSE"},
		{"STU003", "Carol", "Davis", models.RoleStudent, "ECE"},
		{"STU004", "Daniel", "Lee", models.RoleStudent, "MATH"},
	}

	courses = []course{
		{"CS101", "Introduction to Programming", "CSE", "FAC001", 4, 1},
		{"CS201", "Data Structures", "CSE", "FAC002", 4, 3},
		{"CS301", "Database Systems", "CSE", "FAC001", 3, 5},
		{"EC101", "Basic Electronics", "ECE", "FAC003", 4, 1},
		{"MA101", "Calculus I", "MATH", "FAC004", 4, 1},
	}

	enrollments = map[string][]string{
		"STU001": {"CS101", "CS201", "MA101"},
		"STU002": {"CS101", "CS301"},
		"STU003": {"EC101", "MA101"},
		"STU004": {"MA101", "CS101"},
	}
)

// ids collects what the seed created, keyed by code or identifier
type ids struct {
	departments map[string]int64
	users       map[string]int64
	students    map[string]int64
	faculty     map[string]int64
	courses     map[string]int64
}

// CreateDefaultData fills an empty store. It is a no-op when departments exist.
func CreateDefaultData(ctx context.Context, store repositories.Store, institution string, lgr zerolog.Logger) error {
	existing, err := store.Repos().Departments.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to check existing departments: %w", err)
	}
	if len(existing) > 0 {
		lgr.Info().Int("departments", len(existing)).Msg("Database already seeded, skipping")
		return nil
	}

	hash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}

	lgr.Info().Msg("Seeding demo data...")
	err = store.WithTx(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
		created := &ids{
			departments: map[string]int64{},
			users:       map[string]int64{},
			students:    map[string]int64{},
			faculty:     map[string]int64{},
			courses:     map[string]int64{},
		}
		steps := []func(context.Context, *repositories.Repositories, *ids) error{
			seedDepartments,
			func(ctx context.Context, r *repositories.Repositories, c *ids) error {
				return seedAccounts(ctx, r, c, hash, institution)
			},
			seedCourses,
			seedCoursework,
			seedCommunication,
		}
		for _, step := range steps {
			if err := step(ctx, repos, created); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to seed demo data: %w", err)
	}

	logCredentials(lgr)
	return nil
}

func seedDepartments(ctx context.Context, repos *repositories.Repositories, created *ids) error {
	for _, d := range departments {
		dep := &models.Department{Name: d.name, Code: d.code, Description: d.description, IsActive: true}
		if err := repos.Departments.Create(ctx, dep); err != nil {
			return fmt.Errorf("department %s: %w", d.code, err)
		}
		created.departments[d.code] = dep.ID
	}
	return nil
}

func seedAccounts(ctx context.Context, repos *repositories.Repositories, created *ids, hash, institution string) error {
	for i, a := range append(append([]account{}, staff...), students...) {
		identifier := a.id
		user := &models.User{
			FirstName: a.first,
			LastName:  a.last,
			Email:     fmt.Sprintf("%s.%s@school.edu", strings.ToLower(a.first), strings.ToLower(a.last)),
			Phone:     fmt.Sprintf("55500%05d", i+1),
			Password:  hash,
			Role:      a.role,
			Status:    models.StatusApproved,
			IsActive:  true,
		}
		if a.role == models.RoleStudent {
			user.StudentID = &identifier
		} else {
			user.EmployeeID = &identifier
		}
		if err := repos.Users.Create(ctx, user); err != nil {
			return fmt.Errorf("user %s: %w", a.id, err)
		}
		created.users[a.id] = user.ID

		var deptID *int64
		if id, ok := created.departments[a.department]; ok {
			deptID = &id
		}

		var err error
		switch a.role {
		case models.RoleStudent:
			s := &models.Student{UserID: user.ID, RollNumber: a.id, Semester: 1, DepartmentID: deptID}
			err = repos.Profiles.CreateStudent(ctx, s)
			created.students[a.id] = s.ID
		case models.RoleFaculty:
			f := &models.Faculty{UserID: user.ID, DepartmentID: deptID, Designation: "Assistant Professor", Qualification: "PhD"}
			err = repos.Profiles.CreateFaculty(ctx, f)
			created.faculty[a.id] = f.ID
		case models.RoleHOD:
			err = repos.Profiles.CreateHOD(ctx, &models.HOD{UserID: user.ID, DepartmentID: *deptID})
		case models.RolePrincipal:
			err = repos.Profiles.CreatePrincipal(ctx, &models.Principal{UserID: user.ID, Institution: institution})
		}
		if err != nil {
			return fmt.Errorf("profile %s: %w", a.id, err)
		}
	}
	return nil
}

func seedCourses(ctx context.Context, repos *repositories.Repositories, created *ids) error {
	for _, c := range courses {
		row := &models.Course{
			Name:         c.name,
			Code:         c.code,
			Credits:      c.credits,
			Semester:     c.semester,
			DepartmentID: created.departments[c.department],
			FacultyID:    created.faculty[c.faculty],
		}
		if err := repos.Courses.Create(ctx, row); err != nil {
			return fmt.Errorf("course %s: %w", c.code, err)
		}
		created.courses[c.code] = row.ID
	}

	for student, codes := range enrollments {
		for _, code := range codes {
			e := &models.Enrollment{
				StudentID: created.students[student],
				CourseID:  created.courses[code],
				Status:    models.EnrollmentEnrolled,
			}
			if err := repos.Enrollments.Create(ctx, e); err != nil {
				return fmt.Errorf("enrollment %s/%s: %w", student, code, err)
			}
		}
	}
	return nil
}

func seedCoursework(ctx context.Context, repos *repositories.Repositories, created *ids) error {
	now := time.Now().UTC().Truncate(time.Hour)
	work := []struct {
		course, faculty, title string
		due                    time.Duration
	}{
		{"CS101", "FAC001", "Hello World Program", 7 * 24 * time.Hour},
		{"CS101", "FAC001", "Loops and Conditionals", 14 * 24 * time.Hour},
		{"CS201", "FAC002", "Linked List Implementation", 10 * 24 * time.Hour},
		{"MA101", "FAC004", "Limits Problem Set", -2 * 24 * time.Hour},
	}

	assignments := make(map[string]*models.Assignment, len(work))
	for _, w := range work {
		a := &models.Assignment{
			CourseID:    created.courses[w.course],
			FacultyID:   created.faculty[w.faculty],
			Title:       w.title,
			Description: w.title + " for " + w.course,
			DueDate:     now.Add(w.due),
			MaxMarks:    100,
		}
		if err := repos.Assignments.Create(ctx, a); err != nil {
			return fmt.Errorf("assignment %q: %w", w.title, err)
		}
		assignments[w.title] = a
	}

	// One graded and one pending submission so reports have data
	graded := &models.Submission{
		AssignmentID: assignments["Limits Problem Set"].ID,
		StudentID:    created.students["STU001"],
		Content:      "Solutions attached",
		Status:       models.SubmissionSubmitted,
		SubmittedAt:  now.Add(-3 * 24 * time.Hour),
	}
	if err := repos.Submissions.Upsert(ctx, graded); err != nil {
		return fmt.Errorf("submission: %w", err)
	}
	feedback := "Good work"
	if _, err := repos.Submissions.Grade(ctx, graded.ID, 85, &feedback, now); err != nil {
		return fmt.Errorf("grade: %w", err)
	}

	pending := &models.Submission{
		AssignmentID: assignments["Hello World Program"].ID,
		StudentID:    created.students["STU002"],
		Content:      "print(\"Hello, World!\")",
		Status:       models.SubmissionSubmitted,
		SubmittedAt:  now,
	}
	if err := repos.Submissions.Upsert(ctx, pending); err != nil {
		return fmt.Errorf("submission: %w", err)
	}
	return nil
}

func seedCommunication(ctx context.Context, repos *repositories.Repositories, created *ids) error {
	monday := nextWeekday(time.Now().UTC(), time.Monday).Add(9 * time.Hour)
	room := func(s string) *string { return &s }
	entries := []struct {
		title    string
		kind     models.ScheduleType
		course   string
		faculty  string
		start    time.Time
		length   time.Duration
		location *string
	}{
		{"CS101 Lecture", models.ScheduleClass, "CS101", "FAC001", monday, time.Hour, room("Room 101")},
		{"CS201 Lab", models.ScheduleLab, "CS201", "FAC002", monday.Add(26 * time.Hour), 2 * time.Hour, room("Lab 2")},
		{"MA101 Midterm", models.ScheduleExam, "MA101", "FAC004", monday.Add(3*24*time.Hour + time.Hour), 2 * time.Hour, room("Hall A")},
		{"Department Meeting", models.ScheduleMeeting, "", "FAC001", monday.Add(4*24*time.Hour + 5*time.Hour), time.Hour, room("Conference Room")},
		{"Annual Sports Day", models.ScheduleEvent, "", "", monday.Add(5 * 24 * time.Hour), 8 * time.Hour, room("Main Ground")},
	}
	for _, e := range entries {
		s := &models.Schedule{
			Title:     e.title,
			Type:      e.kind,
			StartTime: e.start,
			EndTime:   e.start.Add(e.length),
			DayOfWeek: helpers.DayOfWeek(e.start),
			Location:  e.location,
		}
		if e.course != "" {
			id := created.courses[e.course]
			s.CourseID = &id
		}
		if e.faculty != "" {
			id := created.faculty[e.faculty]
			s.FacultyID = &id
		}
		if err := repos.Schedules.Create(ctx, s); err != nil {
			return fmt.Errorf("schedule %q: %w", e.title, err)
		}
	}

	studentRole := models.RoleStudent
	facultyRole := models.RoleFaculty
	cs101 := created.courses["CS101"]
	announcements := []*models.Announcement{
		{Title: "Welcome to the new semester", Content: "Classes begin on Monday.", AuthorID: created.users["PRIN001"]},
		{Title: "Library hours extended", Content: "The library is open until 10 PM during exams.", AuthorID: created.users["PRIN001"], TargetRole: &studentRole},
		{Title: "Grade submission deadline", Content: "Submit internal marks by Friday.", AuthorID: created.users["HOD001"], TargetRole: &facultyRole},
		{Title: "CS101 lab moved", Content: "This week's lab is in Lab 3.", AuthorID: created.users["FAC001"], TargetRole: &studentRole, CourseID: &cs101},
	}
	for _, a := range announcements {
		if err := repos.Announcements.Create(ctx, a); err != nil {
			return fmt.Errorf("announcement %q: %w", a.Title, err)
		}
	}

	notifications := []*models.Notification{
		{UserID: created.users["STU001"], Type: models.NotificationGrade, Title: "Assignment graded", Message: "Limits Problem Set: 85/100"},
		{UserID: created.users["STU001"], Type: models.NotificationAssignment, Title: "New assignment", Message: "Hello World Program is due next week"},
		{UserID: created.users["STU002"], Type: models.NotificationAssignment, Title: "New assignment", Message: "Hello World Program is due next week"},
		{UserID: created.users["FAC001"], Type: models.NotificationGeneral, Title: "Timetable published", Message: "Your teaching timetable is available"},
	}
	for _, n := range notifications {
		if err := repos.Notifications.Create(ctx, n); err != nil {
			return fmt.Errorf("notification %q: %w", n.Title, err)
		}
	}
	return nil
}

func logCredentials(lgr zerolog.Logger) {
	all := append(append([]account{}, staff...), students...)
	arr := zerolog.Arr()
	for _, a := range all {
		arr = arr.Str(string(a.role) + " " + a.id)
	}
	lgr.Info().
		Array("accounts", arr).
		Str("password", DemoPassword).
		Msg("Demo data seeded. Log in with the identifier or e-mail of any account")
}

func nextWeekday(from time.Time, day time.Weekday) time.Time {
	d := from.Truncate(24 * time.Hour)
	offset := (int(day) - int(d.Weekday()) + 7) % 7
	if offset == 0 {
		offset = 7
	}
	return d.AddDate(0, 0, offset)
}
