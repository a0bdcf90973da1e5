package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/schooladmin/internal/app/auth"
	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/app/repositories"
	"github.com/yigit/schooladmin/internal/app/repositories/memory"
	pkgauth "github.com/yigit/schooladmin/internal/pkg/auth"
)

type fakeMailer struct {
	mu         sync.Mutex
	approvals  []string
	rejections []string
}

func (m *fakeMailer) SendApprovalEmail(toEmail, toName, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.approvals = append(m.approvals, toEmail)
	return nil
}

func (m *fakeMailer) SendRejectionEmail(toEmail, toName, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejections = append(m.rejections, toEmail+": "+reason)
	return nil
}

type fixture struct {
	ctx         context.Context
	store       *memory.Store
	repos       *repositories.Repositories
	jwt         *pkgauth.JWTService
	mailer      *fakeMailer
	auth        *AuthService
	courses     *CourseService
	assignments *AssignmentService
	reports     *ReportService
	comms       *CommunicationService
	directory   *DirectoryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	pkgauth.BcryptCost = bcrypt.MinCost

	hash, err := pkgauth.HashPassword("admin-secret")
	require.NoError(t, err)

	store := memory.NewStore()
	jwtSvc := pkgauth.NewJWTService(pkgauth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "schooladmin-test",
	})
	mailer := &fakeMailer{}
	log := zerolog.Nop()

	return &fixture{
		ctx:    context.Background(),
		store:  store,
		repos:  store.Repos(),
		jwt:    jwtSvc,
		mailer: mailer,
		auth: NewAuthService(store, jwtSvc, mailer, AccountConfig{
			AdminID:           "admin",
			AdminPasswordHash: hash,
			Institution:       "Test School",
		}, log),
		courses:     NewCourseService(store, auth.NewAuthorizationService(store.Repos().Users), log),
		assignments: NewAssignmentService(store, log),
		reports:     NewReportService(store, log),
		comms:       NewCommunicationService(store, log),
		directory:   NewDirectoryService(store, log),
	}
}

func signup(first, email, phone, id string) dto.StudentSignupRequest {
	return dto.StudentSignupRequest{
		FirstName: first,
		LastName:  "Test",
		Email:     email,
		Phone:     phone,
		ID:        id,
		Password:  "secret1",
	}
}

func (f *fixture) department(t *testing.T, code string) *models.Department {
	t.Helper()
	d := &models.Department{Name: code + " Department", Code: code, IsActive: true}
	require.NoError(t, f.repos.Departments.Create(f.ctx, d))
	return d
}

func (f *fixture) login(t *testing.T, identifier string) auth.Identity {
	t.Helper()
	resp, err := f.auth.Login(f.ctx, &dto.LoginRequest{Email: identifier, Password: "secret1"})
	require.NoError(t, err)
	return auth.Identity{Role: resp.User.Role, UserID: resp.User.ID, ProfileID: resp.Profile.ID()}
}

// student registers and logs in a student
func (f *fixture) student(t *testing.T, id, phone string) auth.Identity {
	t.Helper()
	req := signup("Stu"+id, id+"@school.edu", phone, id)
	_, err := f.auth.RegisterStudent(f.ctx, &req)
	require.NoError(t, err)
	return f.login(t, id)
}

// request submits a pending staff request and returns its ID
func (f *fixture) request(t *testing.T, role models.RoleType, id, phone string) int64 {
	t.Helper()
	resp, err := f.auth.RequestRegistration(f.ctx, &dto.StaffSignupRequest{
		StudentSignupRequest: signup("Emp"+id, id+"@school.edu", phone, id),
		Role:                 role,
	})
	require.NoError(t, err)
	return resp.RequestID
}

// staff requests, approves and logs in a staff member
func (f *fixture) staff(t *testing.T, role models.RoleType, id, phone string) auth.Identity {
	t.Helper()
	requestID := f.request(t, role, id, phone)
	_, err := f.auth.ApproveRequest(f.ctx, requestID)
	require.NoError(t, err)
	return f.login(t, id)
}

func (f *fixture) course(t *testing.T, creator auth.Identity, faculty auth.Identity, dep *models.Department, code string) *dto.CourseResponse {
	t.Helper()
	c, err := f.courses.CreateCourse(f.ctx, creator, &dto.CreateCourseRequest{
		Name:         code + " course",
		Code:         code,
		Credits:      3,
		Semester:     1,
		DepartmentID: dep.ID,
		FacultyID:    faculty.ProfileID,
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) enroll(t *testing.T, student auth.Identity, courseID int64) {
	t.Helper()
	_, err := f.courses.Enroll(f.ctx, student, &dto.EnrollRequest{CourseID: courseID})
	require.NoError(t, err)
}

func (f *fixture) assignment(t *testing.T, faculty auth.Identity, courseID int64, title string, maxMarks int) *dto.AssignmentResponse {
	t.Helper()
	a, err := f.assignments.CreateAssignment(f.ctx, faculty, &dto.CreateAssignmentRequest{
		CourseID: courseID,
		Title:    title,
		DueDate:  time.Now().Add(48 * time.Hour),
		MaxMarks: maxMarks,
	})
	require.NoError(t, err)
	return a
}

// academy sets up a department, a HOD, one faculty member and a course
type academy struct {
	dep     *models.Department
	hod     auth.Identity
	faculty auth.Identity
	course  *dto.CourseResponse
}

func (f *fixture) academy(t *testing.T) academy {
	t.Helper()
	dep := f.department(t, "CSE")
	hod := f.staff(t, models.RoleHOD, "HOD001", "5550000001")
	fac := f.staff(t, models.RoleFaculty, "FAC001", "5550000002")
	return academy{
		dep:     dep,
		hod:     hod,
		faculty: fac,
		course:  f.course(t, hod, fac, dep, "CS101"),
	}
}
