package bootstrap_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/app/repositories/memory"
	"github.com/yigit/schooladmin/internal/bootstrap"
	"github.com/yigit/schooladmin/internal/config"
	pkgauth "github.com/yigit/schooladmin/internal/pkg/auth"
)

type envelope struct {
	Success bool             `json:"success"`
	Data    json.RawMessage  `json:"data"`
	Error   *dto.ErrorDetail `json:"error"`
}

type api struct {
	t      *testing.T
	router http.Handler
	deps   *bootstrap.Dependencies
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.Mode = "test"
	cfg.Server.CORSOrigins = []string{"http://localhost:3000"}
	cfg.Database.Driver = config.DriverMemory
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.AccessTokenExpiration = "1h"
	cfg.JWT.RefreshTokenExpiration = "24h"
	cfg.JWT.Issuer = "schooladmin-test"
	cfg.Admin.ID = "admin"
	cfg.Admin.Password = "admin-secret"
	cfg.Institution.Name = "Test School"
	cfg.Institution.DefaultDesignation = "Lecturer"
	return cfg
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)
	pkgauth.BcryptCost = bcrypt.MinCost

	cfg := testConfig()
	store := memory.NewStore()
	deps, err := bootstrap.BuildDependencies(cfg, store, zerolog.Nop())
	require.NoError(t, err)
	router, err := bootstrap.SetupRouter(cfg, deps, zerolog.Nop())
	require.NoError(t, err)

	// Departments are seeded, never created over HTTP
	require.NoError(t, store.Repos().Departments.Create(context.Background(), &models.Department{
		Name: "Computer Science and Engineering", Code: "CSE", IsActive: true,
	}))
	return &api{t: t, router: router, deps: deps}
}

func (a *api) do(method, path, token string, body any) (int, envelope) {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

// ok performs a request that must succeed and decodes its data into out
func (a *api) ok(method, path, token string, body, out any) {
	a.t.Helper()
	code, env := a.do(method, path, token, body)
	require.Less(a.t, code, 300, "%s %s: %+v", method, path, env.Error)
	require.True(a.t, env.Success)
	if out != nil {
		require.NoError(a.t, json.Unmarshal(env.Data, out))
	}
}

func signup(id, phone string) map[string]any {
	return map[string]any{
		"firstName": "First" + id,
		"lastName":  "Last",
		"email":     id + "@school.edu",
		"phone":     phone,
		"id":        id,
		"password":  "secret1",
	}
}

func (a *api) adminToken() string {
	var resp dto.AdminLoginResponse
	a.ok(http.MethodPost, "/api/admin/login", "", map[string]string{"id": "admin", "password": "admin-secret"}, &resp)
	return resp.Token.AccessToken
}

func (a *api) login(identifier string) string {
	var resp dto.LoginResponse
	a.ok(http.MethodPost, "/api/login", "", map[string]string{"email": identifier, "password": "secret1"}, &resp)
	return resp.Token.AccessToken
}

// requestStaff files a staff request and returns its request ID
func (a *api) requestStaff(role models.RoleType, id, phone string) int64 {
	body := signup(id, phone)
	body["role"] = role
	var resp dto.SignupRequestResponse
	a.ok(http.MethodPost, "/api/signup/request", "", body, &resp)
	assert.Equal(a.t, models.StatusPending, resp.Status)
	return resp.RequestID
}

func (a *api) approve(admin string, requestID int64) dto.DecisionResponse {
	var resp dto.DecisionResponse
	a.ok(http.MethodPost, fmt.Sprintf("/api/admin/approve/%d", requestID), admin, nil, &resp)
	return resp
}

func TestStudentGradeFlow(t *testing.T) {
	a := newAPI(t)
	admin := a.adminToken()

	hodReq := a.requestStaff(models.RoleHOD, "HOD001", "5550000001")
	facReq := a.requestStaff(models.RoleFaculty, "FAC001", "5550000002")
	hodDecision := a.approve(admin, hodReq)
	require.NotNil(t, hodDecision.DepartmentID)
	a.approve(admin, facReq)

	hod := a.login("HOD001")
	faculty := a.login("FAC001")

	var staffList dto.FacultyListResponse
	a.ok(http.MethodGet, "/api/faculty", faculty, nil, &staffList)
	require.Len(t, staffList.Faculty, 1)

	var course dto.CourseResponse
	a.ok(http.MethodPost, "/api/courses", hod, map[string]any{
		"name":         "Introduction to Programming",
		"code":         "cs101",
		"credits":      4,
		"semester":     1,
		"departmentId": *hodDecision.DepartmentID,
		"facultyId":    staffList.Faculty[0].ID,
	}, &course)
	assert.Equal(t, "CS101", course.Code)

	var student dto.UserResponse
	a.ok(http.MethodPost, "/api/signup/student", "", signup("STU001", "5550000003"), &student)
	stu := a.login("STU001")

	a.ok(http.MethodPost, "/api/enrollments", stu, map[string]any{"courseId": course.ID}, nil)

	var assignment dto.AssignmentResponse
	a.ok(http.MethodPost, "/api/assignments", faculty, map[string]any{
		"courseId": course.ID,
		"title":    "Hello World",
		"dueDate":  time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339),
	}, &assignment)

	var submission dto.SubmissionResponse
	a.ok(http.MethodPost, fmt.Sprintf("/api/assignments/%d/submit", assignment.ID), stu,
		map[string]string{"content": "done"}, &submission)
	assert.Equal(t, models.SubmissionSubmitted, submission.Status)
	assert.False(t, submission.IsLate)

	var graded dto.SubmissionResponse
	a.ok(http.MethodPost, fmt.Sprintf("/api/submissions/%d/grade", submission.ID), faculty,
		map[string]any{"marks": 80, "feedback": "Nice"}, &graded)
	assert.Equal(t, models.SubmissionGraded, graded.Status)

	var grades dto.GradeListResponse
	a.ok(http.MethodGet, "/api/grades", stu, nil, &grades)
	require.Len(t, grades.Grades, 1)
	assert.Equal(t, models.SubmissionGraded, grades.Grades[0].Status)
	assert.Equal(t, 80, grades.Grades[0].Marks)
	assert.Equal(t, 100, grades.Grades[0].MaxMarks)
	assert.Equal(t, "CS101", grades.Grades[0].CourseCode)

	var notes dto.NotificationListResponse
	a.ok(http.MethodGet, "/api/notifications", stu, nil, &notes)
	assert.GreaterOrEqual(t, notes.Unread, 2)
}

func TestHODApprovalWithoutFreeDepartment(t *testing.T) {
	a := newAPI(t)
	admin := a.adminToken()

	first := a.requestStaff(models.RoleHOD, "HOD001", "5550000001")
	a.approve(admin, first)

	second := a.requestStaff(models.RoleHOD, "HOD002", "5550000002")
	code, env := a.do(http.MethodPost, fmt.Sprintf("/api/admin/approve/%d", second), admin, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Message, "no available departments")

	var status dto.RequestStatusResponse
	a.ok(http.MethodGet, "/api/request-status/HOD002", "", nil, &status)
	assert.Equal(t, models.StatusPending, status.Status)

	var pending []dto.RequestSummary
	a.ok(http.MethodGet, "/api/admin/pending-requests", admin, nil, &pending)
	require.Len(t, pending, 1)
	assert.Equal(t, second, pending[0].RequestID)
}

func TestRouteProtection(t *testing.T) {
	a := newAPI(t)

	code, env := a.do(http.MethodGet, "/api/courses", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, dto.ErrorCodeUnauthorized, env.Error.Code)

	a.ok(http.MethodPost, "/api/signup/student", "", signup("STU001", "5550000003"), nil)
	stu := a.login("STU001")

	code, env = a.do(http.MethodGet, "/api/admin/pending-requests", stu, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, dto.ErrorCodeForbidden, env.Error.Code)

	code, env = a.do(http.MethodPost, "/api/courses", stu, map[string]any{
		"name": "X", "code": "X1", "credits": 1, "semester": 1, "departmentId": 1, "facultyId": 1,
	})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = a.do(http.MethodPost, "/api/login", "", map[string]string{"email": "STU001", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, dto.ErrorCodeInvalidCredentials, env.Error.Code)

	code, env = a.do(http.MethodPost, "/api/signup/student", "", map[string]any{"email": "bad"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)
}

func TestPublicEndpoints(t *testing.T) {
	a := newAPI(t)

	var deps dto.DepartmentListResponse
	a.ok(http.MethodGet, "/api/departments", "", nil, &deps)
	require.Len(t, deps.Departments, 1)
	assert.False(t, deps.Departments[0].HasHOD)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"db":true`)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")

	req = httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"/token/refresh"`)
}

func TestRejectWithoutReason(t *testing.T) {
	a := newAPI(t)
	admin := a.adminToken()

	send := func(requestID int64, body string, contentLength int64) (int, envelope) {
		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/admin/reject/%d", requestID), nil)
		req.Body = io.NopCloser(strings.NewReader(body))
		req.ContentLength = contentLength
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+admin)
		w := httptest.NewRecorder()
		a.router.ServeHTTP(w, req)
		var env envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
		return w.Code, env
	}

	t.Run("chunked empty body", func(t *testing.T) {
		id := a.requestStaff(models.RoleFaculty, "FAC001", "5550000001")
		code, env := send(id, "", -1)
		require.Equal(t, http.StatusOK, code, "%+v", env.Error)

		var status dto.RequestStatusResponse
		a.ok(http.MethodGet, "/api/request-status/FAC001", "", nil, &status)
		assert.Equal(t, models.StatusRejected, status.Status)
		require.NotNil(t, status.RejectionReason)
		assert.Equal(t, "Request rejected by administrator", *status.RejectionReason)
	})

	t.Run("reason in body", func(t *testing.T) {
		id := a.requestStaff(models.RoleFaculty, "FAC002", "5550000002")
		code, _ := send(id, `{"reason":"Unknown applicant"}`, -1)
		require.Equal(t, http.StatusOK, code)

		var status dto.RequestStatusResponse
		a.ok(http.MethodGet, "/api/request-status/FAC002", "", nil, &status)
		require.NotNil(t, status.RejectionReason)
		assert.Equal(t, "Unknown applicant", *status.RejectionReason)
	})

	t.Run("malformed body", func(t *testing.T) {
		id := a.requestStaff(models.RoleFaculty, "FAC003", "5550000003")
		code, _ := send(id, `{"reason":`, -1)
		assert.Equal(t, http.StatusBadRequest, code)
	})
}

func TestTokenRefreshAndProfile(t *testing.T) {
	a := newAPI(t)
	a.ok(http.MethodPost, "/api/signup/student", "", signup("STU001", "5550000001"), nil)

	var login dto.LoginResponse
	a.ok(http.MethodPost, "/api/login", "", map[string]string{"email": "STU001", "password": "secret1"}, &login)
	require.NotEmpty(t, login.Token.RefreshToken)

	var refreshed dto.LoginResponse
	a.ok(http.MethodPost, "/api/token/refresh", "", map[string]string{"refreshToken": login.Token.RefreshToken}, &refreshed)
	assert.NotEqual(t, login.Token.RefreshToken, refreshed.Token.RefreshToken)

	var me dto.ProfileResponse
	a.ok(http.MethodGet, "/api/me", refreshed.Token.AccessToken, nil, &me)
	assert.Equal(t, "stu001@school.edu", me.User.Email)
	require.NotNil(t, me.Profile.Student)

	code, env := a.do(http.MethodPost, "/api/token/refresh", "", map[string]string{"refreshToken": login.Token.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, dto.ErrorCodeInvalidToken, env.Error.Code)

	code, env = a.do(http.MethodGet, "/api/me", a.adminToken(), nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = a.do(http.MethodPost, "/api/token/refresh", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, code)

	// A fresh session ends with logout
	var second dto.LoginResponse
	a.ok(http.MethodPost, "/api/login", "", map[string]string{"email": "STU001", "password": "secret1"}, &second)
	a.ok(http.MethodPost, "/api/logout", second.Token.AccessToken, map[string]string{"refreshToken": second.Token.RefreshToken}, nil)
	code, _ = a.do(http.MethodPost, "/api/token/refresh", "", map[string]string{"refreshToken": second.Token.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, code)
}
