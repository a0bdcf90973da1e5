package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/schooladmin/internal/app/auth"
	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/app/repositories"
	"github.com/yigit/schooladmin/internal/pkg/apperrors"
)

func TestRegisterStudent(t *testing.T) {
	f := newFixture(t)

	req := signup("Ada", "Ada@School.edu", "5551000001", "STU001")
	user, err := f.auth.RegisterStudent(f.ctx, &req)
	require.NoError(t, err)
	assert.Equal(t, "ada@school.edu", user.Email)
	assert.Equal(t, models.StatusApproved, user.Status)
	assert.Equal(t, models.RoleStudent, user.Role)

	student, err := f.repos.Profiles.GetStudentByUserID(f.ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "STU001", student.RollNumber)
	assert.Equal(t, 1, student.Semester)
}

func TestRegisterStudent_ConflictLeavesNoRow(t *testing.T) {
	f := newFixture(t)
	req := signup("Ada", "ada@school.edu", "5551000001", "STU001")
	_, err := f.auth.RegisterStudent(f.ctx, &req)
	require.NoError(t, err)

	tests := []struct {
		name  string
		req   dto.StudentSignupRequest
		cause error
	}{
		{"same email", signup("Bob", "ADA@school.edu", "5551000002", "STU002"), apperrors.ErrEmailAlreadyExists},
		{"same student id", signup("Bob", "bob@school.edu", "5551000002", "STU001"), apperrors.ErrIdentifierExists},
		{"same phone", signup("Bob", "bob@school.edu", "5551000001", "STU002"), apperrors.ErrPhoneAlreadyExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.RegisterStudent(f.ctx, &tt.req)
			require.ErrorIs(t, err, apperrors.ErrConflict)
			assert.ErrorIs(t, err, tt.cause)

			users, err := f.repos.Users.ListAll(f.ctx)
			require.NoError(t, err)
			assert.Len(t, users, 1)
		})
	}
}

func TestRequestRegistration(t *testing.T) {
	f := newFixture(t)
	f.student(t, "STU001", "5551000001")

	t.Run("student role is rejected", func(t *testing.T) {
		_, err := f.auth.RequestRegistration(f.ctx, &dto.StaffSignupRequest{
			StudentSignupRequest: signup("Eve", "eve@school.edu", "5552000001", "FAC001"),
			Role:                 models.RoleStudent,
		})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	})

	t.Run("conflicts report a reason", func(t *testing.T) {
		_, err := f.auth.RequestRegistration(f.ctx, &dto.StaffSignupRequest{
			StudentSignupRequest: signup("Eve", "eve@school.edu", "5551000001", "FAC001"),
			Role:                 models.RoleFaculty,
		})
		assert.ErrorIs(t, err, apperrors.ErrPhoneAlreadyExists)

		_, err = f.auth.RequestRegistration(f.ctx, &dto.StaffSignupRequest{
			StudentSignupRequest: signup("Eve", "eve@school.edu", "5552000001", "STU001"),
			Role:                 models.RoleFaculty,
		})
		assert.ErrorIs(t, err, apperrors.ErrIdentifierExists)
	})

	t.Run("pending requests do not block each other", func(t *testing.T) {
		first := f.request(t, models.RoleFaculty, "FAC009", "5552000009")
		second := f.request(t, models.RoleFaculty, "FAC009", "5552000009")
		assert.NotEqual(t, first, second)

		pending, err := f.auth.ListPendingRequests(f.ctx)
		require.NoError(t, err)
		assert.Len(t, pending, 2)
	})
}

func TestApproveRequest(t *testing.T) {
	f := newFixture(t)
	requestID := f.request(t, models.RoleFaculty, "FAC001", "5552000001")

	resp, err := f.auth.ApproveRequest(f.ctx, requestID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, resp.Status)

	user, err := f.repos.Users.GetByID(f.ctx, requestID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, user.Status)
	assert.NotNil(t, user.LastLoginAt)

	faculty, err := f.repos.Profiles.ListFaculty(f.ctx, nil)
	require.NoError(t, err)
	require.Len(t, faculty, 1)
	assert.Equal(t, "Assistant Professor", faculty[0].Designation)

	notes, err := f.repos.Notifications.ListByUser(f.ctx, requestID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationAccount, notes[0].Type)
	assert.Equal(t, []string{"fac001@school.edu"}, f.mailer.approvals)

	_, err = f.auth.ApproveRequest(f.ctx, requestID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	faculty, err = f.repos.Profiles.ListFaculty(f.ctx, nil)
	require.NoError(t, err)
	assert.Len(t, faculty, 1)

	_, err = f.auth.ApproveRequest(f.ctx, 999)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestApproveRequest_Principal(t *testing.T) {
	f := newFixture(t)
	id := f.staff(t, models.RolePrincipal, "PRN001", "5552000001")

	p, err := f.repos.Profiles.GetPrincipalByUserID(f.ctx, id.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Test School", p.Institution)
	assert.Equal(t, p.ID, id.ProfileID)
}

func TestApproveRequest_IdentifierTakenWhilePending(t *testing.T) {
	f := newFixture(t)
	requestID := f.request(t, models.RoleFaculty, "X100", "5552000001")

	// A student claims the same ID before the operator decides
	req := signup("Stu", "student.x100@school.edu", "5551000001", "X100")
	_, err := f.auth.RegisterStudent(f.ctx, &req)
	require.NoError(t, err)

	_, err = f.auth.ApproveRequest(f.ctx, requestID)
	require.ErrorIs(t, err, apperrors.ErrConflict)
	assert.ErrorIs(t, err, apperrors.ErrIdentifierExists)

	user, err := f.repos.Users.GetByID(f.ctx, requestID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, user.Status)
	faculty, err := f.repos.Profiles.ListFaculty(f.ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, faculty)
	assert.Empty(t, f.mailer.approvals)

	resp, err := f.auth.Login(f.ctx, &dto.LoginRequest{Email: "X100", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, resp.User.Role)

	t.Run("shared e-mail", func(t *testing.T) {
		other := f.request(t, models.RoleFaculty, "FAC200", "5552000002")
		req := signup("Stu", "fac200@school.edu", "5551000002", "STU200")
		_, err := f.auth.RegisterStudent(f.ctx, &req)
		require.NoError(t, err)

		_, err = f.auth.ApproveRequest(f.ctx, other)
		assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
	})
}

func TestApproveHOD_NoAvailableDepartment(t *testing.T) {
	f := newFixture(t)
	dep := f.department(t, "CSE")

	first, err := f.auth.ApproveRequest(f.ctx, f.request(t, models.RoleHOD, "HOD001", "5552000001"))
	require.NoError(t, err)
	require.NotNil(t, first.DepartmentID)
	assert.Equal(t, dep.ID, *first.DepartmentID)

	secondID := f.request(t, models.RoleHOD, "HOD002", "5552000002")
	_, err = f.auth.ApproveRequest(f.ctx, secondID)
	require.ErrorIs(t, err, apperrors.ErrNoAvailableDepartment)
	assert.Contains(t, err.Error(), "no available departments")

	user, err := f.repos.Users.GetByID(f.ctx, secondID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, user.Status)
	assert.Nil(t, user.LastLoginAt)

	_, err = f.repos.Profiles.GetHODByUserID(f.ctx, secondID)
	assert.Error(t, err)
	notes, err := f.repos.Notifications.ListByUser(f.ctx, secondID)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestApproveHOD_Concurrent(t *testing.T) {
	f := newFixture(t)
	f.department(t, "CSE")

	const n = 8
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = f.request(t, models.RoleHOD, "HOD00"+string(rune('A'+i)), "555200000"+string(rune('0'+i)))
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		exhausted int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := f.auth.ApproveRequest(f.ctx, id)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case apperrors.Is(err, apperrors.ErrNoAvailableDepartment):
				exhausted++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, exhausted)

	hods, err := f.repos.Profiles.ListHODs(f.ctx)
	require.NoError(t, err)
	assert.Len(t, hods, 1)

	pending, err := f.auth.ListPendingRequests(f.ctx)
	require.NoError(t, err)
	assert.Len(t, pending, n-1)
}

func TestRejectRequest(t *testing.T) {
	f := newFixture(t)
	requestID := f.request(t, models.RoleFaculty, "FAC001", "5552000001")

	resp, err := f.auth.RejectRequest(f.ctx, requestID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, resp.Status)

	status, err := f.auth.CheckRequestStatus(f.ctx, "FAC001")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, status.Status)
	require.NotNil(t, status.RejectionReason)
	assert.Equal(t, DefaultRejectionReason, *status.RejectionReason)
	assert.Contains(t, status.Message, DefaultRejectionReason)
	assert.Len(t, f.mailer.rejections, 1)

	_, err = f.auth.RejectRequest(f.ctx, requestID, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	_, err = f.auth.ApproveRequest(f.ctx, requestID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	reason := "  Missing documents "
	other := f.request(t, models.RoleHOD, "HOD001", "5552000002")
	_, err = f.auth.RejectRequest(f.ctx, other, &reason)
	require.NoError(t, err)
	user, err := f.repos.Users.GetByID(f.ctx, other)
	require.NoError(t, err)
	assert.Equal(t, "Missing documents", *user.RejectionReason)
}

func TestCheckRequestStatus(t *testing.T) {
	f := newFixture(t)
	f.request(t, models.RoleFaculty, "FAC001", "5552000001")

	status, err := f.auth.CheckRequestStatus(f.ctx, "fac001@SCHOOL.edu")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, status.Status)
	assert.Contains(t, status.Message, "pending")

	_, err = f.auth.CheckRequestStatus(f.ctx, "nobody")
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	f.student(t, "STU001", "5551000001")
	f.staff(t, models.RoleFaculty, "FAC001", "5552000001")
	f.request(t, models.RoleFaculty, "FAC002", "5552000002")

	for _, identifier := range []string{"STU001", "STU001@school.edu", " stu001@SCHOOL.EDU "} {
		resp, err := f.auth.Login(f.ctx, &dto.LoginRequest{Email: identifier, Password: "secret1"})
		require.NoError(t, err, identifier)
		assert.Equal(t, models.RoleStudent, resp.User.Role)
		require.NotNil(t, resp.Profile.Student)
		assert.Nil(t, resp.Profile.Faculty)
		assert.NotNil(t, resp.User.LastLoginAt)

		claims, err := f.jwt.ValidateAndExtractClaims(resp.Token.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, resp.Profile.Student.ID, claims.ProfileID)
	}

	resp, err := f.auth.Login(f.ctx, &dto.LoginRequest{Email: "FAC001", Password: "secret1"})
	require.NoError(t, err)
	assert.NotNil(t, resp.Profile.Faculty)

	_, err = f.auth.Login(f.ctx, &dto.LoginRequest{Email: "STU001", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, err = f.auth.Login(f.ctx, &dto.LoginRequest{Email: "FAC002", Password: "secret1"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, err = f.auth.Login(f.ctx, &dto.LoginRequest{Email: "nobody", Password: "secret1"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAdminLogin(t *testing.T) {
	f := newFixture(t)

	resp, err := f.auth.AdminLogin(f.ctx, &dto.AdminLoginRequest{ID: "admin", Password: "admin-secret"})
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", resp.Role)
	claims, err := f.jwt.ValidateAndExtractClaims(resp.Token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	_, err = f.auth.AdminLogin(f.ctx, &dto.AdminLoginRequest{ID: "admin", Password: "nope"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, err = f.auth.AdminLogin(f.ctx, &dto.AdminLoginRequest{ID: "root", Password: "admin-secret"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestListUsers(t *testing.T) {
	f := newFixture(t)
	f.student(t, "STU001", "5551000001")
	f.student(t, "STU002", "5551000002")
	f.request(t, models.RoleFaculty, "FAC001", "5552000001")

	page, err := f.auth.ListUsers(f.ctx, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Users, 2)
	assert.Equal(t, int64(3), page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)

	page, err = f.auth.ListUsers(f.ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page.Users, 1)
	assert.Equal(t, models.StatusPending, page.Users[0].Status)
}

func TestRefreshToken_Rotation(t *testing.T) {
	f := newFixture(t)
	f.student(t, "STU001", "5551000001")

	login, err := f.auth.Login(f.ctx, &dto.LoginRequest{Email: "STU001", Password: "secret1"})
	require.NoError(t, err)
	require.NotEmpty(t, login.Token.RefreshToken)
	assert.Equal(t, 86400, login.Token.RefreshExpiresIn)

	refreshed, err := f.auth.RefreshToken(f.ctx, login.Token.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.Token.RefreshToken, refreshed.Token.RefreshToken)
	assert.Equal(t, login.User.ID, refreshed.User.ID)
	require.NotNil(t, refreshed.Profile.Student)

	claims, err := f.jwt.ValidateAndExtractClaims(refreshed.Token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, claims.Role)
	assert.Equal(t, refreshed.Profile.Student.ID, claims.ProfileID)

	t.Run("spent token revokes every session", func(t *testing.T) {
		_, err := f.auth.RefreshToken(f.ctx, login.Token.RefreshToken)
		assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)

		_, err = f.auth.RefreshToken(f.ctx, refreshed.Token.RefreshToken)
		assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := f.auth.RefreshToken(f.ctx, "not-a-token")
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})
}

func TestRefreshToken_Expired(t *testing.T) {
	f := newFixture(t)
	f.student(t, "STU001", "5551000001")
	login, err := f.auth.Login(f.ctx, &dto.LoginRequest{Email: "STU001", Password: "secret1"})
	require.NoError(t, err)

	f.auth.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	_, err = f.auth.RefreshToken(f.ctx, login.Token.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)

	stored, err := f.repos.Tokens.GetByToken(f.ctx, login.Token.RefreshToken)
	require.NoError(t, err)
	assert.True(t, stored.IsRevoked)
}

func TestRefreshToken_AccountNoLongerApproved(t *testing.T) {
	f := newFixture(t)
	id := f.student(t, "STU001", "5551000001")
	login, err := f.auth.Login(f.ctx, &dto.LoginRequest{Email: "STU001", Password: "secret1"})
	require.NoError(t, err)

	changed, err := f.repos.Users.TransitionStatus(f.ctx, id.UserID, models.StatusApproved, models.StatusRejected, nil)
	require.NoError(t, err)
	require.True(t, changed)

	_, err = f.auth.RefreshToken(f.ctx, login.Token.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)

	// The failed refresh does not spend the token
	stored, err := f.repos.Tokens.GetByToken(f.ctx, login.Token.RefreshToken)
	require.NoError(t, err)
	assert.False(t, stored.IsRevoked)
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	ada := f.student(t, "STU001", "5551000001")
	bob := f.student(t, "STU002", "5551000002")
	login, err := f.auth.Login(f.ctx, &dto.LoginRequest{Email: "STU001", Password: "secret1"})
	require.NoError(t, err)

	err = f.auth.Logout(f.ctx, bob, login.Token.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)

	require.NoError(t, f.auth.Logout(f.ctx, ada, login.Token.RefreshToken))
	require.NoError(t, f.auth.Logout(f.ctx, ada, login.Token.RefreshToken))

	_, err = f.auth.RefreshToken(f.ctx, login.Token.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)

	err = f.auth.Logout(f.ctx, ada, "not-a-token")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestPruneRefreshTokens(t *testing.T) {
	f := newFixture(t)
	f.student(t, "STU001", "5551000001")
	login, err := f.auth.Login(f.ctx, &dto.LoginRequest{Email: "STU001", Password: "secret1"})
	require.NoError(t, err)
	_, err = f.auth.RefreshToken(f.ctx, login.Token.RefreshToken)
	require.NoError(t, err)

	// Three tokens: the helper's login, the explicit login (now spent) and its replacement
	n, err := f.auth.PruneRefreshTokens(f.ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)

	f.auth.now = func() time.Time { return time.Now().Add(time.Hour) }
	n, err = f.auth.PruneRefreshTokens(f.ctx, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = f.repos.Tokens.GetByToken(f.ctx, login.Token.RefreshToken)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	f.auth.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	n, err = f.auth.PruneRefreshTokens(f.ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestGetProfile(t *testing.T) {
	f := newFixture(t)
	stu := f.student(t, "STU001", "5551000001")
	fac := f.staff(t, models.RoleFaculty, "FAC001", "5552000001")

	resp, err := f.auth.GetProfile(f.ctx, stu)
	require.NoError(t, err)
	assert.Equal(t, "stu001@school.edu", resp.User.Email)
	require.NotNil(t, resp.Profile.Student)
	assert.Equal(t, stu.ProfileID, resp.Profile.Student.ID)

	resp, err = f.auth.GetProfile(f.ctx, fac)
	require.NoError(t, err)
	require.NotNil(t, resp.Profile.Faculty)
	assert.Nil(t, resp.Profile.Student)

	_, err = f.auth.GetProfile(f.ctx, auth.Identity{Role: models.RoleAdmin})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = f.auth.GetProfile(f.ctx, auth.Identity{Role: models.RoleStudent, UserID: 9999})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}
