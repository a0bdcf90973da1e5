//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/schooladmin/internal/app/migrations"
	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/app/repositories"
	"github.com/yigit/schooladmin/internal/app/repositories/postgres"
	"github.com/yigit/schooladmin/internal/app/services"
	"github.com/yigit/schooladmin/internal/db"
	"github.com/yigit/schooladmin/internal/pkg/apperrors"
	pkgauth "github.com/yigit/schooladmin/internal/pkg/auth"
)

const migrationsDir = "../../../../migrations"

// setupStore starts a throwaway PostgreSQL, applies the migrations and
// returns a store over it.
func setupStore(t *testing.T) *postgres.Store {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("schooladmin"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	database, err := db.Connect(connStr, db.PoolOptions{MaxConns: 10})
	require.NoError(t, err)

	require.NoError(t, migrations.NewMigrator(database.Pool, zerolog.Nop()).MigrateFromDirectory(ctx, migrationsDir))
	// A second run must be a no-op
	require.NoError(t, migrations.NewMigrator(database.Pool, zerolog.Nop()).MigrateFromDirectory(ctx, migrationsDir))

	store := postgres.NewStore(database)
	t.Cleanup(store.Close)
	return store
}

func newUser(id string, role models.RoleType, status models.UserStatus) *models.User {
	u := &models.User{
		FirstName: "First" + id,
		LastName:  "Last",
		Email:     id + "@school.edu",
		Phone:     "555" + id,
		Password:  "hash",
		Role:      role,
		Status:    status,
		IsActive:  true,
	}
	if role == models.RoleStudent {
		u.StudentID = &id
	} else {
		u.EmployeeID = &id
	}
	return u
}

func TestPostgresStore(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	repos := store.Repos()

	require.NoError(t, store.Ping(ctx))

	dep := &models.Department{Name: "Computer Science and Engineering", Code: "CSE", IsActive: true}
	require.NoError(t, repos.Departments.Create(ctx, dep))

	t.Run("approved identifiers are unique", func(t *testing.T) {
		require.NoError(t, repos.Users.Create(ctx, newUser("STU100", models.RoleStudent, models.StatusApproved)))

		// Pending duplicates are allowed; approved ones are not
		require.NoError(t, repos.Users.Create(ctx, newUser("STU100", models.RoleStudent, models.StatusPending)))
		err := repos.Users.Create(ctx, newUser("STU100", models.RoleStudent, models.StatusApproved))
		var dup *repositories.DuplicateError
		require.ErrorAs(t, err, &dup)
		assert.Contains(t, []string{
			repositories.ConstraintUserEmail,
			repositories.ConstraintUserPhone,
			repositories.ConstraintUserStudentID,
		}, dup.Constraint)

		studentID := "STU100"
		conflicts, err := repos.Users.FindApprovedConflicts(ctx, repositories.Identifiers{Email: "other@school.edu", StudentID: &studentID})
		require.NoError(t, err)
		assert.Len(t, conflicts, 1)

		found, err := repos.Users.FindApprovedByIdentifier(ctx, "STU100")
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, found.Status)
	})

	t.Run("transaction rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := store.WithTx(ctx, func(ctx context.Context, r *repositories.Repositories) error {
			require.NoError(t, r.Departments.Create(ctx, &models.Department{Name: "Temp", Code: "TMP", IsActive: true}))
			return boom
		})
		require.ErrorIs(t, err, boom)

		all, err := repos.Departments.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("enrollment and submission constraints", func(t *testing.T) {
		facUser := newUser("FAC100", models.RoleFaculty, models.StatusApproved)
		require.NoError(t, repos.Users.Create(ctx, facUser))
		fac := &models.Faculty{UserID: facUser.ID, DepartmentID: &dep.ID, Designation: "Lecturer"}
		require.NoError(t, repos.Profiles.CreateFaculty(ctx, fac))

		stuUser := newUser("STU200", models.RoleStudent, models.StatusApproved)
		require.NoError(t, repos.Users.Create(ctx, stuUser))
		stu := &models.Student{UserID: stuUser.ID, RollNumber: "STU200", Semester: 1}
		require.NoError(t, repos.Profiles.CreateStudent(ctx, stu))

		course := &models.Course{Name: "Programming", Code: "CS100", Credits: 4, Semester: 1, DepartmentID: dep.ID, FacultyID: fac.ID}
		require.NoError(t, repos.Courses.Create(ctx, course))

		enrollment := &models.Enrollment{StudentID: stu.ID, CourseID: course.ID, Status: models.EnrollmentEnrolled}
		require.NoError(t, repos.Enrollments.Create(ctx, enrollment))
		err := repos.Enrollments.Create(ctx, &models.Enrollment{StudentID: stu.ID, CourseID: course.ID, Status: models.EnrollmentEnrolled})
		require.ErrorIs(t, err, repositories.ErrDuplicate)
		count, err := repos.Enrollments.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		a := &models.Assignment{CourseID: course.ID, FacultyID: fac.ID, Title: "HW1", DueDate: time.Now().Add(time.Hour), MaxMarks: 100}
		require.NoError(t, repos.Assignments.Create(ctx, a))

		first := &models.Submission{AssignmentID: a.ID, StudentID: stu.ID, Content: "v1", SubmittedAt: time.Now()}
		require.NoError(t, repos.Submissions.Upsert(ctx, first))
		second := &models.Submission{AssignmentID: a.ID, StudentID: stu.ID, Content: "v2", SubmittedAt: time.Now().Add(time.Minute)}
		require.NoError(t, repos.Submissions.Upsert(ctx, second))
		assert.Equal(t, first.ID, second.ID)

		subs, err := repos.Submissions.ListByAssignment(ctx, a.ID)
		require.NoError(t, err)
		require.Len(t, subs, 1)
		assert.Equal(t, "v2", subs[0].Content)
		assert.Equal(t, models.SubmissionSubmitted, subs[0].Status)

		graded, err := repos.Submissions.Grade(ctx, first.ID, 80, nil, time.Now())
		require.NoError(t, err)
		assert.Equal(t, models.SubmissionGraded, graded.Status)
		require.NotNil(t, graded.Marks)
		assert.Equal(t, 80, *graded.Marks)
	})
}

func TestPostgresTokenRepository(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	repos := store.Repos()

	user := newUser("STU900", models.RoleStudent, models.StatusApproved)
	require.NoError(t, repos.Users.Create(ctx, user))

	now := time.Now()
	live := &models.RefreshToken{Token: "live-token", UserID: user.ID, ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, repos.Tokens.Create(ctx, live))
	assert.NotZero(t, live.ID)
	assert.False(t, live.CreatedAt.IsZero())

	err := repos.Tokens.Create(ctx, &models.RefreshToken{Token: "live-token", UserID: user.ID, ExpiresAt: now.Add(time.Hour)})
	var dup *repositories.DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, repositories.ConstraintRefreshToken, dup.Constraint)

	expired := &models.RefreshToken{Token: "expired-token", UserID: user.ID, ExpiresAt: now.Add(-time.Minute)}
	require.NoError(t, repos.Tokens.Create(ctx, expired))

	changed, err := repos.Tokens.Revoke(ctx, "live-token")
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = repos.Tokens.Revoke(ctx, "live-token")
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := repos.Tokens.GetByToken(ctx, "live-token")
	require.NoError(t, err)
	assert.True(t, got.IsRevoked)
	assert.Equal(t, user.ID, got.UserID)

	_, err = repos.Tokens.GetByToken(ctx, "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	// Only the expired token goes while the revoked one is inside retention
	n, err := repos.Tokens.DeleteStale(ctx, now, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repos.Tokens.DeleteStale(ctx, now, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	second := &models.RefreshToken{Token: "second-token", UserID: user.ID, ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, repos.Tokens.Create(ctx, second))
	require.NoError(t, repos.Tokens.RevokeAllForUser(ctx, user.ID))
	got, err = repos.Tokens.GetByToken(ctx, "second-token")
	require.NoError(t, err)
	assert.True(t, got.IsRevoked)
}

type nopMailer struct{}

func (nopMailer) SendApprovalEmail(string, string, string) error  { return nil }
func (nopMailer) SendRejectionEmail(string, string, string) error { return nil }

func TestConcurrentHODApproval(t *testing.T) {
	pkgauth.BcryptCost = bcrypt.MinCost
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Repos().Departments.Create(ctx, &models.Department{Name: "Mathematics", Code: "MATH", IsActive: true}))

	jwt := pkgauth.NewJWTService(pkgauth.JWTConfig{SecretKey: "test", AccessTokenExp: time.Hour, RefreshTokenExp: time.Hour, TokenIssuer: "test"})
	authService := services.NewAuthService(store, jwt, nopMailer{}, services.AccountConfig{
		AdminID: "admin", Institution: "Test School",
	}, zerolog.Nop())

	const applicants = 6
	requestIDs := make([]int64, applicants)
	for i := range requestIDs {
		id := "HOD" + string(rune('A'+i))
		resp, err := authService.RequestRegistration(ctx, &dto.StaffSignupRequest{
			StudentSignupRequest: dto.StudentSignupRequest{
				FirstName: "Head",
				LastName:  id,
				Email:     id + "@school.edu",
				Phone:     "55590000" + string(rune('0'+i)),
				ID:        id,
				Password:  "secret1",
			},
			Role: models.RoleHOD,
		})
		require.NoError(t, err)
		requestIDs[i] = resp.RequestID
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		approved  int
		noDept    int
		unexpects []error
	)
	for _, id := range requestIDs {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := authService.ApproveRequest(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				approved++
			case errors.Is(err, apperrors.ErrNoAvailableDepartment):
				noDept++
			default:
				unexpects = append(unexpects, err)
			}
		}(id)
	}
	wg.Wait()

	assert.Empty(t, unexpects)
	assert.Equal(t, 1, approved)
	assert.Equal(t, applicants-1, noDept)

	hods, err := store.Repos().Profiles.ListHODs(ctx)
	require.NoError(t, err)
	assert.Len(t, hods, 1)

	pending, err := store.Repos().Users.ListByStatus(ctx, models.StatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, applicants-1)
}
