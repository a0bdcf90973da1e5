package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/repositories/memory"
	"github.com/yigit/schooladmin/internal/pkg/apperrors"
)

func TestRequireRole(t *testing.T) {
	id := Identity{Role: models.RoleFaculty, UserID: 1, ProfileID: 1}

	assert.NoError(t, RequireRole(id, "grade", models.RoleFaculty))

	err := RequireRole(id, "create courses", models.RoleHOD, models.RolePrincipal)
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.Equal(t, "only HOD or PRINCIPAL can create courses", err.Error())
}

func TestResolveProfile(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()

	user := &models.User{FirstName: "Ada", LastName: "L", Email: "ada@school.edu", Role: models.RoleFaculty, Status: models.StatusApproved, IsActive: true}
	require.NoError(t, repos.Users.Create(ctx, user))

	_, err := ResolveProfile(ctx, repos.Profiles, user)
	require.ErrorIs(t, err, ErrProfileMissing)

	fac := &models.Faculty{UserID: user.ID, Designation: "Assistant Professor"}
	require.NoError(t, repos.Profiles.CreateFaculty(ctx, fac))

	profile, err := ResolveProfile(ctx, repos.Profiles, user)
	require.NoError(t, err)
	require.NotNil(t, profile.Faculty)
	assert.Nil(t, profile.Student)

	id := NewIdentity(user, profile)
	assert.Equal(t, Identity{Role: models.RoleFaculty, UserID: user.ID, ProfileID: fac.ID}, id)
}

func TestRequireStoredRole(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repos()
	svc := NewAuthorizationService(repos.Users)

	hod := &models.User{Email: "hod@school.edu", Role: models.RoleHOD, Status: models.StatusApproved, IsActive: true}
	require.NoError(t, repos.Users.Create(ctx, hod))

	user, err := svc.RequireStoredRole(ctx, Identity{Role: models.RoleHOD, UserID: hod.ID, ProfileID: 1}, "create courses", models.RoleHOD, models.RolePrincipal)
	require.NoError(t, err)
	assert.Equal(t, hod.ID, user.ID)

	// a token claiming PRINCIPAL for a stored FACULTY row is refused
	fac := &models.User{Email: "fac@school.edu", Role: models.RoleFaculty, Status: models.StatusApproved, IsActive: true}
	require.NoError(t, repos.Users.Create(ctx, fac))
	_, err = svc.RequireStoredRole(ctx, Identity{Role: models.RolePrincipal, UserID: fac.ID, ProfileID: 1}, "create courses", models.RoleHOD, models.RolePrincipal)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = svc.RequireStoredRole(ctx, Identity{Role: models.RoleHOD, UserID: 999, ProfileID: 1}, "create courses", models.RoleHOD)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
