package seed

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/repositories/memory"
	"github.com/yigit/schooladmin/internal/pkg/auth"
)

func TestCreateDefaultData(t *testing.T) {
	auth.BcryptCost = bcrypt.MinCost
	ctx := context.Background()
	store := memory.NewStore()

	require.NoError(t, CreateDefaultData(ctx, store, "Test School", zerolog.Nop()))

	repos := store.Repos()
	deps, err := repos.Departments.List(ctx)
	require.NoError(t, err)
	assert.Len(t, deps, 5)

	counts, err := repos.Users.CountApprovedByRole(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[models.RolePrincipal])
	assert.Equal(t, 2, counts[models.RoleHOD])
	assert.Equal(t, 4, counts[models.RoleFaculty])
	assert.Equal(t, 4, counts[models.RoleStudent])

	all, err := repos.Courses.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	hods, err := repos.Profiles.ListHODs(ctx)
	require.NoError(t, err)
	assert.Len(t, hods, 2)

	user, err := repos.Users.FindApprovedByIdentifier(ctx, "STU001")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(user.Password, DemoPassword))

	notes, err := repos.Notifications.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, notes)

	t.Run("second run is a no-op", func(t *testing.T) {
		require.NoError(t, CreateDefaultData(ctx, store, "Test School", zerolog.Nop()))
		deps, err := repos.Departments.List(ctx)
		require.NoError(t, err)
		assert.Len(t, deps, 5)
	})
}

func TestNextWeekday(t *testing.T) {
	monday := nextWeekday(time.Date(2026, 10, 14, 15, 0, 0, 0, time.UTC), time.Monday)
	assert.Equal(t, "2026-10-19", monday.Format("2006-01-02"))

	// Always strictly after the start day
	again := nextWeekday(monday, time.Monday)
	assert.Equal(t, "2026-10-26", again.Format("2006-01-02"))
}
