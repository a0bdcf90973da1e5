package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/repositories"
)

// ErrProfileMissing is returned when an approved user has no profile row for its role
var ErrProfileMissing = errors.New("role profile missing")

// Identity is the authenticated caller. ProfileID refers to the profile table
// selected by Role and is zero for the operator.
type Identity struct {
	Role      models.RoleType
	UserID    int64
	ProfileID int64
}

// Admin returns the operator identity
func Admin() Identity {
	return Identity{Role: models.RoleAdmin}
}

// IsAdmin reports whether the caller is the operator
func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// Is reports whether the caller has one of roles
func (i Identity) Is(roles ...models.RoleType) bool {
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

// Profile is the role-specific extension of a user. Exactly one field is set.
type Profile struct {
	Student   *models.Student   `json:"student,omitempty"`
	Faculty   *models.Faculty   `json:"faculty,omitempty"`
	HOD       *models.HOD       `json:"hod,omitempty"`
	Principal *models.Principal `json:"principal,omitempty"`
}

// ID returns the primary key of whichever profile is set
func (p Profile) ID() int64 {
	switch {
	case p.Student != nil:
		return p.Student.ID
	case p.Faculty != nil:
		return p.Faculty.ID
	case p.HOD != nil:
		return p.HOD.ID
	case p.Principal != nil:
		return p.Principal.ID
	}
	return 0
}

// ResolveProfile loads the profile selected by the user's role
func ResolveProfile(ctx context.Context, profiles repositories.ProfileRepository, user *models.User) (Profile, error) {
	var (
		p   Profile
		err error
	)
	switch user.Role {
	case models.RoleStudent:
		p.Student, err = profiles.GetStudentByUserID(ctx, user.ID)
	case models.RoleFaculty:
		p.Faculty, err = profiles.GetFacultyByUserID(ctx, user.ID)
	case models.RoleHOD:
		p.HOD, err = profiles.GetHODByUserID(ctx, user.ID)
	case models.RolePrincipal:
		p.Principal, err = profiles.GetPrincipalByUserID(ctx, user.ID)
	default:
		return p, fmt.Errorf("unknown role %q", user.Role)
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return p, fmt.Errorf("%w: user %d (%s)", ErrProfileMissing, user.ID, user.Role)
	}
	return p, err
}

// NewIdentity builds the caller identity from a user and its resolved profile
func NewIdentity(user *models.User, profile Profile) Identity {
	return Identity{Role: user.Role, UserID: user.ID, ProfileID: profile.ID()}
}
