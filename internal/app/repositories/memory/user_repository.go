package memory

import (
	"context"
	"time"

	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/repositories"
)

type userRepository struct {
	s *Store
}

func byUserID(a, b *models.User) bool { return a.ID < b.ID }

func matchesIdentifier(u *models.User, identifier string) bool {
	return u.Email == identifier ||
		(u.StudentID != nil && *u.StudentID == identifier) ||
		(u.EmployeeID != nil && *u.EmployeeID == identifier)
}

// approvedConflict mirrors the partial unique indexes on users
func approvedConflict(d *state, u *models.User) error {
	if u.Status != models.StatusApproved {
		return nil
	}
	for id, other := range d.users {
		if id == u.ID || other.Status != models.StatusApproved {
			continue
		}
		switch {
		case other.Email == u.Email:
			return duplicate(repositories.ConstraintUserEmail)
		case u.Phone != "" && other.Phone == u.Phone:
			return duplicate(repositories.ConstraintUserPhone)
		case u.StudentID != nil && other.StudentID != nil && *other.StudentID == *u.StudentID:
			return duplicate(repositories.ConstraintUserStudentID)
		case u.EmployeeID != nil && other.EmployeeID != nil && *other.EmployeeID == *u.EmployeeID:
			return duplicate(repositories.ConstraintUserEmployeeID)
		}
	}
	return nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.s.view(ctx, func(d *state) error {
		if err := approvedConflict(d, user); err != nil {
			return err
		}
		now := r.s.now()
		user.ID = d.next("users")
		user.CreatedAt = now
		user.UpdatedAt = now
		d.users[user.ID] = *user
		return nil
	})
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (u *models.User, err error) {
	err = r.s.view(ctx, func(d *state) error {
		u, err = get(d.users, id)
		return err
	})
	return u, err
}

func (r *userRepository) FindApprovedByIdentifier(ctx context.Context, identifier string) (u *models.User, err error) {
	err = r.s.view(ctx, func(d *state) error {
		found := list(d.users, func(u *models.User) bool {
			return u.Status == models.StatusApproved && matchesIdentifier(u, identifier)
		}, byUserID)
		if len(found) == 0 {
			return repositories.ErrNotFound
		}
		u = found[0]
		return nil
	})
	return u, err
}

func (r *userRepository) FindLatestByIdentifier(ctx context.Context, identifier string) (u *models.User, err error) {
	err = r.s.view(ctx, func(d *state) error {
		found := list(d.users, func(u *models.User) bool {
			return matchesIdentifier(u, identifier)
		}, func(a, b *models.User) bool {
			if a.CreatedAt.Equal(b.CreatedAt) {
				return a.ID > b.ID
			}
			return a.CreatedAt.After(b.CreatedAt)
		})
		if len(found) == 0 {
			return repositories.ErrNotFound
		}
		u = found[0]
		return nil
	})
	return u, err
}

func (r *userRepository) FindApprovedConflicts(ctx context.Context, ids repositories.Identifiers) (users []*models.User, err error) {
	err = r.s.view(ctx, func(d *state) error {
		users = list(d.users, func(u *models.User) bool {
			if u.Status != models.StatusApproved {
				return false
			}
			return u.Email == ids.Email ||
				(ids.Phone != "" && u.Phone == ids.Phone) ||
				(ids.StudentID != nil && u.StudentID != nil && *u.StudentID == *ids.StudentID) ||
				(ids.EmployeeID != nil && u.EmployeeID != nil && *u.EmployeeID == *ids.EmployeeID)
		}, byUserID)
		return nil
	})
	return users, err
}

func (r *userRepository) ListByStatus(ctx context.Context, status models.UserStatus) (users []*models.User, err error) {
	err = r.s.view(ctx, func(d *state) error {
		users = list(d.users, func(u *models.User) bool { return u.Status == status }, byUserID)
		return nil
	})
	return users, err
}

func (r *userRepository) ListAll(ctx context.Context) (users []*models.User, err error) {
	err = r.s.view(ctx, func(d *state) error {
		users = list(d.users, nil, byUserID)
		return nil
	})
	return users, err
}

func (r *userRepository) TransitionStatus(ctx context.Context, id int64, from, to models.UserStatus, reason *string) (changed bool, err error) {
	err = r.s.view(ctx, func(d *state) error {
		u, ok := d.users[id]
		if !ok || u.Status != from {
			return nil
		}
		u.Status = to
		u.RejectionReason = reason
		u.UpdatedAt = r.s.now()
		if err := approvedConflict(d, &u); err != nil {
			return err
		}
		d.users[id] = u
		changed = true
		return nil
	})
	return changed, err
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.s.view(ctx, func(d *state) error {
		u, ok := d.users[id]
		if !ok {
			return repositories.ErrNotFound
		}
		u.LastLoginAt = &at
		d.users[id] = u
		return nil
	})
}

func (r *userRepository) CountApprovedByRole(ctx context.Context) (map[models.RoleType]int, error) {
	counts := make(map[models.RoleType]int)
	err := r.s.view(ctx, func(d *state) error {
		for _, u := range d.users {
			if u.Status == models.StatusApproved {
				counts[u.Role]++
			}
		}
		return nil
	})
	return counts, err
}
