package memory

import (
	"context"

	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/repositories"
)

type profileRepository struct {
	s *Store
}

// findBy returns the first row matching keep
func findBy[T any](m map[int64]T, keep func(*T) bool) (*T, error) {
	for _, v := range m {
		v := v
		if keep(&v) {
			return &v, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func hasUser[T any](m map[int64]T, userID int64, userOf func(*T) int64) bool {
	_, err := findBy(m, func(v *T) bool { return userOf(v) == userID })
	return err == nil
}

func (r *profileRepository) CreateStudent(ctx context.Context, s *models.Student) error {
	return r.s.view(ctx, func(d *state) error {
		if hasUser(d.students, s.UserID, func(v *models.Student) int64 { return v.UserID }) {
			return duplicate(repositories.ConstraintProfileUserID)
		}
		s.ID = d.next("students")
		s.CreatedAt = r.s.now()
		d.students[s.ID] = *s
		return nil
	})
}

func (r *profileRepository) CreateFaculty(ctx context.Context, f *models.Faculty) error {
	return r.s.view(ctx, func(d *state) error {
		if hasUser(d.faculty, f.UserID, func(v *models.Faculty) int64 { return v.UserID }) {
			return duplicate(repositories.ConstraintProfileUserID)
		}
		f.ID = d.next("faculty")
		f.CreatedAt = r.s.now()
		d.faculty[f.ID] = *f
		return nil
	})
}

func (r *profileRepository) CreateHOD(ctx context.Context, h *models.HOD) error {
	return r.s.view(ctx, func(d *state) error {
		if hasUser(d.hods, h.UserID, func(v *models.HOD) int64 { return v.UserID }) {
			return duplicate(repositories.ConstraintProfileUserID)
		}
		if _, err := findBy(d.hods, func(v *models.HOD) bool { return v.DepartmentID == h.DepartmentID }); err == nil {
			return duplicate(repositories.ConstraintHODDepartment)
		}
		h.ID = d.next("hods")
		h.CreatedAt = r.s.now()
		d.hods[h.ID] = *h
		return nil
	})
}

func (r *profileRepository) CreatePrincipal(ctx context.Context, p *models.Principal) error {
	return r.s.view(ctx, func(d *state) error {
		if hasUser(d.principals, p.UserID, func(v *models.Principal) int64 { return v.UserID }) {
			return duplicate(repositories.ConstraintProfileUserID)
		}
		p.ID = d.next("principals")
		p.CreatedAt = r.s.now()
		d.principals[p.ID] = *p
		return nil
	})
}

func (r *profileRepository) GetStudentByUserID(ctx context.Context, userID int64) (s *models.Student, err error) {
	err = r.s.view(ctx, func(d *state) error {
		s, err = findBy(d.students, func(v *models.Student) bool { return v.UserID == userID })
		return err
	})
	return s, err
}

func (r *profileRepository) GetFacultyByUserID(ctx context.Context, userID int64) (f *models.Faculty, err error) {
	err = r.s.view(ctx, func(d *state) error {
		f, err = findBy(d.faculty, func(v *models.Faculty) bool { return v.UserID == userID })
		return err
	})
	return f, err
}

func (r *profileRepository) GetHODByUserID(ctx context.Context, userID int64) (h *models.HOD, err error) {
	err = r.s.view(ctx, func(d *state) error {
		h, err = findBy(d.hods, func(v *models.HOD) bool { return v.UserID == userID })
		return err
	})
	return h, err
}

func (r *profileRepository) GetPrincipalByUserID(ctx context.Context, userID int64) (p *models.Principal, err error) {
	err = r.s.view(ctx, func(d *state) error {
		p, err = findBy(d.principals, func(v *models.Principal) bool { return v.UserID == userID })
		return err
	})
	return p, err
}

func (r *profileRepository) GetStudentByID(ctx context.Context, id int64) (s *models.Student, err error) {
	err = r.s.view(ctx, func(d *state) error {
		s, err = get(d.students, id)
		return err
	})
	return s, err
}

func (r *profileRepository) GetFacultyByID(ctx context.Context, id int64) (f *models.Faculty, err error) {
	err = r.s.view(ctx, func(d *state) error {
		f, err = get(d.faculty, id)
		return err
	})
	return f, err
}

func (r *profileRepository) ListStudentsByIDs(ctx context.Context, ids []int64) (students []*models.Student, err error) {
	set := idSet(ids)
	err = r.s.view(ctx, func(d *state) error {
		students = list(d.students, func(v *models.Student) bool { return set[v.ID] },
			func(a, b *models.Student) bool { return a.ID < b.ID })
		return nil
	})
	return students, err
}

func (r *profileRepository) ListFaculty(ctx context.Context, departmentID *int64) (faculty []*models.Faculty, err error) {
	err = r.s.view(ctx, func(d *state) error {
		faculty = list(d.faculty, func(v *models.Faculty) bool {
			return departmentID == nil || (v.DepartmentID != nil && *v.DepartmentID == *departmentID)
		}, func(a, b *models.Faculty) bool { return a.ID < b.ID })
		return nil
	})
	return faculty, err
}

func (r *profileRepository) ListHODs(ctx context.Context) (hods []*models.HOD, err error) {
	err = r.s.view(ctx, func(d *state) error {
		hods = list(d.hods, nil, func(a, b *models.HOD) bool { return a.DepartmentID < b.DepartmentID })
		return nil
	})
	return hods, err
}
