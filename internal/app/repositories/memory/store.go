// Package memory implements the repositories in process memory. It backs the
// "memory" database driver and the service tests, and enforces the same unique
// constraints as the PostgreSQL schema.
package memory

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/repositories"
)

type state struct {
	seq           map[string]int64
	users         map[int64]models.User
	students      map[int64]models.Student
	faculty       map[int64]models.Faculty
	hods          map[int64]models.HOD
	principals    map[int64]models.Principal
	departments   map[int64]models.Department
	courses       map[int64]models.Course
	enrollments   map[int64]models.Enrollment
	assignments   map[int64]models.Assignment
	submissions   map[int64]models.Submission
	schedules     map[int64]models.Schedule
	announcements map[int64]models.Announcement
	notifications map[int64]models.Notification
	tokens        map[int64]models.RefreshToken
}

func newState() *state {
	return &state{
		seq:           map[string]int64{},
		users:         map[int64]models.User{},
		students:      map[int64]models.Student{},
		faculty:       map[int64]models.Faculty{},
		hods:          map[int64]models.HOD{},
		principals:    map[int64]models.Principal{},
		departments:   map[int64]models.Department{},
		courses:       map[int64]models.Course{},
		enrollments:   map[int64]models.Enrollment{},
		assignments:   map[int64]models.Assignment{},
		submissions:   map[int64]models.Submission{},
		schedules:     map[int64]models.Schedule{},
		announcements: map[int64]models.Announcement{},
		notifications: map[int64]models.Notification{},
		tokens:        map[int64]models.RefreshToken{},
	}
}

// clone copies every table. Stored values are never mutated through their
// pointer fields, so a shallow copy per row is enough.
func (s *state) clone() *state {
	return &state{
		seq:           maps.Clone(s.seq),
		users:         maps.Clone(s.users),
		students:      maps.Clone(s.students),
		faculty:       maps.Clone(s.faculty),
		hods:          maps.Clone(s.hods),
		principals:    maps.Clone(s.principals),
		departments:   maps.Clone(s.departments),
		courses:       maps.Clone(s.courses),
		enrollments:   maps.Clone(s.enrollments),
		assignments:   maps.Clone(s.assignments),
		submissions:   maps.Clone(s.submissions),
		schedules:     maps.Clone(s.schedules),
		announcements: maps.Clone(s.announcements),
		notifications: maps.Clone(s.notifications),
		tokens:        maps.Clone(s.tokens),
	}
}

func (s *state) next(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

// Store is the in-memory repositories.Store. Transactions are serialized and
// rolled back by restoring a snapshot taken at their start. Writes outside a
// transaction wait for the running one to finish.
type Store struct {
	mu    sync.Mutex
	txMu  sync.Mutex
	data  *state
	now   func() time.Time
	repos *repositories.Repositories
}

// NewStore creates an empty store
func NewStore() *Store {
	s := &Store{data: newState(), now: time.Now}
	s.repos = &repositories.Repositories{
		Users:         &userRepository{s},
		Profiles:      &profileRepository{s},
		Departments:   &departmentRepository{s},
		Courses:       &courseRepository{s},
		Enrollments:   &enrollmentRepository{s},
		Assignments:   &assignmentRepository{s},
		Submissions:   &submissionRepository{s},
		Schedules:     &scheduleRepository{s},
		Announcements: &announcementRepository{s},
		Notifications: &notificationRepository{s},
		Tokens:        &tokenRepository{s},
	}
	return s
}

// Repos returns the repositories
func (s *Store) Repos() *repositories.Repositories {
	return s.repos
}

// WithTx runs fn atomically with respect to other transactions
func (s *Store) WithTx(ctx context.Context, fn repositories.TxFn) (err error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.restore(snapshot)
			panic(r)
		}
		if err != nil {
			s.restore(snapshot)
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(context.WithValue(ctx, txKey{}, s), s.repos)
}

func (s *Store) restore(snapshot *state) {
	s.mu.Lock()
	s.data = snapshot
	s.mu.Unlock()
}

// Ping always succeeds
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op
func (s *Store) Close() {}

type txKey struct{}

// view runs fn under the data lock. Calls made outside WithTx also take the
// transaction lock so a rollback cannot discard them.
func (s *Store) view(ctx context.Context, fn func(d *state) error) error {
	if ctx.Value(txKey{}) != s {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// list copies the values of m that match keep, ordered by less
func list[T any](m map[int64]T, keep func(*T) bool, less func(a, b *T) bool) []*T {
	out := make([]*T, 0, len(m))
	for _, v := range m {
		v := v
		if keep == nil || keep(&v) {
			out = append(out, &v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// get copies one row or returns ErrNotFound
func get[T any](m map[int64]T, id int64) (*T, error) {
	v, ok := m[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &v, nil
}

func idSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func duplicate(constraint string) error {
	return &repositories.DuplicateError{Constraint: constraint}
}
