// Package postgres implements the repositories on PostgreSQL with pgx and squirrel.
package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yigit/schooladmin/internal/app/repositories"
	"github.com/yigit/schooladmin/internal/db"
	"github.com/yigit/schooladmin/internal/pkg/dberrors"
)

// querier is satisfied by *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// psql is the shared statement builder with $n placeholders
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Store is the PostgreSQL backed repositories.Store
type Store struct {
	db    *db.PostgresDB
	repos *repositories.Repositories
}

// NewStore wires repositories over the pool
func NewStore(database *db.PostgresDB) *Store {
	return &Store{
		db:    database,
		repos: newRepositories(database.Pool),
	}
}

func newRepositories(q querier) *repositories.Repositories {
	return &repositories.Repositories{
		Users:         &UserRepository{db: q},
		Profiles:      &ProfileRepository{db: q},
		Departments:   &DepartmentRepository{db: q},
		Courses:       &CourseRepository{db: q},
		Enrollments:   &EnrollmentRepository{db: q},
		Assignments:   &AssignmentRepository{db: q},
		Submissions:   &SubmissionRepository{db: q},
		Schedules:     &ScheduleRepository{db: q},
		Announcements: &AnnouncementRepository{db: q},
		Notifications: &NotificationRepository{db: q},
		Tokens:        &TokenRepository{db: q},
	}
}

// Repos returns pool-bound repositories
func (s *Store) Repos() *repositories.Repositories {
	return s.repos
}

// WithTx runs fn with repositories bound to a single transaction
func (s *Store) WithTx(ctx context.Context, fn repositories.TxFn) error {
	return s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, newRepositories(tx))
	})
}

// Ping checks database connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Pool.Ping(ctx)
}

// Close releases the pool
func (s *Store) Close() {
	s.db.Close()
}

// translate maps driver errors onto repository errors
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repositories.ErrNotFound
	}
	if constraint, ok := dberrors.IsUniqueViolation(err); ok {
		if strings.HasSuffix(constraint, "_user_id_key") {
			constraint = repositories.ConstraintProfileUserID
		}
		return &repositories.DuplicateError{Constraint: constraint}
	}
	return err
}

// collect scans every row with scan and closes rows
func collect[T any](rows pgx.Rows, scan func(scanner) (*T, error)) ([]*T, error) {
	defer rows.Close()

	items := make([]*T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// queryList builds and runs a select, scanning every row
func queryList[T any](ctx context.Context, q querier, b squirrel.SelectBuilder, scan func(scanner) (*T, error)) ([]*T, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, translate(err)
	}
	return collect(rows, scan)
}

// queryOne builds and runs a select expected to return one row
func queryOne[T any](ctx context.Context, q querier, b squirrel.SelectBuilder, scan func(scanner) (*T, error)) (*T, error) {
	sql, args, err := b.Limit(1).ToSql()
	if err != nil {
		return nil, err
	}
	item, err := scan(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, translate(err)
	}
	return item, nil
}

// countBy runs "SELECT key, COUNT(*) ... GROUP BY key" into a map
func countBy[K ~string](ctx context.Context, q querier, b squirrel.SelectBuilder) (map[K]int, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	counts := make(map[K]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		counts[K(key)] = n
	}
	return counts, rows.Err()
}
