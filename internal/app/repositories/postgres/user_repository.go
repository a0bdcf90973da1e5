package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/repositories"
)

var userColumns = []string{
	"id", "first_name", "last_name", "email", "phone", "student_id", "employee_id", "password",
	"role", "status", "is_active", "last_login_at", "rejection_reason", "created_at", "updated_at",
}

// UserRepository handles user database operations
type UserRepository struct {
	db querier
}

func scanUser(row scanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.StudentID, &u.EmployeeID, &u.Password,
		&u.Role, &u.Status, &u.IsActive, &u.LastLoginAt, &u.RejectionReason, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func identifierMatch(identifier string) squirrel.Or {
	return squirrel.Or{
		squirrel.Eq{"email": identifier},
		squirrel.Eq{"student_id": identifier},
		squirrel.Eq{"employee_id": identifier},
	}
}

// Create inserts a user and fills ID and timestamps
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	sql, args, err := psql.Insert("users").
		Columns("first_name", "last_name", "email", "phone", "student_id", "employee_id", "password",
			"role", "status", "is_active", "last_login_at").
		Values(user.FirstName, user.LastName, user.Email, user.Phone, user.StudentID, user.EmployeeID, user.Password,
			user.Role, user.Status, user.IsActive, user.LastLoginAt).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return translate(err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return queryOne(ctx, r.db, psql.Select(userColumns...).From("users").Where(squirrel.Eq{"id": id}), scanUser)
}

// FindApprovedByIdentifier finds an approved user by email, student ID or employee ID
func (r *UserRepository) FindApprovedByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	q := psql.Select(userColumns...).From("users").
		Where(squirrel.Eq{"status": models.StatusApproved}).
		Where(identifierMatch(identifier)).
		OrderBy("id")
	return queryOne(ctx, r.db, q, scanUser)
}

// FindLatestByIdentifier finds the newest user of any status by identifier
func (r *UserRepository) FindLatestByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	q := psql.Select(userColumns...).From("users").
		Where(identifierMatch(identifier)).
		OrderBy("created_at DESC", "id DESC")
	return queryOne(ctx, r.db, q, scanUser)
}

// FindApprovedConflicts returns approved users sharing any identifier in ids
func (r *UserRepository) FindApprovedConflicts(ctx context.Context, ids repositories.Identifiers) ([]*models.User, error) {
	or := squirrel.Or{squirrel.Eq{"email": ids.Email}}
	if ids.Phone != "" {
		or = append(or, squirrel.Eq{"phone": ids.Phone})
	}
	if ids.StudentID != nil {
		or = append(or, squirrel.Eq{"student_id": *ids.StudentID})
	}
	if ids.EmployeeID != nil {
		or = append(or, squirrel.Eq{"employee_id": *ids.EmployeeID})
	}

	q := psql.Select(userColumns...).From("users").
		Where(squirrel.Eq{"status": models.StatusApproved}).
		Where(or).
		OrderBy("id")
	return queryList(ctx, r.db, q, scanUser)
}

// ListByStatus lists users in a status, oldest first
func (r *UserRepository) ListByStatus(ctx context.Context, status models.UserStatus) ([]*models.User, error) {
	q := psql.Select(userColumns...).From("users").Where(squirrel.Eq{"status": status}).OrderBy("created_at", "id")
	return queryList(ctx, r.db, q, scanUser)
}

// ListAll lists every user
func (r *UserRepository) ListAll(ctx context.Context) ([]*models.User, error) {
	return queryList(ctx, r.db, psql.Select(userColumns...).From("users").OrderBy("id"), scanUser)
}

// TransitionStatus changes status only when the row is still in from
func (r *UserRepository) TransitionStatus(ctx context.Context, id int64, from, to models.UserStatus, reason *string) (bool, error) {
	sql, args, err := psql.Update("users").
		Set("status", to).
		Set("rejection_reason", reason).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": from}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build transition query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, translate(err)
	}
	return tag.RowsAffected() == 1, nil
}

// UpdateLastLogin records a login timestamp
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	sql, args, err := psql.Update("users").
		Set("last_login_at", at).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build last login query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// CountApprovedByRole counts approved users grouped by role
func (r *UserRepository) CountApprovedByRole(ctx context.Context) (map[models.RoleType]int, error) {
	q := psql.Select("role", "COUNT(*)").From("users").
		Where(squirrel.Eq{"status": models.StatusApproved}).
		GroupBy("role")
	return countBy[models.RoleType](ctx, r.db, q)
}
