package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/repositories"
)

var announcementColumns = []string{"id", "title", "content", "author_id", "target_role", "course_id", "created_at"}

// AnnouncementRepository handles database operations for announcements
type AnnouncementRepository struct {
	db querier
}

func scanAnnouncement(row scanner) (*models.Announcement, error) {
	a := &models.Announcement{}
	if err := row.Scan(&a.ID, &a.Title, &a.Content, &a.AuthorID, &a.TargetRole, &a.CourseID, &a.CreatedAt); err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts an announcement
func (r *AnnouncementRepository) Create(ctx context.Context, a *models.Announcement) error {
	sql, args, err := psql.Insert("announcements").
		Columns("title", "content", "author_id", "target_role", "course_id").
		Values(a.Title, a.Content, a.AuthorID, a.TargetRole, a.CourseID).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create announcement query: %w", err)
	}
	return translate(r.db.QueryRow(ctx, sql, args...).Scan(&a.ID, &a.CreatedAt))
}

// ListForRole returns announcements for role plus global ones, newest first
func (r *AnnouncementRepository) ListForRole(ctx context.Context, role models.RoleType) ([]*models.Announcement, error) {
	q := psql.Select(announcementColumns...).From("announcements").
		Where(squirrel.Or{squirrel.Eq{"target_role": role}, squirrel.Eq{"target_role": nil}}).
		OrderBy("created_at DESC", "id DESC")
	return queryList(ctx, r.db, q, scanAnnouncement)
}

// ListAll returns every announcement, newest first
func (r *AnnouncementRepository) ListAll(ctx context.Context) ([]*models.Announcement, error) {
	q := psql.Select(announcementColumns...).From("announcements").OrderBy("created_at DESC", "id DESC")
	return queryList(ctx, r.db, q, scanAnnouncement)
}

var notificationColumns = []string{"id", "user_id", "type", "title", "message", "is_read", "created_at"}

// NotificationRepository handles database operations for notifications
type NotificationRepository struct {
	db querier
}

func scanNotification(row scanner) (*models.Notification, error) {
	n := &models.Notification{}
	if err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
		return nil, err
	}
	return n, nil
}

// Create inserts a notification
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	sql, args, err := psql.Insert("notifications").
		Columns("user_id", "type", "title", "message", "is_read").
		Values(n.UserID, n.Type, n.Title, n.Message, n.IsRead).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create notification query: %w", err)
	}
	return translate(r.db.QueryRow(ctx, sql, args...).Scan(&n.ID, &n.CreatedAt))
}

// GetByID retrieves a notification
func (r *NotificationRepository) GetByID(ctx context.Context, id int64) (*models.Notification, error) {
	return queryOne(ctx, r.db, psql.Select(notificationColumns...).From("notifications").Where(squirrel.Eq{"id": id}), scanNotification)
}

// ListByUser lists a user's notifications, newest first
func (r *NotificationRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Notification, error) {
	q := psql.Select(notificationColumns...).From("notifications").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC")
	return queryList(ctx, r.db, q, scanNotification)
}

// MarkRead flags a notification as read
func (r *NotificationRepository) MarkRead(ctx context.Context, id int64) error {
	sql, args, err := psql.Update("notifications").Set("is_read", true).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build mark read query: %w", err)
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
