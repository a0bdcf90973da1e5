package models

import "time"

// Announcement is a message for one role, or for everybody when TargetRole is nil
type Announcement struct {
	ID         int64     `json:"id" db:"id"`
	Title      string    `json:"title" db:"title"`
	Content    string    `json:"content" db:"content"`
	AuthorID   int64     `json:"authorId" db:"author_id"`
	TargetRole *RoleType `json:"targetRole,omitempty" db:"target_role"`
	CourseID   *int64    `json:"courseId,omitempty" db:"course_id"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// NotificationType classifies per-user notifications
type NotificationType string

const (
	NotificationAccount    NotificationType = "ACCOUNT"
	NotificationAssignment NotificationType = "ASSIGNMENT"
	NotificationGrade      NotificationType = "GRADE"
	NotificationGeneral    NotificationType = "GENERAL"
)

// Notification is a per-user message record
type Notification struct {
	ID        int64            `json:"id" db:"id"`
	UserID    int64            `json:"userId" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	IsRead    bool             `json:"isRead" db:"is_read"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`
}
