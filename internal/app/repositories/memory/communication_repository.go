package memory

import (
	"context"

	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/repositories"
)

type scheduleRepository struct {
	s *Store
}

func (r *scheduleRepository) Create(ctx context.Context, sch *models.Schedule) error {
	return r.s.view(ctx, func(d *state) error {
		sch.ID = d.next("schedules")
		sch.CreatedAt = r.s.now()
		d.schedules[sch.ID] = *sch
		return nil
	})
}

func (r *scheduleRepository) List(ctx context.Context, filter *repositories.ScheduleFilter) (out []*models.Schedule, err error) {
	var courses map[int64]bool
	if filter != nil {
		courses = idSet(filter.CourseIDs)
	}
	err = r.s.view(ctx, func(d *state) error {
		out = list(d.schedules, func(v *models.Schedule) bool {
			if filter == nil {
				return true
			}
			switch {
			case v.CourseID != nil && courses[*v.CourseID]:
				return true
			case filter.FacultyID != nil && v.FacultyID != nil && *v.FacultyID == *filter.FacultyID:
				return true
			case filter.IncludeGeneral && v.IsGeneral():
				return true
			}
			return false
		}, func(a, b *models.Schedule) bool {
			if a.StartTime.Equal(b.StartTime) {
				return a.ID < b.ID
			}
			return a.StartTime.Before(b.StartTime)
		})
		return nil
	})
	return out, err
}

type announcementRepository struct {
	s *Store
}

func newestAnnouncement(a, b *models.Announcement) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID > b.ID
	}
	return a.CreatedAt.After(b.CreatedAt)
}

func (r *announcementRepository) Create(ctx context.Context, a *models.Announcement) error {
	return r.s.view(ctx, func(d *state) error {
		a.ID = d.next("announcements")
		a.CreatedAt = r.s.now()
		d.announcements[a.ID] = *a
		return nil
	})
}

func (r *announcementRepository) ListForRole(ctx context.Context, role models.RoleType) (out []*models.Announcement, err error) {
	err = r.s.view(ctx, func(d *state) error {
		out = list(d.announcements, func(v *models.Announcement) bool {
			return v.TargetRole == nil || *v.TargetRole == role
		}, newestAnnouncement)
		return nil
	})
	return out, err
}

func (r *announcementRepository) ListAll(ctx context.Context) (out []*models.Announcement, err error) {
	err = r.s.view(ctx, func(d *state) error {
		out = list(d.announcements, nil, newestAnnouncement)
		return nil
	})
	return out, err
}

type notificationRepository struct {
	s *Store
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.s.view(ctx, func(d *state) error {
		n.ID = d.next("notifications")
		n.CreatedAt = r.s.now()
		d.notifications[n.ID] = *n
		return nil
	})
}

func (r *notificationRepository) GetByID(ctx context.Context, id int64) (n *models.Notification, err error) {
	err = r.s.view(ctx, func(d *state) error {
		n, err = get(d.notifications, id)
		return err
	})
	return n, err
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID int64) (out []*models.Notification, err error) {
	err = r.s.view(ctx, func(d *state) error {
		out = list(d.notifications, func(v *models.Notification) bool { return v.UserID == userID },
			func(a, b *models.Notification) bool {
				if a.CreatedAt.Equal(b.CreatedAt) {
					return a.ID > b.ID
				}
				return a.CreatedAt.After(b.CreatedAt)
			})
		return nil
	})
	return out, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, id int64) error {
	return r.s.view(ctx, func(d *state) error {
		n, ok := d.notifications[id]
		if !ok {
			return repositories.ErrNotFound
		}
		n.IsRead = true
		d.notifications[id] = n
		return nil
	})
}
