package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/schooladmin/internal/app/auth"
	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/app/repositories"
	"github.com/yigit/schooladmin/internal/pkg/apperrors"
	"github.com/yigit/schooladmin/internal/pkg/helpers"
)

// CommunicationService manages the calendar, announcements and notifications
type CommunicationService struct {
	store  repositories.Store
	logger zerolog.Logger
}

// NewCommunicationService creates a new CommunicationService
func NewCommunicationService(store repositories.Store, logger zerolog.Logger) *CommunicationService {
	return &CommunicationService{store: store, logger: logger}
}

var staffRoles = []models.RoleType{models.RoleFaculty, models.RoleHOD, models.RolePrincipal}

// ListSchedule returns calendar entries: a student's courses, a faculty
// member's own entries, general entries, or everything for administrators.
func (s *CommunicationService) ListSchedule(ctx context.Context, id auth.Identity) (*dto.ScheduleListResponse, error) {
	repos := s.store.Repos()

	var filter *repositories.ScheduleFilter
	switch {
	case id.Role == models.RoleStudent:
		student, err := studentProfile(ctx, repos, id, "view the schedule")
		if err != nil {
			return nil, err
		}
		ids, err := enrolledCourseIDs(ctx, repos, student.ID)
		if err != nil {
			return nil, err
		}
		filter = &repositories.ScheduleFilter{CourseIDs: ids, IncludeGeneral: true}
	case id.Role == models.RoleFaculty:
		faculty, err := facultyProfile(ctx, repos, id, "view the schedule")
		if err != nil {
			return nil, err
		}
		filter = &repositories.ScheduleFilter{FacultyID: &faculty.ID, IncludeGeneral: true}
	case seesAll(id):
	default:
		return nil, auth.RequireRole(id, "view the schedule", models.RoleStudent, models.RoleFaculty, models.RoleHOD, models.RolePrincipal)
	}

	entries, err := repos.Schedules.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Str("role", string(id.Role)).Msg("Failed to list schedule")
		return nil, fmt.Errorf("failed to list schedule: %w", err)
	}
	out := make([]models.Schedule, len(entries))
	for i, e := range entries {
		out[i] = *e
	}
	return &dto.ScheduleListResponse{Schedules: out}, nil
}

// CreateSchedule adds a calendar entry. Entries created by faculty are
// attached to them; a course reference must exist.
func (s *CommunicationService) CreateSchedule(ctx context.Context, id auth.Identity, req *dto.CreateScheduleRequest) (*models.Schedule, error) {
	if err := auth.RequireRole(id, "create schedule entries", staffRoles...); err != nil {
		return nil, err
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, apperrors.NewValidationError("endTime", "endTime must be after startTime")
	}
	repos := s.store.Repos()

	entry := &models.Schedule{
		Title:     strings.TrimSpace(req.Title),
		Type:      req.Type,
		CourseID:  req.CourseID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		DayOfWeek: strings.ToUpper(strings.TrimSpace(req.DayOfWeek)),
		Location:  req.Location,
	}
	if !entry.Type.Valid() {
		return nil, apperrors.NewValidationError("type", fmt.Sprintf("unknown schedule type %q", req.Type))
	}
	if entry.DayOfWeek == "" {
		entry.DayOfWeek = helpers.DayOfWeek(entry.StartTime)
	}
	if id.Role == models.RoleFaculty {
		faculty, err := facultyProfile(ctx, repos, id, "create schedule entries")
		if err != nil {
			return nil, err
		}
		entry.FacultyID = &faculty.ID
	}
	if req.CourseID != nil {
		if _, err := repos.Courses.GetByID(ctx, *req.CourseID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, apperrors.WithCause(apperrors.ErrBadRequest, apperrors.ErrCourseNotFound,
					fmt.Sprintf("course %d not found", *req.CourseID))
			}
			return nil, fmt.Errorf("failed to get course: %w", err)
		}
	}

	if err := repos.Schedules.Create(ctx, entry); err != nil {
		s.logger.Error().Err(err).Msg("Failed to create schedule entry")
		return nil, fmt.Errorf("failed to create schedule entry: %w", err)
	}
	s.logger.Info().Int64("scheduleID", entry.ID).Str("type", string(entry.Type)).Msg("Schedule entry created")
	return entry, nil
}

// ListAnnouncements returns announcements for the caller's role plus global ones
func (s *CommunicationService) ListAnnouncements(ctx context.Context, id auth.Identity) (*dto.AnnouncementListResponse, error) {
	repos := s.store.Repos()

	var (
		items []*models.Announcement
		err   error
	)
	if id.IsAdmin() {
		items, err = repos.Announcements.ListAll(ctx)
	} else {
		items, err = repos.Announcements.ListForRole(ctx, id.Role)
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list announcements")
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}

	l := newLookup(repos)
	out := make([]dto.AnnouncementResponse, 0, len(items))
	for _, a := range items {
		out = append(out, dto.AnnouncementResponse{Announcement: *a, AuthorName: l.userName(ctx, a.AuthorID)})
	}
	return &dto.AnnouncementListResponse{Announcements: out}, nil
}

// CreateAnnouncement publishes an announcement authored by the caller
func (s *CommunicationService) CreateAnnouncement(ctx context.Context, id auth.Identity, req *dto.CreateAnnouncementRequest) (*dto.AnnouncementResponse, error) {
	if err := auth.RequireRole(id, "create announcements", staffRoles...); err != nil {
		return nil, err
	}
	if req.TargetRole != nil && !req.TargetRole.IsStaff() && *req.TargetRole != models.RoleStudent {
		return nil, apperrors.NewValidationError("targetRole", "targetRole must be one of STUDENT, FACULTY, HOD, PRINCIPAL")
	}
	repos := s.store.Repos()
	if req.CourseID != nil {
		if _, err := repos.Courses.GetByID(ctx, *req.CourseID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, apperrors.WithCause(apperrors.ErrBadRequest, apperrors.ErrCourseNotFound,
					fmt.Sprintf("course %d not found", *req.CourseID))
			}
			return nil, fmt.Errorf("failed to get course: %w", err)
		}
	}

	a := &models.Announcement{
		Title:      strings.TrimSpace(req.Title),
		Content:    req.Content,
		AuthorID:   id.UserID,
		TargetRole: req.TargetRole,
		CourseID:   req.CourseID,
	}
	if err := repos.Announcements.Create(ctx, a); err != nil {
		s.logger.Error().Err(err).Int64("authorID", id.UserID).Msg("Failed to create announcement")
		return nil, fmt.Errorf("failed to create announcement: %w", err)
	}
	s.logger.Info().Int64("announcementID", a.ID).Msg("Announcement created")
	return &dto.AnnouncementResponse{Announcement: *a, AuthorName: newLookup(repos).userName(ctx, a.AuthorID)}, nil
}

// ListNotifications returns the caller's notifications, newest first
func (s *CommunicationService) ListNotifications(ctx context.Context, id auth.Identity) (*dto.NotificationListResponse, error) {
	if id.IsAdmin() {
		return &dto.NotificationListResponse{Notifications: []models.Notification{}}, nil
	}
	items, err := s.store.Repos().Notifications.ListByUser(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	resp := &dto.NotificationListResponse{Notifications: make([]models.Notification, len(items))}
	for i, n := range items {
		resp.Notifications[i] = *n
		if !n.IsRead {
			resp.Unread++
		}
	}
	return resp, nil
}

// MarkNotificationRead marks one of the caller's notifications as read
func (s *CommunicationService) MarkNotificationRead(ctx context.Context, id auth.Identity, notificationID int64) error {
	repos := s.store.Repos()
	n, err := repos.Notifications.GetByID(ctx, notificationID)
	if err != nil {
		return notFound(err, apperrors.ErrResourceNotFound, "Notification not found")
	}
	if n.UserID != id.UserID {
		return apperrors.NewForbiddenError("you can only update your own notifications")
	}
	if err := repos.Notifications.MarkRead(ctx, n.ID); err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}
