package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/app/services"
	"github.com/yigit/schooladmin/internal/middleware"
)

// CommunicationController handles the calendar, announcements, notifications and reports
type CommunicationController struct {
	commService   *services.CommunicationService
	reportService *services.ReportService
	logger        zerolog.Logger
}

// NewCommunicationController creates a new CommunicationController
func NewCommunicationController(commService *services.CommunicationService, reportService *services.ReportService, logger zerolog.Logger) *CommunicationController {
	return &CommunicationController{
		commService:   commService,
		reportService: reportService,
		logger:        logger,
	}
}

// ListSchedule lists calendar entries visible to the caller
// @Summary List schedule
// @Tags schedule
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ScheduleListResponse}
// @Router /schedule [get]
func (c *CommunicationController) ListSchedule(ctx *gin.Context) {
	id, ok := caller(ctx)
	if !ok {
		return
	}
	resp, err := c.commService.ListSchedule(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, resp)
}

// CreateSchedule adds a calendar entry
// @Summary Create a schedule entry
// @Tags schedule
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateScheduleRequest true "Entry"
// @Success 201 {object} dto.APIResponse{data=models.Schedule}
// @Failure 403 {object} dto.ErrorResponse "Students cannot create entries"
// @Router /schedule [post]
func (c *CommunicationController) CreateSchedule(ctx *gin.Context) {
	id, ok := caller(ctx)
	if !ok {
		return
	}
	var req dto.CreateScheduleRequest
	if !bindJSON(ctx, &req) {
		return
	}

	resp, err := c.commService.CreateSchedule(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, resp)
}

// ListAnnouncements lists announcements for the caller's role
// @Summary List announcements
// @Tags announcements
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.AnnouncementListResponse}
// @Router /announcements [get]
func (c *CommunicationController) ListAnnouncements(ctx *gin.Context) {
	id, ok := caller(ctx)
	if !ok {
		return
	}
	resp, err := c.commService.ListAnnouncements(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, resp)
}

// CreateAnnouncement publishes an announcement
// @Summary Create an announcement
// @Tags announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateAnnouncementRequest true "Announcement"
// @Success 201 {object} dto.APIResponse{data=dto.AnnouncementResponse}
// @Failure 403 {object} dto.ErrorResponse "Students cannot announce"
// @Router /announcements [post]
func (c *CommunicationController) CreateAnnouncement(ctx *gin.Context) {
	id, ok := caller(ctx)
	if !ok {
		return
	}
	var req dto.CreateAnnouncementRequest
	if !bindJSON(ctx, &req) {
		return
	}

	resp, err := c.commService.CreateAnnouncement(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, resp)
}

// ListNotifications lists the caller's notifications
// @Summary List my notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.NotificationListResponse}
// @Router /notifications [get]
func (c *CommunicationController) ListNotifications(ctx *gin.Context) {
	id, ok := caller(ctx)
	if !ok {
		return
	}
	resp, err := c.commService.ListNotifications(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, resp)
}

// MarkNotificationRead marks a notification as read
// @Summary Mark a notification read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 404 {object} dto.ErrorResponse "Notification not found"
// @Router /notifications/{id}/read [post]
func (c *CommunicationController) MarkNotificationRead(ctx *gin.Context) {
	id, ok := caller(ctx)
	if !ok {
		return
	}
	notificationID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.commService.MarkNotificationRead(ctx.Request.Context(), id, notificationID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, dto.SuccessResponse{Message: "Notification marked as read"})
}

// Reports returns the report for the caller
// @Summary Get a report
// @Description type is student, faculty or overview and defaults to the caller's role.
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param type query string false "Report type"
// @Success 200 {object} dto.APIResponse{data=dto.ReportResponse}
// @Failure 400 {object} dto.ErrorResponse "Unknown report type"
// @Failure 403 {object} dto.ErrorResponse "Report not available for this role"
// @Router /reports [get]
func (c *CommunicationController) Reports(ctx *gin.Context) {
	id, ok := caller(ctx)
	if !ok {
		return
	}
	resp, err := c.reportService.GenerateReport(ctx.Request.Context(), id, ctx.Query("type"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, resp)
}
