package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/app/services"
	"github.com/yigit/schooladmin/internal/middleware"
)

// AssignmentController handles assignments, submissions and grades
type AssignmentController struct {
	assignmentService *services.AssignmentService
	logger            zerolog.Logger
}

// NewAssignmentController creates a new AssignmentController
func NewAssignmentController(assignmentService *services.AssignmentService, logger zerolog.Logger) *AssignmentController {
	return &AssignmentController{assignmentService: assignmentService, logger: logger}
}

// ListAssignments lists assignments visible to the caller
// @Summary List assignments
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.AssignmentListResponse}
// @Router /assignments [get]
func (c *AssignmentController) ListAssignments(ctx *gin.Context) {
	id, ok := caller(ctx)
	if !ok {
		return
	}
	resp, err := c.assignmentService.ListAssignments(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, resp)
}

// CreateAssignment creates an assignment
// @Summary Create an assignment
// @Tags assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateAssignmentRequest true "Assignment"
// @Success 201 {object} dto.APIResponse{data=dto.AssignmentResponse}
// @Failure 400 {object} dto.ErrorResponse "Unknown course"
// @Failure 403 {object} dto.ErrorResponse "Only FACULTY"
// @Router /assignments [post]
func (c *AssignmentController) CreateAssignment(ctx *gin.Context) {
	id, ok := caller(ctx)
	if !ok {
		return
	}
	var req dto.CreateAssignmentRequest
	if !bindJSON(ctx, &req) {
		return
	}

	resp, err := c.assignmentService.CreateAssignment(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, resp)
}

// Submit stores the caller's submission
// @Summary Submit an assignment
// @Description Creates or replaces the caller's submission. Late submissions are accepted and flagged.
// @Tags assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Param request body dto.SubmitAssignmentRequest true "Submission"
// @Success 200 {object} dto.APIResponse{data=dto.SubmissionResponse}
// @Failure 404 {object} dto.ErrorResponse "Assignment not found"
// @Router /assignments/{id}/submit [post]
func (c *AssignmentController) Submit(ctx *gin.Context) {
	id, ok := caller(ctx)
	if !ok {
		return
	}
	assignmentID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.SubmitAssignmentRequest
	if !bindJSON(ctx, &req) {
		return
	}

	resp, err := c.assignmentService.SubmitAssignment(ctx.Request.Context(), id, assignmentID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, resp)
}

// ListSubmissions lists the submissions of one assignment
// @Summary List submissions
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Assignment ID"
// @Success 200 {object} dto.APIResponse{data=dto.SubmissionListResponse}
// @Failure 403 {object} dto.ErrorResponse "Not the assignment owner"
// @Router /assignments/{id}/submissions [get]
func (c *AssignmentController) ListSubmissions(ctx *gin.Context) {
	id, ok := caller(ctx)
	if !ok {
		return
	}
	assignmentID, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	resp, err := c.assignmentService.ListSubmissions(ctx.Request.Context(), id, assignmentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, resp)
}

// Grade grades a submission
// @Summary Grade a submission
// @Tags assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Submission ID"
// @Param request body dto.GradeSubmissionRequest true "Marks and feedback"
// @Success 200 {object} dto.APIResponse{data=dto.SubmissionResponse}
// @Failure 400 {object} dto.ErrorResponse "Marks out of range"
// @Failure 404 {object} dto.ErrorResponse "Submission not found"
// @Router /submissions/{id}/grade [post]
func (c *AssignmentController) Grade(ctx *gin.Context) {
	id, ok := caller(ctx)
	if !ok {
		return
	}
	submissionID, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.GradeSubmissionRequest
	if !bindJSON(ctx, &req) {
		return
	}

	resp, err := c.assignmentService.GradeSubmission(ctx.Request.Context(), id, submissionID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, resp)
}

// Grades lists the caller's grades
// @Summary List my grades
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Param courseId query int false "Only this course"
// @Success 200 {object} dto.APIResponse{data=dto.GradeListResponse}
// @Router /grades [get]
func (c *AssignmentController) Grades(ctx *gin.Context) {
	id, ok := caller(ctx)
	if !ok {
		return
	}
	courseID, ok := queryID(ctx, "courseId")
	if !ok {
		return
	}

	resp, err := c.assignmentService.FetchGrades(ctx.Request.Context(), id, courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, resp)
}
