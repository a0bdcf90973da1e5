package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/app/services"
	"github.com/yigit/schooladmin/internal/middleware"
)

// CourseController handles courses and enrollments
type CourseController struct {
	courseService *services.CourseService
	logger        zerolog.Logger
}

// NewCourseController creates a new CourseController
func NewCourseController(courseService *services.CourseService, logger zerolog.Logger) *CourseController {
	return &CourseController{courseService: courseService, logger: logger}
}

// ListCourses lists the courses visible to the caller
// @Summary List courses
// @Description Students see their enrollments, faculty their teaching load, HOD and principal everything.
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.CourseListResponse}
// @Router /courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	id, ok := caller(ctx)
	if !ok {
		return
	}
	resp, err := c.courseService.ListCourses(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, resp)
}

// CreateCourse creates a course
// @Summary Create a course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCourseRequest true "Course"
// @Success 201 {object} dto.APIResponse{data=dto.CourseResponse}
// @Failure 400 {object} dto.ErrorResponse "Unknown faculty or department, or duplicate code"
// @Failure 403 {object} dto.ErrorResponse "Only HOD or PRINCIPAL"
// @Router /courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	id, ok := caller(ctx)
	if !ok {
		return
	}
	var req dto.CreateCourseRequest
	if !bindJSON(ctx, &req) {
		return
	}

	resp, err := c.courseService.CreateCourse(ctx.Request.Context(), id, &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("code", req.Code).Msg("Course creation failed")
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, resp)
}

// Enroll enrolls the calling student in a course
// @Summary Enroll in a course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.EnrollRequest true "Course to join"
// @Success 201 {object} dto.APIResponse{data=dto.EnrollmentResponse}
// @Failure 400 {object} dto.ErrorResponse "Already enrolled"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /enrollments [post]
func (c *CourseController) Enroll(ctx *gin.Context) {
	id, ok := caller(ctx)
	if !ok {
		return
	}
	var req dto.EnrollRequest
	if !bindJSON(ctx, &req) {
		return
	}

	resp, err := c.courseService.Enroll(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, resp)
}
