package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/schooladmin/internal/app/repositories"
	"github.com/yigit/schooladmin/internal/app/services"
	"github.com/yigit/schooladmin/internal/middleware"
)

// DirectoryController handles departments, faculty and classmates
type DirectoryController struct {
	directoryService *services.DirectoryService
	logger           zerolog.Logger
}

// NewDirectoryController creates a new DirectoryController
func NewDirectoryController(directoryService *services.DirectoryService, logger zerolog.Logger) *DirectoryController {
	return &DirectoryController{directoryService: directoryService, logger: logger}
}

// ListDepartments lists all departments
// @Summary List departments
// @Tags directory
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.DepartmentListResponse}
// @Router /departments [get]
func (c *DirectoryController) ListDepartments(ctx *gin.Context) {
	resp, err := c.directoryService.ListDepartments(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, resp)
}

// ListFaculty lists faculty members
// @Summary List faculty
// @Tags directory
// @Produce json
// @Security BearerAuth
// @Param departmentId query int false "Only this department"
// @Success 200 {object} dto.APIResponse{data=dto.FacultyListResponse}
// @Router /faculty [get]
func (c *DirectoryController) ListFaculty(ctx *gin.Context) {
	departmentID, ok := queryID(ctx, "departmentId")
	if !ok {
		return
	}
	resp, err := c.directoryService.ListFaculty(ctx.Request.Context(), departmentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, resp)
}

// ListClassmates lists students sharing a course with the caller
// @Summary List classmates
// @Tags directory
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ClassmateListResponse}
// @Failure 403 {object} dto.ErrorResponse "Only STUDENT"
// @Router /classmates [get]
func (c *DirectoryController) ListClassmates(ctx *gin.Context) {
	id, ok := caller(ctx)
	if !ok {
		return
	}
	resp, err := c.directoryService.ListClassmates(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, resp)
}

// HealthChecker reports whether an optional dependency is reachable
type HealthChecker interface {
	Healthy(ctx context.Context) bool
}

// HealthController reports the service health
type HealthController struct {
	store repositories.Store
	redis HealthChecker
}

// NewHealthController creates a new HealthController. redis may be nil.
func NewHealthController(store repositories.Store, redis HealthChecker) *HealthController {
	return &HealthController{store: store, redis: redis}
}

// Health reports database and redis reachability
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	dbHealthy := c.store.Ping(reqCtx) == nil
	body := gin.H{"status": "ok", "db": dbHealthy}
	healthy := dbHealthy
	if c.redis != nil {
		redisHealthy := c.redis.Healthy(reqCtx)
		body["redis"] = redisHealthy
		healthy = healthy && redisHealthy
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
	}
	ctx.JSON(status, body)
}
