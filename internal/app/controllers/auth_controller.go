package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/app/services"
	"github.com/yigit/schooladmin/internal/middleware"
	"github.com/yigit/schooladmin/internal/pkg/helpers"
)

// AuthController handles registration, login and the operator's approval workflow
type AuthController struct {
	authService *services.AuthService
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

// SignupStudent handles student self-registration
// @Summary Register a student
// @Description Creates an approved student account with its profile. The id field is the student ID.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.StudentSignupRequest true "Student registration information"
// @Success 201 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request or identifier already registered"
// @Router /signup/student [post]
func (c *AuthController) SignupStudent(ctx *gin.Context) {
	var req dto.StudentSignupRequest
	if !bindJSON(ctx, &req) {
		return
	}

	user, err := c.authService.RegisterStudent(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("email", req.Email).Msg("Student signup failed")
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, user)
}

// RequestSignup handles staff registration requests
// @Summary Request a staff account
// @Description Stores a pending FACULTY, HOD or PRINCIPAL account for operator approval. The id field is the employee ID.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.StaffSignupRequest true "Staff registration information"
// @Success 201 {object} dto.APIResponse{data=dto.SignupRequestResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request, role or identifier already registered"
// @Router /signup/request [post]
func (c *AuthController) RequestSignup(ctx *gin.Context) {
	var req dto.StaffSignupRequest
	if !bindJSON(ctx, &req) {
		return
	}

	resp, err := c.authService.RequestRegistration(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("email", req.Email).Msg("Staff signup request failed")
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, resp)
}

// Login authenticates a user
// @Summary Log in
// @Description Authenticates an approved user by e-mail, student ID or employee ID.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.APIResponse{data=dto.LoginResponse}
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Router /login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(ctx, &req) {
		return
	}

	resp, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, resp)
}

// RequestStatus reports the state of a registration
// @Summary Check registration status
// @Tags auth
// @Produce json
// @Param identifier path string true "E-mail, student ID or employee ID"
// @Success 200 {object} dto.APIResponse{data=dto.RequestStatusResponse}
// @Failure 404 {object} dto.ErrorResponse "No registration found"
// @Router /request-status/{identifier} [get]
func (c *AuthController) RequestStatus(ctx *gin.Context) {
	resp, err := c.authService.CheckRequestStatus(ctx.Request.Context(), ctx.Param("identifier"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, resp)
}

// AdminLogin authenticates the operator
// @Summary Operator login
// @Tags admin
// @Accept json
// @Produce json
// @Param request body dto.AdminLoginRequest true "Operator credentials"
// @Success 200 {object} dto.APIResponse{data=dto.AdminLoginResponse}
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Router /admin/login [post]
func (c *AuthController) AdminLogin(ctx *gin.Context) {
	var req dto.AdminLoginRequest
	if !bindJSON(ctx, &req) {
		return
	}

	resp, err := c.authService.AdminLogin(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, resp)
}

// PendingRequests lists staff requests awaiting a decision
// @Summary List pending requests
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.RequestSummary}
// @Router /admin/pending-requests [get]
func (c *AuthController) PendingRequests(ctx *gin.Context) {
	resp, err := c.authService.ListPendingRequests(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, resp)
}

// Approve approves a pending request
// @Summary Approve a request
// @Description Approves the request and creates the role profile. A HOD is assigned the first free department.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param requestId path int true "Request ID"
// @Success 200 {object} dto.APIResponse{data=dto.DecisionResponse}
// @Failure 400 {object} dto.ErrorResponse "Already processed or no available departments"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Router /admin/approve/{requestId} [post]
func (c *AuthController) Approve(ctx *gin.Context) {
	requestID, ok := pathID(ctx, "requestId")
	if !ok {
		return
	}

	resp, err := c.authService.ApproveRequest(ctx.Request.Context(), requestID)
	if err != nil {
		c.logger.Warn().Err(err).Int64("requestID", requestID).Msg("Approval failed")
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, resp)
}

// Reject rejects a pending request
// @Summary Reject a request
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param requestId path int true "Request ID"
// @Param request body dto.RejectRequest false "Optional reason"
// @Success 200 {object} dto.APIResponse{data=dto.DecisionResponse}
// @Failure 400 {object} dto.ErrorResponse "Already processed"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Router /admin/reject/{requestId} [post]
func (c *AuthController) Reject(ctx *gin.Context) {
	requestID, ok := pathID(ctx, "requestId")
	if !ok {
		return
	}
	var req dto.RejectRequest
	// The reason is optional, so an empty body of any transfer encoding is accepted
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	resp, err := c.authService.RejectRequest(ctx.Request.Context(), requestID, req.Reason)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, resp)
}

// ListUsers lists every user, paginated
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.UserListResponse}
// @Router /admin/users [get]
func (c *AuthController) ListUsers(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	resp, err := c.authService.ListUsers(ctx.Request.Context(), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, resp)
}

// RefreshToken exchanges a refresh token for a new token pair
// @Summary Refresh tokens
// @Description Rotates the refresh token. The presented token is revoked; presenting it again revokes every session of its owner.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.APIResponse{data=dto.LoginResponse}
// @Failure 401 {object} dto.ErrorResponse "Invalid, expired or revoked refresh token"
// @Router /token/refresh [post]
func (c *AuthController) RefreshToken(ctx *gin.Context) {
	var req dto.RefreshTokenRequest
	if !bindJSON(ctx, &req) {
		return
	}

	resp, err := c.authService.RefreshToken(ctx.Request.Context(), req.RefreshToken)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, resp)
}

// Logout revokes the caller's refresh token
// @Summary Log out
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RefreshTokenRequest true "Refresh token to revoke"
// @Success 200 {object} dto.APIResponse
// @Failure 401 {object} dto.ErrorResponse "Token does not belong to the caller"
// @Router /logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	id, ok := caller(ctx)
	if !ok {
		return
	}
	var req dto.RefreshTokenRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.authService.Logout(ctx.Request.Context(), id, req.RefreshToken); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the caller's account and profile
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ProfileResponse}
// @Failure 403 {object} dto.ErrorResponse "Operator account"
// @Router /me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	id, ok := caller(ctx)
	if !ok {
		return
	}
	resp, err := c.authService.GetProfile(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, resp)
}
