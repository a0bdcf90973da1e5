package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/schooladmin/internal/app/auth"
	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/app/repositories"
	"github.com/yigit/schooladmin/internal/metrics"
	"github.com/yigit/schooladmin/internal/pkg/apperrors"
	pkgauth "github.com/yigit/schooladmin/internal/pkg/auth"
	"github.com/yigit/schooladmin/internal/pkg/email"
	"github.com/yigit/schooladmin/internal/pkg/helpers"
)

// DefaultRejectionReason is stored when the operator rejects without a reason
const DefaultRejectionReason = "Request rejected by administrator"

// AccountConfig holds the operator credential and profile defaults
type AccountConfig struct {
	AdminID            string
	AdminPasswordHash  string
	DefaultDesignation string
	Institution        string
}

// AuthService handles registration, the approval workflow and login
type AuthService struct {
	store      repositories.Store
	jwtService *pkgauth.JWTService
	mailer     email.EmailService
	config     AccountConfig
	logger     zerolog.Logger
	now        func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	store repositories.Store,
	jwtService *pkgauth.JWTService,
	mailer email.EmailService,
	config AccountConfig,
	logger zerolog.Logger,
) *AuthService {
	if config.DefaultDesignation == "" {
		config.DefaultDesignation = "Assistant Professor"
	}
	return &AuthService{
		store:      store,
		jwtService: jwtService,
		mailer:     mailer,
		config:     config,
		logger:     logger,
		now:        time.Now,
	}
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

// normalizeIdentifier lowercases e-mail identifiers and keeps IDs as given
func normalizeIdentifier(identifier string) string {
	identifier = strings.TrimSpace(identifier)
	if strings.Contains(identifier, "@") {
		return strings.ToLower(identifier)
	}
	return identifier
}

// conflictFor picks the reason reported for colliding approved users.
// E-mail wins over phone, phone over IDs.
func conflictFor(users []*models.User, ids repositories.Identifiers) error {
	var phone, id bool
	for _, u := range users {
		if u.Email == ids.Email {
			return apperrors.WithCause(apperrors.ErrConflict, apperrors.ErrEmailAlreadyExists, "Email already registered")
		}
		if ids.Phone != "" && u.Phone == ids.Phone {
			phone = true
		}
		if (ids.StudentID != nil && u.StudentID != nil && *u.StudentID == *ids.StudentID) ||
			(ids.EmployeeID != nil && u.EmployeeID != nil && *u.EmployeeID == *ids.EmployeeID) {
			id = true
		}
	}
	switch {
	case phone:
		return apperrors.WithCause(apperrors.ErrConflict, apperrors.ErrPhoneAlreadyExists, "Phone number already registered")
	case id:
		return apperrors.WithCause(apperrors.ErrConflict, apperrors.ErrIdentifierExists, "ID already registered")
	}
	return nil
}

func (s *AuthService) checkConflicts(ctx context.Context, repos *repositories.Repositories, ids repositories.Identifiers) error {
	users, err := repos.Users.FindApprovedConflicts(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to check existing users: %w", err)
	}
	return conflictFor(users, ids)
}

// RegisterStudent creates an approved student account with its profile
func (s *AuthService) RegisterStudent(ctx context.Context, req *dto.StudentSignupRequest) (*dto.UserResponse, error) {
	hashed, err := pkgauth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	studentID := strings.TrimSpace(req.ID)
	user := &models.User{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     normalizeEmail(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		StudentID: &studentID,
		Password:  hashed,
		Role:      models.RoleStudent,
		Status:    models.StatusApproved,
		IsActive:  true,
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
		// The ID is also checked against employee IDs so a login identifier
		// never resolves to two accounts.
		ids := repositories.Identifiers{Email: user.Email, StudentID: &studentID, EmployeeID: &studentID}
		if err := s.checkConflicts(ctx, repos, ids); err != nil {
			return err
		}
		if err := repos.Users.Create(ctx, user); err != nil {
			return conflictFromDuplicate(err)
		}
		return repos.Profiles.CreateStudent(ctx, &models.Student{
			UserID:     user.ID,
			RollNumber: studentID,
			Semester:   1,
		})
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			s.logger.Error().Err(err).Str("email", user.Email).Msg("Failed to register student")
		}
		return nil, fmt.Errorf("failed to register student: %w", err)
	}

	metrics.AccountDecision(string(models.RoleStudent), metrics.ResultRegistered)
	s.logger.Info().Int64("userID", user.ID).Str("studentID", studentID).Msg("Student registered")
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// RequestRegistration stores a pending staff account awaiting operator approval
func (s *AuthService) RequestRegistration(ctx context.Context, req *dto.StaffSignupRequest) (*dto.SignupRequestResponse, error) {
	if !req.Role.IsStaff() {
		return nil, apperrors.NewValidationError("role", "role must be one of FACULTY, HOD, PRINCIPAL")
	}

	employeeID := strings.TrimSpace(req.ID)
	user := &models.User{
		FirstName:  strings.TrimSpace(req.FirstName),
		LastName:   strings.TrimSpace(req.LastName),
		Email:      normalizeEmail(req.Email),
		Phone:      strings.TrimSpace(req.Phone),
		EmployeeID: &employeeID,
		Role:       req.Role,
		Status:     models.StatusPending,
		IsActive:   true,
	}

	ids := repositories.Identifiers{
		Email:      user.Email,
		Phone:      user.Phone,
		StudentID:  &employeeID,
		EmployeeID: &employeeID,
	}
	repos := s.store.Repos()
	if err := s.checkConflicts(ctx, repos, ids); err != nil {
		return nil, err
	}

	hashed, err := pkgauth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = hashed

	if err := repos.Users.Create(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("email", user.Email).Msg("Failed to store registration request")
		return nil, fmt.Errorf("failed to store registration request: %w", err)
	}

	metrics.AccountDecision(string(user.Role), metrics.ResultRequested)
	s.logger.Info().Int64("requestID", user.ID).Str("role", string(user.Role)).Msg("Registration request submitted")
	return &dto.SignupRequestResponse{
		RequestID: user.ID,
		Status:    user.Status,
		Message:   "Registration request submitted. You can log in once an administrator approves it.",
	}, nil
}

// AdminLogin checks the operator credential and issues an ADMIN token
func (s *AuthService) AdminLogin(ctx context.Context, req *dto.AdminLoginRequest) (*dto.AdminLoginResponse, error) {
	invalid := apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Invalid admin credentials")
	if s.config.AdminID == "" || s.config.AdminPasswordHash == "" {
		s.logger.Warn().Msg("Admin login attempted but no admin credential is configured")
		return nil, invalid
	}
	idMatch := subtle.ConstantTimeCompare([]byte(req.ID), []byte(s.config.AdminID)) == 1
	if !pkgauth.CheckPassword(s.config.AdminPasswordHash, req.Password) || !idMatch {
		s.logger.Warn().Str("id", req.ID).Msg("Failed admin login")
		return nil, invalid
	}

	token, expiresIn, err := s.jwtService.GenerateToken(0, models.RoleAdmin, 0)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate admin token")
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &dto.AdminLoginResponse{
		Token: dto.NewTokenResponse(token, expiresIn),
		Role:  string(models.RoleAdmin),
	}, nil
}

// ListPendingRequests returns the staff requests awaiting a decision
func (s *AuthService) ListPendingRequests(ctx context.Context) ([]dto.RequestSummary, error) {
	users, err := s.store.Repos().Users.ListByStatus(ctx, models.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	out := make([]dto.RequestSummary, 0, len(users))
	for _, u := range users {
		out = append(out, dto.NewRequestSummary(u))
	}
	return out, nil
}

// loadPending fetches a request that is still awaiting a decision
func loadPending(ctx context.Context, repos *repositories.Repositories, requestID int64) (*models.User, error) {
	user, err := repos.Users.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.WithCause(apperrors.ErrResourceNotFound, apperrors.ErrRequestNotFound, "Request not found")
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	if user.Status != models.StatusPending {
		return nil, requestProcessed()
	}
	return user, nil
}

func requestProcessed() error {
	return apperrors.WithCause(apperrors.ErrInvalidState, apperrors.ErrRequestProcessed, "Request has already been processed")
}

// ApproveRequest approves a pending staff request and creates its profile.
// Everything runs in one transaction; a HOD with no free department leaves
// the request pending.
func (s *AuthService) ApproveRequest(ctx context.Context, requestID int64) (*dto.DecisionResponse, error) {
	var (
		user         *models.User
		departmentID *int64
	)
	err := s.store.WithTx(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
		var err error
		if user, err = loadPending(ctx, repos, requestID); err != nil {
			return err
		}
		// Accounts approved while this request waited may now hold its identifiers
		ids := repositories.Identifiers{
			Email:      user.Email,
			Phone:      user.Phone,
			StudentID:  user.EmployeeID,
			EmployeeID: user.EmployeeID,
		}
		if err := s.checkConflicts(ctx, repos, ids); err != nil {
			return err
		}
		changed, err := repos.Users.TransitionStatus(ctx, user.ID, models.StatusPending, models.StatusApproved, nil)
		if err != nil {
			return conflictFromDuplicate(err)
		}
		if !changed {
			return requestProcessed()
		}
		now := s.now()
		if err := repos.Users.UpdateLastLogin(ctx, user.ID, now); err != nil {
			return fmt.Errorf("failed to update last login: %w", err)
		}

		if departmentID, err = s.createStaffProfile(ctx, repos, user); err != nil {
			return err
		}

		return repos.Notifications.Create(ctx, &models.Notification{
			UserID:  user.ID,
			Type:    models.NotificationAccount,
			Title:   "Account approved",
			Message: fmt.Sprintf("Your %s account has been approved. You can now log in.", user.Role),
		})
	})
	if err != nil {
		if user != nil {
			metrics.AccountDecision(string(user.Role), metrics.ResultFailed)
		}
		if !apperrors.Is(err, apperrors.ErrInvalidState, apperrors.ErrResourceNotFound, apperrors.ErrNoAvailableDepartment, apperrors.ErrConflict) {
			s.logger.Error().Err(err).Int64("requestID", requestID).Msg("Failed to approve request")
		}
		return nil, fmt.Errorf("failed to approve request: %w", err)
	}

	metrics.AccountDecision(string(user.Role), metrics.ResultApproved)
	s.logger.Info().Int64("requestID", requestID).Str("role", string(user.Role)).Msg("Request approved")
	if err := s.mailer.SendApprovalEmail(user.Email, user.FullName(), string(user.Role)); err != nil {
		s.logger.Warn().Err(err).Int64("requestID", requestID).Msg("Failed to send approval email")
	}

	return &dto.DecisionResponse{
		RequestID:    user.ID,
		Status:       models.StatusApproved,
		Role:         user.Role,
		DepartmentID: departmentID,
		Message:      "Request approved",
	}, nil
}

// createStaffProfile inserts the profile row for an approved staff user and
// returns the claimed department for a HOD
func (s *AuthService) createStaffProfile(ctx context.Context, repos *repositories.Repositories, user *models.User) (*int64, error) {
	switch user.Role {
	case models.RoleFaculty:
		return nil, repos.Profiles.CreateFaculty(ctx, &models.Faculty{
			UserID:      user.ID,
			Designation: s.config.DefaultDesignation,
		})
	case models.RoleHOD:
		dep, err := repos.Departments.ClaimForHOD(ctx)
		if err != nil {
			if errors.Is(err, repositories.ErrNoAvailableDepartment) {
				return nil, apperrors.ErrNoAvailableDepartment
			}
			return nil, fmt.Errorf("failed to claim department: %w", err)
		}
		err = repos.Profiles.CreateHOD(ctx, &models.HOD{UserID: user.ID, DepartmentID: dep.ID})
		var dup *repositories.DuplicateError
		if errors.As(err, &dup) && dup.Constraint == repositories.ConstraintHODDepartment {
			return nil, apperrors.ErrNoAvailableDepartment
		}
		if err != nil {
			return nil, err
		}
		return &dep.ID, nil
	case models.RolePrincipal:
		return nil, repos.Profiles.CreatePrincipal(ctx, &models.Principal{
			UserID:      user.ID,
			Institution: s.config.Institution,
		})
	}
	return nil, apperrors.NewInvalidStateError(fmt.Sprintf("role %s cannot be approved", user.Role))
}

// RejectRequest rejects a pending staff request
func (s *AuthService) RejectRequest(ctx context.Context, requestID int64, reason *string) (*dto.DecisionResponse, error) {
	text := DefaultRejectionReason
	if reason != nil && strings.TrimSpace(*reason) != "" {
		text = strings.TrimSpace(*reason)
	}

	var user *models.User
	err := s.store.WithTx(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
		var err error
		if user, err = loadPending(ctx, repos, requestID); err != nil {
			return err
		}
		changed, err := repos.Users.TransitionStatus(ctx, user.ID, models.StatusPending, models.StatusRejected, &text)
		if err != nil {
			return fmt.Errorf("failed to reject request: %w", err)
		}
		if !changed {
			return requestProcessed()
		}
		return nil
	})
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrInvalidState, apperrors.ErrResourceNotFound) {
			s.logger.Error().Err(err).Int64("requestID", requestID).Msg("Failed to reject request")
		}
		return nil, err
	}

	metrics.AccountDecision(string(user.Role), metrics.ResultRejected)
	s.logger.Info().Int64("requestID", requestID).Str("reason", text).Msg("Request rejected")
	if err := s.mailer.SendRejectionEmail(user.Email, user.FullName(), text); err != nil {
		s.logger.Warn().Err(err).Int64("requestID", requestID).Msg("Failed to send rejection email")
	}

	return &dto.DecisionResponse{
		RequestID: user.ID,
		Status:    models.StatusRejected,
		Role:      user.Role,
		Message:   "Request rejected",
	}, nil
}

// Login authenticates an approved user by e-mail, student ID or employee ID
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	repos := s.store.Repos()
	identifier := normalizeIdentifier(req.Email)
	invalid := apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Invalid credentials")

	user, err := repos.Users.FindApprovedByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.logger.Debug().Str("identifier", identifier).Msg("Login for unknown identifier")
			return nil, invalid
		}
		s.logger.Error().Err(err).Str("identifier", identifier).Msg("Failed to look up user")
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !pkgauth.CheckPassword(user.Password, req.Password) {
		return nil, invalid
	}
	if !user.IsActive {
		return nil, apperrors.NewCustomError(apperrors.ErrAccountDisabled, "Account is disabled")
	}

	profile, err := auth.ResolveProfile(ctx, repos.Profiles, user)
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to resolve profile")
		return nil, fmt.Errorf("failed to resolve profile: %w", err)
	}

	now := s.now()
	if err := repos.Users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to update last login")
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}
	user.LastLoginAt = &now

	token, err := s.generateTokenResponse(ctx, repos, user, profile)
	if err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to generate token")
		return nil, err
	}

	s.logger.Info().Int64("userID", user.ID).Str("role", string(user.Role)).Msg("User logged in")
	return &dto.LoginResponse{
		Token:   *token,
		User:    dto.NewUserResponse(user),
		Profile: profile,
	}, nil
}

// generateTokenResponse signs an access token and stores a fresh refresh token
func (s *AuthService) generateTokenResponse(ctx context.Context, repos *repositories.Repositories, user *models.User, profile auth.Profile) (*dto.TokenResponse, error) {
	id := auth.NewIdentity(user, profile)
	accessToken, expiresIn, err := s.jwtService.GenerateToken(id.UserID, id.Role, id.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	refreshToken, expiresAt, refreshExpiresIn := s.jwtService.NewRefreshToken()
	if err := repos.Tokens.Create(ctx, &models.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: expiresAt,
	}); err != nil {
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}

	resp := dto.NewTokenResponse(accessToken, expiresIn)
	resp.RefreshToken = refreshToken
	resp.RefreshExpiresIn = refreshExpiresIn
	return &resp, nil
}

// RefreshToken exchanges a refresh token for a new token pair. Each refresh
// token is spent once; presenting a spent token revokes every token of its
// owner.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	invalid := apperrors.NewCustomError(apperrors.ErrTokenInvalid, "Invalid refresh token")
	repos := s.store.Repos()

	stored, err := repos.Tokens.GetByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, invalid
		}
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}
	if stored.IsRevoked {
		s.logger.Warn().Int64("userID", stored.UserID).Msg("Revoked refresh token presented, revoking all sessions")
		if err := repos.Tokens.RevokeAllForUser(ctx, stored.UserID); err != nil {
			s.logger.Error().Err(err).Int64("userID", stored.UserID).Msg("Failed to revoke user tokens")
		}
		return nil, apperrors.NewCustomError(apperrors.ErrTokenRevoked, "Refresh token has been revoked")
	}
	if stored.Expired(s.now()) {
		if _, err := repos.Tokens.Revoke(ctx, refreshToken); err != nil {
			s.logger.Warn().Err(err).Int64("userID", stored.UserID).Msg("Failed to revoke expired refresh token")
		}
		return nil, apperrors.NewCustomError(apperrors.ErrTokenExpired, "Refresh token has expired")
	}

	var resp *dto.LoginResponse
	err = s.store.WithTx(ctx, func(ctx context.Context, repos *repositories.Repositories) error {
		changed, err := repos.Tokens.Revoke(ctx, refreshToken)
		if err != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", err)
		}
		if !changed {
			// Spent by a concurrent refresh
			return apperrors.NewCustomError(apperrors.ErrTokenRevoked, "Refresh token has been revoked")
		}

		user, err := repos.Users.GetByID(ctx, stored.UserID)
		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}
		if user.Status != models.StatusApproved || !user.IsActive {
			return invalid
		}
		profile, err := auth.ResolveProfile(ctx, repos.Profiles, user)
		if err != nil {
			return fmt.Errorf("failed to resolve profile: %w", err)
		}
		token, err := s.generateTokenResponse(ctx, repos, user, profile)
		if err != nil {
			return err
		}
		resp = &dto.LoginResponse{Token: *token, User: dto.NewUserResponse(user), Profile: profile}
		return nil
	})
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrTokenInvalid, apperrors.ErrTokenRevoked) {
			s.logger.Error().Err(err).Int64("userID", stored.UserID).Msg("Failed to refresh token")
		}
		return nil, err
	}

	s.logger.Debug().Int64("userID", stored.UserID).Msg("Token refreshed")
	return resp, nil
}

// Logout revokes one of the caller's refresh tokens. Revoking an already
// revoked token succeeds.
func (s *AuthService) Logout(ctx context.Context, id auth.Identity, refreshToken string) error {
	repos := s.store.Repos()
	stored, err := repos.Tokens.GetByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NewCustomError(apperrors.ErrTokenInvalid, "Invalid refresh token")
		}
		return fmt.Errorf("failed to look up refresh token: %w", err)
	}
	if stored.UserID != id.UserID {
		return apperrors.NewCustomError(apperrors.ErrTokenInvalid, "Invalid refresh token")
	}
	if _, err := repos.Tokens.Revoke(ctx, refreshToken); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	s.logger.Info().Int64("userID", id.UserID).Msg("User logged out")
	return nil
}

// PruneRefreshTokens deletes expired tokens and revoked ones older than retention
func (s *AuthService) PruneRefreshTokens(ctx context.Context, retention time.Duration) (int64, error) {
	now := s.now()
	n, err := s.store.Repos().Tokens.DeleteStale(ctx, now, now.Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("failed to prune refresh tokens: %w", err)
	}
	if n > 0 {
		s.logger.Info().Int64("deleted", n).Msg("Pruned stale refresh tokens")
	}
	return n, nil
}

// GetProfile returns the caller's account and role profile
func (s *AuthService) GetProfile(ctx context.Context, id auth.Identity) (*dto.ProfileResponse, error) {
	if id.IsAdmin() {
		return nil, apperrors.NewForbiddenError("The operator account has no user profile")
	}
	repos := s.store.Repos()
	user, err := repos.Users.GetByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.WithCause(apperrors.ErrResourceNotFound, apperrors.ErrUserNotFound, "User not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	profile, err := auth.ResolveProfile(ctx, repos.Profiles, user)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve profile: %w", err)
	}
	return &dto.ProfileResponse{User: dto.NewUserResponse(user), Profile: profile}, nil
}

// CheckRequestStatus reports the state of the most recent account matching identifier
func (s *AuthService) CheckRequestStatus(ctx context.Context, identifier string) (*dto.RequestStatusResponse, error) {
	user, err := s.store.Repos().Users.FindLatestByIdentifier(ctx, normalizeIdentifier(identifier))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.WithCause(apperrors.ErrResourceNotFound, apperrors.ErrRequestNotFound, "No registration found for this identifier")
		}
		return nil, fmt.Errorf("failed to look up request: %w", err)
	}

	resp := &dto.RequestStatusResponse{Status: user.Status, Role: user.Role}
	switch user.Status {
	case models.StatusPending:
		resp.Message = "Your request is pending administrator approval"
	case models.StatusApproved:
		resp.Message = "Your account is approved. You can log in."
	case models.StatusRejected:
		resp.Message = "Your request was rejected"
		resp.RejectionReason = user.RejectionReason
		if user.RejectionReason != nil {
			resp.Message += ": " + *user.RejectionReason
		}
	}
	return resp, nil
}

// ListUsers returns one page of all users
func (s *AuthService) ListUsers(ctx context.Context, page, size int) (*dto.UserListResponse, error) {
	users, err := s.store.Repos().Users.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	start, end := helpers.CalculateSliceIndices(page, size, len(users))
	resp := &dto.UserListResponse{
		Users:          make([]dto.UserResponse, 0, end-start),
		PaginationInfo: helpers.NewPaginationInfo(int64(len(users)), page, size),
	}
	for _, u := range users[start:end] {
		resp.Users = append(resp.Users, dto.NewUserResponse(u))
	}
	return resp, nil
}
