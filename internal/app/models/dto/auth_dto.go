package dto

import (
	"time"

	"github.com/yigit/schooladmin/internal/app/auth"
	"github.com/yigit/schooladmin/internal/app/models"
)

// StudentSignupRequest registers a student directly. ID is the student ID.
type StudentSignupRequest struct {
	FirstName string `json:"firstName" binding:"required,max=100"`
	LastName  string `json:"lastName" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"required,phone"`
	ID        string `json:"id" binding:"required,schoolid"`
	Password  string `json:"password" binding:"required,password"`
}

// StaffSignupRequest asks for a staff account. ID is the employee ID.
type StaffSignupRequest struct {
	StudentSignupRequest
	Role models.RoleType `json:"role" binding:"required"`
}

// AdminLoginRequest carries the operator credentials
type AdminLoginRequest struct {
	ID       string `json:"id" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest accepts an email, student ID or employee ID in Email
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RejectRequest carries an optional rejection reason
type RejectRequest struct {
	Reason *string `json:"reason" binding:"omitempty,max=500"`
}

// TokenResponse represents JWT token information. Operator tokens carry no
// refresh token.
type TokenResponse struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken,omitempty"`
	TokenType        string `json:"tokenType" example:"Bearer"`
	ExpiresIn        int    `json:"expiresIn"`
	RefreshExpiresIn int    `json:"refreshExpiresIn,omitempty"`
}

// NewTokenResponse builds a bearer TokenResponse
func NewTokenResponse(token string, expiresIn int) TokenResponse {
	return TokenResponse{AccessToken: token, TokenType: "Bearer", ExpiresIn: expiresIn}
}

// RefreshTokenRequest exchanges or revokes a refresh token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// ProfileResponse is the caller's account with its role profile
type ProfileResponse struct {
	User    UserResponse `json:"user"`
	Profile auth.Profile `json:"profile"`
}

// LoginResponse is returned by a successful user login
type LoginResponse struct {
	Token   TokenResponse `json:"token"`
	User    UserResponse  `json:"user"`
	Profile auth.Profile  `json:"profile"`
}

// AdminLoginResponse is returned by a successful operator login
type AdminLoginResponse struct {
	Token TokenResponse `json:"token"`
	Role  string        `json:"role" example:"ADMIN"`
}

// SignupRequestResponse acknowledges a staff registration request
type SignupRequestResponse struct {
	RequestID int64             `json:"requestId"`
	Status    models.UserStatus `json:"status" example:"PENDING"`
	Message   string            `json:"message"`
}

// RequestSummary is a pending request as listed to the operator
type RequestSummary struct {
	RequestID  int64             `json:"requestId"`
	FirstName  string            `json:"firstName"`
	LastName   string            `json:"lastName"`
	Email      string            `json:"email"`
	Phone      string            `json:"phone"`
	EmployeeID *string           `json:"employeeId,omitempty"`
	Role       models.RoleType   `json:"role"`
	Status     models.UserStatus `json:"status"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// NewRequestSummary projects a pending user
func NewRequestSummary(u *models.User) RequestSummary {
	return RequestSummary{
		RequestID:  u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		Phone:      u.Phone,
		EmployeeID: u.EmployeeID,
		Role:       u.Role,
		Status:     u.Status,
		CreatedAt:  u.CreatedAt,
	}
}

// DecisionResponse reports the outcome of an approval or rejection
type DecisionResponse struct {
	RequestID    int64             `json:"requestId"`
	Status       models.UserStatus `json:"status"`
	Role         models.RoleType   `json:"role"`
	DepartmentID *int64            `json:"departmentId,omitempty"`
	Message      string            `json:"message"`
}

// RequestStatusResponse answers a status lookup
type RequestStatusResponse struct {
	Status          models.UserStatus `json:"status"`
	Role            models.RoleType   `json:"role"`
	Message         string            `json:"message"`
	RejectionReason *string           `json:"rejectionReason,omitempty"`
}
