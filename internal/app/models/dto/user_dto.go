package dto

import (
	"time"

	"github.com/yigit/schooladmin/internal/app/models"
)

// UserResponse is the public projection of a user
type UserResponse struct {
	ID          int64             `json:"id"`
	FirstName   string            `json:"firstName"`
	LastName    string            `json:"lastName"`
	Email       string            `json:"email"`
	Phone       string            `json:"phone"`
	StudentID   *string           `json:"studentId,omitempty"`
	EmployeeID  *string           `json:"employeeId,omitempty"`
	Role        models.RoleType   `json:"role"`
	Status      models.UserStatus `json:"status"`
	IsActive    bool              `json:"isActive"`
	LastLoginAt *time.Time        `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// NewUserResponse projects a user, dropping the password hash
func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		Phone:       u.Phone,
		StudentID:   u.StudentID,
		EmployeeID:  u.EmployeeID,
		Role:        u.Role,
		Status:      u.Status,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// UserListResponse represents a list of users with pagination
type UserListResponse struct {
	Users []UserResponse `json:"users"`
	PaginationInfo
}
