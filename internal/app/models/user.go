package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID              int64      `json:"id" db:"id" example:"1"`
	FirstName       string     `json:"firstName" db:"first_name" example:"John"`
	LastName        string     `json:"lastName" db:"last_name" example:"Doe"`
	Email           string     `json:"email" db:"email" example:"john.doe@school.edu"`
	Phone           string     `json:"phone" db:"phone" example:"5551234567"`
	StudentID       *string    `json:"studentId,omitempty" db:"student_id" example:"STU001"`
	EmployeeID      *string    `json:"employeeId,omitempty" db:"employee_id" example:"FAC001"`
	Password        string     `json:"-" db:"password"` // bcrypt hash, never serialized
	Role            RoleType   `json:"role" db:"role" example:"STUDENT"`
	Status          UserStatus `json:"status" db:"status" example:"APPROVED"`
	IsActive        bool       `json:"isActive" db:"is_active" example:"true"`
	LastLoginAt     *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	RejectionReason *string    `json:"rejectionReason,omitempty" db:"rejection_reason"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at"`
}

// FullName returns "First Last"
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Identifier returns the role-specific login identifier, falling back to email.
func (u *User) Identifier() string {
	if u.StudentID != nil && *u.StudentID != "" {
		return *u.StudentID
	}
	if u.EmployeeID != nil && *u.EmployeeID != "" {
		return *u.EmployeeID
	}
	return u.Email
}

// Student defines the student profile based on the 'students' table
type Student struct {
	ID           int64     `json:"id" db:"id"`
	UserID       int64     `json:"userId" db:"user_id"`
	RollNumber   string    `json:"rollNumber" db:"roll_number"`
	Semester     int       `json:"semester" db:"semester"`
	DepartmentID *int64    `json:"departmentId,omitempty" db:"department_id"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Faculty defines a teaching staff profile based on the 'faculty' table
type Faculty struct {
	ID            int64     `json:"id" db:"id"`
	UserID        int64     `json:"userId" db:"user_id"`
	DepartmentID  *int64    `json:"departmentId,omitempty" db:"department_id"`
	Designation   string    `json:"designation" db:"designation" example:"Assistant Professor"`
	Qualification string    `json:"qualification,omitempty" db:"qualification"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// HOD defines a head-of-department profile based on the 'hods' table.
// DepartmentID is unique across the table.
type HOD struct {
	ID           int64     `json:"id" db:"id"`
	UserID       int64     `json:"userId" db:"user_id"`
	DepartmentID int64     `json:"departmentId" db:"department_id"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Principal defines the principal profile based on the 'principals' table
type Principal struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"userId" db:"user_id"`
	Institution string    `json:"institution" db:"institution"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
