package dto

import "github.com/yigit/schooladmin/internal/app/models"

// DepartmentResponse represents department information with its head, if any
type DepartmentResponse struct {
	models.Department
	HasHOD bool `json:"hasHod"`
}

// DepartmentListResponse represents a list of departments
type DepartmentListResponse struct {
	Departments []DepartmentResponse `json:"departments"`
}
