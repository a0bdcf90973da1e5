package dto

// FacultyResponse is a faculty member as shown in directories and course listings
type FacultyResponse struct {
	ID             int64  `json:"id"`
	UserID         int64  `json:"userId"`
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	EmployeeID     string `json:"employeeId,omitempty"`
	Designation    string `json:"designation"`
	Qualification  string `json:"qualification,omitempty"`
	DepartmentID   *int64 `json:"departmentId,omitempty"`
	DepartmentName string `json:"departmentName,omitempty"`
}

// FacultyListResponse represents a list of faculty members
type FacultyListResponse struct {
	Faculty []FacultyResponse `json:"faculty"`
}
