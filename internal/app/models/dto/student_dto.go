package dto

// ClassmateResponse is a student sharing at least one course with the caller
type ClassmateResponse struct {
	StudentID     int64    `json:"studentId"`
	UserID        int64    `json:"userId"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	RollNumber    string   `json:"rollNumber"`
	SharedCourses []string `json:"sharedCourses"`
}

// ClassmateListResponse lists classmates
type ClassmateListResponse struct {
	Classmates []ClassmateResponse `json:"classmates"`
}
