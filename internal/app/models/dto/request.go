package dto

import (
	"time"

	"github.com/yigit/schooladmin/internal/app/models"
)

// CreateCourseRequest represents course creation data. FacultyID may be a
// faculty profile ID or the faculty member's user ID.
type CreateCourseRequest struct {
	Name         string `json:"name" binding:"required,max=200"`
	Code         string `json:"code" binding:"required,max=20"`
	Description  string `json:"description"`
	Credits      int    `json:"credits" binding:"required,min=1,max=10"`
	Semester     int    `json:"semester" binding:"required,min=1,max=12"`
	DepartmentID int64  `json:"departmentId" binding:"required,gt=0"`
	FacultyID    int64  `json:"facultyId" binding:"required,gt=0"`
}

// EnrollRequest enrolls the caller in a course
type EnrollRequest struct {
	CourseID int64 `json:"courseId" binding:"required,gt=0"`
}

// CreateAssignmentRequest represents assignment creation data
type CreateAssignmentRequest struct {
	CourseID       int64     `json:"courseId" binding:"required,gt=0"`
	Title          string    `json:"title" binding:"required,max=200"`
	Description    string    `json:"description"`
	DueDate        time.Time `json:"dueDate" binding:"required"`
	MaxMarks       int       `json:"maxMarks" binding:"omitempty,min=1,max=1000"`
	CreateSchedule bool      `json:"createSchedule"`
}

// SubmitAssignmentRequest carries the submission text
type SubmitAssignmentRequest struct {
	Content string `json:"content" binding:"required"`
}

// GradeSubmissionRequest grades a submission. Marks is a pointer so zero is accepted.
type GradeSubmissionRequest struct {
	Marks    *int    `json:"marks" binding:"required,min=0"`
	Feedback *string `json:"feedback"`
}

// CreateScheduleRequest represents a calendar entry. DayOfWeek defaults to
// the weekday of StartTime.
type CreateScheduleRequest struct {
	Title     string              `json:"title" binding:"required,max=200"`
	Type      models.ScheduleType `json:"type" binding:"required,oneof=CLASS LAB EXAM ASSIGNMENT_DUE MEETING EVENT"`
	CourseID  *int64              `json:"courseId"`
	StartTime time.Time           `json:"startTime" binding:"required"`
	EndTime   time.Time           `json:"endTime" binding:"required,gtfield=StartTime"`
	DayOfWeek string              `json:"dayOfWeek"`
	Location  *string             `json:"location"`
}

// CreateAnnouncementRequest represents an announcement. A nil TargetRole
// addresses everybody.
type CreateAnnouncementRequest struct {
	Title      string           `json:"title" binding:"required,max=200"`
	Content    string           `json:"content" binding:"required"`
	TargetRole *models.RoleType `json:"targetRole" binding:"omitempty,oneof=STUDENT FACULTY HOD PRINCIPAL"`
	CourseID   *int64           `json:"courseId"`
}
