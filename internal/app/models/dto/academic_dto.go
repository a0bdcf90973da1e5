package dto

import (
	"time"

	"github.com/yigit/schooladmin/internal/app/models"
)

// EnrollmentSummary is an enrollment nested in a course listing
type EnrollmentSummary struct {
	ID          int64                   `json:"id"`
	StudentID   int64                   `json:"studentId"`
	StudentName string                  `json:"studentName,omitempty"`
	RollNumber  string                  `json:"rollNumber,omitempty"`
	Status      models.EnrollmentStatus `json:"status"`
	EnrolledAt  time.Time               `json:"enrolledAt"`
}

// CourseResponse is a course with its faculty member, department and enrollments
type CourseResponse struct {
	models.Course
	Faculty     *FacultyResponse    `json:"faculty,omitempty"`
	Department  *models.Department  `json:"department,omitempty"`
	Enrollments []EnrollmentSummary `json:"enrollments"`
}

// CourseListResponse lists courses
type CourseListResponse struct {
	Courses []CourseResponse `json:"courses"`
}

// EnrollmentResponse acknowledges an enrollment
type EnrollmentResponse struct {
	models.Enrollment
	CourseCode string `json:"courseCode"`
	CourseName string `json:"courseName"`
}

// SubmissionResponse is a submission with its derived lateness
type SubmissionResponse struct {
	models.Submission
	IsLate      bool   `json:"isLate"`
	StudentName string `json:"studentName,omitempty"`
	RollNumber  string `json:"rollNumber,omitempty"`
}

// NewSubmissionResponse projects a submission against its assignment
func NewSubmissionResponse(s *models.Submission, a *models.Assignment) SubmissionResponse {
	return SubmissionResponse{Submission: *s, IsLate: s.IsLateFor(a)}
}

// AssignmentResponse is an assignment with course context. Students see their
// own submission; faculty see the submission count.
type AssignmentResponse struct {
	models.Assignment
	CourseCode      string              `json:"courseCode,omitempty"`
	CourseName      string              `json:"courseName,omitempty"`
	Submission      *SubmissionResponse `json:"submission,omitempty"`
	SubmissionCount *int                `json:"submissionCount,omitempty"`
	ScheduleID      *int64              `json:"scheduleId,omitempty"`
}

// AssignmentListResponse lists assignments
type AssignmentListResponse struct {
	Assignments []AssignmentResponse `json:"assignments"`
}

// SubmissionListResponse lists the submissions of one assignment
type SubmissionListResponse struct {
	Assignment  models.Assignment    `json:"assignment"`
	Submissions []SubmissionResponse `json:"submissions"`
}

// GradeResponse is one graded submission in a student's grade book
type GradeResponse struct {
	SubmissionID    int64                   `json:"submissionId"`
	AssignmentID    int64                   `json:"assignmentId"`
	AssignmentTitle string                  `json:"assignmentTitle"`
	CourseID        int64                   `json:"courseId"`
	CourseCode      string                  `json:"courseCode"`
	CourseName      string                  `json:"courseName"`
	Marks           int                     `json:"marks"`
	MaxMarks        int                     `json:"maxMarks"`
	Percentage      float64                 `json:"percentage"`
	Feedback        *string                 `json:"feedback,omitempty"`
	Status          models.SubmissionStatus `json:"status"`
	GradedAt        *time.Time              `json:"gradedAt,omitempty"`
}

// GradeListResponse lists grades
type GradeListResponse struct {
	Grades []GradeResponse `json:"grades"`
}

// GradeDistribution counts grades per letter bucket
type GradeDistribution struct {
	A int `json:"A"`
	B int `json:"B"`
	C int `json:"C"`
	D int `json:"D"`
}

// StudentReport summarizes a student's graded work
type StudentReport struct {
	AverageGrade float64           `json:"averageGrade"`
	TotalGraded  int               `json:"totalGraded"`
	Distribution GradeDistribution `json:"gradeDistribution"`
}

// FacultyReport summarizes a faculty member's courses
type FacultyReport struct {
	TotalStudents    int `json:"totalStudents"`
	TotalAssignments int `json:"totalAssignments"`
	TotalSubmissions int `json:"totalSubmissions"`
	PendingGrading   int `json:"pendingGrading"`
}

// OverviewReport summarizes the institution
type OverviewReport struct {
	UsersByRole         map[models.RoleType]int         `json:"usersByRole"`
	PendingRequests     int                             `json:"pendingRequests"`
	Departments         int                             `json:"departments"`
	Courses             int                             `json:"courses"`
	Enrollments         int                             `json:"enrollments"`
	Assignments         int                             `json:"assignments"`
	SubmissionsByStatus map[models.SubmissionStatus]int `json:"submissionsByStatus"`
}

// ReportResponse holds the report matching the caller's role
type ReportResponse struct {
	Type     string          `json:"type"`
	Student  *StudentReport  `json:"student,omitempty"`
	Faculty  *FacultyReport  `json:"faculty,omitempty"`
	Overview *OverviewReport `json:"overview,omitempty"`
}

// ScheduleListResponse lists calendar entries
type ScheduleListResponse struct {
	Schedules []models.Schedule `json:"schedules"`
}

// AnnouncementResponse is an announcement with its author's name
type AnnouncementResponse struct {
	models.Announcement
	AuthorName string `json:"authorName,omitempty"`
}

// AnnouncementListResponse lists announcements
type AnnouncementListResponse struct {
	Announcements []AnnouncementResponse `json:"announcements"`
}

// NotificationListResponse lists the caller's notifications
type NotificationListResponse struct {
	Notifications []models.Notification `json:"notifications"`
	Unread        int                   `json:"unread"`
}
