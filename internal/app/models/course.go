package models

import "time"

// Course represents a course taught by one faculty member in a department
type Course struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Code         string    `json:"code" db:"code"`
	Description  string    `json:"description,omitempty" db:"description"`
	Credits      int       `json:"credits" db:"credits"`
	Semester     int       `json:"semester" db:"semester"`
	DepartmentID int64     `json:"departmentId" db:"department_id"`
	FacultyID    int64     `json:"facultyId" db:"faculty_id"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// EnrollmentStatus is the lifecycle state of an enrollment
type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "ACTIVE"
	EnrollmentEnrolled  EnrollmentStatus = "ENROLLED"
	EnrollmentDropped   EnrollmentStatus = "DROPPED"
	EnrollmentCompleted EnrollmentStatus = "COMPLETED"
)

// IsCurrent reports whether the enrollment grants access to course material.
func (s EnrollmentStatus) IsCurrent() bool {
	return s == EnrollmentActive || s == EnrollmentEnrolled
}

// Enrollment links a student to a course. (StudentID, CourseID) is unique.
type Enrollment struct {
	ID         int64            `json:"id" db:"id"`
	StudentID  int64            `json:"studentId" db:"student_id"`
	CourseID   int64            `json:"courseId" db:"course_id"`
	Status     EnrollmentStatus `json:"status" db:"status"`
	EnrolledAt time.Time        `json:"enrolledAt" db:"enrolled_at"`
}
