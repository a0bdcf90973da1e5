package models

import "time"

// Assignment represents coursework created by a faculty member
type Assignment struct {
	ID          int64     `json:"id" db:"id"`
	CourseID    int64     `json:"courseId" db:"course_id"`
	FacultyID   int64     `json:"facultyId" db:"faculty_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description,omitempty" db:"description"`
	DueDate     time.Time `json:"dueDate" db:"due_date"`
	MaxMarks    int       `json:"maxMarks" db:"max_marks"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// SubmissionStatus is the grading state of a submission
type SubmissionStatus string

const (
	SubmissionSubmitted SubmissionStatus = "SUBMITTED"
	SubmissionGraded    SubmissionStatus = "GRADED"
)

// Submission is a student's answer to an assignment. (AssignmentID, StudentID) is unique.
type Submission struct {
	ID           int64            `json:"id" db:"id"`
	AssignmentID int64            `json:"assignmentId" db:"assignment_id"`
	StudentID    int64            `json:"studentId" db:"student_id"`
	Content      string           `json:"content" db:"content"`
	Status       SubmissionStatus `json:"status" db:"status"`
	SubmittedAt  time.Time        `json:"submittedAt" db:"submitted_at"`
	Marks        *int             `json:"marks,omitempty" db:"marks"`
	Feedback     *string          `json:"feedback,omitempty" db:"feedback"`
	GradedAt     *time.Time       `json:"gradedAt,omitempty" db:"graded_at"`
}

// IsLateFor reports whether the submission arrived after the assignment's due date.
// Late submissions are accepted; the flag is informational.
func (s *Submission) IsLateFor(a *Assignment) bool {
	return a != nil && s.SubmittedAt.After(a.DueDate)
}
