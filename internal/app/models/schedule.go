package models

import "time"

// ScheduleType classifies a calendar entry
type ScheduleType string

const (
	ScheduleClass         ScheduleType = "CLASS"
	ScheduleLab           ScheduleType = "LAB"
	ScheduleExam          ScheduleType = "EXAM"
	ScheduleAssignmentDue ScheduleType = "ASSIGNMENT_DUE"
	ScheduleMeeting       ScheduleType = "MEETING"
	ScheduleEvent         ScheduleType = "EVENT"
)

// Valid reports whether t is a known schedule type
func (t ScheduleType) Valid() bool {
	switch t {
	case ScheduleClass, ScheduleLab, ScheduleExam, ScheduleAssignmentDue, ScheduleMeeting, ScheduleEvent:
		return true
	}
	return false
}

// Schedule is a calendar entry. Entries with neither course nor faculty are general.
type Schedule struct {
	ID        int64        `json:"id" db:"id"`
	Title     string       `json:"title" db:"title"`
	Type      ScheduleType `json:"type" db:"type"`
	CourseID  *int64       `json:"courseId,omitempty" db:"course_id"`
	FacultyID *int64       `json:"facultyId,omitempty" db:"faculty_id"`
	StartTime time.Time    `json:"startTime" db:"start_time"`
	EndTime   time.Time    `json:"endTime" db:"end_time"`
	DayOfWeek string       `json:"dayOfWeek" db:"day_of_week" example:"MONDAY"`
	Location  *string      `json:"location,omitempty" db:"location"`
	CreatedAt time.Time    `json:"createdAt" db:"created_at"`
}

// IsGeneral reports whether the entry is visible to everyone
func (s *Schedule) IsGeneral() bool {
	return s.CourseID == nil && s.FacultyID == nil
}
