package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/yigit/schooladmin/internal/app/models"
)

// Repository level errors. Backends translate driver errors into these.
var (
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate wraps a unique constraint violation; see DuplicateError.
	ErrDuplicate = errors.New("duplicate record")
	// ErrNoAvailableDepartment is returned when no active department is free for a HOD.
	ErrNoAvailableDepartment = errors.New("no available department")
)

// DuplicateError carries the violated constraint so services can tell causes apart.
type DuplicateError struct {
	Constraint string
}

func (e *DuplicateError) Error() string {
	return "duplicate record: " + e.Constraint
}

// Unwrap lets errors.Is(err, ErrDuplicate) match
func (e *DuplicateError) Unwrap() error {
	return ErrDuplicate
}

// Constraint names shared by every backend
const (
	ConstraintUserEmail       = "users_email_approved_idx"
	ConstraintUserPhone       = "users_phone_approved_idx"
	ConstraintUserStudentID   = "users_student_id_approved_idx"
	ConstraintUserEmployeeID  = "users_employee_id_approved_idx"
	ConstraintHODDepartment   = "hods_department_id_key"
	ConstraintCourseCode      = "courses_code_key"
	ConstraintEnrollment      = "enrollments_student_course_key"
	ConstraintDepartmentCode  = "departments_code_key"
	ConstraintProfileUserID   = "profile_user_id_key"
	ConstraintSubmissionOwner = "submissions_assignment_student_key"
	ConstraintRefreshToken    = "refresh_tokens_token_key"
)

// Identifiers holds the values checked for collisions with approved users
type Identifiers struct {
	Email      string
	Phone      string
	StudentID  *string
	EmployeeID *string
}

// UserRepository persists users of every role
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	// FindApprovedByIdentifier matches email, student_id or employee_id.
	FindApprovedByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	// FindLatestByIdentifier matches any status and returns the most recent row.
	FindLatestByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	FindApprovedConflicts(ctx context.Context, ids Identifiers) ([]*models.User, error)
	ListByStatus(ctx context.Context, status models.UserStatus) ([]*models.User, error)
	ListAll(ctx context.Context) ([]*models.User, error)
	// TransitionStatus moves a user from one status to another. It returns false
	// when the user was not in the expected status.
	TransitionStatus(ctx context.Context, id int64, from, to models.UserStatus, reason *string) (bool, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	// CountApprovedByRole counts approved users per role.
	CountApprovedByRole(ctx context.Context) (map[models.RoleType]int, error)
}

// ProfileRepository persists the role-specific profile rows
type ProfileRepository interface {
	CreateStudent(ctx context.Context, s *models.Student) error
	CreateFaculty(ctx context.Context, f *models.Faculty) error
	CreateHOD(ctx context.Context, h *models.HOD) error
	CreatePrincipal(ctx context.Context, p *models.Principal) error

	GetStudentByUserID(ctx context.Context, userID int64) (*models.Student, error)
	GetFacultyByUserID(ctx context.Context, userID int64) (*models.Faculty, error)
	GetHODByUserID(ctx context.Context, userID int64) (*models.HOD, error)
	GetPrincipalByUserID(ctx context.Context, userID int64) (*models.Principal, error)

	GetStudentByID(ctx context.Context, id int64) (*models.Student, error)
	GetFacultyByID(ctx context.Context, id int64) (*models.Faculty, error)
	ListStudentsByIDs(ctx context.Context, ids []int64) ([]*models.Student, error)
	ListHODs(ctx context.Context) ([]*models.HOD, error)
	// ListFaculty returns all faculty, or those of one department.
	ListFaculty(ctx context.Context, departmentID *int64) ([]*models.Faculty, error)
}

// DepartmentRepository persists departments
type DepartmentRepository interface {
	Create(ctx context.Context, d *models.Department) error
	GetByID(ctx context.Context, id int64) (*models.Department, error)
	List(ctx context.Context) ([]*models.Department, error)
	// ClaimForHOD returns an active department that has no HOD. Inside a
	// transaction the row stays locked until commit.
	ClaimForHOD(ctx context.Context) (*models.Department, error)
}

// CourseRepository persists courses
type CourseRepository interface {
	Create(ctx context.Context, c *models.Course) error
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	ListAll(ctx context.Context) ([]*models.Course, error)
	ListByFaculty(ctx context.Context, facultyID int64) ([]*models.Course, error)
	ListByIDs(ctx context.Context, ids []int64) ([]*models.Course, error)
}

// EnrollmentRepository persists enrollments
type EnrollmentRepository interface {
	Create(ctx context.Context, e *models.Enrollment) error
	Exists(ctx context.Context, studentID, courseID int64) (bool, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*models.Enrollment, error)
	ListByCourseIDs(ctx context.Context, courseIDs []int64) ([]*models.Enrollment, error)
	Count(ctx context.Context) (int, error)
}

// AssignmentRepository persists assignments
type AssignmentRepository interface {
	Create(ctx context.Context, a *models.Assignment) error
	GetByID(ctx context.Context, id int64) (*models.Assignment, error)
	ListAll(ctx context.Context) ([]*models.Assignment, error)
	ListByFaculty(ctx context.Context, facultyID int64) ([]*models.Assignment, error)
	ListByCourseIDs(ctx context.Context, courseIDs []int64) ([]*models.Assignment, error)
	ListByIDs(ctx context.Context, ids []int64) ([]*models.Assignment, error)
}

// SubmissionRepository persists submissions
type SubmissionRepository interface {
	// Upsert inserts or replaces the submission for (AssignmentID, StudentID),
	// clearing any previous grade. The stored row is written back into s.
	Upsert(ctx context.Context, s *models.Submission) error
	GetByID(ctx context.Context, id int64) (*models.Submission, error)
	Grade(ctx context.Context, id int64, marks int, feedback *string, at time.Time) (*models.Submission, error)
	ListByAssignment(ctx context.Context, assignmentID int64) ([]*models.Submission, error)
	ListByAssignmentIDs(ctx context.Context, assignmentIDs []int64) ([]*models.Submission, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*models.Submission, error)
	CountByStatus(ctx context.Context) (map[models.SubmissionStatus]int, error)
}

// ScheduleFilter selects calendar entries. A nil filter means everything.
type ScheduleFilter struct {
	CourseIDs      []int64
	FacultyID      *int64
	IncludeGeneral bool
}

// ScheduleRepository persists calendar entries
type ScheduleRepository interface {
	Create(ctx context.Context, s *models.Schedule) error
	List(ctx context.Context, filter *ScheduleFilter) ([]*models.Schedule, error)
}

// AnnouncementRepository persists announcements
type AnnouncementRepository interface {
	Create(ctx context.Context, a *models.Announcement) error
	// ListForRole returns announcements targeted at role plus global ones.
	ListForRole(ctx context.Context, role models.RoleType) ([]*models.Announcement, error)
	ListAll(ctx context.Context) ([]*models.Announcement, error)
}

// NotificationRepository persists per-user notifications
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id int64) (*models.Notification, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id int64) error
}

// TokenRepository persists refresh tokens
type TokenRepository interface {
	Create(ctx context.Context, t *models.RefreshToken) error
	GetByToken(ctx context.Context, token string) (*models.RefreshToken, error)
	// Revoke marks one token revoked. It returns false when the token was
	// missing or already revoked, so a token can be spent only once.
	Revoke(ctx context.Context, token string) (bool, error)
	RevokeAllForUser(ctx context.Context, userID int64) error
	// DeleteStale removes tokens expired at now and revoked tokens created
	// before revokedBefore, returning how many were removed.
	DeleteStale(ctx context.Context, now, revokedBefore time.Time) (int64, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	Users         UserRepository
	Profiles      ProfileRepository
	Departments   DepartmentRepository
	Courses       CourseRepository
	Enrollments   EnrollmentRepository
	Assignments   AssignmentRepository
	Submissions   SubmissionRepository
	Schedules     ScheduleRepository
	Announcements AnnouncementRepository
	Notifications NotificationRepository
	Tokens        TokenRepository
}

// TxFn runs inside a transaction with repositories bound to it
type TxFn func(ctx context.Context, repos *Repositories) error

// Store is a persistence backend
type Store interface {
	// Repos returns repositories that run outside any transaction.
	Repos() *Repositories
	// WithTx runs fn in one transaction. Any error rolls everything back.
	WithTx(ctx context.Context, fn TxFn) error
	Ping(ctx context.Context) error
	Close()
}
