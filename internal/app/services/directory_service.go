package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/yigit/schooladmin/internal/app/auth"
	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/app/repositories"
)

// DirectoryService lists departments, faculty and classmates
type DirectoryService struct {
	store  repositories.Store
	logger zerolog.Logger
}

// NewDirectoryService creates a new DirectoryService
func NewDirectoryService(store repositories.Store, logger zerolog.Logger) *DirectoryService {
	return &DirectoryService{store: store, logger: logger}
}

// ListDepartments returns all departments with whether a HOD is assigned
func (s *DirectoryService) ListDepartments(ctx context.Context) (*dto.DepartmentListResponse, error) {
	repos := s.store.Repos()
	deps, err := repos.Departments.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list departments")
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	hods, err := repos.Profiles.ListHODs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list HODs: %w", err)
	}
	headed := make(map[int64]bool, len(hods))
	for _, h := range hods {
		headed[h.DepartmentID] = true
	}

	out := make([]dto.DepartmentResponse, 0, len(deps))
	for _, d := range deps {
		out = append(out, dto.DepartmentResponse{Department: *d, HasHOD: headed[d.ID]})
	}
	return &dto.DepartmentListResponse{Departments: out}, nil
}

// ListFaculty returns faculty members, optionally of one department
func (s *DirectoryService) ListFaculty(ctx context.Context, departmentID *int64) (*dto.FacultyListResponse, error) {
	repos := s.store.Repos()
	faculty, err := repos.Profiles.ListFaculty(ctx, departmentID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list faculty")
		return nil, fmt.Errorf("failed to list faculty: %w", err)
	}

	l := newLookup(repos)
	out := make([]dto.FacultyResponse, 0, len(faculty))
	for _, f := range faculty {
		resp, err := l.facultyResponse(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("failed to load faculty %d: %w", f.ID, err)
		}
		out = append(out, *resp)
	}
	return &dto.FacultyListResponse{Faculty: out}, nil
}

// ListClassmates returns students sharing at least one current course with the caller
func (s *DirectoryService) ListClassmates(ctx context.Context, id auth.Identity) (*dto.ClassmateListResponse, error) {
	repos := s.store.Repos()
	me, err := studentProfile(ctx, repos, id, "list classmates")
	if err != nil {
		return nil, err
	}
	courseIDs, err := enrolledCourseIDs(ctx, repos, me.ID)
	if err != nil {
		return nil, err
	}
	courses, err := repos.Courses.ListByIDs(ctx, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	codes := make(map[int64]string, len(courses))
	for _, c := range courses {
		codes[c.ID] = c.Code
	}
	enrollments, err := repos.Enrollments.ListByCourseIDs(ctx, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	shared := make(map[int64][]string)
	var ids []int64
	for _, e := range enrollments {
		if e.StudentID == me.ID || !e.Status.IsCurrent() {
			continue
		}
		if _, seen := shared[e.StudentID]; !seen {
			ids = append(ids, e.StudentID)
		}
		shared[e.StudentID] = append(shared[e.StudentID], codes[e.CourseID])
	}
	students, err := repos.Profiles.ListStudentsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	l := newLookup(repos)
	out := make([]dto.ClassmateResponse, 0, len(students))
	for _, st := range students {
		u, err := l.user(ctx, st.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to load student %d: %w", st.ID, err)
		}
		if u.Status != models.StatusApproved {
			continue
		}
		courses := shared[st.ID]
		sort.Strings(courses)
		out = append(out, dto.ClassmateResponse{
			StudentID:     st.ID,
			UserID:        u.ID,
			Name:          u.FullName(),
			Email:         u.Email,
			RollNumber:    st.RollNumber,
			SharedCourses: courses,
		})
	}
	return &dto.ClassmateListResponse{Classmates: out}, nil
}
