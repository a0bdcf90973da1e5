package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/repositories"
)

var scheduleColumns = []string{"id", "title", "type", "course_id", "faculty_id", "start_time", "end_time", "day_of_week", "location", "created_at"}

// ScheduleRepository handles database operations for calendar entries
type ScheduleRepository struct {
	db querier
}

func scanSchedule(row scanner) (*models.Schedule, error) {
	s := &models.Schedule{}
	err := row.Scan(&s.ID, &s.Title, &s.Type, &s.CourseID, &s.FacultyID, &s.StartTime, &s.EndTime, &s.DayOfWeek, &s.Location, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create inserts a calendar entry
func (r *ScheduleRepository) Create(ctx context.Context, s *models.Schedule) error {
	sql, args, err := psql.Insert("schedules").
		Columns("title", "type", "course_id", "faculty_id", "start_time", "end_time", "day_of_week", "location").
		Values(s.Title, s.Type, s.CourseID, s.FacultyID, s.StartTime, s.EndTime, s.DayOfWeek, s.Location).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create schedule query: %w", err)
	}
	return translate(r.db.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.CreatedAt))
}

// List returns entries matching filter ordered by start time
func (r *ScheduleRepository) List(ctx context.Context, filter *repositories.ScheduleFilter) ([]*models.Schedule, error) {
	q := psql.Select(scheduleColumns...).From("schedules").OrderBy("start_time", "id")

	if filter != nil {
		or := squirrel.Or{}
		if len(filter.CourseIDs) > 0 {
			or = append(or, squirrel.Eq{"course_id": filter.CourseIDs})
		}
		if filter.FacultyID != nil {
			or = append(or, squirrel.Eq{"faculty_id": *filter.FacultyID})
		}
		if filter.IncludeGeneral {
			or = append(or, squirrel.And{squirrel.Eq{"course_id": nil}, squirrel.Eq{"faculty_id": nil}})
		}
		if len(or) == 0 {
			return []*models.Schedule{}, nil
		}
		q = q.Where(or)
	}

	return queryList(ctx, r.db, q, scanSchedule)
}
