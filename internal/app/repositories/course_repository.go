package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/db"
	"github.com/yigit/coursehub/internal/pkg/dberrors"
	"github.com/yigit/coursehub/internal/pkg/logger"
)

const enrollmentsCourseFKey = "enrollments_course_id_fkey"

var courseColumns = []string{"id", "title", "description", "created_at"}

// PostgresCourseRepository handles course database operations
type PostgresCourseRepository struct {
	pg *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewCourseRepository creates a new PostgresCourseRepository
func NewCourseRepository(pg *db.PostgresDB) *PostgresCourseRepository {
	return &PostgresCourseRepository{
		pg: pg,
		sb: statementBuilder(),
	}
}

// Create creates a new course
func (r *PostgresCourseRepository) Create(ctx context.Context, course *models.Course) error {
	sql, args, err := r.sb.Insert("courses").
		Columns("title", "description").
		Values(course.Title, course.Description).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create course query: %w", err)
	}

	if err := r.pg.Executor(ctx).QueryRow(ctx, sql, args...).Scan(&course.ID, &course.CreatedAt); err != nil {
		logger.FromContext(ctx).Error().Err(err).Msg("Error executing create course query")
		return fmt.Errorf("error creating course: %w", err)
	}

	return nil
}

// GetByID retrieves a course by ID
func (r *PostgresCourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	sql, args, err := r.sb.Select(courseColumns...).
		From("courses").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get course query: %w", err)
	}

	course := &models.Course{}
	err = r.pg.Executor(ctx).QueryRow(ctx, sql, args...).Scan(&course.ID, &course.Title, &course.Description, &course.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		logger.FromContext(ctx).Error().Err(err).Int64("courseID", id).Msg("Error scanning course row")
		return nil, fmt.Errorf("error getting course by ID: %w", err)
	}

	return course, nil
}

// GetByIDs retrieves the existing courses among ids
func (r *PostgresCourseRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.Course, error) {
	if len(ids) == 0 {
		return []models.Course{}, nil
	}
	return r.query(ctx, r.sb.Select(courseColumns...).
		From("courses").
		Where(squirrel.Eq{"id": ids}).
		OrderBy("id ASC"))
}

// List retrieves the whole catalog
func (r *PostgresCourseRepository) List(ctx context.Context) ([]models.Course, error) {
	return r.query(ctx, r.sb.Select(courseColumns...).
		From("courses").
		OrderBy("id ASC"))
}

func (r *PostgresCourseRepository) query(ctx context.Context, q squirrel.SelectBuilder) ([]models.Course, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build course query: %w", err)
	}

	rows, err := r.pg.Executor(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Msg("Error executing course query")
		return nil, fmt.Errorf("error querying courses: %w", err)
	}
	defer rows.Close()

	courses := []models.Course{}
	for rows.Next() {
		var c models.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning course row: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating course rows: %w", err)
	}

	return courses, nil
}

// Delete deletes a course by ID. A course with enrollments is not deleted.
func (r *PostgresCourseRepository) Delete(ctx context.Context, id int64) error {
	var referenced bool
	checkSql, checkArgs, err := r.sb.Select("1").
		From("enrollments").
		Where(squirrel.Eq{"course_id": id}).
		Prefix("SELECT EXISTS (").Suffix(")").
		Limit(1).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build check enrollments query: %w", err)
	}

	exec := r.pg.Executor(ctx)
	if err := exec.QueryRow(ctx, checkSql, checkArgs...).Scan(&referenced); err != nil {
		logger.FromContext(ctx).Error().Err(err).Int64("courseID", id).Msg("Error checking course enrollments")
		return fmt.Errorf("error checking course enrollments: %w", err)
	}
	if referenced {
		return ErrCourseReferenced
	}

	sql, args, err := r.sb.Delete("courses").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete course query: %w", err)
	}

	cmdTag, err := exec.Exec(ctx, sql, args...)
	if err != nil {
		// An enrollment inserted after the check still blocks the delete.
		if dberrors.IsForeignKeyViolation(err, enrollmentsCourseFKey) {
			return ErrCourseReferenced
		}
		logger.FromContext(ctx).Error().Err(err).Int64("courseID", id).Msg("Error executing delete course query")
		return fmt.Errorf("error deleting course: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
