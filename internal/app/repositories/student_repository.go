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

const studentProfilesOwnerKey = "student_profiles_owner_id_key"

// PostgresStudentRepository handles student profile and enrollment database operations
type PostgresStudentRepository struct {
	pg *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new PostgresStudentRepository
func NewStudentRepository(pg *db.PostgresDB) *PostgresStudentRepository {
	return &PostgresStudentRepository{
		pg: pg,
		sb: statementBuilder(),
	}
}

func (r *PostgresStudentRepository) profileQuery() squirrel.SelectBuilder {
	return r.sb.Select("sp.id", "sp.owner_id", "i.username", "sp.version").
		From("student_profiles sp").
		Join("identities i ON i.id = sp.owner_id")
}

// Create inserts an empty profile for profile.OwnerID
func (r *PostgresStudentRepository) Create(ctx context.Context, profile *models.StudentProfile) error {
	sql, args, err := r.sb.Insert("student_profiles").
		Columns("owner_id").
		Values(profile.OwnerID).
		Suffix("RETURNING id, version").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create student profile query: %w", err)
	}

	err = r.pg.Executor(ctx).QueryRow(ctx, sql, args...).Scan(&profile.ID, &profile.Version)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, studentProfilesOwnerKey) {
			return ErrDuplicate
		}
		if dberrors.IsForeignKeyViolation(err, "") {
			return ErrNotFound
		}
		logger.FromContext(ctx).Error().Err(err).Int64("ownerID", profile.OwnerID).Msg("Error executing create student profile query")
		return fmt.Errorf("error creating student profile: %w", err)
	}

	if profile.Courses == nil {
		profile.Courses = []models.Course{}
	}
	return nil
}

// GetByID retrieves a profile with its courses
func (r *PostgresStudentRepository) GetByID(ctx context.Context, id int64) (*models.StudentProfile, error) {
	return r.getOne(ctx, r.profileQuery().Where(squirrel.Eq{"sp.id": id}))
}

// GetByOwnerUsername retrieves the profile owned by username
func (r *PostgresStudentRepository) GetByOwnerUsername(ctx context.Context, username string) (*models.StudentProfile, error) {
	return r.getOne(ctx, r.profileQuery().Where(squirrel.Eq{"i.username": username}))
}

func (r *PostgresStudentRepository) getOne(ctx context.Context, q squirrel.SelectBuilder) (*models.StudentProfile, error) {
	sql, args, err := q.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student profile query: %w", err)
	}

	profile := &models.StudentProfile{}
	err = r.pg.Executor(ctx).QueryRow(ctx, sql, args...).Scan(
		&profile.ID, &profile.OwnerID, &profile.OwnerUsername, &profile.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		logger.FromContext(ctx).Error().Err(err).Msg("Error scanning student profile row")
		return nil, fmt.Errorf("error getting student profile: %w", err)
	}

	courses, err := r.coursesByStudent(ctx, []int64{profile.ID})
	if err != nil {
		return nil, err
	}
	profile.Courses = courses[profile.ID]
	if profile.Courses == nil {
		profile.Courses = []models.Course{}
	}

	return profile, nil
}

// List retrieves every profile with its courses
func (r *PostgresStudentRepository) List(ctx context.Context) ([]*models.StudentProfile, error) {
	sql, args, err := r.profileQuery().OrderBy("sp.id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list student profiles query: %w", err)
	}

	rows, err := r.pg.Executor(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Msg("Error executing list student profiles query")
		return nil, fmt.Errorf("error querying student profiles: %w", err)
	}
	defer rows.Close()

	profiles := []*models.StudentProfile{}
	ids := []int64{}
	for rows.Next() {
		p := &models.StudentProfile{}
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.OwnerUsername, &p.Version); err != nil {
			return nil, fmt.Errorf("error scanning student profile row: %w", err)
		}
		profiles = append(profiles, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating student profile rows: %w", err)
	}

	courses, err := r.coursesByStudent(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		p.Courses = courses[p.ID]
		if p.Courses == nil {
			p.Courses = []models.Course{}
		}
	}

	return profiles, nil
}

// coursesByStudent loads the enrolled courses of the given profiles, ordered by course id
func (r *PostgresStudentRepository) coursesByStudent(ctx context.Context, studentIDs []int64) (map[int64][]models.Course, error) {
	result := make(map[int64][]models.Course, len(studentIDs))
	if len(studentIDs) == 0 {
		return result, nil
	}

	sql, args, err := r.sb.Select("e.student_id", "c.id", "c.title", "c.description", "c.created_at").
		From("enrollments e").
		Join("courses c ON c.id = e.course_id").
		Where(squirrel.Eq{"e.student_id": studentIDs}).
		OrderBy("e.student_id ASC", "c.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build enrollments query: %w", err)
	}

	rows, err := r.pg.Executor(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Msg("Error executing enrollments query")
		return nil, fmt.Errorf("error querying enrollments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var studentID int64
		var c models.Course
		if err := rows.Scan(&studentID, &c.ID, &c.Title, &c.Description, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning enrollment row: %w", err)
		}
		result[studentID] = append(result[studentID], c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating enrollment rows: %w", err)
	}

	return result, nil
}

// SaveCourses replaces the profile's enrollment rows with profile.Courses
func (r *PostgresStudentRepository) SaveCourses(ctx context.Context, profile *models.StudentProfile) error {
	return r.pg.WithinTransaction(ctx, func(ctx context.Context) error {
		exec := r.pg.Executor(ctx)

		sql, args, err := r.sb.Update("student_profiles").
			Set("version", squirrel.Expr("version + 1")).
			Where(squirrel.Eq{"id": profile.ID, "version": profile.Version}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build bump version query: %w", err)
		}

		cmdTag, err := exec.Exec(ctx, sql, args...)
		if err != nil {
			return fmt.Errorf("error bumping student profile version: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			if _, err := r.GetByID(ctx, profile.ID); errors.Is(err, ErrNotFound) {
				return ErrNotFound
			}
			return ErrVersionConflict
		}

		courseIDs := profile.CourseIDs()

		sql, args, err = r.sb.Delete("enrollments").
			Where(squirrel.Eq{"student_id": profile.ID}).
			Where(squirrel.NotEq{"course_id": courseIDs}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build prune enrollments query: %w", err)
		}
		if _, err := exec.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("error pruning enrollments: %w", err)
		}

		if len(courseIDs) > 0 {
			insert := r.sb.Insert("enrollments").Columns("student_id", "course_id")
			for _, courseID := range courseIDs {
				insert = insert.Values(profile.ID, courseID)
			}
			sql, args, err = insert.Suffix("ON CONFLICT (student_id, course_id) DO NOTHING").ToSql()
			if err != nil {
				return fmt.Errorf("failed to build insert enrollments query: %w", err)
			}
			if _, err := exec.Exec(ctx, sql, args...); err != nil {
				if dberrors.IsForeignKeyViolation(err, enrollmentsCourseFKey) {
					return ErrUnknownCourse
				}
				logger.FromContext(ctx).Error().Err(err).Int64("studentID", profile.ID).Msg("Error inserting enrollments")
				return fmt.Errorf("error inserting enrollments: %w", err)
			}
		}

		profile.Version++
		return nil
	})
}
