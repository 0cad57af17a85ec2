package repositories

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/db"
)

// Shared repository errors
var (
	// ErrNotFound is returned when a row does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a row
	ErrDuplicate = errors.New("record already exists")
	// ErrVersionConflict is returned when a profile changed since it was loaded
	ErrVersionConflict = errors.New("record was modified by another transaction")
	// ErrCourseReferenced is returned when deleting a course that students are enrolled in
	ErrCourseReferenced = errors.New("course is referenced by enrollments")
	// ErrUnknownCourse is returned when an enrollment names a course that no longer exists
	ErrUnknownCourse = errors.New("enrollment references a missing course")
)

// TxManager runs a function atomically. Repository calls made with the
// context passed to fn take part in the transaction.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// IdentityRepository is the credential store
type IdentityRepository interface {
	GetByUsername(ctx context.Context, username string) (*models.Identity, error)
	// Create inserts the identity and sets its ID and CreatedAt
	Create(ctx context.Context, identity *models.Identity) error
	// Update rewrites the password hash and role of an existing identity
	Update(ctx context.Context, identity *models.Identity) error
}

// CourseRepository is the course catalog store
type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	// GetByIDs returns the courses that exist among ids, ordered by id
	GetByIDs(ctx context.Context, ids []int64) ([]models.Course, error)
	List(ctx context.Context) ([]models.Course, error)
	Delete(ctx context.Context, id int64) error
}

// StudentRepository is the student record store
type StudentRepository interface {
	Create(ctx context.Context, profile *models.StudentProfile) error
	GetByID(ctx context.Context, id int64) (*models.StudentProfile, error)
	GetByOwnerUsername(ctx context.Context, username string) (*models.StudentProfile, error)
	List(ctx context.Context) ([]*models.StudentProfile, error)
	// SaveCourses persists the profile's course set if its Version is still current,
	// then bumps Version. Returns ErrVersionConflict otherwise.
	SaveCourses(ctx context.Context, profile *models.StudentProfile) error
}

// Repositories holds all the repository instances
type Repositories struct {
	Identities IdentityRepository
	Courses    CourseRepository
	Students   StudentRepository
	Tx         TxManager
}

// NewRepositories initializes the Postgres repositories
func NewRepositories(pg *db.PostgresDB) *Repositories {
	return &Repositories{
		Identities: NewIdentityRepository(pg),
		Courses:    NewCourseRepository(pg),
		Students:   NewStudentRepository(pg),
		Tx:         pg,
	}
}

func statementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}
