package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/yigit/coursehub/internal/app/auth"
	"github.com/yigit/coursehub/internal/app/repositories"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
	pkgauth "github.com/yigit/coursehub/internal/pkg/auth"
	"github.com/yigit/coursehub/internal/pkg/cache"
	"github.com/yigit/coursehub/internal/pkg/events"
	"github.com/yigit/coursehub/internal/pkg/logger"
	"github.com/yigit/coursehub/internal/pkg/metrics"
)

// Services holds all the service instances
type Services struct {
	Auth       *AuthService
	Courses    *CourseService
	Enrollment *EnrollmentEngine
	Students   *StudentService
}

// Dependencies are the collaborators shared by the services
type Dependencies struct {
	Repos     *repositories.Repositories
	Hasher    *pkgauth.PasswordHasher
	Tokens    *pkgauth.JWTService
	Cache     cache.CourseCache
	Publisher events.Publisher
	Metrics   *metrics.Metrics
	Logger    zerolog.Logger
}

// NewServices wires every service from deps
func NewServices(deps Dependencies) *Services {
	if deps.Cache == nil {
		deps.Cache = cache.NoopCourseCache{}
	}
	if deps.Publisher == nil {
		deps.Publisher = events.NoopPublisher{}
	}

	engine := NewEnrollmentEngine(deps.Repos.Courses, deps.Repos.Students, deps.Publisher, deps.Metrics, deps.Logger)
	return &Services{
		Auth:       NewAuthService(deps.Repos.Identities, deps.Repos.Students, deps.Repos.Tx, deps.Hasher, deps.Tokens, deps.Publisher, deps.Metrics, deps.Logger),
		Courses:    NewCourseService(deps.Repos.Courses, deps.Cache, deps.Publisher, deps.Logger),
		Enrollment: engine,
		Students:   NewStudentService(deps.Repos.Students, engine, auth.NewAuthorizationService(), deps.Logger),
	}
}

// publish emits an event after a committed change; failures are only logged
func publish(ctx context.Context, publisher events.Publisher, event events.Event) {
	if err := publisher.Publish(ctx, event); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("event", event.Type).Msg("Failed to publish domain event")
	}
}

// translateStoreError maps repository errors onto the application taxonomy
func translateStoreError(err error, notFoundMessage string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return apperrors.NewResourceNotFoundError(notFoundMessage)
	case errors.Is(err, repositories.ErrVersionConflict):
		return apperrors.ErrConcurrentModification
	case errors.Is(err, repositories.ErrUnknownCourse):
		return apperrors.NewInvalidReferenceError("One or more courses no longer exist")
	case errors.Is(err, repositories.ErrCourseReferenced):
		return apperrors.ErrCourseInUse
	case errors.Is(err, repositories.ErrDuplicate):
		return apperrors.ErrDuplicateIdentity
	default:
		return err
	}
}
