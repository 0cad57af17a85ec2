package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/app/repositories"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
	"github.com/yigit/coursehub/internal/pkg/cache"
	"github.com/yigit/coursehub/internal/pkg/events"
	"github.com/yigit/coursehub/internal/pkg/logger"
	"github.com/yigit/coursehub/internal/pkg/validation"
)

// CourseService manages the course catalog
type CourseService struct {
	courses   repositories.CourseRepository
	cache     cache.CourseCache
	publisher events.Publisher
	logger    zerolog.Logger
}

// NewCourseService creates a new CourseService
func NewCourseService(courses repositories.CourseRepository, courseCache cache.CourseCache, publisher events.Publisher, logger zerolog.Logger) *CourseService {
	return &CourseService{
		courses:   courses,
		cache:     courseCache,
		publisher: publisher,
		logger:    logger,
	}
}

// Create adds a course to the catalog
func (s *CourseService) Create(ctx context.Context, actor, title, description string) (*models.Course, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)

	if !validation.IsValidCourseTitle(title) {
		return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed,
			fmt.Sprintf("Course title is required and must be at most %d characters", validation.CourseTitleMaxLength))
	}
	if !validation.IsValidCourseDescription(description) {
		return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed,
			fmt.Sprintf("Course description must be at most %d characters", validation.CourseDescriptionMaxLength))
	}

	course := &models.Course{Title: title, Description: description}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.invalidate(ctx)
	s.logger.Info().Int64("courseID", course.ID).Str("actor", actor).Msg("Course created")
	publish(ctx, s.publisher, events.NewEvent(events.TypeCourseCreated, courseKey(course.ID), actor, course))

	return course, nil
}

// List returns the whole catalog, served from the cache when possible
func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	lookup, cacheErr := s.cache.GetCourses(ctx)
	if cacheErr != nil {
		logger.FromContext(ctx).Warn().Err(cacheErr).Msg("Course cache read failed")
	} else if lookup.Hit {
		return lookup.Courses, nil
	}

	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	if cacheErr == nil {
		if err := s.cache.SetCourses(ctx, lookup.Generation, courses); err != nil {
			logger.FromContext(ctx).Warn().Err(err).Msg("Course cache write failed")
		}
	}
	return courses, nil
}

// Delete removes a course that no student is enrolled in
func (s *CourseService) Delete(ctx context.Context, actor string, id int64) error {
	if err := s.courses.Delete(ctx, id); err != nil {
		return translateStoreError(err, fmt.Sprintf("Course %d not found", id))
	}

	s.invalidate(ctx)
	s.logger.Info().Int64("courseID", id).Str("actor", actor).Msg("Course deleted")
	publish(ctx, s.publisher, events.NewEvent(events.TypeCourseDeleted, courseKey(id), actor, map[string]int64{"courseId": id}))

	return nil
}

func (s *CourseService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("Course cache invalidation failed")
	}
}

func courseKey(id int64) string {
	return "course:" + strconv.FormatInt(id, 10)
}
