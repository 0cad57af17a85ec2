package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/app/repositories"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
	"github.com/yigit/coursehub/internal/pkg/events"
	"github.com/yigit/coursehub/internal/pkg/metrics"
)

// EnrollmentEngine applies course set changes to student profiles.
// The profile passed in is never modified; the updated copy is returned.
type EnrollmentEngine struct {
	courses   repositories.CourseRepository
	students  repositories.StudentRepository
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewEnrollmentEngine creates a new EnrollmentEngine
func NewEnrollmentEngine(
	courses repositories.CourseRepository,
	students repositories.StudentRepository,
	publisher events.Publisher,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *EnrollmentEngine {
	return &EnrollmentEngine{
		courses:   courses,
		students:  students,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// AddCourses adds every requested course missing from the profile. If any id
// does not resolve to a course nothing is changed. Courses already present are skipped.
func (e *EnrollmentEngine) AddCourses(ctx context.Context, actor string, profile *models.StudentProfile, courseIDs []int64) (*models.StudentProfile, error) {
	requested := dedupe(courseIDs)
	if len(requested) == 0 {
		return profile.Clone(), nil
	}

	found, err := e.courses.GetByIDs(ctx, requested)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve courses: %w", err)
	}
	if len(found) < len(requested) {
		missing := missingIDs(requested, found)
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidReference, "Course(s) not found: "+joinIDs(missing)).
			WithDetails(map[string]interface{}{"missingCourseIds": missing})
	}

	updated := profile.Clone()
	var added []int64
	for _, c := range found {
		if !updated.HasCourse(c.ID) {
			updated.Courses = append(updated.Courses, c)
			added = append(added, c.ID)
		}
	}
	if len(added) == 0 {
		return updated, nil
	}
	sort.Slice(updated.Courses, func(i, j int) bool { return updated.Courses[i].ID < updated.Courses[j].ID })

	if err := e.save(ctx, updated); err != nil {
		return nil, err
	}

	e.metrics.EnrollmentChanged("add", len(added))
	e.logger.Info().Int64("studentID", updated.ID).Ints64("added", added).Str("actor", actor).Msg("Courses added to student")
	publish(ctx, e.publisher, events.NewEvent(events.TypeEnrollmentChanged, studentKey(updated.ID), actor, map[string]interface{}{
		"studentId": updated.ID,
		"added":     added,
		"courseIds": updated.CourseIDs(),
	}))

	return updated, nil
}

// RemoveCourse removes one course from the profile
func (e *EnrollmentEngine) RemoveCourse(ctx context.Context, actor string, profile *models.StudentProfile, courseID int64) (*models.StudentProfile, error) {
	if _, err := e.courses.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NewInvalidReferenceError(fmt.Sprintf("Course %d not found", courseID))
		}
		return nil, fmt.Errorf("failed to resolve course: %w", err)
	}

	if !profile.HasCourse(courseID) {
		return nil, apperrors.ErrNotEnrolled
	}

	updated := profile.Clone()
	kept := updated.Courses[:0]
	for _, c := range updated.Courses {
		if c.ID != courseID {
			kept = append(kept, c)
		}
	}
	updated.Courses = kept

	if err := e.save(ctx, updated); err != nil {
		return nil, err
	}

	e.metrics.EnrollmentChanged("remove", 1)
	e.logger.Info().Int64("studentID", updated.ID).Int64("removed", courseID).Str("actor", actor).Msg("Course removed from student")
	publish(ctx, e.publisher, events.NewEvent(events.TypeEnrollmentChanged, studentKey(updated.ID), actor, map[string]interface{}{
		"studentId": updated.ID,
		"removed":   []int64{courseID},
		"courseIds": updated.CourseIDs(),
	}))

	return updated, nil
}

func (e *EnrollmentEngine) save(ctx context.Context, profile *models.StudentProfile) error {
	err := e.students.SaveCourses(ctx, profile)
	if err == nil {
		return nil
	}
	if errors.Is(err, repositories.ErrVersionConflict) {
		e.logger.Warn().Int64("studentID", profile.ID).Msg("Concurrent enrollment change detected")
	}
	if translated := translateStoreError(err, "Student not found"); translated != err {
		return translated
	}
	return fmt.Errorf("failed to save enrollments: %w", err)
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func missingIDs(requested []int64, found []models.Course) []int64 {
	present := make(map[int64]bool, len(found))
	for _, c := range found {
		present[c.ID] = true
	}
	var missing []int64
	for _, id := range requested {
		if !present[id] {
			missing = append(missing, id)
		}
	}
	return missing
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}

func studentKey(id int64) string {
	return "student:" + strconv.FormatInt(id, 10)
}
