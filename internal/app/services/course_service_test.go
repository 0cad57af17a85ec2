package services

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/app/repositories"
	"github.com/yigit/coursehub/internal/app/repositories/memory"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
	"github.com/yigit/coursehub/internal/pkg/cache"
	"github.com/yigit/coursehub/internal/pkg/events"
)

func TestCourseService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name        string
		title       string
		description string
	}{
		{name: "empty title", title: ""},
		{name: "blank title", title: "   "},
		{name: "title too long", title: strings.Repeat("a", 201)},
		{name: "description too long", title: "Algebra", description: strings.Repeat("d", 2001)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.services.Courses.Create(ctx, "admin", tt.title, tt.description)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		})
	}

	courses, err := f.services.Courses.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, courses)
	assert.Empty(t, f.publisher.events)
}

func TestCourseService_CreateTrimsInput(t *testing.T) {
	f := newFixture(t)

	course, err := f.services.Courses.Create(context.Background(), "admin", "  Algebra  ", " Linear equations ")
	require.NoError(t, err)
	assert.Equal(t, "Algebra", course.Title)
	assert.Equal(t, "Linear equations", course.Description)
	assert.NotZero(t, course.ID)
	assert.Equal(t, []string{events.TypeCourseCreated}, f.publisher.types())
}

func TestCourseService_ListUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repos := memory.NewStore().Repositories()
	svc := NewCourseService(repos.Courses, cache.NewRedisCourseCache(client, cache.DefaultTTL), events.NoopPublisher{}, zerolog.Nop())
	ctx := context.Background()

	first, err := svc.Create(ctx, "admin", "Algebra", "")
	require.NoError(t, err)

	courses, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.True(t, mr.Exists("coursehub:courses:all:1"))

	// Creating a course starts a new cache generation
	_, err = svc.Create(ctx, "admin", "Biology", "")
	require.NoError(t, err)
	generation, err := mr.Get("coursehub:courses:generation")
	require.NoError(t, err)
	assert.Equal(t, "2", generation)

	courses, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, courses, 2)
	assert.True(t, mr.Exists("coursehub:courses:all:2"))

	require.NoError(t, svc.Delete(ctx, "admin", first.ID))

	courses, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "Biology", courses[0].Title)
}

// interleavedCourses runs during after loading the list, before the caller caches it
type interleavedCourses struct {
	repositories.CourseRepository
	during func()
}

func (r *interleavedCourses) List(ctx context.Context) ([]models.Course, error) {
	courses, err := r.CourseRepository.List(ctx)
	if r.during != nil {
		during := r.during
		r.during = nil
		during()
	}
	return courses, err
}

func TestCourseService_ListDoesNotCacheStaleCatalog(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repos := memory.NewStore().Repositories()
	courses := &interleavedCourses{CourseRepository: repos.Courses}
	svc := NewCourseService(courses, cache.NewRedisCourseCache(client, cache.DefaultTTL), events.NoopPublisher{}, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Create(ctx, "admin", "Algebra", "")
	require.NoError(t, err)

	courses.during = func() {
		_, err := svc.Create(ctx, "admin", "Biology", "")
		require.NoError(t, err)
	}
	listed, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	listed, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestCourseService_ListSurvivesCacheOutage(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repos := memory.NewStore().Repositories()
	svc := NewCourseService(repos.Courses, cache.NewRedisCourseCache(client, cache.DefaultTTL), events.NoopPublisher{}, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Create(ctx, "admin", "Algebra", "")
	require.NoError(t, err)
	mr.Close()

	courses, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, courses, 1)
}

func TestCourseService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice")
	enrolled := f.course(t, "Algebra")
	free := f.course(t, "Biology")

	_, err := f.services.Enrollment.AddCourses(ctx, "alice", loadProfile(t, f, "alice"), []int64{enrolled.ID})
	require.NoError(t, err)

	err = f.services.Courses.Delete(ctx, "admin", enrolled.ID)
	assert.ErrorIs(t, err, apperrors.ErrCourseInUse)

	err = f.services.Courses.Delete(ctx, "admin", 999)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	require.NoError(t, f.services.Courses.Delete(ctx, "admin", free.ID))
	err = f.services.Courses.Delete(ctx, "admin", free.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	assert.Contains(t, f.publisher.types(), events.TypeCourseDeleted)
}
