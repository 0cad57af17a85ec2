package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/coursehub/internal/app/models"
)

func newTestCache(t *testing.T, ttl time.Duration) (*RedisCourseCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCourseCache(client, ttl), mr
}

func TestRedisCourseCache_MissThenHit(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	lookup, err := c.GetCourses(ctx)
	require.NoError(t, err)
	assert.False(t, lookup.Hit)
	assert.Zero(t, lookup.Generation)

	courses := []models.Course{{ID: 1, Title: "Algorithms"}, {ID: 2, Title: "Databases", Description: "SQL"}}
	require.NoError(t, c.SetCourses(ctx, lookup.Generation, courses))

	lookup, err = c.GetCourses(ctx)
	require.NoError(t, err)
	require.True(t, lookup.Hit)
	require.Len(t, lookup.Courses, 2)
	assert.Equal(t, "Databases", lookup.Courses[1].Title)
	assert.Equal(t, "SQL", lookup.Courses[1].Description)
}

func TestRedisCourseCache_EmptyListIsAHit(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.SetCourses(ctx, 0, nil))

	lookup, err := c.GetCourses(ctx)
	require.NoError(t, err)
	assert.True(t, lookup.Hit)
	assert.Empty(t, lookup.Courses)
}

func TestRedisCourseCache_Expiry(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.SetCourses(ctx, 0, []models.Course{{ID: 1, Title: "Algorithms"}}))
	mr.FastForward(2 * time.Minute)

	lookup, err := c.GetCourses(ctx)
	require.NoError(t, err)
	assert.False(t, lookup.Hit)
}

func TestRedisCourseCache_Invalidate(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.SetCourses(ctx, 0, []models.Course{{ID: 1, Title: "Algorithms"}}))
	require.NoError(t, c.Invalidate(ctx))

	generation, err := mr.Get(generationKey)
	require.NoError(t, err)
	assert.Equal(t, "1", generation)

	lookup, err := c.GetCourses(ctx)
	require.NoError(t, err)
	assert.False(t, lookup.Hit)
	assert.Equal(t, int64(1), lookup.Generation)
}

func TestRedisCourseCache_StaleWriteIsNeverServed(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	// A reader misses, the catalog changes, then the reader stores what it loaded
	lookup, err := c.GetCourses(ctx)
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx))
	require.NoError(t, c.SetCourses(ctx, lookup.Generation, []models.Course{{ID: 1, Title: "Stale"}}))

	lookup, err = c.GetCourses(ctx)
	require.NoError(t, err)
	assert.False(t, lookup.Hit)

	require.NoError(t, c.SetCourses(ctx, lookup.Generation, []models.Course{{ID: 1, Title: "Fresh"}}))
	lookup, err = c.GetCourses(ctx)
	require.NoError(t, err)
	require.True(t, lookup.Hit)
	assert.Equal(t, "Fresh", lookup.Courses[0].Title)
}

func TestRedisCourseCache_CorruptEntry(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	require.NoError(t, mr.Set(courseListKey(0), "not json"))

	lookup, err := c.GetCourses(context.Background())
	assert.Error(t, err)
	assert.False(t, lookup.Hit)
}

func TestRedisCourseCache_ServerDown(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	mr.Close()

	lookup, err := c.GetCourses(context.Background())
	assert.Error(t, err)
	assert.False(t, lookup.Hit)
}

func TestNoopCourseCache(t *testing.T) {
	var c CourseCache = NoopCourseCache{}
	ctx := context.Background()

	require.NoError(t, c.SetCourses(ctx, 0, []models.Course{{ID: 1}}))
	lookup, err := c.GetCourses(ctx)
	require.NoError(t, err)
	assert.False(t, lookup.Hit)
	assert.NoError(t, c.Invalidate(ctx))
}
