package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yigit/coursehub/internal/app/models"
)

const (
	courseListKeyPrefix = "coursehub:courses:all:"
	generationKey       = "coursehub:courses:generation"
)

// DefaultTTL bounds how long a cached course list may be served
const DefaultTTL = 5 * time.Minute

// Lookup is the result of a cache read. Generation identifies the catalog
// version the read observed; a list loaded after a miss is stored under it.
type Lookup struct {
	Courses    []models.Course
	Hit        bool
	Generation int64
}

// CourseCache is a read-through cache of the full course catalog.
// Invalidate starts a new generation, so a SetCourses tagged with an older
// generation is never served.
type CourseCache interface {
	GetCourses(ctx context.Context) (Lookup, error)
	SetCourses(ctx context.Context, generation int64, courses []models.Course) error
	Invalidate(ctx context.Context) error
}

// RedisCourseCache stores the course list as a JSON document in Redis
type RedisCourseCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCourseCache creates a Redis-backed course cache
func NewRedisCourseCache(client *redis.Client, ttl time.Duration) *RedisCourseCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCourseCache{client: client, ttl: ttl}
}

func courseListKey(generation int64) string {
	return courseListKeyPrefix + strconv.FormatInt(generation, 10)
}

// GetCourses returns the list cached for the current generation
func (c *RedisCourseCache) GetCourses(ctx context.Context) (Lookup, error) {
	generation, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Lookup{}, fmt.Errorf("redis get %s: %w", generationKey, err)
	}

	key := courseListKey(generation)
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Lookup{Generation: generation}, nil
	}
	if err != nil {
		return Lookup{}, fmt.Errorf("redis get %s: %w", key, err)
	}

	var courses []models.Course
	if err := json.Unmarshal(raw, &courses); err != nil {
		return Lookup{}, fmt.Errorf("decode cached courses: %w", err)
	}
	return Lookup{Courses: courses, Hit: true, Generation: generation}, nil
}

// SetCourses stores the list under generation
func (c *RedisCourseCache) SetCourses(ctx context.Context, generation int64, courses []models.Course) error {
	if courses == nil {
		courses = []models.Course{}
	}
	raw, err := json.Marshal(courses)
	if err != nil {
		return fmt.Errorf("encode courses: %w", err)
	}
	key := courseListKey(generation)
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Invalidate moves to a new generation after a catalog change.
// Lists stored under older generations expire on their own.
func (c *RedisCourseCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("redis incr %s: %w", generationKey, err)
	}
	return nil
}

// NoopCourseCache always misses
type NoopCourseCache struct{}

func (NoopCourseCache) GetCourses(context.Context) (Lookup, error) {
	return Lookup{}, nil
}

func (NoopCourseCache) SetCourses(context.Context, int64, []models.Course) error { return nil }

func (NoopCourseCache) Invalidate(context.Context) error { return nil }
