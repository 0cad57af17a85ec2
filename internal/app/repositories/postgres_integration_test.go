package repositories

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/coursehub/internal/app/migrations"
	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/db"
)

func openTestDB(t *testing.T) *db.PostgresDB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pg, err := db.Connect(ctx, dsn, nil)
	if err != nil {
		t.Skipf("db unavailable: %v", err)
	}
	t.Cleanup(pg.Close)

	require.NoError(t, migrations.NewMigrator(pg.Pool, zerolog.Nop()).Migrate(ctx))
	_, err = pg.Pool.Exec(ctx, `TRUNCATE enrollments, student_profiles, courses, identities RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	return pg
}

func TestPostgres_RegisterInTransaction(t *testing.T) {
	pg := openTestDB(t)
	repos := NewRepositories(pg)
	ctx := context.Background()

	err := repos.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		identity := &models.Identity{Username: "alice", PasswordHash: "h", Role: models.RoleStudent}
		if err := repos.Identities.Create(ctx, identity); err != nil {
			return err
		}
		return repos.Students.Create(ctx, &models.StudentProfile{OwnerID: identity.ID})
	})
	require.NoError(t, err)

	profile, err := repos.Students.GetByOwnerUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, profile.Courses)

	err = repos.Identities.Create(ctx, &models.Identity{Username: "alice", PasswordHash: "h", Role: models.RoleStudent})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestPostgres_RollbackLeavesNoIdentity(t *testing.T) {
	pg := openTestDB(t)
	repos := NewRepositories(pg)
	ctx := context.Background()
	boom := errors.New("boom")

	err := repos.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		identity := &models.Identity{Username: "bob", PasswordHash: "h", Role: models.RoleStudent}
		if err := repos.Identities.Create(ctx, identity); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = repos.Identities.GetByUsername(ctx, "bob")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgres_EnrollmentLifecycle(t *testing.T) {
	pg := openTestDB(t)
	repos := NewRepositories(pg)
	ctx := context.Background()

	identity := &models.Identity{Username: "carol", PasswordHash: "h", Role: models.RoleStudent}
	require.NoError(t, repos.Identities.Create(ctx, identity))
	profile := &models.StudentProfile{OwnerID: identity.ID}
	require.NoError(t, repos.Students.Create(ctx, profile))

	c1 := &models.Course{Title: "Algorithms"}
	c2 := &models.Course{Title: "Databases", Description: "SQL"}
	require.NoError(t, repos.Courses.Create(ctx, c1))
	require.NoError(t, repos.Courses.Create(ctx, c2))

	found, err := repos.Courses.GetByIDs(ctx, []int64{c1.ID, c2.ID, 9999})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	loaded, err := repos.Students.GetByID(ctx, profile.ID)
	require.NoError(t, err)
	stale := loaded.Clone()

	loaded.Courses = []models.Course{*c1, *c2}
	require.NoError(t, repos.Students.SaveCourses(ctx, loaded))

	stale.Courses = []models.Course{*c2}
	assert.ErrorIs(t, repos.Students.SaveCourses(ctx, stale), ErrVersionConflict)

	assert.ErrorIs(t, repos.Courses.Delete(ctx, c1.ID), ErrCourseReferenced)

	loaded.Courses = []models.Course{*c2}
	require.NoError(t, repos.Students.SaveCourses(ctx, loaded))
	require.NoError(t, repos.Courses.Delete(ctx, c1.ID))
	assert.ErrorIs(t, repos.Courses.Delete(ctx, c1.ID), ErrNotFound)

	loaded.Courses = append(loaded.Courses, models.Course{ID: 9999})
	assert.ErrorIs(t, repos.Students.SaveCourses(ctx, loaded), ErrUnknownCourse)

	final, err := repos.Students.GetByOwnerUsername(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, []int64{c2.ID}, final.CourseIDs())

	all, err := repos.Students.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "carol", all[0].OwnerUsername)
}
