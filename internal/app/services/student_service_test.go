package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
	"github.com/yigit/coursehub/internal/pkg/auth"
)

func TestStudentService_GetOwn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")

	profile, err := f.services.Students.GetOwn(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.OwnerUsername)

	_, err = f.services.Students.GetOwn(ctx, &auth.Principal{Username: "ghost", Role: models.RoleStudent})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestStudentService_OwnCourses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	c1, c2 := f.course(t, "Algebra"), f.course(t, "Biology")

	profile, err := f.services.Students.AddOwnCourses(ctx, alice, []int64{c2.ID, c1.ID})
	require.NoError(t, err)
	assert.Equal(t, []int64{c1.ID, c2.ID}, profile.CourseIDs())

	profile, err = f.services.Students.RemoveOwnCourse(ctx, alice, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{c2.ID}, profile.CourseIDs())

	// Bob's record is untouched
	other, err := f.services.Students.GetOwn(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, other.Courses)
}

func TestStudentService_AdminOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := &auth.Principal{Username: "root", Role: models.RoleAdmin}
	f.register(t, "alice")
	c1 := f.course(t, "Algebra")
	id := loadProfile(t, f, "alice").ID

	profile, err := f.services.Students.AdminEnroll(ctx, admin, id, []int64{c1.ID})
	require.NoError(t, err)
	assert.Equal(t, []int64{c1.ID}, profile.CourseIDs())

	all, err := f.services.Students.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, []int64{c1.ID}, all[0].CourseIDs())

	profile, err = f.services.Students.AdminRemoveCourse(ctx, admin, id, c1.ID)
	require.NoError(t, err)
	assert.Empty(t, profile.Courses)

	_, err = f.services.Students.AdminEnroll(ctx, admin, 999, []int64{c1.ID})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	_, err = f.services.Students.GetByID(ctx, 999)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}
