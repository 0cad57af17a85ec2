package auth

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
	pkgauth "github.com/yigit/coursehub/internal/pkg/auth"
)

func TestPolicy_Authorize(t *testing.T) {
	t.Parallel()

	p := NewDefaultPolicy()

	tests := []struct {
		method string
		route  string
		role   models.RoleType
		allow  bool
	}{
		{http.MethodPost, RouteCourses, models.RoleAdmin, true},
		{http.MethodPost, RouteCourses, models.RoleStudent, false},
		{http.MethodGet, RouteCourses, models.RoleStudent, true},
		{http.MethodGet, RouteCourses, models.RoleAdmin, true},
		{http.MethodDelete, RouteCourse, models.RoleStudent, false},
		{http.MethodGet, RouteStudents, models.RoleStudent, false},
		{http.MethodGet, RouteStudents, models.RoleAdmin, true},
		{http.MethodGet, RouteStudent, models.RoleStudent, false},
		{http.MethodPut, RouteStudentCourses, models.RoleAdmin, true},
		{http.MethodDelete, RouteStudentCourse, models.RoleAdmin, true},
		{http.MethodGet, RouteOwnProfile, models.RoleStudent, true},
		{http.MethodGet, RouteOwnProfile, models.RoleAdmin, false},
		{http.MethodPost, RouteOwnCourses, models.RoleStudent, true},
		{http.MethodPost, RouteOwnCourses, models.RoleAdmin, false},
		{http.MethodDelete, RouteOwnCourse, models.RoleStudent, true},
		{http.MethodGet, RouteWhoAmI, models.RoleStudent, true},
		{http.MethodGet, RouteWhoAmI, models.RoleAdmin, true},
		// not in the table
		{http.MethodPatch, RouteCourses, models.RoleAdmin, false},
		{http.MethodGet, "/api/unlisted", models.RoleAdmin, false},
		{http.MethodGet, "", models.RoleAdmin, false},
	}

	for _, tt := range tests {
		err := p.Authorize(tt.method, tt.route, tt.role)
		if tt.allow {
			assert.NoError(t, err, "%s %s as %s", tt.method, tt.route, tt.role)
		} else {
			assert.ErrorIs(t, err, apperrors.ErrPermissionDenied, "%s %s as %s", tt.method, tt.route, tt.role)
		}
	}
}

func TestPolicy_IsPublic(t *testing.T) {
	t.Parallel()

	p := NewDefaultPolicy()

	assert.True(t, p.IsPublic(http.MethodPost, RouteRegister, RouteRegister))
	assert.True(t, p.IsPublic(http.MethodPost, RouteLogin, RouteLogin))
	assert.True(t, p.IsPublic(http.MethodGet, RouteHealth, RouteHealth))
	assert.True(t, p.IsPublic(http.MethodGet, RouteMetrics, RouteMetrics))
	assert.True(t, p.IsPublic(http.MethodGet, RouteSwagger, "/swagger/index.html"))
	assert.True(t, p.IsPublic(http.MethodGet, "", "/swagger/doc.json"))

	assert.False(t, p.IsPublic(http.MethodGet, RouteLogin, RouteLogin))
	assert.False(t, p.IsPublic(http.MethodGet, RouteWhoAmI, RouteWhoAmI))
	assert.False(t, p.IsPublic(http.MethodGet, RouteCourses, RouteCourses))
	assert.False(t, p.IsPublic(http.MethodGet, "", "/api/unknown"))
}

func TestAuthorizationService_ValidateStudentOwnership(t *testing.T) {
	t.Parallel()

	s := NewAuthorizationService()
	profile := &models.StudentProfile{ID: 1, OwnerUsername: "alice"}

	assert.NoError(t, s.ValidateStudentOwnership(profile, &pkgauth.Principal{Username: "alice", Role: models.RoleStudent}))
	assert.ErrorIs(t, s.ValidateStudentOwnership(profile, &pkgauth.Principal{Username: "bob", Role: models.RoleStudent}), apperrors.ErrPermissionDenied)
	assert.ErrorIs(t, s.ValidateStudentOwnership(profile, nil), apperrors.ErrPermissionDenied)
	assert.ErrorIs(t, s.ValidateStudentOwnership(nil, &pkgauth.Principal{Username: "alice"}), apperrors.ErrPermissionDenied)
}
