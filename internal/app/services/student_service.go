package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/coursehub/internal/app/auth"
	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/app/repositories"
	pkgauth "github.com/yigit/coursehub/internal/pkg/auth"
)

// StudentService exposes student records to admins and to their owners
type StudentService struct {
	students repositories.StudentRepository
	engine   *EnrollmentEngine
	authz    *auth.AuthorizationService
	logger   zerolog.Logger
}

// NewStudentService creates a new StudentService
func NewStudentService(students repositories.StudentRepository, engine *EnrollmentEngine, authz *auth.AuthorizationService, logger zerolog.Logger) *StudentService {
	return &StudentService{
		students: students,
		engine:   engine,
		authz:    authz,
		logger:   logger,
	}
}

// List returns every student profile
func (s *StudentService) List(ctx context.Context) ([]*models.StudentProfile, error) {
	profiles, err := s.students.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return profiles, nil
}

// GetByID returns one student profile
func (s *StudentService) GetByID(ctx context.Context, id int64) (*models.StudentProfile, error) {
	profile, err := s.students.GetByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, fmt.Sprintf("Student %d not found", id))
	}
	return profile, nil
}

// GetOwn returns the caller's profile
func (s *StudentService) GetOwn(ctx context.Context, principal *pkgauth.Principal) (*models.StudentProfile, error) {
	profile, err := s.ownProfile(ctx, principal)
	if err != nil {
		return nil, err
	}
	if err := s.authz.ValidateStudentOwnership(profile, principal); err != nil {
		return nil, err
	}
	return profile, nil
}

// AddOwnCourses enrolls the caller in the given courses
func (s *StudentService) AddOwnCourses(ctx context.Context, principal *pkgauth.Principal, courseIDs []int64) (*models.StudentProfile, error) {
	profile, err := s.ownProfile(ctx, principal)
	if err != nil {
		return nil, err
	}
	return s.engine.AddCourses(ctx, principal.Username, profile, courseIDs)
}

// RemoveOwnCourse drops one course from the caller's profile
func (s *StudentService) RemoveOwnCourse(ctx context.Context, principal *pkgauth.Principal, courseID int64) (*models.StudentProfile, error) {
	profile, err := s.ownProfile(ctx, principal)
	if err != nil {
		return nil, err
	}
	return s.engine.RemoveCourse(ctx, principal.Username, profile, courseID)
}

// AdminEnroll adds courses to any student's profile
func (s *StudentService) AdminEnroll(ctx context.Context, principal *pkgauth.Principal, studentID int64, courseIDs []int64) (*models.StudentProfile, error) {
	profile, err := s.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return s.engine.AddCourses(ctx, principal.Username, profile, courseIDs)
}

// AdminRemoveCourse drops a course from any student's profile
func (s *StudentService) AdminRemoveCourse(ctx context.Context, principal *pkgauth.Principal, studentID, courseID int64) (*models.StudentProfile, error) {
	profile, err := s.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return s.engine.RemoveCourse(ctx, principal.Username, profile, courseID)
}

func (s *StudentService) ownProfile(ctx context.Context, principal *pkgauth.Principal) (*models.StudentProfile, error) {
	profile, err := s.students.GetByOwnerUsername(ctx, principal.Username)
	if err != nil {
		return nil, translateStoreError(err, "Student profile not found")
	}
	return profile, nil
}
