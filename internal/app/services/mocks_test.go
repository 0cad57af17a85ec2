package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/app/repositories"
	"github.com/yigit/coursehub/internal/app/repositories/memory"
	"github.com/yigit/coursehub/internal/pkg/auth"
	"github.com/yigit/coursehub/internal/pkg/events"
	"golang.org/x/crypto/bcrypt"
)

// MockIdentityRepository is a mock implementation of IdentityRepository
type MockIdentityRepository struct {
	mock.Mock
}

func (m *MockIdentityRepository) GetByUsername(ctx context.Context, username string) (*models.Identity, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Identity), args.Error(1)
}

func (m *MockIdentityRepository) Create(ctx context.Context, identity *models.Identity) error {
	return m.Called(ctx, identity).Error(0)
}

func (m *MockIdentityRepository) Update(ctx context.Context, identity *models.Identity) error {
	return m.Called(ctx, identity).Error(0)
}

// MockStudentRepository is a mock implementation of StudentRepository
type MockStudentRepository struct {
	mock.Mock
}

func (m *MockStudentRepository) Create(ctx context.Context, profile *models.StudentProfile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *MockStudentRepository) GetByID(ctx context.Context, id int64) (*models.StudentProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StudentProfile), args.Error(1)
}

func (m *MockStudentRepository) GetByOwnerUsername(ctx context.Context, username string) (*models.StudentProfile, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StudentProfile), args.Error(1)
}

func (m *MockStudentRepository) List(ctx context.Context) ([]*models.StudentProfile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.StudentProfile), args.Error(1)
}

func (m *MockStudentRepository) SaveCourses(ctx context.Context, profile *models.StudentProfile) error {
	return m.Called(ctx, profile).Error(0)
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestJWT() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "services-test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "coursehub",
	}).WithClock(func() time.Time { return testNow })
}

type fixture struct {
	repos     *repositories.Repositories
	publisher *recordingPublisher
	services  *Services
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := memory.NewStore().Repositories()
	publisher := &recordingPublisher{}
	return &fixture{
		repos:     repos,
		publisher: publisher,
		services: NewServices(Dependencies{
			Repos:     repos,
			Hasher:    auth.NewPasswordHasher(bcrypt.MinCost),
			Tokens:    newTestJWT(),
			Publisher: publisher,
			Logger:    zerolog.Nop(),
		}),
	}
}

func (f *fixture) register(t *testing.T, username string) *auth.Principal {
	t.Helper()
	identity, err := f.services.Auth.Register(context.Background(), username, "LongEnough1")
	require.NoError(t, err)
	return &auth.Principal{Username: identity.Username, Role: identity.Role}
}

func (f *fixture) course(t *testing.T, title string) models.Course {
	t.Helper()
	c, err := f.services.Courses.Create(context.Background(), "admin", title, "")
	require.NoError(t, err)
	return *c
}
