package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/app/repositories"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
	"github.com/yigit/coursehub/internal/pkg/auth"
	"github.com/yigit/coursehub/internal/pkg/events"
	"github.com/yigit/coursehub/internal/pkg/metrics"
	"github.com/yigit/coursehub/internal/pkg/validation"
)

// AuthService handles registration, authentication and token issuing
type AuthService struct {
	identities repositories.IdentityRepository
	students   repositories.StudentRepository
	tx         repositories.TxManager
	hasher     *auth.PasswordHasher
	tokens     *auth.JWTService
	publisher  events.Publisher
	metrics    *metrics.Metrics
	logger     zerolog.Logger

	dummyOnce   sync.Once
	dummyDigest string
}

// NewAuthService creates a new AuthService
func NewAuthService(
	identities repositories.IdentityRepository,
	students repositories.StudentRepository,
	tx repositories.TxManager,
	hasher *auth.PasswordHasher,
	tokens *auth.JWTService,
	publisher events.Publisher,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		identities: identities,
		students:   students,
		tx:         tx,
		hasher:     hasher,
		tokens:     tokens,
		publisher:  publisher,
		metrics:    metrics,
		logger:     logger,
	}
}

// Register creates a STUDENT identity and its empty profile atomically
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.Identity, error) {
	if _, err := s.identities.GetByUsername(ctx, username); err == nil {
		return nil, apperrors.ErrDuplicateIdentity
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	if !validation.IsStrongPassword(password) {
		return nil, apperrors.ErrWeakPassword
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	identity := &models.Identity{
		Username:     username,
		PasswordHash: digest,
		Role:         models.RoleStudent,
	}
	profile := &models.StudentProfile{}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.identities.Create(ctx, identity); err != nil {
			return err
		}
		profile.OwnerID = identity.ID
		return s.students.Create(ctx, profile)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.ErrDuplicateIdentity
		}
		s.logger.Error().Err(err).Str("username", username).Msg("Registration transaction failed")
		return nil, fmt.Errorf("failed to register identity: %w", err)
	}

	s.metrics.Registered()
	s.logger.Info().Int64("identityID", identity.ID).Str("username", username).Msg("Student registered")
	publish(ctx, s.publisher, events.NewEvent(events.TypeIdentityRegistered, "identity:"+strconv.FormatInt(identity.ID, 10), username, map[string]interface{}{
		"identityId": identity.ID,
		"profileId":  profile.ID,
		"username":   username,
		"role":       identity.Role,
	}))

	return identity, nil
}

// Authenticate returns the identity when username and password match.
// Unknown users and wrong passwords fail identically.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.Identity, error) {
	identity, err := s.identities.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// Spend the same hashing time as a real comparison.
			s.hasher.Verify(password, s.dummyHash())
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load identity: %w", err)
	}

	if !s.hasher.Verify(password, identity.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return identity, nil
}

// Login authenticates and issues an access token
func (s *AuthService) Login(ctx context.Context, username, password string) (*auth.IssuedToken, error) {
	identity, err := s.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			s.logger.Info().Str("username", username).Msg("Login failed")
		}
		return nil, err
	}

	token, err := s.tokens.Issue(identity)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return token, nil
}

// EnsureAdmin creates the bootstrap ADMIN account, or promotes and re-keys an
// existing identity with that username. An identity that owns a student
// profile is never promoted.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) (*models.Identity, bool, error) {
	if username == "" || password == "" {
		return nil, false, fmt.Errorf("%w: admin username and password are required", apperrors.ErrValidationFailed)
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, false, fmt.Errorf("failed to hash password: %w", err)
	}

	existing, err := s.identities.GetByUsername(ctx, username)
	switch {
	case err == nil:
		if existing.Role == models.RoleAdmin && s.hasher.Verify(password, existing.PasswordHash) {
			return existing, false, nil
		}
		if existing.Role != models.RoleAdmin {
			if _, err := s.students.GetByOwnerUsername(ctx, username); err == nil {
				return nil, false, apperrors.NewCustomError(apperrors.ErrDuplicateIdentity,
					fmt.Sprintf("%q is a student account and cannot become the admin", username))
			} else if !errors.Is(err, repositories.ErrNotFound) {
				return nil, false, fmt.Errorf("failed to check student profile: %w", err)
			}
		}
		existing.Role = models.RoleAdmin
		existing.PasswordHash = digest
		if err := s.identities.Update(ctx, existing); err != nil {
			return nil, false, fmt.Errorf("failed to promote admin: %w", err)
		}
		return existing, false, nil
	case errors.Is(err, repositories.ErrNotFound):
		admin := &models.Identity{Username: username, PasswordHash: digest, Role: models.RoleAdmin}
		if err := s.identities.Create(ctx, admin); err != nil {
			return nil, false, fmt.Errorf("failed to create admin: %w", err)
		}
		return admin, true, nil
	default:
		return nil, false, fmt.Errorf("failed to load admin: %w", err)
	}
}

func (s *AuthService) dummyHash() string {
	s.dummyOnce.Do(func() {
		digest, err := s.hasher.Hash("timing-equalizer-password")
		if err == nil {
			s.dummyDigest = digest
		}
	})
	return s.dummyDigest
}
