package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/yigit/coursehub/internal/app/models"
)

// JWT errors
var (
	ErrTokenMalformed        = errors.New("token is malformed")
	ErrTokenSignatureInvalid = errors.New("token signature is invalid")
	ErrTokenExpired          = errors.New("token expired")
	ErrMissingBearer         = errors.New("missing bearer token")
)

// VerificationKind classifies why a token was rejected
type VerificationKind int

const (
	KindMalformed VerificationKind = iota + 1
	KindSignatureInvalid
	KindExpired
)

func (k VerificationKind) String() string {
	switch k {
	case KindMalformed:
		return "malformed"
	case KindSignatureInvalid:
		return "signature_invalid"
	case KindExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// VerificationError is returned by Verify for every rejected token
type VerificationError struct {
	Kind  VerificationKind
	cause error
}

func (e *VerificationError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("token %s: %v", e.Kind, e.cause)
	}
	return "token " + e.Kind.String()
}

func (e *VerificationError) Unwrap() error {
	return e.cause
}

// Is matches the sentinel of the error's kind
func (e *VerificationError) Is(target error) bool {
	switch target {
	case ErrTokenMalformed:
		return e.Kind == KindMalformed
	case ErrTokenSignatureInvalid:
		return e.Kind == KindSignatureInvalid
	case ErrTokenExpired:
		return e.Kind == KindExpired
	}
	return false
}

func newVerificationError(kind VerificationKind, cause error) *VerificationError {
	return &VerificationError{Kind: kind, cause: cause}
}

// JWTConfig defines JWT configuration settings
type JWTConfig struct {
	SecretKey      string
	AccessTokenExp time.Duration
	TokenIssuer    string
}

// Claims defines JWT token content
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Principal is the verified identity of a request
type Principal struct {
	Username string          `json:"username" example:"alice"`
	Role     models.RoleType `json:"role" example:"STUDENT"`
}

// IssuedToken is a signed access token with its expiry
type IssuedToken struct {
	AccessToken string
	ExpiresAt   time.Time
	ExpiresIn   int64
}

// JWTService handles JWT operations
type JWTService struct {
	config JWTConfig
	now    func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{
		config: config,
		now:    time.Now,
	}
}

// WithClock replaces the time source, used by tests
func (s *JWTService) WithClock(now func() time.Time) *JWTService {
	s.now = now
	return s
}

// Issue signs an access token for the identity
func (s *JWTService) Issue(identity *models.Identity) (*IssuedToken, error) {
	if identity == nil || identity.Username == "" {
		return nil, errors.New("cannot issue token without a username")
	}

	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.config.AccessTokenExp)

	claims := &Claims{
		Role: string(identity.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Username,
			Issuer:    s.config.TokenIssuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	return &IssuedToken{
		AccessToken: signed,
		ExpiresAt:   expiresAt,
		ExpiresIn:   int64(s.config.AccessTokenExp.Seconds()),
	}, nil
}

// Verify checks signature, issuer and expiry and returns the principal.
// Every failure is a *VerificationError.
func (s *JWTService) Verify(tokenString string) (*Principal, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.config.TokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(s.now),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.SecretKey), nil
	})
	if err != nil {
		return nil, classify(tokenString, err)
	}
	if !token.Valid {
		return nil, newVerificationError(KindSignatureInvalid, nil)
	}

	if claims.Subject == "" {
		return nil, newVerificationError(KindMalformed, errors.New("missing subject"))
	}
	role, ok := models.ParseRole(claims.Role)
	if !ok {
		return nil, newVerificationError(KindMalformed, fmt.Errorf("unknown role %q", claims.Role))
	}

	return &Principal{Username: claims.Subject, Role: role}, nil
}

// classify maps jwt parser errors onto verification kinds. The parser reports an
// undecodable signature segment as malformed, so a token whose header and claims
// still decode is treated as a signature failure.
func classify(tokenString string, err error) *VerificationError {
	switch {
	case errors.Is(err, jwt.ErrTokenInvalidClaims):
		if errors.Is(err, jwt.ErrTokenExpired) {
			return newVerificationError(KindExpired, err)
		}
		return newVerificationError(KindMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return newVerificationError(KindSignatureInvalid, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		unverified := jwt.NewParser(jwt.WithStrictDecoding())
		if _, _, uerr := unverified.ParseUnverified(tokenString, &Claims{}); uerr == nil {
			return newVerificationError(KindSignatureInvalid, err)
		}
		return newVerificationError(KindMalformed, err)
	default:
		return newVerificationError(KindMalformed, err)
	}
}

// ExtractBearerToken extracts the token from the Authorization header
func ExtractBearerToken(authHeader string) (string, error) {
	const prefix = "Bearer "
	if len(authHeader) <= len(prefix) || !strings.EqualFold(authHeader[:len(prefix)], prefix) {
		return "", ErrMissingBearer
	}

	token := strings.TrimSpace(authHeader[len(prefix):])
	if token == "" {
		return "", ErrMissingBearer
	}
	return token, nil
}
