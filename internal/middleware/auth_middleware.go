package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	appauth "github.com/yigit/coursehub/internal/app/auth"
	"github.com/yigit/coursehub/internal/app/models/dto"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
	"github.com/yigit/coursehub/internal/pkg/auth"
	"github.com/yigit/coursehub/internal/pkg/logger"
	"github.com/yigit/coursehub/internal/pkg/metrics"
)

// Gin context keys set by Authenticate
const (
	ContextKeyPrincipal = "principal"
	ContextKeyUsername  = "username"
	ContextKeyRole      = "role"
)

const reasonMissingToken = "missing_token"
const reasonForbidden = "forbidden"

// AccessControl authenticates bearer tokens and enforces the route policy
type AccessControl struct {
	tokens  *auth.JWTService
	policy  *appauth.Policy
	metrics *metrics.Metrics
}

// NewAccessControl creates a new AccessControl
func NewAccessControl(tokens *auth.JWTService, policy *appauth.Policy, m *metrics.Metrics) *AccessControl {
	return &AccessControl{
		tokens:  tokens,
		policy:  policy,
		metrics: m,
	}
}

// Authenticate verifies the bearer token of every non-public request and
// attaches the principal to the request context.
func (m *AccessControl) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.policy.IsPublic(c.Request.Method, c.FullPath(), c.Request.URL.Path) {
			c.Next()
			return
		}

		tokenString, err := auth.ExtractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			m.reject(c, reasonMissingToken, err)
			return
		}

		principal, err := m.tokens.Verify(tokenString)
		if err != nil {
			reason := auth.KindMalformed.String()
			var verr *auth.VerificationError
			if errors.As(err, &verr) {
				reason = verr.Kind.String()
			}
			m.reject(c, reason, err)
			return
		}

		ctx := auth.WithPrincipal(c.Request.Context(), principal)
		l := logger.FromContext(ctx).With().Str("username", principal.Username).Logger()
		c.Request = c.Request.WithContext(logger.WithContext(ctx, l))

		c.Set(ContextKeyPrincipal, principal)
		c.Set(ContextKeyUsername, principal.Username)
		c.Set(ContextKeyRole, principal.Role)
		c.Next()
	}
}

// Authorize checks the caller's role against the policy table. Unmatched
// routes are left to the router's 404 handling.
func (m *AccessControl) Authorize() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || m.policy.IsPublic(c.Request.Method, route, c.Request.URL.Path) {
			c.Next()
			return
		}

		principal, ok := GetPrincipal(c)
		if !ok {
			m.reject(c, reasonMissingToken, apperrors.ErrUnauthenticated)
			return
		}

		if err := m.policy.Authorize(c.Request.Method, route, principal.Role); err != nil {
			m.metrics.AuthRejected(reasonForbidden)
			logger.FromContext(c.Request.Context()).Info().
				Str("route", route).
				Str("role", string(principal.Role)).
				Msg("Access denied by policy")
			HandleAPIError(c, err)
			return
		}

		c.Next()
	}
}

func (m *AccessControl) reject(c *gin.Context, reason string, err error) {
	m.metrics.AuthRejected(reason)
	status, detail := ErrorStatus(err)
	if status != http.StatusUnauthorized {
		status, detail = http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
	}
	c.Header("WWW-Authenticate", `Bearer realm="coursehub"`)
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

// GetPrincipal returns the principal set by Authenticate
func GetPrincipal(c *gin.Context) (*auth.Principal, bool) {
	if v, exists := c.Get(ContextKeyPrincipal); exists {
		if p, ok := v.(*auth.Principal); ok && p != nil {
			return p, true
		}
	}
	return auth.PrincipalFromContext(c.Request.Context())
}
