package auth

import (
	"net/http"
	"strings"

	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
	pkgauth "github.com/yigit/coursehub/internal/pkg/auth"
)

// Route patterns use gin syntax, matched against gin.Context.FullPath()
const (
	RouteRegister             = "/api/auth/register"
	RouteLogin                = "/api/auth/login"
	RouteWhoAmI               = "/api/auth/me"
	RouteCourses              = "/api/courses"
	RouteCourse               = "/api/courses/:id"
	RouteStudents             = "/api/students"
	RouteStudent              = "/api/students/:id"
	RouteStudentCourses       = "/api/students/:id/courses"
	RouteStudentCourse        = "/api/students/:id/courses/:courseId"
	RouteOwnProfile           = "/api/students/me"
	RouteOwnCourses           = "/api/students/me/courses"
	RouteOwnCourse            = "/api/students/me/courses/:courseId"
	RouteHealth               = "/health"
	RouteMetrics              = "/metrics"
	RouteSwagger              = "/swagger/*any"
	swaggerPrefix             = "/swagger/"
	anyMethod                 = "*"
	policyKeySeparator        = " "
	defaultForbiddenMessage   = "You don't have sufficient permissions for this operation"
	ownershipForbiddenMessage = "You can only access your own student profile"
)

// Rule grants roles access to one method and route pattern
type Rule struct {
	Method string
	Route  string
	Roles  []models.RoleType
}

// DefaultRules is the role table of the API. A protected route missing here is denied.
func DefaultRules() []Rule {
	admin := []models.RoleType{models.RoleAdmin}
	student := []models.RoleType{models.RoleStudent}
	both := []models.RoleType{models.RoleAdmin, models.RoleStudent}

	return []Rule{
		{Method: http.MethodGet, Route: RouteWhoAmI, Roles: both},

		{Method: http.MethodPost, Route: RouteCourses, Roles: admin},
		{Method: http.MethodGet, Route: RouteCourses, Roles: both},
		{Method: http.MethodDelete, Route: RouteCourse, Roles: admin},

		{Method: http.MethodGet, Route: RouteStudents, Roles: admin},
		{Method: http.MethodGet, Route: RouteStudent, Roles: admin},
		{Method: http.MethodPut, Route: RouteStudentCourses, Roles: admin},
		{Method: http.MethodDelete, Route: RouteStudentCourse, Roles: admin},

		{Method: http.MethodGet, Route: RouteOwnProfile, Roles: student},
		{Method: http.MethodPost, Route: RouteOwnCourses, Roles: student},
		{Method: http.MethodDelete, Route: RouteOwnCourse, Roles: student},
	}
}

// DefaultPublicRoutes bypass authentication entirely
func DefaultPublicRoutes() []Rule {
	return []Rule{
		{Method: http.MethodPost, Route: RouteRegister},
		{Method: http.MethodPost, Route: RouteLogin},
		{Method: http.MethodGet, Route: RouteHealth},
		{Method: http.MethodGet, Route: RouteMetrics},
		{Method: anyMethod, Route: RouteSwagger},
	}
}

// Policy decides which roles may call which route
type Policy struct {
	rules  map[string]map[models.RoleType]bool
	public map[string]bool
}

// NewPolicy builds a policy from role rules and public routes
func NewPolicy(rules []Rule, public []Rule) *Policy {
	p := &Policy{
		rules:  make(map[string]map[models.RoleType]bool, len(rules)),
		public: make(map[string]bool, len(public)),
	}
	for _, r := range rules {
		key := policyKey(r.Method, r.Route)
		if p.rules[key] == nil {
			p.rules[key] = map[models.RoleType]bool{}
		}
		for _, role := range r.Roles {
			p.rules[key][role] = true
		}
	}
	for _, r := range public {
		p.public[policyKey(r.Method, r.Route)] = true
	}
	return p
}

// NewDefaultPolicy returns the policy of the API
func NewDefaultPolicy() *Policy {
	return NewPolicy(DefaultRules(), DefaultPublicRoutes())
}

func policyKey(method, route string) string {
	return strings.ToUpper(method) + policyKeySeparator + route
}

// IsPublic reports whether the route needs no authentication. path is used when
// the router did not match a pattern.
func (p *Policy) IsPublic(method, route, path string) bool {
	if route == "" && strings.HasPrefix(path, swaggerPrefix) {
		return p.public[policyKey(anyMethod, RouteSwagger)]
	}
	return p.public[policyKey(method, route)] || p.public[policyKey(anyMethod, route)]
}

// Authorize returns ErrPermissionDenied unless role is granted method on route
func (p *Policy) Authorize(method, route string, role models.RoleType) error {
	roles, ok := p.rules[policyKey(method, route)]
	if !ok || !roles[role] {
		return apperrors.NewForbiddenError(defaultForbiddenMessage)
	}
	return nil
}

// AuthorizationService handles ownership checks that depend on loaded records
type AuthorizationService struct{}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService() *AuthorizationService {
	return &AuthorizationService{}
}

// ValidateStudentOwnership fails unless the principal owns the profile
func (s *AuthorizationService) ValidateStudentOwnership(profile *models.StudentProfile, principal *pkgauth.Principal) error {
	if profile == nil || principal == nil || profile.OwnerUsername != principal.Username {
		return apperrors.NewForbiddenError(ownershipForbiddenMessage)
	}
	return nil
}
