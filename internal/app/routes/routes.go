package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/coursehub/internal/app/controllers"
	"github.com/yigit/coursehub/internal/app/models/dto"
	"github.com/yigit/coursehub/internal/pkg/logger"
	"github.com/yigit/coursehub/internal/pkg/metrics"
)

const healthCheckTimeout = 2 * time.Second

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Controllers groups the HTTP handlers
type Controllers struct {
	Auth     *controllers.AuthController
	Courses  *controllers.CourseController
	Students *controllers.StudentController
}

// SetupRouter configures all application routes. Access control is applied
// globally by the caller, so groups carry no per-route middleware.
func SetupRouter(router *gin.Engine, c *Controllers, store Pinger, m *metrics.Metrics) {
	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", c.Auth.Register)
		auth.POST("/login", c.Auth.Login)
		auth.GET("/me", c.Auth.Me)
	}

	courses := api.Group("/courses")
	{
		courses.POST("", c.Courses.CreateCourse)
		courses.GET("", c.Courses.GetAllCourses)
		courses.DELETE("/:id", c.Courses.DeleteCourse)
	}

	students := api.Group("/students")
	{
		// Self-service routes
		students.GET("/me", c.Students.GetMyProfile)
		students.POST("/me/courses", c.Students.AddMyCourses)
		students.DELETE("/me/courses/:courseId", c.Students.RemoveMyCourse)

		// Admin routes
		students.GET("", c.Students.GetAllStudents)
		students.GET("/:id", c.Students.GetStudentByID)
		students.PUT("/:id/courses", c.Students.EnrollStudent)
		students.DELETE("/:id/courses/:courseId", c.Students.RemoveStudentCourse)
	}

	router.GET("/health", healthHandler(store))
	router.GET("/metrics", gin.WrapH(m.Handler()))
}

func healthHandler(store Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			logger.FromContext(ctx).Error().Err(err).Msg("Health check failed")
			detail := dto.NewErrorDetail(dto.ErrorCodeDatabaseError, "Database unavailable").
				WithSeverity(dto.ErrorSeverityCritical)
			c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(detail))
			return
		}

		c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.HealthResponse{Status: "ok", Database: "up"}, ""))
	}
}
