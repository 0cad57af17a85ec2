package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/coursehub/internal/app/models/dto"
	"github.com/yigit/coursehub/internal/app/services"
	"github.com/yigit/coursehub/internal/middleware"
)

// StudentController handles student records and enrollments
type StudentController struct {
	studentService *services.StudentService
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService *services.StudentService) *StudentController {
	return &StudentController{
		studentService: studentService,
	}
}

// GetAllStudents lists every student
// @Summary List students
// @Tags students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.StudentResponse} "Students"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Router /students [get]
func (c *StudentController) GetAllStudents(ctx *gin.Context) {
	profiles, err := c.studentService.List(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewStudentListResponse(profiles), ""))
}

// GetStudentByID returns one student
// @Summary Get student by ID
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Student"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [get]
func (c *StudentController) GetStudentByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	profile, err := c.studentService.GetByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewStudentResponse(profile), ""))
}

// GetMyProfile returns the caller's student record
// @Summary Get own profile
// @Tags students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Own profile"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Profile not found"
// @Router /students/me [get]
func (c *StudentController) GetMyProfile(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}

	profile, err := c.studentService.GetOwn(ctx.Request.Context(), principal)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewStudentResponse(profile), ""))
}

// AddMyCourses enrolls the caller in courses
// @Summary Add own courses
// @Description Body is a JSON array of course ids or {"courseIds": [...]}. Courses already taken are skipped.
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CourseIDsRequest true "Course ids"
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Updated profile"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 404 {object} dto.ErrorResponse "Unknown course id"
// @Failure 409 {object} dto.ErrorResponse "Concurrent modification"
// @Router /students/me/courses [post]
func (c *StudentController) AddMyCourses(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	var req dto.CourseIDsRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	profile, err := c.studentService.AddOwnCourses(ctx.Request.Context(), principal, req.CourseIDs)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewStudentResponse(profile), ""))
}

// RemoveMyCourse drops one of the caller's courses
// @Summary Remove own course
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Updated profile"
// @Failure 404 {object} dto.ErrorResponse "Unknown course or not enrolled"
// @Router /students/me/courses/{courseId} [delete]
func (c *StudentController) RemoveMyCourse(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	courseID, ok := parseIDParam(ctx, "courseId")
	if !ok {
		return
	}

	profile, err := c.studentService.RemoveOwnCourse(ctx.Request.Context(), principal, courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewStudentResponse(profile), ""))
}

// EnrollStudent adds courses to any student
// @Summary Enroll a student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body dto.CourseIDsRequest true "Course ids"
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Updated profile"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Unknown student or course"
// @Router /students/{id}/courses [put]
func (c *StudentController) EnrollStudent(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.CourseIDsRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	profile, err := c.studentService.AdminEnroll(ctx.Request.Context(), principal, id, req.CourseIDs)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewStudentResponse(profile), ""))
}

// RemoveStudentCourse drops a course from any student
// @Summary Remove a student's course
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param courseId path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Updated profile"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Unknown student, unknown course or not enrolled"
// @Router /students/{id}/courses/{courseId} [delete]
func (c *StudentController) RemoveStudentCourse(ctx *gin.Context) {
	principal, ok := requirePrincipal(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	courseID, ok := parseIDParam(ctx, "courseId")
	if !ok {
		return
	}

	profile, err := c.studentService.AdminRemoveCourse(ctx.Request.Context(), principal, id, courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewStudentResponse(profile), ""))
}
