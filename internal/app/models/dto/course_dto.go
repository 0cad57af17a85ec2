package dto

import (
	"time"

	"github.com/yigit/coursehub/internal/app/models"
)

// CreateCourseRequest represents a new catalog entry
type CreateCourseRequest struct {
	Title       string `json:"title" binding:"required,max=200" example:"Linear Algebra"`
	Description string `json:"description" binding:"max=2000" example:"Vectors, matrices and linear maps"`
}

// CourseResponse represents a course
type CourseResponse struct {
	ID          int64     `json:"id" example:"1"`
	Title       string    `json:"title" example:"Linear Algebra"`
	Description string    `json:"description,omitempty" example:"Vectors, matrices and linear maps"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewCourseResponse converts a course model
func NewCourseResponse(c models.Course) CourseResponse {
	return CourseResponse{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
	}
}

// NewCourseListResponse converts a course list, never returning nil
func NewCourseListResponse(courses []models.Course) []CourseResponse {
	out := make([]CourseResponse, 0, len(courses))
	for _, c := range courses {
		out = append(out, NewCourseResponse(c))
	}
	return out
}
