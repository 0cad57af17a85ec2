package dto

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/yigit/coursehub/internal/app/models"
)

// ErrMissingCourseIDs is returned when the body carries no course id list
var ErrMissingCourseIDs = errors.New("courseIds is required")

// CourseIDsRequest is a list of course ids, sent either as a bare
// JSON array or as {"courseIds": [...]}.
type CourseIDsRequest struct {
	CourseIDs []int64 `json:"courseIds" example:"1,2"`
}

// UnmarshalJSON accepts both request shapes
func (r *CourseIDsRequest) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &r.CourseIDs)
	}

	var body struct {
		CourseIDs []int64 `json:"courseIds"`
	}
	if err := json.Unmarshal(trimmed, &body); err != nil {
		return err
	}
	r.CourseIDs = body.CourseIDs
	return nil
}

// Validate rejects a body without a list. An empty list is allowed and changes nothing.
func (r *CourseIDsRequest) Validate() error {
	if r.CourseIDs == nil {
		return ErrMissingCourseIDs
	}
	return nil
}

// StudentResponse represents a student record with its courses
type StudentResponse struct {
	ID       int64            `json:"id" example:"1"`
	Username string           `json:"username" example:"alice"`
	Courses  []CourseResponse `json:"courses"`
}

// NewStudentResponse converts a student profile
func NewStudentResponse(p *models.StudentProfile) StudentResponse {
	return StudentResponse{
		ID:       p.ID,
		Username: p.OwnerUsername,
		Courses:  NewCourseListResponse(p.Courses),
	}
}

// NewStudentListResponse converts a list of student profiles
func NewStudentListResponse(profiles []*models.StudentProfile) []StudentResponse {
	out := make([]StudentResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, NewStudentResponse(p))
	}
	return out
}
