package models

// StudentProfile defines the student model based on the 'student_profiles' table.
// The owner never changes after creation.
type StudentProfile struct {
	ID            int64  `json:"id" db:"id" example:"1"`
	OwnerID       int64  `json:"ownerId" db:"owner_id" example:"5"`
	OwnerUsername string `json:"username" db:"username" example:"alice"`
	// Version is bumped on every enrollment change
	Version int64 `json:"-" db:"version"`

	// Relations (populated when needed)
	Courses []Course `json:"courses"`
}

// HasCourse reports whether the course is in the profile's set
func (s *StudentProfile) HasCourse(courseID int64) bool {
	for _, c := range s.Courses {
		if c.ID == courseID {
			return true
		}
	}
	return false
}

// CourseIDs returns the ids of the enrolled courses in set order
func (s *StudentProfile) CourseIDs() []int64 {
	ids := make([]int64, 0, len(s.Courses))
	for _, c := range s.Courses {
		ids = append(ids, c.ID)
	}
	return ids
}

// Clone returns a deep copy, so callers can mutate the course set without touching the original
func (s *StudentProfile) Clone() *StudentProfile {
	if s == nil {
		return nil
	}
	c := *s
	c.Courses = append([]Course(nil), s.Courses...)
	return &c
}
