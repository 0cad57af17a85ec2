package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsStrongPassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		password string
		want     bool
	}{
		{password: "short1A", want: false},
		{password: "longenough1", want: false},
		{password: "LONGENOUGH1", want: false},
		{password: "LongEnough", want: false},
		{password: "LongEnough1", want: true},
		{password: "Abcdefg1", want: true},
		{password: "Ünïcödé1", want: true},
		{password: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			assert.Equal(t, tt.want, IsStrongPassword(tt.password))
		})
	}
}

func TestIsValidUsername(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidUsername("alice"))
	assert.True(t, IsValidUsername("alice.smith_01"))
	assert.False(t, IsValidUsername("al"))
	assert.False(t, IsValidUsername("alice smith"))
	assert.False(t, IsValidUsername(strings.Repeat("a", UsernameMaxLength+1)))
	assert.False(t, IsValidUsername(""))
}

func TestCourseFieldRules(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidCourseTitle("Algorithms"))
	assert.False(t, IsValidCourseTitle(""))
	assert.True(t, IsValidCourseTitle(strings.Repeat("x", CourseTitleMaxLength)))
	assert.False(t, IsValidCourseTitle(strings.Repeat("x", CourseTitleMaxLength+1)))

	assert.True(t, IsValidCourseDescription(""))
	assert.True(t, IsValidCourseDescription(strings.Repeat("d", CourseDescriptionMaxLength)))
	assert.False(t, IsValidCourseDescription(strings.Repeat("d", CourseDescriptionMaxLength+1)))
}
