package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseIDsRequest_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    []int64
		wantErr bool
	}{
		{name: "bare array", body: `[1, 2]`, want: []int64{1, 2}},
		{name: "object", body: `{"courseIds": [3]}`, want: []int64{3}},
		{name: "empty array", body: ` [] `, want: []int64{}},
		{name: "object without list", body: `{}`, want: nil},
		{name: "strings in array", body: `["a"]`, wantErr: true},
		{name: "number", body: `5`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req CourseIDsRequest
			err := json.Unmarshal([]byte(tt.body), &req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.CourseIDs)
		})
	}
}

func TestCourseIDsRequest_Validate(t *testing.T) {
	assert.ErrorIs(t, (&CourseIDsRequest{}).Validate(), ErrMissingCourseIDs)
	assert.NoError(t, (&CourseIDsRequest{CourseIDs: []int64{}}).Validate())
	assert.NoError(t, (&CourseIDsRequest{CourseIDs: []int64{1}}).Validate())
}

func TestHandleValidationError(t *testing.T) {
	var syntax map[string]interface{}
	err := json.Unmarshal([]byte(`{`), &syntax)
	detail := HandleValidationError(err)
	assert.Equal(t, ErrorCodeValidationFailed, detail.Code)

	var req CourseIDsRequest
	err = json.Unmarshal([]byte(`{"courseIds": "x"}`), &req)
	detail = HandleValidationError(err)
	assert.Equal(t, ErrorCodeValidationFailed, detail.Code)
	assert.Equal(t, ErrorSeverityError, detail.Severity)
}
