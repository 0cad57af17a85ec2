package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/coursehub/internal/app/models/dto"
)

func bindRouter() *gin.Engine {
	r := gin.New()
	r.POST("/register", func(c *gin.Context) {
		var req dto.RegisterRequest
		if !BindJSON(c, &req) {
			return
		}
		c.JSON(http.StatusOK, req)
	})
	r.POST("/courses", func(c *gin.Context) {
		var req dto.CourseIDsRequest
		if !BindJSON(c, &req) {
			return
		}
		c.JSON(http.StatusOK, req)
	})
	return r
}

func post(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func mustField(t *testing.T, body []byte, path ...string) json.RawMessage {
	t.Helper()
	raw := json.RawMessage(body)
	for _, key := range path {
		var obj map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(raw, &obj))
		var ok bool
		raw, ok = obj[key]
		require.True(t, ok, "missing field %s", key)
	}
	return raw
}

func TestBindJSON(t *testing.T) {
	r := bindRouter()

	w := post(r, "/register", `{"username":"alice","password":"LongEnough1"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = post(r, "/register", `{"username":"al","password":"LongEnough1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `"VAL_001"`, string(mustField(t, w.Body.Bytes(), "error", "code")))
	assert.JSONEq(t, `"username"`, string(mustField(t, w.Body.Bytes(), "error", "field")))

	w = post(r, "/register", `{"username":"alice","password":"`+strings.Repeat("A", 73)+`"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(r, "/register", ``)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(r, "/register", `{"username":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBindJSON_CourseIDs(t *testing.T) {
	r := bindRouter()

	w := post(r, "/courses", `[1,2]`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[1,2]`, string(mustField(t, w.Body.Bytes(), "courseIds")))

	w = post(r, "/courses", `{"courseIds":[3]}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = post(r, "/courses", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(r, "/courses", `["x"]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
