package middleware

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/coursehub/internal/app/models/dto"
	"github.com/yigit/coursehub/internal/pkg/logger"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
	}
}

// jsonFieldName reports validation failures by their JSON names
func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}

// selfValidator is implemented by request bodies with rules beyond struct tags
type selfValidator interface {
	Validate() error
}

// BindJSON binds and validates the request body into obj. On failure it
// writes a VAL_001 response and returns false.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		logger.FromContext(c.Request.Context()).Debug().Err(err).Msg("Invalid request payload")
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return false
	}

	if v, ok := obj.(selfValidator); ok {
		if err := v.Validate(); err != nil {
			detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, err.Error())
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
			return false
		}
	}
	return true
}
