package controllers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/coursehub/internal/middleware"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
	"github.com/yigit/coursehub/internal/pkg/auth"
)

// parseIDParam reads a positive integer path parameter, writing a 400 on failure
func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError(fmt.Sprintf("%s must be a positive integer", name)))
		return 0, false
	}
	return id, true
}

// requirePrincipal returns the authenticated caller, writing a 401 when absent
func requirePrincipal(ctx *gin.Context) (*auth.Principal, bool) {
	principal, ok := middleware.GetPrincipal(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthenticated)
		return nil, false
	}
	return principal, true
}
