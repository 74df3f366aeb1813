package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/doctran/doctran/internal/middleware"
	"github.com/doctran/doctran/internal/pkg/errcode"
	appErr "github.com/doctran/doctran/internal/pkg/errors"
	"github.com/doctran/doctran/internal/pkg/response"
)

func getOwnerID(c *gin.Context) string {
	value, _ := c.Get(middleware.ContextOwnerIDKey)
	ownerID, _ := value.(string)
	return ownerID
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("owner_id", getOwnerID(c)),
		zap.Error(err),
	)
	switch {
	case appErr.Is(err, appErr.ErrUnauthorized):
		response.Error(c, errcode.ErrUnauthorized, "unauthorized")
	case appErr.Is(err, appErr.ErrForbidden):
		response.Error(c, errcode.ErrForbidden, "forbidden")
	case appErr.IsNotFound(err):
		response.Error(c, errcode.ErrNotFound, "not found")
	case appErr.Is(err, appErr.ErrInvalid):
		response.Error(c, errcode.ErrInvalid, err.Error())
	case appErr.IsConflict(err):
		response.Error(c, errcode.ErrConflict, err.Error())
	case appErr.Is(err, appErr.ErrTooMany):
		response.Error(c, errcode.ErrTooMany, "too many requests")
	case appErr.Is(err, appErr.ErrUnavailable):
		response.Error(c, errcode.ErrPipelineBusy, "pipeline is busy, retry later")
	default:
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}
