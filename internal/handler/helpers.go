package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Vibhav-Deo/documentation-assistant/internal/ai"
	"github.com/Vibhav-Deo/documentation-assistant/internal/middleware"
	"github.com/Vibhav-Deo/documentation-assistant/internal/pkg/errcode"
	appErr "github.com/Vibhav-Deo/documentation-assistant/internal/pkg/errors"
	"github.com/Vibhav-Deo/documentation-assistant/internal/pkg/response"
)

func getOrgID(c *gin.Context) string {
	value, _ := c.Get(middleware.ContextOrgIDKey)
	orgID, _ := value.(string)
	return orgID
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("org_id", getOrgID(c)),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, appErr.ErrUnauthorized):
		response.Error(c, errcode.ErrUnauthorized, "unauthorized")
	case errors.Is(err, appErr.ErrForbidden):
		response.Error(c, errcode.ErrForbidden, "forbidden")
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, errcode.ErrNotFound, "not found")
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, errcode.ErrInvalid, "invalid request")
	case errors.Is(err, appErr.ErrConflict):
		response.Error(c, errcode.ErrConflict, "conflict")
	case errors.Is(err, appErr.ErrQuotaExceeded):
		response.Error(c, errcode.ErrQuotaExceeded, "monthly quota exceeded")
	case errors.Is(err, appErr.ErrDimensionMismatch):
		response.Error(c, errcode.ErrDimensionMismatch, "embedding dimension mismatch")
	case errors.Is(err, ai.ErrUnavailable), errors.Is(err, appErr.ErrEmbedderUnavailable):
		response.Error(c, errcode.ErrEmbedderUnavailable, "embedding provider unavailable")
	default:
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}
