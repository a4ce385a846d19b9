package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/storefront-backend/internal/platform/apierr"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

// RespondServiceError maps service errors onto the JSON envelope. Anything that
// is not an *apierr.Error is logged and reported as a generic 500.
func RespondServiceError(c *gin.Context, log *logger.Logger, err error) {
	if ae := apierr.As(err); ae != nil {
		status := ae.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		if status >= http.StatusInternalServerError {
			logInternal(c, log, err)
			RespondError(c, status, ae.Code, errors.New("internal error"))
			return
		}
		RespondError(c, status, ae.Code, ae)
		return
	}
	if errors.Is(err, context.Canceled) {
		RespondError(c, 499, "request_cancelled", err)
		return
	}
	logInternal(c, log, err)
	RespondError(c, http.StatusInternalServerError, apierr.CodeInternal, errors.New("internal error"))
}

func logInternal(c *gin.Context, log *logger.Logger, err error) {
	if log == nil {
		return
	}
	log.Error("Request failed", "error", err, "method", c.Request.Method, "path", c.FullPath())
}
