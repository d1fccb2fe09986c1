package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "lakemap/backend/pkg/errors"
)

// statusFor maps an error kind onto an HTTP status. Untyped errors are 500.
func statusFor(err error) int {
	kind, _ := apperrors.TypeOf(err)
	switch kind {
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorTypeConflict:
		return http.StatusConflict
	case apperrors.ErrorTypeStoreUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// errorResponse builds the status and body for err and logs server-side
// failures. Retryable failures carry a Retry-After header.
func (h *handler) errorResponse(c *gin.Context, msg string, err error) (int, gin.H) {
	status := statusFor(err)
	kind, ok := apperrors.TypeOf(err)
	if !ok {
		kind = "internal"
	}

	if apperrors.IsRetryable(err) {
		c.Header("Retry-After", "1")
	}
	if status >= http.StatusInternalServerError {
		h.log.Error(msg,
			zap.String("path", c.FullPath()),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		// Driver details stay in the log.
		return status, gin.H{"error": msg, "kind": kind}
	}
	return status, gin.H{"error": err.Error(), "kind": kind}
}

func (h *handler) writeError(c *gin.Context, msg string, err error) {
	status, body := h.errorResponse(c, msg, err)
	c.JSON(status, body)
}
