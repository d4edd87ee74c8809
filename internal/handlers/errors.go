package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/prism-worklet/prism-api/pkg/errors"
	"github.com/prism-worklet/prism-api/pkg/jwt"
)

// attachError attaches err to the gin context so the observability middleware
// can include the reason in the request log. c.Error() returns *gin.Error (not
// the error interface), so we suppress errcheck here intentionally.
func attachError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err) //nolint:errcheck
	}
}

// respondError sends an error JSON response and attaches the error to the gin context
// so the observability middleware can include the reason in the request log.
func respondError(c *gin.Context, status int, message string, err error) {
	attachError(c, err)
	c.JSON(status, gin.H{"error": message})
}

// respondErrorWithDetails sends an error response with an additional details field.
func respondErrorWithDetails(c *gin.Context, status int, message string, details any, err error) {
	attachError(c, err)
	c.JSON(status, gin.H{"error": message, "details": details})
}

// respondServiceError maps a service error to its HTTP status. Unknown
// errors become a generic 500 so internals never leak to clients.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrConflict):
		respondError(c, http.StatusConflict, err.Error(), err)
	case errors.Is(err, apperrors.ErrNotFound):
		respondError(c, http.StatusNotFound, err.Error(), err)
	case errors.Is(err, apperrors.ErrInvalid),
		errors.Is(err, apperrors.ErrExpired):
		respondError(c, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, apperrors.ErrInvalidState):
		respondError(c, http.StatusBadRequest, "verification required", err)
	case errors.Is(err, apperrors.ErrUnauthorized),
		errors.Is(err, apperrors.ErrRevoked),
		errors.Is(err, jwt.ErrMalformedToken),
		errors.Is(err, jwt.ErrExpiredToken),
		errors.Is(err, jwt.ErrWrongKind),
		errors.Is(err, jwt.ErrRevokedToken),
		errors.Is(err, jwt.ErrInvalidClaim):
		respondError(c, http.StatusUnauthorized, "invalid or expired token", err)
	case errors.Is(err, apperrors.ErrTooManyRequests):
		respondError(c, http.StatusTooManyRequests, "too many requests", err)
	case errors.Is(err, apperrors.ErrInvalidInput):
		respondError(c, http.StatusUnprocessableEntity, err.Error(), err)
	default:
		respondError(c, http.StatusInternalServerError, "internal server error", err)
	}
}
