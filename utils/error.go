package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Message string   `json:"message"`
	Details string   `json:"details,omitempty"`
	Slots   []string `json:"slots,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				Logger := GetLogger()
				Logger.Error("Unhandled panic", zap.Any("error", err))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response
func JSONError(c *gin.Context, status int, message string, details string) {
	Logger := GetLogger()
	Logger.Warn(message, zap.String("details", details))
	c.JSON(status, ErrorResponse{Message: message, Details: details})
}

// RespondError maps a typed domain error to its HTTP status and writes the
// response. Unknown errors become a 500.
func RespondError(c *gin.Context, err error) {
	var (
		validationErr *ValidationError
		conflictErr   *SlotConflictError
		writeErr      *ConflictOnWriteError
		notFoundErr   *NotFoundError
		existsErr     *AlreadyExistsError
		authErr       *AuthorizationError
		stateErr      *InvalidStateTransitionError
		inactiveErr   *RoomNotActiveError
	)

	switch {
	case errors.As(err, &validationErr):
		JSONError(c, http.StatusBadRequest, "validation failed", err.Error())
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "slot conflict",
			Details: err.Error(),
			Slots:   conflictErr.Slots,
		})
	case errors.As(err, &writeErr):
		// A lost conditional-write race looks identical to a plain conflict
		// from the caller's point of view.
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "slot conflict",
			Details: err.Error(),
			Slots:   writeErr.Slots,
		})
	case errors.As(err, &notFoundErr):
		JSONError(c, http.StatusNotFound, "not found", err.Error())
	case errors.As(err, &existsErr):
		JSONError(c, http.StatusConflict, "already exists", err.Error())
	case errors.As(err, &authErr):
		JSONError(c, http.StatusForbidden, "not authorized", err.Error())
	case errors.As(err, &stateErr):
		JSONError(c, http.StatusConflict, "invalid state transition", err.Error())
	case errors.As(err, &inactiveErr):
		JSONError(c, http.StatusConflict, "room not active", err.Error())
	default:
		JSONError(c, http.StatusInternalServerError, "internal error", err.Error())
	}
}
