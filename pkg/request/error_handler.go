package request

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/mkamel7/academy-server-go/pkg/apperrors"
	"github.com/mkamel7/academy-server-go/pkg/response"
)

// Handler standardises error responses for handlers that report failures via
// c.Error instead of writing their own body.
func Handler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := errors.Join(errorsFromContext(c.Errors)...)
		if err == nil {
			return
		}

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			response.ErrorWithLog(logger, c, appErr.StatusCode(), appErr.Message(), err)
			return
		}

		status, message := classify(err)
		response.ErrorWithLog(logger, c, status, message, err)
	}
}

func errorsFromContext(errs []*gin.Error) []error {
	list := make([]error, 0, len(errs))
	for _, item := range errs {
		if item != nil && item.Err != nil {
			list = append(list, item.Err)
		}
	}
	return list
}

func classify(err error) (int, string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return http.StatusNotFound, "Resource not found"
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "22P02": // invalid text representation, typically a bad uuid
			return http.StatusBadRequest, "Invalid ID format"
		case "23505": // unique violation
			return http.StatusConflict, "Resource already exists"
		case "23503": // foreign key violation
			return http.StatusConflict, "Resource is referenced by other records"
		}
	}

	return http.StatusInternalServerError, "Internal server error"
}
