package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shanegrouber/meow-bank-api/internal/middleware"
	"github.com/shanegrouber/meow-bank-api/internal/service"
)

// respondWithServiceError maps a service failure to the nearest HTTP status
// without altering its message: not-found to 404, validation and business
// rule failures to 400, anything operational to 500.
func respondWithServiceError(c *gin.Context, err error) {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		switch svcErr.Kind {
		case service.KindNotFound:
			middleware.RespondWithError(c, http.StatusNotFound, svcErr.Message)
		case service.KindValidation, service.KindBusinessRule:
			middleware.RespondWithError(c, http.StatusBadRequest, svcErr.Message)
		default:
			middleware.RespondWithError(c, http.StatusInternalServerError, svcErr.Message)
		}
		return
	}
	middleware.RespondWithError(c, http.StatusInternalServerError, "Internal server error")
}
