package handler

import (
	"errors"
	"net/http"
	"user-service/shared/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const internalErrorMessage = "An unexpected internal error occurred"

// handleServiceError writes the ErrorResponse for err and aborts the request.
func handleServiceError(c *gin.Context, err error) {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		zap.L().Error("Unhandled internal error in handleServiceError", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
			Code:    http.StatusInternalServerError,
			Message: internalErrorMessage,
		})
		return
	}

	if appErr.Kind == models.KindInternal {
		zap.L().Error("Internal error while serving request",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}

	serviceErrorsTotal.WithLabelValues(appErr.Kind.String()).Inc()
	c.AbortWithStatusJSON(appErr.Kind.HTTPStatus(), models.NewErrorResponse(appErr))
}

// handleBindError reports a malformed request body.
func handleBindError(c *gin.Context, err error) {
	serviceErrorsTotal.WithLabelValues(models.KindBadRequest.String()).Inc()
	c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{
		Code:    http.StatusBadRequest,
		Message: "Invalid request data: " + err.Error(),
	})
}
