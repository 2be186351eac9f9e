package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIError is the uniform error body: {message, errors?}.
type APIError struct {
	Message string      `json:"message"`
	Errors  interface{} `json:"errors,omitempty"`
}

func RespondError(ctx *gin.Context, status int, message string, details interface{}) {
	ctx.JSON(status, APIError{
		Message: message,
		Errors:  details,
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, message, details)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, message, nil)
}

func RespondUnAuthorized(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusUnauthorized, message, nil)
}
