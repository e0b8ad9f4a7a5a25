package errors

import (
	"errors"
	"fmt"
	"strings"

	"threadboard/internal/logging"
	"threadboard/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Respond writes err as a JSON error response and aborts the chain.
func Respond(c *gin.Context, err error) {
	structuredErr := AsStructuredError(err)
	if structuredErr == nil {
		return
	}

	metrics.HTTPErrorsTotal.WithLabelValues(string(structuredErr.Type), string(structuredErr.Code)).Inc()
	logError(c, structuredErr)

	c.AbortWithStatusJSON(structuredErr.HTTPStatus(), structuredErr.ToResponse())
}

// logError logs an error with request context.
func logError(c *gin.Context, err *Error) {
	attrs := []any{
		"error_type", err.Type,
		"code", err.Code,
		"message", err.Message,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"status", err.HTTPStatus(),
	}

	for k, v := range err.Context {
		attrs = append(attrs, k, v)
	}

	log := logging.FromContext(c.Request.Context())
	switch err.Type {
	case TypeInternal:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		log.Error("Internal error", attrs...)
	case TypeUnauthorized, TypeForbidden:
		log.Warn("Rejected request", attrs...)
	default:
		log.Info("Client error", attrs...)
	}
}

// FromBindError turns a gin binding failure into a validation error with a readable message.
func FromBindError(err error) *Error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			parts = append(parts, describeField(fe))
		}
		return InvalidRequest(strings.Join(parts, "; "))
	}
	return InvalidRequest("malformed request body")
}

func describeField(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
