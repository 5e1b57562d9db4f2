package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "user-service/pkg/errors"
	"user-service/pkg/logger"
)

// Messages of the error envelope.
const (
	MsgDuplicateEmail   = "E-mail already exists."
	MsgDuplicateKey     = "Dup key exception."
	MsgValidationError  = "Validation Error"
	MsgValidationDetail = "Error on validation attributes"
	MsgMalformedRequest = "Malformed request body"
	MsgInternalError    = "An internal error occurred"
	MsgTimeout          = "The request timed out"
)

// StatusClientClosedRequest is recorded when the client goes away before the response is written.
const StatusClientClosedRequest = 499

// StandardError is the JSON envelope returned for every failed request.
type StandardError struct {
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Path      string    `json:"path"`
}

// FieldMessage is one field-level validation failure.
type FieldMessage struct {
	FieldName string `json:"fieldName"`
	Message   string `json:"message"`
}

// ValidationError extends StandardError with the ordered field failures.
type ValidationError struct {
	StandardError
	Errors []FieldMessage `json:"errors"`
}

// ErrorTranslator maps domain and infrastructure errors to the HTTP error envelope.
type ErrorTranslator struct {
	log *zap.Logger
	now func() time.Time
}

// NewErrorTranslator creates a new ErrorTranslator
func NewErrorTranslator(log *zap.Logger) *ErrorTranslator {
	return &ErrorTranslator{
		log: log,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Translate returns the status code and body describing err for a request on path.
// Unclassified errors are logged and reported without their details.
// A request cancelled by its client yields a nil body.
func (t *ErrorTranslator) Translate(err error, path string) (int, any) {
	var (
		dupErr        *apperrors.DuplicateKeyError
		validationErr *apperrors.ValidationError
		notFoundErr   *apperrors.NotFoundError
		malformedErr  *apperrors.MalformedRequestError
		rateLimitErr  *apperrors.RateLimitError
		methodErr     *apperrors.MethodNotAllowedError
	)

	switch {
	case errors.As(err, &dupErr):
		msg := MsgDuplicateKey
		if dupErr.Field == "email" {
			msg = MsgDuplicateEmail
		}
		return http.StatusBadRequest, t.standard(http.StatusBadRequest, http.StatusText(http.StatusBadRequest), msg, path)

	case errors.As(err, &validationErr):
		body := ValidationError{
			StandardError: t.standard(http.StatusBadRequest, MsgValidationError, MsgValidationDetail, path),
			Errors:        make([]FieldMessage, 0, len(validationErr.Violations)),
		}
		for _, v := range validationErr.Violations {
			body.Errors = append(body.Errors, FieldMessage{FieldName: v.Field, Message: v.Message})
		}
		return http.StatusBadRequest, body

	case errors.As(err, &notFoundErr):
		return http.StatusNotFound, t.standard(http.StatusNotFound, http.StatusText(http.StatusNotFound), notFoundErr.Error(), path)

	case errors.As(err, &malformedErr):
		return http.StatusBadRequest, t.standard(http.StatusBadRequest, http.StatusText(http.StatusBadRequest), MsgMalformedRequest, path)

	case errors.As(err, &rateLimitErr):
		return http.StatusTooManyRequests, t.standard(http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests), rateLimitErr.Error(), path)

	case errors.As(err, &methodErr):
		return http.StatusMethodNotAllowed, t.standard(http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed), methodErr.Error(), path)

	case errors.Is(err, context.Canceled):
		t.log.Debug("request cancelled by client", zap.String("path", path))
		return StatusClientClosedRequest, nil

	case errors.Is(err, context.DeadlineExceeded):
		t.log.Warn("request timed out", zap.String("path", path), zap.Error(err))
		return http.StatusServiceUnavailable, t.standard(http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable), MsgTimeout, path)

	default:
		t.log.Error("unhandled error", zap.String("path", path), zap.Error(err))
		return http.StatusInternalServerError, t.standard(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), MsgInternalError, path)
	}
}

// Abort writes the translated error and stops the handler chain.
func (t *ErrorTranslator) Abort(c *gin.Context, err error) {
	logger.WithContext(c.Request.Context(), t.log).Debug("request failed", zap.Error(err))
	status, body := t.Translate(err, c.Request.URL.Path)
	if body == nil {
		c.AbortWithStatus(status)
		return
	}
	c.AbortWithStatusJSON(status, body)
}

// NoRoute answers requests that match no registered route.
func (t *ErrorTranslator) NoRoute(c *gin.Context) {
	t.Abort(c, apperrors.NewNotFoundError("route",
		fmt.Sprintf("No handler found for %s %s", c.Request.Method, c.Request.URL.Path)))
}

// NoMethod answers requests whose path exists under a different method.
func (t *ErrorTranslator) NoMethod(c *gin.Context) {
	t.Abort(c, apperrors.NewMethodNotAllowedError(c.Request.Method, c.Request.URL.Path))
}

func (t *ErrorTranslator) standard(status int, errText, message, path string) StandardError {
	return StandardError{
		Timestamp: t.now(),
		Status:    status,
		Error:     errText,
		Message:   message,
		Path:      path,
	}
}
