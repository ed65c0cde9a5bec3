package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/eureka-automation/eureka-site/internal/careers"
	"github.com/eureka-automation/eureka-site/pkg/interfaces"
)

type contextKey string

const (
	// RequestIDHeader carries the request identifier in both directions.
	RequestIDHeader = "X-Request-ID"

	ctxKeyRequestID contextKey = "request_id"
)

// RequestID reuses the inbound X-Request-ID or mints a UUIDv7.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" {
			id, err := uuid.NewV7()
			if err != nil {
				id = uuid.New()
			}
			rid = id.String()
		}
		c.Set(string(ctxKeyRequestID), rid)
		c.Writer.Header().Set(RequestIDHeader, rid)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), ctxKeyRequestID, rid))
		c.Next()
	}
}

// GetRequestID returns the request id stored by RequestID.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return v
	}
	return ""
}

// RequestLogger logs one line per request.
func RequestLogger(logger interfaces.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"request_id", GetRequestID(c.Request.Context()),
		}
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request", args...)
		case status >= http.StatusBadRequest:
			logger.Warn("request", args...)
		default:
			logger.Debug("request", args...)
		}
	}
}

// statusFor maps an error category onto the response status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, careers.ErrEndpointMissing), errors.Is(err, careers.ErrContactEndpointMissing):
		return http.StatusServiceUnavailable
	case errors.Is(err, careers.ErrSubmissionInFlight):
		return http.StatusConflict
	case goerrors.IsValidation(err):
		return http.StatusUnprocessableEntity
	case goerrors.IsCategory(err, goerrors.CategoryBadInput):
		return http.StatusBadRequest
	case goerrors.IsCategory(err, goerrors.CategoryExternal):
		return http.StatusBadGateway
	case goerrors.IsCategory(err, goerrors.CategoryCommand) && errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// errorBody converts err into the go-errors response shape without stack
// traces or sources. Internal errors are masked.
func errorBody(c *gin.Context, err error) *goerrors.Error {
	status := statusFor(err)

	var body *goerrors.Error
	var typed *goerrors.Error
	switch {
	case status == http.StatusInternalServerError:
		body = goerrors.New("an internal error occurred", goerrors.CategoryInternal).
			WithTextCode("INTERNAL_ERROR")
	case goerrors.As(err, &typed):
		body = typed.Clone()
	default:
		body = goerrors.New(err.Error(), goerrors.HTTPStatusToCategory(status)).
			WithTextCode(goerrors.HTTPStatusToTextCode(status))
	}

	body.Code = status
	body.Source = nil
	body.Location = nil
	body.Metadata = nil
	body.StackTrace = nil
	body.RequestID = GetRequestID(c.Request.Context())
	return body
}
