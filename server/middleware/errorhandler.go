package middleware

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/invoxia/errors"
	"github.com/kbukum/invoxia/logger"
	"github.com/kbukum/invoxia/validation"
)

// ErrorHandlerConfig configures the terminal error handler.
type ErrorHandlerConfig struct {
	// WebhookPrefix marks third-party callback routes. Failures on these
	// routes are always answered with 200 and a {message} body.
	WebhookPrefix string
}

// ErrorHandler is the single writer of error responses. Handlers and earlier
// middleware report failures with c.Error; panics are recovered and
// reported as Internal failures.
func ErrorHandler(cfg ErrorHandlerConfig, log *logger.Logger) gin.HandlerFunc {
	h := &errorHandler{cfg: cfg, log: log}
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				if err, ok := r.(error); ok && stderrors.Is(err, http.ErrAbortHandler) {
					panic(r)
				}
				c.Abort()
				h.handle(c, errors.Internal(errors.GenericInternalMessage, fmt.Errorf("panic: %v", r)))
			}
		}()

		c.Next()

		if last := c.Errors.Last(); last != nil {
			h.handle(c, last.Err)
		}
	}
}

// NotFoundHandler reports unknown routes as NotFound failures.
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		abortWith(c, errors.NotFound("Route", c.Request.Method+" "+c.Request.URL.Path))
	}
}

type errorHandler struct {
	cfg ErrorHandlerConfig
	log *logger.Logger
}

func (h *errorHandler) handle(c *gin.Context, err error) {
	reqID := EnsureRequestID(c)
	appErr := classify(err).WithRequestID(reqID)

	h.logFailure(c, appErr)

	if c.Writer.Written() {
		return
	}
	if h.isWebhook(c) {
		c.JSON(http.StatusOK, appErr.ToWebhookResponse())
		return
	}
	c.JSON(appErr.HTTPStatus, appErr.ToResponse())
}

// classify turns any failure into an AppError. Untyped failures never
// expose their message to the client.
func classify(err error) *errors.AppError {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr
	}
	if verrs, ok := validation.AsErrors(err); ok {
		return errors.Validation(verrs.Message()).WithDetail("fields", verrs)
	}
	return errors.Internal(errors.GenericInternalMessage, err)
}

func (h *errorHandler) isWebhook(c *gin.Context) bool {
	if h.cfg.WebhookPrefix == "" {
		return false
	}
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	return strings.HasPrefix(path, h.cfg.WebhookPrefix)
}

func (h *errorHandler) logFailure(c *gin.Context, appErr *errors.AppError) {
	fields := map[string]interface{}{
		"code":   string(appErr.Code),
		"status": appErr.HTTPStatus,
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}
	for k, v := range appErr.Details {
		fields[k] = v
	}
	log := h.log.WithContext(c.Request.Context())
	if appErr.Cause != nil {
		log = log.WithError(appErr.Cause)
	}

	if appErr.Operational {
		log.Warn(appErr.Message, fields)
		return
	}
	fields["stack"] = appErr.Stack()
	log.Error(appErr.Message, fields)
}
