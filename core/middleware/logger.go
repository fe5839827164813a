package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"court-reservation-api/core/constants"
	"court-reservation-api/core/controller"
	"court-reservation-api/core/errors"
	"court-reservation-api/core/logger"
	"court-reservation-api/core/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/trace"
)

// RequestLogger tags each request with an id and writes one access line when
// the handler returns.
func (m *Middleware) RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now().UTC()
			req := c.Request()

			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = utils.GenerateRequestID()
			}
			c.Set(constants.ContextRequestID, requestID)
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			var traceID string
			if sc := trace.SpanContextFromContext(req.Context()); sc.IsValid() {
				traceID = uuid.UUID(sc.TraceID()).String()
			}

			logger.Info("access",
				"method", req.Method,
				"path", req.URL.Path,
				"status", c.Response().Status,
				"remote_ip", c.RealIP(),
				"user_agent", req.UserAgent(),
				"request_id", requestID,
				"trace_id", traceID,
				"latency", time.Since(start).String(),
			)
			return nil
		}
	}
}

func (m *Middleware) Recover() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if re := recover(); re != nil {
					if m.metrics != nil {
						m.metrics.PanicsRecovered.Inc()
					}
					logger.Error("Middleware:Recover", "panic", fmt.Sprint(re), "stack", string(debug.Stack()))
					err = controller.NewErrorResponse(http.StatusInternalServerError, errors.ErrInternalServer, "internal server error")
				}
			}()
			return next(c)
		}
	}
}
