package server

import (
	"time"

	"github.com/labstack/echo/v4"
)

// requestLogger logs every request with its request ID.
func (s *Server) requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			status := res.Status

			result := "ok"
			if status >= 400 {
				result = "failed"
			}
			args := []any{
				"module", "http",
				"action", "request",
				"result", result,
				"method", req.Method,
				"path", req.URL.Path,
				"status_code", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", res.Header().Get(echo.HeaderXRequestID),
				"remote_ip", c.RealIP(),
			}

			switch {
			case status >= 500:
				s.logger.Error("http request", args...)
			case status >= 400:
				s.logger.Warn("http request", args...)
			default:
				s.logger.Debug("http request", args...)
			}

			return nil
		}
	}
}

// instrument records request metrics by route pattern.
func (s *Server) instrument() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().URL.Path == "/metrics" {
				return next(c)
			}

			done := s.metrics.RequestStarted(c.Request().Method, c.Path())
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			done(c.Response().Status)
			return nil
		}
	}
}
