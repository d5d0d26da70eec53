package api

import (
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

// requestMetrics logs one structured line per request with route, status
// and timing.
func requestMetrics(logger *log.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if logger == nil {
				return next(c)
			}
			start := time.Now()
			err := next(c)

			fields := log.Fields{
				"method":   c.Request().Method,
				"route":    c.Path(),
				"status":   c.Response().Status,
				"total_ms": durationToMillis(time.Since(start)),
			}
			if err != nil {
				fields["error"] = err.Error()
			}
			logger.WithFields(fields).Info("api.request.metrics")
			return err
		}
	}
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
