package middleware

import (
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/carmarket/internal/platform/metrics"
)

// RequestID reuses an incoming X-Request-ID or mints a uuid, and echoes it
// back on the response.
func RequestID() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            rid := c.Request().Header.Get(echo.HeaderXRequestID)
            if rid == "" {
                rid = uuid.NewString()
            }
            c.Response().Header().Set(echo.HeaderXRequestID, rid)
            return next(c)
        }
    }
}

// RequestLogger writes one zap line per request and records its latency in
// the HTTP histogram.  m may be nil.
func RequestLogger(log *zap.Logger, m *metrics.Metrics) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)
            if err != nil {
                // let echo write the response now so the status is final
                c.Error(err)
            }
            status := c.Response().Status
            elapsed := time.Since(start)
            route := c.Path()
            if route == "" {
                route = "unmatched"
            }

            if m != nil {
                m.HTTPRequestDuration.
                    WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).
                    Observe(elapsed.Seconds())
            }

            fields := []zap.Field{
                zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
                zap.String("method", c.Request().Method),
                zap.String("route", route),
                zap.String("uri", c.Request().RequestURI),
                zap.Int("status", status),
                zap.Duration("latency", elapsed),
                zap.String("user", userKey(c)),
            }
            var he *echo.HTTPError
            switch {
            case status >= http.StatusInternalServerError:
                log.Error("request", append(fields, zap.Error(err))...)
            case err != nil && !errors.As(err, &he):
                log.Warn("request", append(fields, zap.Error(err))...)
            default:
                log.Info("request", fields...)
            }
            return nil
        }
    }
}
