package handler

import (
    "context"
    "errors"
    "io"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/carmarket/internal/middleware"
)

// ImageStore is where uploaded car photos go.  storage.MinIOStore
// implements it.
type ImageStore interface {
    Put(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error)
    Open(ctx context.Context, key string) (io.ReadCloser, string, error)
    Remove(ctx context.Context, key string) error
}

// getUserID returns the signed-in caller.  Routes using it sit behind
// RequireLogin so a missing id is a wiring bug.
func getUserID(c echo.Context) (uint64, error) {
    if id, ok := middleware.UserID(c); ok {
        return id, nil
    }
    return 0, errors.New("no user in context")
}

// pathID parses a positive numeric path parameter.  Anything else is 404,
// the same as an id that does not exist.
func pathID(c echo.Context, name string) (uint64, error) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, echo.ErrNotFound
    }
    return id, nil
}

// internalError logs err and answers 500 without leaking it.
func internalError(c echo.Context, log *zap.Logger, msg string, err error) error {
    log.Error(msg,
        zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
        zap.String("path", c.Request().URL.Path),
        zap.Error(err))
    return echo.NewHTTPError(http.StatusInternalServerError, "Something went wrong.")
}

// ErrorHandler renders HTTP errors as the error page, or as JSON for
// requests that asked for it.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
    return func(err error, c echo.Context) {
        if c.Response().Committed {
            return
        }
        code := http.StatusInternalServerError
        msg := http.StatusText(code)
        var he *echo.HTTPError
        if errors.As(err, &he) {
            code = he.Code
            if m, ok := he.Message.(string); ok {
                msg = m
            } else {
                msg = http.StatusText(code)
            }
        } else {
            log.Error("unhandled error", zap.String("path", c.Request().URL.Path), zap.Error(err))
        }

        if c.Request().Method == http.MethodHead {
            _ = c.NoContent(code)
            return
        }
        if c.Request().Header.Get(echo.HeaderAccept) == echo.MIMEApplicationJSON {
            _ = c.JSON(code, echo.Map{"error": msg})
            return
        }
        if rerr := c.Render(code, "error", echo.Map{"Code": code, "Message": msg}); rerr != nil {
            _ = c.String(code, msg)
        }
    }
}
