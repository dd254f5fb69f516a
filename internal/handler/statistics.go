package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/carmarket/internal/service"
)

type StatisticsHandler struct {
    Stats *service.Statistics
    Log   *zap.Logger
}

func NewStatisticsHandler(s *service.Statistics, log *zap.Logger) *StatisticsHandler {
    if s == nil {
        panic("nil statistics passed to NewStatisticsHandler")
    }
    if log == nil {
        log = zap.NewNop()
    }
    return &StatisticsHandler{Stats: s, Log: log}
}

// Show: GET /statistics/.  Counts are computed on every request.
func (h *StatisticsHandler) Show(c echo.Context) error {
    st, err := h.Stats.Collect(c.Request().Context())
    if err != nil {
        return internalError(c, h.Log, "collect statistics", err)
    }
    return c.Render(http.StatusOK, "statistics", echo.Map{"Stats": st})
}
