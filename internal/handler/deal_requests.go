package handler

import (
    "context"
    "errors"
    "fmt"
    "net/http"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/carmarket/internal/middleware"
    "github.com/iliyamo/carmarket/internal/model"
    "github.com/iliyamo/carmarket/internal/repository"
    "github.com/iliyamo/carmarket/internal/service"
)

// DealHandler serves deal request submission and the owner's decisions.
type DealHandler struct {
    Cars     *repository.CarRepo
    Deals    *repository.DealRequestRepo
    Workflow *service.DealWorkflow
    Log      *zap.Logger
}

func NewDealHandler(cars *repository.CarRepo, deals *repository.DealRequestRepo, wf *service.DealWorkflow, log *zap.Logger) *DealHandler {
    if cars == nil || deals == nil || wf == nil {
        panic("nil dependency passed to NewDealHandler")
    }
    if log == nil {
        log = zap.NewNop()
    }
    return &DealHandler{Cars: cars, Deals: deals, Workflow: wf, Log: log}
}

// Submit: GET/POST /:carId/deal-request/.  A missing car is 404 before
// the role is looked at; non-seekers go back to the car page.
func (h *DealHandler) Submit(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return err
    }
    id, err := pathID(c, "carId")
    if err != nil {
        return err
    }
    ctx := c.Request().Context()
    car, err := h.Cars.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrCarNotFound) {
            return echo.ErrNotFound
        }
        return internalError(c, h.Log, "load car", err)
    }
    if !model.IsSeeker(middleware.Role(c)) {
        return c.Redirect(http.StatusFound, fmt.Sprintf("/%d/", car.ID))
    }
    if c.Request().Method != http.MethodPost {
        return c.Render(http.StatusOK, "deal_request", echo.Map{"Car": car, "Comment": "", "Errors": FormErrors{}})
    }

    comment := c.FormValue("comment")
    if errs := validateComment(comment); errs != nil {
        return c.Render(http.StatusBadRequest, "deal_request", echo.Map{"Car": car, "Comment": comment, "Errors": errs})
    }
    if _, err := h.Workflow.Submit(ctx, car.ID, uid, comment); err != nil {
        if errors.Is(err, repository.ErrCarNotFound) {
            return echo.ErrNotFound
        }
        return internalError(c, h.Log, "submit deal request", err)
    }
    return c.Redirect(http.StatusFound, "/")
}

// OwnerList: GET /my-deal-requests/.  Non-owners are sent to the listing.
func (h *DealHandler) OwnerList(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return err
    }
    if !model.IsOwner(middleware.Role(c)) {
        return c.Redirect(http.StatusFound, "/")
    }
    requests, err := h.Deals.ListForOwner(c.Request().Context(), uid)
    if err != nil {
        return internalError(c, h.Log, "list deal requests", err)
    }
    return c.Render(http.StatusOK, "owner_deal_requests", echo.Map{"Requests": requests})
}

// Approve: POST /request/:requestId/approve/
func (h *DealHandler) Approve(c echo.Context) error {
    return h.decide(c, h.Workflow.Approve)
}

// Reject: POST /request/:requestId/reject/
func (h *DealHandler) Reject(c echo.Context) error {
    return h.decide(c, h.Workflow.Reject)
}

func (h *DealHandler) decide(c echo.Context, op func(ctx context.Context, requestID, actorID uint64) error) error {
    uid, err := getUserID(c)
    if err != nil {
        return err
    }
    id, err := pathID(c, "requestId")
    if err != nil {
        return err
    }
    if err := op(c.Request().Context(), id, uid); err != nil {
        if errors.Is(err, repository.ErrDealRequestNotFound) {
            return echo.ErrNotFound
        }
        return internalError(c, h.Log, "decide deal request", err)
    }
    return c.Redirect(http.StatusFound, "/my-deal-requests/")
}
