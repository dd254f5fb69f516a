package handler

import (
    "errors"
    "fmt"
    "mime/multipart"
    "net/http"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/carmarket/internal/middleware"
    "github.com/iliyamo/carmarket/internal/model"
    "github.com/iliyamo/carmarket/internal/platform/metrics"
    "github.com/iliyamo/carmarket/internal/repository"
    "github.com/iliyamo/carmarket/internal/storage"
)

// CarHandler serves the public listing and the owner's car management pages.
type CarHandler struct {
    Cars    *repository.CarRepo
    Images  ImageStore // nil disables uploads
    Metrics *metrics.Metrics
    Log     *zap.Logger
}

// NewCarHandler panics on a nil repository or metrics; images may be nil.
func NewCarHandler(cars *repository.CarRepo, images ImageStore, m *metrics.Metrics, log *zap.Logger) *CarHandler {
    if cars == nil || m == nil {
        panic("nil dependency passed to NewCarHandler")
    }
    if log == nil {
        log = zap.NewNop()
    }
    return &CarHandler{Cars: cars, Images: images, Metrics: m, Log: log}
}

// List: GET /
func (h *CarHandler) List(c echo.Context) error {
    cars, err := h.Cars.ListAvailable(c.Request().Context())
    if err != nil {
        return internalError(c, h.Log, "list cars", err)
    }
    return c.Render(http.StatusOK, "car_list", echo.Map{"Cars": cars})
}

// Detail: GET /:carId/.  Unavailable cars are still shown.
func (h *CarHandler) Detail(c echo.Context) error {
    id, err := pathID(c, "carId")
    if err != nil {
        return err
    }
    car, err := h.Cars.GetByID(c.Request().Context(), id)
    if err != nil {
        return h.carError(c, err)
    }
    return c.Render(http.StatusOK, "car_detail", echo.Map{"Car": car})
}

// Create: GET/POST /add/.  Only owners may list cars; anyone else is sent
// back to the listing.
func (h *CarHandler) Create(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return err
    }
    if !model.IsOwner(middleware.Role(c)) {
        return c.Redirect(http.StatusFound, "/")
    }
    if c.Request().Method != http.MethodPost {
        return h.renderForm(c, http.StatusOK, 0, CarForm{Type: string(model.ListingSale)}, nil)
    }

    form := carFormFromRequest(c)
    car := &model.Car{}
    errs := form.Apply(car)
    upload := h.checkUpload(c, &errs)
    if len(errs) > 0 {
        return h.renderForm(c, http.StatusBadRequest, 0, form, errs)
    }

    ctx := c.Request().Context()
    if upload != nil {
        key, err := h.store(c, upload)
        if err != nil {
            return internalError(c, h.Log, "store car image", err)
        }
        car.Image = &key
    }
    car.OwnerID = uid
    if err := h.Cars.Create(ctx, car); err != nil {
        if car.Image != nil {
            h.dropImage(c, *car.Image)
        }
        return internalError(c, h.Log, "create car", err)
    }
    h.Metrics.CarsCreated.Inc()
    h.Log.Info("car created", zap.Uint64("car_id", car.ID), zap.Uint64("owner_id", uid))
    return c.Redirect(http.StatusFound, fmt.Sprintf("/%d/", car.ID))
}

// Edit: GET/POST /:carId/edit/.  Cars of other owners are 404.
func (h *CarHandler) Edit(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return err
    }
    id, err := pathID(c, "carId")
    if err != nil {
        return err
    }
    ctx := c.Request().Context()
    car, err := h.Cars.GetByIDAndOwner(ctx, id, uid)
    if err != nil {
        return h.carError(c, err)
    }
    if c.Request().Method != http.MethodPost {
        return h.renderForm(c, http.StatusOK, car.ID, carFormFromCar(car), nil)
    }

    form := carFormFromRequest(c)
    errs := form.Apply(car)
    upload := h.checkUpload(c, &errs)
    if len(errs) > 0 {
        return h.renderForm(c, http.StatusBadRequest, car.ID, form, errs)
    }

    var oldImage string
    if upload != nil {
        key, err := h.store(c, upload)
        if err != nil {
            return internalError(c, h.Log, "store car image", err)
        }
        if car.Image != nil {
            oldImage = *car.Image
        }
        car.Image = &key
    }
    if err := h.Cars.Update(ctx, car); err != nil {
        if upload != nil {
            h.dropImage(c, *car.Image)
        }
        return internalError(c, h.Log, "update car", err)
    }
    if oldImage != "" {
        h.dropImage(c, oldImage)
    }
    return c.Redirect(http.StatusFound, fmt.Sprintf("/%d/", car.ID))
}

// Delete: GET shows a confirmation page, POST removes the car together
// with its deal requests.
func (h *CarHandler) Delete(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return err
    }
    id, err := pathID(c, "carId")
    if err != nil {
        return err
    }
    ctx := c.Request().Context()
    car, err := h.Cars.GetByIDAndOwner(ctx, id, uid)
    if err != nil {
        return h.carError(c, err)
    }
    if c.Request().Method != http.MethodPost {
        return c.Render(http.StatusOK, "car_confirm_delete", echo.Map{"Car": car})
    }
    if err := h.Cars.Delete(ctx, id, uid); err != nil {
        return h.carError(c, err)
    }
    h.Metrics.CarsDeleted.Inc()
    h.Log.Info("car deleted", zap.Uint64("car_id", id), zap.Uint64("owner_id", uid))
    if car.Image != nil {
        h.dropImage(c, *car.Image)
    }
    return c.Redirect(http.StatusFound, "/")
}

// Media: GET /media/cars_images/:name streams a stored photo.
func (h *CarHandler) Media(c echo.Context) error {
    if h.Images == nil {
        return echo.ErrNotFound
    }
    rc, contentType, err := h.Images.Open(c.Request().Context(), storage.KeyPrefix+c.Param("name"))
    if err != nil {
        if errors.Is(err, storage.ErrNotFound) {
            return echo.ErrNotFound
        }
        return internalError(c, h.Log, "open car image", err)
    }
    defer rc.Close()
    if contentType == "" {
        contentType = echo.MIMEOctetStream
    }
    return c.Stream(http.StatusOK, contentType, rc)
}

func (h *CarHandler) renderForm(c echo.Context, status int, carID uint64, form CarForm, errs FormErrors) error {
    if errs == nil {
        errs = FormErrors{}
    }
    return c.Render(status, "car_form", echo.Map{"CarID": carID, "Form": form, "Errors": errs})
}

// checkUpload returns the uploaded photo, or nil when none was sent.
// Problems with the file are recorded in errs.
func (h *CarHandler) checkUpload(c echo.Context, errs *FormErrors) *multipart.FileHeader {
    fh, err := c.FormFile("image")
    if err != nil || fh == nil || fh.Size == 0 {
        return nil
    }
    if *errs == nil {
        *errs = FormErrors{}
    }
    switch {
    case h.Images == nil:
        errs.add("image", "Image uploads are not available.")
    case !storage.AllowedImage(fh.Filename):
        errs.add("image", "Upload a valid image (jpg, png, gif or webp).")
    }
    if len(*errs) > 0 {
        return nil
    }
    return fh
}

func (h *CarHandler) store(c echo.Context, fh *multipart.FileHeader) (string, error) {
    f, err := fh.Open()
    if err != nil {
        return "", err
    }
    defer f.Close()
    return h.Images.Put(c.Request().Context(), fh.Filename, f, fh.Size, fh.Header.Get(echo.HeaderContentType))
}

func (h *CarHandler) dropImage(c echo.Context, key string) {
    if h.Images == nil {
        return
    }
    if err := h.Images.Remove(c.Request().Context(), key); err != nil {
        h.Log.Warn("remove car image", zap.String("key", key), zap.Error(err))
    }
}

func (h *CarHandler) carError(c echo.Context, err error) error {
    if errors.Is(err, repository.ErrCarNotFound) {
        return echo.ErrNotFound
    }
    return internalError(c, h.Log, "load car", err)
}
