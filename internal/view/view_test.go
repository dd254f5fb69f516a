package view

import (
	"bytes"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/carmarket/internal/middleware"
	"github.com/iliyamo/carmarket/internal/model"
)

func render(t *testing.T, r *Renderer, c echo.Context, name string, data interface{}) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, name, data, c))
	return buf.String()
}

func TestRenderPages(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	e := echo.New()
	c := e.NewContext(httptest.NewRequest("GET", "/", nil), httptest.NewRecorder())

	img := "cars_images/abc.png"
	car := &model.Car{ID: 3, OwnerID: 1, Title: "Civic <Type R>", Price: 31000.5, Brand: "Honda",
		Image: &img, Available: true, Type: model.ListingRent, CreatedAt: time.Now()}

	out := render(t, r, c, "car_list", echo.Map{"Cars": []model.Car{*car}})
	assert.Contains(t, out, `href="/3/"`)
	assert.Contains(t, out, "Civic &lt;Type R&gt;")
	assert.Contains(t, out, "31000.50")
	assert.Contains(t, out, "For rent")
	assert.Contains(t, out, "Log in")

	out = render(t, r, c, "car_list", echo.Map{"Cars": []model.Car{}})
	assert.Contains(t, out, "No cars are available")

	out = render(t, r, c, "car_detail", echo.Map{"Car": car})
	assert.Contains(t, out, `src="/media/cars_images/abc.png"`)
	assert.NotContains(t, out, "/3/edit/")

	out = render(t, r, c, "statistics", echo.Map{"Stats": struct {
		TotalCars, AvailableCars, SoldCars                                  int64
		TotalRequests, WaitingRequests, ApprovedRequests, RejectedRequests int64
	}{TotalCars: 5, SoldCars: 2}})
	assert.Contains(t, out, "Total: 5")

	out = render(t, r, c, "error", echo.Map{"Code": 404, "Message": "Not Found"})
	assert.Contains(t, out, "<h1>404</h1>")
}

func TestRenderViewerSpecificLinks(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	e := echo.New()
	car := &model.Car{ID: 3, OwnerID: 1, Title: "Civic", Available: true, Type: model.ListingSale}

	owner := e.NewContext(httptest.NewRequest("GET", "/3/", nil), httptest.NewRecorder())
	owner.Set(middleware.CtxUserID, uint64(1))
	owner.Set(middleware.CtxRole, model.RoleOwner)
	out := render(t, r, owner, "car_detail", echo.Map{"Car": car})
	assert.Contains(t, out, "/3/edit/")
	assert.Contains(t, out, "/my-deal-requests/")
	assert.NotContains(t, out, "/3/deal-request/")

	seeker := e.NewContext(httptest.NewRequest("GET", "/3/", nil), httptest.NewRecorder())
	seeker.Set(middleware.CtxUserID, uint64(2))
	seeker.Set(middleware.CtxRole, model.RoleSeeker)
	out = render(t, r, seeker, "car_detail", echo.Map{"Car": car})
	assert.Contains(t, out, "/3/deal-request/")
	assert.NotContains(t, out, "/add/")
}

func TestRenderUnknownPage(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	c := echo.New().NewContext(httptest.NewRequest("GET", "/", nil), httptest.NewRecorder())
	assert.Error(t, r.Render(&bytes.Buffer{}, "nope", nil, c))
}

func TestRenderCarriesCSRFToken(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	e := echo.New()
	c := e.NewContext(httptest.NewRequest("GET", "/", nil), httptest.NewRecorder())
	c.Set(middleware.CtxCSRF, "tok123")

	out := render(t, r, c, "deal_request", echo.Map{"Car": &model.Car{ID: 1, Title: "Golf"}, "Comment": "", "Errors": map[string]string{}})
	assert.Contains(t, out, `name="csrf" value="tok123"`)
}
