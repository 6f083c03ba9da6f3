package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/canteen/internal/confirm"
	"github.com/Skotchmaster/canteen/internal/models"
	"github.com/Skotchmaster/canteen/internal/payment"
	"github.com/Skotchmaster/canteen/internal/repo/repotest"
	"github.com/Skotchmaster/canteen/internal/service/cart"
	"github.com/Skotchmaster/canteen/internal/service/catalog"
	"github.com/Skotchmaster/canteen/internal/service/checkout"
	"github.com/Skotchmaster/canteen/internal/service/feedback"
	"github.com/Skotchmaster/canteen/internal/service/identity"
	"github.com/Skotchmaster/canteen/internal/service/order"
	middleware "github.com/Skotchmaster/canteen/pkg/middleware/auth"
)

type fakeImages struct {
	link string
	err  error
}

func (f *fakeImages) UploadDishImage(_ context.Context, _ int, _ string, _ int64, body io.Reader) (string, error) {
	_, _ = io.ReadAll(body)
	return f.link, f.err
}

type testEnv struct {
	e       *echo.Echo
	catalog *catalog.CatalogService
	orders  *order.OrderService
	broker  *confirm.Broker
	admin   *AdminHTTP
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := repotest.New(t)
	ids, err := identity.NewIdentityService(store, nil, nil)
	require.NoError(t, err)
	require.NoError(t, ids.Init(context.Background()))

	cat := &catalog.CatalogService{Store: store}
	crt := &cart.CartService{Store: store}
	ord := &order.OrderService{Store: store}
	fb := &feedback.FeedbackService{Store: store}
	broker := confirm.NewBroker(time.Minute)
	co := &checkout.CheckoutService{
		Cart:     crt,
		Identity: ids,
		Orders:   ord,
		Payment:  payment.LinkHandoff{BaseURL: "https://pay.sibsiu.ru/", Service: "canteen"},
	}
	admin := &AdminHTTP{Catalog: cat, Orders: ord, Feedback: fb, Broker: broker}

	e := echo.New()
	Register(e, &Deps{
		MenuHandler:     &MenuHTTP{Catalog: cat},
		AuthHandler:     &AuthHTTP{Identity: ids},
		CartHandler:     &CartHTTP{Cart: crt, Catalog: cat},
		OrderHandler:    &OrderHTTP{Orders: ord, Checkout: co},
		AdminHandler:    admin,
		FeedbackHandler: &FeedbackHTTP{Feedback: fb},
		ProfileSecret:   []byte("test-profile-secret"),
	})

	return &testEnv{e: e, catalog: cat, orders: ord, broker: broker, admin: admin}
}

// client keeps the profile cookie between requests like a browser would.
type client struct {
	t      *testing.T
	env    *testEnv
	cookie *http.Cookie
}

func (env *testEnv) client(t *testing.T) *client {
	return &client{t: t, env: env}
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err)
		rdr = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return c.send(req)
}

func (c *client) send(req *http.Request) *httptest.ResponseRecorder {
	if c.cookie != nil {
		req.AddCookie(&http.Cookie{Name: c.cookie.Name, Value: c.cookie.Value})
	}
	rec := httptest.NewRecorder()
	c.env.e.ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.Name == middleware.ProfileCookie {
			c.cookie = ck
		}
	}
	return rec
}

func (c *client) login(email string) {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": email, "password": "password"})
	require.Equal(c.t, http.StatusOK, rec.Code, rec.Body.String())
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (env *testEnv) seedDish(t *testing.T, name string, price int, cat models.Category) models.Dish {
	t.Helper()
	d, err := env.catalog.AddMenuItem(context.Background(), catalog.Draft{Name: name, Price: price, Category: cat})
	require.NoError(t, err)
	return d
}

func multipartImage(t *testing.T, path, contentType string) *http.Request {
	t.Helper()

	boundary := "canteenboundary"
	var b strings.Builder
	b.WriteString("--" + boundary + "\r\n")
	b.WriteString(`Content-Disposition: form-data; name="image"; filename="dish.png"` + "\r\n")
	b.WriteString("Content-Type: " + contentType + "\r\n\r\n")
	b.WriteString("\x89PNG fake\r\n")
	b.WriteString("--" + boundary + "--\r\n")

	req := httptest.NewRequest(http.MethodPut, path, strings.NewReader(b.String()))
	req.Header.Set(echo.HeaderContentType, "multipart/form-data; boundary="+boundary)
	return req
}
