package httpserver

import (
	"errors"
	"net/http"
	"slices"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/canteen/internal/models"
	"github.com/Skotchmaster/canteen/internal/service/checkout"
	"github.com/Skotchmaster/canteen/internal/service/order"
	"github.com/Skotchmaster/canteen/internal/transport"
	middleware "github.com/Skotchmaster/canteen/pkg/middleware/auth"
	"github.com/Skotchmaster/canteen/pkg/logging"
	"github.com/Skotchmaster/canteen/pkg/validate"
)

type OrderHTTP struct {
	Orders   *order.OrderService
	Checkout *checkout.CheckoutService
}

func (h *OrderHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create")

	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_order_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := validate.Struct(req); err != nil {
		l.Warn("create_order_failed", "status", 400, "reason", "validation", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := h.Checkout.Checkout(ctx, middleware.ProfileID(c), req.PickupTime, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrUnauthorized):
			return echo.NewHTTPError(http.StatusUnauthorized, "sign in required")
		case errors.Is(err, checkout.ErrEmptyCart):
			l.Warn("create_order_failed", "status", 400, "reason", "cart is empty")
			return echo.NewHTTPError(http.StatusBadRequest, "cart is empty")
		case errors.Is(err, checkout.ErrValidation):
			l.Warn("create_order_failed", "status", 400, "reason", "validation", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, checkout.ErrUpstream):
			l.Warn("create_order_failed", "status", 502, "reason", "remote order rejected", "error", err)
			return echo.NewHTTPError(http.StatusBadGateway, "order service unavailable, try again")
		}
		l.Error("create_order_failed", "status", 500, "reason", "checkout failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not place the order, try again")
	}

	l.Info("create_order_success", "order_id", res.Order.ID)
	return c.JSON(http.StatusCreated, transport.CheckoutResponse{
		Order:      transport.NewOrderView(res.Order),
		PaymentURL: res.PaymentURL,
	})
}

// List returns the signed-in user's orders, newest first.
func (h *OrderHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	orders, err := h.Orders.UserOrders(ctx, currentUser(c).ID)
	if err != nil {
		l.Error("list_orders_failed", "status", 500, "reason", "cannot read orders", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot read orders")
	}
	slices.Reverse(orders)
	return c.JSON(http.StatusOK, transport.NewOrderViews(orders))
}

func (h *OrderHTTP) QRCode(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.qrcode")

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		l.Warn("qrcode_failed", "status", 400, "reason", "id is not integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	o, err := h.Orders.Get(ctx, id)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		l.Error("qrcode_failed", "status", 500, "reason", "cannot read orders", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot read orders")
	}
	if u := currentUser(c); o.UserID != u.ID && !u.IsAdmin {
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}

	png, err := order.QRCode(o)
	if err != nil {
		l.Error("qrcode_failed", "status", 500, "reason", "cannot render qr code", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot render qr code")
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

func parseStatusFilter(raw string) (models.OrderStatus, bool) {
	s := models.OrderStatus(raw)
	if raw == "" || s == models.StatusAll || s.Valid() {
		return s, true
	}
	return "", false
}
