package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/canteen/internal/models"
	"github.com/Skotchmaster/canteen/internal/service/cart"
	"github.com/Skotchmaster/canteen/internal/service/catalog"
	"github.com/Skotchmaster/canteen/internal/transport"
	middleware "github.com/Skotchmaster/canteen/pkg/middleware/auth"
	"github.com/Skotchmaster/canteen/pkg/logging"
	"github.com/Skotchmaster/canteen/pkg/validate"
)

type CartHTTP struct {
	Cart    *cart.CartService
	Catalog *catalog.CatalogService
}

func cartView(lines []models.CartLine) transport.CartView {
	return transport.CartView{Items: lines, Total: models.LinesTotal(lines), Count: cart.Portions(lines)}
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get_cart")

	lines, err := h.Cart.Lines(ctx, middleware.ProfileID(c))
	if err != nil {
		l.Error("get_cart_failed", "status", 500, "reason", "cannot read cart", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot read cart")
	}
	return c.JSON(http.StatusOK, cartView(lines))
}

// Count feeds the header badge without shipping the lines.
func (h *CartHTTP) Count(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.count")

	n, err := h.Cart.Count(ctx, middleware.ProfileID(c))
	if err != nil {
		l.Error("count_cart_failed", "status", 500, "reason", "cannot read cart", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot read cart")
	}
	return c.JSON(http.StatusOK, transport.CartCountResponse{Count: n})
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_item")

	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_item_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := validate.Struct(req); err != nil {
		l.Warn("add_item_failed", "status", 400, "reason", "validation", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	dish, active, err := h.Catalog.Get(ctx, req.DishID)
	if err != nil && !errors.Is(err, catalog.ErrNotFound) {
		l.Error("add_item_failed", "status", 500, "reason", "cannot read menu", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot read menu")
	}
	if err != nil || !active {
		l.Warn("add_item_failed", "status", 404, "reason", "dish is not on the menu", "dish_id", req.DishID)
		return echo.NewHTTPError(http.StatusNotFound, "dish is not on the menu")
	}

	lines, err := h.Cart.AddItem(ctx, middleware.ProfileID(c), dish)
	if err != nil {
		if errors.Is(err, cart.ErrValidation) {
			l.Warn("add_item_failed", "status", 400, "reason", "validation", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		l.Error("add_item_failed", "status", 500, "reason", "cannot update cart", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update cart")
	}
	return c.JSON(http.StatusOK, cartView(lines))
}

func (h *CartHTTP) UpdateQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update_quantity")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("update_quantity_failed", "status", 400, "reason", "id is not integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	var req transport.UpdateQuantityRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_quantity_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := validate.Struct(req); err != nil {
		l.Warn("update_quantity_failed", "status", 400, "reason", "validation", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	lines, err := h.Cart.UpdateQuantity(ctx, middleware.ProfileID(c), id, req.Quantity)
	if err != nil {
		if errors.Is(err, cart.ErrValidation) {
			l.Warn("update_quantity_failed", "status", 400, "reason", "validation", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		l.Error("update_quantity_failed", "status", 500, "reason", "cannot update cart", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update cart")
	}
	return c.JSON(http.StatusOK, cartView(lines))
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_item")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("remove_item_failed", "status", 400, "reason", "id is not integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	lines, err := h.Cart.RemoveItem(ctx, middleware.ProfileID(c), id)
	if err != nil {
		l.Error("remove_item_failed", "status", 500, "reason", "cannot update cart", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update cart")
	}
	return c.JSON(http.StatusOK, cartView(lines))
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	if err := h.Cart.Clear(ctx, middleware.ProfileID(c)); err != nil {
		l.Error("clear_cart_failed", "status", 500, "reason", "cannot clear cart", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot clear cart")
	}
	return c.NoContent(http.StatusNoContent)
}
