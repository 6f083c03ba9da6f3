package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/canteen/internal/models"
	"github.com/Skotchmaster/canteen/internal/service/catalog"
	"github.com/Skotchmaster/canteen/internal/transport"
	"github.com/Skotchmaster/canteen/pkg/logging"
)

type MenuHTTP struct {
	Catalog *catalog.CatalogService
}

func parseCategory(raw string) (models.Category, bool) {
	cat := models.Category(raw)
	if raw == "" || cat == models.CategoryAll || cat.Valid() {
		return cat, true
	}
	return "", false
}

func (h *MenuHTTP) GetMenu(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "menu.get_menu")

	cat, ok := parseCategory(c.QueryParam("category"))
	if !ok {
		l.Warn("get_menu_failed", "status", 400, "reason", "unknown category")
		return echo.NewHTTPError(http.StatusBadRequest, "unknown category")
	}

	dishes, err := h.Catalog.LoadMenu(ctx)
	if err != nil {
		l.Error("get_menu_failed", "status", 500, "reason", "cannot load menu", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load menu")
	}

	return c.JSON(http.StatusOK, transport.NewDishViews(catalog.Filter(dishes, cat), true))
}

func (h *MenuHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "menu.search")

	dishes, err := h.Catalog.Search(ctx, c.QueryParam("q"))
	if err != nil {
		l.Error("search_failed", "status", 500, "reason", "cannot search menu", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot search menu")
	}

	return c.JSON(http.StatusOK, transport.NewDishViews(dishes, true))
}
