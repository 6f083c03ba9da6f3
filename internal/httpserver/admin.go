package httpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/canteen/internal/confirm"
	"github.com/Skotchmaster/canteen/internal/media"
	"github.com/Skotchmaster/canteen/internal/models"
	"github.com/Skotchmaster/canteen/internal/service/catalog"
	"github.com/Skotchmaster/canteen/internal/service/feedback"
	"github.com/Skotchmaster/canteen/internal/service/order"
	"github.com/Skotchmaster/canteen/internal/transport"
	"github.com/Skotchmaster/canteen/pkg/logging"
	"github.com/Skotchmaster/canteen/pkg/validate"
)

// ImageStore uploads dish pictures and returns their public link.
type ImageStore interface {
	UploadDishImage(ctx context.Context, dishID int, contentType string, size int64, body io.Reader) (string, error)
}

type AdminHTTP struct {
	Catalog  *catalog.CatalogService
	Orders   *order.OrderService
	Feedback *feedback.FeedbackService
	Broker   *confirm.Broker
	Images   ImageStore
}

func dishID(c echo.Context) (int, error) {
	return strconv.Atoi(c.Param("id"))
}

func (h *AdminHTTP) ListMenu(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_menu")

	archive, err := h.Catalog.Archive(ctx)
	if err != nil {
		l.Error("list_menu_failed", "status", 500, "reason", "cannot read menu", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot read menu")
	}
	inactive, err := h.Catalog.InactiveDishes(ctx)
	if err != nil {
		l.Error("list_menu_failed", "status", 500, "reason", "cannot read menu", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot read menu")
	}

	off := make(map[int]bool, len(inactive))
	for _, d := range inactive {
		off[d.ID] = true
	}
	views := make([]transport.DishView, 0, len(archive))
	for _, d := range archive {
		views = append(views, transport.DishView{Dish: d, IsActive: !off[d.ID]})
	}
	return c.JSON(http.StatusOK, views)
}

func (h *AdminHTTP) Inactive(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.inactive")

	dishes, err := h.Catalog.InactiveDishes(ctx)
	if err != nil {
		l.Error("inactive_failed", "status", 500, "reason", "cannot read menu", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot read menu")
	}
	return c.JSON(http.StatusOK, transport.NewDishViews(dishes, false))
}

func (h *AdminHTTP) CreateDish(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.create_dish")

	var req transport.CreateDishRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_dish_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := validate.Struct(req); err != nil {
		l.Warn("create_dish_failed", "status", 400, "reason", "validation", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	d, err := h.Catalog.AddMenuItem(ctx, catalog.Draft{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Category:    models.Category(req.Category),
		Image:       req.Image,
		IsNew:       req.IsNew,
	})
	if err != nil {
		if errors.Is(err, catalog.ErrValidation) {
			l.Warn("create_dish_failed", "status", 400, "reason", "validation", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		l.Error("create_dish_failed", "status", 500, "reason", "cannot save dish", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot save dish")
	}

	l.Info("create_dish_success", "dish_id", d.ID)
	return c.JSON(http.StatusCreated, transport.DishView{Dish: d, IsActive: true})
}

func (h *AdminHTTP) PatchDish(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.patch_dish")

	id, err := dishID(c)
	if err != nil {
		l.Warn("patch_dish_failed", "status", 400, "reason", "id is not integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	var req transport.PatchDishRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("patch_dish_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := validate.Struct(req); err != nil {
		l.Warn("patch_dish_failed", "status", 400, "reason", "validation", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	patch := catalog.Patch{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Image:       req.Image,
		IsNew:       req.IsNew,
	}
	if req.Category != nil {
		cat := models.Category(*req.Category)
		patch.Category = &cat
	}

	d, found, err := h.Catalog.UpdateMenuItem(ctx, id, patch)
	if err != nil {
		if errors.Is(err, catalog.ErrValidation) {
			l.Warn("patch_dish_failed", "status", 400, "reason", "validation", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		l.Error("patch_dish_failed", "status", 500, "reason", "cannot save dish", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot save dish")
	}
	if !found {
		return echo.NewHTTPError(http.StatusNotFound, "dish not found")
	}

	_, active, err := h.Catalog.Get(ctx, id)
	if err != nil {
		l.Error("patch_dish_failed", "status", 500, "reason", "cannot read dish", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot read dish")
	}
	return c.JSON(http.StatusOK, transport.DishView{Dish: d, IsActive: active})
}

// RemoveDish takes the dish off the menu and keeps it in the archive.
func (h *AdminHTTP) RemoveDish(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.remove_dish")

	id, err := dishID(c)
	if err != nil {
		l.Warn("remove_dish_failed", "status", 400, "reason", "id is not integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	removed, err := h.Catalog.RemoveMenuItem(ctx, id)
	if err != nil {
		l.Error("remove_dish_failed", "status", 500, "reason", "cannot save menu", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot save menu")
	}
	if !removed {
		return echo.NewHTTPError(http.StatusNotFound, "dish is not on the menu")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHTTP) RestoreDish(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.restore_dish")

	id, err := dishID(c)
	if err != nil {
		l.Warn("restore_dish_failed", "status", 400, "reason", "id is not integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	restored, err := h.Catalog.AddExistingDish(ctx, id)
	if err != nil {
		l.Error("restore_dish_failed", "status", 500, "reason", "cannot save menu", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot save menu")
	}
	if !restored {
		return echo.NewHTTPError(http.StatusNotFound, "no inactive dish with this id")
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteDishPermanent parks the deletion until an admin confirms it.
func (h *AdminHTTP) DeleteDishPermanent(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delete_dish_permanent")

	id, err := dishID(c)
	if err != nil {
		l.Warn("delete_dish_failed", "status", 400, "reason", "id is not integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	if _, _, err := h.Catalog.Get(ctx, id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "dish not found")
		}
		l.Error("delete_dish_failed", "status", 500, "reason", "cannot read dish", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot read dish")
	}

	cid := h.Broker.Ask(context.WithoutCancel(ctx), fmt.Sprintf("delete dish %d", id), func(ctx context.Context) error {
		_, err := h.Catalog.DeletePermanent(ctx, id)
		return err
	})

	l.Info("delete_dish_pending", "dish_id", id, "confirmation_id", cid)
	return c.JSON(http.StatusAccepted, transport.ConfirmationResponse{
		ConfirmationID: cid,
		ExpiresIn:      int(h.Broker.TTL / time.Second),
	})
}

func (h *AdminHTTP) PendingConfirmations(c echo.Context) error {
	return c.JSON(http.StatusOK, transport.PendingResponse{Pending: h.Broker.Pending()})
}

func (h *AdminHTTP) ResolveConfirmation(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.resolve_confirmation")

	var req transport.ResolveRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("resolve_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	out, err := h.Broker.Resolve(ctx, c.Param("id"), req.Approve)
	switch {
	case errors.Is(err, confirm.ErrUnknown):
		return echo.NewHTTPError(http.StatusNotFound, "unknown confirmation")
	case errors.Is(err, confirm.ErrAlreadyResolved):
		return echo.NewHTTPError(http.StatusConflict, "confirmation already resolved")
	case err != nil:
		l.Error("resolve_failed", "status", 500, "reason", "confirmation interrupted", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "confirmation interrupted")
	}
	if out.Err != nil {
		l.Error("resolve_failed", "status", 500, "reason", "action failed", "error", out.Err)
		return echo.NewHTTPError(http.StatusInternalServerError, "action failed")
	}
	return c.JSON(http.StatusOK, transport.ResolveResponse{Approved: out.Approved})
}

func (h *AdminHTTP) UploadImage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.upload_image")

	if h.Images == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "image storage is not configured")
	}

	id, err := dishID(c)
	if err != nil {
		l.Warn("upload_image_failed", "status", 400, "reason", "id is not integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}
	_, active, err := h.Catalog.Get(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "dish not found")
		}
		l.Error("upload_image_failed", "status", 500, "reason", "cannot read dish", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot read dish")
	}

	fh, err := c.FormFile("image")
	if err != nil {
		l.Warn("upload_image_failed", "status", 400, "reason", "image file missing", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "image file missing")
	}
	f, err := fh.Open()
	if err != nil {
		l.Warn("upload_image_failed", "status", 400, "reason", "cannot open upload", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "cannot open upload")
	}
	defer f.Close()

	link, err := h.Images.UploadDishImage(ctx, id, fh.Header.Get(echo.HeaderContentType), fh.Size, f)
	if err != nil {
		switch {
		case errors.Is(err, media.ErrUnsupportedType):
			return echo.NewHTTPError(http.StatusUnsupportedMediaType, "image must be one of "+strings.Join(media.AllowedTypes(), ", "))
		case errors.Is(err, media.ErrTooLarge):
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "image too large")
		}
		l.Error("upload_image_failed", "status", 502, "reason", "storage rejected upload", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "cannot store image")
	}

	d, found, err := h.Catalog.UpdateMenuItem(ctx, id, catalog.Patch{Image: &link})
	if err != nil {
		l.Error("upload_image_failed", "status", 500, "reason", "cannot save dish", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot save dish")
	}
	if !found {
		return echo.NewHTTPError(http.StatusNotFound, "dish not found")
	}
	return c.JSON(http.StatusOK, transport.DishView{Dish: d, IsActive: active})
}

func (h *AdminHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_orders")

	status, ok := parseStatusFilter(c.QueryParam("status"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown status")
	}

	orders, err := h.Orders.AdminList(ctx, status)
	if err != nil {
		l.Error("list_orders_failed", "status", 500, "reason", "cannot read orders", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot read orders")
	}
	return c.JSON(http.StatusOK, transport.NewOrderViews(orders))
}

// UpdateOrderStatus applies one of the moves the board offers for the
// order's current status.
func (h *AdminHTTP) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.update_order_status")

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		l.Warn("update_status_failed", "status", 400, "reason", "id is not integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not integer")
	}

	var req transport.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_status_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := validate.Struct(req); err != nil {
		l.Warn("update_status_failed", "status", 400, "reason", "validation", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	next := models.OrderStatus(req.Status)
	updated, err := h.Orders.Move(ctx, id, next, req.EstimatedTime)
	switch {
	case errors.Is(err, order.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	case errors.Is(err, order.ErrTransition):
		l.Warn("update_status_failed", "status", 409, "reason", "transition not allowed", "to", next, "error", err)
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, order.ErrValidation):
		l.Warn("update_status_failed", "status", 400, "reason", "validation", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case err != nil:
		l.Error("update_status_failed", "status", 500, "reason", "cannot save orders", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot save orders")
	}

	l.Info("update_status_success", "order_id", id, "to", next)
	return c.JSON(http.StatusOK, transport.NewOrderView(updated))
}

func (h *AdminHTTP) ListFeedback(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_feedback")

	items, err := h.Feedback.List(ctx)
	if err != nil {
		l.Error("list_feedback_failed", "status", 500, "reason", "cannot read feedback", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot read feedback")
	}
	return c.JSON(http.StatusOK, items)
}
