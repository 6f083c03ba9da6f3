package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/canteen/pkg/middleware/auth"
	"github.com/Skotchmaster/canteen/pkg/logging"
)

type Deps struct {
	MenuHandler     *MenuHTTP
	AuthHandler     *AuthHTTP
	CartHandler     *CartHTTP
	OrderHandler    *OrderHTTP
	AdminHandler    *AdminHTTP
	FeedbackHandler *FeedbackHTTP

	ProfileSecret []byte
	ProfileTTL    time.Duration
	// Ready reports whether the backing store answers; nil means always ready.
	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready == nil {
			return c.NoContent(http.StatusOK)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := d.Ready(ctx); err != nil {
			logging.FromContext(ctx).Warn("not_ready", "error", err)
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	profileMW := middleware.NewProfileMiddleware(d.ProfileSecret, d.ProfileTTL)
	sessionMW := &SessionMiddleware{Identity: d.AuthHandler.Identity}

	api := e.Group("/api/v1", profileMW.Ensure)

	api.GET("/menu", d.MenuHandler.GetMenu)
	api.GET("/menu/search", d.MenuHandler.Search)

	auth := api.Group("/auth")
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/logout", d.AuthHandler.Logout)
	auth.GET("/me", d.AuthHandler.Me)

	cart := api.Group("/cart")
	cart.GET("", d.CartHandler.GetCart)
	cart.GET("/count", d.CartHandler.Count)
	cart.POST("", d.CartHandler.AddItem)
	cart.DELETE("", d.CartHandler.Clear)
	cart.PATCH("/items/:id", d.CartHandler.UpdateQuantity)
	cart.DELETE("/items/:id", d.CartHandler.RemoveItem)

	api.POST("/feedback", d.FeedbackHandler.Submit)

	user := api.Group("", sessionMW.RequireUser)
	user.POST("/orders", d.OrderHandler.Create)
	user.GET("/orders", d.OrderHandler.List)
	user.GET("/orders/:id/qrcode", d.OrderHandler.QRCode)
	user.GET("/profile", d.AuthHandler.Profile)

	admin := api.Group("/admin", sessionMW.RequireAdmin)
	admin.GET("/menu", d.AdminHandler.ListMenu)
	admin.POST("/menu", d.AdminHandler.CreateDish)
	admin.GET("/menu/inactive", d.AdminHandler.Inactive)
	admin.PATCH("/menu/:id", d.AdminHandler.PatchDish)
	admin.DELETE("/menu/:id", d.AdminHandler.RemoveDish)
	admin.POST("/menu/:id/restore", d.AdminHandler.RestoreDish)
	admin.DELETE("/menu/:id/permanent", d.AdminHandler.DeleteDishPermanent)
	admin.PUT("/menu/:id/image", d.AdminHandler.UploadImage)
	admin.GET("/confirmations", d.AdminHandler.PendingConfirmations)
	admin.POST("/confirmations/:id", d.AdminHandler.ResolveConfirmation)
	admin.GET("/orders", d.AdminHandler.ListOrders)
	admin.PATCH("/orders/:id/status", d.AdminHandler.UpdateOrderStatus)
	admin.GET("/feedback", d.AdminHandler.ListFeedback)
}
