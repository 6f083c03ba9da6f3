package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/canteen/internal/service/identity"
	"github.com/Skotchmaster/canteen/internal/transport"
	middleware "github.com/Skotchmaster/canteen/pkg/middleware/auth"
	"github.com/Skotchmaster/canteen/pkg/logging"
	"github.com/Skotchmaster/canteen/pkg/validate"
)

type AuthHTTP struct {
	Identity *identity.IdentityService
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := validate.Struct(req); err != nil {
		l.Warn("login_failed", "status", 400, "reason", "validation", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	u, err := h.Identity.Login(ctx, middleware.ProfileID(c), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrInvalidCredentials):
			l.Warn("login_failed", "status", 401, "reason", "invalid credentials")
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
		case errors.Is(err, identity.ErrValidation):
			l.Warn("login_failed", "status", 400, "reason", "validation", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
		}
		l.Error("login_failed", "status", 500, "reason", "cannot sign in", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot sign in")
	}

	l.Info("login_success", "user_id", u.ID)
	return c.JSON(http.StatusOK, u)
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	if err := h.Identity.Logout(ctx, middleware.ProfileID(c)); err != nil {
		l.Error("logout_failed", "status", 500, "reason", "cannot clear session", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot sign out")
	}
	return c.NoContent(http.StatusNoContent)
}

// Me answers with the signed-in user, or a null user.
func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.me")

	u, _, err := h.Identity.CurrentUser(ctx, middleware.ProfileID(c))
	if err != nil {
		l.Error("me_failed", "status", 500, "reason", "cannot read session", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot read session")
	}
	return c.JSON(http.StatusOK, transport.MeResponse{User: u})
}

func (h *AuthHTTP) Profile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.profile")

	u := currentUser(c)
	p, err := h.Identity.Profile(ctx, u.ID)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			l.Warn("profile_failed", "status", 404, "reason", "user not on roster", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "profile not found")
		}
		l.Warn("profile_failed", "status", 502, "reason", "remote profile unavailable", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "profile service unavailable")
	}
	return c.JSON(http.StatusOK, p)
}
