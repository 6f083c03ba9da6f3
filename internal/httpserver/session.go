package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/canteen/internal/models"
	"github.com/Skotchmaster/canteen/internal/service/identity"
	middleware "github.com/Skotchmaster/canteen/pkg/middleware/auth"
	"github.com/Skotchmaster/canteen/pkg/logging"
)

const userKey = "user"

// SessionMiddleware resolves the signed-in user of the client profile.
type SessionMiddleware struct {
	Identity *identity.IdentityService
}

func (m *SessionMiddleware) RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(next, false)
}

func (m *SessionMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(next, true)
}

func (m *SessionMiddleware) require(next echo.HandlerFunc, admin bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("handler", "session")

		u, ok, err := m.Identity.CurrentUser(ctx, middleware.ProfileID(c))
		if err != nil {
			l.Error("session_lookup_failed", "status", 500, "reason", "cannot read session", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot read session")
		}
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "sign in required")
		}
		if admin && !u.IsAdmin {
			l.Warn("admin_access_denied", "status", 403, "user_id", u.ID)
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}

		c.Set(userKey, u)
		return next(c)
	}
}

func currentUser(c echo.Context) *models.User {
	u, _ := c.Get(userKey).(*models.User)
	return u
}
