package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/canteen/pkg/logging"
	"github.com/Skotchmaster/canteen/pkg/tokens"
)

const (
	ProfileCookie = "profileToken"
	profileKey    = "profile_id"

	DefaultProfileTTL = 30 * 24 * time.Hour
)

// ProfileMiddleware gives every client a stable profile id carried in a
// signed cookie. Expired tokens are renewed with the same id.
type ProfileMiddleware struct {
	Secret []byte
	TTL    time.Duration
}

func NewProfileMiddleware(secret []byte, ttl time.Duration) *ProfileMiddleware {
	if ttl <= 0 {
		ttl = DefaultProfileTTL
	}
	return &ProfileMiddleware{Secret: secret, TTL: ttl}
}

func (m *ProfileMiddleware) Ensure(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, fresh := m.resolve(c)
		if fresh {
			exp := time.Now().Add(m.TTL)
			tok, err := tokens.IssueProfileToken(id, exp, m.Secret)
			if err != nil {
				return err
			}
			c.SetCookie(profileCookie(tok, exp))
		}

		c.Set(profileKey, id)
		req := c.Request()
		l := logging.FromContext(req.Context()).With("profile_id", id)
		c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))
		return next(c)
	}
}

func profileCookie(token string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     ProfileCookie,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

// resolve returns the profile id and whether a new cookie must be issued.
func (m *ProfileMiddleware) resolve(c echo.Context) (string, bool) {
	cookie, err := c.Cookie(ProfileCookie)
	if err != nil || cookie.Value == "" {
		return uuid.NewString(), true
	}

	claims, err := tokens.ProfileClaimsFromToken(cookie.Value, m.Secret)
	if err == nil {
		return claims.Subject, false
	}
	if errors.Is(err, jwt.ErrTokenExpired) {
		if id, err := tokens.ExpiredProfileID(cookie.Value, m.Secret); err == nil {
			return id, true
		}
	}
	return uuid.NewString(), true
}

// ProfileID is the id stored by Ensure, or "" outside it.
func ProfileID(c echo.Context) string {
	id, _ := c.Get(profileKey).(string)
	return id
}
