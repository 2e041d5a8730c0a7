package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/smartstore/backend/internal/apperr"
	"github.com/smartstore/backend/internal/models"
	"github.com/smartstore/backend/internal/service/token"
	"github.com/smartstore/backend/internal/store"
)

const (
	ctxUserKey  = "user"
	ctxTokenKey = "token"
)

// BearerToken pulls the raw token out of the Authorization header.
func BearerToken(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// CurrentUser returns the user loaded by RequireLogin.
func CurrentUser(c echo.Context) *models.User {
	if u, ok := c.Get(ctxUserKey).(*models.User); ok {
		return u
	}
	return nil
}

// CurrentToken returns the raw bearer token of the authenticated request.
func CurrentToken(c echo.Context) string {
	if t, ok := c.Get(ctxTokenKey).(string); ok {
		return t
	}
	return ""
}

// RequireLogin verifies the bearer token and loads the subject user into the
// request context.
func RequireLogin(tokens *token.Service, st *store.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := BearerToken(c)
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			username, err := tokens.Verify(raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, apperr.PublicMessage(err))
			}
			user, err := st.GetUserByUsername(c.Request().Context(), username)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "unknown token subject")
			}
			c.Set(ctxUserKey, user)
			c.Set(ctxTokenKey, raw)
			return next(c)
		}
	}
}

// AdminOnly rejects authenticated non-admin users. Mount after RequireLogin.
func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			if !user.IsAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "admin privilege required")
			}
			return next(c)
		}
	}
}
