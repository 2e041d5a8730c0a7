package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/smartstore/backend/internal/events"
	"github.com/smartstore/backend/internal/hash"
	"github.com/smartstore/backend/internal/models"
	"github.com/smartstore/backend/internal/service/token"
	"github.com/smartstore/backend/internal/store"
)

type AuthHandler struct {
	Store    *store.Store
	Tokens   *token.Service
	Producer *events.Producer
}

type registerRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if len(req.Username) < 3 {
		return echo.NewHTTPError(http.StatusBadRequest, "username must be at least 3 characters")
	}
	if !strings.Contains(req.Email, "@") {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid email address")
	}
	if len(req.Password) < 6 {
		return echo.NewHTTPError(http.StatusBadRequest, "password must be at least 6 characters")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: pwHash,
	}
	if err := h.Store.CreateUser(c.Request().Context(), &user); err != nil {
		return httpError(err)
	}

	h.Producer.Publish(c.Request().Context(), events.TopicUserEvents, user.Username, map[string]any{
		"type":     "user_registered",
		"user_id":  user.ID,
		"username": user.Username,
	})

	return c.JSON(http.StatusOK, user)
}

// Token implements the OAuth2 password flow used by the frontend: form-encoded
// username/password in, bearer access token out.
func (h *AuthHandler) Token(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")
	if username == "" || password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}

	user, err := h.Store.GetUserByUsername(c.Request().Context(), username)
	if err != nil || !hash.CheckPassword(user.PasswordHash, password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	}

	access, err := h.Tokens.Issue(user.Username)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"access_token": access,
		"token_type":   "bearer",
	})
}
