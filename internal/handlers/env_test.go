package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/smartstore/backend/internal/hash"
	"github.com/smartstore/backend/internal/models"
	"github.com/smartstore/backend/internal/service/token"
	"github.com/smartstore/backend/internal/store"
	"github.com/smartstore/backend/pkg/db"
)

type testEnv struct {
	T      *testing.T
	E      *echo.Echo
	DB     *gorm.DB
	Store  *store.Store
	Tokens *token.Service

	A *AuthHandler
	P *ProductHandler
	C *CartHandler
	O *OrderHandler
	U *UserHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	st := store.New(gdb)
	tokens := token.New([]byte("test-secret"), 0)

	env := &testEnv{
		T:      t,
		E:      echo.New(),
		DB:     gdb,
		Store:  st,
		Tokens: tokens,
	}
	env.A = &AuthHandler{Store: st, Tokens: tokens}
	env.P = &ProductHandler{Store: st}
	env.C = &CartHandler{Store: st}
	env.O = &OrderHandler{Store: st}
	env.U = &UserHandler{Store: st}
	return env
}

func (env *testEnv) doJSONRequest(method, path string, body any) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func (env *testEnv) doFormRequest(method, path string, form url.Values) (*httptest.ResponseRecorder, echo.Context) {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

// asUser attaches an authenticated user to the context the way the login
// middleware would.
func (env *testEnv) asUser(c echo.Context, user *models.User) {
	c.Set("user", user)
	tok, err := env.Tokens.Issue(user.Username)
	require.NoError(env.T, err)
	c.Set("token", tok)
}

func (env *testEnv) createUser(username string, admin bool) *models.User {
	env.T.Helper()
	pw, err := hash.HashPassword("password123")
	require.NoError(env.T, err)
	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: pw,
		IsAdmin:      admin,
	}
	require.NoError(env.T, env.DB.Create(&user).Error)
	return &user
}

func (env *testEnv) createProduct(sku, name string, priceCents int64, stock int) *models.Product {
	env.T.Helper()
	prod := models.Product{SKU: sku, Name: name, PriceCents: priceCents, Stock: stock}
	require.NoError(env.T, env.DB.Create(&prod).Error)
	return &prod
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %T: %v", err, err)
	return he.Code
}
