package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smartstore/backend/internal/handlers"
	mwauth "github.com/smartstore/backend/internal/middleware/auth"
	"github.com/smartstore/backend/internal/service/token"
	"github.com/smartstore/backend/internal/store"
)

type Deps struct {
	Store           *store.Store
	Tokens          *token.Service
	AuthHandler     *handlers.AuthHandler
	ProductHandler  *handlers.ProductHandler
	CategoryHandler *handlers.CategoryHandler
	CartHandler     *handlers.CartHandler
	OrderHandler    *handlers.OrderHandler
	UserHandler     *handlers.UserHandler
	ChatHandler     *handlers.ChatHandler
	SearchHandler   *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	api := e.Group("/api")

	api.POST("/auth/register", d.AuthHandler.Register)
	api.POST("/auth/token", d.AuthHandler.Token)

	api.GET("/products", d.ProductHandler.ListProducts)
	api.GET("/products/:sku", d.ProductHandler.GetProduct)
	api.GET("/categories", d.CategoryHandler.ListCategories)
	if d.SearchHandler != nil {
		api.GET("/search", d.SearchHandler.Search)
	}

	login := mwauth.RequireLogin(d.Tokens, d.Store)

	cart := api.Group("/cart", login)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddToCart)
	cart.DELETE("", d.CartHandler.ClearCart)
	cart.DELETE("/:id", d.CartHandler.RemoveItem)

	orders := api.Group("/orders", login)
	orders.POST("", d.OrderHandler.PlaceOrder)
	orders.GET("", d.OrderHandler.ListMyOrders)
	orders.GET("/all", d.OrderHandler.ListAllOrders, mwauth.AdminOnly())

	chat := api.Group("/chat", login)
	chat.POST("", d.ChatHandler.Chat)
	chat.GET("", d.ChatHandler.ChatWS)

	admin := api.Group("", login, mwauth.AdminOnly())
	admin.POST("/products", d.ProductHandler.CreateProduct)
	admin.PATCH("/products/:sku", d.ProductHandler.PatchProduct)
	admin.DELETE("/products/:sku", d.ProductHandler.DeleteProduct)
	admin.POST("/categories", d.CategoryHandler.CreateCategory)
	admin.GET("/users", d.UserHandler.ListUsers)
	admin.DELETE("/users/:username", d.UserHandler.DeleteUser)
}
