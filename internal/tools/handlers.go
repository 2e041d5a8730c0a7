package tools

import (
	"context"
	"encoding/json"

	"github.com/smartstore/backend/internal/apperr"
	"github.com/smartstore/backend/internal/models"
)

type searchProductsArgs struct {
	Q    string `json:"q"`
	TopK int    `json:"top_k"`
}

type productHit struct {
	SKU        string `json:"sku"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Stock      int    `json:"stock"`
}

func (r *Registry) searchProductsTool() tool {
	return tool{
		def: Definition{
			Name:        string(SearchProducts),
			Description: "Search the product catalog by fuzzy name/description match",
			Parameters: Params{
				Type: "object",
				Properties: map[string]Property{
					"q":     {Type: "string", Description: "search keywords"},
					"top_k": {Type: "integer", Description: "maximum number of results", Default: 5},
				},
			},
		},
		run: func(ctx context.Context, _ *models.User, raw json.RawMessage) (any, error) {
			var args searchProductsArgs
			if err := decodeArgs(raw, &args); err != nil {
				return nil, err
			}
			if args.TopK <= 0 {
				args.TopK = 5
			}
			items, err := r.store.SearchProducts(ctx, args.Q, args.TopK)
			if err != nil {
				return nil, err
			}
			hits := make([]productHit, len(items))
			for i, p := range items {
				hits[i] = productHit{SKU: p.SKU, Name: p.Name, PriceCents: p.PriceCents, Stock: p.Stock}
			}
			return hits, nil
		},
	}
}

type addToCartArgs struct {
	UserID uint   `json:"user_id"`
	SKU    string `json:"sku"`
	Qty    int    `json:"qty"`
}

func (r *Registry) addToCartTool() tool {
	return tool{
		def: Definition{
			Name:        string(AddToCart),
			Description: "Add a quantity of one SKU to a user's shopping cart",
			Parameters: Params{
				Type: "object",
				Properties: map[string]Property{
					"user_id": {Type: "integer", Description: "id of the cart owner"},
					"sku":     {Type: "string", Description: "product SKU"},
					"qty":     {Type: "integer", Description: "quantity to add", Default: 1},
				},
				Required: []string{"user_id", "sku"},
			},
		},
		run: func(ctx context.Context, _ *models.User, raw json.RawMessage) (any, error) {
			var args addToCartArgs
			if err := decodeArgs(raw, &args); err != nil {
				return nil, err
			}
			if args.SKU == "" {
				return nil, apperr.Validation("sku is required")
			}
			if args.Qty == 0 {
				args.Qty = 1
			}
			if _, err := r.store.AddToCart(ctx, args.UserID, args.SKU, args.Qty); err != nil {
				return nil, err
			}
			return map[string]any{"ok": true}, nil
		},
	}
}

type createProductArgs struct {
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	PriceCents  int64  `json:"price_cents"`
	Stock       int    `json:"stock"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	CategoryID  *uint  `json:"category_id"`
}

func (r *Registry) createProductTool() tool {
	return tool{
		def: Definition{
			Name:        string(CreateProduct),
			Description: "Create a new product (admin only)",
			Parameters: Params{
				Type: "object",
				Properties: map[string]Property{
					"sku":         {Type: "string", Description: "unique product SKU"},
					"name":        {Type: "string"},
					"price_cents": {Type: "integer", Description: "price in integer cents"},
					"stock":       {Type: "integer"},
					"description": {Type: "string"},
					"image_url":   {Type: "string"},
					"category_id": {Type: "integer"},
				},
				Required: []string{"sku", "name", "price_cents", "stock"},
			},
		},
		adminOnly: true,
		run: func(ctx context.Context, _ *models.User, raw json.RawMessage) (any, error) {
			var args createProductArgs
			if err := decodeArgs(raw, &args); err != nil {
				return nil, err
			}
			if args.SKU == "" || args.Name == "" {
				return nil, apperr.Validation("sku and name are required")
			}
			if args.PriceCents < 0 || args.Stock < 0 {
				return nil, apperr.Validation("price_cents and stock must be non-negative")
			}
			prod := models.Product{
				SKU:         args.SKU,
				Name:        args.Name,
				PriceCents:  args.PriceCents,
				Stock:       args.Stock,
				Description: args.Description,
				ImageURL:    args.ImageURL,
				CategoryID:  args.CategoryID,
			}
			if err := r.store.CreateProduct(ctx, &prod); err != nil {
				return nil, err
			}
			return prod, nil
		},
	}
}

type userOut struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

func (r *Registry) listUsersTool() tool {
	return tool{
		def: Definition{
			Name:        string(ListUsers),
			Description: "List all registered users (admin only)",
			Parameters:  Params{Type: "object", Properties: map[string]Property{}},
		},
		adminOnly: true,
		run: func(ctx context.Context, _ *models.User, _ json.RawMessage) (any, error) {
			users, err := r.store.ListUsers(ctx)
			if err != nil {
				return nil, err
			}
			out := make([]userOut, len(users))
			for i, u := range users {
				out[i] = userOut{ID: u.ID, Username: u.Username, Email: u.Email, IsAdmin: u.IsAdmin}
			}
			return out, nil
		},
	}
}

type deleteUserArgs struct {
	Username string `json:"username"`
}

func (r *Registry) deleteUserTool() tool {
	return tool{
		def: Definition{
			Name:        string(DeleteUser),
			Description: "Delete a user account by username (admin only)",
			Parameters: Params{
				Type: "object",
				Properties: map[string]Property{
					"username": {Type: "string", Description: "username of the account to delete"},
				},
				Required: []string{"username"},
			},
		},
		adminOnly: true,
		run: func(ctx context.Context, caller *models.User, raw json.RawMessage) (any, error) {
			var args deleteUserArgs
			if err := decodeArgs(raw, &args); err != nil {
				return nil, err
			}
			if args.Username == "" {
				return nil, apperr.Validation("username is required")
			}
			if args.Username == caller.Username {
				return nil, apperr.Forbidden("refusing to delete the calling admin account")
			}
			if err := r.store.DeleteUser(ctx, args.Username); err != nil {
				return nil, err
			}
			return map[string]any{"ok": true}, nil
		},
	}
}

func (r *Registry) listOrdersTool() tool {
	return tool{
		def: Definition{
			Name:        string(ListOrders),
			Description: "List all orders across every user (admin only)",
			Parameters:  Params{Type: "object", Properties: map[string]Property{}},
		},
		adminOnly: true,
		run: func(ctx context.Context, _ *models.User, _ json.RawMessage) (any, error) {
			return r.store.ListAllOrders(ctx)
		},
	}
}
