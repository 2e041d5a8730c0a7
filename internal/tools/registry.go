package tools

import (
	"context"
	"encoding/json"

	"github.com/smartstore/backend/internal/apperr"
	"github.com/smartstore/backend/internal/logging"
	"github.com/smartstore/backend/internal/models"
	"github.com/smartstore/backend/internal/service/token"
	"github.com/smartstore/backend/internal/store"
)

// ID enumerates every callable tool. Dispatch is keyed on these constants,
// never on free-form strings from the model.
type ID string

const (
	SearchProducts ID = "search_products"
	AddToCart      ID = "add_to_cart"
	CreateProduct  ID = "create_product"
	ListUsers      ID = "list_users"
	DeleteUser     ID = "delete_user"
	ListOrders     ID = "list_orders"
)

// Params is the JSON-schema fragment advertised for a tool's arguments.
type Params struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

type Property struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Default     any    `json:"default,omitempty"`
}

// Definition is what gets advertised to the model for one tool.
type Definition struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  Params `json:"parameters"`
}

type tool struct {
	def       Definition
	adminOnly bool
	// run receives the decoded caller (nil for public tools) and the raw
	// JSON arguments; it decodes them into its own typed struct.
	run func(ctx context.Context, caller *models.User, raw json.RawMessage) (any, error)
}

// Registry holds the fixed tool set. Tool handlers go through the shared
// Store, each invocation independent of any surrounding request transaction.
type Registry struct {
	store  *store.Store
	tokens *token.Service

	tools map[ID]tool
	order []ID
}

func NewRegistry(st *store.Store, tokens *token.Service) *Registry {
	r := &Registry{
		store:  st,
		tokens: tokens,
		tools:  make(map[ID]tool),
	}
	r.register(r.searchProductsTool())
	r.register(r.addToCartTool())
	r.register(r.createProductTool())
	r.register(r.listUsersTool())
	r.register(r.deleteUserTool())
	r.register(r.listOrdersTool())
	return r
}

func (r *Registry) register(t tool) {
	id := ID(t.def.Name)
	r.tools[id] = t
	r.order = append(r.order, id)
}

// Definitions returns tool descriptors in registration order.
func (r *Registry) Definitions() []Definition {
	defs := make([]Definition, 0, len(r.order))
	for _, id := range r.order {
		defs = append(defs, r.tools[id].def)
	}
	return defs
}

// IsAdminGated reports whether the named tool requires an admin caller.
func (r *Registry) IsAdminGated(name string) bool {
	t, ok := r.tools[ID(name)]
	return ok && t.adminOnly
}

// requireAdmin decodes the caller's bearer token, resolves the user and
// checks the admin flag. This is the single capability check every
// admin-gated tool passes through before its handler body runs.
func (r *Registry) requireAdmin(ctx context.Context, callerToken string) (*models.User, error) {
	if callerToken == "" {
		return nil, apperr.Auth("missing token")
	}
	username, err := r.tokens.Verify(callerToken)
	if err != nil {
		return nil, err
	}
	user, err := r.store.GetUserByUsername(ctx, username)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Auth("unknown token subject")
		}
		return nil, err
	}
	if !user.IsAdmin {
		return nil, apperr.Forbidden("admin privilege required")
	}
	return user, nil
}

// Execute runs one tool invocation. The caller token is threaded out-of-band
// rather than through the model-controlled argument object, so the model can
// neither supply nor omit credentials. Argument JSON that does not decode
// into the tool's typed struct fails with a validation error.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage, callerToken string) (any, error) {
	t, ok := r.tools[ID(name)]
	if !ok {
		return nil, apperr.Newf(apperr.KindNotFound, "unknown tool %q", name)
	}

	var caller *models.User
	if t.adminOnly {
		var err error
		caller, err = r.requireAdmin(ctx, callerToken)
		if err != nil {
			return nil, err
		}
	}

	logging.FromContext(ctx).Info("tool invocation", "tool", name)
	return t.run(ctx, caller, args)
}

func decodeArgs(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return apperr.Wrap(apperr.KindValidation, "malformed tool arguments", err)
	}
	return nil
}
