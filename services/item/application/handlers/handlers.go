// Package handlers exposes the item service over HTTP. Every route expects
// auth.RequireAuth to have stored the caller's identity in the context.
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/stockhub/pkg/auth"
	"github.com/ghuser/stockhub/pkg/errhttp"
	"github.com/ghuser/stockhub/pkg/telemetry"
	itemdomain "github.com/ghuser/stockhub/services/item/domain"
	"github.com/ghuser/stockhub/services/item/domain/models"
)

// ItemService is the application service the handlers call.
// *services.ItemService satisfies it.
type ItemService interface {
	Create(ctx context.Context, caller auth.Identity, in models.ItemInput) (*models.Item, error)
	List(ctx context.Context, caller auth.Identity) ([]*models.Item, error)
	GetByID(ctx context.Context, caller auth.Identity, id int64) (*models.Item, error)
	Update(ctx context.Context, caller auth.Identity, id int64, patch models.ItemPatch) (*models.Item, error)
	Delete(ctx context.Context, caller auth.Identity, id int64) error
}

// ItemDeletedMessage is the acknowledgement body of DELETE /api/items/{id}.
const ItemDeletedMessage = "Item deleted successfully"

// itemID parses the {id} path segment. Anything that is not an integer
// names no item, so it is reported as not found.
func itemID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, itemdomain.ErrItemNotFound
	}
	return id, nil
}

// caller returns the verified identity or writes a 401.
func caller(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, err := auth.IdentityFromCtx(r.Context())
	if err != nil {
		auth.Unauthorized(w)
		return auth.Identity{}, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, r *http.Request, errs *errhttp.Writer, err error) {
	if errhttp.StatusFor(err) >= http.StatusInternalServerError {
		telemetry.CaptureError(r.Context(), err)
	}
	errs.WriteError(w, err)
}
