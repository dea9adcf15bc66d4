package handlers

import (
	"net/http"

	"github.com/ghuser/stockhub/pkg/errhttp"
	"github.com/ghuser/stockhub/pkg/httpx"
)

// GetItemHandler handles GET /api/items/{id} requests.
type GetItemHandler struct {
	svc  ItemService
	errs *errhttp.Writer
}

// NewGetItemHandler returns a GetItemHandler backed by svc.
func NewGetItemHandler(svc ItemService, errs *errhttp.Writer) *GetItemHandler {
	return &GetItemHandler{svc: svc, errs: errs}
}

// Execute returns one of the caller's items.
//
//	@Summary		Get item
//	@Description	Returns an item owned by the authenticated user. Items of other users are reported as not found.
//	@Tags			items
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"Item ID"
//	@Success		200	{object}	ItemResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/items/{id} [get]
func (h *GetItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	id, err := itemID(r)
	if err != nil {
		writeError(w, r, h.errs, err)
		return
	}

	item, err := h.svc.GetByID(r.Context(), identity, id)
	if err != nil {
		writeError(w, r, h.errs, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toResponse(item))
}
