package handlers

import (
	"net/http"

	"github.com/ghuser/stockhub/pkg/errhttp"
	"github.com/ghuser/stockhub/pkg/httpx"
)

// DeleteItemHandler handles DELETE /api/items/{id} requests.
type DeleteItemHandler struct {
	svc  ItemService
	errs *errhttp.Writer
}

// NewDeleteItemHandler returns a DeleteItemHandler backed by svc.
func NewDeleteItemHandler(svc ItemService, errs *errhttp.Writer) *DeleteItemHandler {
	return &DeleteItemHandler{svc: svc, errs: errs}
}

// Execute deletes one of the caller's items.
//
//	@Summary		Delete item
//	@Description	Deletes an item owned by the authenticated user
//	@Tags			items
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int	true	"Item ID"
//	@Success		200	{object}	MessageResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/items/{id} [delete]
func (h *DeleteItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	id, err := itemID(r)
	if err != nil {
		writeError(w, r, h.errs, err)
		return
	}

	if err := h.svc.Delete(r.Context(), identity, id); err != nil {
		writeError(w, r, h.errs, err)
		return
	}

	httpx.Message(w, http.StatusOK, ItemDeletedMessage)
}
