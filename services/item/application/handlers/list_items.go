package handlers

import (
	"net/http"

	"github.com/ghuser/stockhub/pkg/errhttp"
	"github.com/ghuser/stockhub/pkg/httpx"
)

// ListItemsHandler handles GET /api/items requests.
type ListItemsHandler struct {
	svc  ItemService
	errs *errhttp.Writer
}

// NewListItemsHandler returns a ListItemsHandler backed by svc.
func NewListItemsHandler(svc ItemService, errs *errhttp.Writer) *ListItemsHandler {
	return &ListItemsHandler{svc: svc, errs: errs}
}

// Execute lists the caller's items.
//
//	@Summary		List items
//	@Description	Returns every item owned by the authenticated user
//	@Tags			items
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		ItemResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/items [get]
func (h *ListItemsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	items, err := h.svc.List(r.Context(), identity)
	if err != nil {
		writeError(w, r, h.errs, err)
		return
	}

	resp := make([]ItemResponse, len(items))
	for i, item := range items {
		resp[i] = toResponse(item)
	}
	httpx.JSON(w, http.StatusOK, resp)
}
