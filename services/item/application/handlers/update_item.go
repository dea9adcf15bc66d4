package handlers

import (
	"net/http"

	"github.com/ghuser/stockhub/pkg/errhttp"
	"github.com/ghuser/stockhub/pkg/httpx"
	pkgvalidator "github.com/ghuser/stockhub/pkg/validator"
)

// UpdateItemHandler handles PUT /api/items/{id} requests.
type UpdateItemHandler struct {
	svc  ItemService
	errs *errhttp.Writer
}

// NewUpdateItemHandler returns an UpdateItemHandler backed by svc.
func NewUpdateItemHandler(svc ItemService, errs *errhttp.Writer) *UpdateItemHandler {
	return &UpdateItemHandler{svc: svc, errs: errs}
}

// Execute applies a partial update to one of the caller's items.
//
//	@Summary		Update item
//	@Description	Updates the supplied fields of an item owned by the authenticated user
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		int					true	"Item ID"
//	@Param			request	body		UpdateItemRequest	true	"Fields to change"
//	@Success		200		{object}	ItemResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ValidationErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/items/{id} [put]
func (h *UpdateItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	id, err := itemID(r)
	if err != nil {
		writeError(w, r, h.errs, err)
		return
	}

	req, ok := pkgvalidator.ValidateRequest[UpdateItemRequest](w, r)
	if !ok {
		return
	}

	item, err := h.svc.Update(r.Context(), identity, id, req.toPatch())
	if err != nil {
		writeError(w, r, h.errs, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toResponse(item))
}
