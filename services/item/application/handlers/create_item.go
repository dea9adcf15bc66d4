package handlers

import (
	"net/http"

	"github.com/ghuser/stockhub/pkg/errhttp"
	"github.com/ghuser/stockhub/pkg/httpx"
	pkgvalidator "github.com/ghuser/stockhub/pkg/validator"
)

// CreateItemHandler handles POST /api/items requests.
type CreateItemHandler struct {
	svc  ItemService
	errs *errhttp.Writer
}

// NewCreateItemHandler returns a CreateItemHandler backed by svc.
func NewCreateItemHandler(svc ItemService, errs *errhttp.Writer) *CreateItemHandler {
	return &CreateItemHandler{svc: svc, errs: errs}
}

// Execute creates an item owned by the caller.
//
//	@Summary		Create item
//	@Description	Creates an inventory item owned by the authenticated user
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreateItemRequest	true	"Item to create"
//	@Success		201		{object}	ItemResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		422		{object}	ValidationErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/items [post]
func (h *CreateItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	req, ok := pkgvalidator.ValidateRequest[CreateItemRequest](w, r)
	if !ok {
		return
	}

	item, err := h.svc.Create(r.Context(), identity, req.toInput())
	if err != nil {
		writeError(w, r, h.errs, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toResponse(item))
}
