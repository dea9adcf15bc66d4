package handlers

import (
	"net/http"
	"time"

	"github.com/ghuser/stockhub/pkg/auth"
	"github.com/ghuser/stockhub/pkg/httpx"
)

// UserResponse describes the authenticated caller.
type UserResponse struct {
	ID    string `json:"id"    example:"8d0f6c1e-3b7a-4c55-9a43-2f1b8e6d7c90"`
	Email string `json:"email" example:"user@example.com"`
	// CreatedAt is null when the verifier does not report it (AUTH_MODE=jwt).
	CreatedAt *time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
} // @name UserResponse

// GetMeHandler handles GET /api/users/me requests.
type GetMeHandler struct{}

// NewGetMeHandler returns a GetMeHandler.
func NewGetMeHandler() *GetMeHandler {
	return &GetMeHandler{}
}

// Execute returns the verified identity of the caller.
//
//	@Summary		Current user
//	@Description	Returns the identity the bearer token was verified as
//	@Tags			users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	UserResponse
//	@Failure		401	{object}	ErrorResponse
//	@Router			/users/me [get]
func (h *GetMeHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := auth.IdentityFromCtx(r.Context())
	if err != nil {
		auth.Unauthorized(w)
		return
	}

	resp := UserResponse{ID: id.ID, Email: id.Email}
	if !id.CreatedAt.IsZero() {
		resp.CreatedAt = &id.CreatedAt
	}
	httpx.JSON(w, http.StatusOK, resp)
}
