package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/stockhub/pkg/app"
	"github.com/ghuser/stockhub/pkg/auth"
	"github.com/ghuser/stockhub/services/user/application/handlers"
)

// UserRoutes registers user endpoints on the provided chi router.
func UserRoutes(r chi.Router, a *app.Application) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(a.Verifier, a.Logger))
		r.Get("/users/me", handlers.NewGetMeHandler().Execute)
	})
}
