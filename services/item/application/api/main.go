package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/stockhub/pkg/app"
	"github.com/ghuser/stockhub/pkg/auth"
	"github.com/ghuser/stockhub/pkg/errhttp"
	"github.com/ghuser/stockhub/pkg/logger"
	"github.com/ghuser/stockhub/services/item/application/handlers"
	appsvcs "github.com/ghuser/stockhub/services/item/application/services"
)

// ItemRoutes registers item endpoints on the provided chi router.
func ItemRoutes(r chi.Router, a *app.Application) {
	svcs := appsvcs.New(a)
	Routes(r, svcs.Item, a.Verifier, a.Logger, a.IsProduction())
}

// Routes mounts the /items endpoints of svc behind bearer authentication.
func Routes(r chi.Router, svc handlers.ItemService, v auth.Verifier, log logger.Logger, isProduction bool) {
	errs := errhttp.New(isProduction)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(v, log))
		r.Route("/items", func(r chi.Router) {
			r.Post("/", handlers.NewCreateItemHandler(svc, errs).Execute)
			r.Get("/", handlers.NewListItemsHandler(svc, errs).Execute)
			r.Get("/{id}", handlers.NewGetItemHandler(svc, errs).Execute)
			r.Put("/{id}", handlers.NewUpdateItemHandler(svc, errs).Execute)
			r.Delete("/{id}", handlers.NewDeleteItemHandler(svc, errs).Execute)
		})
	})
}
