package services

import (
	"github.com/ghuser/stockhub/pkg/app"
	"github.com/ghuser/stockhub/services/item/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Item *ItemService
}

// New wires all item application services with infrastructure from the Application container.
func New(a *app.Application) *Services {
	var bus postgres.TxPublisher
	if a.EventBus != nil {
		bus = a.EventBus
	}
	repo := postgres.NewItemRepository(a.Db.Pool(), bus)
	return &Services{
		Item: NewItemService(repo, a.Logger,
			WithAtomicMutations(a.Config.ItemAtomicMutations),
		),
	}
}
