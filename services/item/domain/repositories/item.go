package repositories

import (
	"context"

	"github.com/ghuser/stockhub/services/item/domain/models"
)

// ItemRepository is the persistence interface for the Item aggregate.
// The domain layer owns this interface; infrastructure implements it.
//
// Every method that takes an ownerID filters by it, so an item owned by
// someone else behaves exactly like one that does not exist.
type ItemRepository interface {
	// Insert stores a new item for ownerID and returns it with the
	// store-assigned id and timestamps.
	Insert(ctx context.Context, ownerID string, in models.ItemInput) (*models.Item, error)

	// ListByOwner returns every item of ownerID ordered by id. It returns an
	// empty slice, not an error, when there are none.
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Item, error)

	// GetByID returns ErrItemNotFound when no item matches both id and ownerID.
	GetByID(ctx context.Context, ownerID string, id int64) (*models.Item, error)

	// Update applies the supplied fields of patch and bumps updated_at.
	// Returns ErrItemNotWritten when no row matches id and ownerID.
	Update(ctx context.Context, ownerID string, id int64, patch models.ItemPatch) (*models.Item, error)

	// Delete removes the item matching id and ownerID and reports the number
	// of rows removed.
	Delete(ctx context.Context, ownerID string, id int64) (int64, error)
}
