package services

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/ghuser/stockhub/pkg/auth"
	"github.com/ghuser/stockhub/pkg/logger"
	itemdomain "github.com/ghuser/stockhub/services/item/domain"
	"github.com/ghuser/stockhub/services/item/domain/models"
	"github.com/ghuser/stockhub/services/item/domain/repositories"
	domainsvcs "github.com/ghuser/stockhub/services/item/domain/services"
)

const meterName = "github.com/ghuser/stockhub/services/item"

// Operation outcomes recorded on the inventory.item.operations counter.
const (
	outcomeOK       = "ok"
	outcomeInvalid  = "invalid"
	outcomeNotFound = "not_found"
	outcomeError    = "error"
)

// ItemService mediates every item store access through the verified caller.
// Event publishing is handled by the repository layer (outbox pattern).
type ItemService struct {
	repo   repositories.ItemRepository
	log    logger.Logger
	atomic bool
	ops    metric.Int64Counter
}

// Option configures an ItemService.
type Option func(*ItemService)

// WithAtomicMutations makes Update and Delete a single owner-filtered write.
// A write that matches no row is then reported as ErrItemNotFound.
func WithAtomicMutations(enabled bool) Option {
	return func(s *ItemService) { s.atomic = enabled }
}

// WithMeter records operation counts on m instead of the global meter provider.
func WithMeter(m metric.Meter) Option {
	return func(s *ItemService) { s.ops = newOpsCounter(m) }
}

// NewItemService returns an ItemService backed by repo.
func NewItemService(repo repositories.ItemRepository, log logger.Logger, opts ...Option) *ItemService {
	s := &ItemService{repo: repo, log: log}
	for _, opt := range opts {
		opt(s)
	}
	if s.ops == nil {
		s.ops = newOpsCounter(otel.Meter(meterName))
	}
	return s
}

func newOpsCounter(m metric.Meter) metric.Int64Counter {
	c, err := m.Int64Counter("inventory.item.operations",
		metric.WithDescription("Item operations by kind and outcome"),
	)
	if err != nil {
		// Only returned for an invalid instrument name.
		panic(err)
	}
	return c
}

// Create validates in and stores it owned by caller. created_at and
// updated_at are assigned by the store.
func (s *ItemService) Create(ctx context.Context, caller auth.Identity, in models.ItemInput) (item *models.Item, err error) {
	defer s.record(ctx, "create", &err)

	if err := domainsvcs.ValidateInput(in); err != nil {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrInvalidItem, err)
	}

	item, err = s.repo.Insert(ctx, caller.ID, in)
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	return item, nil
}

// List returns every item owned by caller, or an empty slice.
func (s *ItemService) List(ctx context.Context, caller auth.Identity) (items []*models.Item, err error) {
	defer s.record(ctx, "list", &err)

	items, err = s.repo.ListByOwner(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	if items == nil {
		items = []*models.Item{}
	}
	return items, nil
}

// GetByID returns the item with id owned by caller. An item owned by
// someone else is reported exactly like a missing one.
func (s *ItemService) GetByID(ctx context.Context, caller auth.Identity, id int64) (item *models.Item, err error) {
	defer s.record(ctx, "get", &err)
	return s.get(ctx, caller, id)
}

func (s *ItemService) get(ctx context.Context, caller auth.Identity, id int64) (*models.Item, error) {
	item, err := s.repo.GetByID(ctx, caller.ID, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// Update applies the supplied fields of patch to the caller's item.
//
// Existence is checked first, then the patch. The check and the write are
// separate statements, so a concurrent delete between them surfaces as
// ErrItemNotWritten rather than ErrItemNotFound. In atomic mode the check is
// skipped and a write matching no row is ErrItemNotFound.
func (s *ItemService) Update(ctx context.Context, caller auth.Identity, id int64, patch models.ItemPatch) (item *models.Item, err error) {
	defer s.record(ctx, "update", &err)

	if !s.atomic {
		if _, err := s.get(ctx, caller, id); err != nil {
			return nil, err
		}
	}

	if patch.IsEmpty() {
		return nil, itemdomain.ErrNoFieldsToUpdate
	}
	if err := domainsvcs.ValidatePatch(patch); err != nil {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrInvalidItem, err)
	}

	item, err = s.repo.Update(ctx, caller.ID, id, patch)
	if err != nil {
		if s.atomic && errors.Is(err, itemdomain.ErrItemNotWritten) {
			return nil, itemdomain.ErrItemNotFound
		}
		return nil, fmt.Errorf("update item: %w", err)
	}
	return item, nil
}

// Delete removes the caller's item. Once the existence check has passed the
// delete succeeds whatever number of rows it removed. In atomic mode zero
// rows removed is ErrItemNotFound.
func (s *ItemService) Delete(ctx context.Context, caller auth.Identity, id int64) (err error) {
	defer s.record(ctx, "delete", &err)

	if !s.atomic {
		if _, err := s.get(ctx, caller, id); err != nil {
			return err
		}
	}

	n, err := s.repo.Delete(ctx, caller.ID, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if s.atomic && n == 0 {
		return itemdomain.ErrItemNotFound
	}
	return nil
}

func (s *ItemService) record(ctx context.Context, op string, errp *error) {
	outcome := outcomeOK
	if err := *errp; err != nil {
		switch {
		case errors.Is(err, itemdomain.ErrItemNotFound):
			outcome = outcomeNotFound
		case errors.Is(err, itemdomain.ErrInvalidItem):
			outcome = outcomeInvalid
		default:
			outcome = outcomeError
			s.log.ErrorContext(ctx, "item operation failed", "op", op, "error", err)
		}
	}
	s.ops.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("outcome", outcome),
	))
}
