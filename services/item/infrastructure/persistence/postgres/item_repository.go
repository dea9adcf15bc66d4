// Package postgres implements the item repository on PostgreSQL with
// squirrel-built queries and scany row scanning.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ghuser/stockhub/pkg/database"
	"github.com/ghuser/stockhub/pkg/events"
	itemdomain "github.com/ghuser/stockhub/services/item/domain"
	domainevents "github.com/ghuser/stockhub/services/item/domain/events"
	"github.com/ghuser/stockhub/services/item/domain/models"
)

const itemsTable = "items"

var itemColumns = []string{
	"id", "owner_id", "name", "description", "quantity", "price", "category", "created_at", "updated_at",
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// TxPublisher publishes messages inside a pgx transaction.
// *events.EventBus satisfies it.
type TxPublisher interface {
	PublishTx(ctx context.Context, tx pgx.Tx, topic string, msgs ...*message.Message) error
}

// ItemRepository implements repositories.ItemRepository against PostgreSQL.
type ItemRepository struct {
	db  database.TxBeginner
	bus TxPublisher
}

// NewItemRepository returns an ItemRepository backed by db. When bus is
// non-nil every successful write publishes its item event in the same
// transaction.
func NewItemRepository(db database.TxBeginner, bus TxPublisher) *ItemRepository {
	return &ItemRepository{db: db, bus: bus}
}

// itemRow is the scan target for the items table.
type itemRow struct {
	ID          int64     `db:"id"`
	OwnerID     string    `db:"owner_id"`
	Name        string    `db:"name"`
	Description *string   `db:"description"`
	Quantity    int       `db:"quantity"`
	Price       float64   `db:"price"`
	Category    *string   `db:"category"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r itemRow) toModel() *models.Item {
	return &models.Item{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Name:        r.Name,
		Description: r.Description,
		Quantity:    r.Quantity,
		Price:       r.Price,
		Category:    r.Category,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func returning() string {
	return "RETURNING " + strings.Join(itemColumns, ", ")
}

// Insert stores a new item. created_at and updated_at come from the column
// defaults, so both hold the same transaction timestamp.
func (r *ItemRepository) Insert(ctx context.Context, ownerID string, in models.ItemInput) (*models.Item, error) {
	query, args, err := psql.Insert(itemsTable).
		Columns("owner_id", "name", "description", "quantity", "price", "category").
		Values(ownerID, in.Name, in.Description, in.Quantity, in.Price, in.Category).
		Suffix(returning()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: build insert: %w", itemdomain.ErrStore, err)
	}

	var row itemRow
	err = database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := pgxscan.Get(ctx, tx, &row, query, args...); err != nil {
			if pgxscan.NotFound(err) {
				return itemdomain.ErrItemNotWritten
			}
			return mapError(err, "insert item")
		}
		evt := domainevents.ItemCreatedEvent{
			EventID:    uuid.New(),
			Version:    domainevents.EventVersion,
			ItemID:     row.ID,
			OwnerID:    row.OwnerID,
			Name:       row.Name,
			Quantity:   row.Quantity,
			Price:      row.Price,
			OccurredAt: row.CreatedAt,
		}
		return r.publish(ctx, tx, domainevents.TopicItemCreated, evt.EventID, evt)
	})
	if err != nil {
		return nil, storeError(err, "insert item")
	}
	return row.toModel(), nil
}

// ListByOwner returns every item of ownerID ordered by id.
func (r *ItemRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Item, error) {
	query, args, err := psql.Select(itemColumns...).
		From(itemsTable).
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: build select: %w", itemdomain.ErrStore, err)
	}

	var rows []itemRow
	if err := pgxscan.Select(ctx, r.db, &rows, query, args...); err != nil {
		return nil, mapError(err, "list items")
	}

	items := make([]*models.Item, len(rows))
	for i, row := range rows {
		items[i] = row.toModel()
	}
	return items, nil
}

// GetByID returns the item matching both id and ownerID.
func (r *ItemRepository) GetByID(ctx context.Context, ownerID string, id int64) (*models.Item, error) {
	query, args, err := psql.Select(itemColumns...).
		From(itemsTable).
		Where(sq.Eq{"id": id, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: build select: %w", itemdomain.ErrStore, err)
	}

	var row itemRow
	if err := pgxscan.Get(ctx, r.db, &row, query, args...); err != nil {
		return nil, mapError(err, "get item")
	}
	return row.toModel(), nil
}

// Update writes the supplied columns of patch and sets updated_at to now().
// A patch matching no row returns ErrItemNotWritten.
func (r *ItemRepository) Update(ctx context.Context, ownerID string, id int64, patch models.ItemPatch) (*models.Item, error) {
	cols := patch.Columns()
	if len(cols) == 0 {
		return nil, itemdomain.ErrNoFieldsToUpdate
	}

	query, args, err := psql.Update(itemsTable).
		SetMap(cols).
		Set("updated_at", sq.Expr("GREATEST(now(), created_at)")).
		Where(sq.Eq{"id": id, "owner_id": ownerID}).
		Suffix(returning()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: build update: %w", itemdomain.ErrStore, err)
	}

	fields := make([]string, 0, len(cols))
	for k := range cols {
		fields = append(fields, k)
	}
	slices.Sort(fields)

	var row itemRow
	err = database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := pgxscan.Get(ctx, tx, &row, query, args...); err != nil {
			if pgxscan.NotFound(err) {
				return itemdomain.ErrItemNotWritten
			}
			return mapError(err, "update item")
		}
		evt := domainevents.ItemUpdatedEvent{
			EventID:    uuid.New(),
			Version:    domainevents.EventVersion,
			ItemID:     row.ID,
			OwnerID:    row.OwnerID,
			Fields:     fields,
			OccurredAt: row.UpdatedAt,
		}
		return r.publish(ctx, tx, domainevents.TopicItemUpdated, evt.EventID, evt)
	})
	if err != nil {
		return nil, storeError(err, "update item")
	}
	return row.toModel(), nil
}

// Delete removes the item matching id and ownerID and reports rows removed.
func (r *ItemRepository) Delete(ctx context.Context, ownerID string, id int64) (int64, error) {
	query, args, err := psql.Delete(itemsTable).
		Where(sq.Eq{"id": id, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: build delete: %w", itemdomain.ErrStore, err)
	}

	var affected int64
	err = database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return mapError(err, "delete item")
		}
		affected = tag.RowsAffected()
		if affected == 0 {
			return nil
		}
		evt := domainevents.ItemDeletedEvent{
			EventID:    uuid.New(),
			Version:    domainevents.EventVersion,
			ItemID:     id,
			OwnerID:    ownerID,
			OccurredAt: time.Now().UTC(),
		}
		return r.publish(ctx, tx, domainevents.TopicItemDeleted, evt.EventID, evt)
	})
	if err != nil {
		return 0, storeError(err, "delete item")
	}
	return affected, nil
}

func (r *ItemRepository) publish(ctx context.Context, tx pgx.Tx, topic string, eventID uuid.UUID, event any) error {
	if r.bus == nil {
		return nil
	}

	msg, err := events.NewJSONMessage(eventID.String(), domainevents.EventVersion, event)
	if err != nil {
		return fmt.Errorf("%w: %w", itemdomain.ErrStore, err)
	}
	if err := r.bus.PublishTx(ctx, tx, topic, msg); err != nil {
		return fmt.Errorf("%w: %w", itemdomain.ErrStore, err)
	}
	return nil
}

// storeError makes sure anything escaping a transaction carries a domain kind.
func storeError(err error, op string) error {
	if errors.Is(err, itemdomain.ErrStore) ||
		errors.Is(err, itemdomain.ErrInvalidItem) ||
		errors.Is(err, itemdomain.ErrItemNotFound) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", itemdomain.ErrStore, op, err)
}

// mapError converts pgx/pgconn errors into domain errors.
func mapError(err error, op string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) || pgxscan.NotFound(err) {
		return itemdomain.ErrItemNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23514": // check_violation
			return fmt.Errorf("%w: violates %s", itemdomain.ErrInvalidItem, pgErr.ConstraintName)
		case "23502": // not_null_violation
			return fmt.Errorf("%w: %s is required", itemdomain.ErrInvalidItem, pgErr.ColumnName)
		case "22001": // string_data_right_truncation
			return fmt.Errorf("%w: value too long", itemdomain.ErrInvalidItem)
		}
	}

	// Context errors stay matchable through the chain.
	return fmt.Errorf("%w: %s: %w", itemdomain.ErrStore, op, err)
}
