// Package subscribers consumes the item events published through the outbox.
package subscribers

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/ghuser/stockhub/pkg/events"
	"github.com/ghuser/stockhub/pkg/logger"
	domainevents "github.com/ghuser/stockhub/services/item/domain/events"
)

// Handler processes one message. A returned error makes the bus retry.
type Handler = events.Handler

// ItemEvents logs and counts item lifecycle events.
type ItemEvents struct {
	log      logger.Logger
	received metric.Int64Counter
}

// NewItemEvents returns ItemEvents recording on the global meter provider
// when m is nil.
func NewItemEvents(log logger.Logger, m metric.Meter) (*ItemEvents, error) {
	if m == nil {
		m = otel.Meter("github.com/ghuser/stockhub/services/item/subscribers")
	}
	received, err := m.Int64Counter("inventory.item.events",
		metric.WithDescription("Item events consumed by topic and result"),
	)
	if err != nil {
		return nil, err
	}
	return &ItemEvents{log: log, received: received}, nil
}

// Handlers returns the handler for every item topic.
func (s *ItemEvents) Handlers() map[string]Handler {
	return map[string]Handler{
		domainevents.TopicItemCreated: s.handleCreated,
		domainevents.TopicItemUpdated: s.handleUpdated,
		domainevents.TopicItemDeleted: s.handleDeleted,
	}
}

func (s *ItemEvents) handleCreated(ctx context.Context, msg *message.Message) error {
	var evt domainevents.ItemCreatedEvent
	if !s.decode(ctx, domainevents.TopicItemCreated, msg, &evt) {
		return nil
	}
	s.log.InfoContext(ctx, "item created",
		"event_id", evt.EventID,
		"item_id", evt.ItemID,
		"owner_id", evt.OwnerID,
		"quantity", evt.Quantity,
	)
	s.count(ctx, domainevents.TopicItemCreated, "ok")
	return nil
}

func (s *ItemEvents) handleUpdated(ctx context.Context, msg *message.Message) error {
	var evt domainevents.ItemUpdatedEvent
	if !s.decode(ctx, domainevents.TopicItemUpdated, msg, &evt) {
		return nil
	}
	s.log.InfoContext(ctx, "item updated",
		"event_id", evt.EventID,
		"item_id", evt.ItemID,
		"owner_id", evt.OwnerID,
		"fields", evt.Fields,
	)
	s.count(ctx, domainevents.TopicItemUpdated, "ok")
	return nil
}

func (s *ItemEvents) handleDeleted(ctx context.Context, msg *message.Message) error {
	var evt domainevents.ItemDeletedEvent
	if !s.decode(ctx, domainevents.TopicItemDeleted, msg, &evt) {
		return nil
	}
	s.log.InfoContext(ctx, "item deleted",
		"event_id", evt.EventID,
		"item_id", evt.ItemID,
		"owner_id", evt.OwnerID,
	)
	s.count(ctx, domainevents.TopicItemDeleted, "ok")
	return nil
}

// decode reports whether msg could be decoded. Undecodable payloads are
// acknowledged and dropped: a retry would fail the same way.
func (s *ItemEvents) decode(ctx context.Context, topic string, msg *message.Message, v any) bool {
	if err := events.DecodeJSON(msg, v); err != nil {
		s.log.ErrorContext(ctx, "dropping undecodable event",
			"topic", topic,
			"message_uuid", msg.UUID,
			"error", err,
		)
		s.count(ctx, topic, "malformed")
		return false
	}
	return true
}

func (s *ItemEvents) count(ctx context.Context, topic, result string) {
	s.received.Add(ctx, 1, metric.WithAttributes(
		attribute.String("topic", topic),
		attribute.String("result", result),
	))
}
