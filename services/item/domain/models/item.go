package models

import "time"

// Item is the core aggregate for this bounded context. ID, CreatedAt and
// UpdatedAt are assigned by the store; OwnerID is fixed at creation.
type Item struct {
	ID          int64
	OwnerID     string // tenant scope: always filter by this in queries
	Name        string
	Description *string
	Quantity    int
	Price       float64
	Category    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ItemInput carries the client-settable fields of a new Item.
type ItemInput struct {
	Name        string
	Description *string
	Quantity    int
	Price       float64
	Category    *string
}

// ItemPatch is a partial update. A nil field was not supplied and is left
// unchanged.
type ItemPatch struct {
	Name        *string
	Description *string
	Quantity    *int
	Price       *float64
	Category    *string
}

// IsEmpty reports whether the patch supplies no fields.
func (p ItemPatch) IsEmpty() bool {
	return p.Name == nil &&
		p.Description == nil &&
		p.Quantity == nil &&
		p.Price == nil &&
		p.Category == nil
}

// Columns returns the supplied fields keyed by column name.
func (p ItemPatch) Columns() map[string]any {
	cols := make(map[string]any, 5)
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Quantity != nil {
		cols["quantity"] = *p.Quantity
	}
	if p.Price != nil {
		cols["price"] = *p.Price
	}
	if p.Category != nil {
		cols["category"] = *p.Category
	}
	return cols
}
