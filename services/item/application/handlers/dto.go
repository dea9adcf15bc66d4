package handlers

import (
	"time"

	"github.com/ghuser/stockhub/services/item/domain/models"
)

// CreateItemRequest is the request body for POST /api/items.
type CreateItemRequest struct {
	Name        string   `json:"name"        validate:"required,min=1,max=100"        example:"Widget"`
	Description *string  `json:"description" validate:"omitnil,max=500"               example:"Blue, 10cm"`
	Quantity    *int     `json:"quantity"    validate:"required,min=0,max=2147483647" example:"10"`
	Price       *float64 `json:"price"       validate:"required,min=0"                example:"2.5"`
	Category    *string  `json:"category"    validate:"omitnil,max=50"                example:"tools"`
} // @name CreateItemRequest

func (r CreateItemRequest) toInput() models.ItemInput {
	in := models.ItemInput{
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
	}
	if r.Quantity != nil {
		in.Quantity = *r.Quantity
	}
	if r.Price != nil {
		in.Price = *r.Price
	}
	return in
}

// UpdateItemRequest is the request body for PUT /api/items/{id}. Omitted or
// null fields are left unchanged.
type UpdateItemRequest struct {
	Name        *string  `json:"name"        validate:"omitnil,min=1,max=100"        example:"Widget"`
	Description *string  `json:"description" validate:"omitnil,max=500"              example:"Blue, 10cm"`
	Quantity    *int     `json:"quantity"    validate:"omitnil,min=0,max=2147483647" example:"3"`
	Price       *float64 `json:"price"       validate:"omitnil,min=0"                example:"2.5"`
	Category    *string  `json:"category"    validate:"omitnil,max=50"               example:"tools"`
} // @name UpdateItemRequest

func (r UpdateItemRequest) toPatch() models.ItemPatch {
	return models.ItemPatch{
		Name:        r.Name,
		Description: r.Description,
		Quantity:    r.Quantity,
		Price:       r.Price,
		Category:    r.Category,
	}
}

// ItemResponse is the JSON representation of an item.
type ItemResponse struct {
	ID          int64     `json:"id"          example:"1"`
	OwnerID     string    `json:"owner_id"    example:"8d0f6c1e-3b7a-4c55-9a43-2f1b8e6d7c90"`
	Name        string    `json:"name"        example:"Widget"`
	Description *string   `json:"description" example:"Blue, 10cm"`
	Quantity    int       `json:"quantity"    example:"10"`
	Price       float64   `json:"price"       example:"2.5"`
	Category    *string   `json:"category"    example:"tools"`
	CreatedAt   time.Time `json:"created_at"  example:"2024-01-15T10:30:00Z"`
	UpdatedAt   time.Time `json:"updated_at"  example:"2024-01-15T10:30:00Z"`
} // @name ItemResponse

func toResponse(item *models.Item) ItemResponse {
	return ItemResponse{
		ID:          item.ID,
		OwnerID:     item.OwnerID,
		Name:        item.Name,
		Description: item.Description,
		Quantity:    item.Quantity,
		Price:       item.Price,
		Category:    item.Category,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}
