// Package services contains stateless domain services for the item bounded context.
// Domain services enforce business rules that operate purely on domain types
// and have zero external dependencies beyond stdlib and the domain layer.
package services

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/ghuser/stockhub/services/item/domain/models"
)

// Field bounds for an Item. Lengths are counted in characters, not bytes.
const (
	MaxNameLength        = 100
	MaxDescriptionLength = 500
	MaxCategoryLength    = 50

	// MaxQuantity is the largest value the INTEGER quantity column holds.
	MaxQuantity = math.MaxInt32
)

// ValidateName enforces 1 <= len(name) <= MaxNameLength.
func ValidateName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < 1 {
		return fmt.Errorf("name must not be empty")
	}
	if n > MaxNameLength {
		return fmt.Errorf("name must not exceed %d characters", MaxNameLength)
	}
	return nil
}

// ValidateDescription enforces len(description) <= MaxDescriptionLength.
func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return fmt.Errorf("description must not exceed %d characters", MaxDescriptionLength)
	}
	return nil
}

// ValidateCategory enforces len(category) <= MaxCategoryLength.
func ValidateCategory(category string) error {
	if utf8.RuneCountInString(category) > MaxCategoryLength {
		return fmt.Errorf("category must not exceed %d characters", MaxCategoryLength)
	}
	return nil
}

// ValidateQuantity enforces 0 <= quantity <= MaxQuantity.
func ValidateQuantity(quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("quantity must be greater than or equal to 0")
	}
	if quantity > MaxQuantity {
		return fmt.Errorf("quantity must be less than or equal to %d", MaxQuantity)
	}
	return nil
}

// ValidatePrice rejects negative and non-finite prices.
func ValidatePrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return fmt.Errorf("price must be a finite number")
	}
	if price < 0 {
		return fmt.Errorf("price must be greater than or equal to 0")
	}
	return nil
}

// ValidateInput checks every field of a new item.
func ValidateInput(in models.ItemInput) error {
	if err := ValidateName(in.Name); err != nil {
		return err
	}
	if in.Description != nil {
		if err := ValidateDescription(*in.Description); err != nil {
			return err
		}
	}
	if err := ValidateQuantity(in.Quantity); err != nil {
		return err
	}
	if err := ValidatePrice(in.Price); err != nil {
		return err
	}
	if in.Category != nil {
		if err := ValidateCategory(*in.Category); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePatch applies the creation constraints to each supplied field of p.
// Fields that are not supplied are not checked.
func ValidatePatch(p models.ItemPatch) error {
	if p.Name != nil {
		if err := ValidateName(*p.Name); err != nil {
			return err
		}
	}
	if p.Description != nil {
		if err := ValidateDescription(*p.Description); err != nil {
			return err
		}
	}
	if p.Quantity != nil {
		if err := ValidateQuantity(*p.Quantity); err != nil {
			return err
		}
	}
	if p.Price != nil {
		if err := ValidatePrice(*p.Price); err != nil {
			return err
		}
	}
	if p.Category != nil {
		if err := ValidateCategory(*p.Category); err != nil {
			return err
		}
	}
	return nil
}
