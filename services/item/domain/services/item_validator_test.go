package services

import (
	"math"
	"strings"
	"testing"

	"github.com/ghuser/stockhub/services/item/domain/models"
)

func ptr[T any](v T) *T { return &v }

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"single character", "a", false},
		{"normal name", "Widget", false},
		{"100 characters", strings.Repeat("x", 100), false},
		{"100 multibyte characters", strings.Repeat("é", 100), false},
		{"empty", "", true},
		{"101 characters", strings.Repeat("x", 101), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateName(%q) error = %v, wantErr = %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateInput(t *testing.T) {
	valid := func() models.ItemInput {
		return models.ItemInput{Name: "Widget", Quantity: 5, Price: 2.5}
	}

	tests := []struct {
		name    string
		mutate  func(*models.ItemInput)
		wantErr bool
	}{
		{"valid", func(*models.ItemInput) {}, false},
		{"price zero accepted", func(in *models.ItemInput) { in.Price = 0 }, false},
		{"quantity zero accepted", func(in *models.ItemInput) { in.Quantity = 0 }, false},
		{"quantity at int4 limit", func(in *models.ItemInput) { in.Quantity = math.MaxInt32 }, false},
		{"empty description accepted", func(in *models.ItemInput) { in.Description = ptr("") }, false},
		{"500 char description", func(in *models.ItemInput) { in.Description = ptr(strings.Repeat("d", 500)) }, false},
		{"50 char category", func(in *models.ItemInput) { in.Category = ptr(strings.Repeat("c", 50)) }, false},
		{"empty name", func(in *models.ItemInput) { in.Name = "" }, true},
		{"negative quantity", func(in *models.ItemInput) { in.Quantity = -1 }, true},
		{"quantity beyond int4", func(in *models.ItemInput) { in.Quantity = 3_000_000_000 }, true},
		{"negative price", func(in *models.ItemInput) { in.Price = -0.01 }, true},
		{"NaN price", func(in *models.ItemInput) { in.Price = math.NaN() }, true},
		{"infinite price", func(in *models.ItemInput) { in.Price = math.Inf(1) }, true},
		{"501 char description", func(in *models.ItemInput) { in.Description = ptr(strings.Repeat("d", 501)) }, true},
		{"51 char category", func(in *models.ItemInput) { in.Category = ptr(strings.Repeat("c", 51)) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(&in)
			err := ValidateInput(in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateInput() error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidatePatch(t *testing.T) {
	tests := []struct {
		name    string
		patch   models.ItemPatch
		wantErr bool
	}{
		{"empty patch passes field checks", models.ItemPatch{}, false},
		{"quantity only", models.ItemPatch{Quantity: ptr(7)}, false},
		{"price zero", models.ItemPatch{Price: ptr(0.0)}, false},
		{"negative quantity", models.ItemPatch{Quantity: ptr(-1)}, true},
		{"quantity beyond int4", models.ItemPatch{Quantity: ptr(MaxQuantity + 1)}, true},
		{"empty name", models.ItemPatch{Name: ptr("")}, true},
		{"negative price", models.ItemPatch{Price: ptr(-3.0)}, true},
		{"long category", models.ItemPatch{Category: ptr(strings.Repeat("c", 51))}, true},
		{"long description", models.ItemPatch{Description: ptr(strings.Repeat("d", 501))}, true},
		{"valid field with invalid field", models.ItemPatch{Name: ptr("ok"), Quantity: ptr(-5)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePatch(tt.patch)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidatePatch() error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}
