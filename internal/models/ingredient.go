package models

import (
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"

	"bakehouse/internal/units"
)

// Ingredient represents one entry in the bakery's ingredient catalog.
// Recipes and consumption requests are expressed in the ingredient's
// canonical unit; individual lots may be stored in any convertible unit.
type Ingredient struct {
	gorm.Model
	Name          string     `gorm:"unique_index" json:"name"`
	Category      string     `json:"category"`
	CanonicalUnit units.Unit `gorm:"type:varchar(16)" json:"canonical_unit"`
	// Density is grams per milliliter; zero means unknown, which makes
	// mass<->volume conversion unavailable for this ingredient.
	Density decimal.Decimal `gorm:"type:decimal(12,6)" json:"density"`
	// PieceAmount/PieceUnit define what one piece of this ingredient
	// weighs or measures (e.g. 1 pc egg = 50 g). Zero amount means no
	// piece definition.
	PieceAmount decimal.Decimal `gorm:"type:decimal(12,3)" json:"piece_amount"`
	PieceUnit   units.Unit      `gorm:"type:varchar(16)" json:"piece_unit"`
	Notes       string          `json:"notes"`

	Variants []IngredientVariant `json:"variants,omitempty"`
}

// ConversionContext builds the unit-conversion context for this
// ingredient.
func (i *Ingredient) ConversionContext() units.Context {
	ctx := units.Context{
		Ingredient: i.Name,
		Density:    i.Density,
	}
	if i.PieceAmount.Sign() > 0 && i.PieceUnit != "" {
		ctx.Overrides = map[units.Unit]units.Measure{
			units.UnitPiece: {Amount: i.PieceAmount, Unit: i.PieceUnit},
		}
	}
	return ctx
}

// IngredientVariant represents a purchasable form of an ingredient
// (brand, package size). Purchases and lots reference the variant they
// came from.
type IngredientVariant struct {
	gorm.Model
	IngredientID uint            `gorm:"index" json:"ingredient_id"`
	Brand        string          `json:"brand"`
	PackageSize  decimal.Decimal `gorm:"type:decimal(12,3)" json:"package_size"`
	PackageUnit  units.Unit      `gorm:"type:varchar(16)" json:"package_unit"`
}

// IngredientCategory represents the category of a catalog ingredient
type IngredientCategory string

const (
	// Ingredient categories
	CategoryFlour      IngredientCategory = "flour"
	CategorySweetener  IngredientCategory = "sweetener"
	CategoryDairy      IngredientCategory = "dairy"
	CategoryFat        IngredientCategory = "fat"
	CategoryLeavening  IngredientCategory = "leavening"
	CategorySpices     IngredientCategory = "spices"
	CategoryNutsFruits IngredientCategory = "nuts_fruits"
	CategoryChocolate  IngredientCategory = "chocolate"
	CategoryOther      IngredientCategory = "other"
)
