package models

import (
	"time"

	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"

	"bakehouse/internal/units"
)

// Purchase represents one acquisition of stock. Recording a purchase
// creates the inventory lot it paid for; the price and supplier stay
// behind for the price-history views.
type Purchase struct {
	gorm.Model
	IngredientID uint            `gorm:"index" json:"ingredient_id"`
	VariantID    uint            `json:"variant_id"`
	LotID        uint            `json:"lot_id"`
	Quantity     decimal.Decimal `gorm:"type:decimal(20,3)" json:"quantity"`
	Unit         units.Unit      `gorm:"type:varchar(16)" json:"unit"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(12,4)" json:"unit_price"`
	Currency     string          `gorm:"type:varchar(8)" json:"currency"`
	Supplier     string          `json:"supplier"`
	PurchasedAt  time.Time       `json:"purchased_at"`
}
