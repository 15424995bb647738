package models

import (
	"time"

	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"

	"bakehouse/internal/units"
)

// InventoryLot represents one physical batch of an ingredient in
// storage. A lot is created by a purchase or pantry addition and only
// ever decremented by consumption; exhausted lots stay on record for
// purchase-history and audit queries.
type InventoryLot struct {
	gorm.Model
	IngredientID uint   `gorm:"index" json:"ingredient_id"`
	VariantID    uint   `json:"variant_id"`
	LotNumber    string `gorm:"unique_index" json:"lot_number"`
	// Quantity is kept in the lot's own storage unit, which may differ
	// from the ingredient's canonical unit. Never negative.
	Quantity   decimal.Decimal `gorm:"type:decimal(20,3)" json:"quantity"`
	Unit       units.Unit      `gorm:"type:varchar(16)" json:"unit"`
	AcquiredAt time.Time       `gorm:"index" json:"acquired_at"`
	Location   string          `json:"location"`
}

// Exhausted reports whether the lot has no stock left.
func (l *InventoryLot) Exhausted() bool {
	return l.Quantity.Sign() <= 0
}

// LotLocation represents the storage location of a lot
type LotLocation string

const (
	// Storage locations
	LocationDryStorage   LotLocation = "dry_storage"
	LocationRefrigerator LotLocation = "refrigerator"
	LocationFreezer      LotLocation = "freezer"
	LocationSpiceRack    LotLocation = "spice_rack"
)
