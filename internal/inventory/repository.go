package inventory

import (
	"fmt"

	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"

	"bakehouse/internal/models"
)

// LotRepository is the engine's view of lot storage. Implementations
// handed to the engine must be scoped to the caller's transaction:
// every read and every write of one consume call belongs to the same
// atomic unit, and rolling that unit back leaves no visible mutation.
type LotRepository interface {
	// LotsOldestFirst returns the ingredient's lots with quantity > 0,
	// ascending by acquisition date. Ties on the date are broken by
	// ascending lot id so the order is fully deterministic.
	LotsOldestFirst(ingredientID uint) ([]models.InventoryLot, error)
	// UpdateLotQuantity persists a new quantity for one lot.
	UpdateLotQuantity(lotID uint, quantity decimal.Decimal) error
}

// IngredientResolver resolves ingredient ids against the catalog.
type IngredientResolver interface {
	IngredientByID(id uint) (*models.Ingredient, error)
}

// GormStore implements LotRepository and IngredientResolver over a GORM
// handle. Pass the handle of an open transaction to scope all reads and
// writes to it.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store bound to db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var _ LotRepository = (*GormStore)(nil)
var _ IngredientResolver = (*GormStore)(nil)

// IngredientByID loads an ingredient from the catalog.
func (s *GormStore) IngredientByID(id uint) (*models.Ingredient, error) {
	var ing models.Ingredient
	if err := s.db.First(&ing, id).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, &NotFoundError{IngredientID: id}
		}
		return nil, fmt.Errorf("loading ingredient %d: %w", id, err)
	}
	return &ing, nil
}

// LotsOldestFirst returns the ingredient's open lots in FIFO order.
func (s *GormStore) LotsOldestFirst(ingredientID uint) ([]models.InventoryLot, error) {
	var lots []models.InventoryLot
	err := s.db.
		Where("ingredient_id = ? AND quantity > 0", ingredientID).
		Order("acquired_at ASC, id ASC").
		Find(&lots).Error
	if err != nil {
		return nil, fmt.Errorf("loading lots for ingredient %d: %w", ingredientID, err)
	}
	return lots, nil
}

// UpdateLotQuantity persists a new quantity for one lot.
func (s *GormStore) UpdateLotQuantity(lotID uint, quantity decimal.Decimal) error {
	res := s.db.Model(&models.InventoryLot{}).Where("id = ?", lotID).Update("quantity", quantity)
	if res.Error != nil {
		return fmt.Errorf("updating lot %d: %w", lotID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("updating lot %d: no such lot", lotID)
	}
	return nil
}
