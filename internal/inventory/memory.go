package inventory

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"bakehouse/internal/models"
)

// MemoryStore is an in-memory LotRepository and IngredientResolver used
// by tests and by callers that want to dry-run a consumption against a
// snapshot without touching the database.
type MemoryStore struct {
	ingredients map[uint]models.Ingredient
	lots        []models.InventoryLot
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ingredients: make(map[uint]models.Ingredient)}
}

var _ LotRepository = (*MemoryStore)(nil)
var _ IngredientResolver = (*MemoryStore)(nil)

// AddIngredient registers an ingredient in the store.
func (s *MemoryStore) AddIngredient(ing models.Ingredient) {
	s.ingredients[ing.ID] = ing
}

// AddLot registers a lot in the store.
func (s *MemoryStore) AddLot(lot models.InventoryLot) {
	s.lots = append(s.lots, lot)
}

// IngredientByID resolves an ingredient id.
func (s *MemoryStore) IngredientByID(id uint) (*models.Ingredient, error) {
	ing, ok := s.ingredients[id]
	if !ok {
		return nil, &NotFoundError{IngredientID: id}
	}
	return &ing, nil
}

// LotsOldestFirst returns open lots ascending by acquisition date, ties
// broken by lot id.
func (s *MemoryStore) LotsOldestFirst(ingredientID uint) ([]models.InventoryLot, error) {
	var open []models.InventoryLot
	for _, lot := range s.lots {
		if lot.IngredientID == ingredientID && lot.Quantity.Sign() > 0 {
			open = append(open, lot)
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		if !open[i].AcquiredAt.Equal(open[j].AcquiredAt) {
			return open[i].AcquiredAt.Before(open[j].AcquiredAt)
		}
		return open[i].ID < open[j].ID
	})
	return open, nil
}

// UpdateLotQuantity persists a new quantity for one lot.
func (s *MemoryStore) UpdateLotQuantity(lotID uint, quantity decimal.Decimal) error {
	for i := range s.lots {
		if s.lots[i].ID == lotID {
			s.lots[i].Quantity = quantity
			return nil
		}
	}
	return fmt.Errorf("updating lot %d: no such lot", lotID)
}

// Lot returns a copy of the stored lot with the given id.
func (s *MemoryStore) Lot(lotID uint) (models.InventoryLot, bool) {
	for _, lot := range s.lots {
		if lot.ID == lotID {
			return lot, true
		}
	}
	return models.InventoryLot{}, false
}
