package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bakehouse/internal/models"
	"bakehouse/internal/monitoring"
	"bakehouse/internal/stream"
)

// ErrShortfall aborts a batch consumption that was asked to be
// all-or-nothing; the transaction is rolled back and no lot changes.
var ErrShortfall = errors.New("insufficient stock for batch consumption")

// Demand is one line of a batch consumption request, in the
// ingredient's canonical unit.
type Demand struct {
	IngredientID uint            `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
}

// Service owns the transaction boundary around the consumption engine:
// it serializes calls per ingredient, opens one database transaction
// per call, hands the engine a transaction-scoped store and commits or
// rolls back. The engine itself never commits.
type Service struct {
	db      *gorm.DB
	engine  *Engine
	locks   *ingredientLocks
	metrics *monitoring.Metrics
	events  *stream.Hub
	log     *zap.Logger
}

// NewService creates the inventory service. metrics and events may be
// nil.
func NewService(db *gorm.DB, engine *Engine, metrics *monitoring.Metrics, events *stream.Hub, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:      db,
		engine:  engine,
		locks:   newIngredientLocks(),
		metrics: metrics,
		events:  events,
		log:     logger,
	}
}

// Consume allocates needed (canonical unit) against the ingredient's
// lots, oldest first, inside one transaction. Cancelling ctx before
// commit rolls the whole call back.
func (s *Service) Consume(ctx context.Context, ingredientID uint, needed decimal.Decimal) (*ConsumptionResult, error) {
	start := time.Now()

	mu := s.locks.acquire(ingredientID)
	defer mu.Unlock()

	var result *ConsumptionResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		store := NewGormStore(tx)
		res, err := s.engine.Consume(store, store, ingredientID, needed)
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		s.metrics.ObserveConsume(monitoring.OutcomeError, time.Since(start))
		return nil, err
	}

	s.afterConsume(result, time.Since(start))
	return result, nil
}

// ConsumeBatch runs several consumptions inside one transaction, e.g.
// every line of a recipe. With allowShortfall false any unsatisfied
// line rolls the whole batch back and the call returns ErrShortfall
// together with the per-line results, so the caller can report exactly
// what was missing.
func (s *Service) ConsumeBatch(ctx context.Context, demands []Demand, allowShortfall bool) ([]*ConsumptionResult, error) {
	if len(demands) == 0 {
		return nil, ErrInvalidQuantity
	}
	start := time.Now()

	// Lock every ingredient involved, in id order, so two overlapping
	// batches cannot deadlock.
	ids := make([]uint, 0, len(demands))
	seen := make(map[uint]bool, len(demands))
	for _, d := range demands {
		if !seen[d.IngredientID] {
			seen[d.IngredientID] = true
			ids = append(ids, d.IngredientID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		mu := s.locks.acquire(id)
		defer mu.Unlock()
	}

	var results []*ConsumptionResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		store := NewGormStore(tx)
		results = results[:0]
		short := false
		for _, d := range demands {
			res, err := s.engine.Consume(store, store, d.IngredientID, d.Quantity)
			if err != nil {
				return err
			}
			results = append(results, res)
			if !res.Satisfied {
				short = true
			}
		}
		if short && !allowShortfall {
			return ErrShortfall
		}
		return ctx.Err()
	})
	if err != nil {
		if errors.Is(err, ErrShortfall) {
			// rolled back; results still describe the attempt
			s.metrics.ObserveConsume(monitoring.OutcomeShort, time.Since(start))
			return results, err
		}
		s.metrics.ObserveConsume(monitoring.OutcomeError, time.Since(start))
		return nil, err
	}

	for _, res := range results {
		s.afterConsume(res, time.Since(start))
	}
	return results, nil
}

// RecordPurchase stores a purchase and creates the lot it paid for in
// one transaction. The purchase quantity and unit become the lot's
// opening stock.
func (s *Service) RecordPurchase(ctx context.Context, purchase *models.Purchase) (*models.InventoryLot, error) {
	if purchase.Quantity.Sign() <= 0 {
		return nil, ErrInvalidQuantity
	}
	if purchase.PurchasedAt.IsZero() {
		purchase.PurchasedAt = time.Now()
	}

	lot := &models.InventoryLot{
		IngredientID: purchase.IngredientID,
		VariantID:    purchase.VariantID,
		LotNumber:    uuid.New().String(),
		Quantity:     purchase.Quantity.RoundBank(Scale),
		Unit:         purchase.Unit,
		AcquiredAt:   purchase.PurchasedAt,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.ensureIngredient(tx, purchase.IngredientID); err != nil {
			return err
		}
		if err := tx.Create(lot).Error; err != nil {
			return fmt.Errorf("creating lot: %w", err)
		}
		purchase.LotID = lot.ID
		if err := tx.Create(purchase).Error; err != nil {
			return fmt.Errorf("creating purchase: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncLotsCreated()
	s.events.Publish(stream.Event{
		Type:         stream.EventLotCreated,
		IngredientID: lot.IngredientID,
		LotNumber:    lot.LotNumber,
		Quantity:     lot.Quantity.String(),
		Unit:         string(lot.Unit),
	})
	return lot, nil
}

// AddLot records a pantry addition: stock that enters inventory without
// a purchase behind it (gifts, opening balances, corrections upward).
func (s *Service) AddLot(ctx context.Context, lot *models.InventoryLot) error {
	if lot.Quantity.Sign() <= 0 {
		return ErrInvalidQuantity
	}
	if lot.LotNumber == "" {
		lot.LotNumber = uuid.New().String()
	}
	if lot.AcquiredAt.IsZero() {
		lot.AcquiredAt = time.Now()
	}
	lot.Quantity = lot.Quantity.RoundBank(Scale)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.ensureIngredient(tx, lot.IngredientID); err != nil {
			return err
		}
		if err := tx.Create(lot).Error; err != nil {
			return fmt.Errorf("creating lot: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.IncLotsCreated()
	s.events.Publish(stream.Event{
		Type:         stream.EventLotCreated,
		IngredientID: lot.IngredientID,
		LotNumber:    lot.LotNumber,
		Quantity:     lot.Quantity.String(),
		Unit:         string(lot.Unit),
	})
	return nil
}

// Lots lists an ingredient's lots oldest first. Exhausted lots are
// included when withExhausted is set; consumption never deletes a lot,
// so the full history stays queryable.
func (s *Service) Lots(ingredientID uint, withExhausted bool) ([]models.InventoryLot, error) {
	query := s.db.Where("ingredient_id = ?", ingredientID)
	if !withExhausted {
		query = query.Where("quantity > 0")
	}
	var lots []models.InventoryLot
	if err := query.Order("acquired_at ASC, id ASC").Find(&lots).Error; err != nil {
		return nil, fmt.Errorf("listing lots for ingredient %d: %w", ingredientID, err)
	}
	return lots, nil
}

func (s *Service) ensureIngredient(tx *gorm.DB, ingredientID uint) error {
	var count int64
	if err := tx.Model(&models.Ingredient{}).Where("id = ?", ingredientID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return &NotFoundError{IngredientID: ingredientID}
	}
	return nil
}

func (s *Service) afterConsume(res *ConsumptionResult, elapsed time.Duration) {
	outcome := monitoring.OutcomeSatisfied
	if !res.Satisfied {
		outcome = monitoring.OutcomeShort
	}
	s.metrics.ObserveConsume(outcome, elapsed)

	depleted := 0
	for _, entry := range res.Breakdown {
		if entry.RemainingInLot.Sign() == 0 {
			depleted++
		}
		s.events.Publish(stream.Event{
			Type:         stream.EventLotConsumed,
			IngredientID: res.IngredientID,
			LotNumber:    entry.LotNumber,
			Quantity:     entry.QuantityConsumed.String(),
			Unit:         string(entry.Unit),
		})
	}
	s.metrics.AddDepletedLots(depleted)

	if !res.Satisfied {
		s.events.Publish(stream.Event{
			Type:         stream.EventShortfall,
			IngredientID: res.IngredientID,
			Quantity:     res.Shortfall.String(),
			Unit:         string(res.Unit),
		})
	}

	s.log.Info("consumption complete",
		zap.Uint("ingredient_id", res.IngredientID),
		zap.String("consumed", res.ConsumedTotal.String()),
		zap.String("shortfall", res.Shortfall.String()),
		zap.Int("lots_touched", len(res.Breakdown)))
}
