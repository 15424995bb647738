package inventory

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bakehouse/internal/units"
)

// Engine allocates inventory lots against a requested quantity, oldest
// lot first, converting between the lot's storage unit and the
// ingredient's canonical unit as it goes.
//
// The engine runs a single linear pass over the open lots and issues
// one quantity update per lot it touches. It never commits: the caller
// supplies a transaction-scoped repository and owns commit/rollback, so
// a conversion failure mid-pass leaves no visible mutation.
type Engine struct {
	converter *units.Converter
	log       *zap.Logger
}

// NewEngine creates a consumption engine.
func NewEngine(converter *units.Converter, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{converter: converter, log: logger}
}

// Consume allocates needed (in the ingredient's canonical unit) against
// the ingredient's lots in FIFO order.
//
// Arithmetic runs at full decimal precision; only persisted lot
// quantities and returned result fields are rounded, half to even, at
// Scale fractional digits. A lot's persisted quantity is clamped at
// zero so rounding can never drive it negative.
//
// Insufficient stock is not an error: the result reports the exact
// shortfall and Satisfied=false. Hard failures (unknown ingredient,
// invalid request, no conversion path) abort the call; the caller's
// transaction boundary discards any update already issued.
func (e *Engine) Consume(resolver IngredientResolver, lots LotRepository, ingredientID uint, needed decimal.Decimal) (*ConsumptionResult, error) {
	if needed.Sign() <= 0 {
		return nil, ErrInvalidQuantity
	}

	ing, err := resolver.IngredientByID(ingredientID)
	if err != nil {
		return nil, err
	}
	target := ing.CanonicalUnit
	convCtx := ing.ConversionContext()

	open, err := lots.LotsOldestFirst(ingredientID)
	if err != nil {
		return nil, err
	}

	remaining := needed
	consumed := decimal.Zero
	breakdown := []LotConsumption{}

	for i := range open {
		if remaining.Sign() <= 0 {
			break
		}
		lot := &open[i]

		available, err := e.converter.Convert(lot.Quantity, lot.Unit, target, convCtx)
		if err != nil {
			return nil, err
		}
		take := decimal.Min(available, remaining)
		takeInLotUnit, err := e.converter.Convert(take, target, lot.Unit, convCtx)
		if err != nil {
			return nil, err
		}

		newQuantity := lot.Quantity.Sub(takeInLotUnit).RoundBank(Scale)
		if newQuantity.Sign() < 0 {
			// rounding underflow; a lot never goes negative
			newQuantity = decimal.Zero
		}
		if err := lots.UpdateLotQuantity(lot.ID, newQuantity); err != nil {
			return nil, err
		}

		breakdown = append(breakdown, LotConsumption{
			LotID:            lot.ID,
			LotNumber:        lot.LotNumber,
			QuantityConsumed: takeInLotUnit.RoundBank(Scale),
			RemainingInLot:   newQuantity,
			Unit:             lot.Unit,
			LotDate:          lot.AcquiredAt,
		})
		consumed = consumed.Add(take)
		remaining = remaining.Sub(take)

		e.log.Debug("consumed from lot",
			zap.Uint("ingredient_id", ingredientID),
			zap.Uint("lot_id", lot.ID),
			zap.String("taken", take.String()),
			zap.String("remaining_in_lot", newQuantity.String()))
	}

	shortfall := decimal.Max(decimal.Zero, remaining)
	result := &ConsumptionResult{
		IngredientID:  ingredientID,
		Unit:          target,
		ConsumedTotal: consumed.RoundBank(Scale),
		Breakdown:     breakdown,
		Shortfall:     shortfall.RoundBank(Scale),
		Satisfied:     shortfall.Sign() == 0,
	}
	return result, nil
}
