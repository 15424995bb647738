package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"bakehouse/internal/units"
)

// Scale is the number of fractional digits kept on persisted lot
// quantities and on returned result fields. Intermediate arithmetic is
// not rounded; boundary values are rounded half to even so repeated
// operations carry no systematic bias.
const Scale = 3

// LotConsumption records what one consume call took from a single lot.
// Quantities are in the lot's native storage unit.
type LotConsumption struct {
	LotID            uint            `json:"lot_id"`
	LotNumber        string          `json:"lot_number"`
	QuantityConsumed decimal.Decimal `json:"quantity_consumed"`
	RemainingInLot   decimal.Decimal `json:"remaining_in_lot"`
	Unit             units.Unit      `json:"unit"`
	LotDate          time.Time       `json:"lot_date"`
}

// ConsumptionResult is the outcome of one consume call. ConsumedTotal
// and Shortfall are in the ingredient's canonical unit; the breakdown
// lists lots in the order they were depleted, oldest first.
//
// A positive shortfall is a normal result, not an error: it means the
// request outran the available stock and says by exactly how much.
type ConsumptionResult struct {
	IngredientID  uint             `json:"ingredient_id"`
	Unit          units.Unit       `json:"unit"`
	ConsumedTotal decimal.Decimal  `json:"consumed_total"`
	Breakdown     []LotConsumption `json:"breakdown"`
	Shortfall     decimal.Decimal  `json:"shortfall"`
	Satisfied     bool             `json:"satisfied"`
}
