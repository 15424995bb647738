package production

import (
	"context"
	"errors"
	"fmt"

	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bakehouse/internal/inventory"
	"bakehouse/internal/models"
)

// LineResult pairs one recipe line with what consuming it produced.
type LineResult struct {
	IngredientID uint                         `json:"ingredient_id"`
	Requested    decimal.Decimal              `json:"requested"`
	Result       *inventory.ConsumptionResult `json:"result"`
}

// AssemblyReport is the outcome of assembling a recipe: every line's
// consumption breakdown plus whether the whole assembly was covered by
// stock. Committed is false when the assembly was rolled back because a
// line came up short and shortfalls were not allowed.
type AssemblyReport struct {
	RecipeID  uint         `json:"recipe_id"`
	Recipe    string       `json:"recipe"`
	Batches   int          `json:"batches"`
	Lines     []LineResult `json:"lines"`
	Satisfied bool         `json:"satisfied"`
	Committed bool         `json:"committed"`
}

// Assembler turns recipes into consumption batches. All lines of one
// assembly run in a single transaction: either every line's lots are
// decremented or none are (unless the caller explicitly allows a
// partial, shortfall-reporting commit).
type Assembler struct {
	db      *gorm.DB
	service *inventory.Service
	log     *zap.Logger
}

// NewAssembler creates a recipe assembler.
func NewAssembler(db *gorm.DB, service *inventory.Service, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{db: db, service: service, log: logger}
}

// Assemble consumes the ingredients for batches of the recipe. Line
// quantities are the recipe's per-batch amounts scaled by batches, in
// each ingredient's canonical unit.
func (a *Assembler) Assemble(ctx context.Context, recipeID uint, batches int, allowShortfall bool) (*AssemblyReport, error) {
	if batches <= 0 {
		return nil, fmt.Errorf("batches must be positive, got %d", batches)
	}

	var recipe models.Recipe
	if err := a.db.Preload("Ingredients").First(&recipe, recipeID).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, fmt.Errorf("recipe %d not found", recipeID)
		}
		return nil, fmt.Errorf("loading recipe %d: %w", recipeID, err)
	}
	if len(recipe.Ingredients) == 0 {
		return nil, fmt.Errorf("recipe %q has no ingredients", recipe.Name)
	}

	scale := decimal.NewFromInt(int64(batches))
	demands := make([]inventory.Demand, 0, len(recipe.Ingredients))
	for _, line := range recipe.Ingredients {
		demands = append(demands, inventory.Demand{
			IngredientID: line.IngredientID,
			Quantity:     line.Quantity.Mul(scale),
		})
	}

	results, err := a.service.ConsumeBatch(ctx, demands, allowShortfall)
	committed := err == nil
	if err != nil && !errors.Is(err, inventory.ErrShortfall) {
		return nil, err
	}

	report := &AssemblyReport{
		RecipeID:  recipe.ID,
		Recipe:    recipe.Name,
		Batches:   batches,
		Satisfied: true,
		Committed: committed,
	}
	for i, demand := range demands {
		var res *inventory.ConsumptionResult
		if i < len(results) {
			res = results[i]
			if !res.Satisfied {
				report.Satisfied = false
			}
		}
		report.Lines = append(report.Lines, LineResult{
			IngredientID: demand.IngredientID,
			Requested:    demand.Quantity,
			Result:       res,
		})
	}

	a.log.Info("assembly finished",
		zap.String("recipe", recipe.Name),
		zap.Int("batches", batches),
		zap.Bool("satisfied", report.Satisfied),
		zap.Bool("committed", report.Committed))
	return report, nil
}
