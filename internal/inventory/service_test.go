package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bakehouse/internal/database"
	"bakehouse/internal/models"
	"bakehouse/internal/units"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()
	return NewService(db, NewEngine(units.NewConverter(), nil), nil, nil, nil)
}

func createIngredient(t *testing.T, db *gorm.DB, ing models.Ingredient) uint {
	t.Helper()
	require.NoError(t, db.Create(&ing).Error)
	return ing.ID
}

func createLot(t *testing.T, db *gorm.DB, lot models.InventoryLot) uint {
	t.Helper()
	if lot.LotNumber == "" {
		lot.LotNumber = uuid.New().String()
	}
	require.NoError(t, db.Create(&lot).Error)
	return lot.ID
}

func lotQuantity(t *testing.T, db *gorm.DB, lotID uint) decimal.Decimal {
	t.Helper()
	var lot models.InventoryLot
	require.NoError(t, db.First(&lot, lotID).Error)
	return lot.Quantity
}

func TestServiceConsumeCommits(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	flour := createIngredient(t, db, models.Ingredient{
		Name: "Flour", CanonicalUnit: units.UnitGram,
	})
	lot1 := createLot(t, db, models.InventoryLot{
		IngredientID: flour, Quantity: dec("10"), Unit: units.UnitGram, AcquiredAt: day(1),
	})
	lot2 := createLot(t, db, models.InventoryLot{
		IngredientID: flour, Quantity: dec("15"), Unit: units.UnitGram, AcquiredAt: day(5),
	})

	res, err := svc.Consume(context.Background(), flour, dec("12"))
	require.NoError(t, err)
	require.True(t, res.Satisfied)

	assert.Equal(t, "0", lotQuantity(t, db, lot1).String())
	assert.Equal(t, "13", lotQuantity(t, db, lot2).String())
}

func TestServiceConsumeRollsBackOnConversionError(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	// no density: the second lot's grams cannot reach milliliters, and
	// the first lot's depletion must not survive the rollback
	vanilla := createIngredient(t, db, models.Ingredient{
		Name: "Vanilla extract", CanonicalUnit: units.UnitMilliliter,
	})
	lot1 := createLot(t, db, models.InventoryLot{
		IngredientID: vanilla, Quantity: dec("5"), Unit: units.UnitMilliliter, AcquiredAt: day(1),
	})
	createLot(t, db, models.InventoryLot{
		IngredientID: vanilla, Quantity: dec("100"), Unit: units.UnitGram, AcquiredAt: day(2),
	})

	_, err := svc.Consume(context.Background(), vanilla, dec("10"))

	var convErr *units.ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "5", lotQuantity(t, db, lot1).String(), "rollback must undo the first lot's depletion")
}

func TestServiceConsumeCancelledContext(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	flour := createIngredient(t, db, models.Ingredient{
		Name: "Flour", CanonicalUnit: units.UnitGram,
	})
	lot := createLot(t, db, models.InventoryLot{
		IngredientID: flour, Quantity: dec("10"), Unit: units.UnitGram, AcquiredAt: day(1),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Consume(ctx, flour, dec("5"))
	require.Error(t, err)
	assert.Equal(t, "10", lotQuantity(t, db, lot).String())
}

func TestServiceConsumeSerializesPerIngredient(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	flour := createIngredient(t, db, models.Ingredient{
		Name: "Flour", CanonicalUnit: units.UnitGram,
	})
	lot := createLot(t, db, models.InventoryLot{
		IngredientID: flour, Quantity: dec("100"), Unit: units.UnitGram, AcquiredAt: day(1),
	})

	const workers = 4
	var wg sync.WaitGroup
	results := make([]*ConsumptionResult, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.Consume(context.Background(), flour, dec("10"))
		}(i)
	}
	wg.Wait()

	total := decimal.Zero
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		require.True(t, results[i].Satisfied)
		total = total.Add(results[i].ConsumedTotal)
	}
	assert.Equal(t, "40", total.String())
	assert.Equal(t, "60", lotQuantity(t, db, lot).String(), "no lost updates between concurrent calls")
}

func TestServiceConsumeBatchAllOrNothing(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	flour := createIngredient(t, db, models.Ingredient{
		Name: "Flour", CanonicalUnit: units.UnitGram,
	})
	yeast := createIngredient(t, db, models.Ingredient{
		Name: "Dry yeast", CanonicalUnit: units.UnitGram,
	})
	flourLot := createLot(t, db, models.InventoryLot{
		IngredientID: flour, Quantity: dec("100"), Unit: units.UnitGram, AcquiredAt: day(1),
	})
	yeastLot := createLot(t, db, models.InventoryLot{
		IngredientID: yeast, Quantity: dec("5"), Unit: units.UnitGram, AcquiredAt: day(1),
	})

	demands := []Demand{
		{IngredientID: flour, Quantity: dec("50")},
		{IngredientID: yeast, Quantity: dec("10")},
	}

	results, err := svc.ConsumeBatch(context.Background(), demands, false)
	require.ErrorIs(t, err, ErrShortfall)
	require.Len(t, results, 2)
	assert.False(t, results[1].Satisfied)
	assert.Equal(t, "5", results[1].Shortfall.String())

	// nothing committed
	assert.Equal(t, "100", lotQuantity(t, db, flourLot).String())
	assert.Equal(t, "5", lotQuantity(t, db, yeastLot).String())

	// with shortfall allowed the same batch commits what it can
	results, err = svc.ConsumeBatch(context.Background(), demands, true)
	require.NoError(t, err)
	assert.True(t, results[0].Satisfied)
	assert.False(t, results[1].Satisfied)
	assert.Equal(t, "50", lotQuantity(t, db, flourLot).String())
	assert.Equal(t, "0", lotQuantity(t, db, yeastLot).String())
}

func TestServiceRecordPurchaseCreatesLot(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	butter := createIngredient(t, db, models.Ingredient{
		Name: "Butter", CanonicalUnit: units.UnitGram,
	})

	purchase := &models.Purchase{
		IngredientID: butter,
		Quantity:     dec("500"),
		Unit:         units.UnitGram,
		UnitPrice:    dec("0.012"),
		Currency:     "EUR",
		Supplier:     "Dairy Co",
	}
	lot, err := svc.RecordPurchase(context.Background(), purchase)
	require.NoError(t, err)

	assert.NotEmpty(t, lot.LotNumber)
	assert.Equal(t, lot.ID, purchase.LotID)
	assert.Equal(t, "500", lotQuantity(t, db, lot.ID).String())

	var count int64
	require.NoError(t, db.Model(&models.Purchase{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestServiceRecordPurchaseUnknownIngredient(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	_, err := svc.RecordPurchase(context.Background(), &models.Purchase{
		IngredientID: 42, Quantity: dec("1"), Unit: units.UnitGram,
	})

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)

	var count int64
	require.NoError(t, db.Model(&models.InventoryLot{}).Count(&count).Error)
	assert.Equal(t, int64(0), count, "no lot may survive the rollback")
}

func TestServiceLotsFiltersExhausted(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db)

	flour := createIngredient(t, db, models.Ingredient{
		Name: "Flour", CanonicalUnit: units.UnitGram,
	})
	createLot(t, db, models.InventoryLot{
		IngredientID: flour, Quantity: dec("0"), Unit: units.UnitGram, AcquiredAt: day(1),
	})
	createLot(t, db, models.InventoryLot{
		IngredientID: flour, Quantity: dec("20"), Unit: units.UnitGram, AcquiredAt: day(2),
	})

	open, err := svc.Lots(flour, false)
	require.NoError(t, err)
	assert.Len(t, open, 1)

	all, err := svc.Lots(flour, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
