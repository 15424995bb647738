package database

import (
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"

	"bakehouse/internal/models"
	"bakehouse/internal/units"
)

// Seed creates the starter catalog on first run so a fresh install has
// something to work with. Existing data is never touched.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Ingredient{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	starter := []models.Ingredient{
		{
			Name:          "All-purpose flour",
			Category:      string(models.CategoryFlour),
			CanonicalUnit: units.UnitGram,
			Density:       decimal.RequireFromString("0.53"),
		},
		{
			Name:          "Granulated sugar",
			Category:      string(models.CategorySweetener),
			CanonicalUnit: units.UnitGram,
			Density:       decimal.RequireFromString("0.85"),
		},
		{
			Name:          "Butter",
			Category:      string(models.CategoryFat),
			CanonicalUnit: units.UnitGram,
			Density:       decimal.RequireFromString("0.911"),
		},
		{
			Name:          "Whole milk",
			Category:      string(models.CategoryDairy),
			CanonicalUnit: units.UnitMilliliter,
			Density:       decimal.RequireFromString("1.03"),
		},
		{
			Name:          "Eggs",
			Category:      string(models.CategoryDairy),
			CanonicalUnit: units.UnitPiece,
			PieceAmount:   decimal.NewFromInt(50),
			PieceUnit:     units.UnitGram,
		},
		{
			Name:          "Dry yeast",
			Category:      string(models.CategoryLeavening),
			CanonicalUnit: units.UnitGram,
		},
		{
			Name:          "Salt",
			Category:      string(models.CategoryOther),
			CanonicalUnit: units.UnitGram,
		},
	}
	for i := range starter {
		if err := db.Create(&starter[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
