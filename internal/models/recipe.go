package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

// StringSlice represents a slice of strings that can be stored in the database
type StringSlice []string

// Value converts the slice to a JSON string for storage
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	return json.Marshal(s)
}

// Scan converts the database value back to a slice
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return errors.New("unsupported type for StringSlice")
	}
}

// Recipe represents one finished good the bakery assembles, with its
// bill of ingredients in canonical units.
type Recipe struct {
	gorm.Model
	Name        string      `gorm:"unique_index" json:"name"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Yield       int         `json:"yield"` // finished pieces per batch
	Tags        StringSlice `gorm:"type:text" json:"tags"`

	Ingredients []RecipeIngredient `json:"ingredients"`
}

// RecipeIngredient is one line of a recipe's bill of ingredients. The
// quantity is per single batch, in the ingredient's canonical unit.
type RecipeIngredient struct {
	gorm.Model
	RecipeID     uint            `gorm:"index" json:"recipe_id"`
	IngredientID uint            `json:"ingredient_id"`
	Quantity     decimal.Decimal `gorm:"type:decimal(20,3)" json:"quantity"`
	Note         string          `json:"note"`
}
