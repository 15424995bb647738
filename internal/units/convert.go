package units

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Measure is a quantity expressed in a unit.
type Measure struct {
	Amount decimal.Decimal
	Unit   Unit
}

// Context carries the ingredient-specific data a conversion may need:
// density for mass<->volume and per-ingredient unit definitions for
// count units (e.g. 1 pc egg = 50 g).
type Context struct {
	Ingredient string
	Density    decimal.Decimal // grams per milliliter; zero when unknown
	Overrides  map[Unit]Measure
}

// ConversionError reports that no conversion path exists between two
// units for an ingredient, or that the input quantity was invalid.
type ConversionError struct {
	From       Unit
	To         Unit
	Ingredient string
	Reason     string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %s to %s for %q: %s", e.From, e.To, e.Ingredient, e.Reason)
}

// Converter converts quantities between measurement units. Conversions
// run at full decimal precision; rounding is the caller's concern.
type Converter struct{}

// NewConverter creates a unit converter.
func NewConverter() *Converter {
	return &Converter{}
}

// Convert returns qty expressed in the to unit. The quantity must be
// non-negative. Mass<->volume crossings require ctx.Density; count units
// cross families only through a ctx override.
func (c *Converter) Convert(qty decimal.Decimal, from, to Unit, ctx Context) (decimal.Decimal, error) {
	if qty.IsNegative() {
		return decimal.Zero, &ConversionError{from, to, ctx.Ingredient, "quantity is negative"}
	}
	if from == to {
		return qty, nil
	}

	base, family, err := c.toBase(qty, from, to, ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return c.fromBase(base, family, from, to, ctx)
}

// toBase expresses qty in the base unit of u's family. An override for u
// rewrites it into the override's unit first; overrides must resolve to
// a registered unit.
func (c *Converter) toBase(qty decimal.Decimal, u, to Unit, ctx Context) (decimal.Decimal, Family, error) {
	if ov, ok := ctx.Overrides[u]; ok {
		def, ok := unitTable[ov.Unit]
		if !ok {
			return decimal.Zero, FamilyUnknown, &ConversionError{u, to, ctx.Ingredient,
				fmt.Sprintf("override resolves to unknown unit %q", ov.Unit)}
		}
		return qty.Mul(ov.Amount).Mul(def.toBase), def.family, nil
	}
	def, ok := unitTable[u]
	if !ok {
		return decimal.Zero, FamilyUnknown, &ConversionError{u, to, ctx.Ingredient, "unknown unit"}
	}
	return qty.Mul(def.toBase), def.family, nil
}

// fromBase expresses a family-base quantity in the to unit, bridging
// families when needed.
func (c *Converter) fromBase(base decimal.Decimal, family Family, from, to Unit, ctx Context) (decimal.Decimal, error) {
	if ov, ok := ctx.Overrides[to]; ok {
		def, ok := unitTable[ov.Unit]
		if !ok {
			return decimal.Zero, &ConversionError{from, to, ctx.Ingredient,
				fmt.Sprintf("override resolves to unknown unit %q", ov.Unit)}
		}
		bridged, err := c.bridge(base, family, def.family, from, to, ctx)
		if err != nil {
			return decimal.Zero, err
		}
		per := ov.Amount.Mul(def.toBase)
		if per.Sign() <= 0 {
			return decimal.Zero, &ConversionError{from, to, ctx.Ingredient, "override amount is not positive"}
		}
		return bridged.Div(per), nil
	}

	def, ok := unitTable[to]
	if !ok {
		return decimal.Zero, &ConversionError{from, to, ctx.Ingredient, "unknown unit"}
	}
	bridged, err := c.bridge(base, family, def.family, from, to, ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return bridged.Div(def.toBase), nil
}

// bridge moves a base quantity across families. Density is grams per
// milliliter, so mass->volume divides and volume->mass multiplies.
func (c *Converter) bridge(base decimal.Decimal, from, to Family, fromUnit, toUnit Unit, ctx Context) (decimal.Decimal, error) {
	if from == to {
		return base, nil
	}
	switch {
	case from == FamilyMass && to == FamilyVolume:
		if ctx.Density.Sign() <= 0 {
			return decimal.Zero, &ConversionError{fromUnit, toUnit, ctx.Ingredient, "no density on record"}
		}
		return base.Div(ctx.Density), nil
	case from == FamilyVolume && to == FamilyMass:
		if ctx.Density.Sign() <= 0 {
			return decimal.Zero, &ConversionError{fromUnit, toUnit, ctx.Ingredient, "no density on record"}
		}
		return base.Mul(ctx.Density), nil
	default:
		return decimal.Zero, &ConversionError{fromUnit, toUnit, ctx.Ingredient,
			fmt.Sprintf("no conversion path from %s to %s", from, to)}
	}
}
