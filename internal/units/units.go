package units

import "github.com/shopspring/decimal"

// Unit identifies a measurement unit used for ingredient quantities.
type Unit string

const (
	// Weight units
	UnitGram      Unit = "g"
	UnitKilogram  Unit = "kg"
	UnitMilligram Unit = "mg"
	UnitOunce     Unit = "oz"
	UnitPound     Unit = "lb"

	// Volume units
	UnitMilliliter Unit = "ml"
	UnitLiter      Unit = "l"
	UnitTeaspoon   Unit = "tsp"
	UnitTablespoon Unit = "tbsp"
	UnitCup        Unit = "cup"
	UnitFluidOunce Unit = "fl_oz"
	UnitGallon     Unit = "gal"

	// Count units
	UnitPiece Unit = "pc"
	UnitDozen Unit = "dozen"
)

// Family groups units that convert between each other with a fixed factor.
// Crossing from mass to volume (or back) additionally needs the
// ingredient's density; count units only cross over through an
// ingredient-specific override such as "1 pc = 50 g".
type Family int

const (
	FamilyUnknown Family = iota
	FamilyMass
	FamilyVolume
	FamilyCount
)

// String method for Family enum
func (f Family) String() string {
	switch f {
	case FamilyMass:
		return "mass"
	case FamilyVolume:
		return "volume"
	case FamilyCount:
		return "count"
	default:
		return "unknown"
	}
}

type unitDef struct {
	family Family
	toBase decimal.Decimal // factor to the family base unit (g, ml or pc)
}

// Base units per family: gram, milliliter, piece. US customary factors
// follow NIST definitions so repeated conversions stay exact.
var unitTable = map[Unit]unitDef{
	UnitGram:      {FamilyMass, decimal.NewFromInt(1)},
	UnitKilogram:  {FamilyMass, decimal.NewFromInt(1000)},
	UnitMilligram: {FamilyMass, decimal.RequireFromString("0.001")},
	UnitOunce:     {FamilyMass, decimal.RequireFromString("28.349523125")},
	UnitPound:     {FamilyMass, decimal.RequireFromString("453.59237")},

	UnitMilliliter: {FamilyVolume, decimal.NewFromInt(1)},
	UnitLiter:      {FamilyVolume, decimal.NewFromInt(1000)},
	UnitTeaspoon:   {FamilyVolume, decimal.RequireFromString("4.92892159375")},
	UnitTablespoon: {FamilyVolume, decimal.RequireFromString("14.78676478125")},
	UnitCup:        {FamilyVolume, decimal.RequireFromString("236.5882365")},
	UnitFluidOunce: {FamilyVolume, decimal.RequireFromString("29.5735295625")},
	UnitGallon:     {FamilyVolume, decimal.RequireFromString("3785.411784")},

	UnitPiece: {FamilyCount, decimal.NewFromInt(1)},
	UnitDozen: {FamilyCount, decimal.NewFromInt(12)},
}

// Known reports whether u is a registered unit identifier.
func Known(u Unit) bool {
	_, ok := unitTable[u]
	return ok
}

// FamilyOf returns the family a registered unit belongs to.
func FamilyOf(u Unit) Family {
	if def, ok := unitTable[u]; ok {
		return def.family
	}
	return FamilyUnknown
}

// All returns every registered unit identifier.
func All() []Unit {
	out := make([]Unit, 0, len(unitTable))
	for u := range unitTable {
		out = append(out, u)
	}
	return out
}
