package units

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestConvertWithinFamily(t *testing.T) {
	c := NewConverter()

	cases := []struct {
		qty  string
		from Unit
		to   Unit
		want string
	}{
		{"2", UnitKilogram, UnitGram, "2000"},
		{"500", UnitGram, UnitKilogram, "0.5"},
		{"1", UnitPound, UnitGram, "453.59237"},
		{"3", UnitLiter, UnitMilliliter, "3000"},
		{"1", UnitCup, UnitMilliliter, "236.5882365"},
		{"2", UnitDozen, UnitPiece, "24"},
		{"0", UnitKilogram, UnitGram, "0"},
	}
	for _, tc := range cases {
		got, err := c.Convert(dec(tc.qty), tc.from, tc.to, Context{})
		require.NoError(t, err, "%s %s -> %s", tc.qty, tc.from, tc.to)
		assert.True(t, got.Equal(dec(tc.want)), "%s %s -> %s: got %s, want %s",
			tc.qty, tc.from, tc.to, got, tc.want)
	}
}

func TestConvertSameUnitIsIdentity(t *testing.T) {
	c := NewConverter()
	got, err := c.Convert(dec("7.125"), UnitGram, UnitGram, Context{})
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("7.125")))
}

func TestConvertMassVolumeNeedsDensity(t *testing.T) {
	c := NewConverter()
	milk := Context{Ingredient: "Whole milk", Density: dec("1.03")}

	got, err := c.Convert(dec("500"), UnitMilliliter, UnitGram, milk)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("515")))

	back, err := c.Convert(got, UnitGram, UnitMilliliter, milk)
	require.NoError(t, err)
	assert.True(t, back.Equal(dec("500")))

	_, err = c.Convert(dec("500"), UnitMilliliter, UnitGram, Context{Ingredient: "Mystery"})
	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, UnitMilliliter, convErr.From)
	assert.Equal(t, UnitGram, convErr.To)
}

func TestConvertCountThroughOverride(t *testing.T) {
	c := NewConverter()
	eggs := Context{
		Ingredient: "Eggs",
		Overrides:  map[Unit]Measure{UnitPiece: {Amount: dec("50"), Unit: UnitGram}},
	}

	got, err := c.Convert(dec("3"), UnitPiece, UnitGram, eggs)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("150")))

	back, err := c.Convert(dec("150"), UnitGram, UnitPiece, eggs)
	require.NoError(t, err)
	assert.True(t, back.Equal(dec("3")))

	// without the override there is no count<->mass path
	_, err = c.Convert(dec("3"), UnitPiece, UnitGram, Context{Ingredient: "Eggs"})
	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
}

func TestConvertOverridePlusDensity(t *testing.T) {
	// 1 pc = 50 g, density 1.03 g/ml: pieces to milliliters crosses
	// count -> mass -> volume
	c := NewConverter()
	ctx := Context{
		Ingredient: "Eggs",
		Density:    dec("1.03"),
		Overrides:  map[Unit]Measure{UnitPiece: {Amount: dec("50"), Unit: UnitGram}},
	}

	got, err := c.Convert(dec("2"), UnitPiece, UnitMilliliter, ctx)
	require.NoError(t, err)
	// 100 g / 1.03 g per ml
	want := dec("100").Div(dec("1.03"))
	assert.True(t, got.Equal(want), "got %s, want %s", got, want)
}

func TestConvertRejectsNegativeQuantity(t *testing.T) {
	c := NewConverter()
	_, err := c.Convert(dec("-1"), UnitGram, UnitKilogram, Context{})
	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Contains(t, convErr.Error(), "negative")
}

func TestConvertUnknownUnit(t *testing.T) {
	c := NewConverter()
	_, err := c.Convert(dec("1"), Unit("bushel"), UnitGram, Context{})
	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)

	_, err = c.Convert(dec("1"), UnitGram, Unit("bushel"), Context{})
	require.ErrorAs(t, err, &convErr)
}

func TestConvertKeepsFullPrecision(t *testing.T) {
	c := NewConverter()
	// 1 oz = 28.349523125 g exactly; no rounding at this layer
	got, err := c.Convert(dec("1"), UnitOunce, UnitGram, Context{})
	require.NoError(t, err)
	assert.Equal(t, "28.349523125", got.String())
}

func TestKnownAndFamilyOf(t *testing.T) {
	assert.True(t, Known(UnitGram))
	assert.False(t, Known(Unit("bushel")))
	assert.Equal(t, FamilyMass, FamilyOf(UnitPound))
	assert.Equal(t, FamilyVolume, FamilyOf(UnitGallon))
	assert.Equal(t, FamilyCount, FamilyOf(UnitDozen))
	assert.Equal(t, FamilyUnknown, FamilyOf(Unit("bushel")))
}
