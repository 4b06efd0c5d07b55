package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockStatus_Admits(t *testing.T) {
	cases := []struct {
		status StockStatus
		stock  int
		want   bool
	}{
		{StockAll, 0, true},
		{StockIn, 1, true},
		{StockIn, 0, false},
		{StockOut, 0, true},
		{StockOut, -2, true},
		{StockOut, 3, false},
		{StockLow, 0, false},
		{StockLow, 1, true},
		{StockLow, 10, true},
		{StockLow, 11, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.status.Admits(tc.stock), "%s stock=%d", tc.status, tc.stock)
	}
}

func TestFilterPredicateSet_ZeroValue(t *testing.T) {
	var f FilterPredicateSet
	assert.True(t, f.IsZero())
	assert.Equal(t, 0, f.ActiveCount())

	f.PriceMin = PriceBound{Value: 5}
	assert.True(t, f.IsZero(), "an unset bound with a stale value is still zero")

	f.Category = "  "
	assert.True(t, f.IsZero())

	f.Discount = true
	assert.False(t, f.IsZero())
	assert.Equal(t, 1, f.ActiveCount())
}

func TestFilterPredicateSet_NormalizeSwapsRange(t *testing.T) {
	f := FilterPredicateSet{PriceMin: Bound(900), PriceMax: Bound(100), Stock: "bogus"}.Normalize()
	assert.Equal(t, 100.0, f.PriceMin.Value)
	assert.Equal(t, 900.0, f.PriceMax.Value)
	assert.Equal(t, StockAll, f.Stock)
}

func TestBound_RejectsNonFinite(t *testing.T) {
	assert.False(t, Bound(math.NaN()).Set)
	assert.False(t, Bound(math.Inf(1)).Set)
	assert.True(t, Bound(0).Set)
}

func TestPriceBound_JSON(t *testing.T) {
	var f FilterPredicateSet
	require.NoError(t, json.Unmarshal([]byte(`{"priceMin":200000,"priceMax":null,"stock":"lowStock"}`), &f))
	assert.Equal(t, Bound(200000), f.PriceMin)
	assert.False(t, f.PriceMax.Set)
	assert.Equal(t, StockLow, f.Stock)

	out, err := json.Marshal(FilterPredicateSet{PriceMax: Bound(10)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"priceMin":null,"priceMax":10}`, string(out))
}

func TestParseSortKey(t *testing.T) {
	key, ok := ParseSortKey("priceDesc")
	assert.True(t, ok)
	assert.Equal(t, SortPriceDesc, key)

	key, ok = ParseSortKey("rating")
	assert.False(t, ok)
	assert.Equal(t, DefaultSort, key)

	assert.True(t, SortNameAsc.Valid())
	assert.False(t, SortKey("nameAsc").Valid())
	assert.False(t, SortKey("PRICEASC").Valid())
	assert.False(t, SortKey("price_asc").Valid())
	assert.True(t, SortPriceAsc.Valid())
	assert.Equal(t, DefaultSort, SortKey("").OrDefault())
}

func TestModeOf(t *testing.T) {
	assert.Equal(t, ModeListing, ModeOf(""))
	assert.Equal(t, ModeListing, ModeOf("   "))
	assert.Equal(t, ModeSearch, ModeOf("iphone"))
}

func TestProduct_HasDiscount(t *testing.T) {
	higher, lower := 120.0, 80.0
	assert.True(t, Product{Price: 100, OriginalPrice: &higher}.HasDiscount())
	assert.False(t, Product{Price: 100, OriginalPrice: &lower}.HasDiscount())
	assert.False(t, Product{Price: 100}.HasDiscount())
}

func TestFetchRequest_Key(t *testing.T) {
	a := FetchRequest{Mode: ModeListing, First: 200, OrderBy: SortPriceAsc, Condition: ServerCondition{CategoryID: "c1"}}
	b := a
	assert.Equal(t, a.Key(), b.Key())

	b.Offset = 12
	assert.NotEqual(t, a.Key(), b.Key())

	c := a
	c.OrderBy = ""
	d := a
	d.OrderBy = DefaultSort
	assert.Equal(t, c.Key(), d.Key())
}
