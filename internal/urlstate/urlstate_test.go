package urlstate

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-catalog-api/internal/models"
)

func TestParse_EmptyIsDefault(t *testing.T) {
	s := Parse(url.Values{})
	assert.Equal(t, Default(), s)
	assert.True(t, s.Filters.IsZero())
	assert.Equal(t, models.ModeListing, s.Mode())
	assert.Equal(t, "", s.Encode())
}

func TestParse_StockLowAndFeatured(t *testing.T) {
	s := ParseQuery("?stock=lowStock&featured=true")

	want := models.FilterPredicateSet{Stock: models.StockLow, Featured: true}
	assert.Equal(t, want, s.Filters)
	assert.Equal(t, models.DefaultSort, s.Sort)
	assert.Equal(t, "", s.Query)
	assert.Equal(t, 1, s.Page)
}

func TestParse_InvalidNumbersAreUnset(t *testing.T) {
	for _, raw := range []string{"abc", "NaN", "Infinity", "-Inf", "1e999", "", "  "} {
		s := Parse(url.Values{ParamPriceMin: {raw}, ParamPriceMax: {raw}})
		assert.False(t, s.Filters.PriceMin.Set, "priceMin %q", raw)
		assert.False(t, s.Filters.PriceMax.Set, "priceMax %q", raw)
		assert.True(t, s.Filters.IsZero(), "input %q", raw)
	}
}

func TestParse_UnknownTokensFallBack(t *testing.T) {
	s := ParseQuery("sort=POPULARITY&stock=plenty&featured=yes&discount=1&page=-4")

	assert.Equal(t, models.DefaultSort, s.Sort)
	assert.Equal(t, models.StockAll, s.Filters.Stock)
	assert.False(t, s.Filters.Featured)
	assert.True(t, s.Filters.Discount)
	assert.Equal(t, 1, s.Page)
}

func TestParse_SortAcceptsCamelCase(t *testing.T) {
	assert.Equal(t, models.SortPriceAsc, ParseQuery("sort=priceAsc").Sort)
	assert.Equal(t, models.SortNameDesc, ParseQuery("sort=NAME_DESC").Sort)
	assert.Equal(t, "sort=PRICE_ASC", ParseQuery("sort=priceAsc").Encode())
}

func TestParse_TrimsQueryAndIDs(t *testing.T) {
	s := ParseQuery("q=%20%20iphone%20&category=%20c1%20")
	assert.Equal(t, "iphone", s.Query)
	assert.Equal(t, "c1", s.Filters.Category)
	assert.Equal(t, models.ModeSearch, s.Mode())

	blank := ParseQuery("q=%20%20")
	assert.Equal(t, models.ModeListing, blank.Mode())
}

func TestValues_OmitsZeroFields(t *testing.T) {
	s := State{
		Sort:    models.DefaultSort,
		Filters: models.FilterPredicateSet{PriceMin: models.Bound(0), Featured: false},
		Page:    1,
	}
	values := s.Values()
	assert.Equal(t, []string{"0"}, values[ParamPriceMin])
	assert.NotContains(t, values, ParamFeatured)
	assert.NotContains(t, values, ParamSort)
	assert.NotContains(t, values, ParamPage)
	assert.NotContains(t, values, ParamQuery)
}

func TestRoundTrip(t *testing.T) {
	states := []State{
		Default(),
		{Query: "iphone", Sort: models.SortPriceDesc, Page: 3},
		{Sort: models.SortNameAsc, Page: 1, Filters: models.FilterPredicateSet{
			PriceMin: models.Bound(200000),
			PriceMax: models.Bound(1000000),
		}},
		{Query: "red shoes & socks", Sort: models.SortCreatedAsc, Page: 2, Filters: models.FilterPredicateSet{
			PriceMin: models.Bound(0.5),
			Category: "cat/1",
			Brand:    "b=2",
			Stock:    models.StockOut,
			Featured: true,
			Discount: true,
		}},
		{Sort: models.DefaultSort, Page: 1, Filters: models.FilterPredicateSet{PriceMax: models.Bound(99.99), Stock: models.StockIn}},
	}

	for _, s := range states {
		s = s.Normalize()
		back := ParseQuery(s.Encode())
		require.Equal(t, s, back, "query %s", s.Encode())
		assert.Equal(t, s.Encode(), back.Encode())
	}
}

func TestEncode_IsDeterministic(t *testing.T) {
	s := State{Query: "x", Sort: models.SortPriceAsc, Page: 2, Filters: models.FilterPredicateSet{Brand: "b", Category: "c"}}
	assert.Equal(t, "brand=b&category=c&page=2&q=x&sort=PRICE_ASC", s.Encode())
	assert.Equal(t, s.Encode(), s.Encode())
}

func TestMerge_KeepsForeignParams(t *testing.T) {
	base := url.Values{"utm_source": {"mail"}, ParamBrand: {"old"}, ParamPage: {"4"}}
	s := State{Sort: models.DefaultSort, Page: 1, Filters: models.FilterPredicateSet{Category: "c1"}}

	merged := s.Merge(base)
	assert.Equal(t, "mail", merged.Get("utm_source"))
	assert.Equal(t, "c1", merged.Get(ParamCategory))
	assert.Empty(t, merged.Get(ParamBrand))
	assert.Empty(t, merged.Get(ParamPage))
}
