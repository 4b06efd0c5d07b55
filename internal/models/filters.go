package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
)

// LowStockThreshold is the inclusive upper bound of the lowStock band (0, 10].
const LowStockThreshold = 10

type StockStatus string

const (
	StockAll        StockStatus = ""
	StockIn         StockStatus = "inStock"
	StockOut        StockStatus = "outOfStock"
	StockLow        StockStatus = "lowStock"
	stockAllLiteral             = "all"
)

// ParseStockStatus maps a URL token to a StockStatus. Unknown tokens map to
// StockAll with ok=false.
func ParseStockStatus(s string) (StockStatus, bool) {
	switch strings.TrimSpace(s) {
	case string(StockIn):
		return StockIn, true
	case string(StockOut):
		return StockOut, true
	case string(StockLow):
		return StockLow, true
	case "", stockAllLiteral:
		return StockAll, true
	}
	return StockAll, false
}

func (s StockStatus) String() string {
	if s == StockAll {
		return stockAllLiteral
	}
	return string(s)
}

// Admits reports whether a product with the given stock passes the status.
func (s StockStatus) Admits(stock int) bool {
	switch s {
	case StockIn:
		return stock > 0
	case StockOut:
		return stock <= 0
	case StockLow:
		return stock > 0 && stock <= LowStockThreshold
	}
	return true
}

// PriceBound is an optional price limit. The zero value is unset.
type PriceBound struct {
	Value float64
	Set   bool
}

// Bound returns a set PriceBound, or an unset one for non-finite input.
func Bound(v float64) PriceBound {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return PriceBound{}
	}
	return PriceBound{Value: v, Set: true}
}

func (b PriceBound) MarshalJSON() ([]byte, error) {
	if !b.Set {
		return []byte("null"), nil
	}
	return json.Marshal(b.Value)
}

func (b *PriceBound) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*b = PriceBound{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*b = Bound(v)
	return nil
}

// FilterPredicateSet is the set of client-side filters. Its zero value means
// "no filters active". The type is comparable; compare normalized values.
type FilterPredicateSet struct {
	PriceMin PriceBound  `json:"priceMin"`
	PriceMax PriceBound  `json:"priceMax"`
	Category string      `json:"category,omitempty"`
	Brand    string      `json:"brand,omitempty"`
	Stock    StockStatus `json:"stock,omitempty"`
	Featured bool        `json:"featured,omitempty"`
	Discount bool        `json:"discount,omitempty"`
}

// Normalize trims ids, drops values of unset bounds, maps unknown stock
// tokens to all and swaps an inverted price range.
func (f FilterPredicateSet) Normalize() FilterPredicateSet {
	f.Category = strings.TrimSpace(f.Category)
	f.Brand = strings.TrimSpace(f.Brand)
	f.PriceMin = Bound(f.PriceMin.Value).keepIf(f.PriceMin.Set)
	f.PriceMax = Bound(f.PriceMax.Value).keepIf(f.PriceMax.Set)
	if st, ok := ParseStockStatus(string(f.Stock)); ok {
		f.Stock = st
	} else {
		f.Stock = StockAll
	}
	if f.PriceMin.Set && f.PriceMax.Set && f.PriceMin.Value > f.PriceMax.Value {
		f.PriceMin, f.PriceMax = f.PriceMax, f.PriceMin
	}
	return f
}

func (b PriceBound) keepIf(set bool) PriceBound {
	if !set {
		return PriceBound{}
	}
	return b
}

// IsZero reports whether no filter is active.
func (f FilterPredicateSet) IsZero() bool {
	return f.Normalize() == FilterPredicateSet{}
}

// ActiveCount returns how many individual filters are active.
func (f FilterPredicateSet) ActiveCount() int {
	f = f.Normalize()
	n := 0
	for _, active := range []bool{
		f.PriceMin.Set,
		f.PriceMax.Set,
		f.Category != "",
		f.Brand != "",
		f.Stock != StockAll,
		f.Featured,
		f.Discount,
	} {
		if active {
			n++
		}
	}
	return n
}

// ServerCondition is the subset of predicates the listing query can evaluate
// remotely: plain equality fields.
type ServerCondition struct {
	CategoryID string `json:"categoryId,omitempty"`
	BrandID    string `json:"brandId,omitempty"`
	IsFeatured bool   `json:"isFeatured,omitempty"`
}

func (c ServerCondition) IsZero() bool {
	return c == ServerCondition{}
}

// Condition extracts the server-side part of the predicate set.
func (f FilterPredicateSet) Condition() ServerCondition {
	f = f.Normalize()
	return ServerCondition{
		CategoryID: f.Category,
		BrandID:    f.Brand,
		IsFeatured: f.Featured,
	}
}
