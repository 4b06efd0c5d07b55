package utils

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ParseNumber parses a decimal string into a finite float64.
// NaN, Inf and anything ParseFloat rejects report ok=false.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParsePrice reads a price that arrived either as a JSON number or as a
// numeric JSON string. Null, empty, negative and non-numeric values are
// rejected.
func ParsePrice(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}

	var v float64
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		n, ok := ParseNumber(s)
		if !ok {
			return 0, false
		}
		v = n
	default:
		if err := json.Unmarshal(raw, &v); err != nil {
			return 0, false
		}
	}

	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// FormatNumber renders v with the shortest representation that parses back
// to the same float64.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
