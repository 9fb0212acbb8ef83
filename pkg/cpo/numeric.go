package cpo

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// SafeNumber coerces a loosely typed value to float64.
// nil, blank strings, non-numeric strings, NaN and Inf all return def.
func SafeNumber(v any, def float64) float64 {
	var f float64
	switch n := v.(type) {
	case nil:
		return def
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case *float64:
		if n == nil {
			return def
		}
		f = *n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return def
		}
		f = parsed
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return def
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return def
		}
		f = parsed
	default:
		return def
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

// SafeRound rounds x to digits decimal places by scaling, rounding and unscaling,
// so 89.29000000000001 comes back as 89.29.
func SafeRound(x float64, digits int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	if digits < 0 {
		digits = 0
	}
	scale := math.Pow(10, float64(digits))
	return math.Round(x*scale) / scale
}

// SanitizeNumericInput strips thousands separators and every character other than
// digits and the first decimal point. With allowDecimal false the point is dropped too.
func SanitizeNumericInput(s string, allowDecimal bool) string {
	var b strings.Builder
	b.Grow(len(s))
	seenPoint := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.':
			if allowDecimal && !seenPoint {
				b.WriteRune(r)
				seenPoint = true
			}
		}
	}
	return b.String()
}

// ParseNumericInput reads a typed-in number. A string that parses once thousands
// separators are dropped keeps its value, sign and exponent included. Anything else
// is passed through SanitizeNumericInput first. Out-of-range values return def.
func ParseNumericInput(s string, def float64) float64 {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	f, err := strconv.ParseFloat(cleaned, 64)
	switch {
	case err == nil:
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return def
		}
		return f
	case errors.Is(err, strconv.ErrRange):
		return def
	}
	return SafeNumber(SanitizeNumericInput(s, true), def)
}
