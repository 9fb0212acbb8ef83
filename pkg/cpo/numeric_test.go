package cpo

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeNumber(t *testing.T) {
	var nilPtr *float64
	tests := []struct {
		name     string
		in       any
		def      float64
		expected float64
	}{
		{"nil", nil, 0, 0},
		{"nil with default", nil, 7, 7},
		{"blank string", "", 3, 3},
		{"whitespace string", "   ", 3, 3},
		{"numeric string", "12.5", 0, 12.5},
		{"padded numeric string", " 42 ", 0, 42},
		{"non numeric string", "abc", -1, -1},
		{"float", 1.25, 0, 1.25},
		{"int", 9, 0, 9},
		{"int64", int64(11), 0, 11},
		{"json number", json.Number("3.5"), 0, 3.5},
		{"bad json number", json.Number("x"), 2, 2},
		{"nil pointer", nilPtr, 4, 4},
		{"pointer", f(6.5), 0, 6.5},
		{"NaN string", "NaN", 1, 1},
		{"bool", true, 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SafeNumber(tt.in, tt.def))
		})
	}
}

func TestSafeRound(t *testing.T) {
	assert.Equal(t, 89.29, SafeRound(89.29000000000001, 2))
	assert.Equal(t, 1.235, SafeRound(1.23456, 3))
	assert.Equal(t, 2.0, SafeRound(1.5, 0))
	assert.Equal(t, 3.0, SafeRound(2.6, -1))
	assert.True(t, math.IsNaN(SafeRound(math.NaN(), 2)))
}

func TestSafeRound_Idempotent(t *testing.T) {
	values := []float64{0, 0.1 + 0.2, 45.0000001, 123.4565, 0.0005, 98765.4321, 1e-7, 3.14159265}
	for _, x := range values {
		once := SafeRound(x, 3)
		assert.Equal(t, once, SafeRound(once, 3), "x=%v", x)
	}
}

func TestSanitizeNumericInput(t *testing.T) {
	tests := []struct {
		name         string
		in           string
		allowDecimal bool
		expected     string
	}{
		{"thousands separator", "1,234.56", true, "1234.56"},
		{"multiple points collapse", "12.34.56", true, "12.3456"},
		{"decimals disallowed", "1,234.56", false, "123456"},
		{"decimals disallowed multi point", "12.34.56", false, "123456"},
		{"letters and spaces", " 12a b3 cm", true, "123"},
		{"minus stripped", "-45.5", true, "45.5"},
		{"empty", "", true, ""},
		{"only garbage", "abc", true, ""},
		{"leading point", ".5", true, ".5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeNumericInput(tt.in, tt.allowDecimal))
		})
	}
}

func TestParseNumericInput(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected float64
	}{
		{"plain", "12.5", 12.5},
		{"negative keeps sign", "-100", -100},
		{"exponent", "1e3", 1000},
		{"thousands separators", "1,250.5", 1250.5},
		{"padded", "  42 ", 42},
		{"unit suffix sanitized", "31.6 °C", 31.6},
		{"letters only", "abc", 0},
		{"blank", "", 0},
		{"NaN", "NaN", 0},
		{"out of range", "1e400", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseNumericInput(tt.in, 0))
		})
	}
}
