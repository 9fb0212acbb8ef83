package cpo

import (
	"math"
	"strings"
)

// ReadingInput is a tank reading as it arrives from a form or JSON client. Values may be
// numbers, numeric strings with thousands separators, blanks or null.
type ReadingInput struct {
	TankNo      any `json:"tank_no"`
	OilLevel    any `json:"oil_level"`
	Temperature any `json:"temperature"`
	FFA         any `json:"ffa"`
	Moisture    any `json:"moisture"`
	DOBI        any `json:"dobi"`
}

// Normalize coerces every field to its strict type. It never fails.
func (in ReadingInput) Normalize() TankReading {
	return TankReading{
		TankNo:      int(math.Trunc(coerceInput(in.TankNo))),
		OilLevel:    coerceInput(in.OilLevel),
		Temperature: coerceInput(in.Temperature),
		FFA:         optionalInput(in.FFA),
		Moisture:    optionalInput(in.Moisture),
		DOBI:        optionalInput(in.DOBI),
	}
}

// NormalizeAll normalizes a batch, preserving order.
func NormalizeAll(inputs []ReadingInput) []TankReading {
	out := make([]TankReading, len(inputs))
	for i, in := range inputs {
		out[i] = in.Normalize()
	}
	return out
}

func coerceInput(v any) float64 {
	if s, ok := v.(string); ok {
		return ParseNumericInput(s, 0)
	}
	return SafeNumber(v, 0)
}

// optionalInput returns nil for absent or blank values.
func optionalInput(v any) *float64 {
	switch n := v.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(n) == "" {
			return nil
		}
	case *float64:
		if n == nil {
			return nil
		}
	}
	f := coerceInput(v)
	return &f
}
