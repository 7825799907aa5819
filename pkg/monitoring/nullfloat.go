// SPDX-License-Identifier: GPL-3.0-or-later

package monitoring

import (
	"bytes"
	"encoding/json"
	"math"
)

// NullFloat is a number that may be absent. Absent means "unknown", which is
// different from zero: a counter reset gives an absent rate, not a zero rate.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

var Null = NullFloat{}

// Some returns a present value. Non-finite numbers are treated as absent.
func Some(v float64) NullFloat {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Null
	}
	return NullFloat{Float64: v, Valid: true}
}

func (n NullFloat) Get() (float64, bool) {
	return n.Float64, n.Valid
}

// Map applies fn to a present value.
func (n NullFloat) Map(fn func(float64) float64) NullFloat {
	if !n.Valid {
		return Null
	}
	return Some(fn(n.Float64))
}

func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

func (n *NullFloat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*n = Null
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Some(v)
	return nil
}

// sub returns a - b when both are present.
func sub(a, b NullFloat) NullFloat {
	if !a.Valid || !b.Valid {
		return Null
	}
	return Some(a.Float64 - b.Float64)
}

// add returns a + b when both are present.
func add(a, b NullFloat) NullFloat {
	if !a.Valid || !b.Valid {
		return Null
	}
	return Some(a.Float64 + b.Float64)
}
