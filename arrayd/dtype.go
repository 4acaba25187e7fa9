// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package arrayd

import (
	"github.com/apache/arrow-go/v18/arrow"
)

// DType is the element-kind tag of a numeric array handle. The wire
// representation is the string value itself.
type DType string

const (
	Int64   DType = "int64"
	Float64 DType = "float64"
	Bool    DType = "bool"
	Uint8   DType = "uint8"
)

// ParseDType validates a wire dtype string.
func ParseDType(s string) (DType, error) {
	switch DType(s) {
	case Int64, Float64, Bool, Uint8:
		return DType(s), nil
	}
	return "", valueErrorf("unknown dtype %q", s)
}

// ArrowType returns the Arrow data type payload columns use for this dtype.
func (dt DType) ArrowType() arrow.DataType {
	switch dt {
	case Int64:
		return arrow.PrimitiveTypes.Int64
	case Float64:
		return arrow.PrimitiveTypes.Float64
	case Bool:
		return arrow.FixedWidthTypes.Boolean
	case Uint8:
		return arrow.PrimitiveTypes.Uint8
	default:
		return nil
	}
}

func (dt DType) String() string { return string(dt) }

// Element constrains the Go element types that map onto wire dtypes.
type Element interface {
	int64 | float64 | bool | uint8
}

// DTypeOf returns the wire dtype for a Go element type.
func DTypeOf[E Element]() DType {
	var z E
	switch any(z).(type) {
	case int64:
		return Int64
	case float64:
		return Float64
	case bool:
		return Bool
	default:
		return Uint8
	}
}
