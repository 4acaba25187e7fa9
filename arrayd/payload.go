// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package arrayd

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Binary payloads are Arrow IPC streams holding one record batch with a
// single column named "values". Both sides of the protocol encode and
// decode through these helpers.

// PayloadSchema returns the single-column Arrow schema for a dtype.
func PayloadSchema(dt DType) *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{{Name: "values", Type: dt.ArrowType()}}, nil)
}

// EncodePayload serializes a typed slice as an Arrow IPC stream.
func EncodePayload[E Element](values []E) ([]byte, error) {
	dt := DTypeOf[E]()
	mem := memory.NewGoAllocator()

	b := array.NewBuilder(mem, dt.ArrowType())
	defer b.Release()
	switch vs := any(values).(type) {
	case []int64:
		b.(*array.Int64Builder).AppendValues(vs, nil)
	case []float64:
		b.(*array.Float64Builder).AppendValues(vs, nil)
	case []bool:
		b.(*array.BooleanBuilder).AppendValues(vs, nil)
	case []uint8:
		b.(*array.Uint8Builder).AppendValues(vs, nil)
	}
	arr := b.NewArray()
	defer arr.Release()

	schema := PayloadSchema(dt)
	rec := array.NewRecord(schema, []arrow.Array{arr}, int64(len(values)))
	defer rec.Release()

	var buf bytes.Buffer
	w := ipc.NewWriter(&buf, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err := w.Write(rec); err != nil {
		w.Close()
		return nil, fmt.Errorf("encoding %s payload: %w", dt, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", dt, err)
	}
	return buf.Bytes(), nil
}

// DecodePayload deserializes an Arrow IPC stream into a typed slice.
// The column type must match E's dtype.
func DecodePayload[E Element](data []byte) ([]E, error) {
	dt := DTypeOf[E]()
	r, err := ipc.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s payload: %w", dt, err)
	}
	defer r.Release()

	out := make([]E, 0)
	for r.Next() {
		rec := r.Record()
		if rec.NumCols() != 1 {
			return nil, valueErrorf("payload batch has %d columns, expected 1", rec.NumCols())
		}
		col := rec.Column(0)
		switch c := col.(type) {
		case *array.Int64:
			vs, ok := any(&out).(*[]int64)
			if !ok {
				return nil, valueErrorf("payload column is int64, expected %s", dt)
			}
			*vs = append(*vs, c.Int64Values()...)
		case *array.Float64:
			vs, ok := any(&out).(*[]float64)
			if !ok {
				return nil, valueErrorf("payload column is float64, expected %s", dt)
			}
			*vs = append(*vs, c.Float64Values()...)
		case *array.Boolean:
			vs, ok := any(&out).(*[]bool)
			if !ok {
				return nil, valueErrorf("payload column is bool, expected %s", dt)
			}
			for i := 0; i < c.Len(); i++ {
				*vs = append(*vs, c.Value(i))
			}
		case *array.Uint8:
			vs, ok := any(&out).(*[]uint8)
			if !ok {
				return nil, valueErrorf("payload column is uint8, expected %s", dt)
			}
			*vs = append(*vs, c.Uint8Values()...)
		default:
			return nil, valueErrorf("unsupported payload column type %s", col.DataType())
		}
	}
	if err := r.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding %s payload: %w", dt, err)
	}
	return out, nil
}
