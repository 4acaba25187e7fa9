// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package arrayd

import (
	"context"
	"fmt"
)

// Array is a handle to a numeric array held on the server. It records
// the server-side name, the element dtype and the length. All element
// data stays remote until fetched with [Values].
type Array struct {
	c     *Client
	name  string
	dtype DType
	size  int64
	freed bool
}

// Name returns the server-side symbol name.
func (a *Array) Name() string { return a.name }

// DType returns the element type tag.
func (a *Array) DType() DType { return a.dtype }

// Len returns the number of elements.
func (a *Array) Len() int64 { return a.size }

// ObjType returns [ObjTypeArray].
func (a *Array) ObjType() ObjType { return ObjTypeArray }

func (a *Array) String() string {
	return fmt.Sprintf("array(%s, %s, %d)", a.name, a.dtype, a.size)
}

func (a *Array) owner() *Client { return a.c }

func (a *Array) appendOperands(cmd *Command) { cmd.AddName(a.name) }

func (a *Array) validate() error {
	if a.freed {
		return valueErrorf("array %s was released", a.name)
	}
	return nil
}

// arrayFrom wraps the created-symbol descriptor at reply segment i.
func (c *Client) arrayFrom(reply *Reply, i int) (*Array, error) {
	desc, err := reply.Created(i)
	if err != nil {
		return nil, err
	}
	return &Array{c: c, name: desc.Name, dtype: desc.DType, size: desc.Size}, nil
}

// NewArray uploads values to the server and returns a handle to the
// stored copy. The element dtype is derived from E.
func NewArray[E Element](ctx context.Context, c *Client, values []E) (*Array, error) {
	dt := DTypeOf[E]()
	payload, err := EncodePayload(values)
	if err != nil {
		return nil, err
	}
	cmd := NewCommand(VerbArray)
	cmd.AddDType(dt)
	cmd.AddInt(int64(len(values)))
	cmd.SetPayload(payload)
	reply, err := c.call(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return c.arrayFrom(reply, 0)
}

// Zeros creates a zero-filled array of the given dtype and size on the
// server.
func Zeros(ctx context.Context, c *Client, dtype DType, size int64) (*Array, error) {
	if _, err := ParseDType(string(dtype)); err != nil {
		return nil, err
	}
	if size < 0 {
		return nil, valueErrorf("zeros: negative size %d", size)
	}
	cmd := NewCommand(VerbCreate)
	cmd.AddDType(dtype)
	cmd.AddInt(size)
	reply, err := c.call(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return c.arrayFrom(reply, 0)
}

// ZerosLike creates a zero-filled array with the dtype and size of a.
func ZerosLike(ctx context.Context, a *Array) (*Array, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}
	return Zeros(ctx, a.c, a.dtype, a.size)
}

// Values fetches the array's elements. E must match the array's dtype.
func Values[E Element](ctx context.Context, a *Array) ([]E, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}
	if dt := DTypeOf[E](); dt != a.dtype {
		return nil, typeErrorf("values: fetch of %s as %s", a, dt)
	}
	cmd := NewCommand(VerbFetch)
	cmd.AddName(a.name)
	reply, err := a.c.call(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return DecodePayload[E](reply.Payload())
}

// Index gathers elements of a by an index vector. An int64 iv selects
// a[iv[0]], a[iv[1]], ... in order; a bool iv of the same length as a
// keeps the elements at true positions.
func (a *Array) Index(ctx context.Context, iv *Array) (*Array, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}
	if err := iv.validate(); err != nil {
		return nil, err
	}
	if a.c != iv.c {
		return nil, valueErrorf("index: operands %s and %s belong to different clients", a, iv)
	}
	switch iv.dtype {
	case Int64:
	case Bool:
		if iv.size != a.size {
			return nil, valueErrorf("index: bool index %s does not match %s", iv, a)
		}
	default:
		return nil, typeErrorf("index: index vector %s must be %s or %s", iv, Int64, Bool)
	}
	cmd := NewCommand(VerbIndex)
	cmd.AddName(a.name)
	cmd.AddName(iv.name)
	reply, err := a.c.call(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return a.c.arrayFrom(reply, 0)
}

// Slice creates a view copy of a[start:stop].
func (a *Array) Slice(ctx context.Context, start, stop int64) (*Array, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}
	if start < 0 || stop < start || stop > a.size {
		return nil, valueErrorf("slice: bounds [%d:%d] out of range for %s", start, stop, a)
	}
	cmd := NewCommand(VerbSlice)
	cmd.AddName(a.name)
	cmd.AddInt(start)
	cmd.AddInt(stop)
	reply, err := a.c.call(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return a.c.arrayFrom(reply, 0)
}

func (a *Array) binop(ctx context.Context, op string, b *Array) (*Array, error) {
	if err := validatePair(op, a, b); err != nil {
		return nil, err
	}
	if a.size != b.size {
		return nil, valueErrorf("%s: length mismatch between %s and %s", op, a, b)
	}
	cmd := NewCommand(VerbBinop)
	cmd.AddString(op)
	cmd.AddName(a.name)
	cmd.AddName(b.name)
	reply, err := a.c.call(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return a.c.arrayFrom(reply, 0)
}

// Eq compares a and b elementwise and returns a bool array.
func (a *Array) Eq(ctx context.Context, b *Array) (*Array, error) { return a.binop(ctx, "==", b) }

// Ne compares a and b elementwise and returns a bool array.
func (a *Array) Ne(ctx context.Context, b *Array) (*Array, error) { return a.binop(ctx, "!=", b) }

// Lt compares a and b elementwise and returns a bool array.
func (a *Array) Lt(ctx context.Context, b *Array) (*Array, error) { return a.binop(ctx, "<", b) }

// Le compares a and b elementwise and returns a bool array.
func (a *Array) Le(ctx context.Context, b *Array) (*Array, error) { return a.binop(ctx, "<=", b) }

// Gt compares a and b elementwise and returns a bool array.
func (a *Array) Gt(ctx context.Context, b *Array) (*Array, error) { return a.binop(ctx, ">", b) }

// Ge compares a and b elementwise and returns a bool array.
func (a *Array) Ge(ctx context.Context, b *Array) (*Array, error) { return a.binop(ctx, ">=", b) }

// And combines two bool arrays elementwise.
func (a *Array) And(ctx context.Context, b *Array) (*Array, error) { return a.binop(ctx, "&", b) }

// Or combines two bool arrays elementwise.
func (a *Array) Or(ctx context.Context, b *Array) (*Array, error) { return a.binop(ctx, "|", b) }

// Release deletes the server-side array. The handle refuses further
// use afterwards; releasing twice is a no-op.
func (a *Array) Release(ctx context.Context) error {
	if a.freed {
		return nil
	}
	cmd := NewCommand(VerbDelete)
	cmd.AddName(a.name)
	if _, err := a.c.call(ctx, cmd); err != nil {
		return err
	}
	a.freed = true
	return nil
}
