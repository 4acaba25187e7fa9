// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package arrayd

import "context"

// Unique returns the distinct elements of v. Int64 results come back
// sorted ascending; other dtypes and strings keep a deterministic
// server-defined order.
func Unique[V Value](ctx context.Context, v V) (V, error) {
	var zero V
	out, _, err := uniqueValue(ctx, v, false)
	if err != nil {
		return zero, err
	}
	res, ok := out.(V)
	if !ok {
		return zero, typeErrorf("unique: result does not match requested kind")
	}
	return res, nil
}

// UniqueWithCounts returns the distinct elements of v along with an
// int64 array of occurrence counts aligned with the result.
func UniqueWithCounts[V Value](ctx context.Context, v V) (V, *Array, error) {
	var zero V
	out, counts, err := uniqueValue(ctx, v, true)
	if err != nil {
		return zero, nil, err
	}
	res, ok := out.(V)
	if !ok {
		return zero, nil, typeErrorf("unique: result does not match requested kind")
	}
	return res, counts, nil
}

func uniqueValue(ctx context.Context, v Value, withCounts bool) (Value, *Array, error) {
	if err := validateValue("unique", v); err != nil {
		return nil, nil, err
	}
	c := v.owner()
	cmd := NewCommand(VerbUnique)
	cmd.AddObjType(v.ObjType())
	v.appendOperands(cmd)
	cmd.AddBool(withCounts)
	reply, err := c.call(ctx, cmd)
	if err != nil {
		return nil, nil, err
	}
	var (
		out  Value
		next int
	)
	switch v.ObjType() {
	case ObjTypeArray:
		arr, err := c.arrayFrom(reply, 0)
		if err != nil {
			return nil, nil, err
		}
		out, next = arr, 1
	case ObjTypeStrings:
		str, err := c.stringsFrom(reply, 0)
		if err != nil {
			return nil, nil, err
		}
		out, next = str, 2
	default:
		return nil, nil, notImplementedf("unique: no implementation for handle kind %q", v.ObjType())
	}
	if !withCounts {
		return out, nil, nil
	}
	counts, err := c.arrayFrom(reply, next)
	if err != nil {
		return nil, nil, err
	}
	return out, counts, nil
}

// In1D returns a bool array the length of a, true at position i when
// a[i] occurs in b. With invert set the mask is negated. Both operands
// must be the same kind and, for numeric pairs, the same dtype.
func In1D[V Value](ctx context.Context, a, b V, invert bool) (*Array, error) {
	av, bv := Value(a), Value(b)
	if err := validatePair("in1d", av, bv); err != nil {
		return nil, err
	}
	var cmd *Command
	switch av.(type) {
	case *Array:
		cmd = NewCommand(VerbIn1D)
		av.appendOperands(cmd)
		bv.appendOperands(cmd)
		cmd.AddBool(invert)
	case *Strings:
		cmd = NewCommand(VerbSegIn1D)
		cmd.AddObjType(av.ObjType())
		av.appendOperands(cmd)
		cmd.AddObjType(bv.ObjType())
		bv.appendOperands(cmd)
		cmd.AddBool(invert)
	default:
		return nil, notImplementedf("in1d: no implementation for handle kind %q", av.ObjType())
	}
	c := av.owner()
	reply, err := c.call(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return c.arrayFrom(reply, 0)
}

// Concatenate joins values end to end. [ModeAppend] preserves input
// order; [ModeInterleave] lets the server round-robin chunks, so the
// result order is unspecified but the element multiset is preserved.
// A single input is returned as-is with no remote call; when every
// input is empty, numeric inputs produce a zero-length array of the
// shared dtype and text inputs return the first handle.
func Concatenate[V Value](ctx context.Context, values []V, mode ConcatMode) (V, error) {
	var zero V
	if len(values) == 0 {
		return zero, valueErrorf("concatenate: empty input")
	}
	switch mode {
	case ModeAppend, ModeInterleave:
	default:
		return zero, valueErrorf("concatenate: unknown mode %q", mode)
	}
	first := Value(values[0])
	if err := validateValue("concatenate", first); err != nil {
		return zero, err
	}
	kind := first.ObjType()
	var total int64
	for _, v := range values[1:] {
		vv := Value(v)
		if err := validateValue("concatenate", vv); err != nil {
			return zero, err
		}
		if vv.ObjType() != kind {
			return zero, typeErrorf("concatenate: mismatched operands %s and %s", first, vv)
		}
		if vv.owner() != first.owner() {
			return zero, valueErrorf("concatenate: operands %s and %s belong to different clients", first, vv)
		}
		if fa, ok := first.(*Array); ok {
			if va := vv.(*Array); va.dtype != fa.dtype {
				return zero, valueErrorf("concatenate: mismatched dtypes %s and %s", fa, va)
			}
		}
		total += vv.Len()
	}
	total += first.Len()
	if len(values) == 1 {
		return values[0], nil
	}
	if total == 0 {
		fa, ok := first.(*Array)
		if !ok {
			return values[0], nil
		}
		z, err := ZerosLike(ctx, fa)
		if err != nil {
			return zero, err
		}
		res, ok := Value(z).(V)
		if !ok {
			return zero, typeErrorf("concatenate: result does not match requested kind")
		}
		return res, nil
	}
	c := first.owner()
	cmd := NewCommand(VerbConcatenate)
	cmd.AddInt(int64(len(values)))
	cmd.AddObjType(kind)
	cmd.AddString(string(mode))
	for _, v := range values {
		Value(v).appendOperands(cmd)
	}
	reply, err := c.call(ctx, cmd)
	if err != nil {
		return zero, err
	}
	var out Value
	switch kind {
	case ObjTypeArray:
		arr, err := c.arrayFrom(reply, 0)
		if err != nil {
			return zero, err
		}
		out = arr
	case ObjTypeStrings:
		str, err := c.stringsFrom(reply, 0)
		if err != nil {
			return zero, err
		}
		out = str
	default:
		return zero, notImplementedf("concatenate: no implementation for handle kind %q", kind)
	}
	res, ok := out.(V)
	if !ok {
		return zero, typeErrorf("concatenate: result does not match requested kind")
	}
	return res, nil
}

// Union1D returns the union of a and b with duplicates removed. Int64
// inputs take a single-call fast path and come back sorted ascending;
// other dtypes compose the result from unique and concatenate, so the
// order follows the unique ordering of the dtype. An empty operand
// short-circuits to the other operand unchanged, with no remote call.
func Union1D(ctx context.Context, a, b *Array) (*Array, error) {
	if err := validatePair("union1d", a, b); err != nil {
		return nil, err
	}
	if a.size == 0 {
		return b, nil
	}
	if b.size == 0 {
		return a, nil
	}
	switch a.dtype {
	case Int64:
		cmd := NewCommand(VerbUnion)
		cmd.AddName(a.name)
		cmd.AddName(b.name)
		reply, err := a.c.call(ctx, cmd)
		if err != nil {
			return nil, err
		}
		return a.c.arrayFrom(reply, 0)
	case Float64, Uint8, Bool:
		return unionCompose(ctx, a, b)
	default:
		return nil, notImplementedf("union1d: no implementation for dtype %s", a.dtype)
	}
}

func unionCompose(ctx context.Context, a, b *Array) (*Array, error) {
	ua, err := Unique(ctx, a)
	if err != nil {
		return nil, err
	}
	defer releaseTemp(ctx, ua)
	ub, err := Unique(ctx, b)
	if err != nil {
		return nil, err
	}
	defer releaseTemp(ctx, ub)
	cat, err := Concatenate(ctx, []*Array{ua, ub}, ModeAppend)
	if err != nil {
		return nil, err
	}
	defer releaseTemp(ctx, cat)
	return Unique(ctx, cat)
}

// Intersect1D returns the elements present in both a and b, sorted
// ascending without duplicates. Int64 inputs take a single-call fast
// path. Set assumeUnique only when both inputs are already
// duplicate-free; it skips the dedup passes, and duplicates in the
// input then produce duplicated results. An empty operand
// short-circuits to that same empty operand, with no remote call.
func Intersect1D(ctx context.Context, a, b *Array, assumeUnique bool) (*Array, error) {
	if err := validatePair("intersect1d", a, b); err != nil {
		return nil, err
	}
	if a.size == 0 {
		return a, nil
	}
	if b.size == 0 {
		return b, nil
	}
	switch a.dtype {
	case Int64:
		cmd := NewCommand(VerbIntersect)
		cmd.AddName(a.name)
		cmd.AddName(b.name)
		cmd.AddBool(assumeUnique)
		reply, err := a.c.call(ctx, cmd)
		if err != nil {
			return nil, err
		}
		return a.c.arrayFrom(reply, 0)
	case Float64, Uint8, Bool:
		return intersectCompose(ctx, a, b, assumeUnique)
	default:
		return nil, notImplementedf("intersect1d: no implementation for dtype %s", a.dtype)
	}
}

// intersectCompose sorts the concatenation of the deduped operands and
// keeps elements equal to their right neighbor. Deduping first is what
// makes adjacent equality mean "present on both sides"; the dedup must
// stay ahead of the sort-merge.
func intersectCompose(ctx context.Context, a, b *Array, assumeUnique bool) (*Array, error) {
	if !assumeUnique {
		ua, err := Unique(ctx, a)
		if err != nil {
			return nil, err
		}
		defer releaseTemp(ctx, ua)
		ub, err := Unique(ctx, b)
		if err != nil {
			return nil, err
		}
		defer releaseTemp(ctx, ub)
		a, b = ua, ub
	}
	sorted, err := sortedConcat(ctx, a, b)
	if err != nil {
		return nil, err
	}
	defer releaseTemp(ctx, sorted)
	n := sorted.Len()
	left, err := sorted.Slice(ctx, 0, n-1)
	if err != nil {
		return nil, err
	}
	defer releaseTemp(ctx, left)
	right, err := sorted.Slice(ctx, 1, n)
	if err != nil {
		return nil, err
	}
	defer releaseTemp(ctx, right)
	mask, err := left.Eq(ctx, right)
	if err != nil {
		return nil, err
	}
	defer releaseTemp(ctx, mask)
	return left.Index(ctx, mask)
}

// SetDiff1D returns the elements of a not present in b. Int64 inputs
// take a single-call fast path and come back sorted ascending; other
// dtypes filter a by an inverted membership mask, so the result keeps
// a's post-dedup order. assumeUnique behaves as in [Intersect1D]. An
// empty a returns a; an empty b returns a unchanged.
func SetDiff1D(ctx context.Context, a, b *Array, assumeUnique bool) (*Array, error) {
	if err := validatePair("setdiff1d", a, b); err != nil {
		return nil, err
	}
	if a.size == 0 {
		return a, nil
	}
	if b.size == 0 {
		return a, nil
	}
	switch a.dtype {
	case Int64:
		cmd := NewCommand(VerbSetDiff)
		cmd.AddName(a.name)
		cmd.AddName(b.name)
		cmd.AddBool(assumeUnique)
		reply, err := a.c.call(ctx, cmd)
		if err != nil {
			return nil, err
		}
		return a.c.arrayFrom(reply, 0)
	case Float64, Uint8, Bool:
		return setDiffCompose(ctx, a, b, assumeUnique)
	default:
		return nil, notImplementedf("setdiff1d: no implementation for dtype %s", a.dtype)
	}
}

func setDiffCompose(ctx context.Context, a, b *Array, assumeUnique bool) (*Array, error) {
	if !assumeUnique {
		ua, err := Unique(ctx, a)
		if err != nil {
			return nil, err
		}
		defer releaseTemp(ctx, ua)
		ub, err := Unique(ctx, b)
		if err != nil {
			return nil, err
		}
		defer releaseTemp(ctx, ub)
		a, b = ua, ub
	}
	mask, err := In1D(ctx, a, b, true)
	if err != nil {
		return nil, err
	}
	defer releaseTemp(ctx, mask)
	return a.Index(ctx, mask)
}

// SetXor1D returns the elements present in exactly one of a and b,
// sorted ascending without duplicates. Int64 inputs take a single-call
// fast path. assumeUnique behaves as in [Intersect1D]. An empty
// operand short-circuits to the other operand unchanged.
func SetXor1D(ctx context.Context, a, b *Array, assumeUnique bool) (*Array, error) {
	if err := validatePair("setxor1d", a, b); err != nil {
		return nil, err
	}
	if a.size == 0 {
		return b, nil
	}
	if b.size == 0 {
		return a, nil
	}
	switch a.dtype {
	case Int64:
		cmd := NewCommand(VerbSetXor)
		cmd.AddName(a.name)
		cmd.AddName(b.name)
		cmd.AddBool(assumeUnique)
		reply, err := a.c.call(ctx, cmd)
		if err != nil {
			return nil, err
		}
		return a.c.arrayFrom(reply, 0)
	case Float64, Uint8, Bool:
		return setXorCompose(ctx, a, b, assumeUnique)
	default:
		return nil, notImplementedf("setxor1d: no implementation for dtype %s", a.dtype)
	}
}

// setXorCompose sorts the concatenation of the deduped operands and
// keeps elements that differ from both neighbors. The boundary flag
// array has length n+1 with both ends true; element i survives when
// flag[i] and flag[i+1] both hold.
func setXorCompose(ctx context.Context, a, b *Array, assumeUnique bool) (*Array, error) {
	if !assumeUnique {
		ua, err := Unique(ctx, a)
		if err != nil {
			return nil, err
		}
		defer releaseTemp(ctx, ua)
		ub, err := Unique(ctx, b)
		if err != nil {
			return nil, err
		}
		defer releaseTemp(ctx, ub)
		a, b = ua, ub
	}
	sorted, err := sortedConcat(ctx, a, b)
	if err != nil {
		return nil, err
	}
	defer releaseTemp(ctx, sorted)
	n := sorted.Len()
	left, err := sorted.Slice(ctx, 0, n-1)
	if err != nil {
		return nil, err
	}
	defer releaseTemp(ctx, left)
	right, err := sorted.Slice(ctx, 1, n)
	if err != nil {
		return nil, err
	}
	defer releaseTemp(ctx, right)
	neq, err := left.Ne(ctx, right)
	if err != nil {
		return nil, err
	}
	defer releaseTemp(ctx, neq)
	edge, err := NewArray(ctx, a.c, []bool{true})
	if err != nil {
		return nil, err
	}
	defer releaseTemp(ctx, edge)
	flag, err := Concatenate(ctx, []*Array{edge, neq, edge}, ModeAppend)
	if err != nil {
		return nil, err
	}
	defer releaseTemp(ctx, flag)
	fl, err := flag.Slice(ctx, 0, n)
	if err != nil {
		return nil, err
	}
	defer releaseTemp(ctx, fl)
	fr, err := flag.Slice(ctx, 1, n+1)
	if err != nil {
		return nil, err
	}
	defer releaseTemp(ctx, fr)
	keep, err := fl.And(ctx, fr)
	if err != nil {
		return nil, err
	}
	defer releaseTemp(ctx, keep)
	return sorted.Index(ctx, keep)
}

// sortedConcat concatenates a and b and materializes the stably sorted
// result, releasing the intermediates.
func sortedConcat(ctx context.Context, a, b *Array) (*Array, error) {
	aux, err := Concatenate(ctx, []*Array{a, b}, ModeAppend)
	if err != nil {
		return nil, err
	}
	defer releaseTemp(ctx, aux)
	perm, err := Argsort(ctx, aux)
	if err != nil {
		return nil, err
	}
	defer releaseTemp(ctx, perm)
	return aux.Index(ctx, perm)
}

// releaseTemp frees an intermediate server array, ignoring failures.
func releaseTemp(ctx context.Context, a *Array) {
	_ = a.Release(ctx)
}
