// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package arrayd

import "fmt"

// Value is the closed set of handle kinds the set operations accept:
// [*Array] (numeric) and [*Strings] (text). The unexported methods keep
// the set closed; a new kind extends this interface and the dispatch
// switches in the operations together.
type Value interface {
	fmt.Stringer

	// ObjType returns the wire-level object kind.
	ObjType() ObjType
	// Len returns the number of elements.
	Len() int64

	// owner returns the client the handle belongs to.
	owner() *Client
	// appendOperands appends the handle's wire operands to a command.
	appendOperands(cmd *Command)
	// validate reports whether the handle is still usable.
	validate() error
}

var (
	_ Value = (*Array)(nil)
	_ Value = (*Strings)(nil)
)

// validateValue rejects unknown kinds and unusable handles before any
// remote call.
func validateValue(op string, v Value) error {
	switch v.ObjType() {
	case ObjTypeArray, ObjTypeStrings:
	default:
		return typeErrorf("%s: unsupported handle kind %q", op, v.ObjType())
	}
	return v.validate()
}

// validatePair enforces the binary-operation invariants: both handles
// usable, same kind, same dtype for numeric pairs, same client. All
// violations surface before any remote call.
func validatePair(op string, a, b Value) error {
	if err := validateValue(op, a); err != nil {
		return err
	}
	if err := validateValue(op, b); err != nil {
		return err
	}
	if a.ObjType() != b.ObjType() {
		return typeErrorf("%s: mismatched operands %s and %s", op, a, b)
	}
	if a.owner() != b.owner() {
		return valueErrorf("%s: operands %s and %s belong to different clients", op, a, b)
	}
	if aa, ok := a.(*Array); ok {
		if ba, ok := b.(*Array); ok && aa.dtype != ba.dtype {
			return typeErrorf("%s: mismatched dtypes %s and %s", op, aa, ba)
		}
	}
	return nil
}
