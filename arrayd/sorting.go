// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package arrayd

import "context"

// Argsort returns the int64 permutation that sorts a ascending. The
// permutation is stable, so equal elements keep their input order.
func Argsort(ctx context.Context, a *Array) (*Array, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}
	cmd := NewCommand(VerbArgsort)
	cmd.AddName(a.name)
	reply, err := a.c.call(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return a.c.arrayFrom(reply, 0)
}
