// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package arrayd

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	err := typeErrorf("mismatched %s", "operands")
	assert.EqualError(t, err, "TypeError: mismatched operands")
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.ErrorIs(t, err, ErrOperation)
	assert.NotErrorIs(t, err, ErrValue)

	var opErr *Error
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, KindType, opErr.Kind)
}

func TestErrOperationMatchesEveryKind(t *testing.T) {
	for _, err := range []error{
		typeErrorf("a"),
		valueErrorf("b"),
		notImplementedf("c"),
		remoteError("d"),
	} {
		assert.ErrorIs(t, err, ErrOperation, "%v", err)
	}
}

func TestRemoteErrorTrimsBody(t *testing.T) {
	err := remoteError("  something failed \n")
	assert.EqualError(t, err, "RuntimeError: something failed")
	assert.ErrorIs(t, err, ErrRemote)
}

func TestWrappedErrorsStillMatch(t *testing.T) {
	wrapped := fmt.Errorf("union1d: %w", valueErrorf("array id_0 was released"))
	assert.ErrorIs(t, wrapped, ErrValue)
	assert.ErrorIs(t, wrapped, ErrOperation)

	var opErr *Error
	require.ErrorAs(t, wrapped, &opErr)
	assert.Equal(t, KindValue, opErr.Kind)
	assert.Equal(t, "array id_0 was released", opErr.Message)
}
