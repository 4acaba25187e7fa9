// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package arrayd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTripPayload[E Element](t *testing.T, values []E) {
	t.Helper()
	data, err := EncodePayload(values)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	got, err := DecodePayload[E](data)
	require.NoError(t, err)
	assert.Equal(t, values, got)
}

func TestPayloadRoundTrip(t *testing.T) {
	t.Run("int64", func(t *testing.T) {
		roundTripPayload(t, []int64{3, -1, 4, 1, -5, 9})
	})
	t.Run("float64", func(t *testing.T) {
		roundTripPayload(t, []float64{0.5, -2.25, 0, 1e18})
	})
	t.Run("bool", func(t *testing.T) {
		roundTripPayload(t, []bool{true, false, true, true})
	})
	t.Run("uint8", func(t *testing.T) {
		roundTripPayload(t, []uint8{0, 255, 104, 105})
	})
	t.Run("empty", func(t *testing.T) {
		data, err := EncodePayload([]int64{})
		require.NoError(t, err)
		got, err := DecodePayload[int64](data)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestDecodePayloadColumnMismatch(t *testing.T) {
	data, err := EncodePayload([]int64{1, 2, 3})
	require.NoError(t, err)

	_, err = DecodePayload[float64](data)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValue)
	assert.Contains(t, err.Error(), "int64")
}

func TestDecodePayloadGarbage(t *testing.T) {
	_, err := DecodePayload[int64]([]byte("not an arrow stream"))
	require.Error(t, err)
}
