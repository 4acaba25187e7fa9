// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package arrayd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandEncode(t *testing.T) {
	t.Run("verb and typed operands", func(t *testing.T) {
		cmd := NewCommand(VerbUnique)
		cmd.AddObjType(ObjTypeArray)
		cmd.AddName("id_0")
		cmd.AddBool(true)
		text, err := cmd.Encode()
		require.NoError(t, err)
		assert.Equal(t, "unique array id_0 true", text)
	})

	t.Run("integers render as decimal text", func(t *testing.T) {
		cmd := NewCommand(VerbSlice)
		cmd.AddName("id_3")
		cmd.AddInt(0)
		cmd.AddInt(-7)
		text, err := cmd.Encode()
		require.NoError(t, err)
		assert.Equal(t, "slice id_3 0 -7", text)
	})

	t.Run("comparison operators are valid operands", func(t *testing.T) {
		cmd := NewCommand(VerbBinop)
		cmd.AddString(">=")
		cmd.AddName("id_0")
		cmd.AddName("id_1")
		text, err := cmd.Encode()
		require.NoError(t, err)
		assert.Equal(t, "binopvv >= id_0 id_1", text)
	})

	t.Run("rejects operands containing whitespace", func(t *testing.T) {
		cmd := NewCommand(VerbFetch)
		cmd.AddName("bad name")
		_, err := cmd.Encode()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValue)
	})

	t.Run("rejects operands containing the reply delimiter", func(t *testing.T) {
		cmd := NewCommand(VerbFetch)
		cmd.AddName("a+b")
		_, err := cmd.Encode()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValue)
	})

	t.Run("rejects empty operands", func(t *testing.T) {
		cmd := NewCommand(VerbFetch)
		cmd.AddString("")
		_, err := cmd.Encode()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValue)
	})
}

func TestParseCommand(t *testing.T) {
	cmd, err := ParseCommand("in1d id_0 id_1 false")
	require.NoError(t, err)
	assert.Equal(t, VerbIn1D, cmd.Verb())
	assert.Equal(t, []string{"id_0", "id_1", "false"}, cmd.Operands())

	cmd, err = ParseCommand("  info  ")
	require.NoError(t, err)
	assert.Equal(t, VerbInfo, cmd.Verb())
	assert.Empty(t, cmd.Operands())

	_, err = ParseCommand("   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValue)
}

func TestParseReply(t *testing.T) {
	t.Run("splits delimited segments", func(t *testing.T) {
		reply, err := ParseReply(&Message{Text: "created id_0 int64 3+created id_1 int64 3"})
		require.NoError(t, err)
		require.Equal(t, 2, reply.NumSegments())
		assert.Equal(t, "created id_0 int64 3", reply.Segment(0))
		assert.Equal(t, "created id_1 int64 3", reply.Segment(1))
	})

	t.Run("decodes created descriptors", func(t *testing.T) {
		reply, err := ParseReply(&Message{Text: "created id_7 float64 42"})
		require.NoError(t, err)
		desc, err := reply.Created(0)
		require.NoError(t, err)
		assert.Equal(t, "id_7", desc.Name)
		assert.Equal(t, Float64, desc.DType)
		assert.Equal(t, int64(42), desc.Size)
	})

	t.Run("carries the payload through", func(t *testing.T) {
		reply, err := ParseReply(&Message{Text: "data int64 2", Payload: []byte{1, 2}})
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 2}, reply.Payload())
	})

	t.Run("error replies keep the server message", func(t *testing.T) {
		_, err := ParseReply(&Message{Text: "Error: ValueError: unsupported dtype"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRemote)
		assert.Contains(t, err.Error(), "ValueError: unsupported dtype")
	})

	t.Run("empty reply is an error", func(t *testing.T) {
		_, err := ParseReply(&Message{Text: "  +  "})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRemote)
	})

	t.Run("malformed descriptors", func(t *testing.T) {
		for _, text := range []string{
			"created id_0",
			"deleted id_0 int64 3",
			"created id_0 complex128 3",
			"created id_0 int64 -1",
			"created id_0 int64 many",
		} {
			reply, err := ParseReply(&Message{Text: text})
			require.NoError(t, err)
			_, err = reply.Created(0)
			assert.ErrorIs(t, err, ErrRemote, "descriptor %q", text)
		}
	})

	t.Run("segment index out of range", func(t *testing.T) {
		reply, err := ParseReply(&Message{Text: "created id_0 int64 3"})
		require.NoError(t, err)
		_, err = reply.Created(1)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRemote)
	})
}

func TestFormatError(t *testing.T) {
	assert.Equal(t, "Error: ValueError: boom", FormatError(valueErrorf("boom")))
	assert.Equal(t, "Error: kaput", FormatError(errors.New("kaput")))

	_, err := ParseReply(&Message{Text: FormatError(typeErrorf("wrong kind"))})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRemote)
	assert.Contains(t, err.Error(), "TypeError: wrong kind")
}

func TestJoinSegments(t *testing.T) {
	assert.Equal(t, "a+b+c", JoinSegments("a", "b", "c"))
	assert.Equal(t, "solo", JoinSegments("solo"))
}
