// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package arrayd

import (
	"context"
	"fmt"
)

// Strings is a handle to a segmented string array held on the server.
// It pairs an int64 offsets array with a uint8 byte array: string i
// spans bytes[offsets[i]:offsets[i+1]], and the last string runs to the
// end of the byte array. There are no terminators between strings.
type Strings struct {
	offsets *Array
	bytes   *Array
	size    int64
}

// Offsets returns the int64 byte-offset array.
func (s *Strings) Offsets() *Array { return s.offsets }

// Bytes returns the uint8 packed-bytes array.
func (s *Strings) Bytes() *Array { return s.bytes }

// Len returns the number of strings.
func (s *Strings) Len() int64 { return s.size }

// ObjType returns [ObjTypeStrings].
func (s *Strings) ObjType() ObjType { return ObjTypeStrings }

func (s *Strings) String() string {
	return fmt.Sprintf("strings(%s, %s, %d)", s.offsets.name, s.bytes.name, s.size)
}

func (s *Strings) owner() *Client { return s.offsets.c }

func (s *Strings) appendOperands(cmd *Command) {
	cmd.AddName(s.offsets.name)
	cmd.AddName(s.bytes.name)
}

func (s *Strings) validate() error {
	if err := s.offsets.validate(); err != nil {
		return err
	}
	return s.bytes.validate()
}

// WrapStrings builds a Strings handle from existing offsets and bytes
// arrays. offsets must be int64 and bytes uint8, both on one client.
func WrapStrings(offsets, bytes *Array) (*Strings, error) {
	if err := offsets.validate(); err != nil {
		return nil, err
	}
	if err := bytes.validate(); err != nil {
		return nil, err
	}
	if offsets.dtype != Int64 {
		return nil, typeErrorf("strings: offsets %s must be %s", offsets, Int64)
	}
	if bytes.dtype != Uint8 {
		return nil, typeErrorf("strings: bytes %s must be %s", bytes, Uint8)
	}
	if offsets.c != bytes.c {
		return nil, valueErrorf("strings: operands %s and %s belong to different clients", offsets, bytes)
	}
	return &Strings{offsets: offsets, bytes: bytes, size: offsets.size}, nil
}

// NewStrings uploads values to the server as an offsets/bytes pair and
// returns a handle to the stored copy.
func NewStrings(ctx context.Context, c *Client, values []string) (*Strings, error) {
	offsets := make([]int64, len(values))
	var total int64
	for i, v := range values {
		offsets[i] = total
		total += int64(len(v))
	}
	packed := make([]uint8, 0, total)
	for _, v := range values {
		packed = append(packed, v...)
	}
	offs, err := NewArray(ctx, c, offsets)
	if err != nil {
		return nil, err
	}
	bts, err := NewArray(ctx, c, packed)
	if err != nil {
		return nil, err
	}
	return &Strings{offsets: offs, bytes: bts, size: int64(len(values))}, nil
}

// stringsFrom wraps the offsets/bytes descriptor pair at reply segments
// i and i+1.
func (c *Client) stringsFrom(reply *Reply, i int) (*Strings, error) {
	offs, err := c.arrayFrom(reply, i)
	if err != nil {
		return nil, err
	}
	bts, err := c.arrayFrom(reply, i+1)
	if err != nil {
		return nil, err
	}
	if offs.dtype != Int64 || bts.dtype != Uint8 {
		return nil, remoteError(fmt.Sprintf(
			"strings reply pair has dtypes %s and %s", offs.dtype, bts.dtype))
	}
	return &Strings{offsets: offs, bytes: bts, size: offs.size}, nil
}

// Values fetches and reassembles the strings.
func (s *Strings) Values(ctx context.Context) ([]string, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	offsets, err := Values[int64](ctx, s.offsets)
	if err != nil {
		return nil, err
	}
	bytes, err := Values[uint8](ctx, s.bytes)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(offsets))
	for i, start := range offsets {
		end := int64(len(bytes))
		if i+1 < len(offsets) {
			end = offsets[i+1]
		}
		if start < 0 || start > end || end > int64(len(bytes)) {
			return nil, remoteError(fmt.Sprintf(
				"strings offsets out of range: [%d:%d] of %d bytes", start, end, len(bytes)))
		}
		out[i] = string(bytes[start:end])
	}
	return out, nil
}

// Release deletes both server-side component arrays.
func (s *Strings) Release(ctx context.Context) error {
	if err := s.offsets.Release(ctx); err != nil {
		return err
	}
	return s.bytes.Release(ctx)
}
