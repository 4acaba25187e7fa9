// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package arrayd

import (
	"fmt"
	"strconv"
	"strings"
)

// Reply is a decoded server reply: ordered non-empty text segments plus
// an optional binary payload.
type Reply struct {
	segments []string
	payload  []byte
}

// ParseReply decodes a reply message. An "Error: " reply becomes a
// KindRemote *Error carrying the server's message unchanged.
func ParseReply(msg *Message) (*Reply, error) {
	if body, ok := strings.CutPrefix(msg.Text, ErrorPrefix); ok {
		return nil, remoteError(body)
	}
	var segments []string
	for _, seg := range strings.Split(msg.Text, ReplyDelimiter) {
		seg = strings.TrimSpace(seg)
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	if len(segments) == 0 {
		return nil, remoteError("empty reply")
	}
	return &Reply{segments: segments, payload: msg.Payload}, nil
}

// NumSegments returns the number of reply segments.
func (r *Reply) NumSegments() int { return len(r.segments) }

// Segment returns reply segment i.
func (r *Reply) Segment(i int) string { return r.segments[i] }

// Payload returns the binary payload accompanying the reply, or nil.
func (r *Reply) Payload() []byte { return r.payload }

// SymbolDesc describes one server-resident array symbol.
type SymbolDesc struct {
	Name  string
	DType DType
	Size  int64
}

// Created parses reply segment i as a "created <name> <dtype> <size>"
// descriptor.
func (r *Reply) Created(i int) (SymbolDesc, error) {
	if i >= len(r.segments) {
		return SymbolDesc{}, remoteError(fmt.Sprintf(
			"reply has %d segments, expected at least %d", len(r.segments), i+1))
	}
	return parseSymbolDesc(r.segments[i], MarkerCreated)
}

func parseSymbolDesc(seg, marker string) (SymbolDesc, error) {
	fields := strings.Fields(seg)
	if len(fields) != 4 || fields[0] != marker {
		return SymbolDesc{}, remoteError(fmt.Sprintf("malformed %s segment %q", marker, seg))
	}
	dt, err := ParseDType(fields[2])
	if err != nil {
		return SymbolDesc{}, remoteError(fmt.Sprintf("segment %q: unknown dtype %q", seg, fields[2]))
	}
	size, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil || size < 0 {
		return SymbolDesc{}, remoteError(fmt.Sprintf("segment %q: bad size %q", seg, fields[3]))
	}
	return SymbolDesc{Name: fields[1], DType: dt, Size: size}, nil
}

// FormatCreated renders a "created" descriptor segment. Servers use the
// Format helpers to produce replies; the client only parses them.
func FormatCreated(name string, dt DType, size int64) string {
	return fmt.Sprintf("%s %s %s %d", MarkerCreated, name, dt, size)
}

// FormatSymbol renders a "symbol" descriptor segment for info replies.
func FormatSymbol(name string, dt DType, size int64) string {
	return fmt.Sprintf("%s %s %s %d", MarkerSymbol, name, dt, size)
}

// FormatData renders the text segment accompanying a fetch payload.
func FormatData(dt DType, size int64) string {
	return fmt.Sprintf("%s %s %d", MarkerData, dt, size)
}

// JoinSegments joins reply segments with the reply delimiter.
func JoinSegments(segments ...string) string {
	return strings.Join(segments, ReplyDelimiter)
}

// FormatError renders an error reply. An *Error keeps its kind name in
// the text so clients see the server-side taxonomy.
func FormatError(err error) string {
	if e, ok := err.(*Error); ok && e.Kind != "" {
		return ErrorPrefix + string(e.Kind) + ": " + e.Message
	}
	return ErrorPrefix + err.Error()
}
