// Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

// Package arrayd implements the Go client for the arrayd protocol, a
// text-command protocol for servers that hold large numeric and string
// arrays and execute set-theoretic operations on them.
//
// All data lives on the server. The client holds opaque handles and its
// only jobs are argument validation, command construction, and reply
// decoding. Heavy operations (dedup, sort, set algebra) run remotely;
// where the server has no specialized fast path for an element kind,
// the client composes one from other remote operations.
//
// # Handles
//
// Two handle kinds exist, forming the closed [Value] set:
//
//   - [Array]: a numeric array with a dtype tag (int64, float64, bool,
//     or uint8). Created by [NewArray], [Zeros], [ZerosLike], or as the
//     result of an operation.
//   - [Strings]: a segmented string array backed by two numeric arrays,
//     an int64 offsets array and a uint8 packed-bytes array. String i
//     spans bytes[offsets[i]:offsets[i+1]], the last string running to
//     the end of the bytes array.
//
// Handles are immutable. Releasing a handle deletes the remote symbol.
//
// # Operations
//
// The set operations mirror their numpy namesakes:
//
//	u, err := arrayd.Unique(ctx, a)
//	mask, err := arrayd.In1D(ctx, a, b, false)
//	cat, err := arrayd.Concatenate(ctx, []*arrayd.Array{a, b}, arrayd.ModeAppend)
//	r, err := arrayd.Union1D(ctx, a, b)
//	r, err := arrayd.Intersect1D(ctx, a, b, false)
//	r, err := arrayd.SetDiff1D(ctx, a, b, false)
//	r, err := arrayd.SetXor1D(ctx, a, b, false)
//
// Integer arrays use single-round-trip server fast paths. Other numeric
// dtypes use documented local compositions over [Unique], [Concatenate],
// [Argsort], indexing, and elementwise comparison, each step itself one
// remote round trip. Unique ordering is sorted ascending for int64 and
// implementation-defined but deterministic otherwise.
//
// # Wire protocol
//
// Commands are single text lines, "verb operand operand ...". Replies
// are non-empty segments joined by "+", most commonly symbol
// descriptors of the form "created <name> <dtype> <size>". Bulk data
// (array creation and fetch) travels as an Arrow IPC payload alongside
// the text, zstd-compressed above a size threshold. A reply beginning
// with "Error: " is a remote failure and is surfaced unchanged as an
// [Error] with kind [KindRemote]; the client never retries a command.
//
// # Errors
//
// Every validation or remote failure is an *[Error] with one of four
// kinds: [KindType] (wrong or mismatched handle kinds), [KindValue]
// (structurally valid but semantically invalid input),
// [KindNotImplemented] (recognized kind without an implementation
// path), and [KindRemote]. Validation always completes before the
// first remote call of an operation.
//
// # Transports
//
// [Dial] connects over TCP with the frame format produced by the
// reference server. [NewClient] accepts any [Executor], which the
// arraydtest package implements in-process for tests.
package arrayd
