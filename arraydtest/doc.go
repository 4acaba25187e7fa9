// Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

// Package arraydtest provides a single-process reference implementation
// of the arrayd server protocol: an in-memory command engine, an
// in-process executor for unit tests, and a TCP server for integration
// tests and the arrayd-refserver binary.
//
// The engine implements every command the client emits, with the int64
// fast paths (sorted set results) and deterministic first-occurrence
// unique ordering for other dtypes. It is not distributed and holds all
// data in one symbol table; it exists to exercise clients, not to scale.
package arraydtest
