// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package arrayd

import "context"

// CallHook provides observability callpoints around each remote call.
// Implementations must be safe for concurrent use.
type CallHook interface {
	OnCallStart(ctx context.Context, info CallInfo) (context.Context, HookToken)
	OnCallEnd(ctx context.Context, token HookToken, info CallInfo, stats *CallStats, err error)
}

// HookToken is an opaque value returned by OnCallStart and passed back
// to OnCallEnd. Only meaningful to the CallHook that created it.
type HookToken interface{}

// CallInfo carries call metadata passed to hooks.
type CallInfo struct {
	Verb      string // command verb
	RequestID string // client-generated request identifier
	ServerID  string // server identifier from the connect handshake, if any
}

// CallStats holds per-call I/O counters.
type CallStats struct {
	RequestBytes int64 // command text plus payload, before compression
	ReplyBytes   int64 // reply text plus payload, after decompression
}
