// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package arraydotel_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/Query-farm/arrayd-go/arrayd"
	arraydotel "github.com/Query-farm/arrayd-go/arrayd/otel"
)

func attrMap(attrs []attribute.KeyValue) map[string]any {
	out := make(map[string]any, len(attrs))
	for _, kv := range attrs {
		out[string(kv.Key)] = kv.Value.AsInterface()
	}
	return out
}

func TestHookRecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	cfg := arraydotel.DefaultConfig()
	cfg.TracerProvider = tp
	cfg.EnableMetrics = false
	cfg.CustomAttributes = []attribute.KeyValue{attribute.String("env", "test")}
	hook := arraydotel.NewHook(cfg)

	ctx := context.Background()
	info := arrayd.CallInfo{Verb: arrayd.VerbUnique, RequestID: "req-1", ServerID: "srv-1"}
	hctx, token := hook.OnCallStart(ctx, info)
	require.NotNil(t, token)
	assert.True(t, trace.SpanContextFromContext(hctx).IsValid())

	stats := &arrayd.CallStats{RequestBytes: 10, ReplyBytes: 20}
	hook.OnCallEnd(hctx, token, info, stats, nil)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "arrayd/unique", span.Name())
	assert.Equal(t, trace.SpanKindClient, span.SpanKind())
	assert.Equal(t, codes.Ok, span.Status().Code)

	attrs := attrMap(span.Attributes())
	assert.Equal(t, "arrayd", attrs["rpc.system"])
	assert.Equal(t, "unique", attrs["rpc.method"])
	assert.Equal(t, "req-1", attrs["rpc.arrayd.request_id"])
	assert.Equal(t, "srv-1", attrs["rpc.arrayd.server_id"])
	assert.Equal(t, "test", attrs["env"])
	assert.Equal(t, int64(10), attrs["rpc.arrayd.request_bytes"])
	assert.Equal(t, int64(20), attrs["rpc.arrayd.reply_bytes"])
}

func TestHookRecordsErrors(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	cfg := arraydotel.DefaultConfig()
	cfg.TracerProvider = tp
	cfg.EnableMetrics = false
	hook := arraydotel.NewHook(cfg)

	ctx := context.Background()
	info := arrayd.CallInfo{Verb: arrayd.VerbFetch, RequestID: "req-2"}
	hctx, token := hook.OnCallStart(ctx, info)

	remoteErr := &arrayd.Error{Kind: arrayd.KindRemote, Message: "no such symbol"}
	hook.OnCallEnd(hctx, token, info, &arrayd.CallStats{}, remoteErr)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Contains(t, span.Status().Description, "no such symbol")

	attrs := attrMap(span.Attributes())
	assert.Equal(t, "RuntimeError", attrs["rpc.arrayd.error_type"])

	require.Len(t, span.Events(), 1)
	assert.Equal(t, "exception", span.Events()[0].Name)
}

func TestHookTracingDisabled(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	cfg := arraydotel.DefaultConfig()
	cfg.TracerProvider = tp
	cfg.EnableTracing = false
	cfg.EnableMetrics = false
	hook := arraydotel.NewHook(cfg)

	ctx := context.Background()
	info := arrayd.CallInfo{Verb: arrayd.VerbInfo, RequestID: "req-3"}
	hctx, token := hook.OnCallStart(ctx, info)
	assert.False(t, trace.SpanContextFromContext(hctx).IsValid())

	hook.OnCallEnd(hctx, token, info, &arrayd.CallStats{}, nil)
	assert.Empty(t, recorder.Ended())
}

func TestHookRecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	cfg := arraydotel.DefaultConfig()
	cfg.MeterProvider = mp
	cfg.EnableTracing = false
	hook := arraydotel.NewHook(cfg)

	ctx := context.Background()
	info := arrayd.CallInfo{Verb: arrayd.VerbUnion, RequestID: "req-4"}
	for i := 0; i < 3; i++ {
		var err error
		if i == 2 {
			err = &arrayd.Error{Kind: arrayd.KindRemote, Message: "boom"}
		}
		hctx, token := hook.OnCallStart(ctx, info)
		hook.OnCallEnd(hctx, token, info, &arrayd.CallStats{}, err)
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	assert.Equal(t, "arrayd", rm.ScopeMetrics[0].Scope.Name)

	var requests int64
	sawDuration := false
	for _, m := range rm.ScopeMetrics[0].Metrics {
		switch m.Name {
		case "rpc.client.requests":
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				requests += dp.Value
			}
		case "rpc.client.duration":
			sawDuration = true
		}
	}
	assert.Equal(t, int64(3), requests)
	assert.True(t, sawDuration)
}
