// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package arraydtest_test

import (
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Query-farm/arrayd-go/arrayd"
	"github.com/Query-farm/arrayd-go/arraydtest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startServer(t *testing.T) (*arraydtest.Server, string) {
	t.Helper()
	server := arraydtest.NewServer()
	addr, err := server.Listen("127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { server.Close() })
	return server, addr
}

func dial(t *testing.T, addr string) *arrayd.Client {
	t.Helper()
	client, err := arrayd.Dial(context.Background(), addr, arrayd.WithDialTimeout(5*time.Second))
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestDialHandshake(t *testing.T) {
	server, addr := startServer(t)
	client := dial(t, addr)

	assert.Equal(t, server.Engine().ServerID(), client.ServerID())
	assert.NotEmpty(t, client.ServerID())
}

func TestTCPOperations(t *testing.T) {
	server, addr := startServer(t)
	client := dial(t, addr)
	ctx := context.Background()

	a, err := arrayd.NewArray(ctx, client, []int64{1, 3, 4, 3})
	require.NoError(t, err)
	b, err := arrayd.NewArray(ctx, client, []int64{3, 1, 2, 1})
	require.NoError(t, err)

	u, err := arrayd.Union1D(ctx, a, b)
	require.NoError(t, err)
	vals, err := arrayd.Values[int64](ctx, u)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4}, vals)

	descs, err := client.ServerInfo(ctx)
	require.NoError(t, err)
	assert.Len(t, descs, server.Engine().NumSymbols())

	t.Run("canceled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := arrayd.NewArray(cctx, client, []int64{1})
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestTCPLargePayload(t *testing.T) {
	_, addr := startServer(t)
	client := dial(t, addr)
	ctx := context.Background()

	in := make([]int64, 10_000)
	for i := range in {
		in[i] = int64(i % 97)
	}
	arr, err := arrayd.NewArray(ctx, client, in)
	require.NoError(t, err)

	out, err := arrayd.Values[int64](ctx, arr)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestConnectionSurvivesCommandErrors(t *testing.T) {
	_, addr := startServer(t)
	client := dial(t, addr)
	ctx := context.Background()

	a, err := arrayd.NewArray(ctx, client, []int64{1, 2, 3})
	require.NoError(t, err)
	oob, err := arrayd.NewArray(ctx, client, []int64{99})
	require.NoError(t, err)

	_, err = a.Index(ctx, oob)
	require.Error(t, err)
	assert.ErrorIs(t, err, arrayd.ErrRemote)

	// The same connection keeps serving after a command error.
	vals, err := arrayd.Values[int64](ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, vals)
}

func TestConcurrentClients(t *testing.T) {
	_, addr := startServer(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			client, err := arrayd.Dial(ctx, addr, arrayd.WithDialTimeout(5*time.Second))
			if !assert.NoError(t, err) {
				return
			}
			defer client.Close()

			a, err := arrayd.NewArray(ctx, client, []int64{n, n + 1})
			if !assert.NoError(t, err) {
				return
			}
			b, err := arrayd.NewArray(ctx, client, []int64{n + 1, n + 2})
			if !assert.NoError(t, err) {
				return
			}
			u, err := arrayd.Union1D(ctx, a, b)
			if !assert.NoError(t, err) {
				return
			}
			vals, err := arrayd.Values[int64](ctx, u)
			if !assert.NoError(t, err) {
				return
			}
			assert.Equal(t, []int64{n, n + 1, n + 2}, vals)
		}(int64(10 * i))
	}
	wg.Wait()
}

func TestServeStream(t *testing.T) {
	server := arraydtest.NewServer()
	clientEnd, serverEnd := net.Pipe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		server.ServeStream(serverEnd, serverEnd)
	}()

	require.NoError(t, arrayd.WriteMessage(clientEnd, &arrayd.Message{Text: "connect 1"}))
	msg, err := arrayd.ReadMessage(clientEnd)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(msg.Text, arrayd.MarkerConnected), "reply %q", msg.Text)

	require.NoError(t, arrayd.WriteMessage(clientEnd, &arrayd.Message{Text: "create int64 2"}))
	msg, err = arrayd.ReadMessage(clientEnd)
	require.NoError(t, err)
	assert.Equal(t, "created id_0 int64 2", msg.Text)

	require.NoError(t, clientEnd.Close())
	<-done
	serverEnd.Close()
}

func BenchmarkNewArray(b *testing.B) {
	engine := arraydtest.NewEngine()
	client := arrayd.NewClient(engine.Executor())
	ctx := context.Background()

	values := make([]int64, 1000)
	for i := range values {
		values[i] = int64(i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		arr, err := arrayd.NewArray(ctx, client, values)
		if err != nil {
			b.Fatal(err)
		}
		if err := arr.Release(ctx); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkUnion1DTCP(b *testing.B) {
	server := arraydtest.NewServer()
	addr, err := server.Listen("127.0.0.1:0")
	if err != nil {
		b.Fatal(err)
	}
	defer server.Close()

	ctx := context.Background()
	client, err := arrayd.Dial(ctx, addr)
	if err != nil {
		b.Fatal(err)
	}
	defer client.Close()

	left := make([]int64, 1000)
	right := make([]int64, 1000)
	for i := range left {
		left[i] = int64(i)
		right[i] = int64(i + 500)
	}
	a, err := arrayd.NewArray(ctx, client, left)
	if err != nil {
		b.Fatal(err)
	}
	ba, err := arrayd.NewArray(ctx, client, right)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		u, err := arrayd.Union1D(ctx, a, ba)
		if err != nil {
			b.Fatal(err)
		}
		if err := u.Release(ctx); err != nil {
			b.Fatal(err)
		}
	}
}
