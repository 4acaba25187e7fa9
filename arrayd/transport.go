// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package arrayd

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Executor is the remote execution seam: submit one command message,
// receive one reply message. Implementations must treat each Submit as
// a complete synchronous round trip. The arraydtest package provides an
// in-process implementation; [Dial] provides the TCP one.
type Executor interface {
	Submit(ctx context.Context, req *Message) (*Message, error)
}

// connExecutor runs the framed protocol over a single byte-stream
// connection. A mutex serializes round trips so a reply is always read
// by the caller that wrote the command.
type connExecutor struct {
	mu   sync.Mutex
	conn net.Conn
}

func newConnExecutor(conn net.Conn) *connExecutor {
	return &connExecutor{conn: conn}
}

func (e *connExecutor) Submit(ctx context.Context, req *Message) (*Message, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = e.conn.SetDeadline(deadline)
	} else {
		_ = e.conn.SetDeadline(time.Time{})
	}

	if err := WriteMessage(e.conn, req); err != nil {
		return nil, fmt.Errorf("writing command: %w", err)
	}
	msg, err := ReadMessage(e.conn)
	if err != nil {
		if err == io.EOF {
			// The server closed between command and reply.
			return nil, io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("reading reply: %w", err)
	}
	return msg, nil
}

func (e *connExecutor) Close() error {
	return e.conn.Close()
}

// dialConn dials addr with exponential backoff until timeout elapses or
// ctx is done. Only connection establishment retries; commands never do.
func dialConn(ctx context.Context, addr string, timeout time.Duration) (net.Conn, error) {
	var conn net.Conn
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 50 * time.Millisecond
	bo.MaxInterval = time.Second
	bo.MaxElapsedTime = timeout

	op := func() error {
		d := net.Dialer{}
		c, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return nil, fmt.Errorf("dialing %s: %w", addr, err)
	}
	return conn, nil
}
