// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package arrayd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultAddr returns the server address from the ARRAYD_ADDR
// environment variable, or "localhost:5555" when unset.
func DefaultAddr() string {
	if addr := os.Getenv("ARRAYD_ADDR"); addr != "" {
		return addr
	}
	return "localhost:5555"
}

// Client issues arrayd commands through an Executor. All operations in
// this package reach the server through a Client held by their handles.
type Client struct {
	exec        Executor
	log         *slog.Logger
	hook        CallHook
	serverID    string
	dialTimeout time.Duration
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithLogger sets the logger for call diagnostics. Defaults to
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithCallHook installs an observability hook invoked around each
// remote call.
func WithCallHook(h CallHook) Option {
	return func(c *Client) { c.hook = h }
}

// WithDialTimeout bounds connection establishment, including backoff
// retries. Only Dial uses it. Default 10s.
func WithDialTimeout(d time.Duration) Option {
	return func(c *Client) { c.dialTimeout = d }
}

func newClient(exec Executor, opts ...Option) *Client {
	c := &Client{
		exec:        exec,
		log:         slog.Default(),
		dialTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClient wraps an existing executor, typically an in-process one.
// No connect handshake is performed.
func NewClient(exec Executor, opts ...Option) *Client {
	return newClient(exec, opts...)
}

// Dial connects to a server over TCP and performs the connect
// handshake. An empty addr uses [DefaultAddr]. Dialing retries with
// exponential backoff until the dial timeout; commands never retry.
func Dial(ctx context.Context, addr string, opts ...Option) (*Client, error) {
	c := newClient(nil, opts...)
	if addr == "" {
		addr = DefaultAddr()
	}
	conn, err := dialConn(ctx, addr, c.dialTimeout)
	if err != nil {
		return nil, err
	}
	c.exec = newConnExecutor(conn)
	if err := c.connect(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// connect issues the version handshake and records the server identity.
func (c *Client) connect(ctx context.Context) error {
	cmd := NewCommand(VerbConnect)
	cmd.AddString(ProtocolVersion)
	reply, err := c.call(ctx, cmd)
	if err != nil {
		return err
	}
	fields := strings.Fields(reply.Segment(0))
	if len(fields) != 3 || fields[0] != MarkerConnected {
		return remoteError("malformed connect reply " + reply.Segment(0))
	}
	c.serverID = fields[1]
	c.log.Debug("connected", "server_id", c.serverID, "version", fields[2])
	return nil
}

// ServerID returns the server identifier from the connect handshake, or
// empty for clients built directly over an executor.
func (c *Client) ServerID() string { return c.serverID }

// Close sends a best-effort disconnect and closes the transport if it
// is closeable.
func (c *Client) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, _ = c.call(ctx, NewCommand(VerbDisconnect))
	if closer, ok := c.exec.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// ServerInfo lists the server's symbol table.
func (c *Client) ServerInfo(ctx context.Context) ([]SymbolDesc, error) {
	reply, err := c.call(ctx, NewCommand(VerbInfo))
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(reply.Segment(0), MarkerSymbols) {
		return nil, nil
	}
	out := make([]SymbolDesc, 0, reply.NumSegments())
	for i := 0; i < reply.NumSegments(); i++ {
		desc, err := parseSymbolDesc(reply.Segment(i), MarkerSymbol)
		if err != nil {
			return nil, err
		}
		out = append(out, desc)
	}
	return out, nil
}

// call performs one complete remote round trip: encode, hook start,
// submit, decode, hook end. Hook panics are isolated so observability
// can never fail a call.
func (c *Client) call(ctx context.Context, cmd *Command) (*Reply, error) {
	text, err := cmd.Encode()
	if err != nil {
		return nil, err
	}

	info := CallInfo{
		Verb:      cmd.Verb(),
		RequestID: uuid.NewString(),
		ServerID:  c.serverID,
	}
	stats := &CallStats{RequestBytes: int64(len(text) + len(cmd.Payload()))}

	var token HookToken
	hookActive := false
	if c.hook != nil {
		func() {
			defer func() {
				if rv := recover(); rv != nil {
					c.log.Error("call hook start panic", "err", rv)
				}
			}()
			var hookCtx context.Context
			hookCtx, token = c.hook.OnCallStart(ctx, info)
			if hookCtx != nil {
				ctx = hookCtx
			}
			hookActive = true
		}()
	}

	start := time.Now()
	reply, callErr := c.roundTrip(ctx, &Message{Text: text, Payload: cmd.Payload()}, stats)
	elapsed := time.Since(start)

	if hookActive {
		func() {
			defer func() {
				if rv := recover(); rv != nil {
					c.log.Error("call hook end panic", "err", rv)
				}
			}()
			c.hook.OnCallEnd(ctx, token, info, stats, callErr)
		}()
	}

	if callErr != nil {
		c.log.Debug("command failed",
			"verb", info.Verb, "request_id", info.RequestID, "elapsed", elapsed, "err", callErr)
		return nil, callErr
	}
	c.log.Debug("command ok",
		"verb", info.Verb, "request_id", info.RequestID, "elapsed", elapsed,
		"segments", reply.NumSegments())
	return reply, nil
}

func (c *Client) roundTrip(ctx context.Context, req *Message, stats *CallStats) (*Reply, error) {
	msg, err := c.exec.Submit(ctx, req)
	if err != nil {
		return nil, err
	}
	stats.ReplyBytes = int64(len(msg.Text) + len(msg.Payload))
	return ParseReply(msg)
}
