// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package arraydtest

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"

	"github.com/Query-farm/arrayd-go/arrayd"
)

// Server serves the framed arrayd wire protocol over TCP. Tests bind an
// ephemeral port with Listen("127.0.0.1:0"); the arrayd-refserver
// binary also uses it for its --tcp mode.
type Server struct {
	engine *Engine
	log    *slog.Logger

	mu     sync.Mutex
	ln     net.Listener
	conns  map[net.Conn]struct{}
	closed bool
	wg     sync.WaitGroup
}

// NewServer returns a server over a fresh engine.
func NewServer() *Server {
	return &Server{
		engine: NewEngine(),
		log:    slog.Default(),
		conns:  make(map[net.Conn]struct{}),
	}
}

// Engine returns the underlying command engine.
func (s *Server) Engine() *Engine { return s.engine }

// Listen binds addr, starts accepting connections and returns the
// bound address.
func (s *Server) Listen(addr string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	s.wg.Add(1)
	go s.acceptLoop(ln)
	return ln.Addr().String(), nil
}

func (s *Server) acceptLoop(ln net.Listener) {
	defer s.wg.Done()
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		if !s.track(conn) {
			conn.Close()
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			s.ServeConn(conn)
		}()
	}
}

func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	conn.Close()
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

// ServeConn runs the command loop on one connection until the peer
// disconnects.
func (s *Server) ServeConn(conn net.Conn) {
	s.ServeStream(conn, conn)
}

// ServeStream runs the command loop on a reader/writer pair. Command
// failures produce error replies and the loop continues; only transport
// failures end it.
func (s *Server) ServeStream(r io.Reader, w io.Writer) {
	for {
		msg, err := arrayd.ReadMessage(r)
		if err != nil {
			if !isTransportClosed(err) {
				s.log.Error("read failed", "err", err)
			}
			return
		}
		s.log.Debug("dispatch", "cmd", msg.Text)
		reply := s.engine.Execute(msg)
		if err := arrayd.WriteMessage(w, reply); err != nil {
			if !isTransportClosed(err) {
				s.log.Error("write failed", "err", err)
			}
			return
		}
	}
}

// isTransportClosed reports whether err is an expected peer disconnect
// rather than a protocol failure.
func isTransportClosed(err error) bool {
	if err == io.EOF || errors.Is(err, net.ErrClosed) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "EOF")
}

// Close stops accepting, closes open connections and waits for the
// serving goroutines to finish.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	ln := s.ln
	conns := make([]net.Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	var err error
	if ln != nil {
		err = ln.Close()
	}
	for _, c := range conns {
		c.Close()
	}
	s.wg.Wait()
	return err
}
