// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Query-farm/arrayd-go/arraydtest"
)

func main() {
	server := arraydtest.NewServer()

	if len(os.Args) > 1 && os.Args[1] == "--tcp" {
		addr := "127.0.0.1:0"
		if len(os.Args) > 2 {
			addr = os.Args[2]
		}
		bound, err := server.Listen(addr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to listen: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("ADDR:%s\n", bound)
		os.Stdout.Sync()

		// Catch SIGTERM/SIGINT so the process exits cleanly and flushes
		// coverage data when built with -cover.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		<-sigCh
		server.Close()
		return
	}

	server.ServeStream(os.Stdin, os.Stdout)
}
