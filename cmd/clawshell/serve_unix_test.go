//go:build !windows

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deixis/clawshell/internal/dispatch"
)

// rpcResponse is the part of a JSON-RPC response the stdio test reads.
type rpcResponse struct {
	ID     int `json:"id"`
	Result struct {
		StructuredContent dispatch.CommandResult `json:"structuredContent"`
	} `json:"result"`
}

// stdioPipes points os.Stdin and os.Stdout at pipes for the duration of
// the test. It returns the client ends.
func stdioPipes(t *testing.T) (toServer io.Writer, fromServer io.Reader) {
	t.Helper()
	inR, inW, err := os.Pipe()
	require.NoError(t, err)
	outR, outW, err := os.Pipe()
	require.NoError(t, err)

	stdin, stdout := os.Stdin, os.Stdout
	os.Stdin, os.Stdout = inR, outW
	t.Cleanup(func() {
		os.Stdin, os.Stdout = stdin, stdout
		for _, f := range []*os.File{inR, inW, outR, outW} {
			_ = f.Close()
		}
	})
	return inW, outR
}

// awaitResponse reads newline-delimited messages until the response with
// the given id arrives.
func awaitResponse(sc *bufio.Scanner, id int) (rpcResponse, error) {
	for sc.Scan() {
		var msg rpcResponse
		if err := json.Unmarshal(sc.Bytes(), &msg); err != nil {
			continue
		}
		if msg.ID == id {
			return msg, nil
		}
	}
	if err := sc.Err(); err != nil {
		return rpcResponse{}, err
	}
	return rpcResponse{}, io.EOF
}

func TestServe_InterruptStopsDetachedGateway(t *testing.T) {
	bin := filepath.Join(t.TempDir(), "openclaw")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\nexec sleep 30\n"), 0o755))
	cfg := writeConfigWith(t, bin, "gateway:\n  port: 19002\n  detach: true\n")

	toServer, fromServer := stdioPipes(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	root := newRootCmd()
	root.SetArgs([]string{"--config", cfg, "serve"})
	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()

	pids := make(chan int, 1)
	go func() {
		sc := bufio.NewScanner(fromServer)
		fmt.Fprintln(toServer, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-06-18","capabilities":{},"clientInfo":{"name":"clawshell-test","version":"0"}}}`)
		if _, err := awaitResponse(sc, 1); err != nil {
			return
		}
		fmt.Fprintln(toServer, `{"jsonrpc":"2.0","method":"notifications/initialized","params":{}}`)
		fmt.Fprintln(toServer, `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"start_gateway","arguments":{}}}`)
		res, err := awaitResponse(sc, 2)
		if err != nil {
			return
		}
		var pid int
		if _, err := fmt.Sscanf(res.Result.StructuredContent.Stdout, "Gateway started (pid %d)", &pid); err == nil {
			pids <- pid
		}
	}()

	var pid int
	select {
	case pid = <-pids:
	case err := <-done:
		t.Fatalf("serve returned before the gateway started: %v", err)
	case <-time.After(10 * time.Second):
		t.Fatal("no start_gateway response")
	}
	require.NoError(t, syscall.Kill(pid, 0), "gateway should be running")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err, "an interrupt is a clean shutdown")
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not return after cancellation")
	}

	assert.ErrorIs(t, syscall.Kill(pid, 0), syscall.ESRCH, "gateway survived shutdown")
}
