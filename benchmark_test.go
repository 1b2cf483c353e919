// Package toolrpc provides benchmarks for key operations.
package toolrpc_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/felixgeelhaar/toolrpc"
	"github.com/felixgeelhaar/toolrpc/dispatch"
	"github.com/felixgeelhaar/toolrpc/middleware"
	"github.com/felixgeelhaar/toolrpc/protocol"
)

// BenchmarkToolExecution measures tool execution performance.
func BenchmarkToolExecution(b *testing.B) {
	type AddInput struct {
		A int `json:"a"`
		B int `json:"b"`
	}

	srv := toolrpc.NewServer(toolrpc.ServerInfo{
		Name:    "benchmark-test",
		Version: "1.0.0",
	})

	srv.Tool("add").
		Description("Add two numbers").
		Handler(func(input AddInput) (int, error) {
			return input.A + input.B, nil
		})

	tool, _ := srv.Registry().GetTool("add")
	input := json.RawMessage(`{"a":2,"b":3}`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := tool.Execute(context.Background(), input)
		if err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkDispatch measures end-to-end request dispatch.
func BenchmarkDispatch(b *testing.B) {
	type AddInput struct {
		A int `json:"a"`
		B int `json:"b"`
	}

	srv := toolrpc.NewServer(toolrpc.ServerInfo{
		Name:    "benchmark-test",
		Version: "1.0.0",
	})

	srv.Tool("add").
		Handler(func(input AddInput) (int, error) {
			return input.A + input.B, nil
		})

	d := dispatch.New(srv.Registry(), srv.Info())

	req := &protocol.Request{
		JSONRPC: protocol.JSONRPCVersion,
		ID:      json.RawMessage(`1`),
		Method:  protocol.MethodToolsCall,
		Params:  json.RawMessage(`{"name":"add","arguments":{"a":2,"b":3}}`),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		resp := d.HandleRequest(context.Background(), req)
		if resp.Error != nil {
			b.Fatal(resp.Error)
		}
	}
}

// BenchmarkMiddlewareChain measures middleware chain overhead.
func BenchmarkMiddlewareChain(b *testing.B) {
	baseHandler := func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
		return protocol.NewResponse(req.ID, map[string]any{"status": "ok"}), nil
	}

	req := &protocol.Request{
		JSONRPC: protocol.JSONRPCVersion,
		ID:      json.RawMessage(`1`),
		Method:  "test",
	}

	b.Run("no_middleware", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := baseHandler(context.Background(), req); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("default_stack", func(b *testing.B) {
		h := middleware.Chain(middleware.DefaultStack(middleware.NopLogger{})...)(baseHandler)

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := h(context.Background(), req); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// BenchmarkSchemaValidation measures input validation overhead.
func BenchmarkSchemaValidation(b *testing.B) {
	type StrictInput struct {
		Query string `json:"query" jsonschema:"required"`
		Limit int    `json:"limit"`
	}

	srv := toolrpc.NewServer(toolrpc.ServerInfo{Name: "bench", Version: "1.0.0"})
	srv.Tool("strict").
		ValidateInput().
		Handler(func(input StrictInput) (string, error) {
			return input.Query, nil
		})

	tool, _ := srv.Registry().GetTool("strict")
	input := json.RawMessage(`{"query":"go","limit":10}`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := tool.Execute(context.Background(), input); err != nil {
			b.Fatal(err)
		}
	}
}
