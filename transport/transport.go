// Package transport provides the line-oriented standard-stream
// transport.
package transport

import (
	"context"

	"github.com/felixgeelhaar/toolrpc/protocol"
)

// Handler processes incoming requests. It returns nil for
// notifications; every identified request yields exactly one response.
type Handler interface {
	HandleRequest(ctx context.Context, req *protocol.Request) *protocol.Response
}

// HandlerFunc is an adapter to allow ordinary functions as handlers.
type HandlerFunc func(ctx context.Context, req *protocol.Request) *protocol.Response

// HandleRequest calls f(ctx, req).
func (f HandlerFunc) HandleRequest(ctx context.Context, req *protocol.Request) *protocol.Response {
	return f(ctx, req)
}

// Transport defines the communication layer interface.
type Transport interface {
	// Serve starts the transport, blocking until the input stream is
	// exhausted, ctx is canceled, or an error occurs.
	Serve(ctx context.Context, handler Handler) error

	// Addr returns the transport's address description.
	Addr() string
}
