// Package toolrpc provides a framework for building line-oriented
// JSON-RPC servers that expose tools, resources, and prompts over
// standard streams.
//
// Basic usage:
//
//	srv := toolrpc.NewServer(toolrpc.ServerInfo{
//	    Name:    "my-server",
//	    Version: "1.0.0",
//	})
//
//	type SearchInput struct {
//	    Query string `json:"query" jsonschema:"required"`
//	}
//
//	srv.Tool("search").
//	    Description("Search for items").
//	    Handler(func(ctx context.Context, input SearchInput) ([]string, error) {
//	        return []string{"result1", "result2"}, nil
//	    })
//
//	toolrpc.ServeStdio(ctx, srv)
package toolrpc

import (
	"context"
	"time"

	"github.com/felixgeelhaar/toolrpc/dispatch"
	"github.com/felixgeelhaar/toolrpc/middleware"
	"github.com/felixgeelhaar/toolrpc/protocol"
	"github.com/felixgeelhaar/toolrpc/registry"
	"github.com/felixgeelhaar/toolrpc/transport"
)

// Re-export core types for convenience

// ServerInfo contains server metadata exposed to clients.
type ServerInfo = dispatch.Info

// Handshake records what a client declared during initialize.
type Handshake = dispatch.Handshake

// ClientInfo identifies a connected client.
type ClientInfo = dispatch.ClientInfo

// Capabilities declares what features the server supports.
type Capabilities = registry.Capabilities

// Tool types
type ToolInfo = registry.ToolInfo

// Resource types
type ResourceContent = registry.ResourceContent
type ResourceInfo = registry.ResourceInfo

// Prompt types
type PromptResult = registry.PromptResult
type PromptMessage = registry.PromptMessage
type PromptArgument = registry.PromptArgument
type PromptInfo = registry.PromptInfo
type TextContent = registry.TextContent
type ImageContent = registry.ImageContent

// Middleware types
type Middleware = middleware.Middleware
type MiddlewareHandlerFunc = middleware.HandlerFunc
type Logger = middleware.Logger
type LogField = middleware.Field
type RateLimitOption = middleware.RateLimitOption

// RateLimit re-exports for convenience.
var (
	RateLimit            = middleware.RateLimit
	RateLimitByMethod    = middleware.RateLimitByMethod
	WithRateLimitKeyFunc = middleware.WithRateLimitKeyFunc
	WithRateLimitLogger  = middleware.WithRateLimitLogger
)

// SizeLimit re-exports for convenience.
type SizeLimitOption = middleware.SizeLimitOption

var (
	SizeLimit           = middleware.SizeLimit
	WithSizeLimitLogger = middleware.WithSizeLimitLogger
)

// Size limit presets.
const (
	KB = middleware.KB
	MB = middleware.MB
)

// Server is the toolrpc server instance: a registry of tools,
// resources, and prompts plus the identity it reports to clients.
type Server struct {
	info  ServerInfo
	reg   *registry.Registry
	setup []func(*Server) error
}

// Option configures a Server.
type Option func(*Server)

// WithRegistryLogger sets the logger the registry uses for
// registration traces.
func WithRegistryLogger(l Logger) Option {
	return func(s *Server) {
		s.reg = registry.New(registry.WithLogger(l))
	}
}

// WithSetup registers a callback that runs before the server starts
// serving. Setup callbacks run in registration order; the first error
// aborts startup.
func WithSetup(fn func(*Server) error) Option {
	return func(s *Server) {
		s.setup = append(s.setup, fn)
	}
}

// NewServer creates a new server with the given info and options.
func NewServer(info ServerInfo, opts ...Option) *Server {
	s := &Server{
		info: info,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.reg == nil {
		s.reg = registry.New()
	}

	return s
}

// Tool starts building a new tool with the given name.
func (s *Server) Tool(name string) *registry.ToolBuilder {
	return s.reg.Tool(name)
}

// Resource starts building a new resource with the given URI template.
func (s *Server) Resource(uriTemplate string) *registry.ResourceBuilder {
	return s.reg.Resource(uriTemplate)
}

// Prompt starts building a new prompt with the given name.
func (s *Server) Prompt(name string) *registry.PromptBuilder {
	return s.reg.Prompt(name)
}

// Registry returns the server's registry for direct access.
func (s *Server) Registry() *registry.Registry {
	return s.reg
}

// Capabilities returns the capability set derived from current
// registrations.
func (s *Server) Capabilities() Capabilities {
	return s.reg.Capabilities()
}

// Info returns the server's identity.
func (s *Server) Info() ServerInfo {
	return s.info
}

// Serve runs the server over the default stdio transport. It is
// shorthand for ServeStdio(ctx, s, opts...).
func (s *Server) Serve(ctx context.Context, opts ...ServeOption) error {
	return ServeStdio(ctx, s, opts...)
}

func (s *Server) runSetup() error {
	for _, fn := range s.setup {
		if err := fn(s); err != nil {
			return err
		}
	}
	return nil
}

// ServeOption configures how the server is run.
type ServeOption func(*serveOptions)

type serveOptions struct {
	middleware []Middleware
	logger     Logger
	transport  *transport.Stdio
}

// WithMiddleware adds middleware to the request handling chain.
func WithMiddleware(m ...Middleware) ServeOption {
	return func(o *serveOptions) {
		o.middleware = append(o.middleware, m...)
	}
}

// WithLogger sets the logger for the dispatcher and middleware.
func WithLogger(l Logger) ServeOption {
	return func(o *serveOptions) {
		o.logger = l
	}
}

// WithTransport sets a pre-built stdio transport, typically one backed
// by custom streams.
func WithTransport(t *transport.Stdio) ServeOption {
	return func(o *serveOptions) {
		o.transport = t
	}
}

// ServeStdio runs the server over the stdio transport. It blocks until
// the input stream is exhausted, the context is canceled, or an error
// occurs.
func ServeStdio(ctx context.Context, srv *Server, opts ...ServeOption) error {
	options := &serveOptions{
		logger: middleware.NopLogger{},
	}
	for _, opt := range opts {
		opt(options)
	}

	if err := srv.runSetup(); err != nil {
		return err
	}

	d := dispatch.New(srv.reg, srv.info,
		dispatch.WithMiddleware(options.middleware...),
		dispatch.WithLogger(options.logger),
	)

	t := options.transport
	if t == nil {
		t = transport.NewStdio()
	}
	defer t.Close()

	return t.Serve(ctx, d)
}

// Middleware re-exports

// Chain composes multiple middleware into a single middleware.
func Chain(middlewares ...Middleware) Middleware {
	return middleware.Chain(middlewares...)
}

// Recover returns middleware that catches panics and converts them to
// internal errors.
func Recover() Middleware {
	return middleware.Recover()
}

// RecoverWithHandler returns middleware that catches panics and calls
// the provided handler.
func RecoverWithHandler(handler func(ctx context.Context, req *protocol.Request, panicVal any) (*protocol.Response, error)) Middleware {
	return middleware.RecoverWithHandler(handler)
}

// Timeout returns middleware that enforces a request deadline.
func Timeout(d time.Duration) Middleware {
	return middleware.Timeout(d)
}

// RequestID returns middleware that injects a unique request ID into
// the context.
func RequestID() Middleware {
	return middleware.RequestID()
}

// RequestIDFromContext returns the request ID from the context, or
// empty string if not set.
func RequestIDFromContext(ctx context.Context) string {
	return middleware.RequestIDFromContext(ctx)
}

// Logging returns middleware that logs request details.
func Logging(logger Logger) Middleware {
	return middleware.Logging(logger)
}

// DefaultMiddleware returns the recommended production middleware stack.
func DefaultMiddleware(logger Logger) []Middleware {
	return middleware.DefaultStack(logger)
}

// DefaultMiddlewareWithTimeout returns the default stack with a timeout
// middleware.
func DefaultMiddlewareWithTimeout(logger Logger, timeout time.Duration) []Middleware {
	return middleware.DefaultStackWithTimeout(logger, timeout)
}

// LogF creates a new log field with the given key and value.
func LogF(key string, value any) LogField {
	return middleware.F(key, value)
}
