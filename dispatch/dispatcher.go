package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/felixgeelhaar/toolrpc/middleware"
	"github.com/felixgeelhaar/toolrpc/protocol"
	"github.com/felixgeelhaar/toolrpc/registry"
)

// Info contains server identity exposed to clients during the
// initialize handshake.
type Info struct {
	Name    string
	Version string
}

// Handshake records what the client declared during initialize. The
// dispatcher performs no rejection on version mismatch; it records and
// passes through.
type Handshake struct {
	ProtocolVersion string          `json:"protocolVersion"`
	ClientInfo      ClientInfo      `json:"clientInfo"`
	Capabilities    json.RawMessage `json:"capabilities,omitempty"`
}

// ClientInfo identifies the connected client.
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithMiddleware installs middleware around the routing handler, in
// declaration order.
func WithMiddleware(m ...middleware.Middleware) Option {
	return func(d *Dispatcher) {
		d.middleware = append(d.middleware, m...)
	}
}

// WithLogger sets the logger for dispatch events.
func WithLogger(l middleware.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// Dispatcher routes well-formed requests by method name to the registry
// or to built-in handshake logic. Each request is handled
// independently; there is no persistent session state machine.
type Dispatcher struct {
	reg        *registry.Registry
	info       Info
	logger     middleware.Logger
	middleware []middleware.Middleware

	routes map[string]middleware.HandlerFunc
	handle middleware.HandlerFunc

	mu        sync.Mutex
	handshake *Handshake
}

// New creates a dispatcher over the given registry. The routing table
// is fixed at construction; unknown methods yield METHOD_NOT_FOUND.
func New(reg *registry.Registry, info Info, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		reg:    reg,
		info:   info,
		logger: middleware.NopLogger{},
	}

	for _, opt := range opts {
		opt(d)
	}

	d.routes = map[string]middleware.HandlerFunc{
		protocol.MethodInitialize:    d.handleInitialize,
		protocol.MethodInitialized:   d.handleInitialized,
		protocol.MethodPing:          d.handlePing,
		protocol.MethodToolsList:     d.handleToolsList,
		protocol.MethodToolsCall:     d.handleToolsCall,
		protocol.MethodResourcesList: d.handleResourcesList,
		protocol.MethodResourcesRead: d.handleResourcesRead,
		protocol.MethodPromptsList:   d.handlePromptsList,
		protocol.MethodPromptsGet:    d.handlePromptsGet,
	}

	d.handle = middleware.Chain(d.middleware...)(d.route)

	return d
}

// Client returns the handshake recorded by the last initialize request,
// if any.
func (d *Dispatcher) Client() (Handshake, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.handshake == nil {
		return Handshake{}, false
	}
	return *d.handshake, true
}

// HandleRequest dispatches a syntactically well-formed request and
// always returns a correlated response; parse failures are handled one
// layer below, at the transport. Nothing raised by a handler escapes:
// every failure path is converted into the response's error member.
// Requests without an identifier are notifications: they are dispatched
// but produce no response (nil).
func (d *Dispatcher) HandleRequest(ctx context.Context, req *protocol.Request) (resp *protocol.Response) {
	defer func() {
		if r := recover(); r != nil {
			if req.IsNotification() {
				resp = nil
				return
			}
			resp = protocol.NewErrorResponse(req.ID,
				protocol.NewInternalError(fmt.Sprintf("panic: %v", r)).WithData(map[string]any{
					"panic": fmt.Sprint(r),
					"stack": string(debug.Stack()),
				}))
		}
	}()

	out, err := d.handle(ctx, req)

	if req.IsNotification() {
		return nil
	}

	if err != nil {
		var rpcErr *protocol.Error
		if !errors.As(err, &rpcErr) {
			rpcErr = protocol.NewInternalError(err.Error())
		}
		return protocol.NewErrorResponse(req.ID, rpcErr)
	}

	if out == nil {
		return protocol.NewErrorResponse(req.ID,
			protocol.NewInternalError("handler produced no response"))
	}

	return out
}

// route is the innermost handler: exact, case-sensitive method lookup.
func (d *Dispatcher) route(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	fn, ok := d.routes[req.Method]
	if !ok {
		return nil, protocol.NewMethodNotFound("method not found: "+req.Method).
			WithData(map[string]any{"method": req.Method})
	}
	return fn(ctx, req)
}

func (d *Dispatcher) handleInitialize(_ context.Context, req *protocol.Request) (*protocol.Response, error) {
	var hs Handshake
	if len(req.Params) > 0 {
		// Pass-through negotiation: a client speaking an unknown
		// revision is recorded, not rejected.
		if err := json.Unmarshal(req.Params, &hs); err != nil {
			return nil, protocol.NewInvalidParams(err.Error())
		}
	}

	d.mu.Lock()
	d.handshake = &hs
	d.mu.Unlock()

	d.logger.Debug("initialize",
		middleware.F("client", hs.ClientInfo.Name),
		middleware.F("protocol_version", hs.ProtocolVersion),
	)

	caps := d.reg.Capabilities()
	capabilities := make(map[string]any)
	if caps.Tools {
		capabilities["tools"] = map[string]any{}
	}
	if caps.Resources {
		capabilities["resources"] = map[string]any{}
	}
	if caps.Prompts {
		capabilities["prompts"] = map[string]any{}
	}

	result := map[string]any{
		"protocolVersion": protocol.Version,
		"serverInfo": map[string]any{
			"name":    d.info.Name,
			"version": d.info.Version,
		},
		"capabilities": capabilities,
	}

	return protocol.NewResponse(req.ID, result), nil
}

func (d *Dispatcher) handleInitialized(_ context.Context, req *protocol.Request) (*protocol.Response, error) {
	// Normally a notification; answer with an empty result if the
	// client attached an identifier anyway.
	return protocol.NewResponse(req.ID, map[string]any{}), nil
}

func (d *Dispatcher) handlePing(_ context.Context, req *protocol.Request) (*protocol.Response, error) {
	return protocol.NewResponse(req.ID, map[string]any{}), nil
}

func (d *Dispatcher) handleToolsList(_ context.Context, req *protocol.Request) (*protocol.Response, error) {
	tools := d.reg.Tools()

	toolList := make([]map[string]any, 0, len(tools))
	for _, t := range tools {
		toolList = append(toolList, map[string]any{
			"name":        t.Name,
			"description": t.Description,
			"inputSchema": t.InputSchema,
		})
	}

	return protocol.NewResponse(req.ID, map[string]any{"tools": toolList}), nil
}

func (d *Dispatcher) handleToolsCall(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	var params struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return nil, protocol.NewInvalidParams(err.Error())
	}

	tool, ok := d.reg.GetTool(params.Name)
	if !ok {
		return nil, protocol.NewToolExecutionError("tool not found: "+params.Name).
			WithData(map[string]any{"tool": params.Name})
	}

	result, err := tool.Execute(ctx, params.Arguments)
	if err != nil {
		var rpcErr *protocol.Error
		if errors.As(err, &rpcErr) {
			return nil, rpcErr
		}
		return nil, protocol.NewToolExecutionError(
			fmt.Sprintf("tool %q: %v", params.Name, err)).
			WithData(map[string]any{"tool": params.Name})
	}

	return protocol.NewResponse(req.ID, result), nil
}

func (d *Dispatcher) handleResourcesList(_ context.Context, req *protocol.Request) (*protocol.Response, error) {
	resources := d.reg.Resources()

	resourceList := make([]map[string]any, 0, len(resources))
	for _, r := range resources {
		item := map[string]any{
			"uri":  r.URITemplate,
			"name": r.Name,
		}
		if r.Description != "" {
			item["description"] = r.Description
		}
		if r.MimeType != "" {
			item["mimeType"] = r.MimeType
		}
		resourceList = append(resourceList, item)
	}

	return protocol.NewResponse(req.ID, map[string]any{"resources": resourceList}), nil
}

func (d *Dispatcher) handleResourcesRead(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	var params struct {
		URI string `json:"uri"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return nil, protocol.NewInvalidParams(err.Error())
	}

	resource, ok := d.reg.FindResourceForURI(params.URI)
	if !ok {
		return nil, protocol.NewResourceNotFound("resource not found: " + params.URI)
	}

	content, err := resource.Read(ctx, params.URI)
	if err != nil {
		var rpcErr *protocol.Error
		if errors.As(err, &rpcErr) {
			return nil, rpcErr
		}
		return nil, protocol.NewResourceUnavailable(
			fmt.Sprintf("resource %q unavailable: %v", params.URI, err))
	}

	item := map[string]any{
		"uri":      content.URI,
		"mimeType": content.MimeType,
		"text":     content.Text,
	}
	if content.Blob != "" {
		item["blob"] = content.Blob
	}

	return protocol.NewResponse(req.ID, map[string]any{
		"contents": []map[string]any{item},
	}), nil
}

func (d *Dispatcher) handlePromptsList(_ context.Context, req *protocol.Request) (*protocol.Response, error) {
	prompts := d.reg.Prompts()

	promptList := make([]map[string]any, 0, len(prompts))
	for _, p := range prompts {
		item := map[string]any{
			"name": p.Name,
		}
		if p.Description != "" {
			item["description"] = p.Description
		}
		if len(p.Arguments) > 0 {
			args := make([]map[string]any, 0, len(p.Arguments))
			for _, arg := range p.Arguments {
				argItem := map[string]any{
					"name":     arg.Name,
					"required": arg.Required,
				}
				if arg.Description != "" {
					argItem["description"] = arg.Description
				}
				args = append(args, argItem)
			}
			item["arguments"] = args
		}
		promptList = append(promptList, item)
	}

	return protocol.NewResponse(req.ID, map[string]any{"prompts": promptList}), nil
}

func (d *Dispatcher) handlePromptsGet(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	var params struct {
		Name      string            `json:"name"`
		Arguments map[string]string `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return nil, protocol.NewInvalidParams(err.Error())
	}

	prompt, ok := d.reg.GetPrompt(params.Name)
	if !ok {
		return nil, protocol.NewPromptNotFound("prompt not found: " + params.Name)
	}

	result, err := prompt.Get(ctx, params.Arguments)
	if err != nil {
		var rpcErr *protocol.Error
		if errors.As(err, &rpcErr) {
			return nil, rpcErr
		}
		return nil, protocol.NewInternalError(err.Error())
	}

	response := map[string]any{
		"messages": result.Messages,
	}
	if result.Description != "" {
		response["description"] = result.Description
	}

	return protocol.NewResponse(req.ID, response), nil
}
