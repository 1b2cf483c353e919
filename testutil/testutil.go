// Package testutil provides testing utilities for toolrpc servers.
//
// The test client drives the real dispatcher in memory, so tests
// exercise the same routing and error mapping as production traffic
// without a transport in between.
//
// Example usage:
//
//	func TestMyServer(t *testing.T) {
//	    srv := toolrpc.NewServer(toolrpc.ServerInfo{Name: "test", Version: "1.0.0"})
//	    srv.Tool("greet").Handler(func(ctx context.Context, input GreetInput) (string, error) {
//	        return "Hello, " + input.Name, nil
//	    })
//
//	    tc := testutil.NewTestClient(t, srv)
//	    defer tc.Close()
//
//	    result, err := tc.CallTool("greet", map[string]any{"name": "World"})
//	    if err != nil {
//	        t.Fatalf("CallTool failed: %v", err)
//	    }
//	    if result != "Hello, World" {
//	        t.Errorf("got %v", result)
//	    }
//	}
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/felixgeelhaar/toolrpc"
	"github.com/felixgeelhaar/toolrpc/dispatch"
	"github.com/felixgeelhaar/toolrpc/protocol"
	"github.com/felixgeelhaar/toolrpc/transport"
)

// TestClient is an in-memory client for toolrpc servers.
type TestClient struct {
	t       testing.TB
	handler transport.Handler
	reqID   int64
	mu      sync.Mutex
}

// NewTestClient creates a test client wired to the given server's
// dispatcher and performs the initialize handshake.
func NewTestClient(t testing.TB, srv *toolrpc.Server, opts ...dispatch.Option) *TestClient {
	t.Helper()

	tc := &TestClient{
		t:       t,
		handler: dispatch.New(srv.Registry(), srv.Info(), opts...),
	}

	if _, err := tc.Initialize(); err != nil {
		t.Fatalf("failed to initialize server: %v", err)
	}

	return tc
}

// NewTestClientWithHandler creates a test client with a custom handler.
// This is useful for testing middleware wired through a dispatcher.
func NewTestClientWithHandler(t testing.TB, handler transport.Handler) *TestClient {
	t.Helper()
	return &TestClient{
		t:       t,
		handler: handler,
	}
}

// Close closes the test client. No cleanup is needed for the in-memory
// client; the method exists so call sites read like real client code.
func (tc *TestClient) Close() {}

func (tc *TestClient) nextID() json.RawMessage {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.reqID++
	return json.RawMessage(fmt.Sprintf("%d", tc.reqID))
}

// SendRequest sends a request and returns the response. The response
// is never nil for identified requests.
func (tc *TestClient) SendRequest(method string, params any) (*protocol.Response, error) {
	tc.t.Helper()

	var paramsData json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal params: %w", err)
		}
		paramsData = data
	}

	req := &protocol.Request{
		JSONRPC: protocol.JSONRPCVersion,
		ID:      tc.nextID(),
		Method:  method,
		Params:  paramsData,
	}

	return tc.handler.HandleRequest(context.Background(), req), nil
}

// SendNotification sends an identifier-less request and returns the
// handler's output, which should be nil.
func (tc *TestClient) SendNotification(method string, params any) *protocol.Response {
	tc.t.Helper()

	var paramsData json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			tc.t.Fatalf("failed to marshal params: %v", err)
		}
		paramsData = data
	}

	req := &protocol.Request{
		JSONRPC: protocol.JSONRPCVersion,
		Method:  method,
		Params:  paramsData,
	}

	return tc.handler.HandleRequest(context.Background(), req)
}

// Initialize sends an initialize request to the server.
func (tc *TestClient) Initialize() (map[string]any, error) {
	tc.t.Helper()

	resp, err := tc.SendRequest(protocol.MethodInitialize, map[string]any{
		"protocolVersion": protocol.Version,
		"clientInfo": map[string]any{
			"name":    "test-client",
			"version": "1.0.0",
		},
	})
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}

	result, ok := resp.Result.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected result type: %T", resp.Result)
	}

	return result, nil
}

// ListTools lists all available tools.
func (tc *TestClient) ListTools() ([]map[string]any, error) {
	tc.t.Helper()
	return tc.listOf(protocol.MethodToolsList, "tools")
}

// ListResources lists all available resources.
func (tc *TestClient) ListResources() ([]map[string]any, error) {
	tc.t.Helper()
	return tc.listOf(protocol.MethodResourcesList, "resources")
}

// ListPrompts lists all available prompts.
func (tc *TestClient) ListPrompts() ([]map[string]any, error) {
	tc.t.Helper()
	return tc.listOf(protocol.MethodPromptsList, "prompts")
}

func (tc *TestClient) listOf(method, key string) ([]map[string]any, error) {
	resp, err := tc.SendRequest(method, nil)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}

	result, ok := resp.Result.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected result type: %T", resp.Result)
	}

	// The in-memory path yields []map[string]any; after a JSON round
	// trip the same payload decodes as []any.
	switch v := result[key].(type) {
	case []map[string]any:
		return v, nil
	case []any:
		items := make([]map[string]any, len(v))
		for i, item := range v {
			items[i], _ = item.(map[string]any)
		}
		return items, nil
	default:
		return nil, fmt.Errorf("unexpected %s type: %T", key, result[key])
	}
}

// CallTool calls a tool with the given arguments and returns the
// handler's result value.
func (tc *TestClient) CallTool(name string, args any) (any, error) {
	tc.t.Helper()

	resp, err := tc.CallToolRaw(name, args)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}

	return resp.Result, nil
}

// CallToolRaw calls a tool and returns the raw response.
func (tc *TestClient) CallToolRaw(name string, args any) (*protocol.Response, error) {
	tc.t.Helper()

	return tc.SendRequest(protocol.MethodToolsCall, map[string]any{
		"name":      name,
		"arguments": args,
	})
}

// ReadResource reads a resource by URI and returns its text content.
func (tc *TestClient) ReadResource(uri string) (string, error) {
	tc.t.Helper()

	resp, err := tc.SendRequest(protocol.MethodResourcesRead, map[string]any{
		"uri": uri,
	})
	if err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", resp.Error
	}

	result, ok := resp.Result.(map[string]any)
	if !ok {
		return "", fmt.Errorf("unexpected result type: %T", resp.Result)
	}

	var first map[string]any
	switch v := result["contents"].(type) {
	case []map[string]any:
		if len(v) == 0 {
			return "", fmt.Errorf("empty contents array")
		}
		first = v[0]
	case []any:
		if len(v) == 0 {
			return "", fmt.Errorf("empty contents array")
		}
		first, _ = v[0].(map[string]any)
	default:
		return "", fmt.Errorf("unexpected contents type: %T", result["contents"])
	}

	if first == nil {
		return "", fmt.Errorf("nil contents item")
	}

	text, _ := first["text"].(string)
	return text, nil
}

// GetPrompt gets a prompt by name with the given arguments.
func (tc *TestClient) GetPrompt(name string, args map[string]string) (map[string]any, error) {
	tc.t.Helper()

	resp, err := tc.SendRequest(protocol.MethodPromptsGet, map[string]any{
		"name":      name,
		"arguments": args,
	})
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}

	result, ok := resp.Result.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected result type: %T", resp.Result)
	}

	return result, nil
}

// Ping sends a ping request.
func (tc *TestClient) Ping() error {
	tc.t.Helper()

	resp, err := tc.SendRequest(protocol.MethodPing, nil)
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return resp.Error
	}

	return nil
}

// AssertToolExists asserts that a tool with the given name is listed.
func (tc *TestClient) AssertToolExists(name string) {
	tc.t.Helper()

	tools, err := tc.ListTools()
	if err != nil {
		tc.t.Fatalf("ListTools failed: %v", err)
	}

	for _, tool := range tools {
		if tool["name"] == name {
			return
		}
	}
	tc.t.Errorf("tool %q not found", name)
}

// AssertResourceExists asserts that a resource with the given URI
// template is listed.
func (tc *TestClient) AssertResourceExists(uriTemplate string) {
	tc.t.Helper()

	resources, err := tc.ListResources()
	if err != nil {
		tc.t.Fatalf("ListResources failed: %v", err)
	}

	for _, res := range resources {
		if res["uri"] == uriTemplate {
			return
		}
	}
	tc.t.Errorf("resource %q not found", uriTemplate)
}

// AssertPromptExists asserts that a prompt with the given name is listed.
func (tc *TestClient) AssertPromptExists(name string) {
	tc.t.Helper()

	prompts, err := tc.ListPrompts()
	if err != nil {
		tc.t.Fatalf("ListPrompts failed: %v", err)
	}

	for _, prompt := range prompts {
		if prompt["name"] == name {
			return
		}
	}
	tc.t.Errorf("prompt %q not found", name)
}

// AssertErrorCode asserts that a response carries an error with the
// given code.
func (tc *TestClient) AssertErrorCode(resp *protocol.Response, code int) {
	tc.t.Helper()

	if resp == nil {
		tc.t.Fatalf("expected error response with code %d, got nil response", code)
	}
	if resp.Error == nil {
		tc.t.Fatalf("expected error with code %d, got result: %v", code, resp.Result)
	}
	if resp.Error.Code != code {
		tc.t.Errorf("expected error code %d, got %d (%s)", code, resp.Error.Code, resp.Error.Message)
	}
}

// MockStreams provides buffer-backed standard streams for exercising
// the stdio transport end to end. Preload the input with WriteLine or
// SendRequest, run Serve, then decode the output.
type MockStreams struct {
	in  *bytes.Buffer
	out *bytes.Buffer
	mu  sync.Mutex
}

// NewMockStreams creates empty input and output buffers.
func NewMockStreams() *MockStreams {
	return &MockStreams{
		in:  &bytes.Buffer{},
		out: &bytes.Buffer{},
	}
}

// WriteLine appends a raw line to the input stream.
func (m *MockStreams) WriteLine(line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.in.WriteString(line)
	m.in.WriteString("\n")
}

// SendRequest appends an encoded request to the input stream.
func (m *MockStreams) SendRequest(id any, method string, params any) error {
	var idData json.RawMessage
	if id != nil {
		data, err := json.Marshal(id)
		if err != nil {
			return err
		}
		idData = data
	}

	var paramsData json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return err
		}
		paramsData = data
	}

	req := &protocol.Request{
		JSONRPC: protocol.JSONRPCVersion,
		ID:      idData,
		Method:  method,
		Params:  paramsData,
	}

	data, err := json.Marshal(req)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.in.Write(data)
	m.in.WriteString("\n")
	return nil
}

// Input returns the input reader for wiring into a transport.
func (m *MockStreams) Input() io.Reader {
	return m.in
}

// Output returns the output writer for wiring into a transport.
func (m *MockStreams) Output() io.Writer {
	return m.out
}

// Responses decodes every line written to the output stream. The
// stream is not consumed, so repeated calls see the same responses.
func (m *MockStreams) Responses() ([]*protocol.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var responses []*protocol.Response
	for _, line := range bytes.Split(m.out.Bytes(), []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var resp protocol.Response
		if err := json.Unmarshal(line, &resp); err != nil {
			return nil, err
		}
		responses = append(responses, &resp)
	}
	return responses, nil
}

// ResponseByID returns the decoded response whose identifier encodes
// to the same JSON as id.
func (m *MockStreams) ResponseByID(id any) (*protocol.Response, error) {
	want, err := json.Marshal(id)
	if err != nil {
		return nil, err
	}

	responses, err := m.Responses()
	if err != nil {
		return nil, err
	}

	for _, resp := range responses {
		if bytes.Equal(bytes.TrimSpace(resp.ID), want) {
			return resp, nil
		}
	}
	return nil, fmt.Errorf("no response with id %s", want)
}
