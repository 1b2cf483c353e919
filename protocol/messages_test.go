package protocol

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRequest_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Request
		wantErr bool
	}{
		{
			name:  "request with params",
			input: `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"search"}}`,
			want: Request{
				JSONRPC: "2.0",
				ID:      json.RawMessage(`1`),
				Method:  "tools/call",
				Params:  json.RawMessage(`{"name":"search"}`),
			},
		},
		{
			name:  "string identifier",
			input: `{"jsonrpc":"2.0","id":"abc-123","method":"tools/list"}`,
			want: Request{
				JSONRPC: "2.0",
				ID:      json.RawMessage(`"abc-123"`),
				Method:  "tools/list",
			},
		},
		{
			name:  "notification (no id)",
			input: `{"jsonrpc":"2.0","method":"notifications/initialized"}`,
			want: Request{
				JSONRPC: "2.0",
				Method:  "notifications/initialized",
			},
		},
		{
			name:    "invalid json",
			input:   `{invalid}`,
			wantErr: true,
		},
		{
			name:    "non-string method",
			input:   `{"jsonrpc":"2.0","id":1,"method":42}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Request
			err := json.Unmarshal([]byte(tt.input), &got)

			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got.JSONRPC != tt.want.JSONRPC {
				t.Errorf("JSONRPC = %q, want %q", got.JSONRPC, tt.want.JSONRPC)
			}
			if got.Method != tt.want.Method {
				t.Errorf("Method = %q, want %q", got.Method, tt.want.Method)
			}
			if string(got.ID) != string(tt.want.ID) {
				t.Errorf("ID = %s, want %s", got.ID, tt.want.ID)
			}
			if string(got.Params) != string(tt.want.Params) {
				t.Errorf("Params = %s, want %s", got.Params, tt.want.Params)
			}
		})
	}
}

func TestRequest_IsNotification(t *testing.T) {
	tests := []struct {
		name string
		id   json.RawMessage
		want bool
	}{
		{"no id", nil, true},
		{"null id", json.RawMessage(`null`), true},
		{"integer id", json.RawMessage(`1`), false},
		{"zero id", json.RawMessage(`0`), false},
		{"string id", json.RawMessage(`"req-7"`), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := Request{JSONRPC: JSONRPCVersion, ID: tt.id, Method: "ping"}
			if got := req.IsNotification(); got != tt.want {
				t.Errorf("IsNotification() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewResponse(t *testing.T) {
	resp := NewResponse(json.RawMessage(`7`), map[string]any{"ok": true})

	if resp.JSONRPC != JSONRPCVersion {
		t.Errorf("JSONRPC = %q, want %q", resp.JSONRPC, JSONRPCVersion)
	}
	if string(resp.ID) != "7" {
		t.Errorf("ID = %s, want 7", resp.ID)
	}
	if resp.Error != nil {
		t.Error("Error should be nil for successful responses")
	}
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse(json.RawMessage(`"a"`), NewMethodNotFound("method not found: x"))

	if resp.Result != nil {
		t.Error("Result should be nil for error responses")
	}
	if resp.Error == nil {
		t.Fatal("Error should not be nil")
	}
	if resp.Error.Code != CodeMethodNotFound {
		t.Errorf("Code = %d, want %d", resp.Error.Code, CodeMethodNotFound)
	}
}

func TestResponse_MarshalSingleLine(t *testing.T) {
	// The serializer must escape embedded newlines so that one response
	// always occupies exactly one line on the wire.
	resp := NewResponse(json.RawMessage(`1`), map[string]any{"text": "line one\nline two"})

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.ContainsRune(string(data), '\n') {
		t.Errorf("encoded response contains a literal newline: %q", data)
	}
}
