package protocol

import "fmt"

// Protocol-level error codes (JSON-RPC 2.0 standard). These indicate
// malformed input or a dispatcher-internal failure.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Domain-level error codes. These indicate a well-formed request that
// could not be satisfied against the registry or during handler
// execution. The values are fixed for interop with existing clients.
const (
	CodeResourceNotFound    = -32001
	CodeResourceUnavailable = -32002
	CodeToolExecutionError  = -32003
	CodePromptNotFound      = -32004
)

// Error represents a JSON-RPC 2.0 error. Errors are values; they cross
// the transport boundary only as the error member of a Response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("toolrpc: %s (code: %d)", e.Message, e.Code)
}

// Is implements errors.Is comparison by error code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithData returns a copy of the error with structured diagnostic data
// attached.
func (e *Error) WithData(data any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Data:    data,
	}
}

// NewParseError creates a parse error (-32700).
func NewParseError(msg string) *Error {
	return &Error{Code: CodeParseError, Message: msg}
}

// NewInvalidRequest creates an invalid request error (-32600).
func NewInvalidRequest(msg string) *Error {
	return &Error{Code: CodeInvalidRequest, Message: msg}
}

// NewMethodNotFound creates a method not found error (-32601).
func NewMethodNotFound(msg string) *Error {
	return &Error{Code: CodeMethodNotFound, Message: msg}
}

// NewInvalidParams creates an invalid params error (-32602).
func NewInvalidParams(msg string) *Error {
	return &Error{Code: CodeInvalidParams, Message: msg}
}

// NewInternalError creates an internal error (-32603).
func NewInternalError(msg string) *Error {
	return &Error{Code: CodeInternalError, Message: msg}
}

// NewResourceNotFound creates a resource not found error (-32001).
func NewResourceNotFound(msg string) *Error {
	return &Error{Code: CodeResourceNotFound, Message: msg}
}

// NewResourceUnavailable creates a resource unavailable error (-32002).
func NewResourceUnavailable(msg string) *Error {
	return &Error{Code: CodeResourceUnavailable, Message: msg}
}

// NewToolExecutionError creates a tool execution error (-32003).
func NewToolExecutionError(msg string) *Error {
	return &Error{Code: CodeToolExecutionError, Message: msg}
}

// NewPromptNotFound creates a prompt not found error (-32004).
func NewPromptNotFound(msg string) *Error {
	return &Error{Code: CodePromptNotFound, Message: msg}
}
