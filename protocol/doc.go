// Package protocol defines the JSON-RPC 2.0 message types and the fixed
// error taxonomy used on the wire.
//
// This package provides the low-level protocol structures used by
// toolrpc. Most users should use the higher-level toolrpc package
// instead.
//
// # Request and Response Types
//
// Every wire unit carries the fixed "jsonrpc":"2.0" version tag.
// Requests and responses are correlated by ID (a raw JSON string or
// integer); a request without an ID is a notification and never
// produces a response.
//
//	type Request struct {
//	    JSONRPC string          `json:"jsonrpc"`
//	    ID      json.RawMessage `json:"id,omitempty"`
//	    Method  string          `json:"method"`
//	    Params  json.RawMessage `json:"params,omitempty"`
//	}
//
// A Response carries exactly one of Result or Error.
//
// # Error Codes
//
// Protocol-level codes follow the JSON-RPC 2.0 convention:
//
//	CodeParseError     = -32700  // Undecodable or malformed envelope
//	CodeInvalidRequest = -32600  // Invalid Request object
//	CodeMethodNotFound = -32601  // Method not in the routing table
//	CodeInvalidParams  = -32602  // Invalid method parameters
//	CodeInternalError  = -32603  // Dispatcher-internal failure
//
// Domain-level codes describe well-formed requests that could not be
// satisfied:
//
//	CodeResourceNotFound    = -32001
//	CodeResourceUnavailable = -32002
//	CodeToolExecutionError  = -32003
//	CodePromptNotFound      = -32004
//
// Helper constructors create properly shaped errors:
//
//	err := protocol.NewMethodNotFound("method not found: unknown/method")
//	err := protocol.NewToolExecutionError("tool not found: search")
package protocol
