// Package dispatch implements the protocol state machine that turns
// well-formed requests into correlated responses.
//
// Each request moves through Received, Routed, Executed, Responded;
// routing or execution failure branches to an error response instead.
// The states are implicit per request; no session state survives
// between dispatches apart from the recorded initialize handshake.
//
// # Contract
//
// HandleRequest always returns a response value for identified
// requests and nil for notifications. It never panics outward: handler
// panics and errors are converted into the response's error member, so
// no single misbehaving handler can take down the process or leave a
// request uncorrelated.
//
// Routing is an exact, case-sensitive lookup over the fixed method set
// from the protocol package; anything else produces METHOD_NOT_FOUND
// with the unrecognized name echoed in the error's data.
//
// # Error mapping
//
//	tools/call      unknown tool → TOOL_EXECUTION_ERROR
//	                handler error → TOOL_EXECUTION_ERROR (tool name + cause)
//	resources/read  no matching URI → RESOURCE_NOT_FOUND
//	                handler error → RESOURCE_UNAVAILABLE (reason)
//	prompts/get     unknown prompt → PROMPT_NOT_FOUND
//	                handler error → INTERNAL_ERROR
//
// A handler returning a *protocol.Error passes through unchanged, so
// typed handlers can surface INVALID_PARAMS from their own input
// decoding.
//
// No timeout is enforced here: a handler that never completes hangs
// only its own request. The transport keeps reading.
package dispatch
