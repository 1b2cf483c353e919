// Package middleware provides composable middleware for request
// handling, plus the Logger interface consumed across the module.
//
// Middleware wrap the dispatcher's routing handler; they run inside the
// dispatch boundary, so anything they return (error or response) is
// still converted into a correlated response by the dispatcher. None of
// them are installed by default; the core dispatch path only carries
// its own fail-closed panic recovery.
//
// # Composition
//
// Middleware compose with Chain, executing in declaration order:
//
//	handler := middleware.Chain(
//	    middleware.Recover(),
//	    middleware.RequestID(),
//	    middleware.Logging(logger),
//	)(final)
//
// DefaultStack returns the recommended production set.
//
// # Available middleware
//
//   - Recover: converts panics to internal errors with stack data
//   - RequestID: injects a UUID request ID into the context
//   - Logging: structured per-request logging via the Logger interface
//   - Timeout: per-request deadline
//   - RateLimit: token-bucket limiting (fortify/ratelimit)
//   - SizeLimit: rejects oversized params
//   - OTel: OpenTelemetry spans and metrics per request
package middleware
