package middleware

import "time"

// DefaultStack returns the recommended production middleware stack.
// This includes panic recovery, request ID injection, and logging.
// A nil logger disables logging output.
func DefaultStack(logger Logger) []Middleware {
	if logger == nil {
		logger = NopLogger{}
	}
	return []Middleware{
		Recover(),
		RequestID(),
		Logging(logger),
	}
}

// DefaultStackWithTimeout returns the default stack with a timeout middleware.
// A nil logger disables logging output.
func DefaultStackWithTimeout(logger Logger, timeout time.Duration) []Middleware {
	if logger == nil {
		logger = NopLogger{}
	}
	return []Middleware{
		Recover(),
		RequestID(),
		Timeout(timeout),
		Logging(logger),
	}
}
