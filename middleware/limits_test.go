package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/toolrpc/protocol"
)

func TestTimeout_Exceeded(t *testing.T) {
	h := Timeout(10 * time.Millisecond)(func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
			return okHandler(ctx, req)
		}
	})

	_, err := h(context.Background(), testRequest("tools/call"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}

func TestTimeout_FastHandlerUnaffected(t *testing.T) {
	h := Timeout(time.Second)(okHandler)

	resp, err := h(context.Background(), testRequest("ping"))
	if err != nil || resp == nil {
		t.Errorf("resp = %v, err = %v", resp, err)
	}
}

func TestSizeLimit_Rejects(t *testing.T) {
	logger := &captureLogger{}
	h := SizeLimit(16, WithSizeLimitLogger(logger))(okHandler)

	req := testRequest("tools/call")
	req.Params = json.RawMessage(`{"payload":"` + strings.Repeat("x", 64) + `"}`)

	_, err := h(context.Background(), req)
	if err == nil {
		t.Fatal("expected size limit rejection")
	}

	var rpcErr *protocol.Error
	if !errors.As(err, &rpcErr) {
		t.Fatalf("error type = %T", err)
	}
	if rpcErr.Code != protocol.CodeInvalidRequest {
		t.Errorf("code = %d, want %d", rpcErr.Code, protocol.CodeInvalidRequest)
	}

	entry := logger.last(t)
	if entry.msg != "request size limit exceeded" {
		t.Errorf("log entry = %+v", entry)
	}
}

func TestSizeLimit_AllowsSmallAndEmpty(t *testing.T) {
	h := SizeLimit(1 * KB)(okHandler)

	req := testRequest("tools/call")
	req.Params = json.RawMessage(`{"a":1}`)
	if _, err := h(context.Background(), req); err != nil {
		t.Errorf("small params rejected: %v", err)
	}

	if _, err := h(context.Background(), testRequest("ping")); err != nil {
		t.Errorf("nil params rejected: %v", err)
	}
}

func TestRateLimit_Rejects(t *testing.T) {
	logger := &captureLogger{}
	h := RateLimit(1, 1, WithRateLimitLogger(logger))(okHandler)

	if _, err := h(context.Background(), testRequest("ping")); err != nil {
		t.Fatalf("first request rejected: %v", err)
	}

	_, err := h(context.Background(), testRequest("ping"))
	if err == nil {
		t.Fatal("expected rate limit rejection")
	}

	var rpcErr *protocol.Error
	if !errors.As(err, &rpcErr) {
		t.Fatalf("error type = %T", err)
	}
	if rpcErr.Code != protocol.CodeInvalidRequest {
		t.Errorf("code = %d, want %d", rpcErr.Code, protocol.CodeInvalidRequest)
	}
}

func TestRateLimitByMethod_IndependentBuckets(t *testing.T) {
	h := RateLimitByMethod(1, 1)(okHandler)

	if _, err := h(context.Background(), testRequest("tools/list")); err != nil {
		t.Fatalf("first method rejected: %v", err)
	}
	// A different method draws from its own bucket.
	if _, err := h(context.Background(), testRequest("prompts/list")); err != nil {
		t.Errorf("second method rejected: %v", err)
	}
	if _, err := h(context.Background(), testRequest("tools/list")); err == nil {
		t.Error("expected rejection for exhausted method bucket")
	}
}
