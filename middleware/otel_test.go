package middleware

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/felixgeelhaar/toolrpc/protocol"
)

func newOTelTestSetup() (*tracetest.InMemoryExporter, *sdkmetric.ManualReader, Middleware) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	mw := OTel(
		WithTracerProvider(tp),
		WithMeterProvider(mp),
		WithOTelServiceName("test-service"),
	)
	return exporter, reader, mw
}

func findAttr(attrs []attribute.KeyValue, key attribute.Key) (attribute.Value, bool) {
	for _, a := range attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return attribute.Value{}, false
}

func collectMetric(t *testing.T, reader *sdkmetric.ManualReader, name string) (metricdata.Metrics, bool) {
	t.Helper()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect metrics: %v", err)
	}

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func TestOTel_SuccessSpan(t *testing.T) {
	exporter, reader, mw := newOTelTestSetup()

	h := mw(okHandler)
	if _, err := h(context.Background(), testRequest("tools/list")); err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}

	span := spans[0]
	if span.Name != "rpc.tools/list" {
		t.Errorf("span name = %q", span.Name)
	}
	if span.Status.Code != codes.Ok {
		t.Errorf("span status = %v", span.Status.Code)
	}
	if method, ok := findAttr(span.Attributes, "rpc.method"); !ok || method.AsString() != "tools/list" {
		t.Errorf("rpc.method attribute = %v", method)
	}

	m, ok := collectMetric(t, reader, "toolrpc.server.requests")
	if !ok {
		t.Fatal("request counter not recorded")
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("counter data type = %T", m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	if total != 1 {
		t.Errorf("request count = %d, want 1", total)
	}

	if _, ok := collectMetric(t, reader, "toolrpc.server.request.duration"); !ok {
		t.Error("duration histogram not recorded")
	}
}

func TestOTel_ErrorRecorded(t *testing.T) {
	exporter, reader, mw := newOTelTestSetup()

	h := mw(func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
		return nil, protocol.NewToolExecutionError("tool failed")
	})

	if _, err := h(context.Background(), testRequest("tools/call")); err == nil {
		t.Fatal("expected error to pass through")
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}

	span := spans[0]
	if span.Status.Code != codes.Error {
		t.Errorf("span status = %v", span.Status.Code)
	}
	if code, ok := findAttr(span.Attributes, "rpc.error_code"); !ok || code.AsInt64() != protocol.CodeToolExecutionError {
		t.Errorf("rpc.error_code attribute = %v", code)
	}

	m, ok := collectMetric(t, reader, "toolrpc.server.errors")
	if !ok {
		t.Fatal("error counter not recorded")
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("counter data type = %T", m.Data)
	}
	if len(sum.DataPoints) == 0 {
		t.Error("error counter has no data points")
	}
}

func TestOTel_ErrorResponseRecorded(t *testing.T) {
	exporter, _, mw := newOTelTestSetup()

	h := mw(func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
		return protocol.NewErrorResponse(req.ID, protocol.NewMethodNotFound("nope")), nil
	})

	if _, err := h(context.Background(), testRequest("nope")); err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("span status = %v", spans[0].Status.Code)
	}
}

func TestOTel_SkipMethods(t *testing.T) {
	exporter, _, _ := newOTelTestSetup()

	// Rebuild with the skip option against the same exporter.
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	mw := OTel(WithTracerProvider(tp), WithOTelSkipMethods("ping"))

	h := mw(okHandler)
	if _, err := h(context.Background(), testRequest("ping")); err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	if spans := exporter.GetSpans(); len(spans) != 0 {
		t.Errorf("skipped method produced %d spans", len(spans))
	}
}
