package telemetry

import (
	"context"
	"errors"

	"github.com/ecom/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys set by application services on the request span
const (
	SpanAttrCustomerID = "customer_id"
	SpanAttrOrderID    = "order_id"
	SpanAttrLineCount  = "line_count"
)

// RecordError marks the span as failed. Domain errors are client faults that
// the HTTP status already reports, so they and nil errors are ignored.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// GetTraceID returns the trace ID of the span in ctx, or "" if there is none
func GetTraceID(ctx context.Context) string {
	traceID := trace.SpanFromContext(ctx).SpanContext().TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}
