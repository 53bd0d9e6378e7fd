// Package trace bridges server-side query tracing to OpenTelemetry. A
// traced CQL response arrives with a 16-byte trace id the server uses to
// key its own trace tables; Handler surfaces each such response as a span
// so the id shows up in the caller's tracing backend next to the
// application spans that issued the query.
package trace

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/cqlkit/cqlwire/pkg/protocol"
)

const tracerName = "github.com/cqlkit/cqlwire"

// Handler decorates a protocol.ResponseHandler, emitting a span for every
// response that carries a server trace id before delegating. Responses
// without a trace id pass straight through.
type Handler struct {
	next   protocol.ResponseHandler
	tracer oteltrace.Tracer
}

var _ protocol.ResponseHandler = (*Handler)(nil)

// Option configures a Handler.
type Option func(*Handler)

// WithTracerProvider sets the provider to obtain the tracer from; the
// global provider is used by default.
func WithTracerProvider(tp oteltrace.TracerProvider) Option {
	return func(h *Handler) { h.tracer = tp.Tracer(tracerName) }
}

// NewHandler wraps next.
func NewHandler(next protocol.ResponseHandler, opts ...Option) *Handler {
	h := &Handler{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// CompleteRequest implements protocol.ResponseHandler.
func (h *Handler) CompleteRequest(streamID int8, resp protocol.Response) {
	h.record(resp, attribute.Int("cql.stream_id", int(streamID)))
	h.next.CompleteRequest(streamID, resp)
}

// NotifyEventListeners implements protocol.ResponseHandler.
func (h *Handler) NotifyEventListeners(resp protocol.Response) {
	h.record(resp, attribute.Bool("cql.event", true))
	h.next.NotifyEventListeners(resp)
}

func (h *Handler) record(resp protocol.Response, attrs ...attribute.KeyValue) {
	id := traceID(resp)
	if id == nil {
		return
	}
	_, span := h.tracer.Start(context.Background(), "cql.response",
		oteltrace.WithAttributes(append(attrs,
			attribute.String("cql.server_trace_id", id.String()),
		)...))
	span.End()
}

// traceID pulls the embedded server trace id out of any response variant.
func traceID(resp protocol.Response) *protocol.UUID {
	type carrier interface{ ServerTraceID() *protocol.UUID }
	if c, ok := resp.(carrier); ok {
		return c.ServerTraceID()
	}
	return nil
}
