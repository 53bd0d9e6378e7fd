package trace

import (
	"testing"

	"go.opentelemetry.io/otel/trace/noop"

	"github.com/cqlkit/cqlwire/pkg/protocol"
)

type recordingNext struct {
	streams []int8
	events  int
}

func (r *recordingNext) CompleteRequest(streamID int8, resp protocol.Response) {
	r.streams = append(r.streams, streamID)
}

func (r *recordingNext) NotifyEventListeners(resp protocol.Response) {
	r.events++
}

func TestHandlerDelegates(t *testing.T) {
	next := &recordingNext{}
	h := NewHandler(next, WithTracerProvider(noop.NewTracerProvider()))

	h.CompleteRequest(4, protocol.Ready)
	h.NotifyEventListeners(protocol.Ready)

	if len(next.streams) != 1 || next.streams[0] != 4 {
		t.Errorf("streams = %v", next.streams)
	}
	if next.events != 1 {
		t.Errorf("events = %d", next.events)
	}
}

func TestHandlerThroughDecoder(t *testing.T) {
	// A traced READY frame must still reach the wrapped handler.
	next := &recordingNext{}
	d := protocol.NewFrameDecoder(NewHandler(next, WithTracerProvider(noop.NewTracerProvider())))

	body := make([]byte, 16) // trace id
	frame := append([]byte{0x82, 0x02, 0x07, 0x02, 0x00, 0x00, 0x00, 0x10}, body...)
	if err := d.Feed(frame); err != nil {
		t.Fatal(err)
	}
	if len(next.streams) != 1 || next.streams[0] != 7 {
		t.Errorf("streams = %v", next.streams)
	}
}
