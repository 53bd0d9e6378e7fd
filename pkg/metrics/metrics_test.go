package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/cqlkit/cqlwire/pkg/protocol"
)

func newTestCodec(t *testing.T) (*Codec, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewCodec(WithRegistry(reg)), reg
}

func TestFrameDecoded(t *testing.T) {
	c, _ := newTestCodec(t)

	c.FrameDecoded(protocol.OpResult, 120, false)
	c.FrameDecoded(protocol.OpResult, 80, true)
	c.FrameDecoded(protocol.OpReady, 0, false)

	if got := testutil.ToFloat64(c.framesDecoded.WithLabelValues("RESULT")); got != 2 {
		t.Errorf("frames_decoded_total{opcode=RESULT} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.framesDecoded.WithLabelValues("READY")); got != 1 {
		t.Errorf("frames_decoded_total{opcode=READY} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.bytesIn); got != 200 {
		t.Errorf("body_bytes_in_total = %v, want 200", got)
	}
	if got := testutil.ToFloat64(c.compressedFrames); got != 1 {
		t.Errorf("compressed_frames_total = %v, want 1", got)
	}
}

func TestFrameEncoded(t *testing.T) {
	c, _ := newTestCodec(t)

	c.FrameEncoded(protocol.OpQuery, 44, true)

	if got := testutil.ToFloat64(c.framesEncoded.WithLabelValues("QUERY")); got != 1 {
		t.Errorf("frames_encoded_total{opcode=QUERY} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.bytesOut); got != 44 {
		t.Errorf("body_bytes_out_total = %v, want 44", got)
	}
	if got := testutil.ToFloat64(c.compressedFrames); got != 1 {
		t.Errorf("compressed_frames_total = %v, want 1", got)
	}
}

func TestDecodeError(t *testing.T) {
	c, _ := newTestCodec(t)
	c.DecodeError(protocol.OpResult)
	c.DecodeError(protocol.OpError)
	if got := testutil.ToFloat64(c.decodeErrors); got != 2 {
		t.Errorf("decode_errors_total = %v, want 2", got)
	}
}

func TestObservesDecoderTraffic(t *testing.T) {
	// End to end: the codec attached to a live decoder counts the frame.
	c, reg := newTestCodec(t)
	d := protocol.NewFrameDecoder(nopHandler{}, protocol.WithDecoderObserver(c))

	frame := []byte{0x82, 0x00, 0x01, 0x02, 0x00, 0x00, 0x00, 0x00} // READY, stream 1
	if err := d.Feed(frame); err != nil {
		t.Fatal(err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() == "cqlwire_codec_frames_decoded_total" {
			found = true
		}
	}
	if !found {
		t.Error("cqlwire_codec_frames_decoded_total not registered")
	}
	if got := testutil.ToFloat64(c.framesDecoded.WithLabelValues("READY")); got != 1 {
		t.Errorf("frames_decoded_total{opcode=READY} = %v, want 1", got)
	}
}

type nopHandler struct{}

func (nopHandler) CompleteRequest(int8, protocol.Response) {}
func (nopHandler) NotifyEventListeners(protocol.Response)  {}
