package protocol

import (
	"log/slog"

	"github.com/cqlkit/cqlwire/pkg/compress"
)

// ResponseHandler routes decoded responses. CompleteRequest receives every
// response whose stream id names a request; NotifyEventListeners receives
// server-pushed events (stream id -1). Both run synchronously inside Feed.
//
// The codec does not check that a completed stream id corresponds to an
// outstanding request; that bookkeeping belongs to the dispatch layer that
// owns the connection.
type ResponseHandler interface {
	CompleteRequest(streamID int8, resp Response)
	NotifyEventListeners(resp Response)
}

// eventStreamID marks frames the server pushes without a corresponding
// request.
const eventStreamID int8 = -1

type decodeState int

const (
	awaitingHeader decodeState = iota
	awaitingBody
)

// FrameDecoder reassembles frames from an arbitrarily-chunked byte stream
// and dispatches each decoded response. One decoder owns one connection's
// inbound stream and must be fed from a single goroutine; it never blocks
// and performs no I/O.
type FrameDecoder struct {
	handler    ResponseHandler
	compressor compress.Compressor
	logger     *slog.Logger
	observer   Observer

	buf     Buffer
	state   decodeState
	pending frameHeader
}

// DecoderOption configures a FrameDecoder.
type DecoderOption func(*FrameDecoder)

// WithDecoderCompressor sets the compressor used for frames arriving with
// the compression flag. Without one, such frames fail decoding.
func WithDecoderCompressor(c compress.Compressor) DecoderOption {
	return func(d *FrameDecoder) { d.compressor = c }
}

// WithDecoderLogger sets the logger for protocol-level diagnostics.
func WithDecoderLogger(l *slog.Logger) DecoderOption {
	return func(d *FrameDecoder) { d.logger = l }
}

// WithDecoderObserver sets the instrumentation hook.
func WithDecoderObserver(o Observer) DecoderOption {
	return func(d *FrameDecoder) { d.observer = o }
}

// NewFrameDecoder builds a decoder dispatching to handler.
func NewFrameDecoder(handler ResponseHandler, opts ...DecoderOption) *FrameDecoder {
	d := &FrameDecoder{handler: handler}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Feed appends a chunk arriving from the transport and drains every frame
// that is now complete, dispatching each response before returning. A
// chunk may contain half a header, several whole frames, or anything in
// between; partial frames are retained until their remaining bytes arrive.
//
// A non-nil error is a protocol decoding error and is fatal for the
// connection: the decoder's position in the stream is no longer trusted
// and further feeding is undefined.
func (d *FrameDecoder) Feed(chunk []byte) error {
	d.buf.Append(chunk)
	for {
		switch d.state {
		case awaitingHeader:
			if d.buf.Remaining() < FrameHeaderSize {
				return nil
			}
			fields, err := d.buf.ReadUint()
			if err != nil {
				return err
			}
			length, err := d.buf.ReadUint()
			if err != nil {
				return err
			}
			hdr := parseFrameHeader(fields, length)
			if hdr.length > MaxFrameSize {
				return decodeErrorf("frame body of %d bytes exceeds limit", hdr.length)
			}
			if d.buf.Remaining() < hdr.length {
				// Header consumed, body incomplete: park the header and
				// wait for more bytes.
				d.pending = hdr
				d.state = awaitingBody
				return nil
			}
			if err := d.decodeFrame(hdr); err != nil {
				return err
			}

		case awaitingBody:
			if d.buf.Remaining() < d.pending.length {
				return nil
			}
			if err := d.decodeFrame(d.pending); err != nil {
				return err
			}
			d.state = awaitingHeader
		}
	}
}

// decodeFrame consumes exactly the frame's declared body from the
// accumulation buffer, decodes it, and dispatches the response. The body
// is handled through its own cursor, so a decode routine that reads fewer
// bytes than the frame declared never misaligns the stream: the leftover
// is discarded with the frame.
func (d *FrameDecoder) decodeFrame(hdr frameHeader) error {
	body, err := d.buf.next(hdr.length)
	if err != nil {
		return err
	}

	if hdr.compressed() {
		if d.compressor == nil {
			err := decodeErrorf("compressed frame but no compressor configured")
			d.observeError(hdr.op)
			return err
		}
		if body, err = d.compressor.Decompress(body); err != nil {
			d.observeError(hdr.op)
			return decodeErrorf("decompress %s frame: %v", hdr.op, err)
		}
		// The on-wire length check above only saw the compressed size;
		// the cap applies to the effective body too.
		if len(body) > MaxFrameSize {
			d.observeError(hdr.op)
			return decodeErrorf("decompressed %s body of %d bytes exceeds limit", hdr.op, len(body))
		}
	}

	fb := NewBuffer(body)
	var traceID *UUID
	if hdr.traced() {
		id, err := fb.ReadUUID()
		if err != nil {
			d.observeError(hdr.op)
			return decodeErrorf("%s frame too short for trace id", hdr.op)
		}
		traceID = &id
	}

	resp, err := decodeResponse(hdr.op, hdr.version, fb, traceID)
	if err != nil {
		d.observeError(hdr.op)
		return err
	}
	if n := fb.Remaining(); n > 0 && d.logger != nil {
		d.logger.Debug("discarding trailing bytes within frame",
			"opcode", hdr.op.String(), "stream", hdr.stream, "bytes", n)
	}
	if d.observer != nil {
		d.observer.FrameDecoded(hdr.op, hdr.length, hdr.compressed())
	}

	if hdr.stream == eventStreamID {
		d.handler.NotifyEventListeners(resp)
	} else {
		d.handler.CompleteRequest(hdr.stream, resp)
	}
	return nil
}

func (d *FrameDecoder) observeError(op Opcode) {
	if d.observer != nil {
		d.observer.DecodeError(op)
	}
}
