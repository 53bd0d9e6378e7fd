package protocol

import (
	"github.com/cqlkit/cqlwire/pkg/compress"
	"github.com/pkg/errors"
)

// FrameEncoder serializes requests into framed byte sequences. It is
// stateless apart from its version and compressor reference, so one
// encoder may be shared by concurrent callers as long as each call gets
// its own output buffer.
type FrameEncoder struct {
	version    ProtoVersion
	compressor compress.Compressor
	observer   Observer
}

// EncoderOption configures a FrameEncoder.
type EncoderOption func(*FrameEncoder)

// WithEncoderCompressor sets the body compressor. Bodies are compressed
// only when the request allows it and the compressor's ShouldCompress
// approves the specific body.
func WithEncoderCompressor(c compress.Compressor) EncoderOption {
	return func(e *FrameEncoder) { e.compressor = c }
}

// WithEncoderObserver sets the instrumentation hook.
func WithEncoderObserver(o Observer) EncoderOption {
	return func(e *FrameEncoder) { e.observer = o }
}

// NewFrameEncoder builds an encoder for the given protocol version.
func NewFrameEncoder(version ProtoVersion, opts ...EncoderOption) *FrameEncoder {
	e := &FrameEncoder{version: version}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Version returns the protocol version the encoder writes.
func (e *FrameEncoder) Version() ProtoVersion {
	return e.version
}

// EncodeFrame appends one framed request to out: the 8-byte header
// followed by the possibly-compressed body. The stream id is the caller's
// correlation key; the encoder does not validate it against in-flight
// requests.
func (e *FrameEncoder) EncodeFrame(out *Buffer, req Request, streamID int8) error {
	body := NewBuffer(nil)
	if err := req.WriteBody(e.version, body); err != nil {
		return errors.Wrapf(err, "encode %s", req.Opcode())
	}
	b := body.Bytes()

	var flags byte
	if req.Trace() {
		flags |= flagTracing
	}
	compressed := false
	if e.compressor != nil && req.Compressable() && e.compressor.ShouldCompress(b) {
		cb, err := e.compressor.Compress(b)
		if err != nil {
			return errors.Wrapf(err, "compress %s", req.Opcode())
		}
		b = cb
		flags |= flagCompressed
		compressed = true
	}

	out.AppendByte(byte(e.version))
	out.AppendByte(flags)
	out.AppendByte(byte(streamID))
	out.AppendByte(byte(req.Opcode()))
	out.AppendUint(uint32(len(b)))
	out.Append(b)

	if e.observer != nil {
		e.observer.FrameEncoded(req.Opcode(), len(b), compressed)
	}
	return nil
}
