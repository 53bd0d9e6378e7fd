package protocol

// Observer receives codec-level measurements. Implementations must be
// cheap and non-blocking: hooks run synchronously inside Feed and
// EncodeFrame. A nil observer disables observation.
type Observer interface {
	// FrameEncoded fires after a request frame is appended to its output
	// buffer. bodyLen is the on-wire body length, after compression.
	FrameEncoded(op Opcode, bodyLen int, compressed bool)

	// FrameDecoded fires after a complete frame is decoded and before it
	// is dispatched. bodyLen is the declared on-wire body length.
	FrameDecoded(op Opcode, bodyLen int, compressed bool)

	// DecodeError fires when a frame fails to decode.
	DecodeError(op Opcode)
}
