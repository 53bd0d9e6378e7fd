// Package protocol implements the binary wire protocol spoken between a
// CQL client and a Cassandra-compatible server.
//
// The package turns outgoing requests into framed byte sequences and turns a
// raw, arbitrarily-chunked byte stream arriving from a socket into typed,
// fully-decoded server responses. It owns no sockets: the transport pushes
// bytes in via FrameDecoder.Feed and writes out whatever FrameEncoder
// produces.
//
// # Wire Format
//
// Every frame starts with a fixed 8-byte header:
//
//	┌──────────────┬──────────────┬──────────────┬──────────────┐
//	│ Version      │ Flags        │ Stream ID    │ Opcode       │
//	│ (1 byte)     │ (1 byte)     │ (int8)       │ (1 byte)     │
//	├──────────────┴──────────────┴──────────────┴──────────────┤
//	│ Body Length (4 bytes, big-endian)                         │
//	├───────────────────────────────────────────────────────────┤
//	│ Body (variable length)                                    │
//	└───────────────────────────────────────────────────────────┘
//
// The version byte carries the protocol version in its low 7 bits; the high
// bit distinguishes requests from responses in later protocol revisions and
// is masked off here. Flag bit 0 marks a compressed body, flag bit 1 marks a
// body prefixed with a 16-byte tracing id. The stream id is an 8-bit
// two's-complement integer correlating a response with its request; the
// value -1 is reserved for server-pushed events.
//
// # Frame Reassembly
//
// TCP does not preserve message boundaries, so FrameDecoder is a resumable
// two-state machine: it accumulates fed chunks in an internal buffer and
// drains every complete frame as soon as its declared body length is
// buffered. A single Feed call may dispatch zero, one, or many responses,
// always in arrival order, each to exactly one callback on the injected
// ResponseHandler.
//
// # Lazy Row Decoding
//
// A Rows result whose column metadata was omitted on the wire (the server
// does this once a prior prepare has communicated the types) is surfaced as
// a RawRowsResult carrying the still-encoded row bytes. The codec has no
// memory of prior prepares, so the caller decodes it later by supplying the
// cached column specs to RawRowsResult.Decode.
//
// # Concurrency
//
// One FrameDecoder instance owns one accumulation buffer and must be driven
// by a single goroutine. FrameEncoder is stateless apart from its compressor
// reference and may be shared, provided each call gets its own output
// buffer. Nothing in this package blocks or performs I/O.
package protocol
