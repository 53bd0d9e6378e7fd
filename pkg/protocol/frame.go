package protocol

// Frame layout constants.
const (
	// FrameHeaderSize is the fixed size of the frame header in bytes.
	FrameHeaderSize = 8

	// MaxFrameSize caps the declared body length of a single frame.
	// Anything larger is treated as a protocol decoding error.
	MaxFrameSize = 256 * 1024 * 1024

	// versionMask strips the request/response direction bit from the
	// version byte. Later protocol revisions use the high bit; here it is
	// always masked off.
	versionMask = 0x7F
)

// Header flag bits.
const (
	flagCompressed byte = 0x01
	flagTracing    byte = 0x02
)

// ProtoVersion is the 7-bit native protocol version. Versions 1 and 2 are
// supported; version 2 adds paging, serial consistency, batches and
// SASL auth responses.
type ProtoVersion byte

const (
	ProtoVersion1 ProtoVersion = 0x01
	ProtoVersion2 ProtoVersion = 0x02
)

// Opcode selects the structural kind of a frame body.
type Opcode byte

const (
	OpError         Opcode = 0x00
	OpStartup       Opcode = 0x01
	OpReady         Opcode = 0x02
	OpAuthenticate  Opcode = 0x03
	OpCredentials   Opcode = 0x04
	OpOptions       Opcode = 0x05
	OpSupported     Opcode = 0x06
	OpQuery         Opcode = 0x07
	OpResult        Opcode = 0x08
	OpPrepare       Opcode = 0x09
	OpExecute       Opcode = 0x0A
	OpRegister      Opcode = 0x0B
	OpEvent         Opcode = 0x0C
	OpBatch         Opcode = 0x0D
	OpAuthChallenge Opcode = 0x0E
	OpAuthResponse  Opcode = 0x0F
	OpAuthSuccess   Opcode = 0x10
)

// String returns the protocol-level name of the opcode.
func (op Opcode) String() string {
	switch op {
	case OpError:
		return "ERROR"
	case OpStartup:
		return "STARTUP"
	case OpReady:
		return "READY"
	case OpAuthenticate:
		return "AUTHENTICATE"
	case OpCredentials:
		return "CREDENTIALS"
	case OpOptions:
		return "OPTIONS"
	case OpSupported:
		return "SUPPORTED"
	case OpQuery:
		return "QUERY"
	case OpResult:
		return "RESULT"
	case OpPrepare:
		return "PREPARE"
	case OpExecute:
		return "EXECUTE"
	case OpRegister:
		return "REGISTER"
	case OpEvent:
		return "EVENT"
	case OpBatch:
		return "BATCH"
	case OpAuthChallenge:
		return "AUTH_CHALLENGE"
	case OpAuthResponse:
		return "AUTH_RESPONSE"
	case OpAuthSuccess:
		return "AUTH_SUCCESS"
	default:
		return "UNKNOWN"
	}
}

// frameHeader is the parsed form of the 4-byte fields word plus the body
// length word.
type frameHeader struct {
	version ProtoVersion
	flags   byte
	stream  int8
	op      Opcode
	length  int
}

// parseFrameHeader splits the raw fields word: version in bits 30..24
// (7 bits), flags in 23..16, stream id in 15..8 sign-extended from 8 bits,
// opcode in 7..0.
func parseFrameHeader(fields uint32, length uint32) frameHeader {
	return frameHeader{
		version: ProtoVersion(byte(fields>>24) & versionMask),
		flags:   byte(fields >> 16),
		stream:  int8(byte(fields >> 8)),
		op:      Opcode(byte(fields)),
		length:  int(length),
	}
}

func (h frameHeader) compressed() bool {
	return h.flags&flagCompressed != 0
}

func (h frameHeader) traced() bool {
	return h.flags&flagTracing != 0
}
