package protocol

// Response is one decoded server frame body. Responses are immutable value
// objects constructed once per frame and handed to exactly one callback.
// The set is closed: every variant lives in this package.
type Response interface {
	isResponse()
}

// traced carries the optional 16-byte tracing id shared by all response
// variants; embedding it also marks the variant as a Response.
type traced struct {
	// TraceID correlates the response with server-side trace data. Nil
	// unless the frame arrived with the tracing flag set.
	TraceID *UUID
}

func (traced) isResponse() {}

// ServerTraceID returns the tracing id the frame arrived with, or nil for
// untraced frames.
func (t traced) ServerTraceID() *UUID { return t.TraceID }

// ReadyResponse signals a completed startup or register exchange. It has no
// payload.
type ReadyResponse struct {
	traced
}

// Ready is the shared instance dispatched for untraced READY frames.
var Ready = &ReadyResponse{}

// AuthenticateResponse asks the client to authenticate with the named
// mechanism.
type AuthenticateResponse struct {
	traced
	Mechanism string
}

// SupportedResponse lists the startup options the server understands.
type SupportedResponse struct {
	traced
	Options map[string][]string
}

// AuthChallengeResponse carries a SASL challenge token; the token may be
// null.
type AuthChallengeResponse struct {
	traced
	Token []byte
}

// AuthSuccessResponse carries the final SASL token; the token may be null.
type AuthSuccessResponse struct {
	traced
	Token []byte
}

// decodeResponse decodes one frame body by opcode. It is total over the
// known opcode set and fails with a decoding error for anything else; it
// never produces a default value for an unknown code.
func decodeResponse(op Opcode, version ProtoVersion, buf *Buffer, traceID *UUID) (Response, error) {
	switch op {
	case OpError:
		return decodeErrorResponse(buf, traceID)
	case OpReady:
		if traceID == nil {
			return Ready, nil
		}
		return &ReadyResponse{traced{TraceID: traceID}}, nil
	case OpAuthenticate:
		mechanism, err := buf.ReadString()
		if err != nil {
			return nil, err
		}
		return &AuthenticateResponse{traced{TraceID: traceID}, mechanism}, nil
	case OpSupported:
		options, err := buf.ReadStringMultimap()
		if err != nil {
			return nil, err
		}
		return &SupportedResponse{traced{TraceID: traceID}, options}, nil
	case OpResult:
		return decodeResult(version, buf, traceID)
	case OpEvent:
		return decodeEvent(buf, traceID)
	case OpAuthChallenge:
		token, err := buf.ReadBytes()
		if err != nil {
			return nil, err
		}
		return &AuthChallengeResponse{traced{TraceID: traceID}, token}, nil
	case OpAuthSuccess:
		token, err := buf.ReadBytes()
		if err != nil {
			return nil, err
		}
		return &AuthSuccessResponse{traced{TraceID: traceID}, token}, nil
	default:
		return nil, decodeErrorf("unknown response opcode 0x%02x", byte(op))
	}
}
