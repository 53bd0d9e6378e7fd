package protocol

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrDecode is the root of the protocol-decoding-error taxonomy: unknown
// opcodes, result kinds or event kinds, a compressed frame with no
// compressor configured, or a body shorter than its fields require. These
// are unrecoverable for the connection; the owning layer should tear it
// down. Test with errors.Is(err, ErrDecode).
var ErrDecode = errors.New("protocol: decode error")

func decodeErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrDecode, format, args...)
}

// ErrorCode is a server-reported error category.
type ErrorCode int32

const (
	ErrCodeServer         ErrorCode = 0x0000
	ErrCodeProtocol       ErrorCode = 0x000A
	ErrCodeBadCredentials ErrorCode = 0x0100
	ErrCodeUnavailable    ErrorCode = 0x1000
	ErrCodeOverloaded     ErrorCode = 0x1001
	ErrCodeBootstrapping  ErrorCode = 0x1002
	ErrCodeTruncate       ErrorCode = 0x1003
	ErrCodeWriteTimeout   ErrorCode = 0x1100
	ErrCodeReadTimeout    ErrorCode = 0x1200
	ErrCodeSyntax         ErrorCode = 0x2000
	ErrCodeUnauthorized   ErrorCode = 0x2100
	ErrCodeInvalid        ErrorCode = 0x2200
	ErrCodeConfig         ErrorCode = 0x2300
	ErrCodeAlreadyExists  ErrorCode = 0x2400
	ErrCodeUnprepared     ErrorCode = 0x2500
)

// ErrorResponse is a server-reported error with no code-specific detail
// fields. It is data, not a failure of the codec.
type ErrorResponse struct {
	traced
	Code    ErrorCode
	Message string
}

// DetailedErrorResponse refines ErrorResponse for the codes that carry
// extra fields on the wire. Details is keyed by the field names of the
// original protocol description: cl, required, alive, received, blockfor,
// write_type, data_present, ks, table, id.
type DetailedErrorResponse struct {
	ErrorResponse
	Details map[string]interface{}
}

// decodeErrorResponse reads the code and message, then the code-specific
// detail fields for the five detail-bearing codes. Codes outside that set
// decode as a plain ErrorResponse.
func decodeErrorResponse(buf *Buffer, traceID *UUID) (Response, error) {
	code, err := buf.ReadInt()
	if err != nil {
		return nil, err
	}
	message, err := buf.ReadString()
	if err != nil {
		return nil, err
	}
	base := ErrorResponse{
		traced:  traced{TraceID: traceID},
		Code:    ErrorCode(code),
		Message: message,
	}

	details := map[string]interface{}{}
	switch base.Code {
	case ErrCodeUnavailable:
		cl, err := buf.ReadConsistency()
		if err != nil {
			return nil, err
		}
		required, err := buf.ReadInt()
		if err != nil {
			return nil, err
		}
		alive, err := buf.ReadInt()
		if err != nil {
			return nil, err
		}
		details["cl"] = cl
		details["required"] = required
		details["alive"] = alive
	case ErrCodeWriteTimeout:
		cl, err := buf.ReadConsistency()
		if err != nil {
			return nil, err
		}
		received, err := buf.ReadInt()
		if err != nil {
			return nil, err
		}
		blockfor, err := buf.ReadInt()
		if err != nil {
			return nil, err
		}
		writeType, err := buf.ReadString()
		if err != nil {
			return nil, err
		}
		details["cl"] = cl
		details["received"] = received
		details["blockfor"] = blockfor
		details["write_type"] = writeType
	case ErrCodeReadTimeout:
		cl, err := buf.ReadConsistency()
		if err != nil {
			return nil, err
		}
		received, err := buf.ReadInt()
		if err != nil {
			return nil, err
		}
		blockfor, err := buf.ReadInt()
		if err != nil {
			return nil, err
		}
		dataPresent, err := buf.ReadByte()
		if err != nil {
			return nil, err
		}
		details["cl"] = cl
		details["received"] = received
		details["blockfor"] = blockfor
		details["data_present"] = dataPresent != 0
	case ErrCodeAlreadyExists:
		ks, err := buf.ReadString()
		if err != nil {
			return nil, err
		}
		table, err := buf.ReadString()
		if err != nil {
			return nil, err
		}
		details["ks"] = ks
		details["table"] = table
	case ErrCodeUnprepared:
		id, err := buf.ReadShortBytes()
		if err != nil {
			return nil, err
		}
		details["id"] = id
	default:
		return &base, nil
	}

	return &DetailedErrorResponse{ErrorResponse: base, Details: details}, nil
}

// QueryError is the generic typed form of a server-reported error. The
// optional Statement carries the CQL text the failing request executed,
// when the caller has it.
type QueryError struct {
	Code      ErrorCode
	Message   string
	Statement string
}

func (e *QueryError) Error() string {
	return e.Message
}

// UnavailableError reports too few live replicas for the requested
// consistency level.
type UnavailableError struct {
	QueryError
	Consistency Consistency
	Required    int32
	Alive       int32
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s (consistency %s, %d required, %d alive)",
		e.Message, e.Consistency, e.Required, e.Alive)
}

// WriteTimeoutError reports a coordinator-side write timeout.
type WriteTimeoutError struct {
	QueryError
	WriteType   string
	Consistency Consistency
	BlockFor    int32
	Received    int32
}

func (e *WriteTimeoutError) Error() string {
	return fmt.Sprintf("%s (%s write, consistency %s, %d/%d acknowledged)",
		e.Message, e.WriteType, e.Consistency, e.Received, e.BlockFor)
}

// ReadTimeoutError reports a coordinator-side read timeout.
type ReadTimeoutError struct {
	QueryError
	DataPresent bool
	Consistency Consistency
	BlockFor    int32
	Received    int32
}

func (e *ReadTimeoutError) Error() string {
	return fmt.Sprintf("%s (consistency %s, %d/%d responded, data present: %t)",
		e.Message, e.Consistency, e.Received, e.BlockFor, e.DataPresent)
}

// AlreadyExistsError reports an attempt to create an existing keyspace or
// table.
type AlreadyExistsError struct {
	QueryError
	Keyspace string
	Table    string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s (keyspace %q, table %q)", e.Message, e.Keyspace, e.Table)
}

// UnpreparedError reports execution of a statement id the server no longer
// knows; the caller should re-prepare.
type UnpreparedError struct {
	QueryError
	ID []byte
}

func (e *UnpreparedError) Error() string {
	return fmt.Sprintf("%s (statement id %x)", e.Message, e.ID)
}

// ToError converts the response into a typed error value. It is total and
// never fails; the statement is optional context.
func (r *ErrorResponse) ToError(statement string) error {
	return &QueryError{Code: r.Code, Message: r.Message, Statement: statement}
}

// ToError converts the response into the concrete error type for its code,
// populated from the detail fields. Unknown detail-bearing codes fall back
// to the generic QueryError mapping.
func (r *DetailedErrorResponse) ToError(statement string) error {
	base := QueryError{Code: r.Code, Message: r.Message, Statement: statement}
	d := r.Details
	switch r.Code {
	case ErrCodeUnavailable:
		return &UnavailableError{
			QueryError:  base,
			Consistency: detailConsistency(d, "cl"),
			Required:    detailInt32(d, "required"),
			Alive:       detailInt32(d, "alive"),
		}
	case ErrCodeWriteTimeout:
		return &WriteTimeoutError{
			QueryError:  base,
			WriteType:   detailString(d, "write_type"),
			Consistency: detailConsistency(d, "cl"),
			BlockFor:    detailInt32(d, "blockfor"),
			Received:    detailInt32(d, "received"),
		}
	case ErrCodeReadTimeout:
		return &ReadTimeoutError{
			QueryError:  base,
			DataPresent: detailBool(d, "data_present"),
			Consistency: detailConsistency(d, "cl"),
			BlockFor:    detailInt32(d, "blockfor"),
			Received:    detailInt32(d, "received"),
		}
	case ErrCodeAlreadyExists:
		return &AlreadyExistsError{
			QueryError: base,
			Keyspace:   detailString(d, "ks"),
			Table:      detailString(d, "table"),
		}
	case ErrCodeUnprepared:
		id, _ := d["id"].([]byte)
		return &UnpreparedError{QueryError: base, ID: id}
	default:
		return &base
	}
}

func detailConsistency(d map[string]interface{}, key string) Consistency {
	v, _ := d[key].(Consistency)
	return v
}

func detailInt32(d map[string]interface{}, key string) int32 {
	v, _ := d[key].(int32)
	return v
}

func detailString(d map[string]interface{}, key string) string {
	v, _ := d[key].(string)
	return v
}

func detailBool(d map[string]interface{}, key string) bool {
	v, _ := d[key].(bool)
	return v
}
