package protocol

import "github.com/pkg/errors"

// Request is an outgoing frame body. Implementations serialize themselves
// for a given protocol version; the FrameEncoder owns the header, the
// compression decision, and the stream id.
type Request interface {
	// Opcode selects the frame's structural kind.
	Opcode() Opcode

	// Trace reports whether the server should trace this request; it
	// drives the header tracing flag.
	Trace() bool

	// Compressable reports whether the body may be compressed. Frames
	// that precede compression negotiation must refuse.
	Compressable() bool

	// WriteBody appends the body serialization for the given protocol
	// version.
	WriteBody(version ProtoVersion, buf *Buffer) error
}

// StartupRequest initializes a connection. Options must include
// CQL_VERSION and may include COMPRESSION; NewStartupRequest fills the
// defaults.
type StartupRequest struct {
	Options map[string]string
}

// NewStartupRequest builds a startup request for the given CQL version and
// optional compression algorithm name.
func NewStartupRequest(cqlVersion, compression string) *StartupRequest {
	options := map[string]string{"CQL_VERSION": cqlVersion}
	if compression != "" {
		options["COMPRESSION"] = compression
	}
	return &StartupRequest{Options: options}
}

func (r *StartupRequest) Opcode() Opcode     { return OpStartup }
func (r *StartupRequest) Trace() bool        { return false }
func (r *StartupRequest) Compressable() bool { return false }

func (r *StartupRequest) WriteBody(version ProtoVersion, buf *Buffer) error {
	buf.AppendStringMap(r.Options)
	return nil
}

// OptionsRequest asks the server which startup options it supports. It has
// no body.
type OptionsRequest struct{}

func (r *OptionsRequest) Opcode() Opcode     { return OpOptions }
func (r *OptionsRequest) Trace() bool        { return false }
func (r *OptionsRequest) Compressable() bool { return false }

func (r *OptionsRequest) WriteBody(version ProtoVersion, buf *Buffer) error {
	return nil
}

// CredentialsRequest answers an AUTHENTICATE response in protocol
// version 1.
type CredentialsRequest struct {
	Credentials map[string]string
}

func (r *CredentialsRequest) Opcode() Opcode     { return OpCredentials }
func (r *CredentialsRequest) Trace() bool        { return false }
func (r *CredentialsRequest) Compressable() bool { return true }

func (r *CredentialsRequest) WriteBody(version ProtoVersion, buf *Buffer) error {
	if version > ProtoVersion1 {
		return errors.Errorf("protocol: CREDENTIALS is a v1 request, connection is v%d", version)
	}
	buf.AppendStringMap(r.Credentials)
	return nil
}

// AuthResponseRequest carries a SASL token in protocol version 2.
type AuthResponseRequest struct {
	Token []byte
}

func (r *AuthResponseRequest) Opcode() Opcode     { return OpAuthResponse }
func (r *AuthResponseRequest) Trace() bool        { return false }
func (r *AuthResponseRequest) Compressable() bool { return true }

func (r *AuthResponseRequest) WriteBody(version ProtoVersion, buf *Buffer) error {
	if version < ProtoVersion2 {
		return errors.Errorf("protocol: AUTH_RESPONSE requires v2, connection is v%d", version)
	}
	buf.AppendBytes(r.Token)
	return nil
}

// RegisterRequest subscribes the connection to server push events.
type RegisterRequest struct {
	Events []string
}

func (r *RegisterRequest) Opcode() Opcode     { return OpRegister }
func (r *RegisterRequest) Trace() bool        { return false }
func (r *RegisterRequest) Compressable() bool { return true }

func (r *RegisterRequest) WriteBody(version ProtoVersion, buf *Buffer) error {
	buf.AppendStringList(r.Events)
	return nil
}

// PrepareRequest asks the server to parse a statement and return an
// executable id plus parameter metadata.
type PrepareRequest struct {
	CQL     string
	Tracing bool
}

func (r *PrepareRequest) Opcode() Opcode     { return OpPrepare }
func (r *PrepareRequest) Trace() bool        { return r.Tracing }
func (r *PrepareRequest) Compressable() bool { return true }

func (r *PrepareRequest) WriteBody(version ProtoVersion, buf *Buffer) error {
	buf.AppendLongString(r.CQL)
	return nil
}

// Query parameter flag bits, protocol version 2.
const (
	queryFlagValues            byte = 0x01
	queryFlagSkipMetadata      byte = 0x02
	queryFlagPageSize          byte = 0x04
	queryFlagPagingState       byte = 0x08
	queryFlagSerialConsistency byte = 0x10
)

// QueryRequest runs an ad hoc statement. Values/Types, PageSize,
// PagingState and SerialConsistency require protocol version 2.
type QueryRequest struct {
	CQL               string
	Consistency       Consistency
	Values            []interface{}
	Types             []TypeInfo
	PageSize          int32
	PagingState       []byte
	SerialConsistency *Consistency
	Tracing           bool
}

func (r *QueryRequest) Opcode() Opcode     { return OpQuery }
func (r *QueryRequest) Trace() bool        { return r.Tracing }
func (r *QueryRequest) Compressable() bool { return true }

func (r *QueryRequest) WriteBody(version ProtoVersion, buf *Buffer) error {
	buf.AppendLongString(r.CQL)
	if version < ProtoVersion2 {
		if len(r.Values) > 0 || r.PageSize > 0 || r.PagingState != nil || r.SerialConsistency != nil {
			return errors.New("protocol: bound values and paging require v2")
		}
		buf.AppendConsistency(r.Consistency)
		return nil
	}
	return writeQueryParameters(buf, queryParameters{
		consistency:       r.Consistency,
		values:            r.Values,
		types:             r.Types,
		pageSize:          r.PageSize,
		pagingState:       r.PagingState,
		serialConsistency: r.SerialConsistency,
	})
}

// ExecuteRequest runs a previously prepared statement by id. The Types
// come from the prepare's parameter metadata, cached by the caller.
type ExecuteRequest struct {
	ID                []byte
	Values            []interface{}
	Types             []TypeInfo
	Consistency       Consistency
	SkipMetadata      bool
	PageSize          int32
	PagingState       []byte
	SerialConsistency *Consistency
	Tracing           bool
}

func (r *ExecuteRequest) Opcode() Opcode     { return OpExecute }
func (r *ExecuteRequest) Trace() bool        { return r.Tracing }
func (r *ExecuteRequest) Compressable() bool { return true }

func (r *ExecuteRequest) WriteBody(version ProtoVersion, buf *Buffer) error {
	buf.AppendShortBytes(r.ID)
	if version < ProtoVersion2 {
		buf.AppendShort(uint16(len(r.Values)))
		if err := WriteParameters(buf, r.Values, r.Types); err != nil {
			return err
		}
		buf.AppendConsistency(r.Consistency)
		return nil
	}
	return writeQueryParameters(buf, queryParameters{
		consistency:       r.Consistency,
		values:            r.Values,
		types:             r.Types,
		skipMetadata:      r.SkipMetadata,
		pageSize:          r.PageSize,
		pagingState:       r.PagingState,
		serialConsistency: r.SerialConsistency,
	})
}

// queryParameters is the shared v2 layout following a QUERY string or an
// EXECUTE id: consistency, flags, then each flagged section in order.
type queryParameters struct {
	consistency       Consistency
	values            []interface{}
	types             []TypeInfo
	skipMetadata      bool
	pageSize          int32
	pagingState       []byte
	serialConsistency *Consistency
}

func writeQueryParameters(buf *Buffer, p queryParameters) error {
	buf.AppendConsistency(p.consistency)

	var flags byte
	if len(p.values) > 0 {
		flags |= queryFlagValues
	}
	if p.skipMetadata {
		flags |= queryFlagSkipMetadata
	}
	if p.pageSize > 0 {
		flags |= queryFlagPageSize
	}
	if p.pagingState != nil {
		flags |= queryFlagPagingState
	}
	if p.serialConsistency != nil {
		flags |= queryFlagSerialConsistency
	}
	buf.AppendByte(flags)

	if len(p.values) > 0 {
		buf.AppendShort(uint16(len(p.values)))
		if err := WriteParameters(buf, p.values, p.types); err != nil {
			return err
		}
	}
	if p.pageSize > 0 {
		buf.AppendInt(p.pageSize)
	}
	if p.pagingState != nil {
		buf.AppendBytes(p.pagingState)
	}
	if p.serialConsistency != nil {
		buf.AppendConsistency(*p.serialConsistency)
	}
	return nil
}

// BatchType selects the batch semantics.
type BatchType byte

const (
	BatchLogged   BatchType = 0
	BatchUnlogged BatchType = 1
	BatchCounter  BatchType = 2
)

// BatchStatement is one statement inside a batch: either inline CQL or a
// prepared id, plus its bound values.
type BatchStatement struct {
	CQL    string
	ID     []byte // prepared id; takes precedence over CQL when set
	Values []interface{}
	Types  []TypeInfo
}

// BatchRequest runs several statements atomically per the batch type.
// Protocol version 2 only.
type BatchRequest struct {
	Type        BatchType
	Statements  []BatchStatement
	Consistency Consistency
	Tracing     bool
}

func (r *BatchRequest) Opcode() Opcode     { return OpBatch }
func (r *BatchRequest) Trace() bool        { return r.Tracing }
func (r *BatchRequest) Compressable() bool { return true }

func (r *BatchRequest) WriteBody(version ProtoVersion, buf *Buffer) error {
	if version < ProtoVersion2 {
		return errors.Errorf("protocol: BATCH requires v2, connection is v%d", version)
	}
	buf.AppendByte(byte(r.Type))
	buf.AppendShort(uint16(len(r.Statements)))
	for i := range r.Statements {
		s := &r.Statements[i]
		if s.ID != nil {
			buf.AppendByte(1)
			buf.AppendShortBytes(s.ID)
		} else {
			buf.AppendByte(0)
			buf.AppendLongString(s.CQL)
		}
		buf.AppendShort(uint16(len(s.Values)))
		if err := WriteParameters(buf, s.Values, s.Types); err != nil {
			return errors.Wrapf(err, "batch statement %d", i)
		}
	}
	buf.AppendConsistency(r.Consistency)
	return nil
}
