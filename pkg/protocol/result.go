package protocol

// ResultKind is the secondary selector inside RESULT-opcode frames.
type ResultKind int32

const (
	ResultKindVoid         ResultKind = 0x01
	ResultKindRows         ResultKind = 0x02
	ResultKindSetKeyspace  ResultKind = 0x03
	ResultKindPrepared     ResultKind = 0x04
	ResultKindSchemaChange ResultKind = 0x05
)

// Rows metadata flag bits.
const (
	flagGlobalTablesSpec int32 = 0x01
	flagHasMorePages     int32 = 0x02
	flagNoMetadata       int32 = 0x04
)

// ColumnSpec describes one column of a rows result or one bound parameter
// of a prepared statement.
type ColumnSpec struct {
	Keyspace string
	Table    string
	Name     string
	Type     TypeInfo
}

// RowsMetadata is the decoded metadata prefix of a rows result or prepared
// statement. Columns is nil when the server set the no-metadata flag.
type RowsMetadata struct {
	ColumnCount int32
	PagingState []byte
	Columns     []ColumnSpec
}

// VoidResult is a result with no payload.
type VoidResult struct {
	traced
}

// SetKeyspaceResult confirms a USE statement.
type SetKeyspaceResult struct {
	traced
	Keyspace string
}

// SchemaChangeResult confirms a schema-altering statement.
type SchemaChangeResult struct {
	traced
	Change   string
	Keyspace string
	Table    string
}

// PreparedResult carries the server-assigned statement id plus parameter
// metadata. ResultMetadata is only present for protocol versions above 1.
type PreparedResult struct {
	traced
	ID             []byte
	Metadata       *RowsMetadata
	ResultMetadata *RowsMetadata
}

// RowsResult is a fully-decoded rows result: one slice of values per row,
// aligned with the column specs in Metadata.
type RowsResult struct {
	traced
	Metadata *RowsMetadata
	Rows     [][]interface{}
}

// PagingState returns the continuation token for the next page, if any.
func (r *RowsResult) PagingState() []byte {
	return r.Metadata.PagingState
}

// RawRowsResult is a rows result whose column metadata the server omitted
// because a prior prepare already communicated the types. It owns the
// still-encoded row bytes; the codec never auto-decodes them because it has
// no memory of prior prepares. Call Decode with the column specs cached
// from that prepare.
type RawRowsResult struct {
	traced
	Version        ProtoVersion
	Raw            []byte
	RawPagingState []byte
}

// Decode decodes the carried row bytes using externally supplied column
// specs, producing the RowsResult the server would have produced had it
// included metadata.
func (r *RawRowsResult) Decode(columns []ColumnSpec) (*RowsResult, error) {
	buf := NewBuffer(r.Raw)
	rows, err := readRows(buf, columns)
	if err != nil {
		return nil, err
	}
	return &RowsResult{
		traced: r.traced,
		Metadata: &RowsMetadata{
			ColumnCount: int32(len(columns)),
			PagingState: r.RawPagingState,
			Columns:     columns,
		},
		Rows: rows,
	}, nil
}

// decodeResult reads the result kind word and branches. Unknown kinds are a
// decoding error, never a default.
func decodeResult(version ProtoVersion, buf *Buffer, traceID *UUID) (Response, error) {
	kind, err := buf.ReadInt()
	if err != nil {
		return nil, err
	}
	switch ResultKind(kind) {
	case ResultKindVoid:
		return &VoidResult{traced{TraceID: traceID}}, nil
	case ResultKindRows:
		return decodeRows(version, buf, traceID)
	case ResultKindSetKeyspace:
		keyspace, err := buf.ReadString()
		if err != nil {
			return nil, err
		}
		return &SetKeyspaceResult{traced{TraceID: traceID}, keyspace}, nil
	case ResultKindPrepared:
		return decodePrepared(version, buf, traceID)
	case ResultKindSchemaChange:
		change, err := buf.ReadString()
		if err != nil {
			return nil, err
		}
		keyspace, err := buf.ReadString()
		if err != nil {
			return nil, err
		}
		table, err := buf.ReadString()
		if err != nil {
			return nil, err
		}
		return &SchemaChangeResult{traced{TraceID: traceID}, change, keyspace, table}, nil
	default:
		return nil, decodeErrorf("unknown result kind 0x%08x", kind)
	}
}

func decodeRows(version ProtoVersion, buf *Buffer, traceID *UUID) (Response, error) {
	meta, err := readMetadata(buf)
	if err != nil {
		return nil, err
	}
	if meta.Columns == nil {
		// No metadata on the wire: hand the still-encoded rows to the
		// caller for deferred decoding. Copy, because the backing arena
		// is reused by the next Feed.
		raw := make([]byte, buf.Remaining())
		copy(raw, buf.Bytes())
		_ = buf.Discard(len(raw))
		return &RawRowsResult{
			traced:         traced{TraceID: traceID},
			Version:        version,
			Raw:            raw,
			RawPagingState: meta.PagingState,
		}, nil
	}
	rows, err := readRows(buf, meta.Columns)
	if err != nil {
		return nil, err
	}
	return &RowsResult{traced: traced{TraceID: traceID}, Metadata: meta, Rows: rows}, nil
}

func decodePrepared(version ProtoVersion, buf *Buffer, traceID *UUID) (Response, error) {
	id, err := buf.ReadShortBytes()
	if err != nil {
		return nil, err
	}
	meta, err := readMetadata(buf)
	if err != nil {
		return nil, err
	}
	prepared := &PreparedResult{
		traced:   traced{TraceID: traceID},
		ID:       id,
		Metadata: meta,
	}
	if version > ProtoVersion1 {
		if prepared.ResultMetadata, err = readMetadata(buf); err != nil {
			return nil, err
		}
	}
	return prepared, nil
}

// readMetadata reads the shared metadata prefix: flags, column count,
// paging state when the has-more-pages flag is set, then column specs
// unless the no-metadata flag is set.
func readMetadata(buf *Buffer) (*RowsMetadata, error) {
	flags, err := buf.ReadInt()
	if err != nil {
		return nil, err
	}
	count, err := buf.ReadInt()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, decodeErrorf("negative column count %d", count)
	}
	meta := &RowsMetadata{ColumnCount: count}

	if flags&flagHasMorePages != 0 {
		if meta.PagingState, err = buf.ReadBytes(); err != nil {
			return nil, err
		}
	}
	if flags&flagNoMetadata != 0 {
		return meta, nil
	}

	var keyspace, table string
	global := flags&flagGlobalTablesSpec != 0
	if global {
		if keyspace, err = buf.ReadString(); err != nil {
			return nil, err
		}
		if table, err = buf.ReadString(); err != nil {
			return nil, err
		}
	}

	columns := make([]ColumnSpec, count)
	for i := range columns {
		col := &columns[i]
		if global {
			col.Keyspace, col.Table = keyspace, table
		} else {
			if col.Keyspace, err = buf.ReadString(); err != nil {
				return nil, err
			}
			if col.Table, err = buf.ReadString(); err != nil {
				return nil, err
			}
		}
		if col.Name, err = buf.ReadString(); err != nil {
			return nil, err
		}
		if col.Type, err = readTypeInfo(buf); err != nil {
			return nil, err
		}
	}
	meta.Columns = columns
	return meta, nil
}

// readRows reads the row count word and then each cell, decoding non-null
// cells into typed values per the column specs.
func readRows(buf *Buffer, columns []ColumnSpec) ([][]interface{}, error) {
	count, err := buf.ReadInt()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, decodeErrorf("negative row count %d", count)
	}
	rows := make([][]interface{}, count)
	for i := range rows {
		row := make([]interface{}, len(columns))
		for j := range columns {
			cell, err := buf.ReadBytes()
			if err != nil {
				return nil, err
			}
			if cell == nil {
				continue
			}
			if row[j], err = DecodeValue(columns[j].Type, cell); err != nil {
				return nil, err
			}
		}
		rows[i] = row
	}
	return rows, nil
}
