package protocol

import "net"

// Event type strings as they appear on the wire.
const (
	EventTypeSchemaChange   = "SCHEMA_CHANGE"
	EventTypeStatusChange   = "STATUS_CHANGE"
	EventTypeTopologyChange = "TOPOLOGY_CHANGE"
)

// SchemaChangeEvent is pushed when a keyspace or table definition changes.
// Table is empty for keyspace-level changes.
type SchemaChangeEvent struct {
	traced
	Change   string
	Keyspace string
	Table    string
}

// StatusChangeEvent is pushed when a node goes up or down.
type StatusChangeEvent struct {
	traced
	Change  string
	Address net.IP
	Port    int32
}

// TopologyChangeEvent is pushed when a node joins, leaves, or moves.
type TopologyChangeEvent struct {
	traced
	Change  string
	Address net.IP
	Port    int32
}

// decodeEvent branches on the literal event-type string. Unknown kinds are
// a decoding error.
func decodeEvent(buf *Buffer, traceID *UUID) (Response, error) {
	eventType, err := buf.ReadString()
	if err != nil {
		return nil, err
	}
	switch eventType {
	case EventTypeSchemaChange:
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
		return &SchemaChangeEvent{traced{TraceID: traceID}, change, keyspace, table}, nil
	case EventTypeStatusChange:
		change, err := buf.ReadString()
		if err != nil {
			return nil, err
		}
		addr, port, err := buf.ReadInet()
		if err != nil {
			return nil, err
		}
		return &StatusChangeEvent{traced{TraceID: traceID}, change, addr, port}, nil
	case EventTypeTopologyChange:
		change, err := buf.ReadString()
		if err != nil {
			return nil, err
		}
		addr, port, err := buf.ReadInet()
		if err != nil {
			return nil, err
		}
		return &TopologyChangeEvent{traced{TraceID: traceID}, change, addr, port}, nil
	default:
		return nil, decodeErrorf("unknown event kind %q", eventType)
	}
}
