package protocol

import (
	"bytes"
	"testing"
)

func TestStartupRequestBody(t *testing.T) {
	req := NewStartupRequest("3.0.0", "snappy")
	buf := NewBuffer(nil)
	if err := req.WriteBody(ProtoVersion1, buf); err != nil {
		t.Fatal(err)
	}
	m, err := buf.ReadStringMap()
	if err != nil {
		t.Fatal(err)
	}
	if m["CQL_VERSION"] != "3.0.0" || m["COMPRESSION"] != "snappy" {
		t.Errorf("options = %v", m)
	}

	req = NewStartupRequest("3.0.0", "")
	if _, ok := req.Options["COMPRESSION"]; ok {
		t.Error("COMPRESSION present without an algorithm")
	}
}

func TestOptionsRequestEmptyBody(t *testing.T) {
	buf := NewBuffer(nil)
	if err := (&OptionsRequest{}).WriteBody(ProtoVersion2, buf); err != nil {
		t.Fatal(err)
	}
	if buf.Remaining() != 0 {
		t.Errorf("OPTIONS body = %d bytes, want 0", buf.Remaining())
	}
}

func TestCredentialsRequestVersionGate(t *testing.T) {
	req := &CredentialsRequest{Credentials: map[string]string{"username": "u", "password": "p"}}
	if err := req.WriteBody(ProtoVersion2, NewBuffer(nil)); err == nil {
		t.Error("CREDENTIALS accepted on v2")
	}
	buf := NewBuffer(nil)
	if err := req.WriteBody(ProtoVersion1, buf); err != nil {
		t.Fatal(err)
	}
	m, err := buf.ReadStringMap()
	if err != nil || m["username"] != "u" {
		t.Errorf("credentials = %v, %v", m, err)
	}
}

func TestAuthResponseRequestVersionGate(t *testing.T) {
	req := &AuthResponseRequest{Token: []byte("tok")}
	if err := req.WriteBody(ProtoVersion1, NewBuffer(nil)); err == nil {
		t.Error("AUTH_RESPONSE accepted on v1")
	}
	buf := NewBuffer(nil)
	if err := req.WriteBody(ProtoVersion2, buf); err != nil {
		t.Fatal(err)
	}
	tok, err := buf.ReadBytes()
	if err != nil || !bytes.Equal(tok, []byte("tok")) {
		t.Errorf("token = %q, %v", tok, err)
	}
}

func TestRegisterRequestBody(t *testing.T) {
	buf := NewBuffer(nil)
	req := &RegisterRequest{Events: []string{EventTypeStatusChange, EventTypeTopologyChange}}
	if err := req.WriteBody(ProtoVersion2, buf); err != nil {
		t.Fatal(err)
	}
	list, err := buf.ReadStringList()
	if err != nil || len(list) != 2 || list[0] != EventTypeStatusChange {
		t.Errorf("events = %v, %v", list, err)
	}
}

func TestPrepareRequestBody(t *testing.T) {
	buf := NewBuffer(nil)
	req := &PrepareRequest{CQL: "SELECT * FROM t WHERE id = ?"}
	if err := req.WriteBody(ProtoVersion2, buf); err != nil {
		t.Fatal(err)
	}
	cql, err := buf.ReadLongString()
	if err != nil || cql != "SELECT * FROM t WHERE id = ?" {
		t.Errorf("cql = %q, %v", cql, err)
	}
	if buf.Remaining() != 0 {
		t.Errorf("%d trailing bytes", buf.Remaining())
	}
}

func TestQueryRequestV1(t *testing.T) {
	buf := NewBuffer(nil)
	req := &QueryRequest{CQL: "SELECT 1", Consistency: ConsistencyQuorum}
	if err := req.WriteBody(ProtoVersion1, buf); err != nil {
		t.Fatal(err)
	}
	if cql, err := buf.ReadLongString(); err != nil || cql != "SELECT 1" {
		t.Fatalf("cql = %q, %v", cql, err)
	}
	if cl, err := buf.ReadConsistency(); err != nil || cl != ConsistencyQuorum {
		t.Fatalf("consistency = %v, %v", cl, err)
	}
	if buf.Remaining() != 0 {
		t.Errorf("%d trailing bytes", buf.Remaining())
	}
}

func TestQueryRequestV1RejectsV2Features(t *testing.T) {
	tests := []struct {
		name string
		req  *QueryRequest
	}{
		{"values", &QueryRequest{CQL: "q", Values: []interface{}{1}, Types: []TypeInfo{SimpleType(TypeInt)}}},
		{"page size", &QueryRequest{CQL: "q", PageSize: 100}},
		{"paging state", &QueryRequest{CQL: "q", PagingState: []byte{1}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.req.WriteBody(ProtoVersion1, NewBuffer(nil)); err == nil {
				t.Error("v1 body accepted v2-only parameters")
			}
		})
	}
}

func TestQueryRequestV2Flags(t *testing.T) {
	serial := ConsistencySerial
	req := &QueryRequest{
		CQL:               "SELECT * FROM t WHERE id = ?",
		Consistency:       ConsistencyOne,
		Values:            []interface{}{int32(1)},
		Types:             []TypeInfo{SimpleType(TypeInt)},
		PageSize:          5000,
		PagingState:       []byte{0xAB},
		SerialConsistency: &serial,
	}
	buf := NewBuffer(nil)
	if err := req.WriteBody(ProtoVersion2, buf); err != nil {
		t.Fatal(err)
	}

	if _, err := buf.ReadLongString(); err != nil {
		t.Fatal(err)
	}
	cl, err := buf.ReadConsistency()
	if err != nil || cl != ConsistencyOne {
		t.Fatalf("consistency = %v, %v", cl, err)
	}
	flags, err := buf.ReadByte()
	if err != nil {
		t.Fatal(err)
	}
	want := queryFlagValues | queryFlagPageSize | queryFlagPagingState | queryFlagSerialConsistency
	if flags != want {
		t.Fatalf("flags = %#x, want %#x", flags, want)
	}

	// Flagged sections follow in fixed order.
	if n, err := buf.ReadShort(); err != nil || n != 1 {
		t.Fatalf("value count = %d, %v", n, err)
	}
	if v, err := buf.ReadBytes(); err != nil || !bytes.Equal(v, []byte{0, 0, 0, 1}) {
		t.Fatalf("value = %x, %v", v, err)
	}
	if ps, err := buf.ReadInt(); err != nil || ps != 5000 {
		t.Fatalf("page size = %d, %v", ps, err)
	}
	if st, err := buf.ReadBytes(); err != nil || !bytes.Equal(st, []byte{0xAB}) {
		t.Fatalf("paging state = %x, %v", st, err)
	}
	if sc, err := buf.ReadConsistency(); err != nil || sc != ConsistencySerial {
		t.Fatalf("serial consistency = %v, %v", sc, err)
	}
	if buf.Remaining() != 0 {
		t.Errorf("%d trailing bytes", buf.Remaining())
	}
}

func TestQueryRequestV2NoOptions(t *testing.T) {
	req := &QueryRequest{CQL: "SELECT 1", Consistency: ConsistencyAll}
	buf := NewBuffer(nil)
	if err := req.WriteBody(ProtoVersion2, buf); err != nil {
		t.Fatal(err)
	}
	if _, err := buf.ReadLongString(); err != nil {
		t.Fatal(err)
	}
	if _, err := buf.ReadConsistency(); err != nil {
		t.Fatal(err)
	}
	flags, err := buf.ReadByte()
	if err != nil || flags != 0 {
		t.Errorf("flags = %#x, %v, want 0", flags, err)
	}
	if buf.Remaining() != 0 {
		t.Errorf("%d trailing bytes", buf.Remaining())
	}
}

func TestExecuteRequestV1(t *testing.T) {
	req := &ExecuteRequest{
		ID:          []byte{0xAA},
		Values:      []interface{}{"bob"},
		Types:       []TypeInfo{SimpleType(TypeVarchar)},
		Consistency: ConsistencyTwo,
	}
	buf := NewBuffer(nil)
	if err := req.WriteBody(ProtoVersion1, buf); err != nil {
		t.Fatal(err)
	}
	if id, err := buf.ReadShortBytes(); err != nil || !bytes.Equal(id, []byte{0xAA}) {
		t.Fatalf("id = %x, %v", id, err)
	}
	if n, err := buf.ReadShort(); err != nil || n != 1 {
		t.Fatalf("value count = %d, %v", n, err)
	}
	if v, err := buf.ReadBytes(); err != nil || string(v) != "bob" {
		t.Fatalf("value = %q, %v", v, err)
	}
	if cl, err := buf.ReadConsistency(); err != nil || cl != ConsistencyTwo {
		t.Fatalf("consistency = %v, %v", cl, err)
	}
}

func TestExecuteRequestV2SkipMetadata(t *testing.T) {
	req := &ExecuteRequest{ID: []byte{1}, Consistency: ConsistencyOne, SkipMetadata: true}
	buf := NewBuffer(nil)
	if err := req.WriteBody(ProtoVersion2, buf); err != nil {
		t.Fatal(err)
	}
	if _, err := buf.ReadShortBytes(); err != nil {
		t.Fatal(err)
	}
	if _, err := buf.ReadConsistency(); err != nil {
		t.Fatal(err)
	}
	flags, err := buf.ReadByte()
	if err != nil {
		t.Fatal(err)
	}
	if flags != queryFlagSkipMetadata {
		t.Errorf("flags = %#x, want %#x", flags, queryFlagSkipMetadata)
	}
}

func TestBatchRequestBody(t *testing.T) {
	req := &BatchRequest{
		Type: BatchUnlogged,
		Statements: []BatchStatement{
			{CQL: "INSERT INTO t (id) VALUES (1)"},
			{ID: []byte{0xFE}, Values: []interface{}{int32(2)}, Types: []TypeInfo{SimpleType(TypeInt)}},
		},
		Consistency: ConsistencyQuorum,
	}

	if err := req.WriteBody(ProtoVersion1, NewBuffer(nil)); err == nil {
		t.Fatal("BATCH accepted on v1")
	}

	buf := NewBuffer(nil)
	if err := req.WriteBody(ProtoVersion2, buf); err != nil {
		t.Fatal(err)
	}
	if kind, err := buf.ReadByte(); err != nil || BatchType(kind) != BatchUnlogged {
		t.Fatalf("batch type = %d, %v", kind, err)
	}
	if n, err := buf.ReadShort(); err != nil || n != 2 {
		t.Fatalf("statement count = %d, %v", n, err)
	}

	// First statement: inline CQL, no values.
	if kind, err := buf.ReadByte(); err != nil || kind != 0 {
		t.Fatalf("statement kind = %d, %v", kind, err)
	}
	if cql, err := buf.ReadLongString(); err != nil || cql != "INSERT INTO t (id) VALUES (1)" {
		t.Fatalf("cql = %q, %v", cql, err)
	}
	if n, err := buf.ReadShort(); err != nil || n != 0 {
		t.Fatalf("value count = %d, %v", n, err)
	}

	// Second statement: prepared id with one value.
	if kind, err := buf.ReadByte(); err != nil || kind != 1 {
		t.Fatalf("statement kind = %d, %v", kind, err)
	}
	if id, err := buf.ReadShortBytes(); err != nil || !bytes.Equal(id, []byte{0xFE}) {
		t.Fatalf("id = %x, %v", id, err)
	}
	if n, err := buf.ReadShort(); err != nil || n != 1 {
		t.Fatalf("value count = %d, %v", n, err)
	}
	if v, err := buf.ReadBytes(); err != nil || !bytes.Equal(v, []byte{0, 0, 0, 2}) {
		t.Fatalf("value = %x, %v", v, err)
	}

	if cl, err := buf.ReadConsistency(); err != nil || cl != ConsistencyQuorum {
		t.Fatalf("consistency = %v, %v", cl, err)
	}
	if buf.Remaining() != 0 {
		t.Errorf("%d trailing bytes", buf.Remaining())
	}
}

func TestRequestOpcodes(t *testing.T) {
	tests := []struct {
		req  Request
		want Opcode
	}{
		{&StartupRequest{}, OpStartup},
		{&OptionsRequest{}, OpOptions},
		{&CredentialsRequest{}, OpCredentials},
		{&AuthResponseRequest{}, OpAuthResponse},
		{&RegisterRequest{}, OpRegister},
		{&PrepareRequest{}, OpPrepare},
		{&QueryRequest{}, OpQuery},
		{&ExecuteRequest{}, OpExecute},
		{&BatchRequest{}, OpBatch},
	}
	for _, tc := range tests {
		if got := tc.req.Opcode(); got != tc.want {
			t.Errorf("%T.Opcode() = %s, want %s", tc.req, got, tc.want)
		}
	}
}

func TestStartupRefusesCompression(t *testing.T) {
	if (&StartupRequest{}).Compressable() {
		t.Error("STARTUP reports itself compressable")
	}
	if (&OptionsRequest{}).Compressable() {
		t.Error("OPTIONS reports itself compressable")
	}
	if !(&QueryRequest{}).Compressable() {
		t.Error("QUERY refuses compression")
	}
}
