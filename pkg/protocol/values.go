package protocol

import (
	"math"
	"math/big"
	"net"
	"time"

	"github.com/pkg/errors"
)

// Type is the wire tag of a CQL data type.
type Type uint16

const (
	TypeCustom    Type = 0x0000
	TypeASCII     Type = 0x0001
	TypeBigInt    Type = 0x0002
	TypeBlob      Type = 0x0003
	TypeBoolean   Type = 0x0004
	TypeCounter   Type = 0x0005
	TypeDecimal   Type = 0x0006
	TypeDouble    Type = 0x0007
	TypeFloat     Type = 0x0008
	TypeInt       Type = 0x0009
	TypeText      Type = 0x000A
	TypeTimestamp Type = 0x000B
	TypeUUID      Type = 0x000C
	TypeVarchar   Type = 0x000D
	TypeVarint    Type = 0x000E
	TypeTimeUUID  Type = 0x000F
	TypeInet      Type = 0x0010
	TypeList      Type = 0x0020
	TypeMap       Type = 0x0021
	TypeSet       Type = 0x0022
)

// TypeInfo is the possibly-nested type of a column or bound parameter.
// Key is set for maps, Elem for lists and sets and the value side of maps,
// Custom for server-defined marshaller classes.
type TypeInfo struct {
	Type   Type
	Custom string
	Key    *TypeInfo
	Elem   *TypeInfo
}

// SimpleType builds a TypeInfo with no nested structure.
func SimpleType(t Type) TypeInfo {
	return TypeInfo{Type: t}
}

// ListType builds a list or set TypeInfo.
func ListType(t Type, elem TypeInfo) TypeInfo {
	return TypeInfo{Type: t, Elem: &elem}
}

// MapType builds a map TypeInfo.
func MapType(key, value TypeInfo) TypeInfo {
	return TypeInfo{Type: TypeMap, Key: &key, Elem: &value}
}

// readTypeInfo consumes a type option: a short tag, then a class name for
// custom types or nested options for collections.
func readTypeInfo(buf *Buffer) (TypeInfo, error) {
	id, err := buf.ReadShort()
	if err != nil {
		return TypeInfo{}, err
	}
	t := TypeInfo{Type: Type(id)}
	switch t.Type {
	case TypeCustom:
		if t.Custom, err = buf.ReadString(); err != nil {
			return TypeInfo{}, err
		}
	case TypeList, TypeSet:
		elem, err := readTypeInfo(buf)
		if err != nil {
			return TypeInfo{}, err
		}
		t.Elem = &elem
	case TypeMap:
		key, err := readTypeInfo(buf)
		if err != nil {
			return TypeInfo{}, err
		}
		elem, err := readTypeInfo(buf)
		if err != nil {
			return TypeInfo{}, err
		}
		t.Key = &key
		t.Elem = &elem
	}
	return t, nil
}

// appendTypeInfo writes the type option form of t.
func appendTypeInfo(buf *Buffer, t TypeInfo) {
	buf.AppendShort(uint16(t.Type))
	switch t.Type {
	case TypeCustom:
		buf.AppendString(t.Custom)
	case TypeList, TypeSet:
		appendTypeInfo(buf, *t.Elem)
	case TypeMap:
		appendTypeInfo(buf, *t.Key)
		appendTypeInfo(buf, *t.Elem)
	}
}

// Decimal is an arbitrary-precision decimal: Unscaled * 10^-Scale.
type Decimal struct {
	Scale    int32
	Unscaled *big.Int
}

// DecodeValue turns the raw cell bytes of a column into a Go value
// according to the column's type. A nil cell is handled by the caller;
// b is never nil here.
func DecodeValue(t TypeInfo, b []byte) (interface{}, error) {
	switch t.Type {
	case TypeASCII, TypeText, TypeVarchar, TypeCustom:
		return string(b), nil
	case TypeBlob:
		return b, nil
	case TypeBigInt, TypeCounter:
		if len(b) != 8 {
			return nil, decodeErrorf("bigint cell has %d bytes", len(b))
		}
		return int64(uint64(b[0])<<56 | uint64(b[1])<<48 | uint64(b[2])<<40 | uint64(b[3])<<32 |
			uint64(b[4])<<24 | uint64(b[5])<<16 | uint64(b[6])<<8 | uint64(b[7])), nil
	case TypeInt:
		if len(b) != 4 {
			return nil, decodeErrorf("int cell has %d bytes", len(b))
		}
		return int32(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])), nil
	case TypeBoolean:
		if len(b) != 1 {
			return nil, decodeErrorf("boolean cell has %d bytes", len(b))
		}
		return b[0] != 0, nil
	case TypeDouble:
		if len(b) != 8 {
			return nil, decodeErrorf("double cell has %d bytes", len(b))
		}
		bits := uint64(b[0])<<56 | uint64(b[1])<<48 | uint64(b[2])<<40 | uint64(b[3])<<32 |
			uint64(b[4])<<24 | uint64(b[5])<<16 | uint64(b[6])<<8 | uint64(b[7])
		return math.Float64frombits(bits), nil
	case TypeFloat:
		if len(b) != 4 {
			return nil, decodeErrorf("float cell has %d bytes", len(b))
		}
		bits := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
		return math.Float32frombits(bits), nil
	case TypeTimestamp:
		if len(b) != 8 {
			return nil, decodeErrorf("timestamp cell has %d bytes", len(b))
		}
		ms := int64(uint64(b[0])<<56 | uint64(b[1])<<48 | uint64(b[2])<<40 | uint64(b[3])<<32 |
			uint64(b[4])<<24 | uint64(b[5])<<16 | uint64(b[6])<<8 | uint64(b[7]))
		return time.UnixMilli(ms).UTC(), nil
	case TypeUUID, TypeTimeUUID:
		return UUIDFromBytes(b)
	case TypeVarint:
		return decodeBigInt(b), nil
	case TypeDecimal:
		if len(b) < 4 {
			return nil, decodeErrorf("decimal cell has %d bytes", len(b))
		}
		scale := int32(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]))
		return Decimal{Scale: scale, Unscaled: decodeBigInt(b[4:])}, nil
	case TypeInet:
		if len(b) != 4 && len(b) != 16 {
			return nil, decodeErrorf("inet cell has %d bytes", len(b))
		}
		ip := make(net.IP, len(b))
		copy(ip, b)
		return ip, nil
	case TypeList, TypeSet:
		return decodeListValue(*t.Elem, b)
	case TypeMap:
		return decodeMapValue(*t.Key, *t.Elem, b)
	default:
		return nil, decodeErrorf("unsupported column type 0x%04x", uint16(t.Type))
	}
}

// Collections use short counts and short-length elements in protocol
// versions 1 and 2.
func decodeListValue(elem TypeInfo, b []byte) ([]interface{}, error) {
	buf := NewBuffer(b)
	n, err := buf.ReadShort()
	if err != nil {
		return nil, err
	}
	list := make([]interface{}, n)
	for i := range list {
		eb, err := buf.ReadShortBytes()
		if err != nil {
			return nil, err
		}
		if list[i], err = DecodeValue(elem, eb); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func decodeMapValue(key, value TypeInfo, b []byte) (map[interface{}]interface{}, error) {
	buf := NewBuffer(b)
	n, err := buf.ReadShort()
	if err != nil {
		return nil, err
	}
	m := make(map[interface{}]interface{}, n)
	for i := 0; i < int(n); i++ {
		kb, err := buf.ReadShortBytes()
		if err != nil {
			return nil, err
		}
		k, err := DecodeValue(key, kb)
		if err != nil {
			return nil, err
		}
		vb, err := buf.ReadShortBytes()
		if err != nil {
			return nil, err
		}
		v, err := DecodeValue(value, vb)
		if err != nil {
			return nil, err
		}
		m[k] = v
	}
	return m, nil
}

// EncodeValue turns a Go value into raw cell bytes according to the target
// CQL type. It accepts the same representations DecodeValue produces plus
// the obvious widenings (int and int64 for integral types, string for
// text-like types).
func EncodeValue(t TypeInfo, v interface{}) ([]byte, error) {
	switch t.Type {
	case TypeASCII, TypeText, TypeVarchar, TypeCustom:
		s, ok := v.(string)
		if !ok {
			return nil, encodeTypeError(t, v)
		}
		return []byte(s), nil
	case TypeBlob:
		b, ok := v.([]byte)
		if !ok {
			return nil, encodeTypeError(t, v)
		}
		return b, nil
	case TypeBigInt, TypeCounter, TypeTimestamp:
		n, err := asInt64(t, v)
		if err != nil {
			return nil, err
		}
		return appendLongBytes(n), nil
	case TypeInt:
		var n int32
		switch x := v.(type) {
		case int32:
			n = x
		case int:
			n = int32(x)
		default:
			return nil, encodeTypeError(t, v)
		}
		return []byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}, nil
	case TypeBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, encodeTypeError(t, v)
		}
		if b {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case TypeDouble:
		f, ok := v.(float64)
		if !ok {
			return nil, encodeTypeError(t, v)
		}
		return appendLongBytes(int64(math.Float64bits(f))), nil
	case TypeFloat:
		f, ok := v.(float32)
		if !ok {
			return nil, encodeTypeError(t, v)
		}
		bits := math.Float32bits(f)
		return []byte{byte(bits >> 24), byte(bits >> 16), byte(bits >> 8), byte(bits)}, nil
	case TypeUUID, TypeTimeUUID:
		u, ok := v.(UUID)
		if !ok {
			return nil, encodeTypeError(t, v)
		}
		return u.Bytes(), nil
	case TypeVarint:
		n, ok := v.(*big.Int)
		if !ok {
			return nil, encodeTypeError(t, v)
		}
		return encodeBigInt(n), nil
	case TypeDecimal:
		d, ok := v.(Decimal)
		if !ok {
			return nil, encodeTypeError(t, v)
		}
		out := []byte{byte(d.Scale >> 24), byte(d.Scale >> 16), byte(d.Scale >> 8), byte(d.Scale)}
		return append(out, encodeBigInt(d.Unscaled)...), nil
	case TypeInet:
		ip, ok := v.(net.IP)
		if !ok {
			return nil, encodeTypeError(t, v)
		}
		if v4 := ip.To4(); v4 != nil {
			return v4, nil
		}
		return ip.To16(), nil
	case TypeList, TypeSet:
		list, ok := v.([]interface{})
		if !ok {
			return nil, encodeTypeError(t, v)
		}
		out := NewBuffer(nil)
		out.AppendShort(uint16(len(list)))
		for _, e := range list {
			eb, err := EncodeValue(*t.Elem, e)
			if err != nil {
				return nil, err
			}
			out.AppendShortBytes(eb)
		}
		return out.Bytes(), nil
	case TypeMap:
		m, ok := v.(map[interface{}]interface{})
		if !ok {
			return nil, encodeTypeError(t, v)
		}
		out := NewBuffer(nil)
		out.AppendShort(uint16(len(m)))
		for k, e := range m {
			kb, err := EncodeValue(*t.Key, k)
			if err != nil {
				return nil, err
			}
			out.AppendShortBytes(kb)
			eb, err := EncodeValue(*t.Elem, e)
			if err != nil {
				return nil, err
			}
			out.AppendShortBytes(eb)
		}
		return out.Bytes(), nil
	default:
		return nil, errors.Errorf("protocol: unsupported parameter type 0x%04x", uint16(t.Type))
	}
}

// WriteParameters appends each bound value in order as an int-length-
// prefixed encoded form, the layout statement execution requires. A nil
// value is written as a null cell.
func WriteParameters(buf *Buffer, values []interface{}, types []TypeInfo) error {
	if len(values) != len(types) {
		return errors.Errorf("protocol: %d values bound for %d parameters", len(values), len(types))
	}
	for i, v := range values {
		if v == nil {
			buf.AppendBytes(nil)
			continue
		}
		b, err := EncodeValue(types[i], v)
		if err != nil {
			return errors.Wrapf(err, "parameter %d", i)
		}
		buf.AppendBytes(b)
	}
	return nil
}

func asInt64(t TypeInfo, v interface{}) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case time.Time:
		if t.Type != TypeTimestamp {
			return 0, encodeTypeError(t, v)
		}
		return x.UnixMilli(), nil
	default:
		return 0, encodeTypeError(t, v)
	}
}

func encodeTypeError(t TypeInfo, v interface{}) error {
	return errors.Errorf("protocol: cannot encode %T as CQL type 0x%04x", v, uint16(t.Type))
}

func appendLongBytes(v int64) []byte {
	return []byte{
		byte(v >> 56), byte(v >> 48), byte(v >> 40), byte(v >> 32),
		byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v),
	}
}

// decodeBigInt reads a signed big-endian two's-complement integer.
func decodeBigInt(b []byte) *big.Int {
	n := new(big.Int).SetBytes(b)
	if len(b) > 0 && b[0]&0x80 != 0 {
		n.Sub(n, new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8)))
	}
	return n
}

// encodeBigInt writes a signed big-endian two's-complement integer in the
// fewest bytes that preserve the sign bit.
func encodeBigInt(n *big.Int) []byte {
	if n.Sign() >= 0 {
		b := n.Bytes()
		if len(b) == 0 {
			return []byte{0}
		}
		if b[0]&0x80 != 0 {
			return append([]byte{0}, b...)
		}
		return b
	}
	// Minimal length for a negative value: -2^(8L-1) <= n, so size from
	// the bit length of ^n (= -n-1), which is 8L-1 bits at most.
	length := (new(big.Int).Not(n).BitLen() / 8) + 1
	twos := new(big.Int).Add(n, new(big.Int).Lsh(big.NewInt(1), uint(length*8)))
	b := twos.Bytes()
	for len(b) < length {
		b = append([]byte{0}, b...)
	}
	return b
}
